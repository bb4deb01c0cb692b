package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Instance metrics
	InstancesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spread_instances_submitted_total",
		Help: "Total number of problem instances submitted",
	})

	InstanceOrders = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spread_instance_orders",
		Help:    "Orders per submitted instance",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	InstancePools = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spread_instance_pools",
		Help:    "Pools per submitted instance",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 500},
	})

	// Solve metrics
	SolveRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spread_solve_requests_total",
			Help: "Total number of solve requests",
		},
		[]string{"status"},
	)

	SolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spread_solve_duration_seconds",
		Help:    "Full instance solve duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	OrdersSolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spread_orders_solved_total",
		Help: "Total number of orders solved with a feasible execution",
	})

	OrdersInfeasible = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spread_orders_infeasible_total",
			Help: "Total number of orders rejected, by reason",
		},
		[]string{"reason"},
	)

	// Allocator metrics
	PathEnumerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spread_path_enumeration_duration_seconds",
		Help:    "Route enumeration duration per order in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05},
	})

	SplitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spread_split_duration_seconds",
		Help:    "Multi-path allocation duration per order in seconds",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1},
	})

	SplitPathsFunded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spread_split_paths_funded",
		Help:    "Number of paths funded by the winning allocation",
		Buckets: []float64{1, 2, 3, 4, 5},
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spread_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spread_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Store metrics
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spread_store_writes_total",
			Help: "Total number of document store writes, by bucket",
		},
		[]string{"bucket"},
	)

	StoreReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spread_store_reads_total",
			Help: "Total number of document store reads, by bucket",
		},
		[]string{"bucket"},
	)
)
