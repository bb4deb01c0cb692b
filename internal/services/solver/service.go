package solver

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/bytedance/sonic"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/spreadlabs/spread-engine/internal/adapters/persistence"
	"github.com/spreadlabs/spread-engine/internal/config"
	"github.com/spreadlabs/spread-engine/internal/domain"
	"github.com/spreadlabs/spread-engine/internal/metrics"
	"github.com/spreadlabs/spread-engine/internal/services"
)

const SOLVER_SERVICE = "solver-service"

// Service is the batch solve orchestrator: it owns instance intake, the
// per-order evaluation loop, and solution persistence. Each order is solved
// independently against an immutable snapshot of the instance's pool
// catalogue; one order's failure never aborts the rest of the batch.
type Service struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	storage *persistence.Storage
	conf    *config.SolverConfig

	pathEval  *PathEvaluator
	splitter  *Splitter
	evaluator *Evaluator
	assembler Assembler
}

func (svc *Service) ID() string {
	return SOLVER_SERVICE
}

// NewLocal builds a solver without a container or storage, for embedding
// and tests. Only the in-memory operations work; Solve and GetSolution
// need the storage-backed service.
func NewLocal(conf *config.SolverConfig) *Service {
	svc := &Service{conf: conf}
	svc.logger = services.NewServiceLogger(svc)
	svc.pathEval = NewPathEvaluator()
	svc.splitter = NewSplitter(svc.pathEval, conf.LambdaIterations)
	svc.evaluator = NewEvaluator(svc.pathEval, svc.splitter, conf.MaxHops, conf.MaxSplitPaths)
	return svc
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.SOLVER_CONFIG_KEY).(*config.SolverConfig)
	svc.storage = c.Instance(persistence.STORAGE_SERVICE).(*persistence.Storage)

	svc.pathEval = NewPathEvaluator()
	svc.splitter = NewSplitter(svc.pathEval, svc.conf.LambdaIterations)
	svc.evaluator = NewEvaluator(svc.pathEval, svc.splitter, svc.conf.MaxHops, svc.conf.MaxSplitPaths)
	return nil
}

func (svc *Service) Start() error {
	return nil
}

func (svc *Service) Stop() error {
	return nil
}

// SubmitInstance validates and stores a raw instance document, returning
// its derived id. Re-submitting identical bytes yields the same id.
func (svc *Service) SubmitInstance(raw []byte) (string, *domain.Instance, error) {
	var doc domain.InstanceDoc
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return "", nil, fmt.Errorf("malformed instance document: %w", err)
	}

	inst, err := domain.ParseInstance(&doc)
	if err != nil {
		return "", nil, err
	}

	id := persistence.InstanceID(raw)
	if err := svc.storage.SaveInstance(id, raw); err != nil {
		return "", nil, err
	}

	metrics.InstancesSubmitted.Inc()
	metrics.InstanceOrders.Observe(float64(len(inst.Orders)))
	metrics.InstancePools.Observe(float64(len(inst.Pools)))
	svc.logger.Info().
		Str("instance", id).
		Int("orders", len(inst.Orders)).
		Int("pools", len(inst.Pools)).
		Msg("instance submitted")

	return id, inst, nil
}

// GetInstance loads and validates a stored instance. Returns nil without
// error for an unknown id.
func (svc *Service) GetInstance(id string) (*domain.Instance, error) {
	doc, err := svc.storage.LoadInstance(id)
	if err != nil || doc == nil {
		return nil, err
	}
	return domain.ParseInstance(doc)
}

// ReachablePools returns the pools participating in any route between the
// token pair within the configured hop limit.
func (svc *Service) ReachablePools(inst *domain.Instance, sellToken, buyToken domain.Token) []*domain.Pool {
	start := time.Now()
	pools := NewGraph(inst.Pools).ReachablePools(sellToken, buyToken, svc.conf.MaxHops)
	metrics.PathEnumerationDuration.Observe(time.Since(start).Seconds())
	return pools
}

// Paths returns every candidate route between the token pair.
func (svc *Service) Paths(inst *domain.Instance, sellToken, buyToken domain.Token) []*domain.ExecutionPath {
	return NewGraph(inst.Pools).FindPaths(sellToken, buyToken, svc.conf.MaxHops)
}

// Solve solves a stored instance and persists the result under the same id.
// Returns nil without error for an unknown id.
func (svc *Service) Solve(id string) (*domain.ResultDoc, error) {
	inst, err := svc.GetInstance(id)
	if err != nil {
		metrics.SolveRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if inst == nil {
		return nil, nil
	}

	start := time.Now()
	doc := svc.SolveInstance(inst)
	metrics.SolveDuration.Observe(time.Since(start).Seconds())

	if err := svc.storage.SaveSolution(id, doc); err != nil {
		metrics.SolveRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.SolveRequests.WithLabelValues("ok").Inc()
	svc.logger.Info().
		Str("instance", id).
		Dur("elapsed", time.Since(start)).
		Msg("instance solved")
	return doc, nil
}

// SolveInstance runs the evaluation loop over every order in the instance
// and assembles the output document. The instance's pools are never
// mutated; simulated reserve states stay inside each candidate.
func (svc *Service) SolveInstance(inst *domain.Instance) *domain.ResultDoc {
	graph := NewGraph(inst.Pools)
	st := svc.assembler.NewSettlement()

	for _, order := range inst.Orders {
		cand, err := svc.evaluator.Evaluate(graph, order)
		if err != nil {
			reason := failureReason(err)
			svc.assembler.Reject(st, order, reason)
			metrics.OrdersInfeasible.WithLabelValues(reason).Inc()
			svc.logger.Debug().
				Str("order", order.ID).
				Str("reason", reason).
				Msg("order rejected")
			continue
		}

		svc.assembler.Commit(st, order, cand)
		metrics.OrdersSolved.Inc()
		metrics.SplitPathsFunded.Observe(float64(len(cand.Results)))
		svc.logger.Debug().
			Str("order", order.ID).
			Str("paths", cand.ID()).
			Str("exec_sell", cand.ExecSell.String()).
			Str("exec_buy", cand.ExecBuy.String()).
			Str("surplus", new(big.Int).Quo(cand.Surplus.Num(), cand.Surplus.Denom()).String()).
			Msg("order solved")
	}

	return svc.assembler.Render(st)
}

// GetSolution loads a previously solved result. Returns nil without error
// when the instance is unknown or unsolved.
func (svc *Service) GetSolution(id string) (*domain.ResultDoc, error) {
	return svc.storage.LoadSolution(id)
}

// failureReason maps evaluation errors to the status markers of the output
// contract.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNoPathFound):
		return domain.ReasonNoPath
	case errors.Is(err, ErrNoFeasibleSplit):
		return domain.ReasonNoFeasibleSplit
	case errors.Is(err, ErrUnsupportedOrderType):
		return domain.ReasonUnsupported
	case errors.Is(err, ErrInvalidPool):
		return domain.ReasonInvalidPool
	default:
		return domain.ReasonInfeasible
	}
}
