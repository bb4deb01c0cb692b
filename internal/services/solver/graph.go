package solver

import (
	"sort"

	"github.com/spreadlabs/spread-engine/internal/domain"
)

// MaxHops is the longest route the solver considers. Three-leg routes and
// beyond are out of scope.
const MaxHops = 2

// Graph is an undirected multigraph over a pool catalogue snapshot: nodes
// are tokens, edges are pools. It is immutable after construction; one
// graph serves one solve.
type Graph struct {
	pools []*domain.Pool
	adj   map[domain.Token][]*domain.Pool
}

// NewGraph builds a graph from a catalogue snapshot. Pools are deep-copied
// and sorted by ID so enumeration order never depends on input map order.
// Unusable pools (non-positive reserve) are excluded from routing.
func NewGraph(pools []*domain.Pool) *Graph {
	g := &Graph{
		pools: make([]*domain.Pool, 0, len(pools)),
		adj:   make(map[domain.Token][]*domain.Pool),
	}

	for _, pool := range pools {
		if !pool.Usable() {
			continue
		}
		g.pools = append(g.pools, pool.Clone())
	}
	sort.Slice(g.pools, func(i, j int) bool { return g.pools[i].ID < g.pools[j].ID })

	for _, pool := range g.pools {
		g.adj[pool.TokenA] = append(g.adj[pool.TokenA], pool)
		g.adj[pool.TokenB] = append(g.adj[pool.TokenB], pool)
	}

	return g
}

// PoolCount returns the number of usable pools in the graph.
func (g *Graph) PoolCount() int {
	return len(g.pools)
}

// Pools returns the graph's pools in ID order.
func (g *Graph) Pools() []*domain.Pool {
	return g.pools
}

// FindPaths enumerates simple paths (no repeated pool) from sellToken to
// buyToken with at most maxHops hops. Paths come out sorted by hop count,
// then by path ID. An empty result is not an error; the caller treats it
// as order infeasibility.
func (g *Graph) FindPaths(sellToken, buyToken domain.Token, maxHops int) []*domain.ExecutionPath {
	if sellToken == buyToken || maxHops < 1 {
		return nil
	}
	if maxHops > MaxHops {
		maxHops = MaxHops
	}

	var paths []*domain.ExecutionPath

	for _, direct := range g.adj[sellToken] {
		if direct.Has(buyToken) {
			paths = append(paths, &domain.ExecutionPath{
				Tokens: []domain.Token{sellToken, buyToken},
				Pools:  []*domain.Pool{direct},
			})
		}
	}

	if maxHops >= 2 {
		for _, first := range g.adj[sellToken] {
			mid := first.Other(sellToken)
			if mid == buyToken || mid == sellToken {
				continue
			}
			for _, second := range g.adj[mid] {
				if second == first || !second.Has(buyToken) {
					continue
				}
				paths = append(paths, &domain.ExecutionPath{
					Tokens: []domain.Token{sellToken, mid, buyToken},
					Pools:  []*domain.Pool{first, second},
				})
			}
		}
	}

	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Hops() != paths[j].Hops() {
			return paths[i].Hops() < paths[j].Hops()
		}
		return paths[i].ID() < paths[j].ID()
	})

	return paths
}

// ParallelGroups partitions paths by hop count. Paths of equal length
// between the same token pair are parallel allocation candidates for the
// splitter. Input order is preserved within each group.
func ParallelGroups(paths []*domain.ExecutionPath) map[int][]*domain.ExecutionPath {
	groups := make(map[int][]*domain.ExecutionPath)
	for _, path := range paths {
		groups[path.Hops()] = append(groups[path.Hops()], path)
	}
	return groups
}

// ReachablePools returns the pools participating in any route between the
// token pair, in ID order. Serves the external reachability query.
func (g *Graph) ReachablePools(sellToken, buyToken domain.Token, maxHops int) []*domain.Pool {
	seen := make(map[string]*domain.Pool)
	for _, path := range g.FindPaths(sellToken, buyToken, maxHops) {
		for _, pool := range path.Pools {
			seen[pool.ID] = pool
		}
	}

	pools := make([]*domain.Pool, 0, len(seen))
	for _, pool := range seen {
		pools = append(pools, pool)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].ID < pools[j].ID })
	return pools
}
