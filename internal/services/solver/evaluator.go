package solver

import (
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/spreadlabs/spread-engine/internal/domain"
	"github.com/spreadlabs/spread-engine/internal/metrics"
)

// DefaultMaxSplitPaths caps how many parallel paths one split candidate may
// fund. Paths beyond the cap are the weakest by solo output and would take
// near-zero allocations anyway.
const DefaultMaxSplitPaths = 3

// Candidate is one way to execute an order: a set of funded paths with their
// simulated results, plus the aggregate exec amounts and surplus.
type Candidate struct {
	Results  []*domain.PathResult
	ExecSell *big.Int
	ExecBuy  *big.Int
	Surplus  *big.Rat

	hops int
	id   string
}

// ID is the candidate's path-set identifier: funded path IDs, sorted,
// joined with "+". Used as the final determinism tie-break.
func (c *Candidate) ID() string {
	return c.id
}

// Hops returns the candidate's hop count (all funded paths share it).
func (c *Candidate) Hops() int {
	return c.hops
}

// Evaluator drives one order through route enumeration, simulation and
// allocation, then applies the limit-price and fill-type acceptance rule.
// Orders move Unsolved -> Solved or Unsolved -> Infeasible; a rejected order
// never carries partial exec state.
type Evaluator struct {
	pathEval      *PathEvaluator
	splitter      *Splitter
	maxHops       int
	maxSplitPaths int
}

func NewEvaluator(pathEval *PathEvaluator, splitter *Splitter, maxHops, maxSplitPaths int) *Evaluator {
	if maxHops <= 0 || maxHops > MaxHops {
		maxHops = MaxHops
	}
	if maxSplitPaths <= 0 {
		maxSplitPaths = DefaultMaxSplitPaths
	}
	return &Evaluator{
		pathEval:      pathEval,
		splitter:      splitter,
		maxHops:       maxHops,
		maxSplitPaths: maxSplitPaths,
	}
}

// Evaluate solves a single order against the graph and returns the winning
// candidate. The order itself is not mutated; the caller commits the
// outcome. Failures come back as the sentinel errors of this package.
func (e *Evaluator) Evaluate(g *Graph, order *domain.Order) (*Candidate, error) {
	if !order.IsSellOrder {
		return nil, ErrUnsupportedOrderType
	}

	paths := g.FindPaths(order.SellToken, order.BuyToken, e.maxHops)
	if len(paths) == 0 {
		return nil, ErrNoPathFound
	}

	candidates, err := e.candidates(paths, order.SellAmount)
	if err != nil {
		return nil, err
	}

	var best *Candidate
	for _, cand := range candidates {
		if !e.accepts(order, cand) {
			continue
		}
		if best == nil || e.better(cand, best) {
			best = cand
		}
	}
	if best == nil {
		return nil, ErrInfeasibleOrder
	}
	return best, nil
}

// candidates builds every execution alternative: each path alone with the
// full amount, and one water-filled split per parallel group. Alternatives
// whose allocation is infeasible are dropped; if none survive the order
// fails with the last allocation error.
func (e *Evaluator) candidates(paths []*domain.ExecutionPath, sellAmount *big.Int) ([]*Candidate, error) {
	var out []*Candidate
	var lastErr error

	for _, path := range paths {
		cand, err := e.build([]*domain.ExecutionPath{path}, []*big.Int{sellAmount})
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, cand)
	}

	for _, group := range ParallelGroups(paths) {
		if len(group) < 2 {
			continue
		}
		members, err := e.rankedGroup(group, sellAmount)
		if err != nil {
			lastErr = err
			continue
		}
		start := time.Now()
		allocs, err := e.splitter.Split(members, sellAmount)
		metrics.SplitDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			lastErr = err
			continue
		}
		cand, err := e.build(members, allocs)
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, cand)
	}

	if len(out) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, ErrNoFeasibleSplit
	}
	return out, nil
}

// rankedGroup orders a parallel group by solo output (descending, path ID
// ascending on ties) and keeps the strongest maxSplitPaths members.
func (e *Evaluator) rankedGroup(group []*domain.ExecutionPath, sellAmount *big.Int) ([]*domain.ExecutionPath, error) {
	type ranked struct {
		path *domain.ExecutionPath
		out  *big.Int
	}
	rs := make([]ranked, 0, len(group))
	for _, path := range group {
		out, err := e.pathEval.Output(path, sellAmount)
		if err != nil {
			return nil, err
		}
		rs = append(rs, ranked{path: path, out: out})
	}
	sort.Slice(rs, func(i, j int) bool {
		if c := rs[i].out.Cmp(rs[j].out); c != 0 {
			return c > 0
		}
		return rs[i].path.ID() < rs[j].path.ID()
	})

	n := e.maxSplitPaths
	if n > len(rs) {
		n = len(rs)
	}
	members := make([]*domain.ExecutionPath, n)
	for i := 0; i < n; i++ {
		members[i] = rs[i].path
	}
	return members, nil
}

// build simulates each funded path and aggregates the candidate. Paths with
// zero allocation are left out of the result set.
func (e *Evaluator) build(paths []*domain.ExecutionPath, allocs []*big.Int) (*Candidate, error) {
	cand := &Candidate{
		ExecSell: new(big.Int),
		ExecBuy:  new(big.Int),
	}

	var ids []string
	for i, path := range paths {
		cand.ExecSell.Add(cand.ExecSell, allocs[i])
		if allocs[i].Sign() == 0 && len(paths) > 1 {
			continue
		}
		res, err := e.pathEval.Simulate(path, allocs[i])
		if err != nil {
			return nil, err
		}
		if !res.CanFill {
			return nil, ErrNoFeasibleSplit
		}
		cand.Results = append(cand.Results, res)
		cand.ExecBuy.Add(cand.ExecBuy, res.BuyAmount)
		if path.Hops() > cand.hops {
			cand.hops = path.Hops()
		}
		ids = append(ids, path.ID())
	}

	sort.Strings(ids)
	cand.id = strings.Join(ids, "+")
	return cand, nil
}

// accepts applies the limit-price rule via integer cross-multiplication
// (exec_buy * sell_amount >= exec_sell * buy_amount) and the fill-or-kill
// rule, then records the candidate's surplus.
func (e *Evaluator) accepts(order *domain.Order, cand *Candidate) bool {
	lhs := new(big.Int).Mul(cand.ExecBuy, order.SellAmount)
	rhs := new(big.Int).Mul(cand.ExecSell, order.BuyAmount)
	if lhs.Cmp(rhs) < 0 {
		return false
	}
	if !order.AllowPartialFill && cand.ExecSell.Cmp(order.SellAmount) != 0 {
		return false
	}
	cand.Surplus = surplus(order, cand.ExecSell, cand.ExecBuy)
	return true
}

// surplus is exec_buy - exec_sell * buy_amount / sell_amount in buy-token
// units, exact. A zero-sell order has zero owed and its surplus is just the
// executed buy amount.
func surplus(order *domain.Order, execSell, execBuy *big.Int) *big.Rat {
	got := new(big.Rat).SetInt(execBuy)
	if order.SellAmount.Sign() == 0 {
		return got
	}
	owed := new(big.Rat).SetFrac(
		new(big.Int).Mul(execSell, order.BuyAmount),
		order.SellAmount,
	)
	return got.Sub(got, owed)
}

// better ranks a against b: higher surplus wins, then fewer hops, then the
// lexicographically smaller path-set ID.
func (e *Evaluator) better(a, b *Candidate) bool {
	if c := a.Surplus.Cmp(b.Surplus); c != 0 {
		return c > 0
	}
	if a.hops != b.hops {
		return a.hops < b.hops
	}
	return a.id < b.id
}
