package solver

import (
	"math/big"

	"github.com/spreadlabs/spread-engine/internal/domain"
)

// DefaultLambdaIterations bounds the outer threshold bisection. 128 halvings
// shrink the rate interval far below one atomic unit of allocation for any
// realistic reserve magnitude.
const DefaultLambdaIterations = 128

// topUpRounds bounds the remainder distribution loop. Each round moves at
// least one atomic unit, so the cap only triggers on pathological rate
// interleavings; whatever is left then goes to the best path in one piece.
const topUpRounds = 256

// Splitter allocates a total sell amount across parallel paths so that the
// paths' marginal output rates equalize (water-filling). Marginal rate is
// strictly decreasing in input on a constant-product curve, so the split is
// found by bisecting a rate threshold lambda: each path receives the largest
// integer allocation whose marginal rate still meets lambda, and lambda is
// tightened until the allocations sum to the total. All comparisons are
// exact rationals; convergence is measured in atomic units, never in
// relative floating tolerance.
type Splitter struct {
	evaluator        *PathEvaluator
	lambdaIterations int
}

func NewSplitter(evaluator *PathEvaluator, lambdaIterations int) *Splitter {
	if lambdaIterations <= 0 {
		lambdaIterations = DefaultLambdaIterations
	}
	return &Splitter{evaluator: evaluator, lambdaIterations: lambdaIterations}
}

// Split returns per-path allocations summing exactly to total, in the same
// order as paths. A single path receives the full amount without any
// search. Zero total yields all-zero allocations.
func (sp *Splitter) Split(paths []*domain.ExecutionPath, total *big.Int) ([]*big.Int, error) {
	if len(paths) == 0 {
		return nil, ErrNoFeasibleSplit
	}
	if total == nil || total.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	allocs := make([]*big.Int, len(paths))
	for i := range allocs {
		allocs[i] = new(big.Int)
	}
	if total.Sign() == 0 {
		return allocs, nil
	}
	if len(paths) == 1 {
		allocs[0].Set(total)
		return sp.checked(paths, allocs)
	}

	// rate at zero bounds the search: above the best zero-rate nothing is
	// funded, at lambda=0 everything takes the full amount
	zeroRates := make([]*big.Rat, len(paths))
	lambdaHi := new(big.Rat)
	for i, path := range paths {
		rate, err := sp.evaluator.MarginalRate(path, new(big.Int))
		if err != nil {
			return nil, err
		}
		zeroRates[i] = rate
		if rate.Cmp(lambdaHi) > 0 {
			lambdaHi.Set(rate)
		}
	}
	if lambdaHi.Sign() == 0 {
		return nil, ErrNoFeasibleSplit
	}

	// invariant: sum(alloc(lo)) >= total, sum(alloc(hi)) < total
	lambdaLo := new(big.Rat)
	half := big.NewRat(1, 2)
	for iter := 0; iter < sp.lambdaIterations; iter++ {
		mid := new(big.Rat).Add(lambdaLo, lambdaHi)
		mid.Mul(mid, half)

		sum, err := sp.allocateAt(paths, zeroRates, mid, total, allocs)
		if err != nil {
			return nil, err
		}
		if sum.Cmp(total) >= 0 {
			lambdaLo.Set(mid)
		} else {
			lambdaHi.Set(mid)
		}
	}

	sum, err := sp.allocateAt(paths, zeroRates, lambdaHi, total, allocs)
	if err != nil {
		return nil, err
	}

	deficit := new(big.Int).Sub(total, sum)
	if err := sp.topUp(paths, allocs, deficit); err != nil {
		return nil, err
	}

	return sp.checked(paths, allocs)
}

// allocateAt fills allocs with each path's largest allocation whose marginal
// rate still meets lambda, capped at total, and returns the sum.
func (sp *Splitter) allocateAt(paths []*domain.ExecutionPath, zeroRates []*big.Rat, lambda *big.Rat, total *big.Int, allocs []*big.Int) (*big.Int, error) {
	sum := new(big.Int)
	for i, path := range paths {
		if zeroRates[i].Cmp(lambda) < 0 {
			allocs[i].SetInt64(0)
			continue
		}
		s, err := sp.invertRate(path, lambda, total)
		if err != nil {
			return nil, err
		}
		allocs[i].Set(s)
		sum.Add(sum, s)
	}
	return sum, nil
}

// invertRate finds the largest x in [0, limit] with MarginalRate(path, x) >=
// lambda by integer bisection. The rate at zero is known to meet lambda.
func (sp *Splitter) invertRate(path *domain.ExecutionPath, lambda *big.Rat, limit *big.Int) (*big.Int, error) {
	atLimit, err := sp.evaluator.MarginalRate(path, limit)
	if err != nil {
		return nil, err
	}
	if atLimit.Cmp(lambda) >= 0 {
		return new(big.Int).Set(limit), nil
	}

	lo := new(big.Int)            // rate meets lambda
	hi := new(big.Int).Set(limit) // rate below lambda
	one := big.NewInt(1)
	gap := new(big.Int)
	for gap.Sub(hi, lo).Cmp(one) > 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		rate, err := sp.evaluator.MarginalRate(path, mid)
		if err != nil {
			return nil, err
		}
		if rate.Cmp(lambda) >= 0 {
			lo.Set(mid)
		} else {
			hi.Set(mid)
		}
	}
	return lo, nil
}

// topUp distributes the bisection remainder. Each round pours into the path
// with the highest current marginal rate, up to the point where it would
// drop below the runner-up, so the result matches unit-by-unit greedy
// assignment. Ties go to the lowest path index for determinism.
func (sp *Splitter) topUp(paths []*domain.ExecutionPath, allocs []*big.Int, deficit *big.Int) error {
	for round := 0; round < topUpRounds && deficit.Sign() > 0; round++ {
		best, second := -1, -1
		var bestRate, secondRate *big.Rat
		for i, path := range paths {
			rate, err := sp.evaluator.MarginalRate(path, allocs[i])
			if err != nil {
				return err
			}
			switch {
			case best < 0 || rate.Cmp(bestRate) > 0:
				second, secondRate = best, bestRate
				best, bestRate = i, rate
			case second < 0 || rate.Cmp(secondRate) > 0:
				second, secondRate = i, rate
			}
		}

		step := new(big.Int).Set(deficit)
		if second >= 0 {
			s, err := sp.pourLimit(paths[best], allocs[best], secondRate, deficit)
			if err != nil {
				return err
			}
			step = s
		}
		allocs[best].Add(allocs[best], step)
		deficit.Sub(deficit, step)
	}

	// cap reached: hand the rest to the best path in one piece
	if deficit.Sign() > 0 {
		best := -1
		var bestRate *big.Rat
		for i, path := range paths {
			rate, err := sp.evaluator.MarginalRate(path, allocs[i])
			if err != nil {
				return err
			}
			if best < 0 || rate.Cmp(bestRate) > 0 {
				best, bestRate = i, rate
			}
		}
		allocs[best].Add(allocs[best], deficit)
		deficit.SetInt64(0)
	}
	return nil
}

// pourLimit returns the largest d in [1, max] such that pouring d units into
// path keeps the rate of every poured unit at or above floor: the d-th unit
// is worth taking while MarginalRate(alloc + d - 1) >= floor.
func (sp *Splitter) pourLimit(path *domain.ExecutionPath, alloc *big.Int, floor *big.Rat, max *big.Int) (*big.Int, error) {
	one := big.NewInt(1)
	sample := new(big.Int).Add(alloc, max)
	sample.Sub(sample, one)
	rate, err := sp.evaluator.MarginalRate(path, sample)
	if err != nil {
		return nil, err
	}
	if rate.Cmp(floor) >= 0 {
		return new(big.Int).Set(max), nil
	}

	lo := new(big.Int).Set(one) // unit lo is worth taking
	hi := new(big.Int).Set(max) // unit hi is not
	gap := new(big.Int)
	for gap.Sub(hi, lo).Cmp(one) > 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		sample.Add(alloc, mid)
		sample.Sub(sample, one)
		rate, err := sp.evaluator.MarginalRate(path, sample)
		if err != nil {
			return nil, err
		}
		if rate.Cmp(floor) >= 0 {
			lo.Set(mid)
		} else {
			hi.Set(mid)
		}
	}
	return lo, nil
}

// checked verifies every funded path can absorb its allocation.
func (sp *Splitter) checked(paths []*domain.ExecutionPath, allocs []*big.Int) ([]*big.Int, error) {
	for i, path := range paths {
		if allocs[i].Sign() == 0 {
			continue
		}
		res, err := sp.evaluator.Simulate(path, allocs[i])
		if err != nil {
			return nil, err
		}
		if !res.CanFill {
			return nil, ErrNoFeasibleSplit
		}
	}
	return allocs, nil
}
