package solver

import (
	"math/big"

	"github.com/spreadlabs/spread-engine/internal/domain"
)

// PathEvaluator chains the swap primitive across a path's hops. Like the
// quoter it is pure: reserve updates live only in the returned legs.
//
// The running amount is carried between hops as an exact rational and
// floored only where it is rendered into a leg. Flooring at every hop would
// lose up to one atomic unit per hop against the exact chained quotient.
type PathEvaluator struct {
	quoter Quoter
}

func NewPathEvaluator() *PathEvaluator {
	return &PathEvaluator{}
}

// Simulate runs sellAmount through every hop of path in order, feeding each
// hop's exact output into the next. Leg exec amounts are the floors of the
// running amount on each side of the hop; BuyAmount is the floor of the
// exact final quotient. The result's CanFill is false when any leg would
// drain its pool. A zero sellAmount yields a zero-output result.
func (e *PathEvaluator) Simulate(path *domain.ExecutionPath, sellAmount *big.Int) (*domain.PathResult, error) {
	if sellAmount == nil || sellAmount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	result := &domain.PathResult{
		Path:       path,
		Legs:       make([]domain.LegResult, 0, path.Hops()),
		SellAmount: new(big.Int).Set(sellAmount),
		CanFill:    true,
	}

	x := new(big.Rat).SetInt(sellAmount)
	for i, pool := range path.Pools {
		sellToken := path.Tokens[i]
		buyToken := pool.Other(sellToken)
		a := pool.Reserve(sellToken)
		b := pool.Reserve(buyToken)
		if a == nil || b == nil || a.Sign() <= 0 || b.Sign() <= 0 {
			return nil, ErrInvalidPool
		}

		// exact hop output b*x/(a+x)
		next := new(big.Rat).Mul(new(big.Rat).SetInt(b), x)
		next.Quo(next, new(big.Rat).Add(new(big.Rat).SetInt(a), x))

		if x.IsInt() {
			// integer inflow, take the quoter's 256-bit fast path
			leg, err := e.quoter.Swap(pool, sellToken, x.Num())
			if err != nil {
				return nil, err
			}
			result.Legs = append(result.Legs, *leg)
			if !leg.CanFill {
				result.CanFill = false
			}
		} else {
			legSell := floorRat(x)
			legBuy := floorRat(next)
			updatedBuy := new(big.Int).Sub(b, legBuy)
			result.Legs = append(result.Legs, domain.LegResult{
				Pool:               pool,
				SellToken:          sellToken,
				BuyToken:           buyToken,
				ExecSellAmount:     legSell,
				ExecBuyAmount:      legBuy,
				PriorSellReserve:   new(big.Int).Set(a),
				PriorBuyReserve:    new(big.Int).Set(b),
				UpdatedSellReserve: new(big.Int).Add(a, legSell),
				UpdatedBuyReserve:  updatedBuy,
				CanFill:            updatedBuy.Sign() > 0,
			})
			if updatedBuy.Sign() <= 0 {
				result.CanFill = false
			}
		}

		x = next
	}

	result.BuyAmount = floorRat(x)
	return result, nil
}

// Output returns just the final buy amount for sellAmount through path.
func (e *PathEvaluator) Output(path *domain.ExecutionPath, sellAmount *big.Int) (*big.Int, error) {
	res, err := e.Simulate(path, sellAmount)
	if err != nil {
		return nil, err
	}
	return res.BuyAmount, nil
}

// MarginalRate returns the instantaneous output-per-input rate of path after
// sellAmount has already been pushed through it. For chained constant-product
// hops with reserves (a_j, b_j) and cumulative inflow x_j at hop j,
//
//	rate = prod_j a_j*b_j / (a_j + x_{j-1})^2
//
// with the inflow carried exactly between hops. The allocator equalizes this
// quantity across the paths it funds.
func (e *PathEvaluator) MarginalRate(path *domain.ExecutionPath, sellAmount *big.Int) (*big.Rat, error) {
	if sellAmount == nil || sellAmount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	rate := new(big.Rat).SetInt64(1)
	x := new(big.Rat).SetInt(sellAmount)

	for i, pool := range path.Pools {
		sellToken := path.Tokens[i]
		a := pool.Reserve(sellToken)
		b := pool.Reserve(pool.Other(sellToken))
		if a == nil || b == nil || a.Sign() <= 0 || b.Sign() <= 0 {
			return nil, ErrInvalidPool
		}

		shifted := new(big.Rat).Add(new(big.Rat).SetInt(a), x)
		factor := new(big.Rat).SetInt(new(big.Int).Mul(a, b))
		factor.Quo(factor, new(big.Rat).Mul(shifted, shifted))
		rate.Mul(rate, factor)

		// cumulative inflow at the next hop is this hop's exact output
		x = new(big.Rat).Quo(new(big.Rat).Mul(new(big.Rat).SetInt(b), x), shifted)
	}

	return rate, nil
}

// floorRat truncates a non-negative rational to its integer part.
func floorRat(r *big.Rat) *big.Int {
	return new(big.Int).Quo(r.Num(), r.Denom())
}
