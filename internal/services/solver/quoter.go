package solver

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/spreadlabs/spread-engine/internal/domain"
)

// Quoter computes single-hop constant-product swap outcomes with exact
// integer arithmetic. Selling s into a pool with sell-side reserve a and
// buy-side reserve b yields
//
//	out = floor(b*s / (a+s))
//
// which conserves the product a*b within one atomic unit (rounding is in
// the pool's favor). Reserves and amounts routinely exceed 64 bits, so the
// hot path runs on 256-bit integers and falls back to math/big when an
// intermediate would overflow.
type Quoter struct{}

// QuoteExactIn returns the buy amount obtained for execSell. Pure: the
// caller owns the decision to commit the implied reserve deltas.
func (Quoter) QuoteExactIn(reserveSell, reserveBuy, execSell *big.Int) (*big.Int, error) {
	if reserveSell == nil || reserveBuy == nil ||
		reserveSell.Sign() <= 0 || reserveBuy.Sign() <= 0 {
		return nil, ErrInvalidPool
	}
	if execSell == nil || execSell.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if execSell.Sign() == 0 {
		return new(big.Int), nil
	}

	if out, ok := quoteU256(reserveSell, reserveBuy, execSell); ok {
		return out, nil
	}

	// big.Int fallback for amounts whose product exceeds 256 bits
	num := new(big.Int).Mul(reserveBuy, execSell)
	den := new(big.Int).Add(reserveSell, execSell)
	return num.Quo(num, den), nil
}

// quoteU256 is the uint256 fast path. Returns ok=false when any operand or
// intermediate does not fit 256 bits.
func quoteU256(reserveSell, reserveBuy, execSell *big.Int) (*big.Int, bool) {
	a, overflow := uint256.FromBig(reserveSell)
	if overflow {
		return nil, false
	}
	b, overflow := uint256.FromBig(reserveBuy)
	if overflow {
		return nil, false
	}
	s, overflow := uint256.FromBig(execSell)
	if overflow {
		return nil, false
	}

	den := new(uint256.Int)
	if _, carry := den.AddOverflow(a, s); carry {
		return nil, false
	}
	num := new(uint256.Int)
	if _, overflow := num.MulOverflow(b, s); overflow {
		return nil, false
	}

	return num.Div(num, den).ToBig(), true
}

// Swap simulates selling execSell of sellToken into pool and returns the
// full leg result: exec amounts, prior and updated reserves, and whether
// the pool stays usable. The pool itself is never mutated.
func (q Quoter) Swap(pool *domain.Pool, sellToken domain.Token, execSell *big.Int) (*domain.LegResult, error) {
	buyToken := pool.Other(sellToken)
	priorSell := pool.Reserve(sellToken)
	priorBuy := pool.Reserve(buyToken)

	execBuy, err := q.QuoteExactIn(priorSell, priorBuy, execSell)
	if err != nil {
		return nil, err
	}

	updatedSell := new(big.Int).Add(priorSell, execSell)
	updatedBuy := new(big.Int).Sub(priorBuy, execBuy)

	return &domain.LegResult{
		Pool:               pool,
		SellToken:          sellToken,
		BuyToken:           buyToken,
		ExecSellAmount:     new(big.Int).Set(execSell),
		ExecBuyAmount:      execBuy,
		PriorSellReserve:   new(big.Int).Set(priorSell),
		PriorBuyReserve:    new(big.Int).Set(priorBuy),
		UpdatedSellReserve: updatedSell,
		UpdatedBuyReserve:  updatedBuy,
		CanFill:            updatedBuy.Sign() > 0,
	}, nil
}
