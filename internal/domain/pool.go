package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Token is an opaque token identifier. Tokens have no internal structure;
// two tokens are the same asset iff their identifiers are equal.
type Token string

// Pool is a constant-product AMM holding two token reserves. Reserves are
// atomic-unit integers; a pool is usable only while both reserves are
// positive. The solver never mutates a catalogue pool in place: swap
// simulations return hypothetical updated reserves instead.
type Pool struct {
	ID       string   `json:"id"`
	TokenA   Token    `json:"tokenA"`
	TokenB   Token    `json:"tokenB"`
	ReserveA *big.Int `json:"reserveA"`
	ReserveB *big.Int `json:"reserveB"`
}

// Usable reports whether both reserves are strictly positive.
func (p *Pool) Usable() bool {
	return p.ReserveA != nil && p.ReserveB != nil &&
		p.ReserveA.Sign() > 0 && p.ReserveB.Sign() > 0
}

// Has reports whether the pool trades the given token.
func (p *Pool) Has(token Token) bool {
	return p.TokenA == token || p.TokenB == token
}

// Other returns the counterpart token of the pair. The caller must ensure
// token is one of the pool's two tokens.
func (p *Pool) Other(token Token) Token {
	if token == p.TokenA {
		return p.TokenB
	}
	return p.TokenA
}

// Reserve returns the reserve held for token, or nil if the pool does not
// trade it.
func (p *Pool) Reserve(token Token) *big.Int {
	switch token {
	case p.TokenA:
		return p.ReserveA
	case p.TokenB:
		return p.ReserveB
	}
	return nil
}

// Clone returns a deep copy. Solves operate on snapshots, so hypothetical
// reserve updates never leak into the caller's catalogue.
func (p *Pool) Clone() *Pool {
	return &Pool{
		ID:       p.ID,
		TokenA:   p.TokenA,
		TokenB:   p.TokenB,
		ReserveA: new(big.Int).Set(p.ReserveA),
		ReserveB: new(big.Int).Set(p.ReserveB),
	}
}

// SpotRate returns the marginal buy-per-sell exchange rate at the current
// reserve state. Diagnostic only: rates are never fed back into amount
// arithmetic.
func (p *Pool) SpotRate(sellToken Token) decimal.Decimal {
	sellReserve := p.Reserve(sellToken)
	buyReserve := p.Reserve(p.Other(sellToken))
	if sellReserve == nil || sellReserve.Sign() <= 0 || buyReserve == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(buyReserve, 0).DivRound(decimal.NewFromBigInt(sellReserve, 0), 18)
}
