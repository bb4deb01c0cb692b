package domain

import (
	"math/big"
	"strings"
)

// ExecutionPath is an ordered sequence of pool hops connecting a sell token
// to a buy token. Tokens has one more entry than Pools: Tokens[i] is the
// input of hop i, Tokens[i+1] its output.
type ExecutionPath struct {
	Tokens []Token
	Pools  []*Pool
}

func (p *ExecutionPath) Hops() int {
	return len(p.Pools)
}

// ID returns the canonical path identifier: pool IDs joined in hop order.
// Used for deterministic ordering and tie-breaking.
func (p *ExecutionPath) ID() string {
	ids := make([]string, len(p.Pools))
	for i, pool := range p.Pools {
		ids[i] = pool.ID
	}
	return strings.Join(ids, "/")
}

// SellToken returns the path's input token.
func (p *ExecutionPath) SellToken() Token {
	return p.Tokens[0]
}

// BuyToken returns the path's output token.
func (p *ExecutionPath) BuyToken() Token {
	return p.Tokens[len(p.Tokens)-1]
}

// LegResult describes one simulated hop through a single pool: the exec
// amounts, the reserves before and after, and whether the hop leaves the
// pool usable. Reserves here are hypothetical; the catalogue is untouched.
type LegResult struct {
	Pool      *Pool
	SellToken Token
	BuyToken  Token

	ExecSellAmount *big.Int
	ExecBuyAmount  *big.Int

	PriorSellReserve   *big.Int
	PriorBuyReserve    *big.Int
	UpdatedSellReserve *big.Int
	UpdatedBuyReserve  *big.Int

	CanFill bool
}

// PathResult is the chained simulation of a full path. BuyAmount is the
// final hop's output. CanFill is false if any leg cannot fill.
type PathResult struct {
	Path       *ExecutionPath
	Legs       []LegResult
	SellAmount *big.Int
	BuyAmount  *big.Int
	CanFill    bool
}

// PoolFill is a pool's aggregate execution in one trade direction across
// all orders in a batch, from the pool's perspective: the pool sells
// SellToken (pays out) and buys BuyToken (takes in). A pool traded in both
// directions yields two fills, one per direction, so amounts of different
// tokens are never summed together.
type PoolFill struct {
	PoolID         string
	SellToken      Token
	BuyToken       Token
	ExecSellAmount *big.Int
	ExecBuyAmount  *big.Int
}

// Key identifies the fill within a settlement: pool id plus direction.
func (f *PoolFill) Key() string {
	return f.PoolID + ":" + string(f.SellToken) + "-" + string(f.BuyToken)
}

// Settlement is the assembled outcome of one batch solve. Amms is keyed by
// PoolFill.Key. Immutable after assembly.
type Settlement struct {
	Amms   map[string]*PoolFill
	Orders map[string]*Order
}
