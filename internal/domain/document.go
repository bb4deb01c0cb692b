package domain

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
)

// ErrInvalidInstance marks documents that decode as JSON but violate the
// instance contract (bad amounts, malformed pools, degenerate orders).
var ErrInvalidInstance = errors.New("invalid instance")

// Failure reason markers carried on infeasible orders in the output
// document.
const (
	ReasonNoPath          = "no_path"
	ReasonNoFeasibleSplit = "no_feasible_split"
	ReasonInfeasible      = "infeasible"
	ReasonUnsupported     = "unsupported_order_type"
	ReasonInvalidPool     = "invalid_pool"
)

// OrderDoc is the external order shape. Amounts are base-10 integer
// strings in atomic units.
type OrderDoc struct {
	SellToken        string `json:"sell_token"`
	BuyToken         string `json:"buy_token"`
	SellAmount       string `json:"sell_amount"`
	BuyAmount        string `json:"buy_amount"`
	AllowPartialFill bool   `json:"allow_partial_fill"`
	IsSellOrder      bool   `json:"is_sell_order"`
}

// AmmDoc is the external pool shape: exactly two token reserves.
type AmmDoc struct {
	Reserves map[string]string `json:"reserves"`
}

// InstanceDoc is the input document: a batch of orders plus the pool
// catalogue they are solved against.
type InstanceDoc struct {
	Orders map[string]OrderDoc `json:"orders"`
	Amms   map[string]AmmDoc   `json:"amms"`
}

// AmmResultDoc reports a pool's aggregate execution, from the pool's
// perspective (the pool sells what the orders bought).
type AmmResultDoc struct {
	SellToken      string `json:"sell_token"`
	BuyToken       string `json:"buy_token"`
	ExecSellAmount string `json:"exec_sell_amount"`
	ExecBuyAmount  string `json:"exec_buy_amount"`
}

// OrderResultDoc echoes the order and reports its outcome. Solved orders
// carry exec amounts and status "solved"; infeasible orders omit the exec
// fields and carry the failure reason in status.
type OrderResultDoc struct {
	OrderDoc
	ExecSellAmount string `json:"exec_sell_amount,omitempty"`
	ExecBuyAmount  string `json:"exec_buy_amount,omitempty"`
	Status         string `json:"status"`
}

// ResultDoc is the output document.
type ResultDoc struct {
	Amms   map[string]AmmResultDoc   `json:"amms"`
	Orders map[string]OrderResultDoc `json:"orders"`
}

// Instance is the validated in-memory form of an InstanceDoc. Orders and
// Pools are sorted by ID so every downstream traversal is deterministic.
type Instance struct {
	Orders []*Order
	Pools  []*Pool
}

// ParseAmount parses a base-10 integer amount string losslessly. Negative
// amounts and anything that is not a plain decimal integer are rejected.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("amount %q is not a base-10 integer", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", s)
	}
	return v, nil
}

// FormatAmount renders an amount as a base-10 string. Nil renders as "0".
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// ParseInstance validates an input document and converts it to the typed
// entity model. Malformed documents are rejected here, before anything
// reaches the solver.
func ParseInstance(doc *InstanceDoc) (*Instance, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil instance document", ErrInvalidInstance)
	}

	inst := &Instance{
		Orders: make([]*Order, 0, len(doc.Orders)),
		Pools:  make([]*Pool, 0, len(doc.Amms)),
	}

	for id, amm := range doc.Amms {
		pool, err := parseAmm(id, amm)
		if err != nil {
			return nil, fmt.Errorf("%w: amm %q: %v", ErrInvalidInstance, id, err)
		}
		inst.Pools = append(inst.Pools, pool)
	}

	for id, ord := range doc.Orders {
		order, err := parseOrder(id, ord)
		if err != nil {
			return nil, fmt.Errorf("%w: order %q: %v", ErrInvalidInstance, id, err)
		}
		inst.Orders = append(inst.Orders, order)
	}

	sort.Slice(inst.Pools, func(i, j int) bool { return inst.Pools[i].ID < inst.Pools[j].ID })
	sort.Slice(inst.Orders, func(i, j int) bool { return inst.Orders[i].ID < inst.Orders[j].ID })

	return inst, nil
}

func parseAmm(id string, doc AmmDoc) (*Pool, error) {
	if len(doc.Reserves) != 2 {
		return nil, fmt.Errorf("expected exactly 2 reserves, got %d", len(doc.Reserves))
	}

	tokens := make([]string, 0, 2)
	for token := range doc.Reserves {
		if token == "" {
			return nil, fmt.Errorf("empty token name")
		}
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	reserveA, err := ParseAmount(doc.Reserves[tokens[0]])
	if err != nil {
		return nil, fmt.Errorf("reserve of %q: %w", tokens[0], err)
	}
	reserveB, err := ParseAmount(doc.Reserves[tokens[1]])
	if err != nil {
		return nil, fmt.Errorf("reserve of %q: %w", tokens[1], err)
	}

	return &Pool{
		ID:       id,
		TokenA:   Token(tokens[0]),
		TokenB:   Token(tokens[1]),
		ReserveA: reserveA,
		ReserveB: reserveB,
	}, nil
}

func parseOrder(id string, doc OrderDoc) (*Order, error) {
	if doc.SellToken == "" || doc.BuyToken == "" {
		return nil, fmt.Errorf("missing sell or buy token")
	}
	if doc.SellToken == doc.BuyToken {
		return nil, fmt.Errorf("sell and buy token are identical")
	}

	sellAmount, err := ParseAmount(doc.SellAmount)
	if err != nil {
		return nil, fmt.Errorf("sell_amount: %w", err)
	}
	buyAmount, err := ParseAmount(doc.BuyAmount)
	if err != nil {
		return nil, fmt.Errorf("buy_amount: %w", err)
	}
	if buyAmount.Sign() == 0 {
		return nil, fmt.Errorf("buy_amount must be positive (limit price undefined)")
	}

	return &Order{
		ID:               id,
		SellToken:        Token(doc.SellToken),
		BuyToken:         Token(doc.BuyToken),
		SellAmount:       sellAmount,
		BuyAmount:        buyAmount,
		AllowPartialFill: doc.AllowPartialFill,
		IsSellOrder:      doc.IsSellOrder,
		Status:           OrderUnsolved,
	}, nil
}
