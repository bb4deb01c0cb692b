package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

type OrderStatus uint8

const (
	OrderUnsolved OrderStatus = iota
	OrderSolved
	OrderInfeasible
)

func (s OrderStatus) String() string {
	switch s {
	case OrderUnsolved:
		return "unsolved"
	case OrderSolved:
		return "solved"
	case OrderInfeasible:
		return "infeasible"
	default:
		return "UNKNOWN"
	}
}

// Order is a limit order to trade SellAmount of SellToken for at least
// BuyAmount of BuyToken. Amounts are atomic-unit integers. Only sell-type
// orders are solvable; buy-type orders are rejected as unsupported.
//
// Exec fields are attached exactly once, when the order transitions to
// OrderSolved. They stay nil on failure; FailureReason carries the
// machine-readable reason instead.
type Order struct {
	ID               string
	SellToken        Token
	BuyToken         Token
	SellAmount       *big.Int
	BuyAmount        *big.Int
	AllowPartialFill bool
	IsSellOrder      bool

	Status         OrderStatus
	ExecSellAmount *big.Int
	ExecBuyAmount  *big.Int
	FailureReason  string
}

// LimitPrice returns sell_amount/buy_amount as an exact rational. The order
// is acceptable only at a realized sell-per-buy ratio at or below this.
func (o *Order) LimitPrice() *big.Rat {
	return new(big.Rat).SetFrac(o.SellAmount, o.BuyAmount)
}

// LimitPriceDecimal renders the limit price for diagnostics.
func (o *Order) LimitPriceDecimal() decimal.Decimal {
	return decimal.NewFromBigInt(o.SellAmount, 0).DivRound(decimal.NewFromBigInt(o.BuyAmount, 0), 18)
}

// MarkSolved attaches the execution amounts and transitions the order to
// OrderSolved. Amounts are copied so later reserve bookkeeping cannot
// alias into the order.
func (o *Order) MarkSolved(execSell, execBuy *big.Int) {
	o.Status = OrderSolved
	o.ExecSellAmount = new(big.Int).Set(execSell)
	o.ExecBuyAmount = new(big.Int).Set(execBuy)
	o.FailureReason = ""
}

// MarkInfeasible transitions the order to OrderInfeasible without touching
// exec fields.
func (o *Order) MarkInfeasible(reason string) {
	o.Status = OrderInfeasible
	o.FailureReason = reason
}
