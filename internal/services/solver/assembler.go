package solver

import (
	"math/big"

	"github.com/spreadlabs/spread-engine/internal/domain"
)

// Assembler folds per-order winning candidates into the external settlement
// shape: one aggregate fill per touched pool, one outcome per order. Pool
// fills are reported from the pool's perspective, so a pool's sell side is
// the token the orders received from it.
type Assembler struct{}

// NewSettlement starts an empty settlement.
func (Assembler) NewSettlement() *domain.Settlement {
	return &domain.Settlement{
		Amms:   make(map[string]*domain.PoolFill),
		Orders: make(map[string]*domain.Order),
	}
}

// Commit records a solved order's winning candidate into the settlement,
// summing each leg's exec amounts into the pool's fill for that trade
// direction. Opposite-direction legs through the same pool land in separate
// fills so each amount stays in its own token.
func (a Assembler) Commit(st *domain.Settlement, order *domain.Order, cand *Candidate) {
	order.MarkSolved(cand.ExecSell, cand.ExecBuy)
	st.Orders[order.ID] = order

	for _, res := range cand.Results {
		for _, leg := range res.Legs {
			fill := &domain.PoolFill{
				PoolID:    leg.Pool.ID,
				SellToken: leg.BuyToken,
				BuyToken:  leg.SellToken,
			}
			if existing, ok := st.Amms[fill.Key()]; ok {
				fill = existing
			} else {
				fill.ExecSellAmount = new(big.Int)
				fill.ExecBuyAmount = new(big.Int)
				st.Amms[fill.Key()] = fill
			}
			fill.ExecSellAmount.Add(fill.ExecSellAmount, leg.ExecBuyAmount)
			fill.ExecBuyAmount.Add(fill.ExecBuyAmount, leg.ExecSellAmount)
		}
	}
}

// Reject records a failed order. Exec fields stay unset; the reason lands
// in the output status.
func (Assembler) Reject(st *domain.Settlement, order *domain.Order, reason string) {
	order.MarkInfeasible(reason)
	st.Orders[order.ID] = order
}

// Render converts a settlement to the output document. A pool traded in one
// direction keeps its plain id as the map key; a pool traded both ways gets
// one direction-qualified entry per fill. Solved orders carry their exec
// amounts and status "solved"; rejected orders omit the exec fields and
// carry the failure reason as status.
func (Assembler) Render(st *domain.Settlement) *domain.ResultDoc {
	doc := &domain.ResultDoc{
		Amms:   make(map[string]domain.AmmResultDoc, len(st.Amms)),
		Orders: make(map[string]domain.OrderResultDoc, len(st.Orders)),
	}

	perPool := make(map[string]int, len(st.Amms))
	for _, fill := range st.Amms {
		perPool[fill.PoolID]++
	}
	for _, fill := range st.Amms {
		key := fill.PoolID
		if perPool[fill.PoolID] > 1 {
			key = fill.Key()
		}
		doc.Amms[key] = domain.AmmResultDoc{
			SellToken:      string(fill.SellToken),
			BuyToken:       string(fill.BuyToken),
			ExecSellAmount: domain.FormatAmount(fill.ExecSellAmount),
			ExecBuyAmount:  domain.FormatAmount(fill.ExecBuyAmount),
		}
	}

	for id, order := range st.Orders {
		res := domain.OrderResultDoc{
			OrderDoc: domain.OrderDoc{
				SellToken:        string(order.SellToken),
				BuyToken:         string(order.BuyToken),
				SellAmount:       domain.FormatAmount(order.SellAmount),
				BuyAmount:        domain.FormatAmount(order.BuyAmount),
				AllowPartialFill: order.AllowPartialFill,
				IsSellOrder:      order.IsSellOrder,
			},
		}
		if order.Status == domain.OrderSolved {
			res.ExecSellAmount = domain.FormatAmount(order.ExecSellAmount)
			res.ExecBuyAmount = domain.FormatAmount(order.ExecBuyAmount)
			res.Status = order.Status.String()
		} else {
			res.Status = order.FailureReason
		}
		doc.Orders[id] = res
	}

	return doc
}
