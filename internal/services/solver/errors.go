package solver

import "errors"

var (
	// ErrInvalidPool marks a pool with a zero or negative reserve.
	ErrInvalidPool = errors.New("invalid pool reserves")

	// ErrInvalidAmount marks a negative exec amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNoPathFound means no route connects the order's tokens within the
	// hop limit.
	ErrNoPathFound = errors.New("no route between sell and buy token")

	// ErrNoFeasibleSplit means the allocator found no nonnegative split of
	// the sell amount that every receiving path can absorb.
	ErrNoFeasibleSplit = errors.New("no feasible split across candidate paths")

	// ErrInfeasibleOrder means no candidate met the limit-price and
	// fill-type constraints.
	ErrInfeasibleOrder = errors.New("no candidate satisfies the order constraints")

	// ErrUnsupportedOrderType marks buy-type orders, which are out of scope
	// for settlement.
	ErrUnsupportedOrderType = errors.New("buy-type orders are not supported")
)
