package book

import (
	"fmt"

	"github.com/mohandeepkapur/orderbook/internal/order"
)

// OrderNotFoundError is returned by CancelOrder/ModifyOrder/internal lookups
// for an id not present in the book's index — or, on an internal index/side
// mismatch, which indicates a bug (see the package invariants).
type OrderNotFoundError struct {
	OrderID int64
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %d not found in book", e.OrderID)
}

// OrderAlreadyExistsError is returned by AddOrder when the order's id is
// already tracked in the book's index.
type OrderAlreadyExistsError struct {
	OrderID int64
}

func (e *OrderAlreadyExistsError) Error() string {
	return fmt.Sprintf("order %d already exists in book", e.OrderID)
}

// BookSideEmptyError is raised internally when the post-match FaK sweep
// inspects a side it believed non-empty. It should never escape a healthy
// call — if it does, it's swallowed at the call site rather than propagated
// (mirrors the core's own "ok for this to fail" pruning policy).
type BookSideEmptyError struct {
	Side order.Side
}

func (e *BookSideEmptyError) Error() string {
	return fmt.Sprintf("book side %s is empty", e.Side)
}

// InternalOrderProcessingError wraps any invariant violation discovered
// mid-operation, including an attempt to overfill during matching. Its
// appearance indicates a bug in the matching loop, not a caller error —
// treat the book instance as unusable if one surfaces, since prior trades
// in the same call may have already mutated state.
type InternalOrderProcessingError struct {
	Reason string
}

func (e *InternalOrderProcessingError) Error() string {
	return fmt.Sprintf("internal order processing error: %s", e.Reason)
}
