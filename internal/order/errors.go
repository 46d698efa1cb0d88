package order

import "fmt"

// RequestedFillTooLargeError is returned by Order.Fill when the requested
// fill quantity exceeds what remains on the order.
type RequestedFillTooLargeError struct {
	Surplus uint32
}

func (e *RequestedFillTooLargeError) Error() string {
	return fmt.Sprintf("requested fill too large: %d units over remaining quantity", e.Surplus)
}

// ModificationError is returned by Modify.Apply when the descriptor's
// order id does not match the order it is being applied to.
type ModificationError struct {
	Reason string
}

func (e *ModificationError) Error() string {
	return fmt.Sprintf("modification error: %s", e.Reason)
}
