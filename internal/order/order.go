// Package order defines the value types the matching core operates on: a
// single resting or incoming Order, and Modify, the descriptor used to
// derive a replacement order from an existing one.
package order

import "fmt"

// Side is which book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Type distinguishes the two supported order lifetimes.
type Type int

const (
	// GoodTillCancel rests indefinitely until cancelled, modified, or filled.
	GoodTillCancel Type = iota
	// FillAndKill executes whatever is immediately available and is discarded.
	FillAndKill
)

func (t Type) String() string {
	switch t {
	case GoodTillCancel:
		return "GOOD_TILL_CANCEL"
	case FillAndKill:
		return "FILL_AND_KILL"
	default:
		return "UNKNOWN"
	}
}

// Order is one submitted instruction: identity, side, type, price, and the
// initial/remaining quantity split. Price is signed cents, quantity is an
// unsigned unit count, id is an opaque signed 64-bit value the host assigns.
type Order struct {
	orderType         Type
	id                int64
	side              Side
	price             int32
	initialQuantity   uint32
	remainingQuantity uint32
}

// New constructs an Order with remaining quantity equal to the initial
// quantity.
func New(orderType Type, id int64, side Side, price int32, quantity uint32) *Order {
	return &Order{
		orderType:         orderType,
		id:                id,
		side:              side,
		price:             price,
		initialQuantity:   quantity,
		remainingQuantity: quantity,
	}
}

func (o *Order) Type() Type                { return o.orderType }
func (o *Order) ID() int64                 { return o.id }
func (o *Order) Side() Side                { return o.side }
func (o *Order) Price() int32              { return o.price }
func (o *Order) InitialQuantity() uint32   { return o.initialQuantity }
func (o *Order) RemainingQuantity() uint32 { return o.remainingQuantity }

func (o *Order) FilledQuantity() uint32 {
	return o.initialQuantity - o.remainingQuantity
}

func (o *Order) IsFilled() bool {
	return o.remainingQuantity == 0
}

// Fill reduces the remaining quantity by quantity. It fails if quantity
// exceeds what remains — the caller would otherwise overfill the order.
func (o *Order) Fill(quantity uint32) error {
	if quantity > o.remainingQuantity {
		return &RequestedFillTooLargeError{Surplus: quantity - o.remainingQuantity}
	}
	o.remainingQuantity -= quantity
	return nil
}

func (o *Order) String() string {
	return fmt.Sprintf("Order[id=%d side=%s type=%s price=%d qty=%d/%d]",
		o.id, o.side, o.orderType, o.price, o.remainingQuantity, o.initialQuantity)
}
