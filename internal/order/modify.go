package order

import "fmt"

// Modify is a partial-update descriptor keyed by order id. Any of side,
// price, or quantity left nil inherits the corresponding field from the
// order Apply is called against; the order's type always comes from the
// existing order.
type Modify struct {
	id       int64
	side     *Side
	price    *int32
	quantity *uint32
}

// NewModify builds a Modify descriptor. Pass nil for any field that should
// be left unchanged.
func NewModify(id int64, side *Side, price *int32, quantity *uint32) *Modify {
	return &Modify{id: id, side: side, price: price, quantity: quantity}
}

func (m *Modify) ID() int64 { return m.id }

// Apply derives a replacement Order from old. old's id must equal m.id, or
// this returns a ModificationError. The order type is always inherited from
// old; the produced order has remaining quantity reset to the new initial
// quantity — modifying resets fill progress, it never preserves it.
func (m *Modify) Apply(old *Order) (*Order, error) {
	if old.ID() != m.id {
		return nil, &ModificationError{
			Reason: fmt.Sprintf("order %d does not carry the id %d this modification targets", old.ID(), m.id),
		}
	}

	side := old.Side()
	if m.side != nil {
		side = *m.side
	}

	price := old.Price()
	if m.price != nil {
		price = *m.price
	}

	quantity := old.InitialQuantity()
	if m.quantity != nil {
		quantity = *m.quantity
	}

	return New(old.Type(), m.id, side, price, quantity), nil
}
