package book

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/mohandeepkapur/orderbook/internal/order"
)

// level is the set of resting orders at one price on one side. It keeps
// orders in insertion order (time priority) with hashed lookup by id, backed
// by gods' linkedhashmap instead of a plain append-only slice. Removing an id
// still scans the map's ordering list, so removal is linear in level size.
type level struct {
	orders *linkedhashmap.Map // order id (int64) -> *order.Order
}

func newLevel() *level {
	return &level{orders: linkedhashmap.New()}
}

func (l *level) put(o *order.Order) {
	l.orders.Put(o.ID(), o)
}

func (l *level) remove(id int64) {
	l.orders.Remove(id)
}

func (l *level) empty() bool {
	return l.orders.Empty()
}

func (l *level) size() int {
	return l.orders.Size()
}

// front returns the oldest (first-inserted) order still resting at this
// level — the next one in line for time priority.
func (l *level) front() (*order.Order, bool) {
	it := l.orders.Iterator()
	it.Begin()
	if !it.Next() {
		return nil, false
	}
	return it.Value().(*order.Order), true
}

// aggregateQuantity sums the remaining quantity of every live order at this
// level.
func (l *level) aggregateQuantity() uint32 {
	it := l.orders.Iterator()
	it.Begin()
	var total uint32
	for it.Next() {
		total += it.Value().(*order.Order).RemainingQuantity()
	}
	return total
}
