// Package book implements a single-asset limit order book: the matching
// engine and book-state machine. A Book owns two price-ordered sides and an
// order-id index kept in lockstep; it inserts, removes, modifies, and
// crosses orders under price-time priority and reports the resulting
// trades.
//
// A Book is a single-threaded, synchronous state machine: no operation
// blocks, and a caller sharing one Book across goroutines must serialize
// access itself (a mutex, a single owning goroutine, or a command queue).
package book

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"

	"github.com/mohandeepkapur/orderbook/internal/order"
	"github.com/mohandeepkapur/orderbook/internal/trade"
)

// location is the small record the order-id index keeps for each resting
// order: which side it rests on, and at what price, so it can be found in
// O(1) + O(log P) without scanning either side.
type location struct {
	side  order.Side
	price int32
}

// Book is the matching engine for a single tradable asset.
type Book struct {
	asset   string
	bidSide *redblacktree.Tree // price (int32, descending) -> *level
	askSide *redblacktree.Tree // price (int32, ascending) -> *level
	index   map[int64]location
}

// New constructs an empty Book for the given asset. The asset symbol is
// opaque to the book — it carries no meaning beyond identifying which book
// this is to the host.
func New(asset string) *Book {
	return &Book{
		asset: asset,
		// Bids are ordered highest-first: reverse the natural comparator so
		// the tree's leftmost node is the best (highest) bid.
		bidSide: redblacktree.NewWith(func(a, b interface{}) int {
			return utils.Int32Comparator(b, a)
		}),
		// Asks are ordered lowest-first: the tree's leftmost node is already
		// the best (lowest) ask under the natural comparator.
		askSide: redblacktree.NewWith(utils.Int32Comparator),
		index:   make(map[int64]location),
	}
}

// Asset returns the opaque asset symbol this book was constructed with.
func (b *Book) Asset() string { return b.asset }

func (b *Book) sideTree(s order.Side) *redblacktree.Tree {
	if s == order.Buy {
		return b.bidSide
	}
	return b.askSide
}

// AddOrder registers order in the index, admits it onto its side (unless a
// FillAndKill admission check rejects it — see canMatch), and runs the
// matching loop. It returns the trades the matching loop produced, or nil
// if none were generated.
func (b *Book) AddOrder(o *order.Order) (trade.Trades, error) {
	if _, exists := b.index[o.ID()]; exists {
		return nil, &OrderAlreadyExistsError{OrderID: o.ID()}
	}

	b.index[o.ID()] = location{side: o.Side(), price: o.Price()}

	if o.Type() == order.FillAndKill && !b.canMatch(o.Side(), o.Price()) {
		delete(b.index, o.ID())
		return nil, nil
	}

	tree := b.sideTree(o.Side())
	lvl := b.levelFor(tree, o.Price())
	lvl.put(o)

	return b.matchOrders()
}

// levelFor returns the level at price on tree, creating it if absent.
func (b *Book) levelFor(tree *redblacktree.Tree, price int32) *level {
	if v, found := tree.Get(price); found {
		return v.(*level)
	}
	lvl := newLevel()
	tree.Put(price, lvl)
	return lvl
}

// CancelOrder removes an order from the book immediately.
func (b *Book) CancelOrder(id int64) (int64, error) {
	loc, ok := b.index[id]
	if !ok {
		return 0, &OrderNotFoundError{OrderID: id}
	}

	tree := b.sideTree(loc.side)
	v, found := tree.Get(loc.price)
	if !found {
		return 0, &OrderNotFoundError{OrderID: id}
	}
	lvl := v.(*level)

	lvl.remove(id)
	if lvl.empty() {
		tree.Remove(loc.price)
	}
	delete(b.index, id)

	return id, nil
}

// ModifyOrder looks up the order mod.ID() targets, cancels it, then derives
// and adds its replacement. The modified order loses time priority — it is
// reinserted at the tail of its (possibly new) level. If the composed
// replacement is FillAndKill and cannot immediately cross, it is dropped and
// the original is not restored: the cancel already happened. A mismatched
// id inside mod surfaces as a ModificationError, by which point the
// original is gone too.
func (b *Book) ModifyOrder(mod *order.Modify) (trade.Trades, error) {
	old, err := b.lookupOrder(mod.ID())
	if err != nil {
		return nil, err
	}

	if _, err := b.CancelOrder(mod.ID()); err != nil {
		return nil, err
	}

	replacement, err := mod.Apply(old)
	if err != nil {
		return nil, err
	}

	return b.AddOrder(replacement)
}

func (b *Book) lookupOrder(id int64) (*order.Order, error) {
	loc, ok := b.index[id]
	if !ok {
		return nil, &OrderNotFoundError{OrderID: id}
	}

	tree := b.sideTree(loc.side)
	v, found := tree.Get(loc.price)
	if !found {
		return nil, &OrderNotFoundError{OrderID: id}
	}
	lvl := v.(*level)

	o, found := lvl.orders.Get(id)
	if !found {
		return nil, &OrderNotFoundError{OrderID: id}
	}
	return o.(*order.Order), nil
}

// Contains reports whether id currently rests in the book.
func (b *Book) Contains(id int64) bool {
	_, ok := b.index[id]
	return ok
}

// Lookup returns a value copy of the live state of the order tracked under
// id — its side, price, filled quantity, and remaining quantity — so a host
// can report order status without the book giving up ownership of the order
// itself.
func (b *Book) Lookup(id int64) (side order.Side, price int32, filled, remaining uint32, ok bool) {
	o, err := b.lookupOrder(id)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return o.Side(), o.Price(), o.FilledQuantity(), o.RemainingQuantity(), true
}

// Snapshot returns a value copy of the book's current aggregate liquidity:
// for each price level on each side, the price and the sum of remaining
// quantity of every live order resting there. Both sides are listed in
// ascending price. Snapshot is a pure function of state — two calls with no
// mutation between them return equal values.
func (b *Book) Snapshot() OrderBookLevelInfos {
	bids := make(LevelInfos, 0, b.bidSide.Size())
	// bidSide is ordered highest-first internally; walk it back to front so
	// both sides are reported in ascending price.
	it := b.bidSide.Iterator()
	it.End()
	for it.Prev() {
		price := it.Key().(int32)
		lvl := it.Value().(*level)
		bids = append(bids, LevelInfo{Price: price, AggregateQuantity: lvl.aggregateQuantity()})
	}

	asks := make(LevelInfos, 0, b.askSide.Size())
	ita := b.askSide.Iterator()
	ita.Begin()
	for ita.Next() {
		price := ita.Key().(int32)
		lvl := ita.Value().(*level)
		asks = append(asks, LevelInfo{Price: price, AggregateQuantity: lvl.aggregateQuantity()})
	}

	return OrderBookLevelInfos{Bids: bids, Asks: asks}
}

// canMatch reports whether an order of side at price could cross against
// the book's current opposing liquidity.
func (b *Book) canMatch(side order.Side, price int32) bool {
	if side == order.Buy {
		if b.askSide.Empty() {
			return false
		}
		bestAsk := b.askSide.Left().Key.(int32)
		return price >= bestAsk
	}

	if b.bidSide.Empty() {
		return false
	}
	bestBid := b.bidSide.Left().Key.(int32)
	return price <= bestBid
}

// matchOrders repeatedly pairs the oldest resting bid with the oldest
// resting ask at the two best price levels, for as long as the sides cross,
// re-evaluating the best price after each level empties. After the cross is
// exhausted, it sweeps one FillAndKill order per side — see pruneFaK.
func (b *Book) matchOrders() (trade.Trades, error) {
	trades := make(trade.Trades, 0, len(b.index))

	for {
		if b.bidSide.Empty() || b.askSide.Empty() {
			break
		}

		bidNode := b.bidSide.Left()
		askNode := b.askSide.Left()
		bestBidPrice := bidNode.Key.(int32)
		bestAskPrice := askNode.Key.(int32)

		if bestBidPrice < bestAskPrice {
			break
		}

		bidLevel := bidNode.Value.(*level)
		askLevel := askNode.Value.(*level)

		for !bidLevel.empty() && !askLevel.empty() {
			bid, _ := bidLevel.front()
			ask, _ := askLevel.front()

			fillQty := bid.RemainingQuantity()
			if ask.RemainingQuantity() < fillQty {
				fillQty = ask.RemainingQuantity()
			}

			if err := bid.Fill(fillQty); err != nil {
				return nil, &InternalOrderProcessingError{Reason: err.Error()}
			}
			if err := ask.Fill(fillQty); err != nil {
				return nil, &InternalOrderProcessingError{Reason: err.Error()}
			}

			trades = append(trades, trade.Trade{
				Bid: trade.TradeInfo{OrderID: bid.ID(), Price: bid.Price(), Quantity: fillQty},
				Ask: trade.TradeInfo{OrderID: ask.ID(), Price: ask.Price(), Quantity: fillQty},
			})

			if bid.IsFilled() {
				bidLevel.remove(bid.ID())
				delete(b.index, bid.ID())
			}
			if ask.IsFilled() {
				askLevel.remove(ask.ID())
				delete(b.index, ask.ID())
			}
		}

		if bidLevel.empty() {
			b.bidSide.Remove(bestBidPrice)
		}
		if askLevel.empty() {
			b.askSide.Remove(bestAskPrice)
		}
	}

	// Post-match FaK sweep: a FillAndKill order that survived matching has
	// no remaining counterparty and must not rest. Errors here are swallowed
	// deliberately — a healthy call never raises BookSideEmpty since each
	// branch is guarded by the corresponding Empty() check immediately above.
	if !b.bidSide.Empty() {
		_ = b.pruneFaK(order.Buy)
	}
	if !b.askSide.Empty() {
		_ = b.pruneFaK(order.Sell)
	}

	if len(trades) == 0 {
		return nil, nil
	}
	return trades, nil
}

// pruneFaK inspects the oldest order resting at the best level of side and
// cancels it if it is FillAndKill. It only ever looks at one order on one
// level — a FaK order resting behind another order at the best level, or at
// a worse level, survives a single matching pass.
func (b *Book) pruneFaK(side order.Side) error {
	tree := b.sideTree(side)
	if tree.Empty() {
		return &BookSideEmptyError{Side: side}
	}

	node := tree.Left()
	lvl := node.Value.(*level)

	frontOrder, ok := lvl.front()
	if !ok {
		return &BookSideEmptyError{Side: side}
	}

	if frontOrder.Type() != order.FillAndKill {
		return nil
	}

	_, err := b.CancelOrder(frontOrder.ID())
	return err
}
