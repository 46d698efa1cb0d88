package book

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohandeepkapur/orderbook/internal/order"
)

func TestNonCrossingGTCPair(t *testing.T) {
	b := New("AAPL")

	trades, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Buy, 100, 10))
	require.NoError(t, err)
	assert.Nil(t, trades)

	trades, err = b.AddOrder(order.New(order.GoodTillCancel, 2, order.Sell, 120, 10))
	require.NoError(t, err)
	assert.Nil(t, trades)

	snap := b.Snapshot()
	assert.Equal(t, LevelInfos{{Price: 100, AggregateQuantity: 10}}, snap.Bids)
	assert.Equal(t, LevelInfos{{Price: 120, AggregateQuantity: 10}}, snap.Asks)
}

func TestFullCrossEqualSize(t *testing.T) {
	b := New("AAPL")

	_, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Buy, 100, 10))
	require.NoError(t, err)

	trades, err := b.AddOrder(order.New(order.GoodTillCancel, 2, order.Sell, 100, 10))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(1), trades[0].Bid.OrderID)
	assert.Equal(t, int32(100), trades[0].Bid.Price)
	assert.Equal(t, uint32(10), trades[0].Bid.Quantity)
	assert.Equal(t, int64(2), trades[0].Ask.OrderID)
	assert.Equal(t, int32(100), trades[0].Ask.Price)
	assert.Equal(t, uint32(10), trades[0].Ask.Quantity)

	snap := b.Snapshot()
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
	assert.Empty(t, b.index)
}

func TestPartialFillMakerRemains(t *testing.T) {
	b := New("AAPL")

	_, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Buy, 100, 10))
	require.NoError(t, err)

	trades, err := b.AddOrder(order.New(order.GoodTillCancel, 2, order.Sell, 100, 4))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, uint32(4), trades[0].Bid.Quantity)
	assert.Equal(t, uint32(4), trades[0].Ask.Quantity)

	snap := b.Snapshot()
	assert.Equal(t, LevelInfos{{Price: 100, AggregateQuantity: 6}}, snap.Bids)
	assert.Empty(t, snap.Asks)

	_, err = b.CancelOrder(1)
	assert.NoError(t, err)

	_, err = b.CancelOrder(2)
	var notFound *OrderNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestFaKRejectedOnEmptyBook(t *testing.T) {
	b := New("AAPL")

	trades, err := b.AddOrder(order.New(order.FillAndKill, 1, order.Sell, 100, 10))
	require.NoError(t, err)
	assert.Nil(t, trades)

	snap := b.Snapshot()
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)

	_, err = b.CancelOrder(1)
	var notFound *OrderNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestFaKCrossesAvailableLiquidityRemainderSwept(t *testing.T) {
	b := New("AAPL")

	_, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Sell, 100, 3))
	require.NoError(t, err)
	_, err = b.AddOrder(order.New(order.GoodTillCancel, 2, order.Sell, 101, 3))
	require.NoError(t, err)

	trades, err := b.AddOrder(order.New(order.FillAndKill, 9, order.Buy, 101, 10))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, int64(9), trades[0].Bid.OrderID)
	assert.Equal(t, int32(101), trades[0].Bid.Price)
	assert.Equal(t, uint32(3), trades[0].Bid.Quantity)
	assert.Equal(t, int64(1), trades[0].Ask.OrderID)

	assert.Equal(t, int64(9), trades[1].Bid.OrderID)
	assert.Equal(t, int32(101), trades[1].Bid.Price)
	assert.Equal(t, uint32(3), trades[1].Bid.Quantity)
	assert.Equal(t, int64(2), trades[1].Ask.OrderID)

	snap := b.Snapshot()
	assert.Empty(t, snap.Asks)
	assert.Empty(t, snap.Bids)

	_, err = b.CancelOrder(9)
	var notFound *OrderNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestModifyLosesPriority(t *testing.T) {
	b := New("AAPL")

	_, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Buy, 100, 5))
	require.NoError(t, err)
	_, err = b.AddOrder(order.New(order.GoodTillCancel, 2, order.Buy, 100, 5))
	require.NoError(t, err)

	qty := uint32(7)
	_, err = b.ModifyOrder(order.NewModify(1, nil, nil, &qty))
	require.NoError(t, err)

	trades, err := b.AddOrder(order.New(order.GoodTillCancel, 3, order.Sell, 100, 5))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	// buy order 2 trades first — order 1 lost its place at the tail of the level.
	assert.Equal(t, int64(2), trades[0].Bid.OrderID)
}

func TestAddDuplicateOrderID(t *testing.T) {
	b := New("AAPL")
	_, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Buy, 100, 5))
	require.NoError(t, err)

	_, err = b.AddOrder(order.New(order.GoodTillCancel, 1, order.Sell, 101, 5))
	var already *OrderAlreadyExistsError
	assert.ErrorAs(t, err, &already)
}

func TestCancelNonExistentOrder(t *testing.T) {
	b := New("AAPL")
	_, err := b.CancelOrder(42)
	var notFound *OrderNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestModifyNonExistentOrder(t *testing.T) {
	b := New("AAPL")
	_, err := b.ModifyOrder(order.NewModify(42, nil, nil, nil))
	var notFound *OrderNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestModifyMismatchedIDPropagatesAndCancelsOriginal(t *testing.T) {
	// ModifyOrder is keyed by mod.ID(), so an id mismatch inside Apply can
	// only happen if the descriptor's id is looked up correctly but Apply
	// itself is handed a stale order snapshot — exercised directly here
	// against Modify.Apply/OrderBook.CancelOrder's documented interaction.
	b := New("AAPL")
	_, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Buy, 100, 5))
	require.NoError(t, err)

	old, err := b.lookupOrder(1)
	require.NoError(t, err)

	_, err = b.CancelOrder(1)
	require.NoError(t, err)

	mismatched := order.NewModify(2, nil, nil, nil)
	_, err = mismatched.Apply(old)
	var modErr *order.ModificationError
	assert.ErrorAs(t, err, &modErr)

	// the original is gone regardless of the later failure.
	_, err = b.CancelOrder(1)
	var notFound *OrderNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCancelIdempotence(t *testing.T) {
	b := New("AAPL")
	_, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Buy, 100, 5))
	require.NoError(t, err)

	_, err = b.CancelOrder(1)
	require.NoError(t, err)

	_, err = b.CancelOrder(1)
	var notFound *OrderNotFoundError
	assert.ErrorAs(t, err, &notFound)

	snap := b.Snapshot()
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
}

func TestSnapshotPurity(t *testing.T) {
	b := New("AAPL")
	_, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Buy, 100, 5))
	require.NoError(t, err)

	first := b.Snapshot()
	second := b.Snapshot()
	assert.Equal(t, first, second)
}

func TestMultiLevelSweepWithinOneCall(t *testing.T) {
	b := New("AAPL")
	_, err := b.AddOrder(order.New(order.GoodTillCancel, 1, order.Sell, 100, 5))
	require.NoError(t, err)
	_, err = b.AddOrder(order.New(order.GoodTillCancel, 2, order.Sell, 101, 5))
	require.NoError(t, err)

	trades, err := b.AddOrder(order.New(order.GoodTillCancel, 3, order.Buy, 101, 8))
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, uint32(5), trades[0].Bid.Quantity)
	assert.Equal(t, int32(100), trades[0].Ask.Price)
	assert.Equal(t, uint32(3), trades[1].Bid.Quantity)
	assert.Equal(t, int32(101), trades[1].Ask.Price)

	snap := b.Snapshot()
	assert.Empty(t, snap.Bids)
	assert.Equal(t, LevelInfos{{Price: 101, AggregateQuantity: 2}}, snap.Asks)
}

// invariants checks the properties that must hold after every operation:
// the index and the price-level trees agree on every resting order, no
// level is left empty, aggregate quantities match, and the book never
// crosses itself.
func invariants(t *testing.T, b *Book) {
	t.Helper()

	for id, loc := range b.index {
		tree := b.sideTree(loc.side)
		v, found := tree.Get(loc.price)
		require.Truef(t, found, "index entry for %d points at a missing level", id)
		lvl := v.(*level)
		_, found = lvl.orders.Get(id)
		require.Truef(t, found, "index entry for %d not present in its recorded level", id)
	}

	var bidTotal, askTotal uint32
	itb := b.bidSide.Iterator()
	itb.Begin()
	for itb.Next() {
		lvl := itb.Value().(*level)
		require.False(t, lvl.empty(), "bid side has an empty level")
		bidTotal += lvl.aggregateQuantity()
	}
	ita := b.askSide.Iterator()
	ita.Begin()
	for ita.Next() {
		lvl := ita.Value().(*level)
		require.False(t, lvl.empty(), "ask side has an empty level")
		askTotal += lvl.aggregateQuantity()
	}

	snap := b.Snapshot()
	var snapBidTotal, snapAskTotal uint32
	for _, l := range snap.Bids {
		snapBidTotal += l.AggregateQuantity
	}
	for _, l := range snap.Asks {
		snapAskTotal += l.AggregateQuantity
	}
	require.Equal(t, bidTotal, snapBidTotal)
	require.Equal(t, askTotal, snapAskTotal)

	if !b.bidSide.Empty() && !b.askSide.Empty() {
		bestBid := b.bidSide.Left().Key.(int32)
		bestAsk := b.askSide.Left().Key.(int32)
		require.Less(t, bestBid, bestAsk)
	}
}

func TestRandomOperationsPreserveInvariants(t *testing.T) {
	b := New("AAPL")
	rng := rand.New(rand.NewSource(7))

	var live []int64
	var nextID int64 = 1

	for i := 0; i < 500; i++ {
		op := rng.Intn(4)
		switch {
		case op == 0 || len(live) == 0:
			id := nextID
			nextID++
			side := order.Buy
			if rng.Intn(2) == 0 {
				side = order.Sell
			}
			otype := order.GoodTillCancel
			if rng.Intn(4) == 0 {
				otype = order.FillAndKill
			}
			price := int32(95 + rng.Intn(10))
			qty := uint32(1 + rng.Intn(10))

			trades, err := b.AddOrder(order.New(otype, id, side, price, qty))
			require.NoError(t, err)
			for _, tr := range trades {
				require.Equal(t, tr.Bid.Quantity, tr.Ask.Quantity)
			}
			if _, err := b.lookupOrder(id); err == nil {
				live = append(live, id)
			}
		case op == 1:
			id := live[rng.Intn(len(live))]
			_, err := b.CancelOrder(id)
			if err == nil {
				live = removeID(live, id)
			}
		case op == 2:
			id := live[rng.Intn(len(live))]
			price := int32(95 + rng.Intn(10))
			_, err := b.ModifyOrder(order.NewModify(id, nil, &price, nil))
			if err == nil {
				if _, lookErr := b.lookupOrder(id); lookErr != nil {
					live = removeID(live, id)
				}
			}
		default:
			_ = b.Snapshot()
		}

		invariants(t, b)

		// prune ids the book no longer tracks (filled, FaK-swept, etc).
		filtered := live[:0]
		for _, id := range live {
			if _, err := b.lookupOrder(id); err == nil {
				filtered = append(filtered, id)
			}
		}
		live = filtered
	}
}

func removeID(ids []int64, target int64) []int64 {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
