// Package trade holds the immutable records the matching core emits when
// two resting orders cross.
package trade

// TradeInfo is one side's view of a matched fill.
type TradeInfo struct {
	OrderID  int64
	Price    int32
	Quantity uint32
}

// Trade is one matched pair: the bid-side and ask-side participants. Bid is
// always the Buy-side order, Ask always the Sell-side order, regardless of
// which one was the incoming (taker) order. Bid.Quantity always equals
// Ask.Quantity.
type Trade struct {
	Bid TradeInfo
	Ask TradeInfo
}

// Trades is the ordered list of trades a single book operation produced —
// best prices first, time priority within each level.
type Trades []Trade
