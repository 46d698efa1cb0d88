package book

// LevelInfo is a read-only (price, aggregate remaining quantity) entry for
// one price level.
type LevelInfo struct {
	Price             int32  `json:"price"`
	AggregateQuantity uint32 `json:"quantity"`
}

// LevelInfos is a price-ordered sequence of LevelInfo entries.
type LevelInfos []LevelInfo

// OrderBookLevelInfos is a value-typed, point-in-time summary of per-level
// aggregate liquidity on both sides. It shares no state with the book that
// produced it — mutating the book afterward never changes a snapshot
// already taken.
type OrderBookLevelInfos struct {
	Bids LevelInfos `json:"bids"`
	Asks LevelInfos `json:"asks"`
}
