// Package host is the multi-symbol orchestration layer on top of the
// single-asset matching core: it owns one book.Book per traded symbol,
// assigns order ids when a caller doesn't supply one, serializes access to
// the books behind one host-wide mutex (a Book itself never blocks and never
// locks, so something above it has to), logs every operation, and records
// metrics.
package host

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mohandeepkapur/orderbook/internal/book"
	"github.com/mohandeepkapur/orderbook/internal/metrics"
	"github.com/mohandeepkapur/orderbook/internal/order"
	"github.com/mohandeepkapur/orderbook/internal/trade"
)

// Status is the terminal-or-resting disposition of an order as reported to
// a caller.
type Status int

const (
	Accepted Status = iota
	PartiallyFilled
	Filled
	Cancelled
	FaKRejected
	FaKSwept
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "ACCEPTED"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case FaKRejected:
		return "FAK_REJECTED"
	case FaKSwept:
		return "FAK_SWEPT"
	default:
		return "UNKNOWN"
	}
}

// SubmitOrderRequest describes an inbound order. OrderID is optional — when
// nil the Host mints one.
type SubmitOrderRequest struct {
	OrderID  *int64
	Symbol   string
	Side     order.Side
	Type     order.Type
	Price    int32
	Quantity uint32
}

// Result is what a caller gets back from Submit/Modify: the order's final
// id, its disposition, and any trades the operation produced.
type Result struct {
	OrderID   int64
	Status    Status
	Filled    uint32
	Remaining uint32
	Trades    trade.Trades
}

// Host owns a book per symbol.
type Host struct {
	mu      sync.Mutex
	books   map[string]*book.Book
	metrics *metrics.Metrics
	log     zerolog.Logger
	nextID  atomic.Int64
}

// New constructs an empty Host. Its order-id sequence is seeded from a
// fresh uuid so two Host instances don't trivially hand out colliding ids.
func New(m *metrics.Metrics, logger zerolog.Logger) *Host {
	h := &Host{
		books:   make(map[string]*book.Book),
		metrics: m,
		log:     logger,
	}
	seed := uuid.New()
	h.nextID.Store(int64(binary.BigEndian.Uint32(seed[:4]) & 0x7fffffff))
	return h
}

func (h *Host) mintOrderID() int64 {
	return h.nextID.Add(1)
}

func (h *Host) bookFor(symbol string) *book.Book {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.books[symbol]
	if !ok {
		b = book.New(symbol)
		h.books[symbol] = b
	}
	return b
}

// Submit adds req to its symbol's book and reports the resulting status.
func (h *Host) Submit(req SubmitOrderRequest) (*Result, error) {
	started := time.Now()

	id := h.mintOrderID()
	if req.OrderID != nil {
		id = *req.OrderID
	}

	h.metrics.OrdersReceived.WithLabelValues(req.Symbol, req.Side.String()).Inc()

	b := h.bookFor(req.Symbol)
	o := order.New(req.Type, id, req.Side, req.Price, req.Quantity)

	h.mu.Lock()
	trades, err := b.AddOrder(o)
	h.mu.Unlock()

	h.metrics.Observe("add_order", started)

	if err != nil {
		h.metrics.OrdersRejected.WithLabelValues(req.Symbol, "add_order_error").Inc()
		h.log.Warn().Err(err).Int64("order_id", id).Str("symbol", req.Symbol).Msg("order rejected")
		return nil, err
	}

	status := h.statusAfterAdd(b, o, req.Type, len(trades) > 0)

	h.log.Info().
		Int64("order_id", id).
		Str("symbol", req.Symbol).
		Str("side", req.Side.String()).
		Str("type", req.Type.String()).
		Str("status", status.String()).
		Int("trades", len(trades)).
		Msg("order submitted")

	switch status {
	case Accepted, PartiallyFilled:
		h.metrics.OrdersAccepted.WithLabelValues(req.Symbol, req.Side.String()).Inc()
		h.metrics.OrdersResting.WithLabelValues(req.Symbol, req.Side.String()).Inc()
	case Filled:
		h.metrics.OrdersAccepted.WithLabelValues(req.Symbol, req.Side.String()).Inc()
	case FaKRejected:
		h.metrics.OrdersRejected.WithLabelValues(req.Symbol, "fak_no_liquidity").Inc()
	}
	if len(trades) > 0 {
		h.metrics.TradesExecuted.WithLabelValues(req.Symbol).Add(float64(len(trades)))
	}

	return &Result{
		OrderID:   id,
		Status:    status,
		Filled:    o.FilledQuantity(),
		Remaining: o.RemainingQuantity(),
		Trades:    trades,
	}, nil
}

// statusAfterAdd classifies the order's disposition once AddOrder has
// returned. o is the same pointer the book matched against, so its
// remaining/filled quantity already reflects anything the matching loop did.
func (h *Host) statusAfterAdd(b *book.Book, o *order.Order, t order.Type, traded bool) Status {
	if o.IsFilled() {
		return Filled
	}
	if b.Contains(o.ID()) {
		if o.FilledQuantity() > 0 {
			return PartiallyFilled
		}
		return Accepted
	}
	// Not filled and not resting: either a FaK admission rejection (no
	// trades at all) or a FaK swept off the book after a partial cross.
	if t == order.FillAndKill {
		if traded {
			return FaKSwept
		}
		return FaKRejected
	}
	// A GoodTillCancel order that is neither filled nor resting should be
	// unreachable; report it as cancelled rather than panic.
	return Cancelled
}

// Cancel removes id from symbol's book.
func (h *Host) Cancel(symbol string, id int64) (int64, error) {
	started := time.Now()
	b := h.bookFor(symbol)

	h.mu.Lock()
	side, _, _, _, ok := b.Lookup(id)
	cancelled, err := b.CancelOrder(id)
	h.mu.Unlock()

	h.metrics.Observe("cancel_order", started)

	if err != nil {
		h.log.Warn().Err(err).Int64("order_id", id).Str("symbol", symbol).Msg("cancel failed")
		return 0, err
	}

	if ok {
		h.metrics.OrdersCancelled.WithLabelValues(symbol, side.String()).Inc()
		h.metrics.OrdersResting.WithLabelValues(symbol, side.String()).Dec()
	}
	h.log.Info().Int64("order_id", id).Str("symbol", symbol).Msg("order cancelled")

	return cancelled, nil
}

// Modify replaces the order mod targets within symbol's book.
func (h *Host) Modify(symbol string, mod *order.Modify) (*Result, error) {
	started := time.Now()
	b := h.bookFor(symbol)

	h.mu.Lock()
	trades, err := b.ModifyOrder(mod)
	h.mu.Unlock()

	h.metrics.Observe("modify_order", started)

	if err != nil {
		h.log.Warn().Err(err).Int64("order_id", mod.ID()).Str("symbol", symbol).Msg("modify failed")
		return nil, err
	}

	side, _, filled, remaining, ok := b.Lookup(mod.ID())
	status := Cancelled
	switch {
	case ok && filled > 0:
		status = PartiallyFilled
	case ok:
		status = Accepted
	case len(trades) > 0:
		status = FaKSwept
	default:
		status = FaKRejected
	}

	if len(trades) > 0 {
		h.metrics.TradesExecuted.WithLabelValues(symbol).Add(float64(len(trades)))
	}
	h.log.Info().
		Int64("order_id", mod.ID()).
		Str("symbol", symbol).
		Str("side", side.String()).
		Str("status", status.String()).
		Msg("order modified")

	return &Result{
		OrderID:   mod.ID(),
		Status:    status,
		Remaining: remaining,
		Trades:    trades,
	}, nil
}

// Snapshot returns symbol's book's current aggregate liquidity.
func (h *Host) Snapshot(symbol string) book.OrderBookLevelInfos {
	b := h.bookFor(symbol)
	h.mu.Lock()
	defer h.mu.Unlock()
	return b.Snapshot()
}
