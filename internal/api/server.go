// Package api exposes a Host over HTTP: order submission, cancellation,
// modification, book snapshots, a health check, and Prometheus scraping.
// Routing is plain net/http — ServeMux method-tagged patterns and
// r.PathValue — with a small writeJSON helper for encoding responses.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohandeepkapur/orderbook/internal/host"
	"github.com/mohandeepkapur/orderbook/internal/order"
)

// --- Request/Response structs ---

type CreateOrderRequest struct {
	OrderID  *int64 `json:"order_id,omitempty"`
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Price    int32  `json:"price"`
	Quantity uint32 `json:"quantity"`
}

type ModifyOrderRequest struct {
	Side     *string `json:"side,omitempty"`
	Price    *int32  `json:"price,omitempty"`
	Quantity *uint32 `json:"quantity,omitempty"`
}

type TradeResponse struct {
	BidOrderID int64  `json:"bid_order_id"`
	AskOrderID int64  `json:"ask_order_id"`
	Price      int32  `json:"price"`
	Quantity   uint32 `json:"quantity"`
}

type OrderResultResponse struct {
	OrderID           int64           `json:"order_id"`
	Status            string          `json:"status"`
	FilledQuantity    uint32          `json:"filled_quantity,omitempty"`
	RemainingQuantity uint32          `json:"remaining_quantity,omitempty"`
	Trades            []TradeResponse `json:"trades,omitempty"`
}

type CancelOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP front end for a Host.
type Server struct {
	listenAddr string
	host       *host.Host
	startTime  time.Time
}

// New constructs a Server bound to h and listening on listenAddr.
func New(listenAddr string, h *host.Host) *Server {
	return &Server{
		listenAddr: listenAddr,
		host:       h,
		startTime:  time.Now(),
	}
}

// Mux builds the server's route table, exported separately from Run so tests
// can exercise handlers with httptest without binding a socket.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/orders", s.handleSubmitOrder)
	mux.HandleFunc("DELETE /v1/orders/{symbol}/{id}", s.handleCancelOrder)
	mux.HandleFunc("PATCH /v1/orders/{symbol}/{id}", s.handleModifyOrder)
	mux.HandleFunc("GET /v1/orderbook/{symbol}", s.handleGetOrderBook)
	mux.HandleFunc("GET /health", s.handleHealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	return http.ListenAndServe(s.listenAddr, s.Mux())
}

type invalidFieldError struct {
	Field string
	Value string
}

func (e *invalidFieldError) Error() string {
	return "invalid " + e.Field + ": " + e.Value
}

func parseSide(s string) (order.Side, error) {
	switch s {
	case "BUY":
		return order.Buy, nil
	case "SELL":
		return order.Sell, nil
	default:
		return 0, &invalidFieldError{Field: "side", Value: s}
	}
}

func parseType(s string) (order.Type, error) {
	switch s {
	case "GOOD_TILL_CANCEL":
		return order.GoodTillCancel, nil
	case "FILL_AND_KILL":
		return order.FillAndKill, nil
	default:
		return 0, &invalidFieldError{Field: "type", Value: s}
	}
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	side, err := parseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	typ, err := parseType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}
	if req.Quantity == 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	res, err := s.host.Submit(host.SubmitOrderRequest{
		OrderID:  req.OrderID,
		Symbol:   req.Symbol,
		Side:     side,
		Type:     typ,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResultResponse(res))
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	cancelled, err := s.host.Cancel(symbol, id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CancelOrderResponse{OrderID: cancelled})
}

func (s *Server) handleModifyOrder(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req ModifyOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var side *order.Side
	if req.Side != nil {
		parsed, err := parseSide(*req.Side)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		side = &parsed
	}

	mod := order.NewModify(id, side, req.Price, req.Quantity)
	res, err := s.host.Modify(symbol, mod)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toOrderResultResponse(res))
}

func (s *Server) handleGetOrderBook(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	snap := s.host.Snapshot(symbol)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

func toOrderResultResponse(res *host.Result) OrderResultResponse {
	resp := OrderResultResponse{
		OrderID:           res.OrderID,
		Status:            res.Status.String(),
		FilledQuantity:    res.Filled,
		RemainingQuantity: res.Remaining,
	}
	if len(res.Trades) > 0 {
		resp.Trades = make([]TradeResponse, len(res.Trades))
		for i, t := range res.Trades {
			resp.Trades[i] = TradeResponse{
				BidOrderID: t.Bid.OrderID,
				AskOrderID: t.Ask.OrderID,
				Price:      t.Ask.Price,
				Quantity:   t.Bid.Quantity,
			}
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
