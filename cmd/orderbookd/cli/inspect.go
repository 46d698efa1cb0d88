package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mohandeepkapur/orderbook/internal/host"
	"github.com/mohandeepkapur/orderbook/internal/metrics"
	"github.com/mohandeepkapur/orderbook/internal/order"
)

// event is one element of the JSON array in a recorded order event file: a
// submit, cancel, or modify against a single symbol's book.
type event struct {
	Op       string  `json:"op"`
	OrderID  *int64  `json:"order_id,omitempty"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side,omitempty"`
	Type     string  `json:"type,omitempty"`
	Price    *int32  `json:"price,omitempty"`
	Quantity *uint32 `json:"quantity,omitempty"`
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <event-file>",
		Short: "Replay a recorded event file through an in-process book and print its final state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading event file: %w", err)
			}

			var events []event
			if err := json.Unmarshal(data, &events); err != nil {
				return fmt.Errorf("parsing event file: %w", err)
			}

			logger := newLogger()
			m := metrics.New(prometheus.NewRegistry())
			h := host.New(m, logger)

			symbols := make(map[string]struct{})
			for i, e := range events {
				symbols[e.Symbol] = struct{}{}
				if err := replay(h, e); err != nil {
					logger.Warn().Err(err).Int("line", i).Msg("event replay failed")
				}
			}

			for symbol := range symbols {
				snap := h.Snapshot(symbol)
				out, err := json.MarshalIndent(map[string]any{
					"symbol": symbol,
					"book":   snap,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			}

			return nil
		},
	}

	return cmd
}

func replay(h *host.Host, e event) error {
	switch e.Op {
	case "submit":
		side, err := parseSide(e.Side)
		if err != nil {
			return err
		}
		typ, err := parseType(e.Type)
		if err != nil {
			return err
		}
		_, err = h.Submit(host.SubmitOrderRequest{
			OrderID:  e.OrderID,
			Symbol:   e.Symbol,
			Side:     side,
			Type:     typ,
			Price:    valOrZeroI32(e.Price),
			Quantity: valOrZeroU32(e.Quantity),
		})
		return err

	case "cancel":
		if e.OrderID == nil {
			return fmt.Errorf("cancel event missing order_id")
		}
		_, err := h.Cancel(e.Symbol, *e.OrderID)
		return err

	case "modify":
		if e.OrderID == nil {
			return fmt.Errorf("modify event missing order_id")
		}
		var side *order.Side
		if e.Side != "" {
			parsed, err := parseSide(e.Side)
			if err != nil {
				return err
			}
			side = &parsed
		}
		mod := order.NewModify(*e.OrderID, side, e.Price, e.Quantity)
		_, err := h.Modify(e.Symbol, mod)
		return err

	default:
		return fmt.Errorf("unknown op %q", e.Op)
	}
}

func parseSide(s string) (order.Side, error) {
	switch s {
	case "BUY":
		return order.Buy, nil
	case "SELL":
		return order.Sell, nil
	default:
		return 0, fmt.Errorf("invalid side: %q", s)
	}
}

func parseType(s string) (order.Type, error) {
	switch s {
	case "GOOD_TILL_CANCEL":
		return order.GoodTillCancel, nil
	case "FILL_AND_KILL":
		return order.FillAndKill, nil
	default:
		return 0, fmt.Errorf("invalid type: %q", s)
	}
}

func valOrZeroI32(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}

func valOrZeroU32(p *uint32) uint32 {
	if p == nil {
		return 0
	}
	return *p
}
