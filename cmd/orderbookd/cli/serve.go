package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mohandeepkapur/orderbook/internal/api"
	"github.com/mohandeepkapur/orderbook/internal/host"
	"github.com/mohandeepkapur/orderbook/internal/metrics"
)

func newServeCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and Prometheus endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			m := metrics.New(prometheus.DefaultRegisterer)
			h := host.New(m, logger)
			server := api.New(listenAddr, h)

			logger.Info().Str("addr", listenAddr).Msg("starting orderbookd")
			return server.Run()
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen-addr", ":8080", "address to listen on")

	return cmd
}
