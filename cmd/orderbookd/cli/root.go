package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	pretty bool
	level  string
)

// Execute builds and runs the orderbookd root command.
func Execute() error {
	root := &cobra.Command{
		Use:   "orderbookd",
		Short: "Single-asset limit order book matching engine host",
	}

	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "log with a human-readable console writer instead of JSON")
	root.PersistentFlags().StringVar(&level, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newServeCmd())
	root.AddCommand(newInspectCmd())

	return root.Execute()
}

func newLogger() zerolog.Logger {
	var w = os.Stderr
	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}
