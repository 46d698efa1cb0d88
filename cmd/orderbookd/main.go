// Command orderbookd runs the order book host as a standalone HTTP service,
// or replays a recorded event file against an in-process book for
// inspection.
package main

import (
	"fmt"
	"os"

	"github.com/mohandeepkapur/orderbook/cmd/orderbookd/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
