// Command keepalive pings the game server's health endpoint so that hosting
// platforms which idle inactive services keep it warm. It is meant to run
// from a scheduler and exits non-zero when every attempt fails.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
