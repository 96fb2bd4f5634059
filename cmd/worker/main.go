// Command worker runs the daily rollup worker: it consumes nutrition
// analysis events and keeps per-user daily summaries up to date.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/mstepanov/fitcoach-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunWorker(ctx); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
