// Command server runs the fitcoach API: meal photo analysis, nutrition
// logging, and daily summaries over HTTP.
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

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
