package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"event-schema-validator/internal/app"
	"event-schema-validator/internal/config"
)

func main() {
	cfg := config.Load()

	a := app.New(cfg)
	defer a.Shutdown()

	// A signal stops the run between two events; the report keeps every
	// line written so far.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := a.Run(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("Validation run failed")
		stop()
		a.Shutdown()
		os.Exit(1)
	}
}
