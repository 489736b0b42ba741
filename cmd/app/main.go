package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/csdewars/ewars/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New()

	app, err := initializeApp()
	if err != nil {
		log.Error("failed to wire ewars service", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("ewars service stopped with error", "error", err)
		os.Exit(1)
	}
}
