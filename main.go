package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/app"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
)

var APP_NAME = "bybit-grid-dashboard"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	app.SetupLogger(app.GetLogConfig())
	defer handlePanic()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.GetConfig()); err != nil {
		logger.WithError(err).Fatal("Server stopped with error")
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
		os.Exit(1)
	}
}
