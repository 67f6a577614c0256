package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"seeding-service/internal/jobs"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	rt, err := jobs.NewRuntime(jobs.JobSeedStock)
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize seed-stock job")
		return 1
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now()
	summary, err := jobs.SeedStock(ctx, rt)
	return rt.Finish(jobs.JobSeedStock, rt.Config.StockSeedMode, startedAt, summary, err)
}
