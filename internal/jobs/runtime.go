// Package jobs wires the reconciliation components into the one-shot CLI
// jobs: shared bootstrap (config, logger, database, optional redis and NATS)
// and shared teardown (seed-run audit record, summary on stdout, exit code).
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"seeding-service/internal/batch"
	"seeding-service/internal/config"
	"seeding-service/internal/errs"
	"seeding-service/internal/events"
	"seeding-service/internal/models"
	"seeding-service/internal/repository"
	"gorm.io/gorm"
)

// Runtime owns the shared resources of one job run. Acquired at job start,
// released by Close; no process-wide singletons.
type Runtime struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *gorm.DB

	Redis     *redis.Client     // nil when REDIS_URL is unset or unreachable
	Publisher *events.Publisher // nil when NATS_URL is unset or unreachable

	Catalog   repository.CatalogRepositoryInterface
	Inventory repository.InventoryRepositoryInterface
	RBAC      repository.RBACRepositoryInterface
	Runs      repository.RunRepositoryInterface
}

// NewRuntime bootstraps config, logging, the database connection and the
// optional redis/NATS clients for the named job.
func NewRuntime(jobName string) (*Runtime, error) {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rt := &Runtime{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Catalog:   repository.NewCatalogRepository(db),
		Inventory: repository.NewInventoryRepository(db),
		RBAC:      repository.NewRBACRepository(db),
		Runs:      repository.NewRunRepository(db),
	}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Failed to parse Redis URL (continuing without cache)")
		} else {
			client := redis.NewClient(redisOpts)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := client.Ping(ctx).Err(); err != nil {
				logger.WithError(err).Warn("Failed to connect to Redis (continuing without cache)")
			} else {
				rt.Redis = client
			}
			cancel()
		}
	}

	publisher, err := events.NewPublisher(jobName, logger)
	if err != nil {
		logger.WithError(err).Info("Events publisher not available (continuing without event publishing)")
	} else {
		rt.Publisher = publisher
	}

	return rt, nil
}

// Close releases every resource the runtime acquired.
func (rt *Runtime) Close() {
	if rt.Publisher != nil {
		rt.Publisher.Close()
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			rt.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
	if sqlDB, err := rt.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			rt.Logger.WithError(err).Warn("Failed to close database connection")
		}
	}
}

// Finish persists the run record, publishes the summary event, prints the
// human-readable summary and returns the process exit code: 0 on full
// success, 1 on a fatal precondition, an uncaught error or any failed item.
func (rt *Runtime) Finish(jobName, mode string, startedAt time.Time, summary *batch.Summary, runErr error) int {
	if summary == nil {
		summary = &batch.Summary{}
	}

	status := models.SeedRunStatusCompleted
	exitCode := 0
	switch {
	case runErr != nil && errs.IsPrecondition(runErr):
		status = models.SeedRunStatusAborted
		exitCode = 1
	case summary.Cancelled:
		status = models.SeedRunStatusCancelled
		exitCode = 1
	case runErr != nil:
		status = models.SeedRunStatusAborted
		exitCode = 1
	case summary.Failed > 0:
		status = models.SeedRunStatusPartial
		exitCode = 1
	}

	run := &models.SeedRun{
		JobName:    jobName,
		Status:     status,
		Succeeded:  summary.Succeeded,
		Failed:     summary.Failed,
		Created:    summary.Created,
		Updated:    summary.Updated,
		Skipped:    summary.Skipped,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	if mode != "" {
		run.Mode = &mode
	}
	if len(summary.Errors) > 0 {
		if data, err := json.Marshal(summary.Errors); err == nil {
			run.Errors = data
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rt.Runs.CreateSeedRun(ctx, run); err != nil {
		rt.Logger.WithError(err).Warn("Failed to persist seed run record")
	}

	if rt.Publisher != nil {
		if err := rt.Publisher.PublishRunCompleted(jobName, mode, string(status), summary); err != nil {
			rt.Logger.WithError(err).Warn("Failed to publish run event")
		}
	}

	fmt.Printf("%s: %s\n", jobName, summary.String())
	if runErr != nil {
		fmt.Printf("%s: aborted: %v\n", jobName, runErr)
	}
	return exitCode
}
