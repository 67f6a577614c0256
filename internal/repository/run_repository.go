package repository

import (
	"context"

	"seeding-service/internal/models"
	"gorm.io/gorm"
)

// RunRepositoryInterface persists seed-run audit records.
type RunRepositoryInterface interface {
	CreateSeedRun(ctx context.Context, run *models.SeedRun) error
}

type runRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a seed-run repository backed by gorm
func NewRunRepository(db *gorm.DB) RunRepositoryInterface {
	return &runRepository{db: db}
}

func (r *runRepository) CreateSeedRun(ctx context.Context, run *models.SeedRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}
