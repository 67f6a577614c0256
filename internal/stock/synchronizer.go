// Package stock converges per-warehouse stock ledger rows toward seeded
// quantities: exactly one row per (owner, warehouse), created on first sync
// and - depending on the configured mode - overwritten or left alone on
// later runs.
package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"seeding-service/internal/errs"
	"seeding-service/internal/models"
	"seeding-service/internal/repository"
)

// Mode selects what a repeated sync run does to rows that already exist.
type Mode string

const (
	// ModeInitializeMissingOnly creates rows that don't exist yet and leaves
	// existing quantities untouched. The safe default: seeding must not
	// clobber live inventory unless explicitly asked to.
	ModeInitializeMissingOnly Mode = "initialize-missing-only"
	// ModeResetAll overwrites quantity, reserved quantity and unit on every
	// row it visits (last-write-wins).
	ModeResetAll Mode = "reset-all"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeInitializeMissingOnly, ModeResetAll:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown stock seed mode %q", s)
}

// Request is one stock row to converge. WarehouseID and UnitID must already
// be resolved (see ResolveWarehouse / ResolveUnit).
type Request struct {
	OwnerID          uuid.UUID
	WarehouseID      uuid.UUID
	UnitID           uuid.UUID
	Quantity         int
	ReservedQuantity int
}

// Synchronizer upserts stock rows by their (owner, warehouse) key.
type Synchronizer struct {
	repo   repository.InventoryRepositoryInterface
	mode   Mode
	logger *logrus.Entry
}

// NewSynchronizer creates a stock synchronizer
func NewSynchronizer(repo repository.InventoryRepositoryInterface, mode Mode, logger *logrus.Logger) *Synchronizer {
	return &Synchronizer{
		repo:   repo,
		mode:   mode,
		logger: logger.WithField("component", "stock-synchronizer"),
	}
}

// SyncStock converges the stock row for req's (owner, warehouse) key. The
// returned flag reports whether a new row was created; it comes straight from
// the upsert primitive, never from timestamp comparison.
func (s *Synchronizer) SyncStock(ctx context.Context, req Request) (*models.StockItem, bool, error) {
	item := &models.StockItem{
		ID:               uuid.New(),
		OwnerID:          req.OwnerID,
		WarehouseID:      req.WarehouseID,
		UnitID:           req.UnitID,
		Quantity:         req.Quantity,
		ReservedQuantity: req.ReservedQuantity,
	}

	var (
		row     *models.StockItem
		created bool
		err     error
	)
	if s.mode == ModeResetAll {
		row, created, err = s.repo.UpsertStockItem(ctx, item)
	} else {
		row, created, err = s.repo.CreateStockItemIfMissing(ctx, item)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to sync stock for owner %s: %w", req.OwnerID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"owner":     req.OwnerID,
		"warehouse": req.WarehouseID,
		"created":   created,
	}).Debug("Synced stock row")

	return row, created, nil
}

// ResolveWarehouse picks the warehouse for a stock item: the explicitly named
// one when preferredCode is set, else the system default, else the first
// available. Fails with MissingDefaultError when nothing can be resolved.
func (s *Synchronizer) ResolveWarehouse(ctx context.Context, preferredCode string) (*models.Warehouse, error) {
	if preferredCode != "" {
		warehouse, err := s.repo.FindWarehouseByCode(ctx, preferredCode)
		if err != nil {
			return nil, err
		}
		if warehouse != nil {
			return warehouse, nil
		}
		// An explicitly named warehouse that doesn't exist is an item-level
		// data problem, not grounds to silently fall back.
		return nil, errs.NewValidation(preferredCode, "warehouse not found")
	}

	warehouse, err := s.repo.DefaultWarehouse(ctx)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, &errs.MissingDefaultError{Kind: "warehouse"}
	}
	return warehouse, nil
}

// ResolveUnit picks the measurement unit, same resolution chain as
// ResolveWarehouse.
func (s *Synchronizer) ResolveUnit(ctx context.Context, preferredCode string) (*models.Unit, error) {
	if preferredCode != "" {
		unit, err := s.repo.FindUnitByCode(ctx, preferredCode)
		if err != nil {
			return nil, err
		}
		if unit != nil {
			return unit, nil
		}
		return nil, errs.NewValidation(preferredCode, "unit not found")
	}

	unit, err := s.repo.DefaultUnit(ctx)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, &errs.MissingDefaultError{Kind: "unit"}
	}
	return unit, nil
}
