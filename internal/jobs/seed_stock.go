package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"seeding-service/internal/batch"
	"seeding-service/internal/errs"
	"seeding-service/internal/models"
	"seeding-service/internal/seedspec"
	"seeding-service/internal/stock"
)

// JobSeedStock is the job name recorded on seed-run rows and events.
const JobSeedStock = "seed-stock"

// SeedStock converges warehouses, units and stock rows toward the seed spec.
// Warehouses and units go first so stock rows can reference them; each stock
// row then resolves its owner, warehouse and unit and is upserted under the
// configured mode.
func SeedStock(ctx context.Context, rt *Runtime) (*batch.Summary, error) {
	spec, err := seedspec.Load(rt.Config.SeedFile)
	if err != nil {
		return nil, err
	}
	mode, err := stock.ParseMode(rt.Config.StockSeedMode)
	if err != nil {
		return nil, err
	}

	synchronizer := stock.NewSynchronizer(rt.Inventory, mode, rt.Logger)
	runner := batch.NewRunner(rt.Config.BatchWorkers, rt.Logger)

	// Warehouses and units form their own phase: stock rows resolve against
	// them, so the phases must not interleave under a parallel runner.
	infraItems := make([]batch.Item, 0, len(spec.Warehouses)+len(spec.Units))
	for _, ws := range spec.Warehouses {
		ws := ws
		infraItems = append(infraItems, batch.Item{
			Name: "warehouse " + ws.Code,
			Reconcile: func(ctx context.Context) (batch.Outcome, error) {
				warehouse := &models.Warehouse{
					ID:        uuid.New(),
					Code:      ws.Code,
					Name:      ws.Name,
					Status:    models.WarehouseStatusActive,
					IsDefault: ws.IsDefault,
					Priority:  ws.Priority,
				}
				created, err := rt.Inventory.UpsertWarehouse(ctx, warehouse)
				if err != nil {
					return 0, fmt.Errorf("failed to upsert warehouse %s: %w", ws.Code, err)
				}
				if created {
					return batch.OutcomeCreated, nil
				}
				return batch.OutcomeUpdated, nil
			},
		})
	}
	for _, us := range spec.Units {
		us := us
		infraItems = append(infraItems, batch.Item{
			Name: "unit " + us.Code,
			Reconcile: func(ctx context.Context) (batch.Outcome, error) {
				unit := &models.Unit{
					ID:        uuid.New(),
					Code:      us.Code,
					Name:      us.Name,
					IsDefault: us.IsDefault,
				}
				created, err := rt.Inventory.UpsertUnit(ctx, unit)
				if err != nil {
					return 0, fmt.Errorf("failed to upsert unit %s: %w", us.Code, err)
				}
				if created {
					return batch.OutcomeCreated, nil
				}
				return batch.OutcomeUpdated, nil
			},
		})
	}
	summary, err := runner.Run(ctx, infraItems)
	if err != nil {
		return summary, err
	}

	stockItems := make([]batch.Item, 0, len(spec.Stock))
	for _, ss := range spec.Stock {
		ss := ss
		stockItems = append(stockItems, batch.Item{
			Name: "stock " + ss.Owner(),
			Reconcile: func(ctx context.Context) (batch.Outcome, error) {
				return reconcileStock(ctx, rt, synchronizer, mode, ss)
			},
		})
	}

	stockSummary, err := runner.Run(ctx, stockItems)
	summary.Merge(stockSummary)
	return summary, err
}

func reconcileStock(ctx context.Context, rt *Runtime, s *stock.Synchronizer, mode stock.Mode, ss seedspec.StockSpec) (batch.Outcome, error) {
	ownerID, err := resolveStockOwner(ctx, rt, ss)
	if err != nil {
		return 0, err
	}

	warehouse, err := s.ResolveWarehouse(ctx, ss.WarehouseCode)
	if err != nil {
		return 0, err
	}
	unit, err := s.ResolveUnit(ctx, ss.UnitCode)
	if err != nil {
		return 0, err
	}

	_, created, err := s.SyncStock(ctx, stock.Request{
		OwnerID:          ownerID,
		WarehouseID:      warehouse.ID,
		UnitID:           unit.ID,
		Quantity:         ss.Quantity,
		ReservedQuantity: ss.ReservedQuantity,
	})
	if err != nil {
		return 0, err
	}

	switch {
	case created:
		return batch.OutcomeCreated, nil
	case mode == stock.ModeResetAll:
		return batch.OutcomeUpdated, nil
	default:
		return batch.OutcomeSkipped, nil
	}
}

// resolveStockOwner maps a stock spec to the stockable entity's id: the
// variant when one is named, otherwise the product itself. Unknown references
// are item-level validation failures, not batch aborts.
func resolveStockOwner(ctx context.Context, rt *Runtime, ss seedspec.StockSpec) (uuid.UUID, error) {
	product, err := rt.Catalog.FindProductByCode(ctx, ss.ProductCode)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up product %s: %w", ss.ProductCode, err)
	}
	if product == nil {
		return uuid.Nil, errs.NewValidation(ss.Owner(), "product not found")
	}
	if ss.VariantCode == "" {
		return product.ID, nil
	}

	variant, err := rt.Catalog.FindVariantByCode(ctx, product.ID, ss.VariantCode)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up variant %s: %w", ss.VariantCode, err)
	}
	if variant == nil {
		return uuid.Nil, errs.NewValidation(ss.Owner(), "variant not found")
	}
	return variant.ID, nil
}
