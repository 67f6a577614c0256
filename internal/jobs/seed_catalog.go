package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"seeding-service/internal/batch"
	"seeding-service/internal/models"
	"seeding-service/internal/registry"
	"seeding-service/internal/seedspec"
	"seeding-service/internal/variants"
)

// JobSeedCatalog is the job name recorded on seed-run rows and events.
const JobSeedCatalog = "seed-catalog"

// SeedCatalog converges products and their variants toward the seed spec.
// Phase one reconciles the spec's products: upsert the product row, then
// materialize every declared variant plus the base variant. Phase two sweeps
// all remaining products and backfills missing base variants, so products
// created outside seeding also end up stockable.
func SeedCatalog(ctx context.Context, rt *Runtime) (*batch.Summary, error) {
	spec, err := seedspec.Load(rt.Config.SeedFile)
	if err != nil {
		return nil, err
	}

	reg := registry.NewAttributeRegistry(rt.Catalog, rt.Redis, rt.Logger)
	materializer := variants.NewMaterializer(rt.Catalog, reg, rt.Logger)
	runner := batch.NewRunner(rt.Config.BatchWorkers, rt.Logger)

	items := make([]batch.Item, 0, len(spec.Products))
	for _, ps := range spec.Products {
		ps := ps
		items = append(items, batch.Item{
			Name: "product " + ps.Code,
			Reconcile: func(ctx context.Context) (batch.Outcome, error) {
				return reconcileProduct(ctx, rt, materializer, ps)
			},
		})
	}

	summary, err := runner.Run(ctx, items)
	if err != nil {
		return summary, err
	}

	baseSummary, err := backfillBaseVariants(ctx, rt, materializer, runner, spec)
	summary.Merge(baseSummary)
	return summary, err
}

func reconcileProduct(ctx context.Context, rt *Runtime, m *variants.Materializer, ps seedspec.ProductSpec) (batch.Outcome, error) {
	product := &models.Product{
		ID:          uuid.New(),
		Code:        ps.Code,
		Name:        ps.Name,
		Description: ps.Description,
		IsActive:    true,
	}
	created, err := rt.Catalog.UpsertProduct(ctx, product)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert product %s: %w", ps.Code, err)
	}

	if _, _, err := m.EnsureBaseVariant(ctx, product); err != nil {
		return 0, err
	}
	for _, vs := range ps.Variants {
		if _, _, err := m.EnsureVariant(ctx, product.ID, product.Code, vs.Attributes, vs.Code); err != nil {
			return 0, err
		}
	}

	if created {
		return batch.OutcomeCreated, nil
	}
	return batch.OutcomeUpdated, nil
}

// backfillBaseVariants ensures the base variant for every product the spec
// didn't cover in phase one.
func backfillBaseVariants(ctx context.Context, rt *Runtime, m *variants.Materializer, runner *batch.Runner, spec *seedspec.Spec) (*batch.Summary, error) {
	specCodes := make(map[string]struct{}, len(spec.Products))
	for _, ps := range spec.Products {
		specCodes[ps.Code] = struct{}{}
	}

	products, err := rt.Catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products for base variant backfill: %w", err)
	}

	var items []batch.Item
	for i := range products {
		product := products[i]
		if _, seeded := specCodes[product.Code]; seeded {
			continue
		}
		items = append(items, batch.Item{
			Name: "base variant " + product.Code,
			Reconcile: func(ctx context.Context) (batch.Outcome, error) {
				_, created, err := m.EnsureBaseVariant(ctx, &product)
				if err != nil {
					return 0, err
				}
				if created {
					return batch.OutcomeCreated, nil
				}
				return batch.OutcomeSkipped, nil
			},
		})
	}

	return runner.Run(ctx, items)
}
