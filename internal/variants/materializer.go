// Package variants materializes product variants: exactly one variant row per
// (product, canonical attribute set), with the attribute join rows created
// atomically alongside the variant.
package variants

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"seeding-service/internal/errs"
	"seeding-service/internal/identity"
	"seeding-service/internal/models"
	"seeding-service/internal/registry"
	"seeding-service/internal/repository"
)

// Materializer ensures variants exist for their canonical attribute sets.
type Materializer struct {
	repo     repository.CatalogRepositoryInterface
	registry *registry.AttributeRegistry
	logger   *logrus.Entry
}

// NewMaterializer creates a variant materializer
func NewMaterializer(repo repository.CatalogRepositoryInterface, reg *registry.AttributeRegistry, logger *logrus.Logger) *Materializer {
	return &Materializer{
		repo:     repo,
		registry: reg,
		logger:   logger.WithField("component", "variant-materializer"),
	}
}

// resolvedAttribute pairs an attribute row with the value row a new variant
// should link to.
type resolvedAttribute struct {
	attribute *models.Attribute
	value     *models.AttributeValue
}

// EnsureVariant guarantees exactly one variant exists for (productID, attrs).
// An existing variant is returned unchanged - no join rows are re-synced for
// it. A new variant and all of its attribute join rows are created in a
// single transaction, so no half-materialized variant can survive a failure.
// code may be empty; a deterministic one is derived from the product code.
func (m *Materializer) EnsureVariant(ctx context.Context, productID uuid.UUID, productCode string, attrs map[string]string, code string) (*models.ProductVariant, bool, error) {
	hash := identity.CanonicalHash(attrs)

	existing, err := m.repo.FindVariantByHash(ctx, productID, hash)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up variant for product %s: %w", productCode, err)
	}
	if existing != nil {
		return existing, false, nil
	}

	// Resolve attribute and value identities before opening the transaction.
	// These are idempotent get-or-creates owned by the registry; an attribute
	// row without variants is harmless, a variant without its joins is not.
	resolved := make([]resolvedAttribute, 0, len(attrs))
	for attrName, valueName := range attrs {
		attribute, err := m.registry.EnsureAttribute(ctx, attrName)
		if err != nil {
			return nil, false, err
		}
		value, err := m.registry.EnsureAttributeValue(ctx, attribute.ID, valueName)
		if err != nil {
			return nil, false, err
		}
		resolved = append(resolved, resolvedAttribute{attribute: attribute, value: value})
	}

	if code == "" {
		code = deriveVariantCode(productCode, attrs)
	}
	variant := &models.ProductVariant{
		ID:          uuid.New(),
		ProductID:   productID,
		Code:        code,
		Name:        code,
		VariantHash: hash,
	}

	if variant.IsBase() {
		// No join rows to keep in step with; the single insert is atomic.
		err = m.repo.CreateVariant(ctx, variant)
	} else {
		err = m.repo.WithTransaction(ctx, func(tx repository.CatalogRepositoryInterface) error {
			if err := tx.CreateVariant(ctx, variant); err != nil {
				return err
			}
			for _, ra := range resolved {
				join := &models.VariantAttributeValue{
					ID:               uuid.New(),
					VariantID:        variant.ID,
					AttributeID:      ra.attribute.ID,
					AttributeValueID: ra.value.ID,
				}
				if err := tx.UpsertVariantAttributeValue(ctx, join); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err != nil {
		if errs.IsConstraintViolation(err) {
			// A concurrent run materialized the same identity first.
			winner, ferr := m.repo.FindVariantByHash(ctx, productID, hash)
			if ferr == nil && winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to materialize variant %s: %w", code, err)
	}

	m.logger.WithFields(logrus.Fields{
		"product": productCode,
		"variant": variant.Code,
		"hash":    hash,
	}).Debug("Materialized variant")

	return variant, true, nil
}

// EnsureBaseVariant guarantees the attribute-less master variant for a
// product. A no-op for products that already have one.
func (m *Materializer) EnsureBaseVariant(ctx context.Context, product *models.Product) (*models.ProductVariant, bool, error) {
	return m.EnsureVariant(ctx, product.ID, product.Code, nil, "")
}

// deriveVariantCode builds a deterministic variant code. The BASE case is
// fixed as "<productCode>-BASE"; otherwise normalized attribute values are
// appended in attribute-code order.
func deriveVariantCode(productCode string, attrs map[string]string) string {
	if len(attrs) == 0 {
		return productCode + "-" + models.BaseVariantHash
	}

	type pair struct{ code, value string }
	pairs := make([]pair, 0, len(attrs))
	for name, value := range attrs {
		pairs = append(pairs, pair{code: registry.NormalizeCode(name), value: registry.NormalizeCode(value)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].code < pairs[j].code })

	parts := make([]string, 0, len(pairs)+1)
	parts = append(parts, productCode)
	for _, p := range pairs {
		parts = append(parts, p.value)
	}
	return strings.Join(parts, "-")
}
