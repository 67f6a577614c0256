package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"seeding-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepositoryInterface is the persistence collaborator for attributes,
// products and variants. Find methods return (nil, nil) when no row matches;
// Create methods surface unique-key races as gorm.ErrDuplicatedKey so callers
// can re-fetch the winning row.
type CatalogRepositoryInterface interface {
	FindAttributeByCode(ctx context.Context, code string) (*models.Attribute, error)
	CreateAttribute(ctx context.Context, attribute *models.Attribute) error
	FindAttributeValue(ctx context.Context, attributeID uuid.UUID, name string) (*models.AttributeValue, error)
	CreateAttributeValue(ctx context.Context, value *models.AttributeValue) error

	FindProductByCode(ctx context.Context, code string) (*models.Product, error)
	UpsertProduct(ctx context.Context, product *models.Product) (bool, error)
	ListProducts(ctx context.Context) ([]models.Product, error)

	FindVariantByHash(ctx context.Context, productID uuid.UUID, hash string) (*models.ProductVariant, error)
	FindVariantByCode(ctx context.Context, productID uuid.UUID, code string) (*models.ProductVariant, error)
	CreateVariant(ctx context.Context, variant *models.ProductVariant) error
	UpsertVariantAttributeValue(ctx context.Context, join *models.VariantAttributeValue) error

	WithTransaction(ctx context.Context, fn func(txRepo CatalogRepositoryInterface) error) error
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a catalog repository backed by gorm
func NewCatalogRepository(db *gorm.DB) CatalogRepositoryInterface {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) FindAttributeByCode(ctx context.Context, code string) (*models.Attribute, error) {
	var attribute models.Attribute
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&attribute).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attribute, nil
}

func (r *catalogRepository) CreateAttribute(ctx context.Context, attribute *models.Attribute) error {
	return r.db.WithContext(ctx).Create(attribute).Error
}

func (r *catalogRepository) FindAttributeValue(ctx context.Context, attributeID uuid.UUID, name string) (*models.AttributeValue, error) {
	var value models.AttributeValue
	err := r.db.WithContext(ctx).
		Where("attribute_id = ? AND name = ?", attributeID, name).
		First(&value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (r *catalogRepository) CreateAttributeValue(ctx context.Context, value *models.AttributeValue) error {
	return r.db.WithContext(ctx).Create(value).Error
}

func (r *catalogRepository) FindProductByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpsertProduct creates or updates a product keyed on code. Returns whether a
// new row was inserted.
func (r *catalogRepository) UpsertProduct(ctx context.Context, product *models.Product) (bool, error) {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(product)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	// Conflict path: refresh mutable fields on the existing row and hand the
	// caller its identity.
	existing, err := r.FindProductByCode(ctx, product.Code)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, gorm.ErrRecordNotFound
	}
	err = r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"is_active":   product.IsActive,
			"updated_at":  now,
		}).Error
	if err != nil {
		return false, err
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	return false, nil
}

func (r *catalogRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order("code ASC").Find(&products).Error
	return products, err
}

func (r *catalogRepository) FindVariantByHash(ctx context.Context, productID uuid.UUID, hash string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND variant_hash = ?", productID, hash).
		First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *catalogRepository) FindVariantByCode(ctx context.Context, productID uuid.UUID, code string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND code = ?", productID, code).
		First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *catalogRepository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// UpsertVariantAttributeValue writes the (variant, attribute) join row,
// overwriting the value reference if the join already exists. A variant holds
// at most one value per attribute.
func (r *catalogRepository) UpsertVariantAttributeValue(ctx context.Context, join *models.VariantAttributeValue) error {
	now := time.Now()
	join.CreatedAt = now
	join.UpdatedAt = now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variant_id"}, {Name: "attribute_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"attribute_value_id", "updated_at"}),
	}).Create(join).Error
}

// WithTransaction runs fn against a transaction-scoped repository, rolling
// back all writes if fn returns an error.
func (r *catalogRepository) WithTransaction(ctx context.Context, fn func(txRepo CatalogRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&catalogRepository{db: tx})
	})
}
