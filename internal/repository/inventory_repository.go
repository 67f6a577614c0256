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

// InventoryRepositoryInterface is the persistence collaborator for
// warehouses, units and stock rows. Stock upserts report created-vs-updated
// explicitly; callers never infer it from timestamps.
type InventoryRepositoryInterface interface {
	FindWarehouseByCode(ctx context.Context, code string) (*models.Warehouse, error)
	DefaultWarehouse(ctx context.Context) (*models.Warehouse, error)
	UpsertWarehouse(ctx context.Context, warehouse *models.Warehouse) (bool, error)

	FindUnitByCode(ctx context.Context, code string) (*models.Unit, error)
	DefaultUnit(ctx context.Context) (*models.Unit, error)
	UpsertUnit(ctx context.Context, unit *models.Unit) (bool, error)

	// UpsertStockItem overwrites quantity, reserved_quantity and unit_id on
	// conflict (last-write-wins seeding).
	UpsertStockItem(ctx context.Context, item *models.StockItem) (*models.StockItem, bool, error)
	// CreateStockItemIfMissing inserts only when no row exists for the
	// (owner, warehouse) key; an existing row is returned untouched.
	CreateStockItemIfMissing(ctx context.Context, item *models.StockItem) (*models.StockItem, bool, error)

	WithTransaction(ctx context.Context, fn func(txRepo InventoryRepositoryInterface) error) error
}

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates an inventory repository backed by gorm
func NewInventoryRepository(db *gorm.DB) InventoryRepositoryInterface {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) FindWarehouseByCode(ctx context.Context, code string) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&warehouse).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

// DefaultWarehouse resolves the preferred warehouse: the explicit default
// first, then the highest-priority active one. Returns (nil, nil) when the
// system has no warehouses at all.
func (r *inventoryRepository) DefaultWarehouse(ctx context.Context) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Where("status = ?", models.WarehouseStatusActive).
		Order("is_default DESC, priority DESC, created_at ASC").
		First(&warehouse).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *inventoryRepository) UpsertWarehouse(ctx context.Context, warehouse *models.Warehouse) (bool, error) {
	now := time.Now()
	warehouse.CreatedAt = now
	warehouse.UpdatedAt = now

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(warehouse)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	existing, err := r.FindWarehouseByCode(ctx, warehouse.Code)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, gorm.ErrRecordNotFound
	}
	err = r.db.WithContext(ctx).Model(&models.Warehouse{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"name":       warehouse.Name,
			"status":     warehouse.Status,
			"is_default": warehouse.IsDefault,
			"priority":   warehouse.Priority,
			"updated_at": now,
		}).Error
	if err != nil {
		return false, err
	}
	warehouse.ID = existing.ID
	warehouse.CreatedAt = existing.CreatedAt
	return false, nil
}

func (r *inventoryRepository) FindUnitByCode(ctx context.Context, code string) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&unit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *inventoryRepository) DefaultUnit(ctx context.Context) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).
		Order("is_default DESC, created_at ASC").
		First(&unit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *inventoryRepository) UpsertUnit(ctx context.Context, unit *models.Unit) (bool, error) {
	now := time.Now()
	unit.CreatedAt = now
	unit.UpdatedAt = now

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(unit)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	existing, err := r.FindUnitByCode(ctx, unit.Code)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, gorm.ErrRecordNotFound
	}
	err = r.db.WithContext(ctx).Model(&models.Unit{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"name":       unit.Name,
			"is_default": unit.IsDefault,
			"updated_at": now,
		}).Error
	if err != nil {
		return false, err
	}
	unit.ID = existing.ID
	unit.CreatedAt = existing.CreatedAt
	return false, nil
}

func (r *inventoryRepository) findStockItem(ctx context.Context, ownerID, warehouseID uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND warehouse_id = ?", ownerID, warehouseID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) UpsertStockItem(ctx context.Context, item *models.StockItem) (*models.StockItem, bool, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "warehouse_id"}},
		DoNothing: true,
	}).Create(item)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return item, true, nil
	}

	// Row exists: overwrite the seeded fields, leave everything else alone.
	err := r.db.WithContext(ctx).Model(&models.StockItem{}).
		Where("owner_id = ? AND warehouse_id = ?", item.OwnerID, item.WarehouseID).
		Updates(map[string]interface{}{
			"quantity":          item.Quantity,
			"reserved_quantity": item.ReservedQuantity,
			"unit_id":           item.UnitID,
			"updated_at":        now,
		}).Error
	if err != nil {
		return nil, false, err
	}
	existing, err := r.findStockItem(ctx, item.OwnerID, item.WarehouseID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, gorm.ErrRecordNotFound
	}
	return existing, false, nil
}

func (r *inventoryRepository) CreateStockItemIfMissing(ctx context.Context, item *models.StockItem) (*models.StockItem, bool, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "warehouse_id"}},
		DoNothing: true,
	}).Create(item)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return item, true, nil
	}

	existing, err := r.findStockItem(ctx, item.OwnerID, item.WarehouseID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, gorm.ErrRecordNotFound
	}
	return existing, false, nil
}

func (r *inventoryRepository) WithTransaction(ctx context.Context, fn func(txRepo InventoryRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&inventoryRepository{db: tx})
	})
}
