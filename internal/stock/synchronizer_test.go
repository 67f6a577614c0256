package stock

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seeding-service/internal/errs"
	"seeding-service/internal/models"
	"seeding-service/internal/repository"
)

type fakeInventoryRepo struct {
	warehouses []*models.Warehouse
	units      []*models.Unit
	stock      map[string]*models.StockItem // by ownerID|warehouseID
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{stock: make(map[string]*models.StockItem)}
}

func stockKey(ownerID, warehouseID uuid.UUID) string {
	return ownerID.String() + "|" + warehouseID.String()
}

func (f *fakeInventoryRepo) FindWarehouseByCode(ctx context.Context, code string) (*models.Warehouse, error) {
	for _, w := range f.warehouses {
		if w.Code == code {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeInventoryRepo) DefaultWarehouse(ctx context.Context) (*models.Warehouse, error) {
	var active []*models.Warehouse
	for _, w := range f.warehouses {
		if w.Status == models.WarehouseStatusActive {
			active = append(active, w)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].IsDefault != active[j].IsDefault {
			return active[i].IsDefault
		}
		return active[i].Priority > active[j].Priority
	})
	return active[0], nil
}

func (f *fakeInventoryRepo) UpsertWarehouse(ctx context.Context, warehouse *models.Warehouse) (bool, error) {
	for _, w := range f.warehouses {
		if w.Code == warehouse.Code {
			w.Name = warehouse.Name
			w.IsDefault = warehouse.IsDefault
			w.Priority = warehouse.Priority
			return false, nil
		}
	}
	f.warehouses = append(f.warehouses, warehouse)
	return true, nil
}

func (f *fakeInventoryRepo) FindUnitByCode(ctx context.Context, code string) (*models.Unit, error) {
	for _, u := range f.units {
		if u.Code == code {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeInventoryRepo) DefaultUnit(ctx context.Context) (*models.Unit, error) {
	if len(f.units) == 0 {
		return nil, nil
	}
	for _, u := range f.units {
		if u.IsDefault {
			return u, nil
		}
	}
	return f.units[0], nil
}

func (f *fakeInventoryRepo) UpsertUnit(ctx context.Context, unit *models.Unit) (bool, error) {
	for _, u := range f.units {
		if u.Code == unit.Code {
			u.Name = unit.Name
			u.IsDefault = unit.IsDefault
			return false, nil
		}
	}
	f.units = append(f.units, unit)
	return true, nil
}

func (f *fakeInventoryRepo) UpsertStockItem(ctx context.Context, item *models.StockItem) (*models.StockItem, bool, error) {
	key := stockKey(item.OwnerID, item.WarehouseID)
	if existing, ok := f.stock[key]; ok {
		existing.Quantity = item.Quantity
		existing.ReservedQuantity = item.ReservedQuantity
		existing.UnitID = item.UnitID
		return existing, false, nil
	}
	f.stock[key] = item
	return item, true, nil
}

func (f *fakeInventoryRepo) CreateStockItemIfMissing(ctx context.Context, item *models.StockItem) (*models.StockItem, bool, error) {
	key := stockKey(item.OwnerID, item.WarehouseID)
	if existing, ok := f.stock[key]; ok {
		return existing, false, nil
	}
	f.stock[key] = item
	return item, true, nil
}

func (f *fakeInventoryRepo) WithTransaction(ctx context.Context, fn func(txRepo repository.InventoryRepositoryInterface) error) error {
	return fn(f)
}

func newTestSynchronizer(repo repository.InventoryRepositoryInterface, mode Mode) *Synchronizer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewSynchronizer(repo, mode, logger)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("initialize-missing-only")
	require.NoError(t, err)
	assert.Equal(t, ModeInitializeMissingOnly, mode)

	mode, err = ParseMode("reset-all")
	require.NoError(t, err)
	assert.Equal(t, ModeResetAll, mode)

	_, err = ParseMode("wipe-everything")
	assert.Error(t, err)
}

func TestSyncStockCreatesRow(t *testing.T) {
	repo := newFakeInventoryRepo()
	s := newTestSynchronizer(repo, ModeInitializeMissingOnly)

	row, created, err := s.SyncStock(context.Background(), Request{
		OwnerID:     uuid.New(),
		WarehouseID: uuid.New(),
		UnitID:      uuid.New(),
		Quantity:    100,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 100, row.Quantity)
}

func TestSyncStockInitializeMissingOnlyPreservesExisting(t *testing.T) {
	repo := newFakeInventoryRepo()
	s := newTestSynchronizer(repo, ModeInitializeMissingOnly)
	req := Request{OwnerID: uuid.New(), WarehouseID: uuid.New(), UnitID: uuid.New(), Quantity: 100}

	_, created, err := s.SyncStock(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, created)

	req.Quantity = 5
	row, created, err := s.SyncStock(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 100, row.Quantity)
}

func TestSyncStockResetAllOverwrites(t *testing.T) {
	repo := newFakeInventoryRepo()
	s := newTestSynchronizer(repo, ModeResetAll)
	req := Request{OwnerID: uuid.New(), WarehouseID: uuid.New(), UnitID: uuid.New(), Quantity: 100, ReservedQuantity: 10}

	_, created, err := s.SyncStock(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, created)

	req.Quantity = 5
	req.ReservedQuantity = 0
	row, created, err := s.SyncStock(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 5, row.Quantity)
	assert.Equal(t, 0, row.ReservedQuantity)
	assert.Len(t, repo.stock, 1)
}

func TestSyncStockSeparateRowsPerWarehouse(t *testing.T) {
	repo := newFakeInventoryRepo()
	s := newTestSynchronizer(repo, ModeResetAll)
	ownerID := uuid.New()

	_, created, err := s.SyncStock(context.Background(), Request{OwnerID: ownerID, WarehouseID: uuid.New(), UnitID: uuid.New(), Quantity: 1})
	require.NoError(t, err)
	assert.True(t, created)
	_, created, err = s.SyncStock(context.Background(), Request{OwnerID: ownerID, WarehouseID: uuid.New(), UnitID: uuid.New(), Quantity: 2})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, repo.stock, 2)
}

func TestResolveWarehousePreferredCode(t *testing.T) {
	repo := newFakeInventoryRepo()
	named := &models.Warehouse{ID: uuid.New(), Code: "WH-EAST", Status: models.WarehouseStatusActive}
	repo.warehouses = append(repo.warehouses, named)
	s := newTestSynchronizer(repo, ModeInitializeMissingOnly)

	warehouse, err := s.ResolveWarehouse(context.Background(), "WH-EAST")
	require.NoError(t, err)
	assert.Equal(t, named.ID, warehouse.ID)
}

func TestResolveWarehouseNamedButMissingIsValidation(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.warehouses = append(repo.warehouses, &models.Warehouse{ID: uuid.New(), Code: "WH-MAIN", Status: models.WarehouseStatusActive, IsDefault: true})
	s := newTestSynchronizer(repo, ModeInitializeMissingOnly)

	// No fallback to the default when an explicit code is wrong.
	_, err := s.ResolveWarehouse(context.Background(), "WH-NOPE")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestResolveWarehousePrefersDefaultThenPriority(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.warehouses = append(repo.warehouses,
		&models.Warehouse{ID: uuid.New(), Code: "WH-LOW", Status: models.WarehouseStatusActive, Priority: 1},
		&models.Warehouse{ID: uuid.New(), Code: "WH-HIGH", Status: models.WarehouseStatusActive, Priority: 9},
	)
	s := newTestSynchronizer(repo, ModeInitializeMissingOnly)

	warehouse, err := s.ResolveWarehouse(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "WH-HIGH", warehouse.Code)

	def := &models.Warehouse{ID: uuid.New(), Code: "WH-DEFAULT", Status: models.WarehouseStatusActive, IsDefault: true}
	repo.warehouses = append(repo.warehouses, def)
	warehouse, err = s.ResolveWarehouse(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "WH-DEFAULT", warehouse.Code)
}

func TestResolveWarehouseNoneAvailable(t *testing.T) {
	s := newTestSynchronizer(newFakeInventoryRepo(), ModeInitializeMissingOnly)

	_, err := s.ResolveWarehouse(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestResolveUnitChain(t *testing.T) {
	repo := newFakeInventoryRepo()
	s := newTestSynchronizer(repo, ModeInitializeMissingOnly)

	_, err := s.ResolveUnit(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	piece := &models.Unit{ID: uuid.New(), Code: "PIECE", IsDefault: true}
	kg := &models.Unit{ID: uuid.New(), Code: "KG"}
	repo.units = append(repo.units, kg, piece)

	unit, err := s.ResolveUnit(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "PIECE", unit.Code)

	unit, err = s.ResolveUnit(context.Background(), "KG")
	require.NoError(t, err)
	assert.Equal(t, "KG", unit.Code)

	_, err = s.ResolveUnit(context.Background(), "LITER")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}
