package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WarehouseStatus represents the status of a warehouse
type WarehouseStatus string

const (
	WarehouseStatusActive   WarehouseStatus = "ACTIVE"
	WarehouseStatusInactive WarehouseStatus = "INACTIVE"
)

// Warehouse represents a storage location stock rows are kept against.
type Warehouse struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code      string          `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:idx_warehouses_code"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Status    WarehouseStatus `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	IsDefault bool            `json:"isDefault" gorm:"default:false"`
	Priority  int             `json:"priority" gorm:"default:0"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// Unit represents a measurement unit for stock quantities (e.g. PIECE, KG).
type Unit struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code      string    `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:idx_units_code"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	IsDefault bool      `json:"isDefault" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StockItem is a per-owner, per-warehouse stock ledger row. OwnerID points at
// the stockable entity (a product or a variant); exactly one row exists per
// (owner_id, warehouse_id). Seeding overwrites quantities, it never appends
// movement history.
type StockItem struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID          uuid.UUID `json:"ownerId" gorm:"type:uuid;not null;uniqueIndex:idx_stock_items_owner_warehouse"`
	WarehouseID      uuid.UUID `json:"warehouseId" gorm:"type:uuid;not null;uniqueIndex:idx_stock_items_owner_warehouse"`
	UnitID           uuid.UUID `json:"unitId" gorm:"type:uuid;not null"`
	Quantity         int       `json:"quantity" gorm:"not null;default:0"`
	ReservedQuantity int       `json:"reservedQuantity" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
	Unit      *Unit      `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
}

// TableName returns the table name for the Warehouse model
func (Warehouse) TableName() string {
	return "warehouses"
}

// TableName returns the table name for the Unit model
func (Unit) TableName() string {
	return "units"
}

// TableName returns the table name for the StockItem model
func (StockItem) TableName() string {
	return "stock_items"
}
