package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attribute represents a normalized product attribute (e.g. COLOR, SIZE).
// Code is derived from the free-text name by the registry and is the
// lookup key; the stored name is whatever the first writer supplied.
type Attribute struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code      string    `json:"code" gorm:"type:varchar(100);not null;uniqueIndex:idx_attributes_code"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AttributeValue represents one concrete value of an attribute (e.g. "Red").
// Unique per (attribute_id, name) - enforced by a real index so concurrent
// get-or-create callers cannot produce duplicate rows.
type AttributeValue struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AttributeID uuid.UUID `json:"attributeId" gorm:"type:uuid;not null;uniqueIndex:idx_attribute_values_attr_name"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_attribute_values_attr_name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Attribute *Attribute `json:"attribute,omitempty" gorm:"foreignKey:AttributeID"`
}

// Product is the variantable, stockable catalog entity. Attributes play no
// part in product identity; they only distinguish variants.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code        string          `json:"code" gorm:"type:varchar(100);not null;uniqueIndex:idx_products_code"`
	Name        string          `json:"name" gorm:"not null"`
	Description *string         `json:"description,omitempty"`
	IsActive    bool            `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`

	Variants []*ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// BaseVariantHash marks the attribute-less master variant every product owns.
const BaseVariantHash = "BASE"

// ProductVariant represents one sellable variant of a product. VariantHash is
// the canonical identity key derived from the variant's attribute set; at most
// one variant may exist per (product_id, variant_hash).
type ProductVariant struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID   uuid.UUID       `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_variants_product_hash"`
	Code        string          `json:"code" gorm:"type:varchar(150);not null;index"`
	Name        string          `json:"name" gorm:"not null"`
	VariantHash string          `json:"variantHash" gorm:"type:varchar(500);not null;uniqueIndex:idx_variants_product_hash"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`

	AttributeValues []*VariantAttributeValue `json:"attributeValues,omitempty" gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
}

// IsBase reports whether this is the attribute-less master variant.
func (v *ProductVariant) IsBase() bool {
	return v.VariantHash == BaseVariantHash
}

// VariantAttributeValue links a variant to one value of one attribute.
// A variant carries at most one value per attribute.
type VariantAttributeValue struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VariantID        uuid.UUID `json:"variantId" gorm:"type:uuid;not null;uniqueIndex:idx_variant_attr_values_variant_attr"`
	AttributeID      uuid.UUID `json:"attributeId" gorm:"type:uuid;not null;uniqueIndex:idx_variant_attr_values_variant_attr"`
	AttributeValueID uuid.UUID `json:"attributeValueId" gorm:"type:uuid;not null"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Attribute      *Attribute      `json:"attribute,omitempty" gorm:"foreignKey:AttributeID"`
	AttributeValue *AttributeValue `json:"attributeValue,omitempty" gorm:"foreignKey:AttributeValueID"`
}

// TableName returns the table name for the Attribute model
func (Attribute) TableName() string {
	return "attributes"
}

// TableName returns the table name for the AttributeValue model
func (AttributeValue) TableName() string {
	return "attribute_values"
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the ProductVariant model
func (ProductVariant) TableName() string {
	return "product_variants"
}

// TableName returns the table name for the VariantAttributeValue model
func (VariantAttributeValue) TableName() string {
	return "variant_attribute_values"
}
