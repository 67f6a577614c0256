package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a named role permissions are granted to.
type Role struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_roles_name"`
	DisplayName string    `json:"displayName" gorm:"not null"`
	Description *string   `json:"description,omitempty"`
	IsSystem    bool      `json:"isSystem" gorm:"default:false"`
	IsActive    bool      `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions;"`
}

// Permission represents a granular permission, e.g. 'catalog:products:create'.
type Permission struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"type:varchar(150);not null;uniqueIndex:idx_permissions_name"`
	DisplayName string    `json:"displayName" gorm:"not null"`
	Description *string   `json:"description,omitempty"`
	Resource    *string   `json:"resource,omitempty"`
	Action      *string   `json:"action,omitempty"`
	IsActive    bool      `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RolePermission is the role-to-permission edge. The composite primary key is
// the uniqueness guarantee; edges are fully rebuildable from a target set and
// owned by neither side.
type RolePermission struct {
	RoleID       uuid.UUID `json:"roleId" gorm:"type:uuid;primary_key"`
	PermissionID uuid.UUID `json:"permissionId" gorm:"type:uuid;primary_key"`
	GrantedAt    time.Time `json:"grantedAt"`
	GrantedBy    *string   `json:"grantedBy,omitempty"`
}

// TableName returns the table name for the Role model
func (Role) TableName() string {
	return "roles"
}

// TableName returns the table name for the Permission model
func (Permission) TableName() string {
	return "permissions"
}

// TableName returns the table name for the RolePermission model
func (RolePermission) TableName() string {
	return "role_permissions"
}
