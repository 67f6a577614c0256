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

// RBACRepositoryInterface is the persistence collaborator for roles,
// permissions and the role-permission edge set.
type RBACRepositoryInterface interface {
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	UpsertPermission(ctx context.Context, permission *models.Permission) (bool, error)
	ListPermissionsByNames(ctx context.Context, names []string) ([]models.Permission, error)

	GetRolePermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error)
	AddRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID, grantedBy *string) (int64, error)
	RemoveRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (int64, error)

	WithTransaction(ctx context.Context, fn func(txRepo RBACRepositoryInterface) error) error
}

type rbacRepository struct {
	db *gorm.DB
}

// NewRBACRepository creates an RBAC repository backed by gorm
func NewRBACRepository(db *gorm.DB) RBACRepositoryInterface {
	return &rbacRepository{db: db}
}

func (r *rbacRepository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// UpsertPermission creates or refreshes a permission keyed on name.
func (r *rbacRepository) UpsertPermission(ctx context.Context, permission *models.Permission) (bool, error) {
	permission.CreatedAt = time.Now()

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(permission)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	var existing models.Permission
	if err := r.db.WithContext(ctx).Where("name = ?", permission.Name).First(&existing).Error; err != nil {
		return false, err
	}
	err := r.db.WithContext(ctx).Model(&models.Permission{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"display_name": permission.DisplayName,
			"description":  permission.Description,
			"resource":     permission.Resource,
			"action":       permission.Action,
			"is_active":    permission.IsActive,
		}).Error
	if err != nil {
		return false, err
	}
	permission.ID = existing.ID
	permission.CreatedAt = existing.CreatedAt
	return false, nil
}

func (r *rbacRepository) ListPermissionsByNames(ctx context.Context, names []string) ([]models.Permission, error) {
	if len(names) == 0 {
		return []models.Permission{}, nil
	}
	var permissions []models.Permission
	err := r.db.WithContext(ctx).
		Where("name IN ? AND is_active = ?", names, true).
		Find(&permissions).Error
	return permissions, err
}

func (r *rbacRepository) GetRolePermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.RolePermission{}).
		Where("role_id = ?", roleID).
		Pluck("permission_id", &ids).Error
	return ids, err
}

// AddRolePermissions inserts the given edges in one batch. Edges that raced
// into existence are skipped rather than failed.
func (r *rbacRepository) AddRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID, grantedBy *string) (int64, error) {
	if len(permissionIDs) == 0 {
		return 0, nil
	}
	edges := make([]models.RolePermission, 0, len(permissionIDs))
	now := time.Now()
	for _, permID := range permissionIDs {
		edges = append(edges, models.RolePermission{
			RoleID:       roleID,
			PermissionID: permID,
			GrantedAt:    now,
			GrantedBy:    grantedBy,
		})
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edges)
	return result.RowsAffected, result.Error
}

// RemoveRolePermissions deletes the given edges in one batch.
func (r *rbacRepository) RemoveRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (int64, error) {
	if len(permissionIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id IN ?", roleID, permissionIDs).
		Delete(&models.RolePermission{})
	return result.RowsAffected, result.Error
}

func (r *rbacRepository) WithTransaction(ctx context.Context, fn func(txRepo RBACRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&rbacRepository{db: tx})
	})
}
