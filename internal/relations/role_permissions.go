package relations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"seeding-service/internal/errs"
	"seeding-service/internal/models"
	"seeding-service/internal/repository"
)

// RolePermissionSynchronizer converges a role's permission edge set toward a
// target list of permission codes.
type RolePermissionSynchronizer struct {
	repo   repository.RBACRepositoryInterface
	logger *logrus.Entry
}

// NewRolePermissionSynchronizer creates a role-permission synchronizer
func NewRolePermissionSynchronizer(repo repository.RBACRepositoryInterface, logger *logrus.Logger) *RolePermissionSynchronizer {
	return &RolePermissionSynchronizer{
		repo:   repo,
		logger: logger.WithField("component", "role-permission-sync"),
	}
}

// RequireRole resolves a role by name, failing with a PreconditionError when
// it is absent. Jobs call this before any writes happen.
func (s *RolePermissionSynchronizer) RequireRole(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.repo.GetRoleByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up role %q: %w", name, err)
	}
	if role == nil {
		return nil, errs.NewPrecondition(fmt.Sprintf("role %q", name))
	}
	return role, nil
}

// SyncRolePermissions resolves permissionNames to IDs, diffs them against the
// role's current edge set and applies the delta: removals first, then
// additions, both batched inside one transaction so a concurrent reader only
// ever observes the old or the new edge set. The current set is read inside
// the same transaction, so a retry after a timeout recomputes the diff
// against fresh state.
func (s *RolePermissionSynchronizer) SyncRolePermissions(ctx context.Context, role *models.Role, permissionNames []string, grantedBy *string) (*Delta, error) {
	permissions, err := s.repo.ListPermissionsByNames(ctx, permissionNames)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions for role %q: %w", role.Name, err)
	}
	if missing := missingNames(permissionNames, permissions); len(missing) > 0 {
		return nil, errs.NewValidation(role.Name, "unknown permission(s): %s", strings.Join(missing, ", "))
	}

	targetIDs := make([]uuid.UUID, 0, len(permissions))
	for _, p := range permissions {
		targetIDs = append(targetIDs, p.ID)
	}

	var delta Delta
	err = s.repo.WithTransaction(ctx, func(tx repository.RBACRepositoryInterface) error {
		current, err := tx.GetRolePermissionIDs(ctx, role.ID)
		if err != nil {
			return err
		}
		delta = Diff(current, targetIDs)
		if delta.Empty() {
			return nil
		}
		if _, err := tx.RemoveRolePermissions(ctx, role.ID, delta.Removed); err != nil {
			return err
		}
		if _, err := tx.AddRolePermissions(ctx, role.ID, delta.Added, grantedBy); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync permissions for role %q: %w", role.Name, err)
	}

	s.logger.WithFields(logrus.Fields{
		"role":    role.Name,
		"added":   len(delta.Added),
		"removed": len(delta.Removed),
	}).Info("Synced role permissions")

	return &delta, nil
}

func missingNames(requested []string, found []models.Permission) []string {
	foundSet := make(map[string]struct{}, len(found))
	for _, p := range found {
		foundSet[p.Name] = struct{}{}
	}
	var missing []string
	seen := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := foundSet[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
