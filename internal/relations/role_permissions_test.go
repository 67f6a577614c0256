package relations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seeding-service/internal/errs"
	"seeding-service/internal/models"
	"seeding-service/internal/repository"
)

type fakeRBACRepo struct {
	roles       map[string]*models.Role
	permissions map[string]*models.Permission
	edges       map[uuid.UUID]map[uuid.UUID]*string // roleID -> permissionID -> grantedBy

	ops []string // write order, "remove" and "add"
}

func newFakeRBACRepo() *fakeRBACRepo {
	return &fakeRBACRepo{
		roles:       make(map[string]*models.Role),
		permissions: make(map[string]*models.Permission),
		edges:       make(map[uuid.UUID]map[uuid.UUID]*string),
	}
}

func (f *fakeRBACRepo) addPermission(name string) *models.Permission {
	p := &models.Permission{ID: uuid.New(), Name: name, DisplayName: name, IsActive: true}
	f.permissions[name] = p
	return p
}

func (f *fakeRBACRepo) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	return f.roles[name], nil
}

func (f *fakeRBACRepo) UpsertPermission(ctx context.Context, permission *models.Permission) (bool, error) {
	if existing, ok := f.permissions[permission.Name]; ok {
		existing.DisplayName = permission.DisplayName
		permission.ID = existing.ID
		return false, nil
	}
	f.permissions[permission.Name] = permission
	return true, nil
}

func (f *fakeRBACRepo) ListPermissionsByNames(ctx context.Context, names []string) ([]models.Permission, error) {
	var found []models.Permission
	for _, name := range names {
		if p, ok := f.permissions[name]; ok && p.IsActive {
			found = append(found, *p)
		}
	}
	return found, nil
}

func (f *fakeRBACRepo) GetRolePermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for permID := range f.edges[roleID] {
		ids = append(ids, permID)
	}
	return ids, nil
}

func (f *fakeRBACRepo) AddRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID, grantedBy *string) (int64, error) {
	f.ops = append(f.ops, "add")
	if f.edges[roleID] == nil {
		f.edges[roleID] = make(map[uuid.UUID]*string)
	}
	var inserted int64
	for _, permID := range permissionIDs {
		if _, exists := f.edges[roleID][permID]; !exists {
			f.edges[roleID][permID] = grantedBy
			inserted++
		}
	}
	return inserted, nil
}

func (f *fakeRBACRepo) RemoveRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (int64, error) {
	f.ops = append(f.ops, "remove")
	var deleted int64
	for _, permID := range permissionIDs {
		if _, exists := f.edges[roleID][permID]; exists {
			delete(f.edges[roleID], permID)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeRBACRepo) WithTransaction(ctx context.Context, fn func(txRepo repository.RBACRepositoryInterface) error) error {
	return fn(f)
}

func newTestSynchronizer(repo repository.RBACRepositoryInterface) *RolePermissionSynchronizer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewRolePermissionSynchronizer(repo, logger)
}

func TestRequireRoleFound(t *testing.T) {
	repo := newFakeRBACRepo()
	repo.roles["admin"] = &models.Role{ID: uuid.New(), Name: "admin"}
	s := newTestSynchronizer(repo)

	role, err := s.RequireRole(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", role.Name)
}

func TestRequireRoleMissingIsPrecondition(t *testing.T) {
	s := newTestSynchronizer(newFakeRBACRepo())

	_, err := s.RequireRole(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errs.IsPrecondition(err))
}

func TestSyncRolePermissionsConverges(t *testing.T) {
	repo := newFakeRBACRepo()
	role := &models.Role{ID: uuid.New(), Name: "editor"}
	repo.roles["editor"] = role
	read := repo.addPermission("catalog:read")
	write := repo.addPermission("catalog:write")
	del := repo.addPermission("catalog:delete")

	// Current edges: read + delete. Target: read + write.
	repo.edges[role.ID] = map[uuid.UUID]*string{read.ID: nil, del.ID: nil}

	s := newTestSynchronizer(repo)
	grantedBy := "seeder"
	delta, err := s.SyncRolePermissions(context.Background(), role, []string{"catalog:read", "catalog:write"}, &grantedBy)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{write.ID}, delta.Added)
	assert.Equal(t, []uuid.UUID{del.ID}, delta.Removed)
	assert.Equal(t, []string{"remove", "add"}, repo.ops)

	assert.Len(t, repo.edges[role.ID], 2)
	assert.Contains(t, repo.edges[role.ID], read.ID)
	assert.Contains(t, repo.edges[role.ID], write.ID)
	assert.Equal(t, &grantedBy, repo.edges[role.ID][write.ID])
}

func TestSyncRolePermissionsIdempotent(t *testing.T) {
	repo := newFakeRBACRepo()
	role := &models.Role{ID: uuid.New(), Name: "editor"}
	repo.roles["editor"] = role
	repo.addPermission("catalog:read")

	s := newTestSynchronizer(repo)
	first, err := s.SyncRolePermissions(context.Background(), role, []string{"catalog:read"}, nil)
	require.NoError(t, err)
	assert.False(t, first.Empty())

	second, err := s.SyncRolePermissions(context.Background(), role, []string{"catalog:read"}, nil)
	require.NoError(t, err)
	assert.True(t, second.Empty())
	// No writes were issued for the empty delta.
	assert.Equal(t, []string{"remove", "add"}, repo.ops)
}

func TestSyncRolePermissionsUnknownPermission(t *testing.T) {
	repo := newFakeRBACRepo()
	role := &models.Role{ID: uuid.New(), Name: "editor"}
	repo.roles["editor"] = role
	repo.addPermission("catalog:read")

	s := newTestSynchronizer(repo)
	_, err := s.SyncRolePermissions(context.Background(), role, []string{"catalog:read", "catalog:nope"}, nil)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "catalog:nope")
	assert.Empty(t, repo.ops)
}

func TestSyncRolePermissionsEmptyTargetRevokesAll(t *testing.T) {
	repo := newFakeRBACRepo()
	role := &models.Role{ID: uuid.New(), Name: "editor"}
	repo.roles["editor"] = role
	read := repo.addPermission("catalog:read")
	repo.edges[role.ID] = map[uuid.UUID]*string{read.ID: nil}

	s := newTestSynchronizer(repo)
	delta, err := s.SyncRolePermissions(context.Background(), role, nil, nil)
	require.NoError(t, err)
	assert.Len(t, delta.Removed, 1)
	assert.Empty(t, repo.edges[role.ID])
}
