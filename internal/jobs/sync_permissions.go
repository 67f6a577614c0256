package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"seeding-service/internal/batch"
	"seeding-service/internal/models"
	"seeding-service/internal/relations"
	"seeding-service/internal/seedspec"
)

// JobSyncPermissions is the job name recorded on seed-run rows and events.
const JobSyncPermissions = "sync-permissions"

// SyncPermissions upserts the spec's permissions and converges each granted
// role's permission edge set toward its target list. Every referenced role is
// resolved up front: a missing role aborts the job before any write happens,
// since partially granting a half-configured role set helps nobody.
func SyncPermissions(ctx context.Context, rt *Runtime) (*batch.Summary, error) {
	spec, err := seedspec.Load(rt.Config.SeedFile)
	if err != nil {
		return nil, err
	}

	synchronizer := relations.NewRolePermissionSynchronizer(rt.RBAC, rt.Logger)

	roles := make(map[string]*models.Role, len(spec.RoleGrants))
	for _, grant := range spec.RoleGrants {
		role, err := synchronizer.RequireRole(ctx, grant.Role)
		if err != nil {
			return nil, err
		}
		roles[grant.Role] = role
	}

	runner := batch.NewRunner(rt.Config.BatchWorkers, rt.Logger)
	grantedBy := &rt.Config.GrantedBy

	// Permissions are reconciled as their own phase; role grants diff against
	// them, so the two must not interleave under a parallel runner.
	permItems := make([]batch.Item, 0, len(spec.Permissions))
	for _, ps := range spec.Permissions {
		ps := ps
		permItems = append(permItems, batch.Item{
			Name: "permission " + ps.Name,
			Reconcile: func(ctx context.Context) (batch.Outcome, error) {
				permission := &models.Permission{
					ID:          uuid.New(),
					Name:        ps.Name,
					DisplayName: ps.DisplayName,
					Description: ps.Description,
					Resource:    ps.Resource,
					Action:      ps.Action,
					IsActive:    true,
				}
				if permission.DisplayName == "" {
					permission.DisplayName = ps.Name
				}
				created, err := rt.RBAC.UpsertPermission(ctx, permission)
				if err != nil {
					return 0, fmt.Errorf("failed to upsert permission %s: %w", ps.Name, err)
				}
				if created {
					return batch.OutcomeCreated, nil
				}
				return batch.OutcomeUpdated, nil
			},
		})
	}
	summary, err := runner.Run(ctx, permItems)
	if err != nil {
		return summary, err
	}

	grantItems := make([]batch.Item, 0, len(spec.RoleGrants))
	for _, grant := range spec.RoleGrants {
		grant := grant
		grantItems = append(grantItems, batch.Item{
			Name: "role " + grant.Role,
			Reconcile: func(ctx context.Context) (batch.Outcome, error) {
				delta, err := synchronizer.SyncRolePermissions(ctx, roles[grant.Role], grant.Permissions, grantedBy)
				if err != nil {
					return 0, err
				}
				if delta.Empty() {
					return batch.OutcomeSkipped, nil
				}
				return batch.OutcomeUpdated, nil
			},
		})
	}

	grantSummary, err := runner.Run(ctx, grantItems)
	summary.Merge(grantSummary)
	return summary, err
}
