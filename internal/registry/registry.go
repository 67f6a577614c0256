// Package registry normalizes free-text attribute and value names into stable
// rows with get-or-create semantics. Lookups are backed by real unique
// indexes; a lost create race is recovered by re-fetching the winning row, so
// concurrent callers converge on the same identity without locking.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"seeding-service/internal/errs"
	"seeding-service/internal/models"
	"seeding-service/internal/repository"
)

// Attribute code cache TTL. Codes are immutable once created, the TTL only
// bounds staleness across schema resets.
const attributeCacheTTL = 30 * time.Minute

const cacheKeyPrefix = "seeding:attributes:"

// AttributeRegistry resolves attribute and attribute-value identities.
type AttributeRegistry struct {
	repo   repository.CatalogRepositoryInterface
	redis  *redis.Client
	logger *logrus.Entry
}

// NewAttributeRegistry creates a registry. The redis client is optional; when
// nil every lookup goes straight to the database.
func NewAttributeRegistry(repo repository.CatalogRepositoryInterface, redisClient *redis.Client, logger *logrus.Logger) *AttributeRegistry {
	return &AttributeRegistry{
		repo:   repo,
		redis:  redisClient,
		logger: logger.WithField("component", "attribute-registry"),
	}
}

// NormalizeCode derives the stable attribute code from a free-text name:
// trim, uppercase, collapse whitespace runs to single underscores, strip
// everything outside [A-Z0-9_].
func NormalizeCode(name string) string {
	code := strings.ToUpper(strings.TrimSpace(name))
	code = strings.Join(strings.Fields(code), "_")

	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EnsureAttribute returns the attribute row for the given free-text name,
// creating it if absent. An existing row is returned unchanged - the name of
// the first writer wins.
func (r *AttributeRegistry) EnsureAttribute(ctx context.Context, name string) (*models.Attribute, error) {
	code := NormalizeCode(name)
	if code == "" {
		return nil, errs.NewValidation(name, "attribute name normalizes to an empty code")
	}

	if cached := r.cachedAttribute(ctx, code); cached != nil {
		return cached, nil
	}

	attribute, err := r.repo.FindAttributeByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up attribute %s: %w", code, err)
	}
	if attribute == nil {
		attribute = &models.Attribute{
			ID:   uuid.New(),
			Code: code,
			Name: strings.TrimSpace(name),
		}
		if err := r.repo.CreateAttribute(ctx, attribute); err != nil {
			if !errs.IsConstraintViolation(err) {
				return nil, fmt.Errorf("failed to create attribute %s: %w", code, err)
			}
			// Lost the create race; the winner's row is the identity.
			attribute, err = r.repo.FindAttributeByCode(ctx, code)
			if err != nil {
				return nil, fmt.Errorf("failed to re-fetch attribute %s after conflict: %w", code, err)
			}
			if attribute == nil {
				return nil, fmt.Errorf("attribute %s vanished after duplicate-key conflict", code)
			}
		}
	}

	r.cacheAttribute(ctx, attribute)
	return attribute, nil
}

// EnsureAttributeValue returns the value row for (attributeID, name), creating
// it if absent. Uniqueness is enforced by the (attribute_id, name) index, not
// by the lookup.
func (r *AttributeRegistry) EnsureAttributeValue(ctx context.Context, attributeID uuid.UUID, name string) (*models.AttributeValue, error) {
	value, err := r.repo.FindAttributeValue(ctx, attributeID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up attribute value %q: %w", name, err)
	}
	if value != nil {
		return value, nil
	}

	value = &models.AttributeValue{
		ID:          uuid.New(),
		AttributeID: attributeID,
		Name:        name,
	}
	if err := r.repo.CreateAttributeValue(ctx, value); err != nil {
		if !errs.IsConstraintViolation(err) {
			return nil, fmt.Errorf("failed to create attribute value %q: %w", name, err)
		}
		value, err = r.repo.FindAttributeValue(ctx, attributeID, name)
		if err != nil {
			return nil, fmt.Errorf("failed to re-fetch attribute value %q after conflict: %w", name, err)
		}
		if value == nil {
			return nil, fmt.Errorf("attribute value %q vanished after duplicate-key conflict", name)
		}
	}
	return value, nil
}

func (r *AttributeRegistry) cachedAttribute(ctx context.Context, code string) *models.Attribute {
	if r.redis == nil {
		return nil
	}
	key := cacheKeyPrefix + code
	val, err := r.redis.HGetAll(ctx, key).Result()
	if err != nil || len(val) == 0 {
		return nil
	}
	id, err := uuid.Parse(val["id"])
	if err != nil {
		return nil
	}
	return &models.Attribute{ID: id, Code: code, Name: val["name"]}
}

func (r *AttributeRegistry) cacheAttribute(ctx context.Context, attribute *models.Attribute) {
	if r.redis == nil {
		return
	}
	key := cacheKeyPrefix + attribute.Code
	if err := r.redis.HSet(ctx, key, "id", attribute.ID.String(), "name", attribute.Name).Err(); err != nil {
		r.logger.WithError(err).Debug("Failed to cache attribute")
		return
	}
	r.redis.Expire(ctx, key, attributeCacheTTL)
}
