// Package identity derives the canonical identity key for a product variant
// from its attribute set. The hash is the uniqueness key on product_variants,
// so two attribute maps with equal key/value pairs must hash identically no
// matter what order they were built in.
package identity

import (
	"sort"
	"strings"

	"seeding-service/internal/models"
)

// CanonicalHash returns the deterministic identity string for an attribute
// map: keys sorted lexicographically (case-sensitive), formatted KEY=VALUE
// and joined with "|". An empty map yields the BASE sentinel that marks the
// attribute-less master variant. Empty string values are legal and part of
// the key.
func CanonicalHash(attrs map[string]string) string {
	if len(attrs) == 0 {
		return models.BaseVariantHash
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+attrs[k])
	}
	return strings.Join(parts, "|")
}
