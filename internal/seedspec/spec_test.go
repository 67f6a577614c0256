package seedspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpecFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeSpecFile(t, "seed.json", `{
		"warehouses": [
			{"code": "WH-MAIN", "name": "Main Warehouse", "isDefault": true, "priority": 10}
		],
		"units": [
			{"code": "PIECE", "name": "Piece", "isDefault": true}
		],
		"products": [
			{
				"code": "TSHIRT",
				"name": "T-Shirt",
				"description": "Basic tee",
				"variants": [
					{"attributes": {"Color": "Red", "Size": "M"}},
					{"code": "TSHIRT-SPECIAL", "attributes": {"Color": "Blue"}}
				]
			}
		],
		"stock": [
			{"product": "TSHIRT", "quantity": 100},
			{"product": "TSHIRT", "variant": "TSHIRT-SPECIAL", "warehouse": "WH-MAIN", "unit": "PIECE", "quantity": 5, "reserved": 1}
		],
		"permissions": [
			{"name": "catalog:read", "displayName": "Read catalog", "resource": "catalog", "action": "read"}
		],
		"roleGrants": [
			{"role": "admin", "permissions": ["catalog:read"]}
		]
	}`)

	spec, err := Load(path)
	require.NoError(t, err)

	require.Len(t, spec.Warehouses, 1)
	assert.True(t, spec.Warehouses[0].IsDefault)
	assert.Equal(t, 10, spec.Warehouses[0].Priority)

	require.Len(t, spec.Products, 1)
	product := spec.Products[0]
	assert.Equal(t, "TSHIRT", product.Code)
	require.NotNil(t, product.Description)
	assert.Equal(t, "Basic tee", *product.Description)
	require.Len(t, product.Variants, 2)
	assert.Empty(t, product.Variants[0].Code)
	assert.Equal(t, map[string]string{"Color": "Red", "Size": "M"}, product.Variants[0].Attributes)

	require.Len(t, spec.Stock, 2)
	assert.Equal(t, "TSHIRT", spec.Stock[0].Owner())
	assert.Equal(t, "TSHIRT/TSHIRT-SPECIAL", spec.Stock[1].Owner())
	assert.Equal(t, 1, spec.Stock[1].ReservedQuantity)

	require.Len(t, spec.Permissions, 1)
	require.NotNil(t, spec.Permissions[0].Resource)
	assert.Equal(t, "catalog", *spec.Permissions[0].Resource)

	require.Len(t, spec.RoleGrants, 1)
	assert.Equal(t, []string{"catalog:read"}, spec.RoleGrants[0].Permissions)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeSpecFile(t, "seed.yaml", "products: []")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported seed spec format")
}

func TestLoadRejectsInvalidSpec(t *testing.T) {
	path := writeSpecFile(t, "seed.json", `{"products": [{"name": "No Code"}]}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing code")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	spec := &Spec{
		Products: []ProductSpec{
			{Code: "A", Name: "A"},
			{Code: "A", Name: "Duplicate"},
			{Code: "B"},
		},
		Stock: []StockSpec{
			{ProductCode: "A", Quantity: -1},
			{Quantity: 5},
		},
		RoleGrants: []RoleGrantSpec{{Role: ""}},
	}

	err := spec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate code "A"`)
	assert.Contains(t, err.Error(), "missing name")
	assert.Contains(t, err.Error(), "negative quantity")
	assert.Contains(t, err.Error(), "missing product")
	assert.Contains(t, err.Error(), "missing role")
}

func TestValidateEmptySpec(t *testing.T) {
	assert.NoError(t, (&Spec{}).Validate())
}

func TestParseAttributes(t *testing.T) {
	attrs := parseAttributes("Color=Red; Size = M;; Broken")
	assert.Equal(t, map[string]string{"Color": "Red", "Size": "M"}, attrs)
	assert.Empty(t, parseAttributes(""))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ; b ;"))
	assert.Nil(t, splitList(""))
}
