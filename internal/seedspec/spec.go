// Package seedspec loads the target-state specification the reconciliation
// jobs converge the database toward. Sources are JSON documents or XLSX
// workbooks with one sheet per collection.
package seedspec

import (
	"fmt"
	"strings"
)

// Spec is the full target description. Every collection is optional; a job
// only reads the collections it reconciles.
type Spec struct {
	Warehouses  []WarehouseSpec  `json:"warehouses,omitempty"`
	Units       []UnitSpec       `json:"units,omitempty"`
	Products    []ProductSpec    `json:"products,omitempty"`
	Stock       []StockSpec      `json:"stock,omitempty"`
	Permissions []PermissionSpec `json:"permissions,omitempty"`
	RoleGrants  []RoleGrantSpec  `json:"roleGrants,omitempty"`
}

// WarehouseSpec describes one warehouse to upsert.
type WarehouseSpec struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault,omitempty"`
	Priority  int    `json:"priority,omitempty"`
}

// UnitSpec describes one measurement unit to upsert.
type UnitSpec struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// ProductSpec describes one product and the variants it should have. The
// attribute-less base variant is always materialized and never needs listing.
type ProductSpec struct {
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Variants    []VariantSpec `json:"variants,omitempty"`
}

// VariantSpec describes one variant by its attribute set. Code is optional;
// a deterministic one is derived when absent.
type VariantSpec struct {
	Code       string            `json:"code,omitempty"`
	Attributes map[string]string `json:"attributes"`
}

// StockSpec describes one stock row. VariantCode narrows the owner to a
// specific variant; otherwise stock is kept against the product itself.
// Warehouse and unit codes are optional, falling back to system defaults.
type StockSpec struct {
	ProductCode      string `json:"product"`
	VariantCode      string `json:"variant,omitempty"`
	WarehouseCode    string `json:"warehouse,omitempty"`
	UnitCode         string `json:"unit,omitempty"`
	Quantity         int    `json:"quantity"`
	ReservedQuantity int    `json:"reserved,omitempty"`
}

// Owner names the stockable entity this row belongs to, for reporting.
func (s *StockSpec) Owner() string {
	if s.VariantCode != "" {
		return s.ProductCode + "/" + s.VariantCode
	}
	return s.ProductCode
}

// PermissionSpec describes one permission to upsert.
type PermissionSpec struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName,omitempty"`
	Description *string `json:"description,omitempty"`
	Resource    *string `json:"resource,omitempty"`
	Action      *string `json:"action,omitempty"`
}

// RoleGrantSpec is the target permission set for one role. The role itself
// must already exist; a missing role is a job-level precondition failure.
type RoleGrantSpec struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Validate checks structural problems that make the whole file unusable.
// Item-level problems (unknown references, unresolvable defaults) are left to
// the jobs so they can be reported per item.
func (s *Spec) Validate() error {
	var problems []string

	seenProducts := make(map[string]struct{})
	for i, p := range s.Products {
		if p.Code == "" {
			problems = append(problems, fmt.Sprintf("products[%d]: missing code", i))
			continue
		}
		if _, dup := seenProducts[p.Code]; dup {
			problems = append(problems, fmt.Sprintf("products[%d]: duplicate code %q", i, p.Code))
		}
		seenProducts[p.Code] = struct{}{}
		if p.Name == "" {
			problems = append(problems, fmt.Sprintf("products[%d] (%s): missing name", i, p.Code))
		}
	}

	for i, w := range s.Warehouses {
		if w.Code == "" {
			problems = append(problems, fmt.Sprintf("warehouses[%d]: missing code", i))
		}
	}
	for i, u := range s.Units {
		if u.Code == "" {
			problems = append(problems, fmt.Sprintf("units[%d]: missing code", i))
		}
	}

	for i, st := range s.Stock {
		if st.ProductCode == "" {
			problems = append(problems, fmt.Sprintf("stock[%d]: missing product", i))
		}
		if st.Quantity < 0 || st.ReservedQuantity < 0 {
			problems = append(problems, fmt.Sprintf("stock[%d] (%s): negative quantity", i, st.Owner()))
		}
	}

	for i, p := range s.Permissions {
		if p.Name == "" {
			problems = append(problems, fmt.Sprintf("permissions[%d]: missing name", i))
		}
	}
	for i, g := range s.RoleGrants {
		if g.Role == "" {
			problems = append(problems, fmt.Sprintf("roleGrants[%d]: missing role", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid seed spec:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
