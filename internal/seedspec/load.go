package seedspec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads a seed specification from path, dispatching on extension
// (.json or .xlsx), and validates it.
func Load(path string) (*Spec, error) {
	var (
		spec *Spec
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		spec, err = loadJSON(path)
	case ".xlsx":
		spec, err = loadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported seed spec format %q (want .json or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func loadJSON(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed spec: %w", err)
	}
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse seed spec %s: %w", path, err)
	}
	return &spec, nil
}

// loadXLSX reads one sheet per collection: Products, Variants, Stock,
// Warehouses, Units, Permissions, RoleGrants. Missing sheets are simply empty
// collections. Variant attributes and role permission lists are cell-encoded
// as "a=b; c=d" and "x; y; z" respectively.
func loadXLSX(path string) (*Spec, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	spec := &Spec{}

	for _, row := range sheetRows(f, "Warehouses") {
		priority, _ := strconv.Atoi(row["priority"])
		spec.Warehouses = append(spec.Warehouses, WarehouseSpec{
			Code:      row["code"],
			Name:      row["name"],
			IsDefault: parseBool(row["default"]),
			Priority:  priority,
		})
	}

	for _, row := range sheetRows(f, "Units") {
		spec.Units = append(spec.Units, UnitSpec{
			Code:      row["code"],
			Name:      row["name"],
			IsDefault: parseBool(row["default"]),
		})
	}

	// Index by position, not by element pointer: appending to spec.Products
	// relocates its backing array and would leave pointers at stale copies.
	productIndex := make(map[string]int)
	for _, row := range sheetRows(f, "Products") {
		p := ProductSpec{Code: row["code"], Name: row["name"]}
		if desc := row["description"]; desc != "" {
			p.Description = &desc
		}
		spec.Products = append(spec.Products, p)
		productIndex[p.Code] = len(spec.Products) - 1
	}

	for _, row := range sheetRows(f, "Variants") {
		productCode := row["product"]
		variant := VariantSpec{
			Code:       row["code"],
			Attributes: parseAttributes(row["attributes"]),
		}
		idx, ok := productIndex[productCode]
		if !ok {
			return nil, fmt.Errorf("Variants row %s references unknown product %q", row["_row"], productCode)
		}
		spec.Products[idx].Variants = append(spec.Products[idx].Variants, variant)
	}

	for _, row := range sheetRows(f, "Stock") {
		quantity, err := strconv.Atoi(row["quantity"])
		if err != nil {
			return nil, fmt.Errorf("Stock row %s: invalid quantity %q", row["_row"], row["quantity"])
		}
		reserved := 0
		if row["reserved"] != "" {
			reserved, err = strconv.Atoi(row["reserved"])
			if err != nil {
				return nil, fmt.Errorf("Stock row %s: invalid reserved %q", row["_row"], row["reserved"])
			}
		}
		spec.Stock = append(spec.Stock, StockSpec{
			ProductCode:      row["product"],
			VariantCode:      row["variant"],
			WarehouseCode:    row["warehouse"],
			UnitCode:         row["unit"],
			Quantity:         quantity,
			ReservedQuantity: reserved,
		})
	}

	for _, row := range sheetRows(f, "Permissions") {
		p := PermissionSpec{Name: row["name"], DisplayName: row["display name"]}
		if desc := row["description"]; desc != "" {
			p.Description = &desc
		}
		if res := row["resource"]; res != "" {
			p.Resource = &res
		}
		if action := row["action"]; action != "" {
			p.Action = &action
		}
		spec.Permissions = append(spec.Permissions, p)
	}

	for _, row := range sheetRows(f, "RoleGrants") {
		spec.RoleGrants = append(spec.RoleGrants, RoleGrantSpec{
			Role:        row["role"],
			Permissions: splitList(row["permissions"]),
		})
	}

	return spec, nil
}

// sheetRows reads a sheet into header-keyed row maps. The first row is the
// header, lowercased; a "_row" key tracks the 1-indexed sheet row for error
// reporting.
func sheetRows(f *excelize.File, sheetName string) []map[string]string {
	excelRows, err := f.GetRows(sheetName)
	if err != nil || len(excelRows) < 2 {
		return nil
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
	}

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2)
		rows = append(rows, row)
	}
	return rows
}

// parseAttributes decodes "Color=Red; Size=M" into an attribute map.
func parseAttributes(cell string) map[string]string {
	attrs := make(map[string]string)
	for _, pair := range strings.Split(cell, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		attrs[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return attrs
}

func splitList(cell string) []string {
	var items []string
	for _, item := range strings.Split(cell, ";") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}
