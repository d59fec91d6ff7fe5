package persistence

import (
	"strings"

	"github.com/erp/stockflow/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a safe ORDER BY clause from a filter. The id tiebreak keeps
// pagination stable when many rows share the sort value.
func orderClause(filter shared.Filter, allowed map[string]bool, defaultField string) string {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	if field == "id" {
		return "id " + dir
	}
	return field + " " + dir + ", id " + dir
}

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"code":        true,
	"name":        true,
	"client_type": true,
	"balance":     true,
}

// WarehouseSortFields contains allowed sort fields for warehouses
var WarehouseSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"name":          true,
	"unit_type":     true,
	"base_price":    true,
	"reorder_level": true,
}

// StockSortFields contains allowed sort fields for stock positions
var StockSortFields = map[string]bool{
	"id":           true,
	"updated_at":   true,
	"product_id":   true,
	"warehouse_id": true,
	"quantity":     true,
}

// PostingSortFields contains allowed sort fields for ledger postings
var PostingSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"transaction_number": true,
	"transaction_date":   true,
	"transaction_type":   true,
	"amount":             true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"po_number":       true,
	"order_date":      true,
	"status":          true,
	"total_amount":    true,
	"total_kg":        true,
	"production_date": true,
}

// SalesOrderSortFields contains allowed sort fields for sales orders
var SalesOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"order_date":   true,
	"status":       true,
	"total_amount": true,
	"total_kg":     true,
}

// ProductionRecordSortFields contains allowed sort fields for production records
var ProductionRecordSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"production_number": true,
	"production_date":   true,
	"production_kg":     true,
	"purchased_kg":      true,
}

// WastageSortFields contains allowed sort fields for wastage records
var WastageSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"wastage_date": true,
	"quantity":     true,
	"status":       true,
	"reason":       true,
}

// CuttingSortFields contains allowed sort fields for cutting operations
var CuttingSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"operation_number": true,
	"operation_date":   true,
	"status":           true,
	"input_quantity":   true,
}
