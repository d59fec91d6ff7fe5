package partner

import (
	"strings"

	"github.com/erp/stockflow/internal/domain/shared"
)

// Warehouse scopes all stock
type Warehouse struct {
	shared.BaseEntity
	Code    string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name    string `gorm:"type:varchar(200);not null"`
	Address string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse
func NewWarehouse(code, name string) (*Warehouse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("warehouse code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("warehouse name is required")
	}
	return &Warehouse{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(code),
		Name:       name,
	}, nil
}
