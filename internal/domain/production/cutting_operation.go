package production

import (
	"fmt"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CuttingStatus represents the state of a cutting operation
type CuttingStatus string

const (
	CuttingStatusPending   CuttingStatus = "pending"
	CuttingStatusCompleted CuttingStatus = "completed"
	CuttingStatusCancelled CuttingStatus = "cancelled"
)

// CuttingOutput is one product produced by a cutting operation
type CuttingOutput struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CuttingOperationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OutputProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QualityGrade       string          `gorm:"type:varchar(10);not null;default:'A'"`
}

// TableName returns the table name for GORM
func (CuttingOutput) TableName() string {
	return "cutting_outputs"
}

// CuttingOperation turns a quantity of one product into one or more output products
type CuttingOperation struct {
	shared.BaseAggregateRoot
	OperationNumber string          `gorm:"type:varchar(60);not null;uniqueIndex"`
	InputProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	InputQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OperationDate   time.Time       `gorm:"not null"`
	OperatorName    string          `gorm:"type:varchar(100)"`
	Status          CuttingStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes           string          `gorm:"type:text"`
	Outputs         []CuttingOutput `gorm:"foreignKey:CuttingOperationID;references:ID"`
}

// TableName returns the table name for GORM
func (CuttingOperation) TableName() string {
	return "cutting_operations"
}

// OutputInput describes one requested output
type OutputInput struct {
	ProductID    uuid.UUID
	Quantity     decimal.Decimal
	QualityGrade string
}

// FormatCuttingNumber builds a time-based cutting operation number with a sequence suffix
func FormatCuttingNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("CUT-%d-%d", at.UnixMilli(), seq)
}

// NewCuttingOperation creates a pending cutting operation
func NewCuttingOperation(number string, inputProductID, warehouseID uuid.UUID, inputQty decimal.Decimal, outputs []OutputInput, operator, notes string) (*CuttingOperation, error) {
	if inputProductID == uuid.Nil {
		return nil, shared.NewValidationError("input_product_id is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("warehouse_id is required")
	}
	if !inputQty.IsPositive() {
		return nil, shared.NewValidationError("input_quantity must be greater than 0")
	}
	if len(outputs) == 0 {
		return nil, shared.NewValidationError("at least one output is required")
	}

	op := &CuttingOperation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OperationNumber:   number,
		InputProductID:    inputProductID,
		InputQuantity:     inputQty,
		WarehouseID:       warehouseID,
		OperationDate:     time.Now(),
		OperatorName:      operator,
		Status:            CuttingStatusPending,
		Notes:             notes,
	}

	op.Outputs = make([]CuttingOutput, 0, len(outputs))
	for i, o := range outputs {
		if o.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("output %d: product_id is required", i+1)
		}
		if !o.Quantity.IsPositive() {
			return nil, shared.NewValidationError("output %d: quantity must be greater than 0", i+1)
		}
		grade := o.QualityGrade
		if grade == "" {
			grade = "A"
		}
		op.Outputs = append(op.Outputs, CuttingOutput{
			ID:                 uuid.New(),
			CuttingOperationID: op.ID,
			OutputProductID:    o.ProductID,
			Quantity:           o.Quantity,
			QualityGrade:       grade,
		})
	}
	return op, nil
}

// TotalOutput sums the output quantities
func (c *CuttingOperation) TotalOutput() decimal.Decimal {
	total := decimal.Zero
	for _, o := range c.Outputs {
		total = total.Add(o.Quantity)
	}
	return total
}

// Complete marks a pending operation completed
func (c *CuttingOperation) Complete() error {
	switch c.Status {
	case CuttingStatusPending:
	case CuttingStatusCompleted:
		return shared.NewAlreadyProcessedError("cutting operation %s already processed", c.OperationNumber)
	default:
		return shared.NewValidationError("cutting operation %s is %s", c.OperationNumber, c.Status)
	}
	c.Status = CuttingStatusCompleted
	c.Touch()
	return nil
}

// Cancel cancels a pending operation
func (c *CuttingOperation) Cancel() error {
	if c.Status == CuttingStatusCompleted {
		return shared.NewValidationError("cannot cancel completed operation")
	}
	if c.Status == CuttingStatusCancelled {
		return shared.NewValidationError("cutting operation %s is already cancelled", c.OperationNumber)
	}
	c.Status = CuttingStatusCancelled
	c.Touch()
	return nil
}
