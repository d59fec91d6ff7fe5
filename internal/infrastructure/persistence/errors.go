package persistence

import (
	"errors"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// quantityScale is the number of decimal places stored for money and weights
const quantityScale = 4

// notFoundOr maps a missing row to NotFound and anything else to a persistence error
func notFoundOr(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return wrap(op, err)
}

// wrap turns a store failure into a persistence error, leaving domain errors untouched
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.NewPersistenceError(op, err)
}

// scaled rounds a value read back from the store to the stored precision.
// SQLite keeps numerics as floating point.
func scaled(d decimal.Decimal) decimal.Decimal {
	return d.Round(quantityScale)
}
