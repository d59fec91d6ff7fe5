package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/domain/trade"
	"gorm.io/gorm"
)

const nextSequenceSQL = `INSERT INTO number_sequences (name, value) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET value = number_sequences.value + 1
RETURNING value`

// GormSequenceRepository hands out document numbers from the number_sequences table.
// The increment runs in the caller's transaction, so a rolled back document
// does not consume its number.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next increments the named counter, creating it at 1, and returns the new value
func (r *GormSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	if err := r.db.WithContext(ctx).Raw(nextSequenceSQL, name).Row().Scan(&value); err != nil {
		return 0, wrap("next sequence "+name, err)
	}
	return value, nil
}

var _ trade.SequenceRepository = (*GormSequenceRepository)(nil)
