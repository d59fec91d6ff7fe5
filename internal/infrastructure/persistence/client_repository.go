package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var client partner.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "client", "find client")
	}
	client.Balance = scaled(client.Balance)
	return &client, nil
}

// FindAll finds clients matching the filter. Supported filters: client_type, search.
func (r *GormClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Client, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&partner.Client{})

	if v, ok := filter.Filters["client_type"].(string); ok && v != "" {
		query = query.Where("client_type IN ?", []string{v, string(partner.ClientTypeBoth)})
	}
	if v, ok := filter.Filters["search"].(string); ok && v != "" {
		like := "%" + v + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count clients", err)
	}

	var clients []partner.Client
	err := query.Order(orderClause(filter, ClientSortFields, "code")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&clients).Error
	if err != nil {
		return nil, 0, wrap("list clients", err)
	}
	for i := range clients {
		clients[i].Balance = scaled(clients[i].Balance)
	}
	return clients, total, nil
}

// Save inserts a client, or updates its descriptive fields. Balance is only
// written on insert.
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "name", "client_type", "phone", "email", "address", "updated_at"}),
	}).Create(client).Error
	return wrap("save client", err)
}

const adjustBalanceSQL = `UPDATE clients SET balance = ROUND(balance + ?, 4), updated_at = ? WHERE id = ? RETURNING balance`

// AdjustBalance applies balance = balance + delta in one statement and returns the new balance
func (r *GormClientRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.WithContext(ctx).
		Raw(adjustBalanceSQL, delta, time.Now(), id).
		Row().
		Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, shared.NewNotFoundError("client")
	}
	if err != nil {
		return decimal.Zero, wrap("adjust client balance", err)
	}
	return scaled(balance), nil
}

var _ partner.ClientRepository = (*GormClientRepository)(nil)
