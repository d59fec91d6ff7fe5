package persistence

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const postingTotalsSQL = `COALESCE(SUM(CASE WHEN transaction_type = 'cash_in' THEN amount ELSE 0 END), 0),
COALESCE(SUM(CASE WHEN transaction_type = 'cash_out' THEN amount ELSE 0 END), 0),
COALESCE(SUM(CASE WHEN transaction_type = 'cash_in' THEN 1 ELSE 0 END), 0),
COALESCE(SUM(CASE WHEN transaction_type = 'cash_out' THEN 1 ELSE 0 END), 0)`

// GormLedgerPostingRepository implements LedgerPostingRepository over the petty_cash table
type GormLedgerPostingRepository struct {
	db *gorm.DB
}

// NewGormLedgerPostingRepository creates a new GormLedgerPostingRepository
func NewGormLedgerPostingRepository(db *gorm.DB) *GormLedgerPostingRepository {
	return &GormLedgerPostingRepository{db: db}
}

// FindByID finds a posting by its ID, voided or not
func (r *GormLedgerPostingRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.LedgerPosting, error) {
	var posting partner.LedgerPosting
	if err := r.db.WithContext(ctx).First(&posting, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "petty cash transaction", "find posting")
	}
	scalePosting(&posting)
	return &posting, nil
}

// FindByReference finds the non-voided postings raised by a document, oldest first
func (r *GormLedgerPostingRepository) FindByReference(ctx context.Context, refType partner.ReferenceType, refID uuid.UUID) ([]partner.LedgerPosting, error) {
	var postings []partner.LedgerPosting
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ? AND voided = ?", refType, refID, false).
		Order("created_at ASC").
		Find(&postings).Error
	if err != nil {
		return nil, wrap("find postings by reference", err)
	}
	for i := range postings {
		scalePosting(&postings[i])
	}
	return postings, nil
}

// FindAll lists postings newest first
func (r *GormLedgerPostingRepository) FindAll(ctx context.Context, filter partner.PostingFilter) ([]partner.LedgerPosting, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count postings", err)
	}

	var postings []partner.LedgerPosting
	order := orderClause(filter.Filter, PostingSortFields, "transaction_date")
	if filter.OrderBy != "created_at" {
		order += ", created_at DESC"
	}
	err := query.Order(order).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&postings).Error
	if err != nil {
		return nil, 0, wrap("list postings", err)
	}
	for i := range postings {
		scalePosting(&postings[i])
	}
	return postings, total, nil
}

// Totals sums cash_in and cash_out over the filter, ignoring paging
func (r *GormLedgerPostingRepository) Totals(ctx context.Context, filter partner.PostingFilter) (partner.PostingTotals, error) {
	var totals partner.PostingTotals
	err := r.filtered(ctx, filter).
		Select(postingTotalsSQL).
		Row().
		Scan(&totals.TotalCashIn, &totals.TotalCashOut, &totals.CashInCount, &totals.CashOutCount)
	if err != nil {
		return partner.PostingTotals{}, wrap("sum postings", err)
	}
	totals.TotalCashIn = scaled(totals.TotalCashIn)
	totals.TotalCashOut = scaled(totals.TotalCashOut)
	return totals, nil
}

// SumDeltas returns the sum of balance_delta over the client's non-voided postings
func (r *GormLedgerPostingRepository) SumDeltas(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&partner.LedgerPosting{}).
		Where("client_id = ? AND voided = ?", clientID, false).
		Select("COALESCE(SUM(balance_delta), 0)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, wrap("sum posting deltas", err)
	}
	return scaled(sum), nil
}

// Create appends a posting
func (r *GormLedgerPostingRepository) Create(ctx context.Context, posting *partner.LedgerPosting) error {
	return wrap("create posting", r.db.WithContext(ctx).Create(posting).Error)
}

// Update rewrites a posting in place
func (r *GormLedgerPostingRepository) Update(ctx context.Context, posting *partner.LedgerPosting) error {
	result := r.db.WithContext(ctx).
		Model(&partner.LedgerPosting{}).
		Where("id = ? AND voided = ?", posting.ID, false).
		Updates(map[string]any{
			"transaction_date": posting.TransactionDate,
			"transaction_type": posting.TransactionType,
			"party_role":       posting.PartyRole,
			"client_id":        posting.ClientID,
			"amount":           posting.Amount,
			"balance_delta":    posting.BalanceDelta,
			"balance_after":    posting.BalanceAfter,
			"payment_method":   posting.PaymentMethod,
			"description":      posting.Description,
			"updated_at":       posting.UpdatedAt,
		})
	if result.Error != nil {
		return wrap("update posting", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("petty cash transaction")
	}
	return nil
}

// Void marks a posting voided
func (r *GormLedgerPostingRepository) Void(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&partner.LedgerPosting{}).
		Where("id = ? AND voided = ?", id, false).
		Updates(map[string]any{"voided": true, "updated_at": time.Now()})
	if result.Error != nil {
		return wrap("void posting", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("petty cash transaction")
	}
	return nil
}

func (r *GormLedgerPostingRepository) filtered(ctx context.Context, filter partner.PostingFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&partner.LedgerPosting{})
	if !filter.IncludeVoided {
		query = query.Where("voided = ?", false)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.TransactionType != "" {
		query = query.Where("transaction_type = ?", filter.TransactionType)
	}
	if filter.ReferenceType != "" {
		query = query.Where("reference_type = ?", filter.ReferenceType)
	}
	return dayRange(query, "transaction_date", filter.From, filter.To)
}

func scalePosting(p *partner.LedgerPosting) {
	p.Amount = scaled(p.Amount)
	p.BalanceDelta = scaled(p.BalanceDelta)
	p.BalanceAfter = scaled(p.BalanceAfter)
}

var _ partner.LedgerPostingRepository = (*GormLedgerPostingRepository)(nil)
