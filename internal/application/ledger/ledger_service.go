package ledger

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPaymentMethod = "cash"

// LedgerService handles the petty cash book and client balance reads
type LedgerService struct {
	scope           txn.TransactionScope
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope txn.TransactionScope, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{scope: scope, logger: logger}
}

// SetBusinessMetrics sets the business metrics collector
func (s *LedgerService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// CreatePettyCash records a manual cash_in or cash_out against a client
func (s *LedgerService) CreatePettyCash(ctx context.Context, req CreatePettyCashRequest) (*PostingResponse, error) {
	txType := partner.TransactionType(req.TransactionType)
	if !txType.IsCash() {
		return nil, shared.NewValidationError("invalid transaction type %q, must be cash_in or cash_out", req.TransactionType)
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewValidationError("amount must be greater than 0")
	}
	refType := partner.ReferenceManual
	if req.ReferenceType != "" {
		refType = partner.ReferenceType(req.ReferenceType)
		if refType != partner.ReferenceManual && refType != partner.ReferenceSalary {
			return nil, shared.NewValidationError("invalid reference type %q", req.ReferenceType)
		}
	}

	var posting *partner.LedgerPosting
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		client, err := repos.Clients().FindByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		role, err := client.ResolveRole(partner.PartyRole(req.PartyRole))
		if err != nil {
			return err
		}

		posting, err = NewPoster(repos).Post(ctx, PostingInput{
			ClientID:      client.ID,
			Role:          role,
			Type:          txType,
			Amount:        req.Amount,
			Date:          dateOrNow(req.TransactionDate),
			PaymentMethod: paymentMethodOrDefault(req.PaymentMethod),
			ReferenceType: refType,
			Description:   req.Description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordLedgerPosting(ctx, string(posting.TransactionType))
	}
	s.logger.Info("petty cash recorded",
		zap.String("transaction_number", posting.TransactionNumber),
		zap.String("transaction_type", string(posting.TransactionType)),
		zap.String("client_id", posting.ClientID.String()),
		zap.String("amount", posting.Amount.String()),
	)

	resp := ToPostingResponse(posting)
	return &resp, nil
}

// UpdatePettyCash corrects a manual posting by reversing its old balance effect
// and applying the new one, possibly on a different client
func (s *LedgerService) UpdatePettyCash(ctx context.Context, id uuid.UUID, req UpdatePettyCashRequest) (*PostingResponse, error) {
	txType := partner.TransactionType(req.TransactionType)
	if !txType.IsCash() {
		return nil, shared.NewValidationError("invalid transaction type %q, must be cash_in or cash_out", req.TransactionType)
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewValidationError("amount must be greater than 0")
	}

	var posting *partner.LedgerPosting
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		posting, err = loadManualPosting(ctx, repos, id)
		if err != nil {
			return err
		}

		client, err := repos.Clients().FindByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		role, err := client.ResolveRole(partner.PartyRole(req.PartyRole))
		if err != nil {
			return err
		}

		poster := NewPoster(repos)
		if _, err := poster.Shift(ctx, posting.ClientID, posting.BalanceDelta.Neg()); err != nil {
			return err
		}

		delta, err := posting.Reprice(client.ID, role, txType, req.Amount)
		if err != nil {
			return err
		}
		balance, err := poster.Shift(ctx, client.ID, delta)
		if err != nil {
			return err
		}

		posting.BalanceAfter = balance
		posting.PaymentMethod = paymentMethodOrDefault(req.PaymentMethod)
		posting.Description = req.Description
		if req.TransactionDate != nil {
			posting.TransactionDate = *req.TransactionDate
		}
		return repos.Postings().Update(ctx, posting)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("petty cash corrected",
		zap.String("transaction_number", posting.TransactionNumber),
		zap.String("client_id", posting.ClientID.String()),
		zap.String("balance_delta", posting.BalanceDelta.String()),
	)

	resp := ToPostingResponse(posting)
	return &resp, nil
}

// DeletePettyCash reverses a manual posting's balance effect and voids it
func (s *LedgerService) DeletePettyCash(ctx context.Context, id uuid.UUID) error {
	var posting *partner.LedgerPosting
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		posting, err = loadManualPosting(ctx, repos, id)
		if err != nil {
			return err
		}
		if _, err := NewPoster(repos).Shift(ctx, posting.ClientID, posting.BalanceDelta.Neg()); err != nil {
			return err
		}
		return repos.Postings().Void(ctx, posting.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("petty cash voided",
		zap.String("transaction_number", posting.TransactionNumber),
		zap.String("client_id", posting.ClientID.String()),
	)
	return nil
}

// ListPostings lists the petty cash book with cash totals over the whole filter
func (s *LedgerService) ListPostings(ctx context.Context, filter PostingListFilter) (*PostingListResponse, error) {
	pf := toPostingFilter(filter)
	repo := s.scope.Repositories().Postings()

	postings, total, err := repo.FindAll(ctx, pf)
	if err != nil {
		return nil, err
	}
	totals, err := repo.Totals(ctx, pf)
	if err != nil {
		return nil, err
	}

	return &PostingListResponse{
		Items:        ToPostingResponses(postings),
		Total:        total,
		Page:         pf.Page,
		PageSize:     pf.PageSize,
		TotalCashIn:  totals.TotalCashIn,
		TotalCashOut: totals.TotalCashOut,
		NetCash:      totals.NetCash(),
	}, nil
}

// ClientStatement returns one page of a client's postings newest first with the current balance
func (s *LedgerService) ClientStatement(ctx context.Context, clientID uuid.UUID, filter StatementFilter) (*StatementResponse, error) {
	repos := s.scope.Repositories()
	client, err := repos.Clients().FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	pf := partner.PostingFilter{
		Filter:   shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "created_at", OrderDir: "desc"}.Normalize(),
		ClientID: &clientID,
		From:     filter.From,
		To:       filter.To,
	}
	postings, total, err := repos.Postings().FindAll(ctx, pf)
	if err != nil {
		return nil, err
	}
	totals, err := repos.Postings().Totals(ctx, pf)
	if err != nil {
		return nil, err
	}

	return &StatementResponse{
		ClientID:       client.ID,
		ClientCode:     client.Code,
		ClientName:     client.Name,
		ClientType:     string(client.ClientType),
		CurrentBalance: client.Balance,
		TotalCashIn:    totals.TotalCashIn,
		TotalCashOut:   totals.TotalCashOut,
		Postings:       ToPostingResponses(postings),
		Total:          total,
		Page:           pf.Page,
		PageSize:       pf.PageSize,
	}, nil
}

// DailySummary summarises cash in and out for one day
func (s *LedgerService) DailySummary(ctx context.Context, date time.Time) (*DailySummaryResponse, error) {
	if date.IsZero() {
		date = time.Now()
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	totals, err := s.scope.Repositories().Postings().Totals(ctx, partner.PostingFilter{From: &day, To: &day})
	if err != nil {
		return nil, err
	}
	return &DailySummaryResponse{
		Date:         day.Format("2006-01-02"),
		CashInCount:  totals.CashInCount,
		CashOutCount: totals.CashOutCount,
		TotalCashIn:  totals.TotalCashIn,
		TotalCashOut: totals.TotalCashOut,
		NetCash:      totals.NetCash(),
	}, nil
}

// VerifyBalance compares the stored balance with the sum of the client's postings
func (s *LedgerService) VerifyBalance(ctx context.Context, clientID uuid.UUID) (*BalanceCheckResponse, error) {
	repos := s.scope.Repositories()
	client, err := repos.Clients().FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	sum, err := repos.Postings().SumDeltas(ctx, clientID)
	if err != nil {
		return nil, err
	}

	diff := client.Balance.Sub(sum)
	if !diff.IsZero() {
		s.logger.Warn("client balance drifted from ledger",
			zap.String("client_id", clientID.String()),
			zap.String("stored", client.Balance.String()),
			zap.String("ledger", sum.String()),
		)
	}
	return &BalanceCheckResponse{
		ClientID:      clientID,
		StoredBalance: client.Balance,
		LedgerBalance: sum,
		Difference:    diff,
		Consistent:    diff.IsZero(),
	}, nil
}

func loadManualPosting(ctx context.Context, repos txn.Repositories, id uuid.UUID) (*partner.LedgerPosting, error) {
	posting, err := repos.Postings().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if posting.Voided {
		return nil, shared.NewNotFoundError("petty cash transaction")
	}
	if !posting.IsManual() {
		return nil, shared.NewValidationError("transaction %s was raised by an order and cannot be edited", posting.TransactionNumber)
	}
	return posting, nil
}

func toPostingFilter(f PostingListFilter) partner.PostingFilter {
	base := shared.Filter{Page: f.Page, PageSize: f.PageSize, OrderBy: "transaction_date", OrderDir: "desc"}.Normalize()
	return partner.PostingFilter{
		Filter:          base,
		ClientID:        f.ClientID,
		TransactionType: partner.TransactionType(f.TransactionType),
		ReferenceType:   partner.ReferenceType(f.ReferenceType),
		From:            f.From,
		To:              f.To,
		IncludeVoided:   f.IncludeVoided,
	}
}

func dateOrNow(d *time.Time) time.Time {
	if d == nil || d.IsZero() {
		return time.Now()
	}
	return *d
}

func paymentMethodOrDefault(m string) string {
	if m == "" {
		return defaultPaymentMethod
	}
	return m
}
