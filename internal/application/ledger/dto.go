package ledger

import (
	"time"

	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePettyCashRequest represents a manual cash movement against a client
type CreatePettyCashRequest struct {
	TransactionDate *time.Time      `json:"transaction_date"`
	TransactionType string          `json:"transaction_type" binding:"required"`
	ClientID        uuid.UUID       `json:"client_id" binding:"required"`
	PartyRole       string          `json:"party_role" binding:"omitempty,oneof=customer supplier"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method" binding:"max=30"`
	ReferenceType   string          `json:"reference_type" binding:"omitempty,oneof=manual salary"`
	Description     string          `json:"description"`
}

// UpdatePettyCashRequest replaces the priced fields of a manual posting
type UpdatePettyCashRequest struct {
	TransactionDate *time.Time      `json:"transaction_date"`
	TransactionType string          `json:"transaction_type" binding:"required"`
	ClientID        uuid.UUID       `json:"client_id" binding:"required"`
	PartyRole       string          `json:"party_role" binding:"omitempty,oneof=customer supplier"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method" binding:"max=30"`
	Description     string          `json:"description"`
}

// PostingListFilter represents filter options for the petty cash book
type PostingListFilter struct {
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	ClientID        *uuid.UUID `form:"-"`
	TransactionType string     `form:"transaction_type" binding:"omitempty,oneof=cash_in cash_out receivable payable reversal"`
	ReferenceType   string     `form:"reference_type" binding:"omitempty,oneof=sales_order purchase_order manual salary"`
	From            *time.Time `form:"from" time_format:"2006-01-02"`
	To              *time.Time `form:"to" time_format:"2006-01-02"`
	IncludeVoided   bool       `form:"include_voided"`
}

// PostingResponse represents a ledger posting in API responses
type PostingResponse struct {
	ID                uuid.UUID       `json:"id"`
	TransactionNumber string          `json:"transaction_number"`
	TransactionDate   time.Time       `json:"transaction_date"`
	TransactionType   string          `json:"transaction_type"`
	PartyRole         string          `json:"party_role"`
	ClientID          uuid.UUID       `json:"client_id"`
	Amount            decimal.Decimal `json:"amount"`
	BalanceDelta      decimal.Decimal `json:"balance_delta"`
	BalanceAfter      decimal.Decimal `json:"balance_after"`
	PaymentMethod     string          `json:"payment_method,omitempty"`
	ReferenceType     string          `json:"reference_type"`
	ReferenceID       *uuid.UUID      `json:"reference_id,omitempty"`
	ReversesID        *uuid.UUID      `json:"reverses_id,omitempty"`
	Description       string          `json:"description,omitempty"`
	Voided            bool            `json:"voided"`
	CreatedAt         time.Time       `json:"created_at"`
}

// PostingListResponse is a page of postings with cash totals over the whole filter
type PostingListResponse struct {
	Items        []PostingResponse `json:"items"`
	Total        int64             `json:"total"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
	TotalCashIn  decimal.Decimal   `json:"total_cash_in"`
	TotalCashOut decimal.Decimal   `json:"total_cash_out"`
	NetCash      decimal.Decimal   `json:"net_cash"`
}

// StatementFilter selects a page of a client's statement
type StatementFilter struct {
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
}

// StatementResponse is a client's cash flow statement. Postings holds one page;
// Total counts every posting in the date range and the cash totals cover all of them.
type StatementResponse struct {
	ClientID       uuid.UUID         `json:"client_id"`
	ClientCode     string            `json:"client_code"`
	ClientName     string            `json:"client_name"`
	ClientType     string            `json:"client_type"`
	CurrentBalance decimal.Decimal   `json:"current_balance"`
	TotalCashIn    decimal.Decimal   `json:"total_cash_in"`
	TotalCashOut   decimal.Decimal   `json:"total_cash_out"`
	Postings       []PostingResponse `json:"postings"`
	Total          int64             `json:"total"`
	Page           int               `json:"page"`
	PageSize       int               `json:"page_size"`
}

// DailySummaryResponse summarises one day of cash movement
type DailySummaryResponse struct {
	Date         string          `json:"date"`
	CashInCount  int64           `json:"cash_in_count"`
	CashOutCount int64           `json:"cash_out_count"`
	TotalCashIn  decimal.Decimal `json:"total_cash_in"`
	TotalCashOut decimal.Decimal `json:"total_cash_out"`
	NetCash      decimal.Decimal `json:"net_cash"`
}

// BalanceCheckResponse compares a client's stored balance with its ledger
type BalanceCheckResponse struct {
	ClientID      uuid.UUID       `json:"client_id"`
	StoredBalance decimal.Decimal `json:"stored_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Difference    decimal.Decimal `json:"difference"`
	Consistent    bool            `json:"consistent"`
}

// ToPostingResponse converts a domain posting to a response
func ToPostingResponse(p *partner.LedgerPosting) PostingResponse {
	return PostingResponse{
		ID:                p.ID,
		TransactionNumber: p.TransactionNumber,
		TransactionDate:   p.TransactionDate,
		TransactionType:   string(p.TransactionType),
		PartyRole:         string(p.PartyRole),
		ClientID:          p.ClientID,
		Amount:            p.Amount,
		BalanceDelta:      p.BalanceDelta,
		BalanceAfter:      p.BalanceAfter,
		PaymentMethod:     p.PaymentMethod,
		ReferenceType:     string(p.ReferenceType),
		ReferenceID:       p.ReferenceID,
		ReversesID:        p.ReversesID,
		Description:       p.Description,
		Voided:            p.Voided,
		CreatedAt:         p.CreatedAt,
	}
}

// ToPostingResponses converts a slice of postings
func ToPostingResponses(postings []partner.LedgerPosting) []PostingResponse {
	out := make([]PostingResponse, len(postings))
	for i := range postings {
		out[i] = ToPostingResponse(&postings[i])
	}
	return out
}
