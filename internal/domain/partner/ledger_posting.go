package partner

import (
	"fmt"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of a ledger posting
type TransactionType string

const (
	// TransactionTypeCashIn is money received from the client
	TransactionTypeCashIn TransactionType = "cash_in"
	// TransactionTypeCashOut is money paid to the client
	TransactionTypeCashOut TransactionType = "cash_out"
	// TransactionTypeReceivable is a sales order charge raised against a customer
	TransactionTypeReceivable TransactionType = "receivable"
	// TransactionTypePayable is a purchase order charge owed to a supplier
	TransactionTypePayable TransactionType = "payable"
	// TransactionTypeReversal cancels the balance effect of an earlier posting
	TransactionTypeReversal TransactionType = "reversal"
)

// IsCash reports whether the type is a cash movement (valid for manual petty cash)
func (t TransactionType) IsCash() bool {
	return t == TransactionTypeCashIn || t == TransactionTypeCashOut
}

// ReferenceType links a posting to the document that caused it
type ReferenceType string

const (
	ReferenceSalesOrder    ReferenceType = "sales_order"
	ReferencePurchaseOrder ReferenceType = "purchase_order"
	ReferenceManual        ReferenceType = "manual"
	ReferenceSalary        ReferenceType = "salary"
)

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceSalesOrder, ReferencePurchaseOrder, ReferenceManual, ReferenceSalary:
		return true
	}
	return false
}

// SignedDelta returns the change to a client's balance for a posting.
//
//	receivable  customer  +amount
//	payable     supplier  +amount
//	cash_in     customer  -amount   supplier  +amount
//	cash_out    customer  +amount   supplier  -amount
//
// Reversal postings carry an explicit delta and are not priced here.
func SignedDelta(role PartyRole, txType TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, shared.NewValidationError("amount must be greater than 0")
	}
	if !role.IsValid() {
		return decimal.Zero, shared.NewValidationError("invalid party role %q", role)
	}

	switch txType {
	case TransactionTypeReceivable:
		if role != RoleCustomer {
			return decimal.Zero, shared.NewValidationError("receivable postings apply to customers only")
		}
		return amount, nil
	case TransactionTypePayable:
		if role != RoleSupplier {
			return decimal.Zero, shared.NewValidationError("payable postings apply to suppliers only")
		}
		return amount, nil
	case TransactionTypeCashIn:
		if role == RoleCustomer {
			return amount.Neg(), nil
		}
		return amount, nil
	case TransactionTypeCashOut:
		if role == RoleCustomer {
			return amount, nil
		}
		return amount.Neg(), nil
	}
	return decimal.Zero, shared.NewValidationError("invalid transaction type %q, must be cash_in or cash_out", txType)
}

// LedgerPosting is one entry in a client's ledger (the petty cash book).
// The signed sum of BalanceDelta over a client's non-voided postings equals
// the client's balance.
type LedgerPosting struct {
	shared.BaseEntity
	TransactionNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	TransactionDate   time.Time       `gorm:"type:date;not null;index"`
	TransactionType   TransactionType `gorm:"type:varchar(20);not null;index"`
	PartyRole         PartyRole       `gorm:"type:varchar(20);not null"`
	ClientID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceDelta      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentMethod     string          `gorm:"type:varchar(30)"`
	ReferenceType     ReferenceType   `gorm:"type:varchar(30);not null"`
	ReferenceID       *uuid.UUID      `gorm:"type:uuid;index"`
	ReversesID        *uuid.UUID      `gorm:"type:uuid"`
	Description       string          `gorm:"type:text"`
	Voided            bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (LedgerPosting) TableName() string {
	return "petty_cash"
}

// NewLedgerPosting creates a posting priced with SignedDelta
func NewLedgerPosting(
	number string,
	date time.Time,
	clientID uuid.UUID,
	role PartyRole,
	txType TransactionType,
	amount decimal.Decimal,
	refType ReferenceType,
	refID *uuid.UUID,
) (*LedgerPosting, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("client_id is required")
	}
	if !refType.IsValid() {
		return nil, shared.NewValidationError("invalid reference type %q", refType)
	}
	delta, err := SignedDelta(role, txType, amount)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &LedgerPosting{
		BaseEntity:        shared.NewBaseEntity(),
		TransactionNumber: number,
		TransactionDate:   truncateDay(date),
		TransactionType:   txType,
		PartyRole:         role,
		ClientID:          clientID,
		Amount:            amount,
		BalanceDelta:      delta,
		ReferenceType:     refType,
		ReferenceID:       refID,
	}, nil
}

// NewReversal creates a posting that cancels the balance effect of p
func (p *LedgerPosting) NewReversal(number string, date time.Time, description string) *LedgerPosting {
	if date.IsZero() {
		date = time.Now()
	}
	id := p.ID
	return &LedgerPosting{
		BaseEntity:        shared.NewBaseEntity(),
		TransactionNumber: number,
		TransactionDate:   truncateDay(date),
		TransactionType:   TransactionTypeReversal,
		PartyRole:         p.PartyRole,
		ClientID:          p.ClientID,
		Amount:            p.Amount,
		BalanceDelta:      p.BalanceDelta.Neg(),
		ReferenceType:     p.ReferenceType,
		ReferenceID:       p.ReferenceID,
		ReversesID:        &id,
		Description:       description,
	}
}

// IsManual reports whether the posting was entered directly in the petty cash book
// rather than raised by an order workflow
func (p *LedgerPosting) IsManual() bool {
	return p.TransactionType.IsCash() && (p.ReferenceType == ReferenceManual || p.ReferenceType == ReferenceSalary)
}

// WithPaymentMethod sets the payment method
func (p *LedgerPosting) WithPaymentMethod(method string) *LedgerPosting {
	p.PaymentMethod = method
	return p
}

// WithDescription sets the description
func (p *LedgerPosting) WithDescription(description string) *LedgerPosting {
	p.Description = description
	return p
}

// Reprice replaces the priced fields of a manual posting in place and returns
// the new delta. Callers reverse the old delta before applying the new one.
func (p *LedgerPosting) Reprice(clientID uuid.UUID, role PartyRole, txType TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	if !txType.IsCash() {
		return decimal.Zero, shared.NewValidationError("invalid transaction type %q, must be cash_in or cash_out", txType)
	}
	delta, err := SignedDelta(role, txType, amount)
	if err != nil {
		return decimal.Zero, err
	}
	p.ClientID = clientID
	p.PartyRole = role
	p.TransactionType = txType
	p.Amount = amount
	p.BalanceDelta = delta
	p.Touch()
	return delta, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatTransactionNumber builds a time-based petty cash number with a sequence suffix
func FormatTransactionNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("PC-%d-%d", at.UnixMilli(), seq)
}
