package ledger

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingInput describes one ledger posting to append
type PostingInput struct {
	ClientID      uuid.UUID
	Role          partner.PartyRole
	Type          partner.TransactionType
	Amount        decimal.Decimal
	Date          time.Time
	PaymentMethod string
	ReferenceType partner.ReferenceType
	ReferenceID   *uuid.UUID
	Description   string
}

// Poster appends ledger postings and keeps client balances equal to the sum of
// their postings. It is bound to the repositories of one open transaction, and
// it is the only writer of clients.balance.
type Poster struct {
	clients   partner.ClientRepository
	postings  partner.LedgerPostingRepository
	sequences trade.SequenceRepository
	now       func() time.Time
}

// NewPoster creates a Poster over the given transaction's repositories
func NewPoster(repos txn.Repositories) *Poster {
	return &Poster{
		clients:   repos.Clients(),
		postings:  repos.Postings(),
		sequences: repos.Sequences(),
		now:       time.Now,
	}
}

// Post appends a posting and applies its signed delta to the client's balance
func (p *Poster) Post(ctx context.Context, in PostingInput) (*partner.LedgerPosting, error) {
	client, err := p.clients.FindByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.CanActAs(in.Role) {
		return nil, shared.NewValidationError("client %s cannot act as %s", client.Code, in.Role)
	}

	number, err := p.nextNumber(ctx)
	if err != nil {
		return nil, err
	}

	posting, err := partner.NewLedgerPosting(number, in.Date, in.ClientID, in.Role, in.Type, in.Amount, in.ReferenceType, in.ReferenceID)
	if err != nil {
		return nil, err
	}
	method := in.PaymentMethod
	if in.Type.IsCash() {
		method = paymentMethodOrDefault(method)
	}
	posting.WithPaymentMethod(method).WithDescription(in.Description)

	if err := p.apply(ctx, posting); err != nil {
		return nil, err
	}
	return posting, nil
}

// Reverse appends a posting that cancels the balance effect of original
func (p *Poster) Reverse(ctx context.Context, original *partner.LedgerPosting, description string) (*partner.LedgerPosting, error) {
	number, err := p.nextNumber(ctx)
	if err != nil {
		return nil, err
	}
	reversal := original.NewReversal(number, p.now(), description)
	if err := p.apply(ctx, reversal); err != nil {
		return nil, err
	}
	return reversal, nil
}

// ReverseReference reverses every posting a document raised that has not already been reversed
func (p *Poster) ReverseReference(ctx context.Context, refType partner.ReferenceType, refID uuid.UUID, description string) ([]*partner.LedgerPosting, error) {
	existing, err := p.postings.FindByReference(ctx, refType, refID)
	if err != nil {
		return nil, err
	}

	reversed := make(map[uuid.UUID]bool)
	for _, e := range existing {
		if e.ReversesID != nil {
			reversed[*e.ReversesID] = true
		}
	}

	var out []*partner.LedgerPosting
	for i := range existing {
		original := &existing[i]
		if original.TransactionType == partner.TransactionTypeReversal || reversed[original.ID] {
			continue
		}
		rev, err := p.Reverse(ctx, original, description)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, nil
}

// Shift applies a raw delta to a client's balance without appending a posting.
// It is used by reverse-then-reapply corrections, where the posting row itself is rewritten.
func (p *Poster) Shift(ctx context.Context, clientID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsZero() {
		client, err := p.clients.FindByID(ctx, clientID)
		if err != nil {
			return decimal.Zero, err
		}
		return client.Balance, nil
	}
	return p.clients.AdjustBalance(ctx, clientID, delta)
}

func (p *Poster) apply(ctx context.Context, posting *partner.LedgerPosting) error {
	balance, err := p.clients.AdjustBalance(ctx, posting.ClientID, posting.BalanceDelta)
	if err != nil {
		return err
	}
	posting.BalanceAfter = balance
	return p.postings.Create(ctx, posting)
}

func (p *Poster) nextNumber(ctx context.Context) (string, error) {
	seq, err := p.sequences.Next(ctx, trade.SequencePettyCash)
	if err != nil {
		return "", err
	}
	return partner.FormatTransactionNumber(p.now(), seq), nil
}
