package partner

import (
	"strings"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClientType represents which side of the business a client trades on
type ClientType string

const (
	ClientTypeCustomer ClientType = "customer"
	ClientTypeSupplier ClientType = "supplier"
	ClientTypeBoth     ClientType = "both"
)

// IsValid returns true if the client type is valid
func (t ClientType) IsValid() bool {
	switch t {
	case ClientTypeCustomer, ClientTypeSupplier, ClientTypeBoth:
		return true
	}
	return false
}

// PartyRole is the role a client plays in one ledger posting.
// A client of type "both" can be a customer in one posting and a supplier in the next.
type PartyRole string

const (
	RoleCustomer PartyRole = "customer"
	RoleSupplier PartyRole = "supplier"
)

// IsValid returns true if the role is valid
func (r PartyRole) IsValid() bool {
	return r == RoleCustomer || r == RoleSupplier
}

// Client is a customer, supplier or both.
// Balance is positive when the client owes us (customer receivable) or we owe
// the client (supplier payable). It is a cache of the signed sum of the
// client's ledger postings and is only changed by the ledger poster.
type Client struct {
	shared.BaseEntity
	Code       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name       string          `gorm:"type:varchar(200);not null"`
	ClientType ClientType      `gorm:"column:client_type;type:varchar(20);not null"`
	Phone      string          `gorm:"type:varchar(50)"`
	Email      string          `gorm:"type:varchar(200)"`
	Address    string          `gorm:"type:text"`
	Balance    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client with a zero balance
func NewClient(code, name string, clientType ClientType) (*Client, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("client code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("client name is required")
	}
	if !clientType.IsValid() {
		return nil, shared.NewValidationError("invalid client type %q", clientType)
	}
	return &Client{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(code),
		Name:       name,
		ClientType: clientType,
		Balance:    decimal.Zero,
	}, nil
}

// CanActAs reports whether the client may take the given role
func (c *Client) CanActAs(role PartyRole) bool {
	switch c.ClientType {
	case ClientTypeBoth:
		return role.IsValid()
	case ClientTypeCustomer:
		return role == RoleCustomer
	case ClientTypeSupplier:
		return role == RoleSupplier
	}
	return false
}

// ResolveRole picks the role for a manual posting. An explicit role must be
// allowed for the client; without one, customers and "both" clients default
// to customer and suppliers to supplier.
func (c *Client) ResolveRole(requested PartyRole) (PartyRole, error) {
	if requested != "" {
		if !c.CanActAs(requested) {
			return "", shared.NewValidationError("client %s cannot act as %s", c.Code, requested)
		}
		return requested, nil
	}
	if c.ClientType == ClientTypeSupplier {
		return RoleSupplier, nil
	}
	return RoleCustomer, nil
}
