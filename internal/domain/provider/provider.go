package provider

import (
	"context"

	"github.com/wekeepgrowing/paylink-sync/internal/domain/entity"
	apperrors "github.com/wekeepgrowing/paylink-sync/pkg/errors"
)

// BillingGateway creates the billing objects a contact needs to pay.
type BillingGateway interface {
	// CreateCustomer creates a new customer and returns its id.
	CreateCustomer(ctx context.Context, contact entity.Contact) (string, error)

	// CreatePrice creates a one-off price for the contact's overdue amount.
	CreatePrice(ctx context.Context, contact entity.Contact) (string, error)

	// UpsertPaymentLink points the contact's payment link at priceID,
	// creating the link when the contact has none, and returns its URL.
	UpsertPaymentLink(ctx context.Context, priceID string, contact entity.Contact) (string, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// ProviderType represents the type of billing provider
type ProviderType string

const (
	ProviderTypeStripe ProviderType = "stripe"
)

// ErrMissingAmount is returned by CreatePrice when the contact has no
// overdue amount.
var ErrMissingAmount = apperrors.NewAppError(apperrors.ErrInvalidArgument, "missing overdue amount", nil)

// ProviderError carries the provider's own error code.
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
