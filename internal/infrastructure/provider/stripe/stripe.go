package stripe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/paylink-sync/internal/config"
	"github.com/wekeepgrowing/paylink-sync/internal/domain/entity"
	"github.com/wekeepgrowing/paylink-sync/internal/domain/provider"
	apperrors "github.com/wekeepgrowing/paylink-sync/pkg/errors"
)

// StripeProvider implements provider.BillingGateway with the Stripe API.
type StripeProvider struct {
	api    *client.API
	cfg    config.StripeConfig
	logger *zap.Logger
}

var _ provider.BillingGateway = (*StripeProvider)(nil)

// NewStripeProvider creates a Stripe client with its own backends so the
// process never touches the package-level stripe.Key.
func NewStripeProvider(cfg config.StripeConfig, logger *zap.Logger) *StripeProvider {
	logger = logger.With(zap.String("component", "stripe"))

	newBackend := func(backend stripe.SupportedBackend) stripe.Backend {
		backendConfig := &stripe.BackendConfig{
			HTTPClient:        &http.Client{Timeout: cfg.Timeout},
			LeveledLogger:     logger.Sugar(),
			MaxNetworkRetries: stripe.Int64(0),
		}
		if cfg.APIURL != "" {
			backendConfig.URL = stripe.String(cfg.APIURL)
		}
		return stripe.GetBackendWithConfig(backend, backendConfig)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     newBackend(stripe.APIBackend),
		Connect: newBackend(stripe.ConnectBackend),
		Uploads: newBackend(stripe.UploadsBackend),
	})

	return &StripeProvider{
		api:    api,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProviderName returns the provider name
func (s *StripeProvider) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

// CreateCustomer creates a customer carrying the debitor name and the
// client reference as metadata.
func (s *StripeProvider) CreateCustomer(ctx context.Context, contact entity.Contact) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Name:   optionalString(contact.Name),
		Email:  optionalString(contact.Email),
	}
	params.AddMetadata("debitor", contact.DebitorName)
	params.AddMetadata("ref_id", contact.ClientRefID)
	s.setIdempotencyKey(&params.Params, contact.ID, "customer",
		contact.Name, contact.Email, contact.DebitorName, contact.ClientRefID)

	customer, err := s.api.Customers.New(params)
	if err != nil {
		return "", wrapStripeError("create customer", err)
	}

	s.logger.Info("Created Stripe customer",
		zap.String("customer_id", customer.ID),
		zap.String("record_id", contact.ID),
		zap.String("name", contact.Name))
	return customer.ID, nil
}

// CreatePrice creates a one-off price for the overdue amount.
func (s *StripeProvider) CreatePrice(ctx context.Context, contact entity.Contact) (string, error) {
	if contact.OverdueAmount == nil {
		return "", provider.ErrMissingAmount
	}

	amount, err := MinorUnits(*contact.OverdueAmount)
	if err != nil {
		return "", err
	}

	params := &stripe.PriceParams{
		Params:     stripe.Params{Context: ctx},
		UnitAmount: stripe.Int64(amount),
		Currency:   stripe.String(s.cfg.Currency),
		Product:    stripe.String(s.cfg.ProductID),
	}
	s.setIdempotencyKey(&params.Params, contact.ID, "price",
		fmt.Sprint(amount), s.cfg.Currency, s.cfg.ProductID)

	price, err := s.api.Prices.New(params)
	if err != nil {
		return "", wrapStripeError("create price", err)
	}

	s.logger.Info("Created Stripe price",
		zap.String("price_id", price.ID),
		zap.Int64("unit_amount", amount),
		zap.String("record_id", contact.ID))
	return price.ID, nil
}

// UpsertPaymentLink modifies the contact's existing payment link when it
// has one and creates a new link otherwise. Both paths send the same
// settings.
func (s *StripeProvider) UpsertPaymentLink(ctx context.Context, priceID string, contact entity.Contact) (string, error) {
	params := s.paymentLinkParams(ctx, priceID, contact)

	if contact.PaymentLink != "" {
		link, err := s.api.PaymentLinks.Update(contact.PaymentLink, params)
		if err != nil {
			return "", wrapStripeError("update payment link", err)
		}
		s.logger.Info("Updated Stripe payment link",
			zap.String("payment_link_id", link.ID),
			zap.String("url", link.URL),
			zap.String("record_id", contact.ID))
		return link.URL, nil
	}

	s.setIdempotencyKey(&params.Params, contact.ID, "payment_link", s.paymentLinkInputs(priceID, contact)...)

	link, err := s.api.PaymentLinks.New(params)
	if err != nil {
		return "", wrapStripeError("create payment link", err)
	}
	s.logger.Info("Created Stripe payment link",
		zap.String("payment_link_id", link.ID),
		zap.String("url", link.URL),
		zap.String("record_id", contact.ID))
	return link.URL, nil
}

func (s *StripeProvider) paymentLinkParams(ctx context.Context, priceID string, contact entity.Contact) *stripe.PaymentLinkParams {
	invoiceMetadata := map[string]string{
		"Customer Email": contact.Email,
		"Customer ID":    contact.ClientRefID,
	}
	if contact.InvoiceID != "" {
		invoiceMetadata["Invoice ID"] = contact.InvoiceID
	}

	params := &stripe.PaymentLinkParams{
		Params: stripe.Params{Context: ctx},
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		PaymentMethodTypes:  stripe.StringSlice(s.cfg.PaymentMethodTypes),
		AllowPromotionCodes: stripe.Bool(true),
		InvoiceCreation: &stripe.PaymentLinkInvoiceCreationParams{
			Enabled: stripe.Bool(true),
			InvoiceData: &stripe.PaymentLinkInvoiceCreationInvoiceDataParams{
				Description: stripe.String("Invoice for " + contact.Name),
				Metadata:    invoiceMetadata,
			},
		},
		ShippingAddressCollection: &stripe.PaymentLinkShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(s.cfg.ShippingCountries),
		},
		BillingAddressCollection: stripe.String(string(stripe.PaymentLinkBillingAddressCollectionRequired)),
		PhoneNumberCollection: &stripe.PaymentLinkPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		AfterCompletion: &stripe.PaymentLinkAfterCompletionParams{
			Type: stripe.String(string(stripe.PaymentLinkAfterCompletionTypeRedirect)),
			Redirect: &stripe.PaymentLinkAfterCompletionRedirectParams{
				URL: stripe.String(s.cfg.SuccessURL),
			},
		},
	}
	params.AddMetadata("customer_email", contact.Email)
	params.AddMetadata("customer_id", contact.ClientRefID)
	params.AddMetadata("customer_name", contact.Name)

	return params
}

// paymentLinkInputs lists every value paymentLinkParams sends, in a fixed
// order.
func (s *StripeProvider) paymentLinkInputs(priceID string, contact entity.Contact) []string {
	return []string{
		priceID,
		contact.Name,
		contact.Email,
		contact.ClientRefID,
		contact.InvoiceID,
		s.cfg.SuccessURL,
		strings.Join(s.cfg.PaymentMethodTypes, ","),
		strings.Join(s.cfg.ShippingCountries, ","),
	}
}

// setIdempotencyKey derives the key from the record, the step and the
// request inputs. A retried pass with unchanged inputs gets the object
// Stripe created the first time; changed inputs get a new key instead of
// an idempotency conflict.
func (s *StripeProvider) setIdempotencyKey(params *stripe.Params, recordID, step string, inputs ...string) {
	if !s.cfg.Idempotency || recordID == "" {
		return
	}
	params.SetIdempotencyKey(IdempotencyKey(recordID, step, inputs...))
}

// IdempotencyKey builds the Stripe idempotency key for one pipeline step.
func IdempotencyKey(recordID, step string, inputs ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(inputs, "\x1f")))
	return fmt.Sprintf("paylink-sync:%s:%s:%s", recordID, step, hex.EncodeToString(sum[:8]))
}

// MinorUnits converts a currency amount to cents, rounding half away from
// zero. Non-positive amounts are rejected.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, apperrors.NewAppError(apperrors.ErrInvalidArgument,
			fmt.Sprintf("overdue amount must be positive, got %s", amount.String()), nil)
	}
	return amount.Shift(2).Round(0).IntPart(), nil
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return stripe.String(v)
}

func wrapStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		message := stripeErr.Msg
		if message == "" {
			message = stripeErr.Error()
		}
		return apperrors.NewAppError(apperrors.ErrUpstream, "stripe "+op, &provider.ProviderError{
			Code:    string(stripeErr.Code),
			Message: message,
			Details: stripeErr.RequestID,
		})
	}
	return apperrors.NewAppError(apperrors.ErrUpstream, "stripe "+op, err)
}
