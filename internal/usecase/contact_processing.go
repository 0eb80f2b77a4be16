package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/paylink-sync/internal/domain/entity"
	"github.com/wekeepgrowing/paylink-sync/internal/domain/provider"
	"github.com/wekeepgrowing/paylink-sync/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/paylink-sync/pkg/errors"
)

// Stage names the step at which a contact stopped.
type Stage string

const (
	StageCustomer    Stage = "customer"
	StagePrice       Stage = "price"
	StagePaymentLink Stage = "payment_link"
	StageWriteBack   Stage = "write_back"
)

// PassResult summarises one pass over the eligible contacts.
type PassResult struct {
	PassID      string
	FetchFailed bool
	Eligible    int
	Recorded    int
	Failed      map[Stage]int
	// FailedCodes counts failures by error code, e.g. UPSTREAM.
	FailedCodes map[string]int
}

// ContactProcessingService bills eligible contacts and records the payment
// link on each of them. Contacts are handled one at a time. A failure at
// any step skips that contact and leaves its record untouched, so the next
// pass picks it up again. Billing objects created before the failing step
// are not rolled back.
type ContactProcessingService struct {
	contacts       repository.ContactRepository
	gateway        provider.BillingGateway
	portalLoginURL string
	logger         *zap.Logger
}

// NewContactProcessingService creates the pipeline. portalLoginURL is
// written to every recorded contact.
func NewContactProcessingService(
	contacts repository.ContactRepository,
	gateway provider.BillingGateway,
	portalLoginURL string,
	logger *zap.Logger,
) *ContactProcessingService {
	return &ContactProcessingService{
		contacts:       contacts,
		gateway:        gateway,
		portalLoginURL: portalLoginURL,
		logger:         logger,
	}
}

// RunPass fetches the eligible contacts and processes each of them. It
// never returns an error; failures are logged and counted in the result.
func (s *ContactProcessingService) RunPass(ctx context.Context) PassResult {
	result := PassResult{
		PassID:      uuid.NewString(),
		Failed:      make(map[Stage]int),
		FailedCodes: make(map[string]int),
	}
	logger := s.logger.With(zap.String("pass_id", result.PassID))

	contacts, err := s.contacts.FetchEligibleContacts(ctx)
	if err != nil {
		result.FetchFailed = true
		logger.Warn("Skipping pass, contacts could not be fetched", zap.Error(err))
		return result
	}
	result.Eligible = len(contacts)
	if len(contacts) == 0 {
		logger.Debug("No eligible contacts")
		return result
	}

	for _, contact := range contacts {
		if ctx.Err() != nil {
			logger.Warn("Pass interrupted", zap.Error(ctx.Err()))
			break
		}

		stage, err := s.processContact(ctx, logger, contact)
		if err != nil {
			result.Failed[stage]++
			result.FailedCodes[apperrors.CodeOf(err)]++
			continue
		}
		result.Recorded++
	}

	logger.Info("Pass finished",
		zap.Int("eligible", result.Eligible),
		zap.Int("recorded", result.Recorded),
		zap.Any("failed", result.Failed),
		zap.Any("failed_codes", result.FailedCodes))
	return result
}

// processContact runs customer, price, payment link and write-back for one
// contact. On failure it returns the stage that failed and the error
// wrapped with that stage.
func (s *ContactProcessingService) processContact(ctx context.Context, logger *zap.Logger, contact entity.Contact) (Stage, error) {
	logger = logger.With(zap.String("record_id", contact.ID))
	logger.Info("Processing contact", zap.String("name", contact.Name))

	customerID, err := s.gateway.CreateCustomer(ctx, contact)
	if err != nil {
		err = apperrors.Wrap(err, "create customer")
		apperrors.LogError(logger, err, "Skipping contact, customer creation failed")
		return StageCustomer, err
	}

	priceID, err := s.gateway.CreatePrice(ctx, contact)
	if err != nil {
		err = apperrors.Wrap(err, "create price")
		if apperrors.Is(err, provider.ErrMissingAmount) {
			logger.Warn("Skipping contact, no overdue amount",
				zap.String("customer_id", customerID),
				zap.String("error_code", apperrors.CodeOf(err)))
			return StagePrice, err
		}
		apperrors.LogError(logger, err, "Skipping contact, price creation failed",
			zap.String("customer_id", customerID))
		return StagePrice, err
	}

	linkURL, err := s.gateway.UpsertPaymentLink(ctx, priceID, contact)
	if err != nil {
		err = apperrors.Wrap(err, "upsert payment link")
		apperrors.LogError(logger, err, "Skipping contact, payment link failed",
			zap.String("customer_id", customerID),
			zap.String("price_id", priceID))
		return StagePaymentLink, err
	}

	update := entity.ContactUpdate{
		PaymentLinkURL: linkURL,
		Process:        entity.ProcessStart,
		PortalLoginURL: s.portalLoginURL,
		CustomerID:     customerID,
	}
	if err := s.contacts.UpdateContact(ctx, contact.ID, update); err != nil {
		err = apperrors.Wrap(err, "record payment link")
		// The link exists in Stripe but the record still reads as new.
		apperrors.LogError(logger, err, "Payment link created but not recorded",
			zap.String("customer_id", customerID),
			zap.String("payment_link", linkURL))
		return StageWriteBack, err
	}

	logger.Info("Contact recorded",
		zap.String("customer_id", customerID),
		zap.String("payment_link", linkURL))
	return "", nil
}
