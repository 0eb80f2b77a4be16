package provider

import (
	"fmt"

	"github.com/wekeepgrowing/paylink-sync/internal/config"
	"github.com/wekeepgrowing/paylink-sync/internal/domain/provider"
	stripeProvider "github.com/wekeepgrowing/paylink-sync/internal/infrastructure/provider/stripe"
	"go.uber.org/zap"
)

// Factory creates billing gateways based on the provider type
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// GetProvider returns a billing gateway based on the provider type
func (f *Factory) GetProvider(providerType provider.ProviderType) (provider.BillingGateway, error) {
	switch providerType {
	case provider.ProviderTypeStripe:
		return f.createStripeProvider()
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

func (f *Factory) createStripeProvider() (provider.BillingGateway, error) {
	if f.config.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("Stripe secret key not configured")
	}

	return stripeProvider.NewStripeProvider(f.config.Stripe, f.logger), nil
}
