package config

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	defaultHTTPTimeout  = 30 * time.Second
	defaultPollInterval = 30 * time.Second
)

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// AirtableConfig points at the contacts table.
type AirtableConfig struct {
	APIKey  string        `yaml:"api_key" validate:"required"`
	BaseID  string        `yaml:"base_id" validate:"required"`
	TableID string        `yaml:"contacts_table_id" validate:"required"`
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// StripeConfig holds the secret key and the fixed settings applied to every
// price and payment link.
type StripeConfig struct {
	SecretKey          string        `yaml:"secret_key" validate:"required"`
	Currency           string        `yaml:"currency" validate:"len=3"`
	ProductID          string        `yaml:"product_id" validate:"required"`
	SuccessURL         string        `yaml:"success_url" validate:"required,url"`
	PortalLoginURL     string        `yaml:"portal_login_url" validate:"required,url"`
	PaymentMethodTypes []string      `yaml:"payment_method_types" validate:"min=1"`
	ShippingCountries  []string      `yaml:"shipping_countries" validate:"dive,len=2"`
	Idempotency        bool          `yaml:"idempotency"`
	Timeout            time.Duration `yaml:"timeout" validate:"gt=0"`
	// APIURL overrides the Stripe API endpoint. Empty means api.stripe.com.
	APIURL string `yaml:"api_url" validate:"omitempty,url"`
}

// SchedulerConfig defines business hours and the polling interval.
type SchedulerConfig struct {
	Timezone  string        `yaml:"timezone" validate:"required"`
	StartHour int           `yaml:"start_hour" validate:"min=0,max=23"`
	EndHour   int           `yaml:"end_hour" validate:"gtfield=StartHour,max=24"`
	Interval  time.Duration `yaml:"interval" validate:"gt=0"`
}

// Location resolves Timezone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
