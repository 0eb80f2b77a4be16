package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// The unprefixed names are the ones the legacy deployment used and stay
// accepted as fallbacks.
var (
	envAirtableAPIKey = []string{"AIRTABLE_API_KEY", "API_KEY"}
	envAirtableBase   = []string{"AIRTABLE_BASE_ID", "BASE_ID"}
	envAirtableTable  = []string{"AIRTABLE_CONTACTS_TABLE_ID", "CONTACTS_TABLE_ID"}
	envStripeKey      = []string{"STRIPE_SECRET_KEY", "STRIPE_API_KEY"}
)

func lookup(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func applyEnv(cfg *Config) error {
	bindings := []struct {
		keys   []string
		target *string
	}{
		{envAirtableAPIKey, &cfg.Airtable.APIKey},
		{envAirtableBase, &cfg.Airtable.BaseID},
		{envAirtableTable, &cfg.Airtable.TableID},
		{[]string{"AIRTABLE_BASE_URL"}, &cfg.Airtable.BaseURL},
		{envStripeKey, &cfg.Stripe.SecretKey},
		{[]string{"STRIPE_PRODUCT_ID"}, &cfg.Stripe.ProductID},
		{[]string{"STRIPE_SUCCESS_URL"}, &cfg.Stripe.SuccessURL},
		{[]string{"STRIPE_API_URL"}, &cfg.Stripe.APIURL},
		{[]string{"BUSINESS_TIMEZONE"}, &cfg.Scheduler.Timezone},
		{[]string{"HTTP_HOST"}, &cfg.Server.HTTP.Host},
		{[]string{"LOG_LEVEL"}, &cfg.Log.Level},
		{[]string{"LOG_FORMAT"}, &cfg.Log.Format},
		{[]string{"APP_ENV"}, &cfg.Service.Environment},
	}
	for _, b := range bindings {
		if v, ok := lookup(b.keys...); ok {
			*b.target = v
		}
	}

	if v, ok := lookup("HTTP_PORT", "PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_PORT %q: %w", v, err)
		}
		cfg.Server.HTTP.Port = port
	}

	if v, ok := lookup("POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid POLL_INTERVAL %q: %w", v, err)
		}
		cfg.Scheduler.Interval = d
	}

	if v, ok := lookup("STRIPE_IDEMPOTENCY"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid STRIPE_IDEMPOTENCY %q: %w", v, err)
		}
		cfg.Stripe.Idempotency = enabled
	}

	return nil
}
