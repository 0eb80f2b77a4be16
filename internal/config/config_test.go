package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paylink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"AIRTABLE_BASE_URL", "STRIPE_PRODUCT_ID", "STRIPE_SUCCESS_URL", "STRIPE_API_URL",
		"BUSINESS_TIMEZONE", "HTTP_HOST", "HTTP_PORT", "PORT", "LOG_LEVEL", "LOG_FORMAT",
		"APP_ENV", "POLL_INTERVAL", "STRIPE_IDEMPOTENCY",
	}
	for _, group := range [][]string{envAirtableAPIKey, envAirtableBase, envAirtableTable, envStripeKey} {
		keys = append(keys, group...)
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
airtable:
  api_key: pat123
  base_id: appBase
  contacts_table_id: tblContacts
stripe:
  secret_key: sk_test_123
  idempotency: false
scheduler:
  timezone: Australia/Sydney
  interval: 45s
server:
  http:
    port: 8080
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pat123", cfg.Airtable.APIKey)
	assert.Equal(t, "https://api.airtable.com", cfg.Airtable.BaseURL)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.False(t, cfg.Stripe.Idempotency)
	assert.Equal(t, "aud", cfg.Stripe.Currency)
	assert.Equal(t, []string{"card", "afterpay_clearpay", "link", "zip"}, cfg.Stripe.PaymentMethodTypes)
	assert.Equal(t, "Australia/Sydney", cfg.Scheduler.Timezone)
	assert.Equal(t, 45*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, 7, cfg.Scheduler.StartHour)
	assert.Equal(t, 19, cfg.Scheduler.EndHour)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
}

func TestLoad_EnvOnlyWithLegacyNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "pat-legacy")
	t.Setenv("BASE_ID", "appLegacy")
	t.Setenv("CONTACTS_TABLE_ID", "tblLegacy")
	t.Setenv("STRIPE_API_KEY", "sk_legacy")
	t.Setenv("PORT", "5001")
	t.Setenv("POLL_INTERVAL", "10s")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "pat-legacy", cfg.Airtable.APIKey)
	assert.Equal(t, "appLegacy", cfg.Airtable.BaseID)
	assert.Equal(t, "tblLegacy", cfg.Airtable.TableID)
	assert.Equal(t, "sk_legacy", cfg.Stripe.SecretKey)
	assert.Equal(t, 5001, cfg.Server.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.Interval)
	assert.True(t, cfg.Stripe.Idempotency)
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("AIRTABLE_API_KEY", "pat-new")
	t.Setenv("API_KEY", "pat-old")
	t.Setenv("BASE_ID", "app")
	t.Setenv("CONTACTS_TABLE_ID", "tbl")
	t.Setenv("STRIPE_SECRET_KEY", "sk")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "pat-new", cfg.Airtable.APIKey)
}

func TestLoad_MissingRequired(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIKey")
}

func TestLoad_InvalidValues(t *testing.T) {
	airtable := "airtable: {api_key: k, base_id: b, contacts_table_id: t}\n"
	cases := map[string]string{
		"bad timezone":   airtable + "stripe: {secret_key: s}\nscheduler: {timezone: Mars/Olympus}\n",
		"inverted hours": airtable + "stripe: {secret_key: s}\nscheduler: {start_hour: 19, end_hour: 7}\n",
		"bad currency":   airtable + "stripe: {secret_key: s, currency: dollars}\n",
		"bad yaml":       "airtable: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "eighty")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "HTTP_PORT")
}
