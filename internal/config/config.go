package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/wekeepgrowing/paylink-sync/pkg/logger"
)

const defaultConfigPath = "./configs/paylink.yaml"

type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Server    ServerConfig    `yaml:"server"`
	Log       logger.Config   `yaml:"log"`
	Airtable  AirtableConfig  `yaml:"airtable"`
	Stripe    StripeConfig    `yaml:"stripe"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// LoadConfig loads .env (if any), then the YAML file named by CONFIG_PATH,
// then environment overrides, and validates the result.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	return Load(configPath)
}

// Load reads the config file at path on top of the defaults. A missing file
// is fine as long as the environment supplies the required values.
func Load(path string) (*Config, error) {
	cfg := Default()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Scheduler.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "paylink-sync",
			Environment: "production",
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{Host: "0.0.0.0", Port: 5000},
		},
		Log: logger.Config{Level: "info", Format: "json", Output: "stdout"},
		Airtable: AirtableConfig{
			BaseURL: "https://api.airtable.com",
			Timeout: defaultHTTPTimeout,
		},
		Stripe: StripeConfig{
			Currency:           "aud",
			ProductID:          "prod_QbFLLPk2A67lJi",
			SuccessURL:         "https://example.com/success",
			PortalLoginURL:     "https://billing.stripe.com/p/login/fZe5o106saRx6ZO3cc",
			PaymentMethodTypes: []string{"card", "afterpay_clearpay", "link", "zip"},
			ShippingCountries:  []string{"AU", "US", "CA", "GB", "NZ"},
			Idempotency:        true,
			Timeout:            defaultHTTPTimeout,
		},
		Scheduler: SchedulerConfig{
			Timezone:  "Australia/Brisbane",
			StartHour: 7,
			EndHour:   19,
			Interval:  defaultPollInterval,
		},
	}
}
