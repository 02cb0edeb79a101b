package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/fxdash/internal/config"
	"github.com/studiowebux/fxdash/internal/types"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// DefaultConfig returns a backend seeded with one admin account and the
// sample providers and subscribers of the dashboard
func DefaultConfig() *Config {
	return &Config{
		Port:    8080,
		Host:    "localhost",
		Logging: true,
		Users: []SeedUser{
			{ID: "1", Email: "admin@example.com", Name: "Admin", Password: "password123"},
		},
		Providers: []types.Provider{
			{
				ID: "10", Name: "ExchangeRate-API", APIKey: "sk_live_exchangerate_01",
				APIURL: "https://v6.exchangerate-api.com/v6", Status: types.StatusActive,
				RateLimit: 1500, Timeout: 30, LastSync: "2025-11-26 14:30:00", RequestCount: 1234,
			},
			{
				ID: "11", Name: "CurrencyLayer", APIKey: "sk_live_currencylayer_02",
				APIURL: "https://api.currencylayer.com", Status: types.StatusActive,
				RateLimit: 1000, Timeout: 20, LastSync: "2025-11-26 14:25:00", RequestCount: 856,
			},
			{
				ID: "12", Name: "Fixer.io", APIKey: "sk_live_fixer_000003",
				APIURL: "https://data.fixer.io/api", Status: types.StatusInactive,
				RateLimit: 100, Timeout: 30, LastSync: "2025-11-25 10:15:00", RequestCount: 423,
			},
		},
		Subscribers: []types.Subscriber{
			{ID: "20", Name: "Treasury Desk", APIKey: "sub_live_treasury_01", Status: types.StatusActive, LastSync: "2025-11-26 14:31:00", RequestCount: 5120},
			{ID: "21", Name: "Checkout Service", APIKey: "sub_live_checkout_02", Status: types.StatusActive, LastSync: "2025-11-26 14:29:00", RequestCount: 9342},
			{ID: "22", Name: "Reporting Batch", APIKey: "sub_live_reporting_03", Status: types.StatusInactive, LastSync: "2025-11-20 02:00:00", RequestCount: 77},
		},
	}
}

// LoadConfig loads a mock configuration from a file. Sections missing from
// the file keep the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Seed sections are decoded into empty slices so file entries never
	// inherit fields from the default entries at the same index.
	cfg := DefaultConfig()
	defaults := DefaultConfig()
	cfg.Users, cfg.Providers, cfg.Subscribers = nil, nil, nil

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if cfg.Users == nil {
		cfg.Users = defaults.Users
	}
	if cfg.Providers == nil {
		cfg.Providers = defaults.Providers
	}
	if cfg.Subscribers == nil {
		cfg.Subscribers = defaults.Subscribers
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// validateConfig validates the mock configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Users) == 0 {
		return fmt.Errorf("no users defined")
	}

	emails := make(map[string]bool)
	for i, u := range cfg.Users {
		if u.Email == "" {
			return fmt.Errorf("user %d: email is required", i)
		}
		if u.Password == "" {
			return fmt.Errorf("user %d: password is required", i)
		}
		key := strings.ToLower(u.Email)
		if emails[key] {
			return fmt.Errorf("user %d: duplicate email %s", i, u.Email)
		}
		emails[key] = true
	}

	for i, p := range cfg.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider %d: name is required", i)
		}
	}
	for i, s := range cfg.Subscribers {
		if s.Name == "" {
			return fmt.Errorf("subscriber %d: name is required", i)
		}
	}

	if _, err := cfg.accessTTL(); err != nil {
		return err
	}
	if _, err := cfg.refreshTTL(); err != nil {
		return err
	}

	return nil
}

func (c *Config) accessTTL() (time.Duration, error) {
	return parseTTL("accessTokenTTL", c.AccessTokenTTL, defaultAccessTokenTTL)
}

func (c *Config) refreshTTL() (time.Duration, error) {
	return parseTTL("refreshTokenTTL", c.RefreshTokenTTL, defaultRefreshTokenTTL)
}

func parseTTL(field, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return d, nil
}

// SaveConfig saves a mock configuration to a file
func SaveConfig(cfg *Config, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := os.WriteFile(path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
