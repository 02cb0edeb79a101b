package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the permission mode for token and settings files (owner read/write only)
	FilePermissions = 0600
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultAPIURL matches the backend's default development address
	DefaultAPIURL = "http://localhost:8080"
	// DefaultItemsPerPage is the table page size when none is configured
	DefaultItemsPerPage = 10
	// DefaultRequestTimeout bounds every backend call
	DefaultRequestTimeout = 30 * time.Second

	// EnvAPIURL overrides the configured API URL
	EnvAPIURL = "FXDASH_API_URL"

	localSettingsFile = ".fxdash.yaml"
)

var (
	// ConfigDir is the global configuration directory (~/.fxdash)
	ConfigDir string

	// TokensFile holds the persisted token record
	TokensFile string

	// UserFile holds the persisted identity record
	UserFile string

	// DatabasePath is the SQLite database file for the activity log
	DatabasePath string

	// LogFile receives structured logs while the TUI owns the terminal
	LogFile string

	// SettingsFile is the global settings file
	SettingsFile string
)

// Settings holds user-tunable options loaded from YAML
type Settings struct {
	APIURL         string        `yaml:"apiUrl"`
	ItemsPerPage   int           `yaml:"itemsPerPage"`
	LogLevel       string        `yaml:"logLevel"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// DefaultSettings returns the settings used when no file overrides them
func DefaultSettings() Settings {
	return Settings{
		APIURL:         DefaultAPIURL,
		ItemsPerPage:   DefaultItemsPerPage,
		LogLevel:       "info",
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Initialize sets up the configuration directory and file paths
// It creates ~/.fxdash/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".fxdash"))
}

// InitializeAt sets up the configuration rooted at dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	TokensFile = filepath.Join(ConfigDir, "auth_tokens.json")
	UserFile = filepath.Join(ConfigDir, "auth_user.json")
	DatabasePath = filepath.Join(ConfigDir, "fxdash.db")
	LogFile = filepath.Join(ConfigDir, "fxdash.log")
	SettingsFile = filepath.Join(ConfigDir, "settings.yaml")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create default settings file if it doesn't exist
	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		data, err := yaml.Marshal(DefaultSettings())
		if err != nil {
			return fmt.Errorf("failed to marshal default settings: %w", err)
		}
		if err := os.WriteFile(SettingsFile, data, FilePermissions); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// GetSettingsFilePath returns the settings file path (local or global)
func GetSettingsFilePath() string {
	if _, err := os.Stat(localSettingsFile); err == nil {
		return localSettingsFile
	}
	return SettingsFile
}

// LoadSettings reads settings from path, filling unset fields with defaults.
// A missing file yields the defaults. FXDASH_API_URL wins over the file.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err == nil {
		var fromFile Settings
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return settings, fmt.Errorf("failed to parse settings file: %w", err)
		}
		settings.merge(fromFile)
	}

	if env := os.Getenv(EnvAPIURL); env != "" {
		settings.APIURL = env
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// Load loads settings from the resolved settings path
func Load() (Settings, error) {
	return LoadSettings(GetSettingsFilePath())
}

// Validate checks settings values for obvious mistakes
func (s Settings) Validate() error {
	if s.ItemsPerPage <= 0 {
		return fmt.Errorf("itemsPerPage must be positive, got %d", s.ItemsPerPage)
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("requestTimeout must be positive, got %s", s.RequestTimeout)
	}
	return nil
}

func (s *Settings) merge(o Settings) {
	if o.APIURL != "" {
		s.APIURL = o.APIURL
	}
	if o.ItemsPerPage != 0 {
		s.ItemsPerPage = o.ItemsPerPage
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
	if o.RequestTimeout != 0 {
		s.RequestTimeout = o.RequestTimeout
	}
}
