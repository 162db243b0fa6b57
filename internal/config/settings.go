package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/handiism/chmirad/internal/cadence"
	"github.com/handiism/chmirad/internal/chmi"
	"github.com/handiism/chmirad/internal/http"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables read by LoadFromEnv.
const EnvPrefix = "CHMIRAD_"

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	CacheDirectory         string `json:"cache_directory" yaml:"cache_directory"`
	Product                string `json:"product" yaml:"product"`
	StepMinutes            int    `json:"step_minutes" yaml:"step_minutes"`
	MaxConcurrentDownloads int    `json:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`

	// Archive access
	BaseURL               string  `json:"base_url" yaml:"base_url"`
	RequestTimeoutSeconds float64 `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	RequestsPerSecond     float64 `json:"requests_per_second" yaml:"requests_per_second"` // 0 = unlimited
	RequestBurst          int     `json:"request_burst" yaml:"request_burst"`
	UserAgent             string  `json:"user_agent" yaml:"user_agent"`

	// Observability
	LogLevel    string `json:"log_level" yaml:"log_level"` // trace, debug, info, warn, error
	MetricsFile string `json:"metrics_file" yaml:"metrics_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		CacheDirectory:         filepath.Join(homeDir, "chmi_data"),
		Product:                chmi.DefaultProduct,
		StepMinutes:            cadence.DefaultStepMinutes,
		MaxConcurrentDownloads: 4,

		BaseURL:               chmi.DefaultBaseURL,
		RequestTimeoutSeconds: 60,
		RequestsPerSecond:     0,
		RequestBurst:          1,
		UserAgent:             http.DefaultUserAgent,

		LogLevel: "info",
	}
}

// Load reads settings from a JSON or YAML file. The format follows the file
// extension (.yaml and .yml are YAML, anything else JSON). Fields absent from
// the file keep their default values; a missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a file, as YAML or JSON depending on the extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadFromEnv applies overrides from environment variables.
// Environment variables use the CHMIRAD_ prefix, e.g. CHMIRAD_PRODUCT.
func (s *Settings) LoadFromEnv() error {
	if v := getenv("CACHE_DIRECTORY"); v != "" {
		s.CacheDirectory = v
	}
	if v := getenv("PRODUCT"); v != "" {
		s.Product = v
	}
	if v := getenv("STEP_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sSTEP_MINUTES: %w", EnvPrefix, err)
		}
		s.StepMinutes = n
	}
	if v := getenv("MAX_CONCURRENT_DOWNLOADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sMAX_CONCURRENT_DOWNLOADS: %w", EnvPrefix, err)
		}
		s.MaxConcurrentDownloads = n
	}
	if v := getenv("BASE_URL"); v != "" {
		s.BaseURL = v
	}
	if v := getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %sREQUEST_TIMEOUT_SECONDS: %w", EnvPrefix, err)
		}
		s.RequestTimeoutSeconds = f
	}
	if v := getenv("REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %sREQUESTS_PER_SECOND: %w", EnvPrefix, err)
		}
		s.RequestsPerSecond = f
	}
	if v := getenv("REQUEST_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sREQUEST_BURST: %w", EnvPrefix, err)
		}
		s.RequestBurst = n
	}
	if v := getenv("USER_AGENT"); v != "" {
		s.UserAgent = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := getenv("METRICS_FILE"); v != "" {
		s.MetricsFile = v
	}

	return nil
}

// Validate reports the first unusable value. Whether Product names a known
// descriptor is checked by the session, which owns the table.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.CacheDirectory) == "" {
		return errors.New("config: cache_directory is required")
	}
	if strings.TrimSpace(s.Product) == "" {
		return errors.New("config: product is required")
	}
	if s.StepMinutes <= 0 {
		return errors.New("config: step_minutes must be positive")
	}
	if s.MaxConcurrentDownloads <= 0 {
		return errors.New("config: max_concurrent_downloads must be positive")
	}
	if s.RequestTimeoutSeconds <= 0 {
		return errors.New("config: request_timeout_seconds must be positive")
	}
	if s.RequestsPerSecond < 0 {
		return errors.New("config: requests_per_second must not be negative")
	}
	if s.RequestBurst <= 0 {
		return errors.New("config: request_burst must be positive")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("config: base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: base_url %q must be an absolute http(s) URL", s.BaseURL)
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	return nil
}

// ToHTTPOptions converts settings to transport options.
func (s *Settings) ToHTTPOptions() http.Options {
	return http.Options{
		Timeout:           time.Duration(s.RequestTimeoutSeconds * float64(time.Second)),
		UserAgent:         s.UserAgent,
		RequestsPerSecond: s.RequestsPerSecond,
		Burst:             s.RequestBurst,
	}
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
