package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile           = ".env"
	defaultPort              = "8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultCatalogTimeout    = 23 * time.Second
	defaultMarketplaceCodes  = "11"
	defaultEnrichmentWorkers = 4
	defaultLocaleCountry     = "chile"
	defaultReportChannel     = "productos"
	defaultReportDir         = "."
	defaultJobPaceEvery      = 100
	defaultPromotionsOut     = "promociones.json"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server      ServerConfig
	Catalog     CatalogConfig
	Marketplace MarketplaceConfig
	Enrichment  EnrichmentConfig
	Locale      LocaleConfig
	Reports     ReportConfig
	Images      ImageConfig
	Jobs        JobConfig
	Storefront  StorefrontConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CatalogConfig points at the upstream catalog content service.
type CatalogConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// MarketplaceConfig points at the marketplace operator API.
type MarketplaceConfig struct {
	BaseURL         string
	AuthToken       string
	OfferStateCodes string
	Timeout         time.Duration
}

// EnrichmentConfig tunes the marketplace fan-out.
type EnrichmentConfig struct {
	Workers int
}

// LocaleConfig selects the money-rendering locale.
type LocaleConfig struct {
	Country string
	// Permissive renders invalid amounts as empty strings instead of
	// failing; meant for development environments.
	Permissive bool
}

// ReportConfig controls processing-note files.
type ReportConfig struct {
	Dir     string
	Channel string
}

// ImageConfig configures the image CDN rewrite and the resize proxy.
type ImageConfig struct {
	ResizerHost     string
	ResizerToken    string
	ResizerDisabled bool
	CatalogPath     string
	CatalogHost     string
}

// JobConfig configures batch jobs driven from report or export files.
type JobConfig struct {
	// Startup names a job to run once when the process boots; empty skips it.
	Startup string
	// File feeds the first-party replay; MarketplaceFile feeds the
	// marketplace one.
	File            string
	MarketplaceFile string
	Start           int
	Count           int
	PaceEvery       int
	Pause           time.Duration
	PromotionsFile  string
	PromotionsOut   string
}

// StorefrontConfig carries the public site parameters used when building URLs.
type StorefrontConfig struct {
	BaseURL string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env
// overrides, and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Catalog: CatalogConfig{
			BaseURL:   stringWithDefault(lookup, "API_CATALOG_BASE_URL", ""),
			Timeout:   durationWithDefault(lookup, "API_CATALOG_TIMEOUT", defaultCatalogTimeout),
			UserAgent: stringWithDefault(lookup, "API_CATALOG_USER_AGENT", ""),
		},
		Marketplace: MarketplaceConfig{
			BaseURL:         stringWithDefault(lookup, "API_MARKETPLACE_BASE_URL", ""),
			AuthToken:       stringWithDefault(lookup, "API_MARKETPLACE_AUTH_TOKEN", ""),
			OfferStateCodes: stringWithDefault(lookup, "API_MARKETPLACE_OFFER_STATES", defaultMarketplaceCodes),
			Timeout:         durationWithDefault(lookup, "API_MARKETPLACE_TIMEOUT", defaultCatalogTimeout),
		},
		Enrichment: EnrichmentConfig{
			Workers: intWithDefault(lookup, "API_ENRICHMENT_WORKERS", defaultEnrichmentWorkers),
		},
		Locale: LocaleConfig{
			Country:    strings.ToLower(stringWithDefault(lookup, "API_LOCALE_COUNTRY", defaultLocaleCountry)),
			Permissive: boolWithDefault(lookup, "API_LOCALE_PERMISSIVE", false),
		},
		Reports: ReportConfig{
			Dir:     stringWithDefault(lookup, "API_REPORT_DIR", defaultReportDir),
			Channel: stringWithDefault(lookup, "API_REPORT_CHANNEL", defaultReportChannel),
		},
		Images: ImageConfig{
			ResizerHost:     stringWithDefault(lookup, "API_IMAGES_RESIZER_HOST", ""),
			ResizerToken:    stringWithDefault(lookup, "API_IMAGES_RESIZER_TOKEN", ""),
			ResizerDisabled: boolWithDefault(lookup, "API_IMAGES_RESIZER_DISABLED", false),
			CatalogPath:     stringWithDefault(lookup, "API_IMAGES_CATALOG_PATH", ""),
			CatalogHost:     stringWithDefault(lookup, "API_IMAGES_CATALOG_HOST", ""),
		},
		Jobs: JobConfig{
			Startup:         stringWithDefault(lookup, "API_JOB_STARTUP", ""),
			File:            stringWithDefault(lookup, "API_JOB_FILE", ""),
			MarketplaceFile: stringWithDefault(lookup, "API_JOB_MKP_FILE", ""),
			Start:           intWithDefault(lookup, "API_JOB_START", 0),
			Count:           intWithDefault(lookup, "API_JOB_COUNT", 0),
			PaceEvery:       intWithDefault(lookup, "API_JOB_PACE_EVERY", defaultJobPaceEvery),
			Pause:           durationWithDefault(lookup, "API_JOB_PAUSE", time.Second),
			PromotionsFile:  stringWithDefault(lookup, "API_JOB_PROMOTIONS_FILE", ""),
			PromotionsOut:   stringWithDefault(lookup, "API_JOB_PROMOTIONS_OUT", defaultPromotionsOut),
		},
		Storefront: StorefrontConfig{
			BaseURL: stringWithDefault(lookup, "API_STOREFRONT_BASE_URL", ""),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Catalog.BaseURL == "" {
		missing = append(missing, "Catalog.BaseURL")
	}
	if cfg.Catalog.Timeout <= 0 {
		missing = append(missing, "Catalog.Timeout")
	}
	if cfg.Marketplace.BaseURL == "" {
		missing = append(missing, "Marketplace.BaseURL")
	}
	if cfg.Enrichment.Workers <= 0 {
		missing = append(missing, "Enrichment.Workers")
	}
	if cfg.Locale.Country == "" {
		missing = append(missing, "Locale.Country")
	}
	if cfg.Storefront.BaseURL == "" {
		missing = append(missing, "Storefront.BaseURL")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
