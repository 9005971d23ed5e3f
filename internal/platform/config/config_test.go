package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func baseEnv() map[string]string {
	return map[string]string{
		"API_CATALOG_BASE_URL":     "https://catalog.example.cl",
		"API_MARKETPLACE_BASE_URL": "https://marketplace.example.cl",
		"API_STOREFRONT_BASE_URL":  "https://simple.example.cl",
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(baseEnv()), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Catalog.Timeout != defaultCatalogTimeout {
		t.Errorf("unexpected catalog timeout: %s", cfg.Catalog.Timeout)
	}
	if cfg.Marketplace.OfferStateCodes != defaultMarketplaceCodes {
		t.Errorf("unexpected offer state codes: %s", cfg.Marketplace.OfferStateCodes)
	}
	if cfg.Enrichment.Workers != defaultEnrichmentWorkers {
		t.Errorf("unexpected enrichment workers: %d", cfg.Enrichment.Workers)
	}
	if cfg.Locale.Country != "chile" {
		t.Errorf("unexpected default locale: %s", cfg.Locale.Country)
	}
	if cfg.Reports.Channel != defaultReportChannel {
		t.Errorf("unexpected report channel: %s", cfg.Reports.Channel)
	}
	if cfg.Jobs.PaceEvery != defaultJobPaceEvery {
		t.Errorf("unexpected job pacing: %d", cfg.Jobs.PaceEvery)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := baseEnv()
	env["API_SERVER_PORT"] = "9090"
	env["API_SERVER_READ_TIMEOUT"] = "20s"
	env["API_CATALOG_TIMEOUT"] = "5s"
	env["API_MARKETPLACE_AUTH_TOKEN"] = "token-123"
	env["API_MARKETPLACE_OFFER_STATES"] = "11,12"
	env["API_ENRICHMENT_WORKERS"] = "8"
	env["API_LOCALE_COUNTRY"] = "Peru"
	env["API_LOCALE_PERMISSIVE"] = "true"
	env["API_IMAGES_RESIZER_HOST"] = "imgproxy.example.cl"
	env["API_JOB_STARTUP"] = "productos-ripley"
	env["API_JOB_PAUSE"] = "250ms"

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port override lost: %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("read timeout override lost: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Catalog.Timeout != 5*time.Second {
		t.Errorf("catalog timeout override lost: %s", cfg.Catalog.Timeout)
	}
	if cfg.Marketplace.AuthToken != "token-123" {
		t.Errorf("auth token lost: %s", cfg.Marketplace.AuthToken)
	}
	if cfg.Marketplace.OfferStateCodes != "11,12" {
		t.Errorf("offer states lost: %s", cfg.Marketplace.OfferStateCodes)
	}
	if cfg.Enrichment.Workers != 8 {
		t.Errorf("workers override lost: %d", cfg.Enrichment.Workers)
	}
	if cfg.Locale.Country != "peru" {
		t.Errorf("locale must be lowercased: %s", cfg.Locale.Country)
	}
	if !cfg.Locale.Permissive {
		t.Errorf("permissive flag lost")
	}
	if cfg.Images.ResizerHost != "imgproxy.example.cl" {
		t.Errorf("resizer host lost: %s", cfg.Images.ResizerHost)
	}
	if cfg.Jobs.Startup != "productos-ripley" {
		t.Errorf("startup job lost: %s", cfg.Jobs.Startup)
	}
	if cfg.Jobs.Pause != 250*time.Millisecond {
		t.Errorf("job pause lost: %s", cfg.Jobs.Pause)
	}
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	fields := validation.Fields()
	want := map[string]bool{
		"Catalog.BaseURL":     false,
		"Marketplace.BaseURL": false,
		"Storefront.BaseURL":  false,
	}
	for _, field := range fields {
		if _, ok := want[field]; ok {
			want[field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("expected %s in validation fields, got %v", field, fields)
		}
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "API_CATALOG_BASE_URL=https://catalog.example.cl\n" +
		"export API_MARKETPLACE_BASE_URL=\"https://marketplace.example.cl\"\n" +
		"API_STOREFRONT_BASE_URL='https://simple.example.cl'\n" +
		"# comment\n" +
		"API_REPORT_CHANNEL=productos-MKP\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Catalog.BaseURL != "https://catalog.example.cl" {
		t.Errorf("catalog url from .env lost: %s", cfg.Catalog.BaseURL)
	}
	if cfg.Marketplace.BaseURL != "https://marketplace.example.cl" {
		t.Errorf("quoted export value mishandled: %s", cfg.Marketplace.BaseURL)
	}
	if cfg.Reports.Channel != "productos-MKP" {
		t.Errorf("report channel from .env lost: %s", cfg.Reports.Channel)
	}
}

func TestEnvMapTakesPrecedenceOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("API_SERVER_PORT=7000\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	env := baseEnv()
	env["API_SERVER_PORT"] = "9000"

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("env map must win over .env: %s", cfg.Server.Port)
	}
}
