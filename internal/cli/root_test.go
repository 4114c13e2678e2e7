package cmd_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	cmd "github.com/danisworo/estate-scraper/internal/cli"
	"github.com/danisworo/estate-scraper/internal/config"
)

// TestInitConfigNoFlags tests that InitConfigWithError returns a Config with
// default values when only the location is provided
func TestInitConfigNoFlags(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetLocationForTest("Austin, TX")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	defaultCfg, err := config.WithDefault("Austin, TX").Build()
	if err != nil {
		t.Errorf("should not have any error, got %v", err)
	}
	if cfg.Location() != "Austin, TX" {
		t.Errorf("Expected Location %q, got %q", "Austin, TX", cfg.Location())
	}
	if cfg.MaxPages() != defaultCfg.MaxPages() {
		t.Errorf("Expected MaxPages %d, got %d", defaultCfg.MaxPages(), cfg.MaxPages())
	}
	if cfg.Concurrency() != defaultCfg.Concurrency() {
		t.Errorf("Expected Concurrency %d, got %d", defaultCfg.Concurrency(), cfg.Concurrency())
	}
	if cfg.CacheTTL() != defaultCfg.CacheTTL() {
		t.Errorf("Expected CacheTTL %v, got %v", defaultCfg.CacheTTL(), cfg.CacheTTL())
	}
	if cfg.OutputFormat() != defaultCfg.OutputFormat() {
		t.Errorf("Expected OutputFormat %s, got %s", defaultCfg.OutputFormat(), cfg.OutputFormat())
	}
	if cfg.DryRun() != defaultCfg.DryRun() {
		t.Errorf("Expected DryRun %t, got %t", defaultCfg.DryRun(), cfg.DryRun())
	}
}

// TestInitConfigWithEmptyLocation tests that InitConfigWithError returns
// error when no location is provided at all
func TestInitConfigWithEmptyLocation(t *testing.T) {
	cmd.ResetFlags()

	_, err := cmd.InitConfigWithError()
	if err == nil {
		t.Fatal("Expected error for empty location, got nil")
	}

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}
}

// TestInitConfigFlagOverrides tests that CLI flags override defaults
func TestInitConfigFlagOverrides(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetLocationForTest("Denver, CO")
	cmd.SetSitesForTest([]string{"zillow", "realtor"})
	cmd.SetMaxPagesForTest(9)
	cmd.SetMinPriceForTest(250000)
	cmd.SetMaxPriceForTest(700000)
	cmd.SetMinBedroomsForTest(3)
	cmd.SetCacheTTLForTest(30 * time.Minute)
	cmd.SetEvictStaleForTest(true)
	cmd.SetConcurrencyForTest(2)
	cmd.SetTimeoutForTest(20 * time.Second)
	cmd.SetOutputFormatForTest("json")
	cmd.SetDryRunForTest(true)
	cmd.SetMetricsListenForTest("127.0.0.1:9090")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Location() != "Denver, CO" {
		t.Errorf("Expected Location %q, got %q", "Denver, CO", cfg.Location())
	}
	if len(cfg.Sites()) != 2 {
		t.Errorf("Expected 2 sites, got %d", len(cfg.Sites()))
	}
	if cfg.MaxPages() != 9 {
		t.Errorf("Expected MaxPages 9, got %d", cfg.MaxPages())
	}
	if cfg.MinPrice() != 250000 {
		t.Errorf("Expected MinPrice 250000, got %f", cfg.MinPrice())
	}
	if cfg.MaxPrice() != 700000 {
		t.Errorf("Expected MaxPrice 700000, got %f", cfg.MaxPrice())
	}
	if cfg.MinBedrooms() != 3 {
		t.Errorf("Expected MinBedrooms 3, got %d", cfg.MinBedrooms())
	}
	if cfg.CacheTTL() != 30*time.Minute {
		t.Errorf("Expected CacheTTL 30m, got %v", cfg.CacheTTL())
	}
	if !cfg.EvictStale() {
		t.Error("Expected EvictStale true")
	}
	if cfg.Concurrency() != 2 {
		t.Errorf("Expected Concurrency 2, got %d", cfg.Concurrency())
	}
	if cfg.Timeout() != 20*time.Second {
		t.Errorf("Expected Timeout 20s, got %v", cfg.Timeout())
	}
	if cfg.OutputFormat() != "json" {
		t.Errorf("Expected OutputFormat json, got %s", cfg.OutputFormat())
	}
	if !cfg.DryRun() {
		t.Error("Expected DryRun true")
	}
	if cfg.MetricsListen() != "127.0.0.1:9090" {
		t.Errorf("Expected MetricsListen 127.0.0.1:9090, got %s", cfg.MetricsListen())
	}
}

// TestInitConfigInvalidOutputFormat tests that an unsupported export
// format surfaces a build error
func TestInitConfigInvalidOutputFormat(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetLocationForTest("Austin, TX")
	cmd.SetOutputFormatForTest("xml")

	_, err := cmd.InitConfigWithError()
	if err == nil {
		t.Fatal("Expected error for unsupported output format, got nil")
	}
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}
}

// TestInitConfigFromFile tests that a config file takes precedence over flags
func TestInitConfigFromFile(t *testing.T) {
	cmd.ResetFlags()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	configData := `{
		"location": "Portland, OR",
		"sites": ["realtor"],
		"maxPages": 3,
		"outputFormat": "sqlite"
	}`
	if err := os.WriteFile(configPath, []byte(configData), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cmd.SetConfigFileForTest(configPath)
	cmd.SetLocationForTest("Austin, TX") // must lose to the file

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Location() != "Portland, OR" {
		t.Errorf("Expected Location from file, got %q", cfg.Location())
	}
	if len(cfg.Sites()) != 1 || cfg.Sites()[0] != "realtor" {
		t.Errorf("Expected sites [realtor], got %v", cfg.Sites())
	}
	if cfg.MaxPages() != 3 {
		t.Errorf("Expected MaxPages 3, got %d", cfg.MaxPages())
	}
	if cfg.OutputFormat() != "sqlite" {
		t.Errorf("Expected OutputFormat sqlite, got %s", cfg.OutputFormat())
	}
}

// TestInitConfigMissingConfigFile tests the error path for a nonexistent file
func TestInitConfigMissingConfigFile(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetConfigFileForTest("/nonexistent/config.json")

	_, err := cmd.InitConfigWithError()
	if err == nil {
		t.Fatal("Expected error for missing config file, got nil")
	}
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("Expected ErrFileDoesNotExist, got: %v", err)
	}
}

// TestInitConfigFromEnvFile tests that a .env file fills in values the
// flags left at their defaults
func TestInitConfigFromEnvFile(t *testing.T) {
	cmd.ResetFlags()

	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	envData := "ESTATE_LOCATION=Seattle, WA\nESTATE_OUTPUT_FORMAT=json\n"
	if err := os.WriteFile(envPath, []byte(envData), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	cmd.SetEnvFileForTest(envPath)
	defer os.Unsetenv("ESTATE_LOCATION")
	defer os.Unsetenv("ESTATE_OUTPUT_FORMAT")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Location() != "Seattle, WA" {
		t.Errorf("Expected Location %q, got %q", "Seattle, WA", cfg.Location())
	}
	if cfg.OutputFormat() != "json" {
		t.Errorf("Expected OutputFormat json, got %s", cfg.OutputFormat())
	}
}
