package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/danisworo/estate-scraper/internal/model"
)

type Config struct {
	//===============
	//  Search scope
	//===============
	// Where to search. Free-form "City, ST" text, slugged per portal.
	location string
	// Price band filters. Zero means unfiltered.
	minPrice float64
	maxPrice float64
	// Room filters. Zero means unfiltered.
	minBedrooms  int
	maxBedrooms  int
	minBathrooms float64
	// Property type filters ("house", "condo", ...). Empty means all.
	propertyTypes []string
	// Which portals to scrape. Must have registered selector profiles.
	sites []string
	// Maximum number of result pages per site
	maxPages int

	//===============
	// Cache
	//===============
	// Directory holding the cache store's database file
	cacheDir string
	// Default freshness window for cached pages
	cacheTTL time.Duration
	// Whether to sweep stale entries after the scrape completes
	evictStale bool

	//===============
	// Politeness
	//===============
	// Maximum number of scrape worker goroutines processing pages concurrently;
	// it does not control OS threads or CPU parallelism.
	concurrency int
	// Minimum, fixed waiting time you enforce between two HTTP requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	// Intentional randomness applied to timing.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string

	//===============
	// Output
	//===============
	// Root directory in which to store the export artifacts
	outputDir string
	// Export format: csv, json or sqlite
	outputFormat string
	// Whether the program will simulate what it would do without
	// actually performing any irreversible or side-effecting actions
	dryRun bool

	//===============
	// Observability
	//===============
	// Listen address for the Prometheus endpoint. Empty disables it.
	metricsListen string
}

type configDTO struct {
	Location               string        `json:"location"`
	MinPrice               float64       `json:"minPrice,omitempty"`
	MaxPrice               float64       `json:"maxPrice,omitempty"`
	MinBedrooms            int           `json:"minBedrooms,omitempty"`
	MaxBedrooms            int           `json:"maxBedrooms,omitempty"`
	MinBathrooms           float64       `json:"minBathrooms,omitempty"`
	PropertyTypes          []string      `json:"propertyTypes,omitempty"`
	Sites                  []string      `json:"sites,omitempty"`
	MaxPages               int           `json:"maxPages,omitempty"`
	CacheDir               string        `json:"cacheDir,omitempty"`
	CacheTTL               time.Duration `json:"cacheTtl,omitempty"`
	EvictStale             bool          `json:"evictStale,omitempty"`
	Concurrency            int           `json:"concurrency,omitempty"`
	BaseDelay              time.Duration `json:"baseDelay,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	OutputDir              string        `json:"outputDir,omitempty"`
	OutputFormat           string        `json:"outputFormat,omitempty"`
	DryRun                 bool          `json:"dryRun,omitempty"`
	MetricsListen          string        `json:"metricsListen,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {

	// Start with default config
	cfg, err := WithDefault(dto.Location).Build()
	if err != nil {
		return Config{}, err
	}

	// Slices can be empty - only override when provided
	if len(dto.PropertyTypes) > 0 {
		cfg.propertyTypes = dto.PropertyTypes
	}
	if len(dto.Sites) > 0 {
		cfg.sites = dto.Sites
	}

	// For other fields, only override if non-zero value is provided
	if dto.MinPrice != 0 {
		cfg.minPrice = dto.MinPrice
	}
	if dto.MaxPrice != 0 {
		cfg.maxPrice = dto.MaxPrice
	}
	if dto.MinBedrooms != 0 {
		cfg.minBedrooms = dto.MinBedrooms
	}
	if dto.MaxBedrooms != 0 {
		cfg.maxBedrooms = dto.MaxBedrooms
	}
	if dto.MinBathrooms != 0 {
		cfg.minBathrooms = dto.MinBathrooms
	}
	if dto.MaxPages != 0 {
		cfg.maxPages = dto.MaxPages
	}
	if dto.CacheDir != "" {
		cfg.cacheDir = dto.CacheDir
	}
	if dto.CacheTTL != 0 {
		cfg.cacheTTL = dto.CacheTTL
	}
	cfg.evictStale = dto.EvictStale
	if dto.Concurrency != 0 {
		cfg.concurrency = dto.Concurrency
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = dto.BaseDelay
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.OutputDir != "" {
		cfg.outputDir = dto.OutputDir
	}
	if dto.OutputFormat != "" {
		cfg.outputFormat = dto.OutputFormat
	}
	// DryRun is a boolean, we use the DTO value as-is since bool zero value is false
	cfg.dryRun = dto.DryRun
	if dto.MetricsListen != "" {
		cfg.metricsListen = dto.MetricsListen
	}

	return cfg, nil
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided location and default values
// for all other fields. location is mandatory and must not be empty - an error
// will be returned from Build if it is.
func WithDefault(location string) *Config {
	defaultConfig := Config{
		location:               location,
		propertyTypes:          nil,
		sites:                  []string{"zillow"},
		maxPages:               5,
		cacheDir:               ".estate-cache",
		cacheTTL:               24 * time.Hour,
		evictStale:             false,
		concurrency:            4,
		baseDelay:              2 * time.Second,
		jitter:                 time.Millisecond * 500,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 500 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     30 * time.Second,
		timeout:                time.Second * 15,
		userAgent:              "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		outputDir:              "output",
		outputFormat:           "csv",
		dryRun:                 false,
		metricsListen:          "",
	}
	return &defaultConfig
}

// ApplyEnvFile loads a dotenv file (if it exists) and overlays
// ESTATE_* environment variables on the config. Environment values
// win over both file and defaults, so deployments can override
// without editing config files.
func (c *Config) ApplyEnvFile(path string) *Config {
	if path != "" {
		// missing file is not an error: env vars may be set directly
		_ = godotenv.Load(path)
	}

	if v := os.Getenv("ESTATE_LOCATION"); v != "" {
		c.location = v
	}
	if v := os.Getenv("ESTATE_SITES"); v != "" {
		c.sites = strings.Split(v, ",")
	}
	if v := os.Getenv("ESTATE_CACHE_DIR"); v != "" {
		c.cacheDir = v
	}
	if v := os.Getenv("ESTATE_CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			c.cacheTTL = ttl
		}
	}
	if v := os.Getenv("ESTATE_OUTPUT_DIR"); v != "" {
		c.outputDir = v
	}
	if v := os.Getenv("ESTATE_OUTPUT_FORMAT"); v != "" {
		c.outputFormat = v
	}
	if v := os.Getenv("ESTATE_USER_AGENT"); v != "" {
		c.userAgent = v
	}
	if v := os.Getenv("ESTATE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.concurrency = n
		}
	}
	if v := os.Getenv("ESTATE_METRICS_LISTEN"); v != "" {
		c.metricsListen = v
	}
	return c
}

func (c *Config) WithLocation(location string) *Config {
	c.location = location
	return c
}

func (c *Config) WithMinPrice(price float64) *Config {
	c.minPrice = price
	return c
}

func (c *Config) WithMaxPrice(price float64) *Config {
	c.maxPrice = price
	return c
}

func (c *Config) WithMinBedrooms(beds int) *Config {
	c.minBedrooms = beds
	return c
}

func (c *Config) WithMaxBedrooms(beds int) *Config {
	c.maxBedrooms = beds
	return c
}

func (c *Config) WithMinBathrooms(baths float64) *Config {
	c.minBathrooms = baths
	return c
}

func (c *Config) WithPropertyTypes(types []string) *Config {
	c.propertyTypes = types
	return c
}

func (c *Config) WithSites(sites []string) *Config {
	c.sites = sites
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithCacheDir(dir string) *Config {
	c.cacheDir = dir
	return c
}

func (c *Config) WithCacheTTL(ttl time.Duration) *Config {
	c.cacheTTL = ttl
	return c
}

func (c *Config) WithEvictStale(evict bool) *Config {
	c.evictStale = evict
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithOutputFormat(format string) *Config {
	c.outputFormat = format
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) WithMetricsListen(listen string) *Config {
	c.metricsListen = listen
	return c
}

func (c *Config) Build() (Config, error) {
	if strings.TrimSpace(c.location) == "" {
		return Config{}, fmt.Errorf("%w: location cannot be empty", ErrInvalidConfig)
	}
	if len(c.sites) == 0 {
		return Config{}, fmt.Errorf("%w: at least one site is required", ErrInvalidConfig)
	}
	switch c.outputFormat {
	case "csv", "json", "sqlite":
	default:
		return Config{}, fmt.Errorf("%w: unsupported output format %q", ErrInvalidConfig, c.outputFormat)
	}
	if c.cacheTTL <= 0 {
		return Config{}, fmt.Errorf("%w: cacheTtl must be positive", ErrInvalidConfig)
	}
	if c.minPrice > 0 && c.maxPrice > 0 && c.minPrice > c.maxPrice {
		return Config{}, fmt.Errorf("%w: minPrice exceeds maxPrice", ErrInvalidConfig)
	}

	return *c, nil
}

// Criteria derives the search criteria value carried through the
// frontier and fingerprinted for cache keys.
func (c Config) Criteria() model.SearchCriteria {
	return model.SearchCriteria{
		Location:      c.location,
		MinPrice:      c.minPrice,
		MaxPrice:      c.maxPrice,
		MinBedrooms:   c.minBedrooms,
		MaxBedrooms:   c.maxBedrooms,
		MinBathrooms:  c.minBathrooms,
		PropertyTypes: c.PropertyTypes(),
		MaxPages:      c.maxPages,
	}
}

func (c Config) Location() string {
	return c.location
}

func (c Config) MinPrice() float64 {
	return c.minPrice
}

func (c Config) MaxPrice() float64 {
	return c.maxPrice
}

func (c Config) MinBedrooms() int {
	return c.minBedrooms
}

func (c Config) MaxBedrooms() int {
	return c.maxBedrooms
}

func (c Config) MinBathrooms() float64 {
	return c.minBathrooms
}

func (c Config) PropertyTypes() []string {
	types := make([]string, len(c.propertyTypes))
	copy(types, c.propertyTypes)
	return types
}

func (c Config) Sites() []string {
	sites := make([]string, len(c.sites))
	copy(sites, c.sites)
	return sites
}

func (c Config) MaxPages() int {
	return c.maxPages
}

func (c Config) CacheDir() string {
	return c.cacheDir
}

func (c Config) CacheTTL() time.Duration {
	return c.cacheTTL
}

func (c Config) EvictStale() bool {
	return c.evictStale
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) OutputFormat() string {
	return c.outputFormat
}

func (c Config) DryRun() bool {
	return c.dryRun
}

func (c Config) MetricsListen() string {
	return c.metricsListen
}
