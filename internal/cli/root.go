package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danisworo/estate-scraper/internal/build"
	"github.com/danisworo/estate-scraper/internal/config"
	"github.com/danisworo/estate-scraper/internal/metrics"
	"github.com/danisworo/estate-scraper/internal/scheduler"
)

var (
	cfgFile       string
	envFile       string
	location      string
	minPrice      float64
	maxPrice      float64
	minBedrooms   int
	sites         []string
	maxPages      int
	cacheDir      string
	cacheTTL      time.Duration
	evictStale    bool
	concurrency   int
	baseDelay     time.Duration
	jitter        time.Duration
	randomSeed    int64
	timeout       time.Duration
	userAgent     string
	outputDir     string
	outputFormat  string
	dryRun        bool
	metricsListen string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "estate-scraper",
	Version: build.FullVersion(),
	Short:   "A polite multi-portal real estate listing scraper.",
	Long: `estate-scraper is a CLI application that searches real estate portals
for listings matching a location and price criteria, extracts structured
listing records, and exports them as CSV, JSON, or SQLite.

Fetched result pages are cached in a local SQLite store with a TTL, so
repeated runs over the same search reuse prior work instead of refetching.`,
	Run: func(cmd *cobra.Command, args []string) {
		if location == "" && cfgFile == "" && envFile == "" {
			fmt.Fprintf(os.Stderr, "Error: --location is required. Please provide a search location such as \"Austin, TX\".\n")
			cmd.Usage()
			os.Exit(1)
		}

		cfg := InitConfig()

		fmt.Printf("Configuration initialized successfully\n")
		fmt.Printf("Location: %s\n", cfg.Location())
		fmt.Printf("Sites: %s\n", strings.Join(cfg.Sites(), ", "))
		fmt.Printf("Max Pages: %d\n", cfg.MaxPages())
		fmt.Printf("Cache Dir: %s\n", cfg.CacheDir())
		fmt.Printf("Cache TTL: %v\n", cfg.CacheTTL())
		fmt.Printf("Concurrency: %d\n", cfg.Concurrency())
		fmt.Printf("Output Directory: %s\n", cfg.OutputDir())
		fmt.Printf("Output Format: %s\n", cfg.OutputFormat())
		fmt.Printf("Dry Run: %t\n", cfg.DryRun())

		if err := runScrape(cmd.Context(), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

// runScrape wires the scheduler and optional metrics endpoint and runs
// the scrape to completion.
func runScrape(ctx context.Context, cfg config.Config) error {
	s, err := scheduler.NewScheduler(cfg)
	if err != nil {
		return fmt.Errorf("error initializing scheduler: %w", err)
	}
	defer s.Close()

	if cfg.MetricsListen() != "" {
		metricsServer := metrics.NewServer(cfg.MetricsListen(), s.Store())
		go func() {
			if serveErr := metricsServer.Start(); serveErr != nil {
				fmt.Fprintf(os.Stderr, "metrics server error: %s\n", serveErr)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	execution, err := s.ExecuteScrape(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	fmt.Printf("Scrape finished: %d listings across %d pages (%d errors)\n",
		len(execution.Listings), execution.TotalPages, execution.TotalErrors)
	for _, result := range execution.WriteResults {
		fmt.Printf("Wrote %d listings to %s\n", result.ListingCount(), result.Path())
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file path with ESTATE_* overrides")
	rootCmd.PersistentFlags().StringVar(&location, "location", "", `search location, e.g. "Austin, TX"`)
	rootCmd.PersistentFlags().Float64Var(&minPrice, "min-price", 0, "minimum listing price")
	rootCmd.PersistentFlags().Float64Var(&maxPrice, "max-price", 0, "maximum listing price")
	rootCmd.PersistentFlags().IntVar(&minBedrooms, "min-bedrooms", 0, "minimum bedroom count")
	rootCmd.PersistentFlags().StringArrayVar(&sites, "site", []string{}, "portal to search (can be repeated)")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum result pages per site (0 for default)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "directory holding the page cache database")
	rootCmd.PersistentFlags().DurationVar(&cacheTTL, "cache-ttl", 0, "time-to-live for cached result pages")
	rootCmd.PersistentFlags().BoolVar(&evictStale, "evict-stale", false, "delete expired cache entries after the scrape")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of sites scraped concurrently")
	rootCmd.PersistentFlags().DurationVar(&baseDelay, "base-delay", 0, "base delay between HTTP requests to the same host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to base delay")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "root output directory for exported listings")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", "", "export format: csv, json, or sqlite")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "scrape without writing output")
	rootCmd.PersistentFlags().StringVar(&metricsListen, "metrics-listen", "", "listen address for the Prometheus /metrics endpoint (disabled when empty)")
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError reads in config file and ENV variables if set, returning any errors.
// This makes it easier to test error cases.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		fmt.Printf("Initializing config from file: %s\n", cfgFile)
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	// Build config from CLI flags using the With... functions with method chaining
	fmt.Println("No config file specified. Using default flag values or environment variables")

	configBuilder := config.WithDefault(location)

	if envFile != "" {
		configBuilder = configBuilder.ApplyEnvFile(envFile)
	}

	if minPrice > 0 {
		configBuilder = configBuilder.WithMinPrice(minPrice)
	}

	if maxPrice > 0 {
		configBuilder = configBuilder.WithMaxPrice(maxPrice)
	}

	if minBedrooms > 0 {
		configBuilder = configBuilder.WithMinBedrooms(minBedrooms)
	}

	if len(sites) > 0 {
		configBuilder = configBuilder.WithSites(sites)
	}

	if maxPages > 0 {
		configBuilder = configBuilder.WithMaxPages(maxPages)
	}

	if cacheDir != "" {
		configBuilder = configBuilder.WithCacheDir(cacheDir)
	}

	if cacheTTL > 0 {
		configBuilder = configBuilder.WithCacheTTL(cacheTTL)
	}

	if evictStale {
		configBuilder = configBuilder.WithEvictStale(evictStale)
	}

	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}

	if outputFormat != "" {
		configBuilder = configBuilder.WithOutputFormat(outputFormat)
	}

	if dryRun {
		configBuilder = configBuilder.WithDryRun(dryRun)
	}

	if metricsListen != "" {
		configBuilder = configBuilder.WithMetricsListen(metricsListen)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	envFile = ""
	location = ""
	minPrice = 0
	maxPrice = 0
	minBedrooms = 0
	sites = []string{}
	maxPages = 0
	cacheDir = ""
	cacheTTL = 0
	evictStale = false
	concurrency = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	timeout = 0
	userAgent = ""
	outputDir = ""
	outputFormat = ""
	dryRun = false
	metricsListen = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetEnvFileForTest(path string) {
	envFile = path
}

func SetLocationForTest(loc string) {
	location = loc
}

func SetMinPriceForTest(price float64) {
	minPrice = price
}

func SetMaxPriceForTest(price float64) {
	maxPrice = price
}

func SetMinBedroomsForTest(beds int) {
	minBedrooms = beds
}

func SetSitesForTest(s []string) {
	sites = s
}

func SetMaxPagesForTest(pages int) {
	maxPages = pages
}

func SetCacheDirForTest(dir string) {
	cacheDir = dir
}

func SetCacheTTLForTest(ttl time.Duration) {
	cacheTTL = ttl
}

func SetEvictStaleForTest(evict bool) {
	evictStale = evict
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetBaseDelayForTest(delay time.Duration) {
	baseDelay = delay
}

func SetJitterForTest(j time.Duration) {
	jitter = j
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetOutputFormatForTest(format string) {
	outputFormat = format
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetMetricsListenForTest(listen string) {
	metricsListen = listen
}
