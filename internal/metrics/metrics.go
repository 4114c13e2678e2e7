// Package metrics exposes cache store statistics in Prometheus format.
//
// The collector reads the store's statistics snapshot at scrape time,
// so the /metrics endpoint always reflects the live counters without
// the scraper double-counting anything.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danisworo/estate-scraper/internal/cache"
)

const namespace = "estate_scraper"

// CacheCollector implements prometheus.Collector over a cache.Store.
type CacheCollector struct {
	store cache.Store

	hits     *prometheus.Desc
	misses   *prometheus.Desc
	evicted  *prometheus.Desc
	entries  *prometheus.Desc
	hitRatio *prometheus.Desc
}

func NewCacheCollector(store cache.Store) *CacheCollector {
	return &CacheCollector{
		store: store,
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "hits_total"),
			"Total number of fresh cache hits since process start.",
			nil, nil,
		),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "misses_total"),
			"Total number of cache misses, stale lookups included.",
			nil, nil,
		),
		evicted: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "evicted_total"),
			"Total number of entries removed by stale eviction.",
			nil, nil,
		),
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "entries"),
			"Current number of entries in the cache store.",
			nil, nil,
		),
		hitRatio: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "hit_ratio"),
			"Fraction of lookups answered by a fresh entry.",
			nil, nil,
		),
	}
}

func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evicted
	ch <- c.entries
	ch <- c.hitRatio
}

func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.store.Stats()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.entries, err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits()))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses()))
	ch <- prometheus.MustNewConstMetric(c.evicted, prometheus.CounterValue, float64(stats.Evicted()))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(stats.Entries()))
	ch <- prometheus.MustNewConstMetric(c.hitRatio, prometheus.GaugeValue, stats.HitRatio())
}

// Server serves /metrics on its own registry so scrape output contains
// only scraper metrics, not the default Go collectors of whatever
// process embeds us.
type Server struct {
	registry *prometheus.Registry
	server   *http.Server
}

func NewServer(listenAddr string, store cache.Store) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCacheCollector(store))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		registry: registry,
		server: &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Registry exposes the underlying registry for tests and additional
// collectors.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Start serves until Shutdown. http.ErrServerClosed is swallowed; any
// other error is returned.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
