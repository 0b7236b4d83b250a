// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/law-makers/scrape/internal/cache"
	"github.com/law-makers/scrape/internal/config"
	"github.com/law-makers/scrape/internal/crawl"
	"github.com/law-makers/scrape/internal/engine/static"
	"github.com/law-makers/scrape/internal/proxy"
	"github.com/law-makers/scrape/internal/ratelimit"
	"github.com/law-makers/scrape/internal/reqctx"
	"github.com/law-makers/scrape/internal/retry"
	"github.com/law-makers/scrape/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       cache.Cache
	RateLimiter ratelimit.RateLimiter
	Proxies     *proxy.ProxyPool
	HTTPClient  *http.Client
	Scraper     *static.Scraper
	Retry       retry.Config
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the in-memory page cache
//   - Creates the per-host rate limiter and the proxy pool
//   - Initializes the HTTP client with pooled connections
//   - Creates the static scraper and the retry policy
func New(ctx context.Context, cfg *config.Config, opts ...static.Option) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := zerolog.WarnLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	logger := zerolog.New(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Msg("Memory cache initialized")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	proxies := proxy.NewProxyPool(cfg.Proxies)

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               proxy.FromRequest,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Int("proxies", proxies.Len()).
		Msg("HTTP client initialized")

	scraperOpts := append([]static.Option{
		static.WithProxyPool(proxies),
		static.WithCacheTTL(cfg.CacheTTL),
	}, opts...)
	staticScraper := static.New(memCache, rateLimiter, httpClient, cfg.HTTPTimeout, scraperOpts...)

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       memCache,
		RateLimiter: rateLimiter,
		Proxies:     proxies,
		HTTPClient:  httpClient,
		Scraper:     staticScraper,
		Retry: retry.Config{
			MaxAttempts:    cfg.Retries,
			InitialBackoff: cfg.Backoff,
			MaxBackoff:     cfg.MaxBackoff,
			Multiplier:     2,
		},
		startTime: time.Now(),
	}

	logger.Debug().Msg("Application initialized successfully")
	return app, nil
}

// Scrape fetches a single page and returns its extracted content
func (a *Application) Scrape(ctx context.Context, url string, opts models.RequestOptions) (*models.PageContent, error) {
	ctx = reqctx.Ensure(ctx)
	logger := reqctx.Logger(ctx)

	opts.URL = url
	if opts.Headers == nil {
		opts.Headers = a.defaultHeaders()
	}

	logger.Debug().Str("url", url).Msg("Scraping page")
	return a.Scraper.Fetch(ctx, opts)
}

// RetryScrape calls Scrape up to tries times. tries <= 0 uses the default of 3.
func (a *Application) RetryScrape(ctx context.Context, url string, tries int) (*models.PageContent, error) {
	return a.ScrapeWithRetry(ctx, url, models.RequestOptions{}, tries)
}

// ScrapeWithRetry is RetryScrape with explicit request options
func (a *Application) ScrapeWithRetry(ctx context.Context, url string, opts models.RequestOptions, tries int) (*models.PageContent, error) {
	ctx = reqctx.Ensure(ctx)
	if tries <= 0 {
		tries = retry.DefaultAttempts
	}
	cfg := a.Retry
	cfg.MaxAttempts = tries

	return retry.Do(ctx, cfg, func() (*models.PageContent, error) {
		return a.Scrape(ctx, url, opts)
	})
}

// ScrapeNextPage crawls from url along "next" links, collecting at most maxPages pages
func (a *Application) ScrapeNextPage(ctx context.Context, url string, maxPages int, opts ...crawl.Option) (models.CrawlResult, error) {
	ctx = reqctx.Ensure(ctx)
	return a.Crawler(opts...).Crawl(ctx, url, maxPages)
}

// CrawlMany runs one independent crawl per url, at most Config.Concurrency at a time.
// Results are returned in input order; a failed crawl leaves a nil entry and its
// error is returned once every crawl has finished.
func (a *Application) CrawlMany(ctx context.Context, urls []string, maxPages int, opts ...crawl.Option) ([]models.CrawlResult, error) {
	ctx = reqctx.Ensure(ctx)
	logger := reqctx.Logger(ctx)

	results := make([]models.CrawlResult, len(urls))
	crawler := a.Crawler(opts...)

	var g errgroup.Group
	g.SetLimit(max(a.Config.Concurrency, 1))

	for i, u := range urls {
		g.Go(func() error {
			res, err := crawler.Crawl(ctx, u, maxPages)
			results[i] = res
			if err != nil {
				return fmt.Errorf("crawl %s: %w", u, err)
			}
			return nil
		})
	}

	err := g.Wait()
	logger.Debug().
		Int("crawls", len(urls)).
		Err(err).
		Msg("Parallel crawl finished")
	return results, err
}

// Crawler returns a pagination crawler that sends the configured User-Agent, if any
func (a *Application) Crawler(opts ...crawl.Option) *crawl.Crawler {
	base := []crawl.Option{crawl.WithHeaders(a.defaultHeaders())}
	return crawl.New(a.Scraper, append(base, opts...)...)
}

// defaultHeaders is nil unless a User-Agent is configured, so the scraper picks one from its pool
func (a *Application) defaultHeaders() map[string]string {
	if a.Config.UserAgent == "" {
		return nil
	}
	return map[string]string{"User-Agent": a.Config.UserAgent}
}

// Close gracefully shuts down the application and all its resources.
//
// It stops the cache janitor and drops idle HTTP connections.
// Any errors during shutdown are logged but do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if a.Cache != nil {
		a.Cache.Close()
	}

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
