// internal/engine/static/scraper.go
package static

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"github.com/law-makers/scrape/internal/cache"
	"github.com/law-makers/scrape/internal/engine"
	"github.com/law-makers/scrape/internal/engine/extract"
	"github.com/law-makers/scrape/internal/proxy"
	"github.com/law-makers/scrape/internal/ratelimit"
	"github.com/law-makers/scrape/internal/reqctx"
	urlutil "github.com/law-makers/scrape/internal/utils/url"
	"github.com/law-makers/scrape/pkg/models"
	"golang.org/x/net/html/charset"
)

// UserAgents is the pool a User-Agent is picked from when the caller supplies no header map
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/75.0.3770.100 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:89.0) Gecko/20100101 Firefox/89.0",
}

// DefaultMaxBodyBytes caps how much of a response body is parsed
const DefaultMaxBodyBytes int64 = 10 * 1024 * 1024

// Picker returns an index in [0, n)
type Picker func(n int) int

// Scraper implements engine.Scraper for static HTML pages.
// It uses raw HTTP requests and goquery for parsing.
type Scraper struct {
	cache        cache.Cache
	cacheTTL     time.Duration
	limiter      ratelimit.RateLimiter
	proxies      *proxy.ProxyPool
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
	pick         Picker
}

// Option configures optional Scraper collaborators
type Option func(*Scraper)

// WithPicker replaces the random User-Agent pick
func WithPicker(p Picker) Option {
	return func(s *Scraper) {
		if p != nil {
			s.pick = p
		}
	}
}

// WithProxyPool routes each request through the next healthy proxy.
// The client's transport must use proxy.FromRequest as its Proxy func.
func WithProxyPool(p *proxy.ProxyPool) Option {
	return func(s *Scraper) {
		s.proxies = p
	}
}

// WithCacheTTL sets how long extracted pages stay cached
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Scraper) {
		s.cacheTTL = ttl
	}
}

// WithMaxBodyBytes caps the parsed body size
func WithMaxBodyBytes(n int64) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// New creates a new static Scraper. Cache and limiter may be nil.
func New(c cache.Cache, lim ratelimit.RateLimiter, client *http.Client, timeout time.Duration, opts ...Option) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	s := &Scraper{
		cache:        c,
		limiter:      lim,
		client:       client,
		timeout:      timeout,
		maxBodyBytes: DefaultMaxBodyBytes,
		pick:         rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the name of this scraper
func (s *Scraper) Name() string {
	return "StaticScraper"
}

// Fetch retrieves a page and extracts its structured content
func (s *Scraper) Fetch(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	page, err := s.fetch(ctx, opts)
	if err != nil {
		logger := reqctx.Logger(ctx)
		logger.Warn().Err(err).Str("url", opts.URL).Msg("Failed to scrape URL")
		return nil, err
	}
	return page, nil
}

// RequestHeaders resolves the headers sent for opts: the caller's headers
// verbatim when supplied, even if empty; for nil, a single randomly picked User-Agent
func (s *Scraper) RequestHeaders(opts models.RequestOptions) map[string]string {
	if opts.Headers != nil {
		return opts.Headers
	}
	return map[string]string{
		"User-Agent": UserAgents[s.pick(len(UserAgents))],
	}
}

func (s *Scraper) fetch(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error) {
	if err := urlutil.ValidateURL(opts.URL); err != nil {
		return nil, engine.NewInvalidInputError(opts.URL, err)
	}

	cacheKey := cache.KeyFromURL(opts.URL)
	if s.cache != nil && !opts.NoCache {
		if page, ok := s.cache.Get(cacheKey); ok {
			return page, nil
		}
	}

	logger := reqctx.Logger(ctx)
	start := time.Now()
	logger.Debug().
		Str("url", opts.URL).
		Str("scraper", s.Name()).
		Msg("Starting fetch")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, engine.NewFetchError(opts.URL, 0, err)
		}
	}

	proxyURL := s.proxies.GetNext()
	ctx = proxy.WithProxy(ctx, proxyURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, engine.NewInvalidInputError(opts.URL, err)
	}
	for key, value := range s.RequestHeaders(opts) {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.proxies.MarkFailed(proxyURL)
		return nil, engine.NewFetchError(opts.URL, 0, err)
	}
	defer resp.Body.Close()
	s.proxies.MarkHealthy(proxyURL)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, engine.NewFetchError(opts.URL, resp.StatusCode, nil)
	}

	body, closeBody, err := s.decodeBody(resp)
	if err != nil {
		return nil, engine.NewParseError(opts.URL, err)
	}
	defer closeBody()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, engine.NewParseError(opts.URL, err)
	}

	page := extract.FromDocument(doc)
	page.URL = finalURL(resp, opts.URL)
	page.StatusCode = resp.StatusCode
	page.FetchedAt = time.Now()
	page.ResponseTime = time.Since(start).Milliseconds()
	page.HTML, _ = doc.Html()

	if s.cache != nil {
		_ = s.cache.Set(cacheKey, page, s.cacheTTL)
	}

	logger.Debug().
		Str("url", opts.URL).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", page.ResponseTime).
		Int("links", len(page.Links)).
		Int("images", len(page.Images)).
		Msg("Fetch completed")

	return page, nil
}

// finalURL is the URL the response was served from once redirects are followed
func finalURL(resp *http.Response, requested string) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return requested
}

// decodeBody undoes any Content-Encoding the transport left in place,
// caps the size, and converts the declared charset to UTF-8.
// The returned func releases the decompressor.
func (s *Scraper) decodeBody(resp *http.Response) (io.Reader, func(), error) {
	var r io.Reader = resp.Body
	closer := func() {}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		r = brotli.NewReader(r)
	case "gzip":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, closer, fmt.Errorf("gzip body: %w", err)
		}
		r, closer = gz, func() { _ = gz.Close() }
	case "deflate":
		rc, err := deflateReader(r)
		if err != nil {
			return nil, closer, fmt.Errorf("deflate body: %w", err)
		}
		r, closer = rc, func() { _ = rc.Close() }
	}

	r = io.LimitReader(r, s.maxBodyBytes)

	decoded, err := charset.NewReader(r, resp.Header.Get("Content-Type"))
	if err != nil {
		closer()
		return nil, func() {}, err
	}
	return decoded, closer, nil
}

// deflateReader reads an HTTP deflate body, which is zlib-wrapped.
// Some servers send raw DEFLATE instead, so the zlib header is checked first.
func deflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if err != nil && len(header) < 2 {
		return flate.NewReader(br), nil
	}
	if isZlibHeader(header[0], header[1]) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

// isZlibHeader reports whether cmf and flg form a valid RFC 1950 header
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
