// internal/crawl/crawler.go
package crawl

import (
	"context"
	"strings"

	"github.com/law-makers/scrape/internal/engine"
	"github.com/law-makers/scrape/internal/reqctx"
	"github.com/law-makers/scrape/internal/retry"
	urlutil "github.com/law-makers/scrape/internal/utils/url"
	"github.com/law-makers/scrape/pkg/models"
)

// DefaultMaxPages is the page budget used when none is given
const DefaultMaxPages = 5

// nextTitle is the title Swedish sites put on their "next page" anchor
const nextTitle = "nästa sida"

const nextElementID = "pagination-next-page-button"

// Crawler follows "next" links from a start page
type Crawler struct {
	scraper engine.Scraper
	retry   *retry.Config
	headers map[string]string
	onPage  func(n int, page *models.PageContent)
}

// Option configures a Crawler
type Option func(*Crawler)

// WithRetry fetches every page through the retry controller
func WithRetry(cfg retry.Config) Option {
	return func(c *Crawler) {
		c.retry = &cfg
	}
}

// WithHeaders sends the given headers on every page request
func WithHeaders(h map[string]string) Option {
	return func(c *Crawler) {
		c.headers = h
	}
}

// WithOnPage registers a hook called after each page is collected.
// n is the 1-based page count.
func WithOnPage(fn func(n int, page *models.PageContent)) Option {
	return func(c *Crawler) {
		c.onPage = fn
	}
}

// New creates a crawler on top of s
func New(s engine.Scraper, opts ...Option) *Crawler {
	c := &Crawler{scraper: s}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl fetches startURL and then each next page until no next link is
// found, a fetch fails, or maxPages pages have been collected. A failed
// page ends the crawl with the pages collected so far and a nil error.
func (c *Crawler) Crawl(ctx context.Context, startURL string, maxPages int) (models.CrawlResult, error) {
	if err := urlutil.ValidateURL(startURL); err != nil {
		return nil, engine.NewInvalidInputError(startURL, err)
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	logger := reqctx.Logger(ctx)
	results := models.CrawlResult{}
	current := startURL

	for len(results) < maxPages {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		page, err := c.fetch(ctx, current)
		if err != nil || page == nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			logger.Warn().
				Err(err).
				Str("url", current).
				Int("pages", len(results)).
				Msg("Stopping crawl after failed page")
			break
		}

		results = append(results, page)
		if c.onPage != nil {
			c.onPage(len(results), page)
		}

		next, ok := FindNextLink(page)
		if !ok {
			logger.Debug().Str("url", current).Msg("No next page link")
			break
		}
		current = urlutil.ResolveURL(page.URL, next)
	}

	logger.Info().
		Str("start_url", startURL).
		Int("pages", len(results)).
		Msg("Crawl finished")

	return results, nil
}

func (c *Crawler) fetch(ctx context.Context, url string) (*models.PageContent, error) {
	opts := models.RequestOptions{URL: url, Headers: c.headers}

	if c.retry == nil {
		return c.scraper.Fetch(ctx, opts)
	}
	return retry.Do(ctx, *c.retry, func() (*models.PageContent, error) {
		return c.scraper.Fetch(ctx, opts)
	})
}

// FindNextLink returns the href of the first link that looks like a
// pointer to the next page
func FindNextLink(page *models.PageContent) (string, bool) {
	if page == nil {
		return "", false
	}
	for _, link := range page.Links {
		if isNextLink(link) {
			if link.Href == "" {
				return "", false
			}
			return link.Href, true
		}
	}
	return "", false
}

func isNextLink(link models.Link) bool {
	if link.Text != "" {
		if strings.Contains(strings.ToLower(link.Text), "next") ||
			strings.Contains(link.Text, "›") ||
			strings.Contains(link.Text, ">") {
			return true
		}
	}
	if link.Title != "" && strings.ToLower(link.Title) == nextTitle {
		return true
	}
	if link.Dataset["elid"] == nextElementID {
		return true
	}
	for _, rel := range strings.Fields(link.Rel) {
		if strings.EqualFold(rel, "next") {
			return true
		}
	}
	return false
}
