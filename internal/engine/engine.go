package engine

import (
	"context"

	"github.com/law-makers/scrape/pkg/models"
)

// Scraper is the interface that all scraping engines must implement
type Scraper interface {
	// Fetch retrieves the page at opts.URL and extracts its structured content
	Fetch(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error)

	// Name returns the name of the scraper implementation
	Name() string
}

// ScraperFunc adapts a plain function to the Scraper interface
type ScraperFunc func(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error)

// Fetch calls f
func (f ScraperFunc) Fetch(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error) {
	return f(ctx, opts)
}

// Name returns "ScraperFunc"
func (f ScraperFunc) Name() string {
	return "ScraperFunc"
}
