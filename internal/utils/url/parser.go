package urlutil

import (
	"fmt"
	"net/url"

	"github.com/law-makers/scrape/pkg/models"
)

// ValidateURL checks that urlStr is an absolute http(s) URL with a host
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// ResolveURL resolves a possibly-relative href against a base URL and returns a string
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// ResolveRelativeLinks returns a copy of data with link and image URLs made absolute
func ResolveRelativeLinks(data *models.PageContent) *models.PageContent {
	out := *data

	out.Links = make([]models.Link, len(data.Links))
	for i, link := range data.Links {
		link.Href = ResolveURL(data.URL, link.Href)
		out.Links[i] = link
	}

	out.Images = make([]models.Image, len(data.Images))
	for i, img := range data.Images {
		img.Src = ResolveURL(data.URL, img.Src)
		out.Images[i] = img
	}

	return &out
}
