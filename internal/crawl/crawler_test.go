package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/scrape/internal/engine"
	"github.com/law-makers/scrape/internal/engine/static"
	"github.com/law-makers/scrape/internal/retry"
	"github.com/law-makers/scrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainServer serves /page/1 .. /page/total, each linking to the next with a relative href
func chainServer(t *testing.T, total int, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/page/"))
		if err != nil || n < 1 || n > total {
			http.NotFound(w, r)
			return
		}
		var b strings.Builder
		fmt.Fprintf(&b, "<html><head><title>Page %d</title></head><body><h1>Page %d</h1>", n, n)
		if n < total {
			fmt.Fprintf(&b, `<a href="%d">Next</a>`, n+1)
		}
		b.WriteString("</body></html>")
		w.Write([]byte(b.String()))
	}))
	t.Cleanup(server.Close)
	return server
}

func newStatic() *static.Scraper {
	return static.New(nil, nil, &http.Client{}, 5*time.Second)
}

func TestCrawl_StopsAtPageBudget(t *testing.T) {
	server := chainServer(t, 7, nil)

	results, err := New(newStatic()).Crawl(context.Background(), server.URL+"/page/1", 5)
	require.NoError(t, err)
	require.Len(t, results, 5)

	for i, page := range results {
		assert.Equal(t, fmt.Sprintf("%s/page/%d", server.URL, i+1), page.URL)
		assert.Equal(t, fmt.Sprintf("Page %d", i+1), page.Metadata.Title)
	}
}

func TestCrawl_ResolvesAgainstRedirectedURL(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/docs":
			http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
		case "/docs/":
			w.Write([]byte(`<html><body><a href="page2">Next</a></body></html>`))
		case "/docs/page2":
			w.Write([]byte(`<html><body><p>second</p></body></html>`))
		default:
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	results, err := New(newStatic()).Crawl(context.Background(), server.URL+"/docs", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, server.URL+"/docs/", results[0].URL)
	assert.Equal(t, server.URL+"/docs/page2", results[1].URL)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/docs", "/docs/", "/docs/page2"}, paths)
}

func TestCrawl_StopsWithoutNextLink(t *testing.T) {
	server := chainServer(t, 2, nil)

	results, err := New(newStatic()).Crawl(context.Background(), server.URL+"/page/1", 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestCrawl_DefaultPageBudget(t *testing.T) {
	server := chainServer(t, 10, nil)

	results, err := New(newStatic()).Crawl(context.Background(), server.URL+"/page/1", 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultMaxPages)
}

func TestCrawl_PartialResultsOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1":
			w.Write([]byte(`<html><body><a href="/2">next</a></body></html>`))
		case "/2":
			w.Write([]byte(`<html><body><a href="/3">next</a></body></html>`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	results, err := New(newStatic()).Crawl(context.Background(), server.URL+"/1", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, server.URL+"/2", results[1].URL)
}

func TestCrawl_FirstPageFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	results, err := New(newStatic()).Crawl(context.Background(), server.URL, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCrawl_InvalidStartURL(t *testing.T) {
	var calls int
	s := engine.ScraperFunc(func(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error) {
		calls++
		return nil, nil
	})

	_, err := New(s).Crawl(context.Background(), "not a url", 5)
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
	assert.Zero(t, calls)
}

func TestCrawl_NilPageStops(t *testing.T) {
	s := engine.ScraperFunc(func(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error) {
		return nil, nil
	})

	results, err := New(s).Crawl(context.Background(), "https://example.com", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCrawl_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	s := engine.ScraperFunc(func(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error) {
		calls++
		cancel()
		return &models.PageContent{
			URL:   opts.URL,
			Links: []models.Link{{Href: "/next", Text: "Next"}},
		}, nil
	})

	results, err := New(s).Crawl(ctx, "https://example.com", 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, calls)
}

func TestCrawl_WithRetry(t *testing.T) {
	var calls int
	s := engine.ScraperFunc(func(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error) {
		calls++
		if calls == 1 {
			return nil, engine.NewFetchError(opts.URL, 503, nil)
		}
		return &models.PageContent{URL: opts.URL}, nil
	})

	results, err := New(s, WithRetry(retry.DefaultConfig())).Crawl(context.Background(), "https://example.com", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, calls)
}

func TestCrawl_OnPageAndHeaders(t *testing.T) {
	var seen []int
	var headers []map[string]string
	s := engine.ScraperFunc(func(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error) {
		headers = append(headers, opts.Headers)
		n := len(headers)
		return &models.PageContent{
			URL:   opts.URL,
			Links: []models.Link{{Href: "?page=" + strconv.Itoa(n+1), Text: "›"}},
		}, nil
	})

	c := New(s,
		WithHeaders(map[string]string{"User-Agent": "test"}),
		WithOnPage(func(n int, page *models.PageContent) { seen = append(seen, n) }),
	)
	results, err := c.Crawl(context.Background(), "https://example.com/list", 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, "https://example.com/list?page=3", results[2].URL)
	for _, h := range headers {
		assert.Equal(t, "test", h["User-Agent"])
	}
}

func TestCrawl_HitsEachPageOnce(t *testing.T) {
	var hits int32
	server := chainServer(t, 3, &hits)

	_, err := New(newStatic()).Crawl(context.Background(), server.URL+"/page/1", 10)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFindNextLink(t *testing.T) {
	tests := []struct {
		name  string
		links []models.Link
		want  string
		found bool
	}{
		{"text next", []models.Link{{Href: "/a", Text: "Home"}, {Href: "/b", Text: "Next page"}}, "/b", true},
		{"text case-insensitive", []models.Link{{Href: "/b", Text: "NEXT"}}, "/b", true},
		{"chevron glyph", []models.Link{{Href: "/c", Text: "›"}}, "/c", true},
		{"greater-than glyph", []models.Link{{Href: "/d", Text: ">>"}}, "/d", true},
		{"swedish title", []models.Link{{Href: "/e", Title: "Nästa sida"}}, "/e", true},
		{"element id", []models.Link{{Href: "/f", Dataset: map[string]string{"elid": "pagination-next-page-button"}}}, "/f", true},
		{"rel next", []models.Link{{Href: "/g", Rel: "nofollow next"}}, "/g", true},
		{"first match wins", []models.Link{{Href: "/1", Text: "next"}, {Href: "/2", Text: "next"}}, "/1", true},
		{"no marker", []models.Link{{Href: "/h", Text: "Previous"}, {Href: "/i", Title: "föregående"}}, "", false},
		{"other dataset", []models.Link{{Href: "/j", Dataset: map[string]string{"elid": "pagination-prev"}}}, "", false},
		{"empty href", []models.Link{{Href: "", Text: "Next"}}, "", false},
		{"no links", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindNextLink(&models.PageContent{Links: tt.links})
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := FindNextLink(nil)
	assert.False(t, ok)
}

func TestCrawl_ErrorFromScraperIsNotReturned(t *testing.T) {
	s := engine.ScraperFunc(func(ctx context.Context, opts models.RequestOptions) (*models.PageContent, error) {
		return nil, errors.New("boom")
	})

	results, err := New(s).Crawl(context.Background(), "https://example.com", 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}
