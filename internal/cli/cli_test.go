package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingServer(t *testing.T, total int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/p/"), "%d", &n)
		if n < 1 || n > total {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "<html><head><title>Page %d</title></head><body><h1>Page %d</h1>", n, n)
		if n < total {
			fmt.Fprintf(w, `<a href="/p/%d" rel="next">older</a>`, n+1)
		}
		fmt.Fprint(w, "</body></html>")
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	code = run(context.Background(), cmd, args, &errOut)
	return code, out.String(), errOut.String()
}

func TestGet_PrintsJSON(t *testing.T) {
	server := listingServer(t, 1)

	code, stdout, stderr := execute(t, "get", server.URL+"/p/1", "-q")
	require.Equal(t, 0, code, stderr)

	var page map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &page))
	assert.Equal(t, "Page 1", page["metaData"].(map[string]any)["title"])
	assert.NotContains(t, page, "html")
}

func TestGet_InvalidURL(t *testing.T) {
	code, _, stderr := execute(t, "get", "not-a-url", "-q")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "INVALID_INPUT")
}

func TestGet_MalformedHeader(t *testing.T) {
	server := listingServer(t, 1)

	code, _, stderr := execute(t, "get", server.URL+"/p/1", "-H", "NoColon", "-q")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid header")
}

func TestGet_SavesFile(t *testing.T) {
	server := listingServer(t, 1)
	path := filepath.Join(t.TempDir(), "page.md")

	code, _, stderr := execute(t, "get", server.URL+"/p/1", "--output", path, "-q")
	require.Equal(t, 0, code, stderr)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Page 1")
}

func TestCrawl_CollectsPages(t *testing.T) {
	server := listingServer(t, 4)

	code, stdout, stderr := execute(t, "crawl", server.URL+"/p/1", "--max-pages", "3", "-q")
	require.Equal(t, 0, code, stderr)

	var pages []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &pages))
	require.Len(t, pages, 3)
	assert.Equal(t, server.URL+"/p/3", pages[2]["url"])
}

func TestCrawl_SinglePageIsArray(t *testing.T) {
	server := listingServer(t, 1)

	code, stdout, stderr := execute(t, "crawl", server.URL+"/p/1", "-q")
	require.Equal(t, 0, code, stderr)

	var pages []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &pages))
	require.Len(t, pages, 1)
	assert.Equal(t, server.URL+"/p/1", pages[0]["url"])
}

func TestCrawl_ManyStartURLs(t *testing.T) {
	server := listingServer(t, 3)

	code, stdout, stderr := execute(t, "crawl", server.URL+"/p/2", server.URL+"/p/3", "--concurrency", "2", "-q")
	require.Equal(t, 0, code, stderr)

	var pages []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &pages))
	require.Len(t, pages, 3)
	assert.Equal(t, server.URL+"/p/2", pages[0]["url"])
	assert.Equal(t, server.URL+"/p/3", pages[1]["url"])
	assert.Equal(t, server.URL+"/p/3", pages[2]["url"])
}

func TestHelp(t *testing.T) {
	code, stdout, _ := execute(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "crawl")
	assert.Contains(t, stdout, "get")
}
