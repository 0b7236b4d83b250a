package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/law-makers/scrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePage() *models.PageContent {
	return &models.PageContent{
		URL:        "https://example.com/docs/",
		StatusCode: 200,
		Metadata:   models.Metadata{Title: "Docs"},
		Links:      []models.Link{{Href: "next.html", Text: "Next"}},
		Images:     []models.Image{{Src: "/logo.png", Alt: "logo"}},
		Tables:     []models.Table{{{"Name", "Age"}, {"Ann", "31"}}},
		HTML: `<html><head><script>alert(1)</script></head><body>
<h1 class="big">Docs</h1><p>Read <a href="next.html" title="Page two" onclick="x()">the next page</a>.</p>
</body></html>`,
	}
}

func TestWriteJSON_SinglePage(t *testing.T) {
	page := samplePage()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, page))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Empty(t, got["html"])
	links := got["links"].([]any)
	assert.Equal(t, "https://example.com/docs/next.html", links[0].(map[string]any)["href"])
	images := got["images"].([]any)
	assert.Equal(t, "https://example.com/logo.png", images[0].(map[string]any)["src"])

	assert.NotEmpty(t, page.HTML, "input page must not be modified")
	assert.Equal(t, "next.html", page.Links[0].Href)
}

func TestWriteJSON_ManyPages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, samplePage(), samplePage()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestWriteJSONList_SinglePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONList(&buf, samplePage()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/docs/", got[0]["url"])
}

func TestSaveList_JSONIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl.json")
	require.NoError(t, SaveList(path, samplePage()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(content, &got))
	assert.Len(t, got, 1)
}

func TestWriteCSV(t *testing.T) {
	second := samplePage()
	second.URL = "https://example.com/other"
	second.Tables = []models.Table{{{"x"}}, {{"a", "b", "c"}}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samplePage(), second))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"url", "table", "cells"},
		{"https://example.com/docs/", "0", "Name", "Age"},
		{"https://example.com/docs/", "0", "Ann", "31"},
		{"https://example.com/other", "0", "x"},
		{"https://example.com/other", "1", "a", "b", "c"},
	}, records)
}

func TestToMarkdown(t *testing.T) {
	mdStr, err := ToMarkdown(samplePage())
	require.NoError(t, err)

	assert.Contains(t, mdStr, "# Docs")
	assert.Contains(t, mdStr, `[the next page](https://example.com/docs/next.html "Page two")`)
	assert.NotContains(t, mdStr, "alert")
}

func TestCleanHTML(t *testing.T) {
	cleaned, err := CleanHTML(samplePage().HTML)
	require.NoError(t, err)

	assert.NotContains(t, cleaned, "<script")
	assert.NotContains(t, cleaned, "onclick")
	assert.NotContains(t, cleaned, `class="big"`)
	assert.Contains(t, cleaned, `href="next.html"`)
}

func TestSave_ByExtension(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		contains string
	}{
		{"page.json", `"url": "https://example.com/docs/"`},
		{"page.csv", "url,table,cells"},
		{"page.md", "# Docs"},
		{"page.html", "<!-- https://example.com/docs/ -->"},
		{"page.out", `"status_code": 200`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, Save(path, samplePage()))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, strings.Contains(string(content), tt.contains), "missing %q in:\n%s", tt.contains, content)
		})
	}
}

func TestSave_UnwritablePath(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "missing", "page.json"), samplePage())
	assert.Error(t, err)
}
