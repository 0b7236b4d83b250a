// Package output writes scraped pages to files in the format implied by the file extension.
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/law-makers/scrape/pkg/models"
)

// Save writes pages to path, choosing the format from its extension:
// .json, .csv, .md or .html. Unknown extensions are written as JSON.
func Save(path string, pages ...*models.PageContent) error {
	return save(path, SaveJSON, pages)
}

// SaveList is Save for page sequences such as crawl results: JSON output is
// always an array.
func SaveList(path string, pages ...*models.PageContent) error {
	return save(path, SaveJSONList, pages)
}

func save(path string, saveJSON func(string, ...*models.PageContent) error, pages []*models.PageContent) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = SaveCSV(path, pages...)
	case ".md", ".markdown":
		err = SaveMarkdown(path, pages...)
	case ".html", ".htm":
		err = SaveHTML(path, pages...)
	default:
		err = saveJSON(path, pages...)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
