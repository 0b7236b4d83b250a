package output

import (
	"encoding/json"
	"io"
	"os"

	urlutil "github.com/law-makers/scrape/internal/utils/url"
	"github.com/law-makers/scrape/pkg/models"
)

// exportPage returns a copy of page fit for JSON export: HTML removed, links and images absolute.
func exportPage(page *models.PageContent) *models.PageContent {
	out := urlutil.ResolveRelativeLinks(page)
	out.HTML = ""
	return out
}

func exportPages(pages []*models.PageContent) []*models.PageContent {
	exported := make([]*models.PageContent, 0, len(pages))
	for _, p := range pages {
		if p != nil {
			exported = append(exported, exportPage(p))
		}
	}
	return exported
}

// WriteJSON writes an indented JSON export to w. A single page is written as an
// object, several as an array.
func WriteJSON(w io.Writer, pages ...*models.PageContent) error {
	exported := exportPages(pages)

	var v any = exported
	if len(exported) == 1 {
		v = exported[0]
	}
	return encodeJSON(w, v)
}

// WriteJSONList is WriteJSON that always writes an array, even for one page
func WriteJSONList(w io.Writer, pages ...*models.PageContent) error {
	return encodeJSON(w, exportPages(pages))
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SaveJSON writes a JSON export of pages (HTML removed) to filepath.
func SaveJSON(filepath string, pages ...*models.PageContent) error {
	return saveJSON(filepath, WriteJSON, pages)
}

// SaveJSONList writes pages to filepath as a JSON array
func SaveJSONList(filepath string, pages ...*models.PageContent) error {
	return saveJSON(filepath, WriteJSONList, pages)
}

func saveJSON(filepath string, write func(io.Writer, ...*models.PageContent) error, pages []*models.PageContent) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	if err := write(file, pages...); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
