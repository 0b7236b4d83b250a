// internal/engine/extract/extractor.go
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/scrape/internal/engine"
	"github.com/law-makers/scrape/pkg/models"
)

// FromHTML parses raw markup and extracts its structured content
func FromHTML(html string) (*models.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, engine.NewParseError("", err)
	}
	return FromDocument(doc), nil
}

// FromDocument walks a parsed document into a deduplicated PageContent.
// Missing optional elements yield empty values, never an error.
func FromDocument(doc *goquery.Document) *models.PageContent {
	content := &models.PageContent{
		Titles:     []models.Title{},
		Paragraphs: []models.Paragraph{},
		Lists:      []models.List{},
		Images:     []models.Image{},
		Links:      []models.Link{},
		Spans:      []string{},
		Tables:     []models.Table{},
	}
	if doc == nil {
		return content
	}

	content.Text = strings.TrimSpace(doc.Find("body").Text())
	content.Metadata = Metadata(doc.Selection)
	content.Titles = Titles(doc.Selection)
	content.Paragraphs = Paragraphs(doc.Selection)
	content.Lists = Lists(doc.Selection)
	content.Images = Images(doc.Selection)
	content.Links = Links(doc.Selection)
	content.Spans = Spans(doc.Selection)
	content.Tables = Tables(doc.Selection)

	return content
}

// Metadata reads <title>, description and keywords
func Metadata(root *goquery.Selection) models.Metadata {
	md := models.Metadata{
		Title: strings.TrimSpace(root.Find("title").First().Text()),
	}

	if content, ok := root.Find(`meta[name="description"]`).First().Attr("content"); ok {
		md.Description = content
	}

	keywords := root.Find(`meta[name="keyword"]`).First()
	if keywords.Length() == 0 {
		keywords = root.Find(`meta[name="keywords"]`).First()
	}
	if content, ok := keywords.Attr("content"); ok {
		md.Keywords = content
	}

	return md
}

// Titles returns h1-h6 headings in document order, unique by trimmed text
func Titles(root *goquery.Selection) []models.Title {
	titles := []models.Title{}
	seen := make(map[string]bool)

	root.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		titles = append(titles, models.Title{Tag: goquery.NodeName(sel), Text: text})
	})

	return titles
}

// Paragraphs returns <p> elements unique by trimmed text
func Paragraphs(root *goquery.Selection) []models.Paragraph {
	paragraphs := []models.Paragraph{}
	for _, text := range uniqueText(root, "p") {
		paragraphs = append(paragraphs, models.Paragraph{Tag: "p", Text: text})
	}
	return paragraphs
}

// Spans returns <span> text unique by trimmed text
func Spans(root *goquery.Selection) []string {
	return uniqueText(root, "span")
}

// Lists returns every <ul> with at least one non-empty item.
// Lists with identical items are all kept.
func Lists(root *goquery.Selection) []models.List {
	lists := []models.List{}

	root.Find("ul").Each(func(_ int, ul *goquery.Selection) {
		items := []string{}
		ul.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := strings.TrimSpace(li.Text()); text != "" {
				items = append(items, text)
			}
		})
		if len(items) > 0 {
			lists = append(lists, models.List{Tag: "ul", Items: items})
		}
	})

	return lists
}

// Images returns <img> elements with a non-empty src, unique by ImageKey
func Images(root *goquery.Selection) []models.Image {
	images := []models.Image{}
	seen := make(map[string]bool)

	root.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if src == "" {
			return
		}
		alt, _ := sel.Attr("alt")
		title, _ := sel.Attr("title")

		key := ImageKey(src, alt, title)
		if seen[key] {
			return
		}
		seen[key] = true
		images = append(images, models.Image{Src: src, Alt: alt, Title: title})
	})

	return images
}

// ImageKey builds the dedup key for an image from the filename portion of
// src (query string dropped), alt and title
func ImageKey(src, alt, title string) string {
	name := src
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.Index(name, "?"); idx >= 0 {
		name = name[:idx]
	}
	return name + "-" + alt + "-" + title
}

// Links returns <a> elements with a non-empty href, unique by href
func Links(root *goquery.Selection) []models.Link {
	links := []models.Link{}
	seen := make(map[string]bool)

	root.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || seen[href] {
			return
		}
		seen[href] = true

		link := models.Link{
			Href: href,
			Text: strings.TrimSpace(sel.Text()),
		}
		link.Title, _ = sel.Attr("title")
		link.Rel, _ = sel.Attr("rel")
		link.Dataset = Dataset(sel)
		links = append(links, link)
	})

	return links
}

// Tables returns each <table> as rows of trimmed <td>/<th> text.
// Tables without rows are dropped; duplicates are detected by outer markup.
func Tables(root *goquery.Selection) []models.Table {
	tables := []models.Table{}
	seen := make(map[string]bool)

	root.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := models.Table{}
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := []string{}
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			rows = append(rows, cells)
		})
		if len(rows) == 0 {
			return
		}

		markup, err := goquery.OuterHtml(table)
		if err != nil {
			return
		}
		markup = strings.TrimSpace(markup)
		if seen[markup] {
			return
		}
		seen[markup] = true
		tables = append(tables, rows)
	})

	return tables
}

// Dataset collects data-* attributes keyed the way the DOM dataset names
// them: prefix dropped, dash-separated words camel-cased.
// Returns nil when the element carries none.
func Dataset(sel *goquery.Selection) map[string]string {
	if len(sel.Nodes) == 0 {
		return nil
	}

	var data map[string]string
	for _, attr := range sel.Nodes[0].Attr {
		if !strings.HasPrefix(attr.Key, "data-") || len(attr.Key) == len("data-") {
			continue
		}
		if data == nil {
			data = make(map[string]string)
		}
		data[camelCase(strings.TrimPrefix(attr.Key, "data-"))] = attr.Val
	}
	return data
}

func camelCase(s string) string {
	parts := strings.Split(s, "-")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// uniqueText returns the trimmed, non-empty text of every element matching
// selector, keeping the first occurrence of each value
func uniqueText(root *goquery.Selection, selector string) []string {
	out := []string{}
	seen := make(map[string]bool)

	root.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		out = append(out, text)
	})

	return out
}
