package output

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/scrape/internal/utils/url"
	"github.com/law-makers/scrape/pkg/models"
)

// ToMarkdown converts the page HTML to Markdown with links resolved against the page URL
func ToMarkdown(page *models.PageContent) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}

			resolved := urlutil.ResolveURL(page.URL, href)
			var titlePart string
			if title, ok := selec.Attr("title"); ok && title != "" {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s%s)", strings.TrimSpace(content), resolved, titlePart)
			return &str
		},
	})

	cleaned, err := CleanHTML(page.HTML)
	if err != nil {
		return "", err
	}

	return converter.ConvertString(cleaned)
}

// SaveMarkdown converts each page's HTML to Markdown and writes them to filepath,
// separated by horizontal rules
func SaveMarkdown(filepath string, pages ...*models.PageContent) error {
	var parts []string
	for _, page := range pages {
		if page == nil {
			continue
		}
		mdStr, err := ToMarkdown(page)
		if err != nil {
			return fmt.Errorf("convert %s: %w", page.URL, err)
		}
		parts = append(parts, mdStr)
	}
	return os.WriteFile(filepath, []byte(strings.Join(parts, "\n\n---\n\n")+"\n"), 0644)
}
