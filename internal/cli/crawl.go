// internal/cli/crawl.go
package cli

import (
	"fmt"

	"github.com/law-makers/scrape/internal/config"
	"github.com/law-makers/scrape/internal/crawl"
	"github.com/law-makers/scrape/internal/ui"
	"github.com/law-makers/scrape/internal/utils/output"
	"github.com/law-makers/scrape/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newCrawlCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "crawl <url>...",
		Short: "Follow \"next page\" links and extract every page",
		Long: `Starts at each URL and keeps following the page's "next" link until
there is none, a page fails, or --max-pages pages have been collected.

Several start URLs are crawled in parallel, at most --concurrency at a time.
A page that fails ends its crawl; the pages collected before it are kept.`,
		Example: `  # Crawl up to five pages of a listing
  scrape crawl https://example.com/list

  # Crawl two listings in parallel and save everything as Markdown
  scrape crawl https://a.example.com https://b.example.com --max-pages 10 --output pages.md

  # Stop at the first failed page instead of retrying it
  scrape crawl https://example.com/list --retries 1

  # Pause 500ms, then 1s, between attempts on a failing page
  scrape crawl https://example.com/list --backoff 500ms`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := GetAppFromCmd(cmd)
			if a == nil {
				return fmt.Errorf("application not initialized")
			}

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("Crawling"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetVisibility(a.Config.LogLevel != "error" && !a.Config.JSONLog),
			)

			opts := []crawl.Option{
				crawl.WithOnPage(func(n int, page *models.PageContent) {
					_ = bar.Add(1)
				}),
			}
			if a.Config.Retries > 1 {
				opts = append(opts, crawl.WithRetry(a.Retry))
			}

			log.Info().
				Strs("urls", args).
				Int("max_pages", a.Config.MaxPages).
				Msg("Starting crawl")

			results, err := a.CrawlMany(cmd.Context(), args, a.Config.MaxPages, opts...)
			_ = bar.Finish()

			var pages []*models.PageContent
			for _, res := range results {
				pages = append(pages, res...)
			}

			if len(pages) > 0 {
				if outputPath != "" {
					if saveErr := output.SaveList(outputPath, pages...); saveErr != nil {
						return saveErr
					}
					fmt.Fprintln(cmd.ErrOrStderr(), ui.Success(fmt.Sprintf("✓ Saved %d pages to %s", len(pages), outputPath)))
				} else if writeErr := output.WriteJSONList(cmd.OutOrStdout(), pages...); writeErr != nil {
					return writeErr
				}
			}

			return err
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "File to save output to (.json, .csv, .md, .html)")
	cmd.Flags().Int("max-pages", config.DefaultMaxPages, "Maximum pages to collect per start URL")
	cmd.Flags().Int("retries", config.DefaultRetries, "Attempts per page before the crawl stops; 1 disables retrying")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency, "Start URLs crawled at the same time")

	return cmd
}
