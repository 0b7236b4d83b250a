// internal/cli/get.go
package cli

import (
	"fmt"

	"github.com/law-makers/scrape/internal/config"
	"github.com/law-makers/scrape/internal/ui"
	headersutil "github.com/law-makers/scrape/internal/utils/headers"
	"github.com/law-makers/scrape/internal/utils/output"
	"github.com/law-makers/scrape/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var (
		outputPath string
		headers    []string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Extract structured content from a single page",
		Long: `Fetches one page and extracts its metadata, headings, paragraphs, lists,
images, links, spans and tables.

Without -H a random desktop User-Agent is sent. With -H exactly the given
headers are sent.`,
		Example: `  # Print the extracted page as JSON
  scrape get https://example.com

  # Try up to five times before giving up
  scrape get https://example.com --retries 5

  # Save tables as CSV
  scrape get https://example.com/stats --output stats.csv

  # Send custom headers
  scrape get https://example.com -H "Accept-Language: sv-SE"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := GetAppFromCmd(cmd)
			if a == nil {
				return fmt.Errorf("application not initialized")
			}

			hdrs, err := headersutil.ParseHeadersStrict(headers)
			if err != nil {
				return err
			}

			url := args[0]
			log.Info().Str("url", url).Int("retries", a.Config.Retries).Msg("Fetching URL")

			page, err := a.ScrapeWithRetry(cmd.Context(), url, models.RequestOptions{
				Headers: hdrs,
				NoCache: noCache,
			}, a.Config.Retries)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", url, err)
			}

			if outputPath != "" {
				if err := output.Save(outputPath, page); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Success("✓ Saved to "+outputPath))
				return nil
			}
			return output.WriteJSON(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "File to save output to (.json, .csv, .md, .html)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Custom header, repeatable (e.g. -H \"Accept: text/html\")")
	cmd.Flags().Int("retries", config.DefaultRetries, "Maximum attempts before giving up")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the page cache")

	return cmd
}
