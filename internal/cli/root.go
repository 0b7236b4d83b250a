// internal/cli/root.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/scrape/internal/app"
	"github.com/law-makers/scrape/internal/config"
	"github.com/law-makers/scrape/internal/engine"
	"github.com/law-makers/scrape/internal/reqctx"
	"github.com/law-makers/scrape/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract structured content from web pages and follow pagination",
		Long: `Scrape fetches pages over HTTP and extracts titles, paragraphs, lists,
images, links, spans and tables. It can retry failed fetches and follow
"next page" links across paginated listings.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(cmd)
	cmd.Flags().BoolP("help", "h", false, "Help for Scrape")
	cmd.Flags().Bool("version", false, "Version for Scrape")

	// Initialize the application lazily so -h/--help stays cheap
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.HTTPTimeout)
		defer cancel()
		_ = a.Close(ctx)
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		renderHelp(c.OutOrStdout(), c, true)
	})
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		renderHelp(c.ErrOrStderr(), c, false)
		return nil
	})

	cmd.AddCommand(newGetCmd(), newCrawlCmd())
	return cmd
}

// Execute runs the root command with ctx, which is cancelled on interrupt.
// It returns the process exit code.
func Execute(ctx context.Context) int {
	return run(ctx, rootCmd, os.Args[1:], os.Stderr)
}

func run(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	ctx = reqctx.WithRequestContext(ctx)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, ui.Info("interrupted"))
		return 130
	}

	fmt.Fprintln(stderr, ui.Error("Error: ")+reqctx.NewRequestError(ctx, err).Error())
	if errors.Is(err, engine.ErrInvalidInput) {
		return 2
	}
	return 1
}

// renderHelp writes colorized help; full adds the description and examples
func renderHelp(w io.Writer, cmd *cobra.Command, full bool) {
	if full {
		fmt.Fprintf(w, "\n%s\n", ui.Heading(strings.ToUpper(cmd.Name())))
		if cmd.Short != "" {
			fmt.Fprintf(w, "%s\n", cmd.Short)
		}
		if cmd.Long != "" && cmd.Long != cmd.Short {
			fmt.Fprintf(w, "\n%s\n", cmd.Long)
		}
	}

	section(w, "Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s%s%s %s<command>%s %s[flags]%s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}

	if full && cmd.HasExample() {
		section(w, "Examples")
		for _, example := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(example)
			switch {
			case trimmed == "":
			case strings.HasPrefix(trimmed, "#"):
				fmt.Fprintf(w, "  %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
			default:
				fmt.Fprintf(w, "  %s$ %s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		section(w, "Commands")
		var available []*cobra.Command
		maxLen := 0
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && c.Name() != "help" {
				available = append(available, c)
				maxLen = max(maxLen, len(c.Name()))
			}
		}
		for _, c := range available {
			padding := strings.Repeat(" ", maxLen-len(c.Name())+2)
			fmt.Fprintf(w, "  %s%s%s%s%s%s%s\n",
				ui.ColorCyan, c.Name(), ui.ColorReset,
				padding,
				ui.ColorDim, c.Short, ui.ColorReset)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		section(w, "Flags")
		printFlags(w, cmd.LocalFlags().FlagUsages())
	}
	if full && cmd.HasAvailableInheritedFlags() {
		section(w, "Global Flags")
		printFlags(w, cmd.InheritedFlags().FlagUsages())
	}

	fmt.Fprintf(w, "\n%sUse \"%s --help\" for more information.%s\n\n", ui.ColorDim, cmd.CommandPath(), ui.ColorReset)
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold(title))
}

// printFlags prints pflag usage lines with the flag in green and its description dimmed
func printFlags(w io.Writer, flagUsages string) {
	const minWidth = 28

	lines := strings.Split(flagUsages, "\n")
	width := minWidth
	for _, line := range lines {
		if flag, _, ok := splitFlagLine(line); ok {
			width = max(width, len(flag))
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		flag, desc, ok := splitFlagLine(line)
		if !ok {
			fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(" ", width+4), ui.ColorDim, strings.TrimSpace(line), ui.ColorReset)
			continue
		}
		fmt.Fprintf(w, "  %s%s%s%s%s%s%s\n",
			ui.ColorGreen, flag, ui.ColorReset,
			strings.Repeat(" ", width-len(flag)+2),
			ui.ColorDim, desc, ui.ColorReset)
	}
}

func splitFlagLine(line string) (flag, desc string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "-") {
		return "", "", false
	}
	flag, desc, _ = strings.Cut(trimmed, "  ")
	return strings.TrimSpace(flag), strings.TrimSpace(desc), true
}
