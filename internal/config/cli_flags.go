package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringArray("proxy", nil, "HTTP proxy to rotate through (repeatable)")
	cmd.PersistentFlags().String("timeout", "", "Per-request timeout (e.g. 30s)")
	cmd.PersistentFlags().String("user-agent", "", "Send this User-Agent instead of a random one")
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().String("backoff", "", "Pause before the first retry, doubled per attempt (e.g. 500ms)")
}
