package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for logfilter
func NewRootCommand() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "logfilter <file> <pattern>",
		Short: "Print the lines of a CRLF log file that match a wildcard pattern",
		Long: `Logfilter scans a CRLF-terminated text file line by line and prints every
line that matches a shell-style wildcard pattern.

Patterns match the whole line: '?' matches exactly one byte and '*' matches
any run of bytes. zstd and LZ4 compressed files are read transparently.
Use '-' as the file to read standard input.

Examples:
  logfilter app.log '*ERROR*'
  logfilter --pipelined --count app.log.zst '2024-05-??T*'`,
		Version: Version,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, args[0], args[1], &flags)
		},
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags.register(cmd)

	return cmd
}
