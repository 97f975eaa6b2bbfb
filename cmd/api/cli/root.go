// Package cli holds the gifstore subcommands.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"gifstore/internal/config"
	"gifstore/internal/logging"
)

// VersionInfo is stamped at build time.
type VersionInfo struct {
	Version string
	Commit  string
}

// NewRootCommand returns the gifstore root command. Running it without a
// subcommand starts the server.
func NewRootCommand(info VersionInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gifstore",
		Short:         "GIF hosting API",
		Version:       fmt.Sprintf("%s (%s)", info.Version, info.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	return cmd
}

// bootstrap loads configuration and installs the process logger.
func bootstrap() (*config.AppConfig, *slog.Logger) {
	cfg := config.Load()
	logger := logging.New(cfg.Log, cfg.Location())
	slog.SetDefault(logger)
	return cfg, logger
}
