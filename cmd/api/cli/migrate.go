package cli

import (
	"github.com/spf13/cobra"

	"gifstore/internal/server"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it is missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := bootstrap()
			db, err := server.OpenDatabase(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info("database is migrated", "db_host", cfg.Database.Host)
			return nil
		},
	}
}
