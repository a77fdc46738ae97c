package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glasswing-labs/imagedepot/internal/store"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  `Apply pending schema migrations to the configured MySQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())
			logger := GetLogger(cmd.Context())

			if !cfg.DatabaseEnabled() {
				return fmt.Errorf("no database configured")
			}

			mysqlStore := store.NewMySQLStore()
			if err := mysqlStore.Open(cfg.Database.DSN()); err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer func() { _ = mysqlStore.Close() }()

			if err := mysqlStore.Migrate(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			version, err := mysqlStore.GetMigrationVersion()
			if err != nil {
				return err
			}

			logger.Info("migrations applied", "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Database migrated to version %d\n", version)
			return nil
		},
	}
}
