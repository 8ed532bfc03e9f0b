package cmd

import (
	"fmt"

	"github.com/jon4hz/naijamap/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Run database migrations to set up or update the users and progress tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		db, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		fmt.Printf("Database migrations completed successfully! (driver: %s)\n", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
