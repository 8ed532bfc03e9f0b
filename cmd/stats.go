package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jon4hz/naijamap/internal/database"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"db-stats"},
	Short:   "Show database statistics",
	Long:    `Display how many players are registered and how many progress records exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		db, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Registered Users: %s\n", humanize.Comma(stats.Users))
		fmt.Printf("Progress Records: %s\n", humanize.Comma(stats.ProgressRecords))
		if stats.UsersWithoutRow > 0 {
			fmt.Printf("Users Without Progress: %s (created on their next visit)\n", humanize.Comma(stats.UsersWithoutRow))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
