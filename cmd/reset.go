package cmd

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/naijamap/internal/cache"
	"github.com/jon4hz/naijamap/internal/database"
	"github.com/jon4hz/naijamap/internal/progress"
	"github.com/spf13/cobra"
)

var resetCmdFlags struct {
	Username string
}

var resetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Clear the guessed states of a player",
	Long:    `This command clears the persisted list of guessed states for one player. The high score is kept.`,
	Example: `naijamap reset --username alice`,
	Run:     reset,
}

func init() {
	resetCmd.Flags().StringVarP(&resetCmdFlags.Username, "username", "u", "", "Player whose progress should be cleared")
	_ = resetCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(resetCmd)
}

func reset(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	// a shared redis cache must not keep serving the old list
	progressCache, err := cache.NewProgressCache(cfg.Cache)
	if err != nil {
		log.Fatalf("failed to create progress cache: %v", err)
	}

	user, err := db.GetUserByUsername(cmd.Context(), resetCmdFlags.Username)
	if errors.Is(err, database.ErrNotFound) {
		log.Fatal("no such user", "username", resetCmdFlags.Username)
	}
	if err != nil {
		log.Fatalf("failed to look up user: %v", err)
	}

	if err := progress.New(db, progressCache).Reset(cmd.Context(), user.ID); err != nil {
		log.Fatalf("failed to reset progress: %v", err)
	}

	log.Info("Successfully reset progress", "username", user.Username)
}
