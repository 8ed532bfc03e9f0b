package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/naijamap/internal/database"
	"github.com/jon4hz/naijamap/internal/progress"
	"github.com/jon4hz/naijamap/internal/regions"
	"github.com/jon4hz/naijamap/internal/web/pages"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered players",
	Long:  `List every registered player with the number of states they have named so far.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		db, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		users, err := db.GetAllUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		if len(users) == 0 {
			fmt.Println("No users registered yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tGUESSED\tHIGH SCORE\tLAST SAVED") //nolint:errcheck
		for _, u := range users {
			guessed, highScore, lastSaved := "-", "-", "never"
			if u.Progress != nil {
				list, err := progress.Regions(u.Progress)
				if err != nil {
					log.Warn("unreadable progress", "username", u.Username, "error", err)
				}
				guessed = fmt.Sprintf("%d/%d", regions.CountKnown(list), regions.Total())
				highScore = pages.FormatCount(u.Progress.HighScore)
				lastSaved = pages.FormatRelativeTime(u.Progress.UpdatedAt)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, guessed, highScore, lastSaved) //nolint:errcheck
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
