package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/naijamap/internal/api"
	"github.com/jon4hz/naijamap/internal/cache"
	"github.com/jon4hz/naijamap/internal/database"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the NaijaMap server",
	Long:  `Start the NaijaMap web server. This is also what runs when no subcommand is given.`,
	Example: `naijamap serve --config config.yml
naijamap serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	progressCache, err := cache.NewProgressCache(cfg.Cache)
	if err != nil {
		log.Fatalf("failed to create progress cache: %v", err)
	}

	server, err := api.New(cfg, db, progressCache, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("naijamap started successfully", "database", cfg.Database.Driver, "cache", cfg.Cache.Type, "sessions", cfg.SessionStore)
	if err := server.Run(ctx); err != nil {
		log.Error("API server error", "error", err)
		return
	}
	log.Info("shut down gracefully")
}
