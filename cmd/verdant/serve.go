package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/verdantpress/verdant"
	"github.com/verdantpress/verdant/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the essay store over HTTP",
	Long: `Serve exposes the essay store as a REST API with a WebSocket change
feed. Configuration comes from the environment (VERDANT_ADDR,
VERDANT_ADAPTER, VERDANT_VAULT, VERDANT_POSTGRES_URL), optionally
loaded from a .env file.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := server.LoadConfig()
		if err := cfg.Validate(); err != nil {
			fatal("Invalid configuration", err)
		}

		uri := cfg.VaultPath
		if cfg.Adapter == "postgres" {
			uri = cfg.PostgresURL
		}

		service, err := verdant.New(uri,
			verdant.WithAdapter(cfg.Adapter),
			verdant.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize verdant", err)
		}

		srv := server.New(service, slog.Default())
		fmt.Printf("Listening on %s (%s adapter)\n", cfg.Addr, cfg.Adapter)
		if err := srv.Start(cfg.Addr); err != nil {
			fmt.Fprintf(os.Stderr, "Server stopped: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
