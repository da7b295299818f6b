package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/verdantpress/verdant"
)

var (
	verbose   bool
	vaultPath string
	adapter   string
	actorID   string
	actorRole string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "verdant",
	Short: "A content engine for versioned essays stored as Markdown + Frontmatter",
	Long: `Verdant manages essay-style documents through their draft and published
lifecycle. Documents live in a local vault of Markdown files by default,
or in PostgreSQL or a remote document store via --adapter.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// currentActor builds the acting user from the persistent flags.
func currentActor() verdant.Actor {
	return verdant.Actor{
		Privileged: actorRole == "editor" || actorRole == "admin",
		Identity:   actorID,
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", ".", "Path to the essay vault (or URL for the rest adapter)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "fs", "Storage adapter (fs, postgres, rest)")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "", "Acting user identity (email)")
	rootCmd.PersistentFlags().StringVar(&actorRole, "role", "editor", "Acting user role (editor, admin, reader)")
}
