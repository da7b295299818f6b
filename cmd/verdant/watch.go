package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/verdantpress/verdant"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Stream essay change events",
	Long: `Watch tails the vault for changes and prints one line per event.
The pattern is a glob over "section/slug", e.g. "future-of-energy/*"
or "**". Only the fs adapter supports watching.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := args[0]

		service, err := verdant.New(vaultPath,
			verdant.WithAdapter(adapter),
			verdant.WithMustExist(true),
			verdant.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize verdant", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		events, err := service.Watch(ctx, pattern)
		if err != nil {
			fatal("Failed to start watching", err)
		}

		for event := range events {
			fmt.Printf("%s  %-6s %s/%s %s\n",
				time.Unix(event.Timestamp, 0).Format("15:04:05"), event.Type, event.Section, event.Slug, event.ID)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
