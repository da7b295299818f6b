package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/verdantpress/verdant"
)

var addCmd = &cobra.Command{
	Use:   "add [section] [title]",
	Short: "Add a new draft essay to a section",
	Long:  `Add creates a seeded draft essay in the given section. The slug is derived from the title.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		section, title := args[0], args[1]

		service, err := verdant.New(vaultPath,
			verdant.WithAdapter(adapter),
			verdant.WithActor(currentActor()),
			verdant.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize verdant", err)
		}

		essay, err := service.AddEssay(context.Background(), section, title, currentActor())
		if err != nil {
			fatal("Failed to add essay", err)
		}

		fmt.Printf("Essay '%s/%s' created (%s).\n", essay.Section, essay.Slug, essay.ID)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
