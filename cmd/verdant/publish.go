package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/verdantpress/verdant"
)

var publishCmd = &cobra.Command{
	Use:   "publish [id]",
	Short: "Publish a draft essay",
	Long:  `Publish moves an essay to the published status. Publishing an already published essay is a no-op.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runStatusChange(args[0], true)
	},
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish [id]",
	Short: "Return a published essay to draft",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runStatusChange(args[0], false)
	},
}

func runStatusChange(id string, publish bool) {
	service, err := verdant.New(vaultPath,
		verdant.WithAdapter(adapter),
		verdant.WithMustExist(true),
		verdant.WithActor(currentActor()),
		verdant.WithLogger(slog.Default()),
	)
	if err != nil {
		fmt.Printf("Error initializing verdant: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var essay verdant.Essay
	if publish {
		essay, err = service.Publish(ctx, id, currentActor())
	} else {
		essay, err = service.Unpublish(ctx, id, currentActor())
	}
	if err != nil {
		fmt.Printf("Error changing status: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Essay '%s/%s' is now %s (v%d).\n", essay.Section, essay.Slug, essay.Status, essay.Version)
}

func init() {
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(unpublishCmd)
}
