package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/verdantpress/verdant"
	"github.com/verdantpress/verdant/pkg/core"
)

var (
	writeID       string
	writeTitle    string
	writeSubtitle string
	writeContent  string
	writeCover    string
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Update an essay",
	Long:  `Update the title, subtitle, cover image, or HTML body of an existing essay. The version is bumped by one.`,
	Run: func(cmd *cobra.Command, args []string) {
		if writeID == "" {
			fmt.Println("Error: --id is required")
			cmd.Usage()
			os.Exit(1)
		}

		service, err := verdant.New(vaultPath,
			verdant.WithAdapter(adapter),
			verdant.WithActor(currentActor()),
			verdant.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize verdant", err)
		}

		var updates core.UpdateEssay
		if cmd.Flags().Changed("title") {
			updates.Title = &writeTitle
		}
		if cmd.Flags().Changed("subtitle") {
			updates.Subtitle = &writeSubtitle
		}
		if cmd.Flags().Changed("content") {
			updates.ContentHTML = &writeContent
		}
		if cmd.Flags().Changed("cover") {
			updates.CoverImageURL = &writeCover
		}
		if updates.Empty() {
			fmt.Println("Error: nothing to update")
			os.Exit(1)
		}

		essay, err := service.UpdateEssay(context.Background(), writeID, updates, currentActor())
		if err != nil {
			fatal("Failed to update essay", err)
		}

		fmt.Printf("Essay '%s' saved (v%d).\n", essay.ID, essay.Version)
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVar(&writeID, "id", "", "Essay ID")
	writeCmd.Flags().StringVar(&writeTitle, "title", "", "New title")
	writeCmd.Flags().StringVar(&writeSubtitle, "subtitle", "", "New subtitle")
	writeCmd.Flags().StringVar(&writeContent, "content", "", "New HTML body")
	writeCmd.Flags().StringVar(&writeCover, "cover", "", "New cover image URL")
	writeCmd.MarkFlagRequired("id")
}
