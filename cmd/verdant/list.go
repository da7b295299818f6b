package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/verdantpress/verdant"
	"github.com/verdantpress/verdant/pkg/core"
)

var (
	listJSON   bool
	listStatus string
)

var listCmd = &cobra.Command{
	Use:   "list [section]",
	Short: "List all essays in a section",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		section := args[0]

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

		essays, err := service.ListEssays(context.Background(), section)
		if err != nil {
			fmt.Printf("Error listing essays: %v\n", err)
			os.Exit(1)
		}

		// Filter
		var filtered []core.Essay
		for _, essay := range essays {
			if listStatus != "" && string(essay.Status) != listStatus {
				continue
			}
			filtered = append(filtered, essay)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(filtered); err != nil {
				fmt.Printf("Error encoding JSON: %v\n", err)
				os.Exit(1)
			}
			return
		}

		for _, essay := range filtered {
			fmt.Printf("%s  %-10s v%d  %s\n", essay.ID, essay.Status, essay.Version, essay.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter essays by status (draft, published)")
}
