package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/verdantpress/verdant"
)

var (
	readJSON bool
)

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Read an essay",
	Long:  `Read an essay by its ID. Outputs the HTML body by default, or the full record with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

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

		essay, err := service.GetEssay(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading essay: %v\n", err)
			os.Exit(1)
		}

		if readJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(essay); err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
				os.Exit(1)
			}
			return
		}

		// Default: Print Content
		fmt.Print(essay.ContentHTML)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}
