package verdant_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/verdantpress/verdant"
	"github.com/verdantpress/verdant/pkg/core"
)

// Example_basic demonstrates how to open a vault, add an essay, and read it back.
func Example_basic() {
	// Create a temporary directory for the example
	tmpDir, err := os.MkdirTemp("", "verdant-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	// Initialize the Verdant service targeting the temporary directory.
	svc, err := verdant.New(tmpDir, verdant.WithAdapter("fs"))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	actor := verdant.Actor{Privileged: true, Identity: "ed.miller@example.com"}

	// 1. Add a seeded draft
	essay, err := svc.AddEssay(ctx, "future-of-energy", "Solar at Scale", actor)
	if err != nil {
		log.Fatal(err)
	}

	// 2. Read it back
	got, err := svc.GetEssay(ctx, essay.ID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found essay: %s (%s)\n", got.Slug, got.Status)
	// Output:
	// Found essay: solar-at-scale (draft)
}

// ExampleNewViewController demonstrates how a privileged visit to a missing
// slug provisions a persisted record in place.
func ExampleNewViewController() {
	tmpDir, err := os.MkdirTemp("", "verdant-view-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := verdant.New(tmpDir, verdant.WithAdapter("fs"))
	if err != nil {
		log.Fatal(err)
	}

	actor := verdant.Actor{Privileged: true, Identity: "ed.miller@example.com"}
	route := verdant.Route{Section: "future-of-energy", Slug: "grid-storage"}

	vc := verdant.NewViewController(svc, actor, route, nil)

	state, err := vc.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	essay := vc.CurrentEssay()
	fmt.Printf("View: %s\n", state)
	fmt.Printf("Kind: %s\n", core.KindOf(essay.ID))
	fmt.Printf("Author: %s\n", essay.AuthorName)
	// Output:
	// View: show-real
	// Kind: real
	// Author: Ed Miller
}
