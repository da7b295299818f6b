package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/verdantpress/verdant/pkg/core"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"New Essay":                "new-essay",
		"  Grid Storage, Part 2 ":  "grid-storage-part-2",
		"Éolien":                   "olien",
		"--- already -- slugged -": "already-slugged",
	}
	for title, want := range cases {
		if got := core.Slugify(title); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestService_AddEssay(t *testing.T) {
	ctx := context.Background()
	editor := core.Actor{Privileged: true, Identity: "ed@x.com"}

	t.Run("Seeds A Fresh Draft", func(t *testing.T) {
		repo := newFakeRepo()
		svc := core.NewService(repo, nil)

		essay, err := svc.AddEssay(ctx, "future", "Grid Storage", editor)
		if err != nil {
			t.Fatalf("AddEssay failed: %v", err)
		}
		if essay.Slug != "grid-storage" {
			t.Errorf("expected derived slug, got %q", essay.Slug)
		}
		if essay.Status != core.StatusDraft || essay.Version != 1 {
			t.Errorf("bad seed: %+v", essay)
		}
		if essay.ContentHTML == "" || essay.ContentJSON == "" {
			t.Error("both content representations must be seeded")
		}
	})

	t.Run("Rejects Slug Collisions", func(t *testing.T) {
		repo := newFakeRepo()
		repo.seed(core.Essay{ID: "e1", Section: "future", Slug: "grid-storage"})
		svc := core.NewService(repo, nil)

		if _, err := svc.AddEssay(ctx, "future", "Grid Storage", editor); err == nil {
			t.Error("expected collision error")
		}
	})
}

func TestService_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	editor := core.Actor{Privileged: true, Identity: "ed@x.com"}

	repo := newFakeRepo()
	repo.seed(core.Essay{ID: "e1", Section: "future", Slug: "solar", Status: core.StatusDraft, Version: 1})
	svc := core.NewService(repo, nil)

	published, err := svc.Publish(ctx, "e1", editor)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if published.Status != core.StatusPublished || published.Version != 2 {
		t.Fatalf("after publish: %+v", published)
	}

	if _, err := svc.Publish(ctx, "missing", editor); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_UpdateEssay(t *testing.T) {
	ctx := context.Background()
	editor := core.Actor{Privileged: true, Identity: "ed@x.com"}

	repo := newFakeRepo()
	svc := core.NewService(repo, nil)

	if _, err := svc.UpdateEssay(ctx, "template-x", core.UpdateEssay{}, editor); !errors.Is(err, core.ErrReadOnlyEssay) {
		t.Errorf("expected ErrReadOnlyEssay for template id, got %v", err)
	}
	if _, err := svc.UpdateEssay(ctx, "dummy-x", core.UpdateEssay{}, editor); !errors.Is(err, core.ErrReadOnlyEssay) {
		t.Errorf("expected ErrReadOnlyEssay for dummy id, got %v", err)
	}
}
