package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verdantpress/verdant/pkg/core"
)

func strptr(s string) *string { return &s }

func TestEditSession_InitialEditMode(t *testing.T) {
	editor := core.Actor{Privileged: true, Identity: "ed@x.com"}
	reader := core.Actor{Privileged: false, Identity: "r@x.com"}

	realEssay := core.Essay{ID: "e1", Section: "future", Slug: "solar", Status: core.StatusDraft, Version: 1}
	resolveReal := core.Resolution{Essay: &realEssay, Kind: core.KindReal}

	t.Run("Edit Flag Plus Privilege On Real Essay", func(t *testing.T) {
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar", Edit: true}}
		s := core.NewEditSession(newFakeRepo(), nav, editor, resolveReal)
		defer s.Close()
		if !s.Editing() {
			t.Error("expected edit mode on")
		}
	})

	t.Run("No Flag Means No Edit Mode", func(t *testing.T) {
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar"}}
		s := core.NewEditSession(newFakeRepo(), nav, editor, resolveReal)
		defer s.Close()
		if s.Editing() {
			t.Error("expected edit mode off without flag")
		}
	})

	t.Run("Unprivileged Never Edits Regardless Of Flag", func(t *testing.T) {
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar", Edit: true}}
		s := core.NewEditSession(newFakeRepo(), nav, reader, resolveReal)
		defer s.Close()
		if s.Editing() {
			t.Error("unprivileged viewer must not start in edit mode")
		}
	})

	t.Run("Dummy Essay Never Starts Editing", func(t *testing.T) {
		dummy := core.Essay{ID: "dummy-sample", Section: "future", Slug: "sample"}
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "sample", Edit: true}}
		s := core.NewEditSession(newFakeRepo(), nav, editor, core.Resolution{Essay: &dummy, Kind: core.KindDummy})
		defer s.Close()
		if s.Editing() {
			t.Error("dummy essay must not start in edit mode")
		}
	})

	t.Run("Template Forces Edit Mode And Rewrites Route", func(t *testing.T) {
		template := core.NewTemplateEssay("future", "new-essay", editor)
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "new-essay"}}
		s := core.NewEditSession(newFakeRepo(), nav, editor, core.Resolution{Essay: &template, Kind: core.KindTemplate})
		defer s.Close()
		if !s.Editing() {
			t.Error("template must force edit mode for an editor")
		}
		if !nav.Route().Edit {
			t.Error("route edit flag must be rewritten")
		}
		if nav.rewrites != 1 {
			t.Errorf("expected exactly one rewrite, got %d", nav.rewrites)
		}
	})

	t.Run("Template Without Privilege Stays Read Only", func(t *testing.T) {
		template := core.NewTemplateEssay("future", "new-essay", reader)
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "new-essay"}}
		s := core.NewEditSession(newFakeRepo(), nav, reader, core.Resolution{Essay: &template, Kind: core.KindTemplate})
		defer s.Close()
		if s.Editing() {
			t.Error("unprivileged viewer must not edit a template")
		}
	})
}

func TestEditSession_Save(t *testing.T) {
	ctx := context.Background()
	editor := core.Actor{Privileged: true, Identity: "ed@x.com"}

	t.Run("Real Essay Delegates To Update", func(t *testing.T) {
		repo := newFakeRepo()
		repo.seed(core.Essay{ID: "e1", Section: "future", Slug: "solar", Status: core.StatusDraft, Version: 1})
		essay, _ := repo.Get(ctx, "e1")
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar", Edit: true}}
		s := core.NewEditSession(repo, nav, editor, core.Resolution{Essay: &essay, Kind: core.KindReal})
		defer s.Close()

		saved, err := s.Save(ctx, core.UpdateEssay{Title: strptr("Solar Futures")})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if saved.Title != "Solar Futures" {
			t.Errorf("title not applied: %q", saved.Title)
		}
		if saved.Version != 2 {
			t.Errorf("expected version bump to 2, got %d", saved.Version)
		}
		if saved.UpdatedBy != "ed@x.com" {
			t.Errorf("save not attributed: %q", saved.UpdatedBy)
		}
		if repo.creates() != 0 || repo.updates() != 1 {
			t.Errorf("expected one update and no create, got creates=%d updates=%d", repo.creates(), repo.updates())
		}
	})

	t.Run("Template Essay Creates Instead Of Updating", func(t *testing.T) {
		repo := newFakeRepo()
		template := core.NewTemplateEssay("future", "new-essay", editor)
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "new-essay"}}
		s := core.NewEditSession(repo, nav, editor, core.Resolution{Essay: &template, Kind: core.KindTemplate})
		defer s.Close()

		saved, err := s.Save(ctx, core.UpdateEssay{Title: strptr("Geothermal")})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if repo.updates() != 0 {
			t.Error("template save must never call update")
		}
		if repo.creates() != 1 {
			t.Errorf("expected exactly one create, got %d", repo.creates())
		}
		if core.KindOf(saved.ID) != core.KindReal {
			t.Errorf("created essay must be real, got id %s", saved.ID)
		}
		if saved.Title != "Geothermal" {
			t.Errorf("edits were not carried into the create: %q", saved.Title)
		}

		// The session now treats the new id as authoritative.
		if s.Kind() != core.KindReal {
			t.Error("session must adopt the created record")
		}
		again, err := s.Save(ctx, core.UpdateEssay{Subtitle: strptr("deep heat")})
		if err != nil {
			t.Fatalf("second save failed: %v", err)
		}
		if again.ID != saved.ID {
			t.Errorf("second save targeted %s, want %s", again.ID, saved.ID)
		}
		if repo.updates() != 1 {
			t.Errorf("second save must be an update, got updates=%d", repo.updates())
		}
	})

	t.Run("Dummy Essay Is Read Only", func(t *testing.T) {
		repo := newFakeRepo()
		dummy := core.Essay{ID: "dummy-sample", Section: "future", Slug: "sample"}
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "sample"}}
		s := core.NewEditSession(repo, nav, editor, core.Resolution{Essay: &dummy, Kind: core.KindDummy})
		defer s.Close()

		if _, err := s.Save(ctx, core.UpdateEssay{Title: strptr("x")}); !errors.Is(err, core.ErrReadOnlyEssay) {
			t.Errorf("expected ErrReadOnlyEssay, got %v", err)
		}
		if repo.creates() != 0 && repo.updates() != 0 {
			t.Error("dummy save must not touch the repository")
		}
	})

	t.Run("Reading Time Recomputed On Body Change", func(t *testing.T) {
		repo := newFakeRepo()
		repo.seed(core.Essay{ID: "e1", Section: "future", Slug: "solar", Version: 1, ReadingTimeMinutes: 1})
		essay, _ := repo.Get(ctx, "e1")
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar"}}
		s := core.NewEditSession(repo, nav, editor, core.Resolution{Essay: &essay, Kind: core.KindReal})
		defer s.Close()

		body := "<p>"
		for i := 0; i < 500; i++ {
			body += "word "
		}
		body += "</p>"
		saved, err := s.Save(ctx, core.UpdateEssay{ContentHTML: strptr(body)})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if saved.ReadingTimeMinutes != 3 {
			t.Errorf("expected recomputed reading time 3, got %d", saved.ReadingTimeMinutes)
		}
	})

	t.Run("Save Failure Surfaces To Caller", func(t *testing.T) {
		repo := newFakeRepo()
		repo.seed(core.Essay{ID: "e1", Section: "future", Slug: "solar", Version: 1})
		repo.updateErr = errors.New("store unreachable")
		essay, _ := repo.Get(ctx, "e1")
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar"}}
		s := core.NewEditSession(repo, nav, editor, core.Resolution{Essay: &essay, Kind: core.KindReal})
		defer s.Close()

		_, err := s.Save(ctx, core.UpdateEssay{Title: strptr("x")})
		var saveErr *core.SaveError
		if !errors.As(err, &saveErr) {
			t.Fatalf("expected SaveError, got %v", err)
		}
		// Last-known-good essay is untouched.
		if s.Essay().Title != "" {
			t.Errorf("failed save must not mutate the session essay: %+v", s.Essay())
		}
	})

	t.Run("Closed Session Discards Results", func(t *testing.T) {
		repo := newFakeRepo()
		repo.seed(core.Essay{ID: "e1", Section: "future", Slug: "solar", Version: 1})
		essay, _ := repo.Get(ctx, "e1")
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar"}}
		s := core.NewEditSession(repo, nav, editor, core.Resolution{Essay: &essay, Kind: core.KindReal})
		s.Close()

		if _, err := s.Save(ctx, core.UpdateEssay{Title: strptr("x")}); !errors.Is(err, core.ErrSessionClosed) {
			t.Errorf("expected ErrSessionClosed, got %v", err)
		}
	})
}

func TestEditSession_Autosave(t *testing.T) {
	ctx := context.Background()
	editor := core.Actor{Privileged: true, Identity: "ed@x.com"}

	newRealSession := func(repo *fakeRepo, interval time.Duration) *core.EditSession {
		repo.seed(core.Essay{ID: "e1", Section: "future", Slug: "solar", Version: 1})
		essay, _ := repo.Get(context.Background(), "e1")
		nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar"}}
		return core.NewEditSession(repo, nav, editor, core.Resolution{Essay: &essay, Kind: core.KindReal},
			core.WithAutosaveInterval(interval))
	}

	t.Run("Debounced Flush After Interval", func(t *testing.T) {
		repo := newFakeRepo()
		s := newRealSession(repo, 20*time.Millisecond)
		defer s.Close()

		s.QueueAutosave(core.UpdateEssay{Title: strptr("a")})
		s.QueueAutosave(core.UpdateEssay{Subtitle: strptr("b")})

		deadline := time.Now().Add(time.Second)
		for repo.updates() == 0 {
			if time.Now().After(deadline) {
				t.Fatal("autosave never flushed")
			}
			time.Sleep(5 * time.Millisecond)
		}
		if repo.updates() != 1 {
			t.Errorf("merged autosave must flush once, got %d updates", repo.updates())
		}
		essay, _ := repo.Get(ctx, "e1")
		if essay.Title != "a" || essay.Subtitle != "b" {
			t.Errorf("queued edits were not merged: %+v", essay)
		}
	})

	t.Run("Explicit Flush Persists Immediately", func(t *testing.T) {
		repo := newFakeRepo()
		s := newRealSession(repo, time.Hour)
		defer s.Close()

		s.QueueAutosave(core.UpdateEssay{Title: strptr("flushed")})
		if err := s.Flush(ctx); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}
		if repo.updates() != 1 {
			t.Errorf("expected one update, got %d", repo.updates())
		}
	})

	t.Run("Manual Save Wins Over Concurrent Autosave", func(t *testing.T) {
		repo := newFakeRepo()
		s := newRealSession(repo, time.Hour)
		defer s.Close()

		s.QueueAutosave(core.UpdateEssay{Title: strptr("queued")})
		if _, err := s.Save(ctx, core.UpdateEssay{Title: strptr("manual")}); err != nil {
			t.Fatalf("manual save failed: %v", err)
		}
		essay, _ := repo.Get(ctx, "e1")
		if essay.Title != "manual" {
			t.Errorf("manual save lost: %q", essay.Title)
		}
	})

	t.Run("Close Clears Pending Timer", func(t *testing.T) {
		repo := newFakeRepo()
		s := newRealSession(repo, 10*time.Millisecond)
		s.QueueAutosave(core.UpdateEssay{Title: strptr("never")})
		s.Close()

		time.Sleep(50 * time.Millisecond)
		if repo.updates() != 0 {
			t.Error("autosave fired after Close")
		}
	})
}

func TestEditSession_Toggle(t *testing.T) {
	editor := core.Actor{Privileged: true, Identity: "ed@x.com"}
	repo := newFakeRepo()
	repo.seed(core.Essay{ID: "e1", Section: "future", Slug: "solar", Version: 1})
	essay, _ := repo.Get(context.Background(), "e1")
	nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar"}}
	s := core.NewEditSession(repo, nav, editor, core.Resolution{Essay: &essay, Kind: core.KindReal})
	defer s.Close()

	if got := s.ToggleEdit(); !got {
		t.Error("expected toggle on")
	}
	if !nav.Route().Edit {
		t.Error("route flag must follow edit mode")
	}
	if got := s.ToggleEdit(); got {
		t.Error("expected toggle off")
	}
	if nav.Route().Edit {
		t.Error("route flag must follow edit mode off")
	}
	if repo.updates() != 0 && repo.creates() != 0 {
		t.Error("toggling must not persist anything")
	}
}

func TestEditSession_Publish(t *testing.T) {
	ctx := context.Background()
	editor := core.Actor{Privileged: true, Identity: "ed@x.com"}

	repo := newFakeRepo()
	repo.seed(core.Essay{ID: "e1", Section: "future", Slug: "solar", Status: core.StatusDraft, Version: 1})
	essay, _ := repo.Get(ctx, "e1")
	nav := &fakeNav{route: core.Route{Section: "future", Slug: "solar"}}
	s := core.NewEditSession(repo, nav, editor, core.Resolution{Essay: &essay, Kind: core.KindReal})
	defer s.Close()

	published, err := s.Publish(ctx)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if published.Status != core.StatusPublished || published.Version != 2 {
		t.Fatalf("after publish: %+v", published)
	}
	if s.Essay().Status != core.StatusPublished {
		t.Error("session essay must reflect the transition")
	}

	back, err := s.Unpublish(ctx)
	if err != nil {
		t.Fatalf("Unpublish failed: %v", err)
	}
	if back.Status != core.StatusDraft || back.Version != 3 {
		t.Fatalf("after unpublish: %+v", back)
	}
}
