package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Service handles the business logic for essays outside a page session:
// listing, the explicit "add essay" action, and direct status changes.
// It is what the CLI and the HTTP server drive.
type Service struct {
	repo   Repository
	pub    *PublicationStateMachine
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		pub:    NewPublicationStateMachine(repo, logger),
		logger: logger,
	}
}

// Repository exposes the underlying store for adapter-specific access
// (watching, server wiring).
func (s *Service) Repository() Repository {
	return s.repo
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Slugify derives a URL-safe slug from a title.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// ListEssays returns all essays in a section.
func (s *Service) ListEssays(ctx context.Context, section string) ([]Essay, error) {
	if section == "" {
		return nil, errors.New("section cannot be empty")
	}
	return s.repo.List(ctx, section)
}

// GetEssay retrieves an essay by id.
func (s *Service) GetEssay(ctx context.Context, id string) (Essay, error) {
	if id == "" {
		return Essay{}, errors.New("essay id cannot be empty")
	}
	return s.repo.Get(ctx, id)
}

// AddEssay is the explicit creation path (the "add essay" action):
// seed a fresh draft with the given title under a section. The slug is
// derived from the title and must not collide with an existing essay.
func (s *Service) AddEssay(ctx context.Context, section, title string, actor Actor) (Essay, error) {
	if section == "" {
		return Essay{}, errors.New("section cannot be empty")
	}
	if title == "" {
		title = DefaultTitle
	}
	slug := Slugify(title)
	if !slugPattern.MatchString(slug) {
		return Essay{}, fmt.Errorf("cannot derive a valid slug from title %q", title)
	}

	existing, err := s.repo.List(ctx, section)
	if err != nil {
		return Essay{}, fmt.Errorf("checking for slug collision: %w", err)
	}
	for _, e := range existing {
		if e.Slug == slug {
			return Essay{}, fmt.Errorf("slug %q already exists in section %s", slug, section)
		}
	}

	return s.repo.Create(ctx, CreateEssay{
		Slug:               slug,
		Section:            section,
		Title:              title,
		AuthorName:         AuthorNameFor(actor),
		ContentHTML:        SeedContentHTML(title),
		ContentJSON:        SeedContentJSON(title),
		Status:             StatusDraft,
		Version:            1,
		ReadingTimeMinutes: 1,
		UpdatedBy:          actor.Identity,
	})
}

// UpdateEssay applies partial updates to a real essay, attributed to
// the actor. Reading time is recomputed when the body changes.
func (s *Service) UpdateEssay(ctx context.Context, id string, updates UpdateEssay, actor Actor) (Essay, error) {
	if KindOf(id) != KindReal {
		return Essay{}, ErrReadOnlyEssay
	}
	updates.UpdatedBy = actor.Identity
	if updates.ContentHTML != nil && updates.ReadingTimeMinutes == nil {
		minutes := EstimateReadingTime(*updates.ContentHTML)
		updates.ReadingTimeMinutes = &minutes
	}
	return s.repo.Update(ctx, id, updates)
}

// Publish transitions an essay to published, idempotently.
func (s *Service) Publish(ctx context.Context, id string, actor Actor) (Essay, error) {
	essay, err := s.repo.Get(ctx, id)
	if err != nil {
		return Essay{}, err
	}
	return s.pub.Publish(ctx, essay, actor.Identity)
}

// Unpublish transitions an essay back to draft, idempotently.
func (s *Service) Unpublish(ctx context.Context, id string, actor Actor) (Essay, error) {
	essay, err := s.repo.Get(ctx, id)
	if err != nil {
		return Essay{}, err
	}
	return s.pub.Unpublish(ctx, essay, actor.Identity)
}

// Watch observes changes in the repository if the adapter supports it.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx, pattern)
}
