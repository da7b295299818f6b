package core

import (
	"context"
	"log/slog"
)

// PublicationStateMachine owns the draft ⇄ published transition.
// No other code path mutates essay status.
type PublicationStateMachine struct {
	repo   Repository
	logger *slog.Logger
}

// NewPublicationStateMachine creates the state machine over a repository.
func NewPublicationStateMachine(repo Repository, logger *slog.Logger) *PublicationStateMachine {
	return &PublicationStateMachine{repo: repo, logger: logger}
}

// Publish moves a draft essay to published. Publishing an already
// published essay is a no-op that leaves version untouched. Only real
// essays can transition.
func (m *PublicationStateMachine) Publish(ctx context.Context, essay Essay, updatedBy string) (Essay, error) {
	return m.transition(ctx, essay, StatusPublished, updatedBy)
}

// Unpublish moves a published essay back to draft. Idempotent on drafts.
func (m *PublicationStateMachine) Unpublish(ctx context.Context, essay Essay, updatedBy string) (Essay, error) {
	return m.transition(ctx, essay, StatusDraft, updatedBy)
}

func (m *PublicationStateMachine) transition(ctx context.Context, essay Essay, target Status, updatedBy string) (Essay, error) {
	if KindOf(essay.ID) != KindReal {
		return essay, ErrReadOnlyEssay
	}
	if essay.Status == target {
		return essay, nil
	}

	updated, err := m.repo.SetStatus(ctx, essay.ID, target, updatedBy)
	if err != nil {
		// Status stays unchanged; it is never flipped optimistically.
		if m.logger != nil {
			m.logger.Error("status transition failed",
				"id", essay.ID, "target", target, "error", err)
		}
		return essay, &PublicationError{ID: essay.ID, Err: err}
	}

	if m.logger != nil {
		m.logger.Info("status changed",
			"id", updated.ID, "status", updated.Status, "version", updated.Version)
	}
	return updated, nil
}
