package core_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/verdantpress/verdant/pkg/core"
)

// fakeRepo implements core.Repository in memory, with hooks to block or
// fail individual operations so tests can exercise in-flight guards.
type fakeRepo struct {
	mu     sync.Mutex
	essays map[string]core.Essay
	seq    int

	createCalls int
	updateCalls int
	statusCalls int

	createErr error
	updateErr error
	statusErr error

	// When non-nil, Create blocks until the channel is closed.
	createBlock chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{essays: make(map[string]core.Essay)}
}

func (r *fakeRepo) seed(essay core.Essay) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.essays[essay.ID] = essay
}

func (r *fakeRepo) List(ctx context.Context, section string) ([]core.Essay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.Essay
	for _, e := range r.essays {
		if e.Section == section {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *fakeRepo) Get(ctx context.Context, id string) (core.Essay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	essay, ok := r.essays[id]
	if !ok {
		return core.Essay{}, core.ErrNotFound
	}
	return essay, nil
}

func (r *fakeRepo) Create(ctx context.Context, payload core.CreateEssay) (core.Essay, error) {
	r.mu.Lock()
	r.createCalls++
	block := r.createBlock
	err := r.createErr
	r.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return core.Essay{}, ctx.Err()
		}
	}
	if err != nil {
		return core.Essay{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now()
	essay := core.Essay{
		ID:                 fmt.Sprintf("essay-%04d", r.seq),
		Slug:               payload.Slug,
		Section:            payload.Section,
		Title:              payload.Title,
		Subtitle:           payload.Subtitle,
		AuthorName:         payload.AuthorName,
		CoverImageURL:      payload.CoverImageURL,
		ContentHTML:        payload.ContentHTML,
		ContentJSON:        payload.ContentJSON,
		Status:             payload.Status,
		Version:            payload.Version,
		ReadingTimeMinutes: payload.ReadingTimeMinutes,
		CreatedAt:          now,
		UpdatedAt:          now,
		UpdatedBy:          payload.UpdatedBy,
	}
	r.essays[essay.ID] = essay
	return essay, nil
}

func (r *fakeRepo) Update(ctx context.Context, id string, updates core.UpdateEssay) (core.Essay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateErr != nil {
		return core.Essay{}, r.updateErr
	}
	essay, ok := r.essays[id]
	if !ok {
		return core.Essay{}, core.ErrNotFound
	}
	if updates.Title != nil {
		essay.Title = *updates.Title
	}
	if updates.Subtitle != nil {
		essay.Subtitle = *updates.Subtitle
	}
	if updates.AuthorName != nil {
		essay.AuthorName = *updates.AuthorName
	}
	if updates.CoverImageURL != nil {
		essay.CoverImageURL = *updates.CoverImageURL
	}
	if updates.ContentHTML != nil {
		essay.ContentHTML = *updates.ContentHTML
	}
	if updates.ContentJSON != nil {
		essay.ContentJSON = *updates.ContentJSON
	}
	if updates.ReadingTimeMinutes != nil {
		essay.ReadingTimeMinutes = *updates.ReadingTimeMinutes
	}
	essay.Version++
	essay.UpdatedAt = time.Now()
	essay.UpdatedBy = updates.UpdatedBy
	r.essays[id] = essay
	return essay, nil
}

func (r *fakeRepo) SetStatus(ctx context.Context, id string, status core.Status, updatedBy string) (core.Essay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusCalls++
	if r.statusErr != nil {
		return core.Essay{}, r.statusErr
	}
	essay, ok := r.essays[id]
	if !ok {
		return core.Essay{}, core.ErrNotFound
	}
	essay.Status = status
	essay.Version++
	essay.UpdatedAt = time.Now()
	essay.UpdatedBy = updatedBy
	r.essays[id] = essay
	return essay, nil
}

func (r *fakeRepo) Initialize(ctx context.Context) error { return nil }

func (r *fakeRepo) creates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createCalls
}

func (r *fakeRepo) updates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateCalls
}

// fakeNav implements core.Navigator against an in-memory route.
type fakeNav struct {
	mu       sync.Mutex
	route    core.Route
	rewrites int
}

func (n *fakeNav) Route() core.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

func (n *fakeNav) ReplaceEditFlag(edit bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.route.Edit = edit
	n.rewrites++
}
