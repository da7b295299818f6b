package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Route is the navigation state the session observes: the path segments
// plus the edit query flag.
type Route struct {
	Section string
	Slug    string
	Edit    bool
}

// Navigator lets the session read the current route and rewrite the
// edit flag in place, without creating a history entry.
type Navigator interface {
	Route() Route
	ReplaceEditFlag(edit bool)
}

// DefaultAutosaveInterval is the debounce window for queued edits.
const DefaultAutosaveInterval = 2 * time.Second

// EditSession mediates editing for one resolved essay. It owns the
// edit-mode boolean, keeps it synchronized with the route's edit flag,
// and funnels save/publish/unpublish calls to the repository, branching
// on whether the current essay is real, dummy or template.
//
// At most one persistence operation per essay is in flight at a time: a
// save requested while another is pending fails with ErrSaveInFlight,
// and autosaves yield to manual saves.
type EditSession struct {
	repo   Repository
	pub    *PublicationStateMachine
	nav    Navigator
	actor  Actor
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	essay    Essay
	kind     Kind
	editing  bool
	saving   bool
	pending  *UpdateEssay
	timer    *time.Timer
	interval time.Duration
	closed   bool
	gen      int
}

// SessionOption configures an EditSession.
type SessionOption func(*EditSession)

// WithAutosaveInterval overrides the autosave debounce window.
func WithAutosaveInterval(d time.Duration) SessionOption {
	return func(s *EditSession) {
		s.interval = d
	}
}

// WithSessionLogger sets the logger for the session.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *EditSession) {
		s.logger = logger
	}
}

// NewEditSession starts a session for a resolved essay. The resolution
// must carry an essay (not loading, not "not found").
//
// The initial edit mode is true only when the route carries the edit
// flag, the actor is privileged, and the essay is real. Independently,
// a template essay with a privileged actor forces edit mode on and
// rewrites the route to carry the flag: a template is never shown
// read-only to an editor.
func NewEditSession(repo Repository, nav Navigator, actor Actor, res Resolution, opts ...SessionOption) *EditSession {
	ctx, cancel := context.WithCancel(context.Background())
	s := &EditSession{
		repo:     repo,
		pub:      NewPublicationStateMachine(repo, nil),
		nav:      nav,
		actor:    actor,
		ctx:      ctx,
		cancel:   cancel,
		interval: DefaultAutosaveInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pub.logger = s.logger

	if res.Essay != nil {
		s.essay = *res.Essay
		s.kind = res.Kind
	}

	route := nav.Route()
	if route.Edit && actor.Privileged && s.kind == KindReal {
		s.editing = true
	}
	if s.kind == KindTemplate && actor.Privileged {
		s.editing = true
		if !route.Edit {
			nav.ReplaceEditFlag(true)
		}
	}

	return s
}

// Editing reports whether the viewer is currently in edit mode.
func (s *EditSession) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// Essay returns the session's current essay. After a template save this
// is the newly persisted record, whose id subsequent saves target.
func (s *EditSession) Essay() Essay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.essay
}

// Kind returns the variant tag of the current essay.
func (s *EditSession) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// ToggleEdit flips edit mode locally and mirrors the flag onto the
// route. It persists nothing.
func (s *EditSession) ToggleEdit() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.editing = !s.editing
	editing := s.editing
	s.mu.Unlock()

	s.nav.ReplaceEditFlag(editing)
	return editing
}

// Save persists the given updates. For a real essay it delegates to the
// repository's update. For a template essay it must not call update:
// the edits are carried into a create, and the session adopts the new
// record as authoritative. Dummy essays are read-only here.
func (s *EditSession) Save(ctx context.Context, updates UpdateEssay) (Essay, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Essay{}, ErrSessionClosed
	}
	if s.kind == KindDummy {
		s.mu.Unlock()
		return Essay{}, ErrReadOnlyEssay
	}
	if s.saving {
		s.mu.Unlock()
		return Essay{}, ErrSaveInFlight
	}
	s.saving = true
	essay := s.essay
	kind := s.kind
	gen := s.gen
	s.mu.Unlock()

	updates.UpdatedBy = s.actor.Identity
	if updates.ContentHTML != nil && updates.ReadingTimeMinutes == nil {
		minutes := EstimateReadingTime(*updates.ContentHTML)
		updates.ReadingTimeMinutes = &minutes
	}

	var saved Essay
	var err error
	if kind == KindTemplate {
		saved, err = s.repo.Create(ctx, mergeCreate(essay, updates))
	} else {
		saved, err = s.repo.Update(ctx, essay.ID, updates)
	}

	s.mu.Lock()
	s.saving = false
	stale := s.closed || gen != s.gen
	if !stale && err == nil {
		s.essay = saved
		s.kind = KindReal
	}
	s.mu.Unlock()

	if stale {
		// The viewer navigated away mid-save; the result must not be
		// applied to the now-stale view.
		return Essay{}, ErrSessionClosed
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Error("save failed", "id", essay.ID, "error", err)
		}
		return Essay{}, &SaveError{ID: essay.ID, Err: err}
	}
	return saved, nil
}

// QueueAutosave merges the updates into the pending autosave payload
// and (re)arms the debounce timer. The payload is flushed after the
// autosave interval elapses without further edits, or explicitly via
// Flush on field blur.
func (s *EditSession) QueueAutosave(updates UpdateEssay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = mergeUpdates(s.pending, updates)
	if s.timer == nil {
		s.timer = time.AfterFunc(s.interval, s.autosaveFire)
	} else {
		s.timer.Reset(s.interval)
	}
}

// Flush persists any pending autosave payload immediately.
func (s *EditSession) Flush(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if pending == nil {
		return nil
	}
	_, err := s.Save(ctx, *pending)
	if err != nil {
		s.requeue(*pending)
	}
	return err
}

func (s *EditSession) autosaveFire() {
	s.mu.Lock()
	if s.closed || s.pending == nil {
		s.mu.Unlock()
		return
	}
	if s.saving {
		// A manual save is in flight; it wins. Keep the payload queued
		// and try again after another interval.
		s.timer.Reset(s.interval)
		s.mu.Unlock()
		return
	}
	updates := *s.pending
	s.pending = nil
	s.mu.Unlock()

	if _, err := s.Save(s.ctx, updates); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			return
		}
		// Keep the edits queued so unsaved work is not lost.
		s.requeue(updates)
	}
}

func (s *EditSession) requeue(updates UpdateEssay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = mergeUpdates(&updates, valueOrZero(s.pending))
	if s.timer == nil {
		s.timer = time.AfterFunc(s.interval, s.autosaveFire)
	} else {
		s.timer.Reset(s.interval)
	}
}

// Publish transitions the current essay to published. Real essays only.
func (s *EditSession) Publish(ctx context.Context) (Essay, error) {
	return s.setStatus(ctx, StatusPublished)
}

// Unpublish transitions the current essay back to draft. Real essays only.
func (s *EditSession) Unpublish(ctx context.Context) (Essay, error) {
	return s.setStatus(ctx, StatusDraft)
}

func (s *EditSession) setStatus(ctx context.Context, target Status) (Essay, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Essay{}, ErrSessionClosed
	}
	essay := s.essay
	kind := s.kind
	gen := s.gen
	s.mu.Unlock()

	if kind != KindReal {
		return essay, ErrReadOnlyEssay
	}

	var updated Essay
	var err error
	if target == StatusPublished {
		updated, err = s.pub.Publish(ctx, essay, s.actor.Identity)
	} else {
		updated, err = s.pub.Unpublish(ctx, essay, s.actor.Identity)
	}
	if err != nil {
		return essay, err
	}

	s.mu.Lock()
	if !s.closed && gen == s.gen {
		s.essay = updated
	}
	s.mu.Unlock()
	return updated, nil
}

// Close ends the session. Pending autosave timers are cleared and the
// results of any in-flight operations are discarded on completion.
func (s *EditSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
}

// mergeCreate folds edits over a template's seeded fields into the
// creation payload.
func mergeCreate(template Essay, updates UpdateEssay) CreateEssay {
	payload := CreateEssay{
		Slug:               template.Slug,
		Section:            template.Section,
		Title:              template.Title,
		Subtitle:           template.Subtitle,
		AuthorName:         template.AuthorName,
		CoverImageURL:      template.CoverImageURL,
		ContentHTML:        template.ContentHTML,
		ContentJSON:        template.ContentJSON,
		Status:             StatusDraft,
		Version:            1,
		ReadingTimeMinutes: template.ReadingTimeMinutes,
		UpdatedBy:          updates.UpdatedBy,
	}
	if updates.Title != nil {
		payload.Title = *updates.Title
	}
	if updates.Subtitle != nil {
		payload.Subtitle = *updates.Subtitle
	}
	if updates.AuthorName != nil {
		payload.AuthorName = *updates.AuthorName
	}
	if updates.CoverImageURL != nil {
		payload.CoverImageURL = *updates.CoverImageURL
	}
	if updates.ContentHTML != nil {
		payload.ContentHTML = *updates.ContentHTML
	}
	if updates.ContentJSON != nil {
		payload.ContentJSON = *updates.ContentJSON
	}
	if updates.ReadingTimeMinutes != nil {
		payload.ReadingTimeMinutes = *updates.ReadingTimeMinutes
	}
	return payload
}

// mergeUpdates overlays src onto dst; src fields win.
func mergeUpdates(dst *UpdateEssay, src UpdateEssay) *UpdateEssay {
	if dst == nil {
		merged := src
		return &merged
	}
	if src.Title != nil {
		dst.Title = src.Title
	}
	if src.Subtitle != nil {
		dst.Subtitle = src.Subtitle
	}
	if src.AuthorName != nil {
		dst.AuthorName = src.AuthorName
	}
	if src.CoverImageURL != nil {
		dst.CoverImageURL = src.CoverImageURL
	}
	if src.ContentHTML != nil {
		dst.ContentHTML = src.ContentHTML
	}
	if src.ContentJSON != nil {
		dst.ContentJSON = src.ContentJSON
	}
	if src.ReadingTimeMinutes != nil {
		dst.ReadingTimeMinutes = src.ReadingTimeMinutes
	}
	if src.UpdatedBy != "" {
		dst.UpdatedBy = src.UpdatedBy
	}
	return dst
}

func valueOrZero(u *UpdateEssay) UpdateEssay {
	if u == nil {
		return UpdateEssay{}
	}
	return *u
}
