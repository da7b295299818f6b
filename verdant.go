package verdant

import (
	"log/slog"

	"github.com/verdantpress/verdant/internal/platform"
	"github.com/verdantpress/verdant/pkg/core"
)

// --- Types ---

// Essay is a public alias for the core essay entity.
type Essay = core.Essay

// Actor is a public alias for the acting user.
type Actor = core.Actor

// Status is a public alias for the publication status.
type Status = core.Status

// Route is a public alias for the navigation route.
type Route = core.Route

// Resolution is a public alias for the resolver output.
type Resolution = core.Resolution

// Publication statuses.
const (
	StatusDraft     = core.StatusDraft
	StatusPublished = core.StatusPublished
)

// --- Configuration ---

// Option defines a functional option for configuring verdant.
type Option = platform.Option

// WithAdapter selects the storage adapter by name ("fs", "postgres",
// "rest"). The uri argument of New is adapter-specific.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithMustExist requires the fs vault directory to already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithActor sets the acting user forwarded by remote adapters.
func WithActor(actor Actor) Option {
	return platform.WithActor(actor)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// --- Factory ---

// New creates a new verdant Service over the selected adapter.
func New(uri string, opts ...Option) (*core.Service, error) {
	return platform.New(uri, opts...)
}

// NewViewController creates the page-level state machine for one
// navigation over the service's repository.
func NewViewController(svc *core.Service, actor Actor, route Route, logger *slog.Logger) *core.ViewController {
	return core.NewViewController(svc.Repository(), actor, route, logger)
}

// NewEditSession starts an edit session for a resolved essay.
func NewEditSession(svc *core.Service, nav core.Navigator, actor Actor, res Resolution, opts ...core.SessionOption) *core.EditSession {
	return core.NewEditSession(svc.Repository(), nav, actor, res, opts...)
}
