package platform

import (
	"log/slog"

	"github.com/verdantpress/verdant/pkg/core"
)

// options holds the internal configuration for the verdant service.
type options struct {
	adapter    string
	mustExist  bool
	repository core.Repository
	actor      core.Actor
	logger     *slog.Logger
}

// Option defines a functional option for configuring verdant.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter: "fs",
	}
}

// WithAdapter selects the storage adapter by name: "fs", "postgres" or
// "rest". The uri argument of New is adapter-specific (vault path,
// connection string, base URL).
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithMustExist requires the fs vault directory to already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithRepository injects a custom storage adapter. If provided, the
// named adapter is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithActor sets the acting user forwarded by remote adapters.
func WithActor(actor core.Actor) Option {
	return func(o *options) {
		o.actor = actor
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
