package platform

import (
	"context"
	"fmt"

	"github.com/verdantpress/verdant/pkg/adapters/fs"
	"github.com/verdantpress/verdant/pkg/adapters/postgres"
	"github.com/verdantpress/verdant/pkg/adapters/rest"
	"github.com/verdantpress/verdant/pkg/core"
)

// New wires a core.Service over the selected storage adapter. The uri
// argument is adapter-specific: a vault path for "fs", a connection
// string for "postgres", a base URL for "rest".
func New(uri string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo := o.repository
	if repo == nil {
		var err error
		repo, err = buildRepository(uri, o)
		if err != nil {
			return nil, err
		}
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	return core.NewService(repo, o.logger), nil
}

func buildRepository(uri string, o *options) (core.Repository, error) {
	switch o.adapter {
	case "fs":
		return fs.NewRepository(fs.Config{
			Path:      uri,
			MustExist: o.mustExist,
			Logger:    o.logger,
		}), nil
	case "postgres":
		return postgres.NewRepository(uri)
	case "rest":
		return rest.NewRepository(uri, rest.WithActor(o.actor)), nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}
