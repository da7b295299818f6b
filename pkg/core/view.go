package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ViewState is the single render state for an essay page navigation.
type ViewState int

const (
	// ViewLoading: the collection fetch is still in flight.
	ViewLoading ViewState = iota
	// ViewNotFound: no section context; terminal.
	ViewNotFound
	// ViewShowTemplate: rendering the ephemeral placeholder.
	ViewShowTemplate
	// ViewProvisioning: a create call for the missing record is pending.
	ViewProvisioning
	// ViewShowReal: rendering a persisted (or dummy) record.
	ViewShowReal
)

func (s ViewState) String() string {
	switch s {
	case ViewLoading:
		return "loading"
	case ViewNotFound:
		return "not-found"
	case ViewShowTemplate:
		return "show-template"
	case ViewProvisioning:
		return "provisioning"
	default:
		return "show-real"
	}
}

// ViewController drives one essay page. Instead of several loosely
// related effects racing on mount (redirect-to-edit, auto-create,
// loading-gated render), it makes a single ordered decision per
// navigation: fetch the collection, resolve, provision if the
// resolution is a template and the viewer may edit, then re-resolve
// with the created record folded into the in-memory collection.
type ViewController struct {
	repo   Repository
	actor  Actor
	logger *slog.Logger

	mu         sync.Mutex
	route      Route
	state      ViewState
	collection []Essay
	resolution Resolution
	prov       *Provisioner
	lastErr    error
	gen        int
}

// NewViewController creates a controller for the given navigation.
func NewViewController(repo Repository, actor Actor, route Route, logger *slog.Logger) *ViewController {
	return &ViewController{
		repo:   repo,
		actor:  actor,
		logger: logger,
		route:  route,
		state:  ViewLoading,
		prov:   NewProvisioner(repo, logger),
	}
}

// Load performs the fetch → resolve → provision → re-resolve sequence
// for the current route and returns the settled view state. If the
// route changes while a fetch or create is in flight, the stale result
// is discarded and the state for the newer navigation is untouched.
func (c *ViewController) Load(ctx context.Context) (ViewState, error) {
	c.mu.Lock()
	gen := c.gen
	route := c.route
	c.state = ViewLoading
	c.resolution = Resolution{Loading: true}
	c.lastErr = nil
	prov := c.prov
	c.mu.Unlock()

	if route.Section == "" {
		return c.settle(gen, ViewNotFound, Resolution{}, nil, nil)
	}

	collection, err := c.repo.List(ctx, route.Section)
	if err != nil {
		err = fmt.Errorf("listing section %s: %w", route.Section, err)
		c.mu.Lock()
		if gen == c.gen {
			c.lastErr = err
		}
		state := c.state
		c.mu.Unlock()
		return state, err
	}

	res := Resolve(route.Section, route.Slug, collection, false, c.actor)
	switch {
	case res.NotFound():
		return c.settle(gen, ViewNotFound, res, collection, nil)
	case !res.IsTemplate():
		return c.settle(gen, ViewShowReal, res, collection, nil)
	}

	if !c.actor.Privileged || !c.actor.Known() {
		return c.settle(gen, ViewShowTemplate, res, collection, nil)
	}

	c.mu.Lock()
	if gen == c.gen {
		c.state = ViewProvisioning
	}
	c.mu.Unlock()

	created, ok, provErr := prov.Observe(ctx, res, c.actor)
	if !ok {
		// Creation failed or was suppressed; the viewer keeps an
		// editable-looking template, never a fatal error.
		return c.settle(gen, ViewShowTemplate, res, collection, provErr)
	}

	collection = append(collection, created)
	res = Resolve(route.Section, route.Slug, collection, false, c.actor)
	return c.settle(gen, ViewShowReal, res, collection, nil)
}

func (c *ViewController) settle(gen int, state ViewState, res Resolution, collection []Essay, err error) (ViewState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// A newer navigation superseded this one.
		return c.state, nil
	}
	c.state = state
	c.resolution = res
	c.collection = collection
	c.lastErr = err
	return state, err
}

// Navigate points the controller at a new (section, slug). Any result
// still in flight for the previous navigation is discarded when it
// completes, and provisioning guards start fresh.
func (c *ViewController) Navigate(route Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.route = route
	c.state = ViewLoading
	c.resolution = Resolution{Loading: true}
	c.collection = nil
	c.lastErr = nil
	c.prov = NewProvisioner(c.repo, c.logger)
}

// State returns the current view state.
func (c *ViewController) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resolution returns the latest resolver output.
func (c *ViewController) Resolution() Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolution
}

// CurrentEssay exposes the essay the page should treat as current, so
// that saves after provisioning target the newly created id.
func (c *ViewController) CurrentEssay() *Essay {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolution.Essay == nil {
		return nil
	}
	essay := *c.resolution.Essay
	return &essay
}

// Collection returns the in-memory essay collection for the section,
// including any record folded in after provisioning.
func (c *ViewController) Collection() []Essay {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Essay, len(c.collection))
	copy(out, c.collection)
	return out
}

// LastError returns the most recent non-fatal failure (such as a
// provisioning error), for an eventual retry affordance.
func (c *ViewController) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
