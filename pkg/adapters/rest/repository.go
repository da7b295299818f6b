// Package rest implements the essay repository as a client of the
// verdant HTTP API, for pages and tools running against a remote
// document store.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/verdantpress/verdant/pkg/core"
)

// Repository implements core.Repository over the REST API.
type Repository struct {
	baseURL string
	client  *http.Client
	actor   core.Actor
}

// Option configures the REST repository.
type Option func(*Repository)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Repository) {
		r.client = client
	}
}

// WithActor forwards the acting user on every request so the server can
// attribute mutations.
func WithActor(actor core.Actor) Option {
	return func(r *Repository) {
		r.actor = actor
	}
}

// NewRepository creates a client for the API at baseURL.
func NewRepository(baseURL string, opts ...Option) *Repository {
	r := &Repository{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize verifies nothing; the remote store manages its own schema.
func (r *Repository) Initialize(ctx context.Context) error {
	return nil
}

func (r *Repository) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.actor.Identity != "" {
		req.Header.Set("X-Actor", r.actor.Identity)
	}
	if r.actor.Privileged {
		req.Header.Set("X-Actor-Role", "editor")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return core.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// List returns all essays in a section.
func (r *Repository) List(ctx context.Context, section string) ([]core.Essay, error) {
	var essays []core.Essay
	path := "/api/sections/" + url.PathEscape(section) + "/essays"
	if err := r.do(ctx, http.MethodGet, path, nil, &essays); err != nil {
		return nil, err
	}
	return essays, nil
}

// Get retrieves an essay by id.
func (r *Repository) Get(ctx context.Context, id string) (core.Essay, error) {
	var essay core.Essay
	if err := r.do(ctx, http.MethodGet, "/api/essays/"+url.PathEscape(id), nil, &essay); err != nil {
		return core.Essay{}, err
	}
	return essay, nil
}

// Create persists a new essay in the remote store.
func (r *Repository) Create(ctx context.Context, payload core.CreateEssay) (core.Essay, error) {
	var essay core.Essay
	path := "/api/sections/" + url.PathEscape(payload.Section) + "/essays"
	if err := r.do(ctx, http.MethodPost, path, payload, &essay); err != nil {
		return core.Essay{}, err
	}
	return essay, nil
}

// Update applies partial updates to a remote essay.
func (r *Repository) Update(ctx context.Context, id string, updates core.UpdateEssay) (core.Essay, error) {
	var essay core.Essay
	if err := r.do(ctx, http.MethodPatch, "/api/essays/"+url.PathEscape(id), updates, &essay); err != nil {
		return core.Essay{}, err
	}
	return essay, nil
}

// SetStatus moves a remote essay between draft and published.
func (r *Repository) SetStatus(ctx context.Context, id string, status core.Status, updatedBy string) (core.Essay, error) {
	var essay core.Essay
	body := map[string]string{
		"status":    string(status),
		"updatedBy": updatedBy,
	}
	if err := r.do(ctx, http.MethodPut, "/api/essays/"+url.PathEscape(id)+"/status", body, &essay); err != nil {
		return core.Essay{}, err
	}
	return essay, nil
}

var _ core.Repository = (*Repository)(nil)
