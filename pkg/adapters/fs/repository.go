// Package fs persists essays as Markdown files with YAML frontmatter,
// one file per essay at <vault>/<section>/<slug>.md.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verdantpress/verdant/pkg/core"
)

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	MustExist bool
	Logger    *slog.Logger
}

// Repository implements core.Repository on a local vault directory.
// It also implements core.Watchable via fsnotify.
type Repository struct {
	Path   string
	config Config

	// Serializes mutations; reads are lock-free apart from the OS.
	mu sync.Mutex

	watchMu sync.Mutex
	watched bool
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	return &Repository{
		Path:   config.Path,
		config: config,
	}
}

// Initialize ensures the vault directory exists.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
		return nil
	}
	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}
	return nil
}

func (r *Repository) essayPath(section, slug string) string {
	return filepath.Join(r.Path, section, slug+".md")
}

func (r *Repository) readFile(path, section, slug string) (core.Essay, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Essay{}, core.ErrNotFound
		}
		return core.Essay{}, err
	}
	defer f.Close()

	essay, err := parse(f)
	if err != nil {
		return core.Essay{}, fmt.Errorf("failed to parse essay %s/%s: %w", section, slug, err)
	}
	essay.Section = section
	essay.Slug = slug
	return essay, nil
}

// List returns all essays in a section, sorted by file name.
func (r *Repository) List(ctx context.Context, section string) ([]core.Essay, error) {
	dir := filepath.Join(r.Path, section)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read section %s: %w", section, err)
	}

	var essays []core.Essay
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		if strings.HasPrefix(entry.Name(), tempFilePrefix) {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		essay, err := r.readFile(filepath.Join(dir, entry.Name()), section, slug)
		if err != nil {
			if r.config.Logger != nil {
				r.config.Logger.Warn("skipping unparsable essay file",
					"section", section, "slug", slug, "error", err)
			}
			continue
		}
		essays = append(essays, essay)
	}
	return essays, nil
}

// Get retrieves an essay by id. The vault is keyed by (section, slug),
// so lookup scans section directories for the matching id.
func (r *Repository) Get(ctx context.Context, id string) (core.Essay, error) {
	essay, _, err := r.locate(id)
	return essay, err
}

func (r *Repository) locate(id string) (core.Essay, string, error) {
	sections, err := os.ReadDir(r.Path)
	if err != nil {
		return core.Essay{}, "", fmt.Errorf("failed to read vault: %w", err)
	}
	for _, sec := range sections {
		if !sec.IsDir() {
			continue
		}
		essays, err := r.List(context.Background(), sec.Name())
		if err != nil {
			return core.Essay{}, "", err
		}
		for _, essay := range essays {
			if essay.ID == id {
				return essay, r.essayPath(essay.Section, essay.Slug), nil
			}
		}
	}
	return core.Essay{}, "", core.ErrNotFound
}

// Create persists a new essay. The slug must be free within its section.
func (r *Repository) Create(ctx context.Context, payload core.CreateEssay) (core.Essay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.essayPath(payload.Section, payload.Slug)
	if _, err := os.Stat(path); err == nil {
		return core.Essay{}, fmt.Errorf("essay %s/%s already exists", payload.Section, payload.Slug)
	}

	now := time.Now().UTC()
	essay := core.Essay{
		ID:                 uuid.New().String(),
		Section:            payload.Section,
		Slug:               payload.Slug,
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
	if essay.Status == "" {
		essay.Status = core.StatusDraft
	}
	if essay.Version == 0 {
		essay.Version = 1
	}

	if err := r.write(essay); err != nil {
		return core.Essay{}, err
	}
	if r.config.Logger != nil {
		r.config.Logger.Debug("created essay", "id", essay.ID, "path", path)
	}
	return essay, nil
}

// Update applies partial updates, bumping version and audit fields.
func (r *Repository) Update(ctx context.Context, id string, updates core.UpdateEssay) (core.Essay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	essay, _, err := r.locate(id)
	if err != nil {
		return core.Essay{}, err
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
	essay.UpdatedAt = time.Now().UTC()
	essay.UpdatedBy = updates.UpdatedBy

	if err := r.write(essay); err != nil {
		return core.Essay{}, err
	}
	return essay, nil
}

// SetStatus moves an essay between draft and published.
func (r *Repository) SetStatus(ctx context.Context, id string, status core.Status, updatedBy string) (core.Essay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	essay, _, err := r.locate(id)
	if err != nil {
		return core.Essay{}, err
	}

	essay.Status = status
	essay.Version++
	essay.UpdatedAt = time.Now().UTC()
	essay.UpdatedBy = updatedBy

	if err := r.write(essay); err != nil {
		return core.Essay{}, err
	}
	return essay, nil
}

// Delete removes an essay file. Vault maintenance only; no lifecycle
// path in the core calls it.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, path, err := r.locate(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete essay: %w", err)
	}
	return nil
}

func (r *Repository) write(essay core.Essay) error {
	path := r.essayPath(essay.Section, essay.Slug)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create section directory: %w", err)
	}

	data, err := serialize(essay)
	if err != nil {
		return fmt.Errorf("failed to serialize essay: %w", err)
	}
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write essay file: %w", err)
	}
	return nil
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
