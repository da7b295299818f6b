// Package postgres implements the essay repository on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/verdantpress/verdant/pkg/core"
)

// Repository implements core.Repository using PostgreSQL.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a connection pool and verifies connectivity.
func NewRepository(connStr string) (*Repository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Initialize creates the essays table if it doesn't exist.
func (r *Repository) Initialize(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS essays (
			id TEXT PRIMARY KEY,
			section TEXT NOT NULL,
			slug TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			subtitle TEXT NOT NULL DEFAULT '',
			author_name TEXT NOT NULL DEFAULT '',
			cover_image_url TEXT NOT NULL DEFAULT '',
			content_html TEXT NOT NULL DEFAULT '',
			content_json TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			version INTEGER NOT NULL DEFAULT 1,
			reading_time_minutes INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			updated_by TEXT NOT NULL DEFAULT '',
			UNIQUE (section, slug)
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create essays table: %w", err)
	}
	return nil
}

const essayColumns = `id, section, slug, title, subtitle, author_name, cover_image_url,
	content_html, content_json, status, version, reading_time_minutes,
	created_at, updated_at, updated_by`

func scanEssay(row interface{ Scan(...any) error }) (core.Essay, error) {
	var essay core.Essay
	err := row.Scan(
		&essay.ID,
		&essay.Section,
		&essay.Slug,
		&essay.Title,
		&essay.Subtitle,
		&essay.AuthorName,
		&essay.CoverImageURL,
		&essay.ContentHTML,
		&essay.ContentJSON,
		&essay.Status,
		&essay.Version,
		&essay.ReadingTimeMinutes,
		&essay.CreatedAt,
		&essay.UpdatedAt,
		&essay.UpdatedBy,
	)
	return essay, err
}

// List returns all essays in a section, most recently updated first.
func (r *Repository) List(ctx context.Context, section string) ([]core.Essay, error) {
	query := fmt.Sprintf(`SELECT %s FROM essays WHERE section = $1 ORDER BY updated_at DESC`, essayColumns)

	rows, err := r.db.QueryContext(ctx, query, section)
	if err != nil {
		return nil, fmt.Errorf("failed to list essays: %w", err)
	}
	defer rows.Close()

	var essays []core.Essay
	for rows.Next() {
		essay, err := scanEssay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan essay: %w", err)
		}
		essays = append(essays, essay)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return essays, nil
}

// Get retrieves an essay by id.
func (r *Repository) Get(ctx context.Context, id string) (core.Essay, error) {
	query := fmt.Sprintf(`SELECT %s FROM essays WHERE id = $1`, essayColumns)

	essay, err := scanEssay(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Essay{}, core.ErrNotFound
		}
		return core.Essay{}, fmt.Errorf("failed to get essay: %w", err)
	}
	return essay, nil
}

// Create persists a new essay with a fresh UUID.
func (r *Repository) Create(ctx context.Context, payload core.CreateEssay) (core.Essay, error) {
	status := payload.Status
	if status == "" {
		status = core.StatusDraft
	}
	version := payload.Version
	if version == 0 {
		version = 1
	}
	now := time.Now().UTC()

	query := fmt.Sprintf(`
		INSERT INTO essays (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING %s
	`, essayColumns, essayColumns)

	essay, err := scanEssay(r.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		payload.Section,
		payload.Slug,
		payload.Title,
		payload.Subtitle,
		payload.AuthorName,
		payload.CoverImageURL,
		payload.ContentHTML,
		payload.ContentJSON,
		status,
		version,
		payload.ReadingTimeMinutes,
		now,
		now,
		payload.UpdatedBy,
	))
	if err != nil {
		return core.Essay{}, fmt.Errorf("failed to create essay: %w", err)
	}
	return essay, nil
}

// Update applies partial updates with a dynamic SET clause; version and
// audit fields always advance.
func (r *Repository) Update(ctx context.Context, id string, updates core.UpdateEssay) (core.Essay, error) {
	sets := []string{}
	args := []any{}
	argPos := 1

	addSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if updates.Title != nil {
		addSet("title", *updates.Title)
	}
	if updates.Subtitle != nil {
		addSet("subtitle", *updates.Subtitle)
	}
	if updates.AuthorName != nil {
		addSet("author_name", *updates.AuthorName)
	}
	if updates.CoverImageURL != nil {
		addSet("cover_image_url", *updates.CoverImageURL)
	}
	if updates.ContentHTML != nil {
		addSet("content_html", *updates.ContentHTML)
	}
	if updates.ContentJSON != nil {
		addSet("content_json", *updates.ContentJSON)
	}
	if updates.ReadingTimeMinutes != nil {
		addSet("reading_time_minutes", *updates.ReadingTimeMinutes)
	}

	if len(sets) == 0 {
		return r.Get(ctx, id)
	}

	addSet("updated_at", time.Now().UTC())
	addSet("updated_by", updates.UpdatedBy)
	sets = append(sets, "version = version + 1")

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE essays
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, essayColumns)

	essay, err := scanEssay(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Essay{}, core.ErrNotFound
		}
		return core.Essay{}, fmt.Errorf("failed to update essay: %w", err)
	}
	return essay, nil
}

// SetStatus moves an essay between draft and published.
func (r *Repository) SetStatus(ctx context.Context, id string, status core.Status, updatedBy string) (core.Essay, error) {
	query := fmt.Sprintf(`
		UPDATE essays
		SET status = $1, version = version + 1, updated_at = $2, updated_by = $3
		WHERE id = $4
		RETURNING %s
	`, essayColumns)

	essay, err := scanEssay(r.db.QueryRowContext(ctx, query, status, time.Now().UTC(), updatedBy, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Essay{}, core.ErrNotFound
		}
		return core.Essay{}, fmt.Errorf("failed to set status: %w", err)
	}
	return essay, nil
}

// Compile-time check that Repository satisfies the core contract.
var _ core.Repository = (*Repository)(nil)
