package core

import "context"

// CreateEssay is the payload for provisioning a new persisted essay.
type CreateEssay struct {
	Slug               string `json:"slug"`
	Section            string `json:"section"`
	Title              string `json:"title"`
	Subtitle           string `json:"subtitle"`
	AuthorName         string `json:"authorName"`
	CoverImageURL      string `json:"coverImageUrl,omitempty"`
	ContentHTML        string `json:"contentHtml"`
	ContentJSON        string `json:"contentJson"`
	Status             Status `json:"status"`
	Version            int    `json:"version"`
	ReadingTimeMinutes int    `json:"readingTimeMinutes"`
	UpdatedBy          string `json:"updatedBy"`
}

// UpdateEssay applies partial updates. Pointer fields distinguish
// "not provided" (nil) from "set to empty". Slug and Section are absent
// on purpose: both are immutable once a real record exists.
type UpdateEssay struct {
	Title              *string `json:"title,omitempty"`
	Subtitle           *string `json:"subtitle,omitempty"`
	AuthorName         *string `json:"authorName,omitempty"`
	CoverImageURL      *string `json:"coverImageUrl,omitempty"`
	ContentHTML        *string `json:"contentHtml,omitempty"`
	ContentJSON        *string `json:"contentJson,omitempty"`
	ReadingTimeMinutes *int    `json:"readingTimeMinutes,omitempty"`
	UpdatedBy          string  `json:"updatedBy"`
}

// Empty reports whether the update carries no field changes.
func (u UpdateEssay) Empty() bool {
	return u.Title == nil && u.Subtitle == nil && u.AuthorName == nil &&
		u.CoverImageURL == nil && u.ContentHTML == nil &&
		u.ContentJSON == nil && u.ReadingTimeMinutes == nil
}

// Repository defines the contract the core needs from the persisted
// document store. Adhering to this interface keeps the core independent
// of the storage mechanism (remote API, SQL, filesystem vault).
//
// Every mutation is attributed to the acting user via UpdatedBy, bumps
// Version by exactly one, and refreshes UpdatedAt. Version only ever
// increases.
type Repository interface {
	// List returns all essays in a section.
	List(ctx context.Context, section string) ([]Essay, error)

	// Get retrieves an essay by its persisted id.
	Get(ctx context.Context, id string) (Essay, error)

	// Create persists a new essay and returns it with its assigned id.
	Create(ctx context.Context, payload CreateEssay) (Essay, error)

	// Update applies partial updates to an existing essay.
	Update(ctx context.Context, id string, updates UpdateEssay) (Essay, error)

	// SetStatus moves an essay between draft and published.
	SetStatus(ctx context.Context, id string, status Status, updatedBy string) (Essay, error)

	// Initialize ensures the underlying storage is ready (directories,
	// schema migration). Safe to call more than once.
	Initialize(ctx context.Context) error
}

// EventType represents the type of change observed in a repository.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a persisted essay.
type Event struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	Section   string    `json:"section"`
	Slug      string    `json:"slug"`
	Timestamp int64     `json:"timestamp"` // Unix timestamp
}

// Watchable is implemented by repositories that can push change events.
// The pattern is a doublestar glob over "section/slug" keys.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
