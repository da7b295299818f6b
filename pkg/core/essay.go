// Package core holds the essay domain: the entity and its variants,
// resolution, provisioning, edit sessions and publication. It depends
// on storage only through the Repository interface.
package core

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"
	"time"
)

// Status is the publication state of an essay.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ID prefixes for the non-persisted essay namespaces. Persisted essays
// carry opaque repository-assigned ids (UUIDs) that never use these.
const (
	TemplateIDPrefix = "template-"
	DummyIDPrefix    = "dummy-"
)

// Essay represents a versioned essay-style document identified by
// (section, slug). The slug is immutable once a real record exists.
type Essay struct {
	ID                 string    `json:"id"`
	Section            string    `json:"section"`
	Slug               string    `json:"slug"`
	Title              string    `json:"title"`
	Subtitle           string    `json:"subtitle"`
	AuthorName         string    `json:"authorName"`
	CoverImageURL      string    `json:"coverImageUrl,omitempty"`
	ContentHTML        string    `json:"contentHtml"`
	ContentJSON        string    `json:"contentJson"`
	Status             Status    `json:"status"`
	Version            int       `json:"version"`
	ReadingTimeMinutes int       `json:"readingTimeMinutes"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	UpdatedBy          string    `json:"updatedBy"`
}

// Actor is the acting user as seen by this core: whether they may edit
// and provision essays, and the identity mutations are attributed to.
// An empty Identity means the user is unknown.
type Actor struct {
	Privileged bool
	Identity   string
}

// Known reports whether the actor has a usable identity.
func (a Actor) Known() bool {
	return a.Identity != ""
}

// DefaultTitle is the title seeded into freshly provisioned essays.
const DefaultTitle = "New Essay"

const seedParagraph = "Start writing your essay here."

// NewTemplateEssay synthesizes the ephemeral placeholder shown when no
// persisted essay matches (section, slug). It is deterministic for a
// given slug and never stored: id is always TemplateIDPrefix + slug.
func NewTemplateEssay(section, slug string, actor Actor) Essay {
	return Essay{
		ID:                 TemplateIDPrefix + slug,
		Section:            section,
		Slug:               slug,
		Title:              DefaultTitle,
		Subtitle:           "",
		AuthorName:         AuthorNameFor(actor),
		ContentHTML:        SeedContentHTML(DefaultTitle),
		ContentJSON:        SeedContentJSON(DefaultTitle),
		Status:             StatusDraft,
		Version:            1,
		ReadingTimeMinutes: 1,
	}
}

// AuthorNameFor derives a display name from the actor identity.
// "ed.miller@x.com" becomes "Ed Miller"; unknown actors fall back to
// the generic "Author".
func AuthorNameFor(actor Actor) string {
	if !actor.Known() {
		return "Author"
	}
	local := actor.Identity
	if at := strings.IndexByte(local, '@'); at > 0 {
		local = local[:at]
	}
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(words) == 0 {
		return "Author"
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SeedContentHTML returns the initial rendered body for a new essay:
// one heading and one paragraph.
func SeedContentHTML(title string) string {
	return "<h1>" + html.EscapeString(title) + "</h1><p>" + seedParagraph + "</p>"
}

type contentNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Text    string         `json:"text,omitempty"`
	Content []contentNode  `json:"content,omitempty"`
}

// SeedContentJSON returns the structured editor document matching
// SeedContentHTML. Both representations must stay consistent on save.
func SeedContentJSON(title string) string {
	doc := contentNode{
		Type: "doc",
		Content: []contentNode{
			{
				Type:    "heading",
				Attrs:   map[string]any{"level": 1},
				Content: []contentNode{{Type: "text", Text: title}},
			},
			{
				Type:    "paragraph",
				Content: []contentNode{{Type: "text", Text: seedParagraph}},
			},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		// The seed document contains only strings and ints; marshalling
		// cannot fail at runtime.
		panic(err)
	}
	return string(data)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

const wordsPerMinute = 200

// EstimateReadingTime recomputes the reading time in minutes from the
// rendered HTML body. Always at least one minute.
func EstimateReadingTime(contentHTML string) int {
	text := tagPattern.ReplaceAllString(contentHTML, " ")
	words := len(strings.Fields(text))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
