package core

import "strings"

// Kind discriminates the three essay variants. It is derived from the
// id namespace exactly once, by the resolver; downstream code branches
// on the tag instead of sniffing id prefixes.
type Kind int

const (
	// KindReal is a persisted repository record.
	KindReal Kind = iota
	// KindDummy is a seeded sample record; read-only for editing.
	KindDummy
	// KindTemplate is the in-memory placeholder for a missing record.
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindDummy:
		return "dummy"
	case KindTemplate:
		return "template"
	default:
		return "real"
	}
}

// KindOf classifies an essay id by its namespace prefix.
func KindOf(id string) Kind {
	switch {
	case strings.HasPrefix(id, TemplateIDPrefix):
		return KindTemplate
	case strings.HasPrefix(id, DummyIDPrefix):
		return KindDummy
	default:
		return KindReal
	}
}

// Resolution is the outcome of mapping (section, slug) plus the current
// collection onto one concrete essay variant. Exactly one of the
// following holds: Loading is true, Essay is nil (not found), or Essay
// is set and Kind tags its variant.
type Resolution struct {
	Loading bool
	Essay   *Essay
	Kind    Kind
}

// IsTemplate reports whether the resolution produced the ephemeral
// placeholder variant.
func (r Resolution) IsTemplate() bool {
	return r.Essay != nil && r.Kind == KindTemplate
}

// NotFound reports the terminal "no section context" outcome, distinct
// from "needs template".
func (r Resolution) NotFound() bool {
	return !r.Loading && r.Essay == nil
}
