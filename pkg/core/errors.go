package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotFound is returned by repositories when no essay matches.
	ErrNotFound = errors.New("essay not found")

	// ErrReadOnlyEssay is returned when a mutation targets a dummy or
	// template record that must not be mutated in place.
	ErrReadOnlyEssay = errors.New("essay is read-only")

	// ErrSaveInFlight is returned when a save is requested while
	// another persistence operation for the same essay is pending.
	ErrSaveInFlight = errors.New("another save is already in flight")

	// ErrSessionClosed is returned by sessions after Close.
	ErrSessionClosed = errors.New("edit session is closed")
)

// ProvisionError wraps a failed auto-provisioning attempt. It is
// recovered locally: the template stays on screen and the failure is
// only logged.
type ProvisionError struct {
	Section string
	Slug    string
	Err     error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning %s/%s: %v", e.Section, e.Slug, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// SaveError wraps a failed create/update during editing. It is
// surfaced to the editor so unsaved work is not silently lost.
type SaveError struct {
	ID  string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving essay %s: %v", e.ID, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// PublicationError wraps a failed publish/unpublish. The essay status
// is never flipped before the repository confirms the transition.
type PublicationError struct {
	ID  string
	Err error
}

func (e *PublicationError) Error() string {
	return fmt.Sprintf("changing publication status of %s: %v", e.ID, e.Err)
}

func (e *PublicationError) Unwrap() error { return e.Err }
