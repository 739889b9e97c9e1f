package savedsearch

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lvpi/lpsearch/internal/domain/search/spec"
)

// Field limits.
const (
	MaxTitleLength = 128
	MaxFormSize    = 64 * 1024
)

// SavedSearch is a named search-box payload that can be re-run (immutable value object).
type SavedSearch struct {
	id         string
	title      string
	form       json.RawMessage
	subject    bool
	createdAt  int64
	modifiedAt int64
	revision   int
}

func validate(title string, form json.RawMessage) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("title is required")
	}
	if len([]rune(title)) > MaxTitleLength {
		return "", fmt.Errorf("title too long (max %d characters)", MaxTitleLength)
	}
	if len(form) > MaxFormSize {
		return "", fmt.Errorf("form too large (max %d bytes)", MaxFormSize)
	}
	if _, err := spec.DecodeForm(form); err != nil {
		return "", fmt.Errorf("form: %w", err)
	}
	return title, nil
}

// New validates and creates a SavedSearch. The form must decode to a valid spec.
func New(id, title string, form json.RawMessage, subject bool) (SavedSearch, error) {
	if id == "" {
		return SavedSearch{}, fmt.Errorf("id is required")
	}
	title, err := validate(title, form)
	if err != nil {
		return SavedSearch{}, err
	}
	now := time.Now().UnixMilli()
	return SavedSearch{
		id:         id,
		title:      title,
		form:       cloneRaw(form),
		subject:    subject,
		createdAt:  now,
		modifiedAt: now,
		revision:   1,
	}, nil
}

// Reconstruct creates a SavedSearch without validation (storage hydration).
func Reconstruct(
	id, title string, form json.RawMessage, subject bool,
	createdAt, modifiedAt int64, revision int,
) SavedSearch {
	return SavedSearch{
		id:         id,
		title:      title,
		form:       form,
		subject:    subject,
		createdAt:  createdAt,
		modifiedAt: modifiedAt,
		revision:   revision,
	}
}

// Update returns a copy with new content, a fresh modification time and the next revision.
func (s SavedSearch) Update(title string, form json.RawMessage, subject bool) (SavedSearch, error) {
	title, err := validate(title, form)
	if err != nil {
		return SavedSearch{}, err
	}
	s.title = title
	s.form = cloneRaw(form)
	s.subject = subject
	s.modifiedAt = max(time.Now().UnixMilli(), s.modifiedAt)
	s.revision++
	return s, nil
}

// Spec decodes the stored form.
func (s SavedSearch) Spec() (spec.Spec, error) { return spec.DecodeForm(s.form) }

// ID returns the identifier.
func (s SavedSearch) ID() string { return s.id }

// Title returns the display title.
func (s SavedSearch) Title() string { return s.title }

// Form returns the stored search-box payload.
func (s SavedSearch) Form() json.RawMessage { return s.form }

// Subject reports whether the search is pinned to the search menu.
func (s SavedSearch) Subject() bool { return s.subject }

// CreatedAt returns the creation timestamp (unix millis).
func (s SavedSearch) CreatedAt() int64 { return s.createdAt }

// ModifiedAt returns the last modification timestamp (unix millis).
func (s SavedSearch) ModifiedAt() int64 { return s.modifiedAt }

// Revision returns the update counter, starting at 1.
func (s SavedSearch) Revision() int { return s.revision }

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	c := make(json.RawMessage, len(r))
	copy(c, r)
	return c
}
