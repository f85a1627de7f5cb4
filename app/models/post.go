package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.PubDate.IsZero() {
		return errors.New("pub_date cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.PubDate.IsZero() {
		p.PubDate = p.CreatedAt
	}
}

// VisibleAt reports whether the post is publicly visible at instant t.
// A post without a published category is never publicly visible.
func (p *Post) VisibleAt(t time.Time) bool {
	if !p.IsPublished || p.PubDate.After(t) {
		return false
	}
	return p.Category != nil && p.Category.IsPublished
}

// VisibleTo applies the public predicate with the author self-override:
// the author may always view their own post.
func (p *Post) VisibleTo(viewerID int, t time.Time) bool {
	if viewerID != 0 && viewerID == p.AuthorID {
		return true
	}
	return p.VisibleAt(t)
}
