// Package model defines core data structures and types for the blog application.
package model

import (
	"time"
)

type PostID string

type UserID string

type Post struct {
	ID PostID `json:"id"`

	Title string `json:"title"`
	Slug  string `json:"slug"`

	// Markdown body with every packaged image already resolved to its URL.
	Markdown string `json:"markdownContent"`

	// SHA-256 of the markdown content. Used as the ETag.
	ContentHash string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Optional data: author of the post.
	Owner UserID `json:"owner,omitempty"`
}

// PostSummary is the listing projection of a post, without its content.
type PostSummary struct {
	ID        PostID    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Post) Summary() PostSummary {
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
