// Package repository stores posts in the database.
package repository

import (
	"context"
	"errors"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/rs/zerolog"
)

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

var ErrNotFound = errors.New("post not found")

type PostRepository interface {
	Insert(ctx context.Context, title, markdown string, owner model.UserID) (*model.Post, error)
	Update(ctx context.Context, id model.PostID, title, markdown string) (*model.Post, error)
	Delete(ctx context.Context, id model.PostID) error

	GetByID(ctx context.Context, id model.PostID) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	// List returns summaries, newest first. A limit <= 0 returns every post.
	List(ctx context.Context, limit, offset int) ([]model.PostSummary, error)

	// SetNotifier sets a function that is called after every successful write.
	SetNotifier(notifier func(Change))
}

type ChangeKind string

const (
	PostCreated ChangeKind = "post-created"
	PostUpdated ChangeKind = "post-updated"
	PostDeleted ChangeKind = "post-deleted"
)

type Change struct {
	Kind ChangeKind        `json:"kind"`
	Post model.PostSummary `json:"post"`
}
