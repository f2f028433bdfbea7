package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/db"
	"github.com/debemdeboas/folio/internal/ingest"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/slug"
	"github.com/debemdeboas/folio/internal/util"
	"github.com/debemdeboas/folio/internal/util/compression"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const MaxTitleLength = 150

var (
	_ PostRepository   = (*DBPostRepository)(nil)
	_ ingest.PostStore = (*DBPostRepository)(nil)
)

type DBPostRepository struct { // implements PostRepository
	postsBySlug *cache.Cache[string, *model.Post]

	notifier func(Change)
	now      func() time.Time

	db         db.DB
	compressor compression.Compressor
}

func NewDBPostRepository(database db.DB, compressor compression.Compressor) *DBPostRepository {
	return &DBPostRepository{
		postsBySlug: cache.NewCache[string, *model.Post](),

		now: time.Now,

		db:         database,
		compressor: compressor,
	}
}

func (r *DBPostRepository) SetNotifier(notifier func(Change)) {
	r.notifier = notifier
}

// SetClock replaces the clock used to stamp created_at and updated_at.
func (r *DBPostRepository) SetClock(now func() time.Time) {
	r.now = now
}

func (r *DBPostRepository) notify(kind ChangeKind, post *model.Post) {
	if r.notifier != nil {
		r.notifier(Change{Kind: kind, Post: post.Summary()})
	}
}

type postInput struct {
	Title    string
	Markdown string
}

func (p postInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&p.Markdown, validation.Required),
	)
}

// prepare trims and validates the input and derives the slug.
func prepare(title, markdown string) (postInput, string, error) {
	in := postInput{Title: strings.TrimSpace(title), Markdown: markdown}
	if err := in.Validate(); err != nil {
		return in, "", fmt.Errorf("%w: %w", ingest.ErrInvalidPost, err)
	}

	s, err := slug.Make(in.Title)
	if err != nil {
		return in, "", fmt.Errorf("%w: %w", ingest.ErrInvalidPost, err)
	}
	return in, s, nil
}

func (r *DBPostRepository) Insert(ctx context.Context, title, markdown string, owner model.UserID) (*model.Post, error) {
	in, postSlug, err := prepare(title, markdown)
	if err != nil {
		return nil, err
	}

	compressed, err := r.compressor.Compress([]byte(in.Markdown))
	if err != nil {
		return nil, fmt.Errorf("%w: compressing content: %w", ingest.ErrPersistenceFailed, err)
	}

	now := r.now().UTC()
	post := &model.Post{
		ID:          model.PostID(uuid.NewString()),
		Title:       in.Title,
		Slug:        postSlug,
		Markdown:    in.Markdown,
		ContentHash: util.ContentHashString(in.Markdown),
		CreatedAt:   now,
		UpdatedAt:   now,
		Owner:       owner,
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, slug, content, content_hash, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Title, post.Slug, compressed, post.ContentHash, nullOwner(owner), post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteError(err, post.Slug)
	}

	repoLogger.Info().
		Str("post_id", string(post.ID)).
		Str("slug", post.Slug).
		Msg("Post created")

	r.notify(PostCreated, post)
	return post, nil
}

// Update replaces title and content. The slug follows the title.
func (r *DBPostRepository) Update(ctx context.Context, id model.PostID, title, markdown string) (*model.Post, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in, postSlug, err := prepare(title, markdown)
	if err != nil {
		return nil, err
	}

	compressed, err := r.compressor.Compress([]byte(in.Markdown))
	if err != nil {
		return nil, fmt.Errorf("%w: compressing content: %w", ingest.ErrPersistenceFailed, err)
	}

	post := *current
	post.Title = in.Title
	post.Slug = postSlug
	post.Markdown = in.Markdown
	post.ContentHash = util.ContentHashString(in.Markdown)
	post.UpdatedAt = r.now().UTC()

	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, slug = ?, content = ?, content_hash = ?, updated_at = ? WHERE id = ?`,
		post.Title, post.Slug, compressed, post.ContentHash, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return nil, mapWriteError(err, post.Slug)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	r.postsBySlug.Delete(current.Slug)

	repoLogger.Info().
		Str("post_id", string(post.ID)).
		Str("slug", post.Slug).
		Bool("slug_changed", post.Slug != current.Slug).
		Msg("Post updated")

	r.notify(PostUpdated, &post)
	return &post, nil
}

func (r *DBPostRepository) Delete(ctx context.Context, id model.PostID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ingest.ErrPersistenceFailed, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	r.postsBySlug.Delete(current.Slug)

	repoLogger.Info().Str("post_id", string(id)).Msg("Post deleted")
	r.notify(PostDeleted, current)
	return nil
}

const selectPost = `SELECT id, title, slug, content, content_hash, owner_id, created_at, updated_at FROM posts`

func (r *DBPostRepository) GetByID(ctx context.Context, id model.PostID) (*model.Post, error) {
	return r.getOne(ctx, selectPost+` WHERE id = ?`, id)
}

func (r *DBPostRepository) GetBySlug(ctx context.Context, postSlug string) (*model.Post, error) {
	if post, ok := r.postsBySlug.Get(postSlug); ok {
		repoLogger.Debug().Str("slug", postSlug).Msg("Post cache hit")
		clone := *post
		return &clone, nil
	}

	post, err := r.getOne(ctx, selectPost+` WHERE slug = ?`, postSlug)
	if err != nil {
		return nil, err
	}

	clone := *post
	r.postsBySlug.Set(postSlug, &clone)
	return post, nil
}

func (r *DBPostRepository) getOne(ctx context.Context, query string, arg any) (*model.Post, error) {
	var (
		post       model.Post
		compressed []byte
		owner      sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&post.ID, &post.Title, &post.Slug, &compressed, &post.ContentHash, &owner, &post.CreatedAt, &post.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: error scanning post: %w", ingest.ErrPersistenceFailed, err)
	}

	content, err := r.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: error decompressing content: %w", ingest.ErrPersistenceFailed, err)
	}
	post.Markdown = string(content)
	post.Owner = model.UserID(owner.String)

	return &post, nil
}

func (r *DBPostRepository) List(ctx context.Context, limit, offset int) ([]model.PostSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, slug, created_at, updated_at FROM posts ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: error querying posts: %w", ingest.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	posts := make([]model.PostSummary, 0)
	for rows.Next() {
		var p model.PostSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: error scanning post: %w", ingest.ErrPersistenceFailed, err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrPersistenceFailed, err)
	}

	return posts, nil
}

func nullOwner(owner model.UserID) sql.NullString {
	return sql.NullString{String: string(owner), Valid: owner != ""}
}

// mapWriteError turns the unique index on posts.slug into ErrDuplicateSlug.
func mapWriteError(err error, postSlug string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
		strings.Contains(sqliteErr.Error(), "posts.slug") {
		return fmt.Errorf("%w: %q", ingest.ErrDuplicateSlug, postSlug)
	}

	return fmt.Errorf("%w: %w", ingest.ErrPersistenceFailed, err)
}
