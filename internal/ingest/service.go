// Package ingest turns a blog package (a zip with one markdown document and
// its images) into a stored post whose image references point at uploaded
// objects.
package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/debemdeboas/folio/internal/archive"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/rewrite"
	"github.com/debemdeboas/folio/internal/util"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Uploader stores one image and returns the URL it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, data []byte, originalName string) (string, error)
}

// PostStore persists a new post, deriving its slug from the title.
type PostStore interface {
	Insert(ctx context.Context, title, markdown string, owner model.UserID) (*model.Post, error)
}

type DuplicatePolicy string

const (
	// DuplicateOverwrite lets the last upload to complete own the basename.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	// DuplicateReject refuses packages with two images sharing a basename.
	DuplicateReject DuplicatePolicy = "reject"
)

type Options struct {
	UploadConcurrency int // 0 means unbounded
	Limits            archive.Limits
	DuplicateImages   DuplicatePolicy
}

type State string

const (
	StateStart            State = "start"
	StateEntriesExtracted State = "entries_extracted"
	StateImagesUploaded   State = "images_uploaded"
	StateMarkdownLocated  State = "markdown_located"
	StateMetadataParsed   State = "metadata_parsed"
	StateContentRewritten State = "content_rewritten"
	StatePostPersisted    State = "post_persisted"
	StateDone             State = "done"
)

type Service struct {
	uploader Uploader
	store    PostStore
	opts     Options
	log      zerolog.Logger
}

func New(uploader Uploader, store PostStore, opts Options, log zerolog.Logger) *Service {
	if opts.DuplicateImages == "" {
		opts.DuplicateImages = DuplicateOverwrite
	}
	return &Service{
		uploader: uploader,
		store:    store,
		opts:     opts,
		log:      log.With().Str("component", "ingest").Logger(),
	}
}

// Ingest stores the package in data as an anonymous post.
func (s *Service) Ingest(ctx context.Context, data []byte) (*model.Post, error) {
	return s.IngestAs(ctx, data, "")
}

// IngestAs stores the package in data as a post owned by owner. Objects
// uploaded before a failure are not removed.
func (s *Service) IngestAs(ctx context.Context, data []byte, owner model.UserID) (*model.Post, error) {
	log := s.log.With().Int("archive_size", len(data)).Logger()
	enter := func(state State) {
		log.Debug().Str("state", string(state)).Msg("Ingest state")
	}

	enter(StateStart)
	entries, err := archive.Read(data, s.opts.Limits)
	if err != nil {
		return nil, err
	}
	enter(StateEntriesExtracted)

	var images, documents []archive.Entry
	for _, e := range entries {
		if e.IsDir || archive.IsResourceFork(e.Name) {
			continue
		}
		switch {
		case archive.IsImage(e.Name):
			images = append(images, e)
		case archive.IsMarkdown(e.Name):
			documents = append(documents, e)
		}
	}

	if s.opts.DuplicateImages == DuplicateReject {
		if name, dup := duplicateBase(images); dup {
			return nil, Errorf(ErrInvalidPackage, "image %q appears more than once", name)
		}
	}

	urls, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Errorf(err, "after uploading %d images", len(urls))
	}
	enter(StateImagesUploaded)

	switch len(documents) {
	case 0:
		return nil, Errorf(ErrInvalidPackage, "no markdown document found")
	case 1:
	default:
		return nil, Errorf(ErrInvalidPackage, "found %d markdown documents, expected one", len(documents))
	}
	doc := documents[0]
	enter(StateMarkdownLocated)

	fm, err := util.ParseFrontMatter(string(doc.Data))
	if err != nil {
		return nil, Errorf(ErrInvalidPackage, "%s: %w", doc.Name, err)
	}
	title := fm.Title()
	if title == "" {
		return nil, Errorf(ErrInvalidPackage, "%s: front matter has no title", doc.Name)
	}
	enter(StateMetadataParsed)

	body := rewrite.Images(fm.Body, urls)
	if unresolved := rewrite.Unresolved(body); len(unresolved) > 0 {
		log.Warn().Strs("paths", unresolved).Str("title", title).Msg("Image references not found in package")
	}
	enter(StateContentRewritten)

	post, err := s.store.Insert(ctx, title, body, owner)
	if err != nil {
		if isStoreError(err) {
			return nil, err
		}
		return nil, Errorf(ErrPersistenceFailed, "%w", err)
	}
	enter(StatePostPersisted)

	log.Info().
		Str("post_id", string(post.ID)).
		Str("slug", post.Slug).
		Int("images", len(urls)).
		Msg("Ingested blog package")
	enter(StateDone)
	return post, nil
}

// uploadImages uploads every image concurrently and maps basenames to URLs.
// The first failure cancels the rest; Wait returns only after every started
// upload has returned.
func (s *Service) uploadImages(ctx context.Context, images []archive.Entry) (map[string]string, error) {
	urls := make(map[string]string, len(images))
	if len(images) == 0 {
		return urls, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if s.opts.UploadConcurrency > 0 {
		g.SetLimit(s.opts.UploadConcurrency)
	}

	for _, img := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			url, err := s.uploader.Upload(gctx, img.Data, img.Name)
			if err != nil {
				return err
			}
			mu.Lock()
			urls[img.Base()] = url
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, Errorf(ctxErr, "uploading images")
		}
		return nil, Errorf(ErrUploadFailed, "%w", err)
	}
	return urls, nil
}

func duplicateBase(images []archive.Entry) (string, bool) {
	seen := make(map[string]bool, len(images))
	for _, img := range images {
		name := img.Base()
		if seen[name] {
			return name, true
		}
		seen[name] = true
	}
	return "", false
}

func isStoreError(err error) bool {
	return errors.Is(err, ErrDuplicateSlug) ||
		errors.Is(err, ErrPersistenceFailed) ||
		errors.Is(err, ErrInvalidPost) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
