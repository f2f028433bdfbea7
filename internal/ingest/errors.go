package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/debemdeboas/folio/internal/archive"
	"github.com/debemdeboas/folio/internal/storage"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrInvalidArchive    = archive.ErrInvalidArchive
	ErrInvalidPackage    = errors.New("invalid blog package")
	ErrUploadFailed      = storage.ErrUploadFailed
	ErrInvalidPost       = errors.New("invalid post")
	ErrDuplicateSlug     = errors.New("a post with this slug already exists")
	ErrPersistenceFailed = errors.New("failed to persist post")
)

const (
	KindInvalidArchive    = "INVALID_ARCHIVE"
	KindInvalidPackage    = "INVALID_PACKAGE"
	KindUploadFailed      = "UPLOAD_FAILED"
	KindInvalidPost       = "INVALID_POST"
	KindDuplicateSlug     = "DUPLICATE_SLUG"
	KindPersistenceFailed = "PERSISTENCE_FAILED"
	KindCanceled          = "CANCELED"
	KindInternal          = "INTERNAL"
)

// Kind returns the stable code for err's category.
func Kind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrInvalidArchive):
		return KindInvalidArchive
	case errors.Is(err, ErrInvalidPackage):
		return KindInvalidPackage
	case errors.Is(err, ErrUploadFailed):
		return KindUploadFailed
	case errors.Is(err, ErrInvalidPost):
		return KindInvalidPost
	case errors.Is(err, ErrDuplicateSlug):
		return KindDuplicateSlug
	case errors.Is(err, ErrPersistenceFailed):
		return KindPersistenceFailed
	default:
		return KindInternal
	}
}

// Errorf wraps kind with a formatted message and a stack trace. A %w verb in
// format keeps the cause matchable as well.
func Errorf(kind error, format string, args ...any) error {
	return pkgerrors.WithStack(fmt.Errorf("%w: "+format, append([]any{kind}, args...)...))
}
