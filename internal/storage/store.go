// Package storage uploads package images to an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var storageLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storageLogger = l
}

var ErrUploadFailed = errors.New("image upload failed")

// ObjectStore writes an object under key and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// UploadError reports which file failed to upload. It matches ErrUploadFailed.
type UploadError struct {
	Name  string
	Cause error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q: %v", e.Name, e.Cause)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUploadFailed
}

const DefaultKeyPrefix = "blog/images/"

// Uploader stores files under fresh random keys.
type Uploader struct {
	store  ObjectStore
	prefix string
	newID  func() string
}

func NewUploader(store ObjectStore, keyPrefix string) *Uploader {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Uploader{
		store:  store,
		prefix: keyPrefix,
		newID:  uuid.NewString,
	}
}

// Upload stores data under <prefix><uuid><ext>, where ext comes from
// originalName. Nothing else of the original name reaches the key.
func (u *Uploader) Upload(ctx context.Context, data []byte, originalName string) (string, error) {
	key := u.Key(originalName)

	url, err := u.store.Put(ctx, key, data, ContentType(originalName))
	if err != nil {
		return "", &UploadError{Name: originalName, Cause: err}
	}

	storageLogger.Debug().
		Str("file", originalName).
		Str("key", key).
		Int("size", len(data)).
		Msg("Uploaded object")
	return url, nil
}

func (u *Uploader) Key(originalName string) string {
	return u.prefix + u.newID() + path.Ext(strings.ReplaceAll(originalName, `\`, "/"))
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
