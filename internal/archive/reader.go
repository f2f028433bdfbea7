// Package archive reads blog packages: zip containers held entirely in memory.
package archive

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

var ErrInvalidArchive = errors.New("invalid archive")

// Entry is one member of an archive with its uncompressed contents.
type Entry struct {
	Name  string
	IsDir bool
	Data  []byte
}

// Base returns the final path segment of the entry name. Both '/' and '\'
// are accepted as separators.
func (e Entry) Base() string {
	return Base(e.Name)
}

// Limits bounds the uncompressed size of a single entry and of the whole
// archive. Zero disables a limit.
type Limits struct {
	MaxEntrySize int64
	MaxTotalSize int64
}

// Read decodes every entry of the zip archive in data, in archive order.
func Read(data []byte, limits Limits) ([]Entry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArchive, err.Error())
	}

	entries := make([]Entry, 0, len(r.File))
	var total int64
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			entries = append(entries, Entry{Name: f.Name, IsDir: true})
			continue
		}

		if limits.MaxEntrySize > 0 && f.UncompressedSize64 > uint64(limits.MaxEntrySize) {
			return nil, errors.Wrapf(ErrInvalidArchive, "entry %q exceeds %d bytes", f.Name, limits.MaxEntrySize)
		}

		contents, err := readFile(f, limits.MaxEntrySize)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidArchive, "entry %q: %v", f.Name, err)
		}

		total += int64(len(contents))
		if limits.MaxTotalSize > 0 && total > limits.MaxTotalSize {
			return nil, errors.Wrapf(ErrInvalidArchive, "archive exceeds %d bytes uncompressed", limits.MaxTotalSize)
		}

		entries = append(entries, Entry{Name: f.Name, Data: contents})
	}

	return entries, nil
}

// readFile reads f, refusing to go past max even if the header lies about
// the uncompressed size.
func readFile(f *zip.File, max int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var src io.Reader = rc
	if max > 0 {
		src = io.LimitReader(rc, max+1)
	}

	contents, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if max > 0 && int64(len(contents)) > max {
		return nil, errors.Errorf("exceeds %d bytes", max)
	}
	return contents, nil
}

func Base(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return path.Base(name)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".svg":  true,
}

func IsImage(name string) bool {
	return imageExtensions[Ext(name)]
}

// IsMarkdown matches the ".md" suffix exactly, so "NOTES.MD" is not a
// document.
func IsMarkdown(name string) bool {
	return path.Ext(Base(name)) == ".md"
}

// Ext returns the lowercased extension of the entry's basename.
func Ext(name string) string {
	return strings.ToLower(path.Ext(Base(name)))
}

// IsResourceFork reports whether name is AppleDouble metadata that macOS
// adds to archives it creates.
func IsResourceFork(name string) bool {
	name = strings.ReplaceAll(name, `\`, "/")
	return strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(Base(name), "._")
}
