// Package compression compresses stored post content.
package compression

import "fmt"

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// New returns the compressor registered under name ("zstd" or "gzip").
func New(name string) (Compressor, error) {
	switch name {
	case "zstd", "":
		return NewZstd()
	case "gzip":
		return GzipCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}
