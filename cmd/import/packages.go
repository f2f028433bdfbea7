package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// pkg is one blog package found in the import directory.
type pkg struct {
	Name string
	Data []byte
}

// collect returns every package directly under dir: each *.zip file as is
// and each subdirectory zipped in memory. Other files are skipped.
func collect(dir string) ([]pkg, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var pkgs []pkg
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)

		switch {
		case e.IsDir():
			data, err := zipDir(full)
			if err != nil {
				return nil, err
			}
			pkgs = append(pkgs, pkg{Name: name, Data: data})
		case strings.EqualFold(filepath.Ext(name), ".zip"):
			data, err := os.ReadFile(full)
			if err != nil {
				return nil, err
			}
			pkgs = append(pkgs, pkg{Name: name, Data: data})
		}
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}

// zipDir archives the regular files under root with slash-separated names
// relative to root.
func zipDir(root string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
