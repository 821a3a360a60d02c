// Copyright (c) 2026 lumen3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package asset abstracts where resource bytes come from. A Source
// resolves names to readers; directories, fs.FS trees, packd boxes and
// pak archives all implement it, and a Multi source chains them.
package asset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobuffalo/packd"
)

// package errors
var (
	ErrNotFound = errors.New("asset not found")
	ErrBadName  = errors.New("asset name escapes the source root")
)

// Source resolves an asset name to its content.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// Dir serves assets from a directory on disk.
type Dir string

// Open opens the named file under the directory. Names are slash
// separated and may not climb out of the root.
func (d Dir) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(string(d), filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("asset: %q: %w", name, ErrNotFound)
	}
	return f, err
}

// FS adapts an fs.FS (embed.FS included) into a Source.
func FS(fsys fs.FS) Source { return fsSource{fsys} }

type fsSource struct {
	fsys fs.FS
}

func (s fsSource) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := s.fsys.Open(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("asset: %q: %w", name, ErrNotFound)
	}
	return f, err
}

// Box adapts a packd box, which is how embedded asset bundles are
// shipped, into a Source.
func Box(b packd.Finder) Source { return boxSource{b} }

type boxSource struct {
	box packd.Finder
}

func (s boxSource) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, err := s.box.Find(clean)
	if err != nil {
		return nil, fmt.Errorf("asset: %q: %w", name, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Multi tries each source in order and serves the first hit.
type Multi []Source

func (m Multi) Open(name string) (io.ReadCloser, error) {
	for _, src := range m {
		rc, err := src.Open(name)
		if err == nil {
			return rc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("asset: %q: %w", name, ErrNotFound)
}

// ReadAll is a convenience that opens and drains a name from src.
func ReadAll(src Source, name string) ([]byte, error) {
	rc, err := src.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func cleanName(name string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("asset: %q: %w", name, ErrBadName)
	}
	return clean, nil
}
