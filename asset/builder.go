// Copyright (c) 2026 lumen3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package asset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pierrec/lz4"
)

// NewBuilder creates a new archive Builder. Do not fill the Index in
// the header, it is rebuilt on WriteTo.
func NewBuilder(header Header) (*Builder, error) {
	temp, err := os.MkdirTemp("", "pakBuilder")
	if err != nil {
		return nil, fmt.Errorf("pak: %w: %v", ErrTempFail, err)
	}
	return &Builder{
		tempDir: temp,
		header:  header,
	}, nil
}

type stagedFile struct {
	// Name is the name the file gets inside the archive.
	Name string

	// TempName is the temporary name given by the Builder.
	TempName string

	// Size in uncompressed state.
	Size int64

	Compressed int64
}

// Builder assembles pak archives. Archives are versioned and cannot be
// appended to; the Builder is the only way to create one. Added files
// are compressed into a staging directory as they come and bundled
// together on WriteTo.
type Builder struct {
	tempDir string
	header  Header

	mutex  sync.Mutex
	seq    int
	files  []stagedFile
	closed bool
}

// Add compresses the contents of r into the staging area under the
// given archive name. It blocks until lz4 finishes and is safe to call
// from several goroutines at once.
func (b *Builder) Add(name string, r io.Reader) error {
	b.mutex.Lock()
	if b.closed {
		b.mutex.Unlock()
		return fmt.Errorf("pak: builder already closed")
	}
	b.seq++
	tempName := strconv.Itoa(b.seq) + "-" + strconv.Itoa(time.Now().Nanosecond())
	b.mutex.Unlock()

	f, err := os.Create(filepath.Join(b.tempDir, tempName))
	if err != nil {
		return fmt.Errorf("pak: %w: %v", ErrTempFail, err)
	}
	defer f.Close()

	zw := lz4.NewWriter(f)
	written, err := io.Copy(zw, r)
	if err != nil {
		return fmt.Errorf("pak: compress %q: %v", name, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("pak: compress %q: %v", name, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("pak: %w: %v", ErrTempFail, err)
	}
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("pak: %w: %v", ErrTempFail, err)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.files = append(b.files, stagedFile{
		Name:       name,
		TempName:   tempName,
		Size:       written,
		Compressed: info.Size(),
	})
	return nil
}

// AddFile reads a file from disk into the archive under name.
func (b *Builder) AddFile(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("pak: add %q: %v", name, err)
	}
	defer f.Close()
	return b.Add(name, f)
}

// WriteTo bundles everything added so far and writes out a complete
// archive. Entries are laid out in name order for reproducible output.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	files := make([]stagedFile, len(b.files))
	copy(files, b.files)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	header := b.header
	header.Index = make([]IndexEntry, 0, len(files))
	var offset int64
	for _, f := range files {
		header.Index = append(header.Index, IndexEntry{
			Name:           f.Name,
			Offset:         offset,
			Size:           f.Size,
			CompressedSize: f.Compressed,
		})
		offset += f.Compressed
	}

	rawHeader, err := encodeHeader(&header)
	if err != nil {
		return 0, fmt.Errorf("pak: encode header: %v", err)
	}

	var total int64
	n, err := w.Write(pakMagic[:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	n, err = w.Write(putHeaderSize(int64(len(rawHeader))))
	total += int64(n)
	if err != nil {
		return total, err
	}
	n, err = w.Write(rawHeader)
	total += int64(n)
	if err != nil {
		return total, err
	}

	for _, f := range files {
		staged, err := os.Open(filepath.Join(b.tempDir, f.TempName))
		if err != nil {
			return total, fmt.Errorf("pak: %w: %v", ErrTempFail, err)
		}
		copied, err := io.Copy(w, staged)
		staged.Close()
		total += copied
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Close removes the staging directory. The Builder is unusable after.
func (b *Builder) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return os.RemoveAll(b.tempDir)
}
