// Copyright (c) 2026 lumen3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package asset

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pierrec/lz4"
	"golang.org/x/exp/mmap"
)

// Open reads the archive layout from r. It checks that r actually is a
// pak archive and returns ErrFormat when it isn't. The returned
// Archive keeps r and serves any number of concurrent readers from it.
func Open(r io.ReaderAt) (*Archive, error) {
	magic := make([]byte, magicLength)
	if num, err := r.ReadAt(magic, 0); err != nil {
		return nil, fmt.Errorf("pak: %w", ErrFormat)
	} else if num < magicLength || !bytes.Equal(magic, pakMagic[:]) {
		return nil, fmt.Errorf("pak: %w", ErrFormat)
	}

	sizeBytes := make([]byte, headerSizeLength)
	if num, err := r.ReadAt(sizeBytes, magicLength); err != nil || num < headerSizeLength {
		return nil, fmt.Errorf("pak: %w", ErrFormat)
	}
	size := headerSize(sizeBytes)
	if size <= 0 {
		return nil, fmt.Errorf("pak: %w", ErrFormat)
	}

	headerBytes := make([]byte, size)
	if num, err := r.ReadAt(headerBytes, magicLength+headerSizeLength); err != nil || int64(num) < size {
		return nil, fmt.Errorf("pak: %w", ErrFormat)
	}

	var header Header
	if err := decodeHeader(&header, headerBytes); err != nil {
		return nil, fmt.Errorf("pak: %w", ErrFormat)
	}

	ar := &Archive{
		reader:    r,
		header:    header,
		dataStart: magicLength + headerSizeLength + size,
		entries:   make(map[string]IndexEntry, len(header.Index)),
	}
	for _, e := range header.Index {
		ar.entries[e.Name] = e
	}
	return ar, nil
}

// OpenFile memory-maps an archive from disk. Closing the returned
// archive unmaps the file.
func OpenFile(path string) (*Archive, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pak: open %q: %v", path, err)
	}
	ar, err := Open(m)
	if err != nil {
		m.Close()
		return nil, err
	}
	ar.closer = m
	return ar, nil
}

// Archive provides concurrent io for a pak file. Each contained file
// gets its own decompressing reader, so several can stream at once.
// Archive implements Source.
type Archive struct {
	reader    io.ReaderAt
	header    Header
	dataStart int64
	entries   map[string]IndexEntry
	closer    io.Closer
}

// Header returns the archive metadata.
func (a *Archive) Header() Header { return a.header }

// Names lists the archived files in sorted order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.entries))
	for n := range a.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Stat returns the index entry for a name.
func (a *Archive) Stat(name string) (IndexEntry, bool) {
	e, ok := a.entries[name]
	return e, ok
}

// Open returns a reader streaming the decompressed contents of the
// named file. Readers are independent; opening is cheap.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	e, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("pak: %q: %w", name, ErrNotFound)
	}
	section := io.NewSectionReader(a.reader, a.dataStart+e.Offset, e.CompressedSize)
	return &entryReader{zr: lz4.NewReader(section), size: e.Size}, nil
}

// ReadAll returns the entire decompressed contents of the named file.
func (a *Archive) ReadAll(name string) ([]byte, error) {
	e, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("pak: %q: %w", name, ErrNotFound)
	}
	rc, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	out := bytes.NewBuffer(make([]byte, 0, e.Size))
	if _, err := io.Copy(out, rc); err != nil {
		return nil, fmt.Errorf("pak: read %q: %v", name, err)
	}
	return out.Bytes(), nil
}

// Close releases the backing mapping when the archive owns one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// entryReader streams one decompressed file and stops at its recorded
// uncompressed size, so trailing lz4 frame padding never leaks into
// the payload.
type entryReader struct {
	zr   io.Reader
	size int64
	read int64
}

func (r *entryReader) Read(p []byte) (int, error) {
	if r.read >= r.size {
		return 0, io.EOF
	}
	if max := r.size - r.read; int64(len(p)) > max {
		p = p[:max]
	}
	n, err := r.zr.Read(p)
	r.read += int64(n)
	return n, err
}

func (r *entryReader) Close() error { return nil }
