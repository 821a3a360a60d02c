// Copyright (c) 2026 lumen3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// The pak archive format is built for resource streaming. It is
// designed to be memory mapped: unlike tar it knows where every file
// sits before any of them is read. The archive itself is therefore not
// compressed; every file is individually lz4-compressed so it can be
// decompressed on the fly, straight from its place. That trades some
// space for getting resources from disk to a usable state as fast as
// possible. Archives can be read from concurrently.
package asset

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
)

// pak errors
var (
	ErrFormat   = errors.New("corrupted or not a pak archive")
	ErrTempFail = errors.New("temporary folder or file operation failed")
)

var pakMagic = [4]byte{'L', 'P', 'K', '\x00'}

// Sizes relevant to the fixed part of the file header.
const (
	magicLength      = 4
	headerSizeLength = 8
)

// IndexEntry is info for one file in the archive index. Offset is
// relative to the start of the data section, so the header can be
// encoded before the final layout is known.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the archive header for pak files.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

func encodeHeader(h *Header) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeHeader(h *Header, bts []byte) error {
	return gob.NewDecoder(bytes.NewReader(bts)).Decode(h)
}

func putHeaderSize(num int64) []byte {
	bts := make([]byte, headerSizeLength)
	binary.LittleEndian.PutUint64(bts, uint64(num))
	return bts
}

func headerSize(bts []byte) int64 {
	return int64(binary.LittleEndian.Uint64(bts))
}
