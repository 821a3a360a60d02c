// Copyright (c) 2026 lumen3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package asset_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lumen3d/lumen/asset"
)

var (
	testString1 = "idunvovkjnreovmegihjbrqlkmfrjnb"
	testString2 = "idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb"
)

func buildTestArchive(t *testing.T) []byte {
	t.Helper()
	builder, err := asset.NewBuilder(asset.Header{
		Author:      "lumen3d",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()

	if err := builder.Add("test", strings.NewReader(testString1)); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("test2", strings.NewReader(testString2)); err != nil {
		t.Fatal(err)
	}

	buf := bytes.NewBuffer([]byte{})
	if written, err := builder.WriteTo(buf); err != nil {
		t.Fatal(err)
	} else if written != int64(buf.Len()) {
		t.Errorf("WriteTo reported %d bytes, buffer has %d", written, buf.Len())
	}
	return buf.Bytes()
}

func TestCreateAndRead(t *testing.T) {
	raw := buildTestArchive(t)

	ar, err := asset.Open(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}

	f, err := ar.Open("test")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	result, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(result) != testString1 {
		t.Error("test string does not match up")
	}
}

func TestCreateAndReadAll(t *testing.T) {
	raw := buildTestArchive(t)

	ar, err := asset.Open(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}

	for name, want := range map[string]string{
		"test":  testString1,
		"test2": testString2,
	} {
		got, err := ar.ReadAll(name)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("%s: content does not match up", name)
		}
	}
}

func TestArchiveIndex(t *testing.T) {
	raw := buildTestArchive(t)

	ar, err := asset.Open(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}

	names := ar.Names()
	if len(names) != 2 || names[0] != "test" || names[1] != "test2" {
		t.Errorf("unexpected names: %v", names)
	}

	entry, ok := ar.Stat("test2")
	if !ok {
		t.Fatal("test2 missing from index")
	}
	if entry.Size != int64(len(testString2)) {
		t.Errorf("size = %d, want %d", entry.Size, len(testString2))
	}
	if entry.CompressedSize <= 0 {
		t.Error("compressed size not recorded")
	}

	if _, err := ar.ReadAll("nope"); !errors.Is(err, asset.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := asset.Open(bytes.NewReader([]byte("definitely not an archive")))
	if !errors.Is(err, asset.ErrFormat) {
		t.Errorf("want ErrFormat, got %v", err)
	}

	_, err = asset.Open(bytes.NewReader([]byte{}))
	if !errors.Is(err, asset.ErrFormat) {
		t.Errorf("empty input: want ErrFormat, got %v", err)
	}
}

func TestOpenFileMmap(t *testing.T) {
	raw := buildTestArchive(t)
	path := filepath.Join(t.TempDir(), "assets.pak")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	ar, err := asset.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ar.Close()

	got, err := ar.ReadAll("test2")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != testString2 {
		t.Error("mmap read does not match up")
	}
}

func TestConcurrentReaders(t *testing.T) {
	raw := buildTestArchive(t)
	ar, err := asset.Open(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		name, want := "test", testString1
		if i%2 == 1 {
			name, want = "test2", testString2
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ar.ReadAll(name)
			if err != nil {
				t.Error(err)
				return
			}
			if string(got) != want {
				t.Errorf("%s: concurrent read mismatch", name)
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentAdd(t *testing.T) {
	builder, err := asset.NewBuilder(asset.Header{Version: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			name := string(rune('a' + n))
			if err := builder.Add(name, strings.NewReader(strings.Repeat(name, 100))); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	var buf bytes.Buffer
	if _, err := builder.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	ar, err := asset.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(ar.Names()) != 8 {
		t.Errorf("archived %d files, want 8", len(ar.Names()))
	}
	got, err := ar.ReadAll("c")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != strings.Repeat("c", 100) {
		t.Error("entry c does not match up")
	}
}
