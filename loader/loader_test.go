package loader_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/lumen3d/lumen/asset"
	"github.com/lumen3d/lumen/loader"
	"github.com/lumen3d/lumen/scene"
)

// fakeTimeline stands in for the app's run queue: completions pile up
// and the test drains them like a frame tick would.
type fakeTimeline struct {
	mu    sync.Mutex
	queue []func()
}

func (f *fakeTimeline) Invoke(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fn)
}

// drain runs everything queued so far, like the top of a frame tick.
func (f *fakeTimeline) drain() int {
	f.mu.Lock()
	pending := f.queue
	f.queue = nil
	f.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// pumpUntil drains the queue, ticking, until cond holds. Load
// completions come from background goroutines, so the test has to keep
// pumping for a while.
func (f *fakeTimeline) pumpUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f.drain()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached while pumping the timeline")
}

type diagRecord struct {
	op   string
	name string
	err  error
}

// diagRecorder captures swallowed errors for assertions.
type diagRecorder struct {
	mu      sync.Mutex
	records []diagRecord
}

func (d *diagRecorder) hook(op, name string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = append(d.records, diagRecord{op, name, err})
}

func (d *diagRecorder) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.records)
}

func (d *diagRecorder) all() []diagRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]diagRecord, len(d.records))
	copy(out, d.records)
	return out
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// testAssets is the standard fixture tree: two decodable textures and
// one file that is not an image.
func testAssets(t *testing.T) asset.Source {
	t.Helper()
	return asset.FS(fstest.MapFS{
		"textures/wood.png":  &fstest.MapFile{Data: pngBytes(t, 8, 8)},
		"textures/stone.png": &fstest.MapFile{Data: pngBytes(t, 4, 4)},
		"textures/bad.png":   &fstest.MapFile{Data: []byte("not a png at all")},
	})
}

func newTestBridge(t *testing.T) (*loader.Bridge, *fakeTimeline, *scene.Scene, *diagRecorder) {
	t.Helper()
	tl := &fakeTimeline{}
	sc := scene.New()
	b := loader.New(tl, sc, testAssets(t), loader.Config{})
	rec := &diagRecorder{}
	b.SetDiagnostic(rec.hook)
	return b, tl, sc, rec
}
