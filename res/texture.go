package res

import (
	"image"
	"image/draw"
)

// WrapMode hints how the renderer should sample outside [0,1].
type WrapMode uint8

const (
	WrapRepeat WrapMode = iota
	WrapClamp
	WrapMirror
)

// FilterMode hints the sampling filter.
type FilterMode uint8

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// TextureOptions carry decode and sampling hints. The zero value is a
// plain repeat/linear texture.
type TextureOptions struct {
	// FlipY flips the decoded image vertically before upload.
	FlipY bool

	// SRGB marks the pixel data as sRGB encoded.
	SRGB bool

	// PremultiplyAlpha asks for premultiplied alpha on upload.
	PremultiplyAlpha bool

	// MaxSize, when positive, caps the longest image side; larger
	// images are scaled down after decode.
	MaxSize int

	Wrap   WrapMode
	Filter FilterMode
}

// DynamicSource produces a fresh frame on demand, for video-like
// textures that re-upload every frame.
type DynamicSource interface {
	Frame() image.Image
}

// Texture is a GPU texture resource. It is usable the moment it is
// created: a still-loading texture holds Pending state and may be
// attached to materials and scenes; it starts rendering once the load
// settles Ready.
type Texture struct {
	state
	use usage

	name string
	opts TextureOptions

	img    *image.RGBA
	width  int
	height int

	src      DynamicSource
	handle   any
	disposed bool
}

// NewTexture returns a texture in Pending state. The loader resolves
// or fails it when the backing data settles.
func NewTexture(name string, opts TextureOptions) *Texture {
	return &Texture{state: newState(), name: name, opts: opts}
}

// NewTextureFromImage returns a Ready texture backed by img. The image
// is converted to RGBA immediately.
func NewTextureFromImage(name string, img image.Image, opts TextureOptions) *Texture {
	rgba := ToRGBA(img)
	b := rgba.Bounds()
	return &Texture{
		state:  newSettledState(),
		name:   name,
		opts:   opts,
		img:    rgba,
		width:  b.Dx(),
		height: b.Dy(),
	}
}

// NewDynamicTexture returns a Ready texture that pulls a new frame
// from src whenever the renderer asks.
func NewDynamicTexture(name string, src DynamicSource, opts TextureOptions) *Texture {
	t := &Texture{state: newSettledState(), name: name, opts: opts, src: src}
	if frame := src.Frame(); frame != nil {
		t.img = ToRGBA(frame)
		b := t.img.Bounds()
		t.width, t.height = b.Dx(), b.Dy()
	}
	return t
}

// Resolve settles a pending texture with its pixel data. Only the load
// completion calls it, exactly once, on the frame timeline.
func (t *Texture) Resolve(img *image.RGBA) {
	t.img = img
	if img != nil {
		b := img.Bounds()
		t.width, t.height = b.Dx(), b.Dy()
	}
	t.settle(nil)
}

// Fail settles a pending texture with a load error.
func (t *Texture) Fail(err error) {
	t.settle(err)
}

func (t *Texture) Name() string            { return t.name }
func (t *Texture) Options() TextureOptions { return t.opts }
func (t *Texture) Size() (int, int)        { return t.width, t.height }

// Image returns the decoded pixels, nil while Pending or Failed.
func (t *Texture) Image() *image.RGBA { return t.img }

// Dynamic reports whether the texture re-uploads every frame.
func (t *Texture) Dynamic() bool { return t.src != nil }

// Refresh pulls the next frame from a dynamic source. No-op for
// static textures.
func (t *Texture) Refresh() {
	if t.src == nil {
		return
	}
	if frame := t.src.Frame(); frame != nil {
		t.img = ToRGBA(frame)
		b := t.img.Bounds()
		t.width, t.height = b.Dx(), b.Dy()
	}
}

// Pixels returns the raw RGBA bytes laid out with the given row pitch,
// for upload. A pitch smaller than the natural stride falls back to
// the natural one.
func (t *Texture) Pixels(rowPitch int) ([]uint8, error) {
	if t.img == nil {
		return nil, ErrNotReady
	}
	natural := 4 * t.width
	if rowPitch <= natural {
		return t.img.Pix, nil
	}
	out := make([]uint8, rowPitch*t.height)
	for y := 0; y < t.height; y++ {
		copy(out[y*rowPitch:], t.img.Pix[y*t.img.Stride:y*t.img.Stride+natural])
	}
	return out, nil
}

// Handle is the renderer-owned GPU object for this texture.
func (t *Texture) Handle() any     { return t.handle }
func (t *Texture) SetHandle(h any) { t.handle = h }

// MarkUsed records a use in the given frame, reporting true on the
// first mark of that frame. Collector bookkeeping.
func (t *Texture) MarkUsed(frame uint64) bool { return t.use.mark(frame) }

// UsedIn reports whether the texture was marked during frame.
func (t *Texture) UsedIn(frame uint64) bool { return t.use.usedIn(frame) }

// UseCount returns the number of marks recorded in frame.
func (t *Texture) UseCount(frame uint64) uint32 { return t.use.useCount(frame) }

// Disposed reports whether Dispose already ran.
func (t *Texture) Disposed() bool { return t.disposed }

// Dispose releases the GPU side of the texture through d. Repeat
// calls are no-ops; a texture is disposed at most once.
func (t *Texture) Dispose(d Disposer) error {
	if t.disposed {
		return nil
	}
	t.disposed = true
	if d == nil {
		return nil
	}
	return d.DisposeTexture(t)
}

// ToRGBA converts any decoded image into RGBA pixel data.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
