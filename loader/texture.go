package loader

import (
	"fmt"
	"image"
	"io"
	"sync/atomic"

	"github.com/anthonynsimon/bild/transform"

	"github.com/lumen3d/lumen/res"
)

// Texture resolves a source into a texture, returning immediately in
// every case. Accepted sources:
//
//   - *res.Texture: returned as-is.
//   - image.Image: decoded data, Ready on return.
//   - res.DynamicSource: video-like source, Ready on return and
//     re-uploaded every frame.
//   - string: an asset name, fetched and decoded in the background;
//     the texture comes back Pending and settles between frames.
//   - io.Reader: like string, decoded in the background.
//
// A Pending texture is fully attachable; it starts rendering when the
// load settles Ready. Anything else fails the texture with
// ErrBadSource.
func (b *Bridge) Texture(src any, opts res.TextureOptions) *res.Texture {
	switch v := src.(type) {
	case *res.Texture:
		return v

	case res.DynamicSource:
		return res.NewDynamicTexture(b.nextName("dynamic"), v, opts)

	case image.Image:
		return res.NewTextureFromImage(b.nextName("image"), prepareImage(v, opts), opts)

	case string:
		tex := res.NewTexture(v, opts)
		go b.fetchTexture(tex, v, opts)
		return tex

	case io.Reader:
		tex := res.NewTexture(b.nextName("reader"), opts)
		go b.decodeTexture(tex, v, opts)
		return tex

	default:
		tex := res.NewTexture(b.nextName("invalid"), opts)
		b.inv.Invoke(func() {
			tex.Fail(fmt.Errorf("loader: texture source %T: %w", src, ErrBadSource))
		})
		return tex
	}
}

func (b *Bridge) nextName(kind string) string {
	return fmt.Sprintf("%s#%d", kind, atomic.AddUint64(&b.nameSeq, 1))
}

// fetchTexture runs off the timeline: open, decode, transform, then
// hand the result back through the Invoker.
func (b *Bridge) fetchTexture(tex *res.Texture, name string, opts res.TextureOptions) {
	rc, err := b.assets.Open(name)
	if err != nil {
		b.settleTexture(tex, nil, fmt.Errorf("loader: texture %q: %w", name, err))
		return
	}
	defer rc.Close()
	b.decodeTexture(tex, rc, opts)
}

func (b *Bridge) decodeTexture(tex *res.Texture, r io.Reader, opts res.TextureOptions) {
	img, _, err := image.Decode(r)
	if err != nil {
		b.settleTexture(tex, nil, fmt.Errorf("loader: texture %q: decode: %v", tex.Name(), err))
		return
	}
	b.settleTexture(tex, prepareImage(img, opts), nil)
}

func (b *Bridge) settleTexture(tex *res.Texture, img *image.RGBA, err error) {
	b.inv.Invoke(func() {
		if err != nil {
			tex.Fail(err)
			return
		}
		tex.Resolve(img)
	})
}

// prepareImage applies decode-time options and converts to RGBA.
func prepareImage(img image.Image, opts res.TextureOptions) *image.RGBA {
	if opts.MaxSize > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > opts.MaxSize || h > opts.MaxSize {
			scale := float64(opts.MaxSize) / float64(max(w, h))
			nw := int(float64(w) * scale)
			nh := int(float64(h) * scale)
			img = transform.Resize(img, max(nw, 1), max(nh, 1), transform.Linear)
		}
	}
	if opts.FlipY {
		img = transform.FlipV(img)
	}
	return res.ToRGBA(img)
}
