package loader_test

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen3d/lumen/asset"
	"github.com/lumen3d/lumen/loader"
	"github.com/lumen3d/lumen/res"
)

func TestTextureFromDecodedImage(t *testing.T) {
	b, _, _, _ := newTestBridge(t)

	img := image.NewRGBA(image.Rect(0, 0, 5, 3))
	tex := b.Texture(img, res.TextureOptions{})

	// Decoded sources are usable immediately, no pumping required.
	assert.Equal(t, res.Ready, tex.State())
	w, h := tex.Size()
	assert.Equal(t, 5, w)
	assert.Equal(t, 3, h)
}

func TestTextureFromName(t *testing.T) {
	b, tl, _, _ := newTestBridge(t)

	tex := b.Texture("textures/wood.png", res.TextureOptions{})
	assert.Equal(t, res.Pending, tex.State(), "name sources come back pending")
	assert.Equal(t, "textures/wood.png", tex.Name())

	tl.pumpUntil(t, func() bool { return tex.State() != res.Pending })
	require.Equal(t, res.Ready, tex.State())
	w, h := tex.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)
}

func TestTextureMissingFile(t *testing.T) {
	b, tl, _, _ := newTestBridge(t)

	tex := b.Texture("textures/missing.png", res.TextureOptions{})
	tl.pumpUntil(t, func() bool { return tex.State() != res.Pending })

	assert.Equal(t, res.Failed, tex.State())
	assert.ErrorIs(t, tex.Err(), asset.ErrNotFound)
}

func TestTextureDecodeFailure(t *testing.T) {
	b, tl, _, _ := newTestBridge(t)

	tex := b.Texture("textures/bad.png", res.TextureOptions{})
	tl.pumpUntil(t, func() bool { return tex.State() != res.Pending })

	assert.Equal(t, res.Failed, tex.State())
	assert.ErrorContains(t, tex.Err(), "decode")
}

func TestTextureFromReader(t *testing.T) {
	b, tl, _, _ := newTestBridge(t)

	tex := b.Texture(bytes.NewReader(pngBytes(t, 2, 2)), res.TextureOptions{})
	tl.pumpUntil(t, func() bool { return tex.State() != res.Pending })
	assert.Equal(t, res.Ready, tex.State())
}

func TestTexturePassThrough(t *testing.T) {
	b, _, _, _ := newTestBridge(t)

	orig := res.NewTexture("mine", res.TextureOptions{})
	assert.Same(t, orig, b.Texture(orig, res.TextureOptions{}))
}

func TestTextureBadSourceType(t *testing.T) {
	b, tl, _, _ := newTestBridge(t)

	tex := b.Texture(42, res.TextureOptions{})
	tl.pumpUntil(t, func() bool { return tex.State() != res.Pending })

	assert.Equal(t, res.Failed, tex.State())
	assert.ErrorIs(t, tex.Err(), loader.ErrBadSource)
}

func TestTextureFlipAndResizeOptions(t *testing.T) {
	b, _, _, _ := newTestBridge(t)

	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	tex := b.Texture(img, res.TextureOptions{FlipY: true, MaxSize: 16})

	require.Equal(t, res.Ready, tex.State())
	w, h := tex.Size()
	assert.Equal(t, 16, w, "longest side capped")
	assert.Equal(t, 8, h, "aspect kept")
}

func TestDynamicSourceTexture(t *testing.T) {
	b, _, _, _ := newTestBridge(t)

	tex := b.Texture(stillFrames{}, res.TextureOptions{})
	assert.Equal(t, res.Ready, tex.State())
	assert.True(t, tex.Dynamic())
}

type stillFrames struct{}

func (stillFrames) Frame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 2, 2))
}
