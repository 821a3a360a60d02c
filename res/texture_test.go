package res_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen3d/lumen/res"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0xff, A: 0xff})
		}
	}
	return img
}

type countingDisposer struct {
	textures   int
	geometries int
	fail       error
}

func (d *countingDisposer) DisposeTexture(*res.Texture) error {
	d.textures++
	return d.fail
}

func (d *countingDisposer) DisposeGeometry(*res.Geometry) error {
	d.geometries++
	return d.fail
}

func TestTextureFromImageIsReady(t *testing.T) {
	tex := res.NewTextureFromImage("checker", testImage(4, 2), res.TextureOptions{})
	assert.Equal(t, res.Ready, tex.State())
	w, h := tex.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tex.Wait(ctx))
}

func TestTextureResolve(t *testing.T) {
	tex := res.NewTexture("deferred", res.TextureOptions{})
	assert.Equal(t, res.Pending, tex.State())
	assert.Nil(t, tex.Image())

	done := make(chan error, 1)
	go func() {
		done <- tex.Wait(context.Background())
	}()

	tex.Resolve(testImage(8, 8))
	require.NoError(t, <-done)
	assert.Equal(t, res.Ready, tex.State())
	require.NotNil(t, tex.Image())
}

func TestTextureFail(t *testing.T) {
	boom := errors.New("decode: not an image")
	tex := res.NewTexture("broken", res.TextureOptions{})
	tex.Fail(boom)

	assert.Equal(t, res.Failed, tex.State())
	assert.ErrorIs(t, tex.Wait(context.Background()), boom)
	assert.ErrorIs(t, tex.Err(), boom)
}

func TestTextureSettleTwicePanics(t *testing.T) {
	tex := res.NewTexture("twice", res.TextureOptions{})
	tex.Resolve(testImage(1, 1))
	assert.Panics(t, func() { tex.Resolve(testImage(1, 1)) })
}

func TestTextureWaitHonoursContext(t *testing.T) {
	tex := res.NewTexture("stalled", res.TextureOptions{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tex.Wait(ctx), context.DeadlineExceeded)
	assert.Equal(t, res.Pending, tex.State())
}

func TestTextureDisposeOnce(t *testing.T) {
	var d countingDisposer
	tex := res.NewTextureFromImage("once", testImage(1, 1), res.TextureOptions{})

	require.NoError(t, tex.Dispose(&d))
	require.NoError(t, tex.Dispose(&d))
	assert.Equal(t, 1, d.textures)
	assert.True(t, tex.Disposed())
}

func TestTextureDisposeError(t *testing.T) {
	d := countingDisposer{fail: errors.New("device lost")}
	tex := res.NewTextureFromImage("lost", testImage(1, 1), res.TextureOptions{})

	require.Error(t, tex.Dispose(&d))
	// No retry: the resource counts as disposed even when the
	// backend reported a failure.
	require.NoError(t, tex.Dispose(&d))
	assert.Equal(t, 1, d.textures)
}

func TestTextureUsageMarks(t *testing.T) {
	tex := res.NewTextureFromImage("marked", testImage(1, 1), res.TextureOptions{})

	assert.True(t, tex.MarkUsed(1), "first mark of the frame")
	assert.False(t, tex.MarkUsed(1), "re-reference within one frame")
	assert.True(t, tex.UsedIn(1))
	assert.EqualValues(t, 2, tex.UseCount(1))

	assert.False(t, tex.UsedIn(2))
	assert.True(t, tex.MarkUsed(2), "counter resets on a new frame")
}

func TestTexturePixelsRowPitch(t *testing.T) {
	tex := res.NewTextureFromImage("pitch", testImage(2, 2), res.TextureOptions{})

	natural, err := tex.Pixels(0)
	require.NoError(t, err)
	assert.Len(t, natural, 2*2*4)

	padded, err := tex.Pixels(16)
	require.NoError(t, err)
	assert.Len(t, padded, 16*2)
	assert.Equal(t, natural[:8], padded[:8])
}

func TestTexturePixelsPending(t *testing.T) {
	tex := res.NewTexture("empty", res.TextureOptions{})
	_, err := tex.Pixels(0)
	assert.ErrorIs(t, err, res.ErrNotReady)
}

type frameSource struct {
	frames int
}

func (s *frameSource) Frame() image.Image {
	s.frames++
	return testImage(s.frames, 1)
}

func TestDynamicTexture(t *testing.T) {
	src := &frameSource{}
	tex := res.NewDynamicTexture("video", src, res.TextureOptions{})

	assert.True(t, tex.Dynamic())
	assert.Equal(t, res.Ready, tex.State())

	tex.Refresh()
	w, _ := tex.Size()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, src.frames)
}

func TestToRGBAKeepsRGBA(t *testing.T) {
	img := testImage(3, 3)
	assert.Same(t, img, res.ToRGBA(img))

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	rgba := res.ToRGBA(gray)
	assert.Equal(t, 2, rgba.Bounds().Dx())
}
