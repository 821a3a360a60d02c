package render_test

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen3d/lumen/core"
	"github.com/lumen3d/lumen/render"
	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
	"github.com/lumen3d/lumen/shape"
)

func nullFactory(core.Window, core.RendererConfiguration) (core.Renderer, error) {
	return render.NewNullRenderer(core.RendererConfiguration{}), nil
}

func TestRegistryNamedLookup(t *testing.T) {
	render.Register("temp", 5, nullFactory)
	defer render.Unregister("temp")

	require.True(t, render.IsRegistered("temp"))

	r, err := render.New("temp", nil, core.RendererConfiguration{})
	require.NoError(t, err)
	require.NotNil(t, r)

	_, err = render.New("no-such-backend", nil, core.RendererConfiguration{})
	assert.Error(t, err)
}

func TestRegistryPriorityOrder(t *testing.T) {
	render.Register("fancy", 90, nullFactory)
	defer render.Unregister("fancy")

	names := render.Available()
	require.NotEmpty(t, names)
	assert.Equal(t, "fancy", names[0])

	// empty name selects the highest priority
	r, err := render.New("", nil, core.RendererConfiguration{})
	require.NoError(t, err)
	require.NotNil(t, r)
}

func TestRegistryFactoryError(t *testing.T) {
	boom := errors.New("window lost")
	render.Register("broken", 99, func(core.Window, core.RendererConfiguration) (core.Renderer, error) {
		return nil, boom
	})
	defer render.Unregister("broken")

	_, err := render.New("broken", nil, core.RendererConfiguration{})
	assert.ErrorIs(t, err, boom)
}

func TestNullRendererAlwaysRegistered(t *testing.T) {
	assert.True(t, render.IsRegistered(render.RendererNull))
}

func buildScene() (*scene.Scene, *res.Geometry, *res.Texture) {
	sc := scene.New()
	geo := res.NewGeometry("cube", shape.Cube(1))
	tex := res.NewTextureFromImage("tex", image.NewRGBA(image.Rect(0, 0, 2, 2)), res.TextureOptions{})
	mat := res.NewMaterial("mat", "unlit")
	mat.SetUniform("map", res.TextureUniform(tex))

	sc.Add(scene.NewNode("box"))
	sc.Root().Children()[0].Attach(geo, mat)
	sc.UpdateQueues()
	return sc, geo, tex
}

func TestNullRendererUploads(t *testing.T) {
	sc, geo, tex := buildScene()
	r := render.NewNullRenderer(core.RendererConfiguration{ScreenWidth: 64, ScreenHeight: 32})

	require.NoError(t, r.Render(sc))

	assert.NotNil(t, geo.Handle())
	assert.NotNil(t, tex.Handle())
	assert.Equal(t, 1, r.Draws())
	assert.Equal(t, uint64(1), r.Frames())

	w, h := r.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
}

func TestNullRendererSkipsPending(t *testing.T) {
	sc := scene.New()
	geo := res.NewPendingGeometry("later")
	node := sc.Root().NewChild("n")
	node.Attach(geo, nil)
	sc.UpdateQueues()

	r := render.NewNullRenderer(core.RendererConfiguration{})
	require.NoError(t, r.Render(sc))
	assert.Nil(t, geo.Handle())
}

func TestNullRendererDispose(t *testing.T) {
	sc, geo, tex := buildScene()
	r := render.NewNullRenderer(core.RendererConfiguration{})
	require.NoError(t, r.Render(sc))

	require.NoError(t, r.DisposeGeometry(geo))
	require.NoError(t, r.DisposeTexture(tex))
	assert.Nil(t, geo.Handle())
	assert.Nil(t, tex.Handle())
	assert.Equal(t, 2, r.Released())

	require.NoError(t, r.Dispose())
	assert.ErrorIs(t, r.Render(sc), render.ErrRendererDisposed)
}

func TestNullRendererNilScene(t *testing.T) {
	r := render.NewNullRenderer(core.RendererConfiguration{})
	assert.NoError(t, r.Render(nil))
}
