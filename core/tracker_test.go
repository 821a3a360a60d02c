package core_test

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen3d/lumen/core"
	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
	"github.com/lumen3d/lumen/shape"
)

// fakeDisposer records names and can be told to fail.
type fakeDisposer struct {
	geoErr error
	texErr error

	geos []string
	texs []string
}

func (d *fakeDisposer) DisposeGeometry(g *res.Geometry) error {
	if d.geoErr != nil {
		return d.geoErr
	}
	d.geos = append(d.geos, g.Name())
	return nil
}

func (d *fakeDisposer) DisposeTexture(t *res.Texture) error {
	if d.texErr != nil {
		return d.texErr
	}
	d.texs = append(d.texs, t.Name())
	return nil
}

func readyTexture(name string) *res.Texture {
	return res.NewTextureFromImage(name, image.NewRGBA(image.Rect(0, 0, 2, 2)), res.TextureOptions{})
}

// attachCube adds a node carrying a fresh cube geometry and, when tex
// is set, a material referencing it.
func attachCube(sc *scene.Scene, name string, tex *res.Texture) (*scene.Node, *res.Geometry) {
	g := res.NewGeometry(name, shape.Cube(1))
	var m *res.Material
	if tex != nil {
		m = res.NewMaterial(name+"-mat", "unlit")
		m.SetUniform("map", res.TextureUniform(tex))
	}
	n := sc.Root().NewChild(name)
	n.Attach(g, m)
	return n, g
}

func sweep(t *testing.T, tr *core.Tracker, sc *scene.Scene, d res.Disposer) {
	t.Helper()
	sc.UpdateQueues()
	require.NoError(t, tr.Sweep(sc, d))
}

func TestSweepDisposesUnreferenced(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	tex := readyTexture("brick")
	_, keepGeo := attachCube(sc, "keep", tex)
	dropNode, dropGeo := attachCube(sc, "drop", nil)

	sweep(t, tr, sc, d)
	geos, texs := tr.Live()
	assert.Equal(t, 2, geos)
	assert.Equal(t, 1, texs)
	assert.Empty(t, d.geos)

	sc.Remove(dropNode)
	sweep(t, tr, sc, d)

	assert.Equal(t, []string{"drop"}, d.geos)
	assert.True(t, dropGeo.Disposed())
	assert.False(t, keepGeo.Disposed())
	assert.False(t, tex.Disposed())

	geos, texs = tr.Live()
	assert.Equal(t, 1, geos)
	assert.Equal(t, 1, texs)
}

func TestSweepDisposesAbandonedTexture(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	tex := readyTexture("brick")
	node, _ := attachCube(sc, "wall", tex)

	sweep(t, tr, sc, d)
	sc.Remove(node)
	sweep(t, tr, sc, d)

	assert.Equal(t, []string{"brick"}, d.texs)
	assert.True(t, tex.Disposed())
}

func TestSweepOneFrameLatency(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	node, _ := attachCube(sc, "brief", nil)
	sweep(t, tr, sc, d)

	// removed this frame, collected by this frame's sweep of the
	// previous snapshot
	sc.Remove(node)
	sweep(t, tr, sc, d)
	assert.Equal(t, []string{"brief"}, d.geos)
}

func TestPendingTextureCountsAsUsed(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	pending := res.NewTexture("incoming", res.TextureOptions{})
	attachCube(sc, "host", pending)

	sweep(t, tr, sc, d)
	sweep(t, tr, sc, d)
	sweep(t, tr, sc, d)

	assert.False(t, pending.Disposed())
	assert.Empty(t, d.texs)
	_, texs := tr.Live()
	assert.Equal(t, 1, texs)
}

func TestSharedResourceMarkedOnce(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	g := res.NewGeometry("shared", shape.Cube(1))
	sc.Root().NewChild("a").Attach(g, nil)
	sc.Root().NewChild("b").Attach(g, nil)

	sweep(t, tr, sc, d)

	geos, _ := tr.Live()
	assert.Equal(t, 1, geos)
	assert.Equal(t, uint32(2), g.UseCount(tr.Frame()))
}

func TestSweepDisposesExactlyOnce(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	node, _ := attachCube(sc, "once", nil)
	sweep(t, tr, sc, d)
	sc.Remove(node)

	sweep(t, tr, sc, d)
	sweep(t, tr, sc, d)
	sweep(t, tr, sc, d)
	assert.Equal(t, []string{"once"}, d.geos)
}

func TestLightCubemapMarked(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	cube := readyTexture("env")
	light := scene.NewLight(scene.Point, "sun")
	light.Cubemap = cube
	sc.AddLight(light)

	sweep(t, tr, sc, d)
	sweep(t, tr, sc, d)
	assert.False(t, cube.Disposed())

	sc.RemoveLight(light)
	sweep(t, tr, sc, d)
	assert.True(t, cube.Disposed())
	assert.Equal(t, []string{"env"}, d.texs)
}

func TestSweepDisposeErrorAborts(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	nodeA, geoA := attachCube(sc, "alpha", nil)
	nodeB, geoB := attachCube(sc, "beta", nil)
	sweep(t, tr, sc, d)

	sc.Remove(nodeA)
	sc.Remove(nodeB)

	boom := errors.New("device lost")
	d.geoErr = boom
	sc.UpdateQueues()
	err := tr.Sweep(sc, d)
	require.ErrorIs(t, err, boom)

	// the failed resource is spent, never retried
	failed, survivor := geoA, geoB
	if !failed.Disposed() {
		failed, survivor = geoB, geoA
	}
	assert.True(t, failed.Disposed())
	assert.False(t, survivor.Disposed())

	// next sweep picks up what the aborted one never examined
	d.geoErr = nil
	sweep(t, tr, sc, d)
	assert.True(t, survivor.Disposed())
	assert.Equal(t, []string{survivor.Name()}, d.geos)
}

func TestSweepStats(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	tex := readyTexture("brick")
	attachCube(sc, "keep", tex)
	node, _ := attachCube(sc, "drop", nil)

	sweep(t, tr, sc, d)
	st := tr.Stats()
	assert.Equal(t, uint64(1), st.Frame)
	assert.Equal(t, 2, st.LiveGeometries)
	assert.Equal(t, 1, st.LiveTextures)
	assert.Equal(t, 0, st.DisposedGeometries)

	sc.Remove(node)
	sweep(t, tr, sc, d)
	st = tr.Stats()
	assert.Equal(t, 1, st.LiveGeometries)
	assert.Equal(t, 1, st.DisposedGeometries)
	assert.Equal(t, 0, st.DisposedTextures)
}

func TestDisposeAll(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	tex := readyTexture("brick")
	_, g1 := attachCube(sc, "one", tex)
	_, g2 := attachCube(sc, "two", nil)
	sweep(t, tr, sc, d)

	require.NoError(t, tr.DisposeAll(d))
	assert.True(t, g1.Disposed())
	assert.True(t, g2.Disposed())
	assert.True(t, tex.Disposed())

	geos, texs := tr.Live()
	assert.Equal(t, 0, geos)
	assert.Equal(t, 0, texs)
}

func TestDisposeAllContinuesPastFailures(t *testing.T) {
	sc := scene.New()
	tr := core.NewTracker()
	d := &fakeDisposer{}

	tex := readyTexture("brick")
	attachCube(sc, "one", tex)
	sweep(t, tr, sc, d)

	boom := errors.New("device lost")
	d.geoErr = boom
	err := tr.DisposeAll(d)
	require.ErrorIs(t, err, boom)

	// texture disposal still happened despite the geometry failure
	assert.Equal(t, []string{"brick"}, d.texs)
	assert.True(t, tex.Disposed())
}
