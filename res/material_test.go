package res_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen3d/lumen/res"
)

func TestMaterialTransparencyControlsDepthMask(t *testing.T) {
	m := res.NewMaterial("glass", "standard")
	assert.False(t, m.Transparent())
	assert.True(t, m.DepthMask())

	m.SetTransparent(true)
	assert.True(t, m.Transparent())
	assert.False(t, m.DepthMask())

	m.SetTransparent(false)
	assert.True(t, m.DepthMask())
}

func TestMaterialEachTexture(t *testing.T) {
	diffuse := res.NewTexture("diffuse", res.TextureOptions{})
	normal := res.NewTexture("normal", res.TextureOptions{})
	layerA := res.NewTexture("layerA", res.TextureOptions{})
	layerB := res.NewTexture("layerB", res.TextureOptions{})

	m := res.NewMaterial("ground", "terrain")
	m.SetUniform("splat", res.TextureUniform(diffuse))
	m.SetUniform("normalMap", res.TextureUniform(normal))
	m.SetUniform("layers", res.Uniform{
		Type:  res.UniformTextureArray,
		Value: []*res.Texture{layerA, nil, layerB},
	})
	m.SetUniform("layerScale", res.Uniform{Type: res.UniformFloat, Value: float32(2)})

	seen := map[*res.Texture]int{}
	m.EachTexture(func(tex *res.Texture) { seen[tex]++ })

	assert.Len(t, seen, 4)
	for tex, n := range seen {
		assert.Equalf(t, 1, n, "texture %s visited once", tex.Name())
	}
}

func TestMaterialUniformRoundTrip(t *testing.T) {
	m := res.NewMaterial("plain", "unlit")
	_, ok := m.Uniform("color")
	assert.False(t, ok)

	m.SetUniform("color", res.Color(1, 0, 0, 1))
	u, ok := m.Uniform("color")
	require.True(t, ok)
	assert.Equal(t, res.UniformColor, u.Type)
}

func TestShaderRegistry(t *testing.T) {
	def, ok := res.ShaderByName("standard")
	require.True(t, ok)

	typ, ok := def.UniformType("map")
	require.True(t, ok)
	assert.True(t, typ.IsTexture())

	typ, ok = def.UniformType("roughness")
	require.True(t, ok)
	assert.False(t, typ.IsTexture())

	_, ok = def.UniformType("bogus")
	assert.False(t, ok)

	_, ok = res.ShaderByName("no-such-shader")
	assert.False(t, ok)

	assert.Error(t, res.RegisterShader(&res.ShaderDef{Name: "standard"}),
		"duplicate registration must fail")
	assert.Error(t, res.RegisterShader(nil))
	assert.Contains(t, res.Shaders(), "terrain")
}

func TestGeometryLifecycle(t *testing.T) {
	data := res.MeshData{
		Pos:   []float32{-1, 0, 0, 1, 0, 0, 0, 2, 0},
		Norm:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Index: []uint32{0, 1, 2},
	}
	g := res.NewGeometry("tri", data)
	assert.Equal(t, res.Ready, g.State())
	assert.Equal(t, 3, g.VertexCount())
	assert.Equal(t, 1, g.TriangleCount())

	bb := g.Bounds()
	assert.Equal(t, float32(-1), bb.Min.X())
	assert.Equal(t, float32(2), bb.Max.Y())
	assert.Equal(t, float32(0.5), bb.Center().Y())

	var d countingDisposer
	require.NoError(t, g.Dispose(&d))
	require.NoError(t, g.Dispose(&d))
	assert.Equal(t, 1, d.geometries)
}

func TestPendingGeometryResolve(t *testing.T) {
	g := res.NewPendingGeometry("later")
	assert.Equal(t, res.Pending, g.State())

	g.Resolve(res.MeshData{Pos: []float32{0, 0, 0}})
	assert.Equal(t, res.Ready, g.State())
	assert.Equal(t, 1, g.VertexCount())
}
