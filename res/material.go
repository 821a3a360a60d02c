package res

import (
	"github.com/go-gl/mathgl/mgl32"
)

// UniformType declares what a shader expects in a uniform slot.
type UniformType uint8

const (
	UniformFloat UniformType = iota
	UniformInt
	UniformBool
	UniformVec2
	UniformVec3
	UniformVec4
	UniformColor
	UniformMat4
	UniformTexture
	UniformTextureArray
)

// IsTexture reports whether the slot holds texture references.
func (t UniformType) IsTexture() bool {
	return t == UniformTexture || t == UniformTextureArray
}

// Uniform is one shader parameter value.
type Uniform struct {
	Type  UniformType
	Value any
}

// Color is a convenience constructor for color uniforms.
func Color(r, g, b, a float32) Uniform {
	return Uniform{Type: UniformColor, Value: mgl32.Vec4{r, g, b, a}}
}

// TextureUniform wraps a texture reference as a uniform value.
func TextureUniform(t *Texture) Uniform {
	return Uniform{Type: UniformTexture, Value: t}
}

// Material binds a shader to a set of uniform values. Texture-typed
// uniforms may hold still-Pending textures; the renderer skips those
// until they settle. Materials are mutated only on the frame timeline.
type Material struct {
	name   string
	shader string

	uniforms map[string]Uniform

	transparent bool
	depthMask   bool
	doubleSided bool
}

// NewMaterial returns an empty material bound to the named shader.
func NewMaterial(name, shader string) *Material {
	return &Material{
		name:      name,
		shader:    shader,
		uniforms:  make(map[string]Uniform),
		depthMask: true,
	}
}

func (m *Material) Name() string   { return m.name }
func (m *Material) Shader() string { return m.shader }

// SetUniform stores a uniform value under name.
func (m *Material) SetUniform(name string, u Uniform) {
	m.uniforms[name] = u
}

// Uniform reads a uniform value back.
func (m *Material) Uniform(name string) (Uniform, bool) {
	u, ok := m.uniforms[name]
	return u, ok
}

// Uniforms exposes the live uniform map for traversal.
func (m *Material) Uniforms() map[string]Uniform { return m.uniforms }

// Transparent reports whether renderables with this material belong to
// the transparent queue.
func (m *Material) Transparent() bool { return m.transparent }

// SetTransparent flags the material for the transparent queue and
// turns depth writes off, the usual setup for blended surfaces.
func (m *Material) SetTransparent(v bool) {
	m.transparent = v
	m.depthMask = !v
}

// DepthMask reports whether depth writes stay enabled.
func (m *Material) DepthMask() bool { return m.depthMask }

func (m *Material) SetDepthMask(v bool)   { m.depthMask = v }
func (m *Material) DoubleSided() bool     { return m.doubleSided }
func (m *Material) SetDoubleSided(v bool) { m.doubleSided = v }

// EachTexture visits every texture reachable from the material's
// uniforms, including the members of texture arrays. The collector
// uses it to mark textures live.
func (m *Material) EachTexture(fn func(*Texture)) {
	for _, u := range m.uniforms {
		switch v := u.Value.(type) {
		case *Texture:
			if v != nil {
				fn(v)
			}
		case []*Texture:
			for _, t := range v {
				if t != nil {
					fn(t)
				}
			}
		}
	}
}
