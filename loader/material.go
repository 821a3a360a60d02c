package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen3d/lumen/res"
)

// MaterialConfig describes a material the way an application or a
// config file would: a shader name and a bag of uniform values, where
// texture slots may hold anything Texture accepts.
type MaterialConfig struct {
	Name   string
	Shader string

	// Uniforms maps uniform names to values. Keys the shader does not
	// declare are skipped and reported to the diagnostic hook.
	Uniforms map[string]any

	Transparent bool
	DoubleSided bool

	// TextureOptions apply to every texture loaded for this material.
	TextureOptions res.TextureOptions
}

// Material builds a material synchronously. Texture uniforms given as
// sources start loading in the background; each one is assigned to its
// slot when it comes up Ready and silently skipped when it fails, with
// the failure reported to the diagnostic hook. The material itself is
// complete and usable from the moment this returns.
func (b *Bridge) Material(cfg MaterialConfig) *res.Material {
	shader := cfg.Shader
	if shader == "" {
		shader = b.cfg.DefaultShader
	}

	m := res.NewMaterial(cfg.Name, shader)

	def, ok := res.ShaderByName(shader)
	if !ok {
		b.diag("material", shader, fmt.Errorf("loader: material %q: %w", cfg.Name, ErrUnknownShader))
	} else {
		for name, u := range def.Defaults {
			m.SetUniform(name, u)
		}
	}

	if cfg.Transparent {
		m.SetTransparent(true)
	}
	m.SetDoubleSided(cfg.DoubleSided)

	for key, val := range cfg.Uniforms {
		var typ res.UniformType
		declared := false
		if def != nil {
			typ, declared = def.UniformType(key)
		}
		if !declared {
			b.diag("material", key, fmt.Errorf("loader: material %q: uniform %q: %w", cfg.Name, key, ErrNotDeclared))
			continue
		}
		if typ.IsTexture() {
			b.assignTexture(m, key, typ, val, cfg.TextureOptions)
			continue
		}
		u, err := coerceUniform(typ, val)
		if err != nil {
			b.diag("material", key, fmt.Errorf("loader: material %q: uniform %q: %v", cfg.Name, key, err))
			continue
		}
		m.SetUniform(key, u)
	}
	return m
}

// assignTexture handles the texture-typed uniform slots. Values that
// already are textures attach immediately, Pending or not; source
// values attach once their load succeeds.
func (b *Bridge) assignTexture(m *res.Material, key string, typ res.UniformType, val any, opts res.TextureOptions) {
	switch v := val.(type) {
	case *res.Texture:
		m.SetUniform(key, res.Uniform{Type: typ, Value: v})

	case []*res.Texture:
		m.SetUniform(key, res.Uniform{Type: res.UniformTextureArray, Value: v})

	case []any:
		// Texture array from mixed sources: slots fill in as the
		// individual loads succeed.
		arr := make([]*res.Texture, len(v))
		m.SetUniform(key, res.Uniform{Type: res.UniformTextureArray, Value: arr})
		for i, one := range v {
			b.loadIntoSlot(one, opts, func(tex *res.Texture) { arr[i] = tex })
		}

	case []string:
		arr := make([]*res.Texture, len(v))
		m.SetUniform(key, res.Uniform{Type: res.UniformTextureArray, Value: arr})
		for i, one := range v {
			b.loadIntoSlot(one, opts, func(tex *res.Texture) { arr[i] = tex })
		}

	default:
		// single source: string, image.Image, io.Reader or a dynamic
		// source
		b.loadIntoSlot(val, opts, func(tex *res.Texture) {
			m.SetUniform(key, res.Uniform{Type: res.UniformTexture, Value: tex})
		})
	}
}

// loadIntoSlot loads one texture source and applies it on success.
// Failures go to the diagnostic hook only; the slot keeps whatever it
// had, which is how a material stays usable with a broken texture URL.
func (b *Bridge) loadIntoSlot(src any, opts res.TextureOptions, apply func(*res.Texture)) {
	tex := b.Texture(src, opts)
	switch tex.State() {
	case res.Ready:
		apply(tex)
	case res.Failed:
		b.diag("material", tex.Name(), tex.Err())
	default:
		b.whenSettled(tex, func(err error) {
			if err != nil {
				b.diag("material", tex.Name(), err)
				return
			}
			apply(tex)
		})
	}
}

// coerceUniform normalizes the loose value types a config file
// produces into what the uniform slot expects.
func coerceUniform(typ res.UniformType, val any) (res.Uniform, error) {
	switch typ {
	case res.UniformFloat:
		f, ok := toFloat(val)
		if !ok {
			return res.Uniform{}, fmt.Errorf("want number, got %T", val)
		}
		return res.Uniform{Type: typ, Value: f}, nil

	case res.UniformInt:
		switch v := val.(type) {
		case int:
			return res.Uniform{Type: typ, Value: int32(v)}, nil
		case int32:
			return res.Uniform{Type: typ, Value: v}, nil
		case int64:
			return res.Uniform{Type: typ, Value: int32(v)}, nil
		case float64:
			return res.Uniform{Type: typ, Value: int32(v)}, nil
		}
		return res.Uniform{}, fmt.Errorf("want integer, got %T", val)

	case res.UniformBool:
		if v, ok := val.(bool); ok {
			return res.Uniform{Type: typ, Value: v}, nil
		}
		return res.Uniform{}, fmt.Errorf("want bool, got %T", val)

	case res.UniformVec2:
		if v, ok := toVecN(val, 2); ok {
			return res.Uniform{Type: typ, Value: mgl32.Vec2{v[0], v[1]}}, nil
		}
		return res.Uniform{}, fmt.Errorf("want 2 numbers, got %T", val)

	case res.UniformVec3:
		if v, ok := toVecN(val, 3); ok {
			return res.Uniform{Type: typ, Value: mgl32.Vec3{v[0], v[1], v[2]}}, nil
		}
		return res.Uniform{}, fmt.Errorf("want 3 numbers, got %T", val)

	case res.UniformVec4:
		if v, ok := toVecN(val, 4); ok {
			return res.Uniform{Type: typ, Value: mgl32.Vec4{v[0], v[1], v[2], v[3]}}, nil
		}
		return res.Uniform{}, fmt.Errorf("want 4 numbers, got %T", val)

	case res.UniformColor:
		return coerceColor(val)

	case res.UniformMat4:
		if v, ok := val.(mgl32.Mat4); ok {
			return res.Uniform{Type: typ, Value: v}, nil
		}
		return res.Uniform{}, fmt.Errorf("want mgl32.Mat4, got %T", val)
	}
	return res.Uniform{}, fmt.Errorf("unhandled uniform type %d", typ)
}

// coerceColor accepts a vec4, 3 or 4 numbers, or a packed 0xRRGGBB
// integer, the form hex colors take in config files.
func coerceColor(val any) (res.Uniform, error) {
	switch v := val.(type) {
	case mgl32.Vec4:
		return res.Uniform{Type: res.UniformColor, Value: v}, nil
	case mgl32.Vec3:
		return res.Uniform{Type: res.UniformColor, Value: mgl32.Vec4{v[0], v[1], v[2], 1}}, nil
	case int, int32, int64, uint32:
		rgb, _ := toFloat(v)
		packed := uint32(rgb)
		return res.Uniform{Type: res.UniformColor, Value: mgl32.Vec4{
			float32((packed >> 16) & 0xff) / 255,
			float32((packed >> 8) & 0xff) / 255,
			float32(packed & 0xff) / 255,
			1,
		}}, nil
	}
	if f, ok := toVecN(val, 4); ok {
		return res.Uniform{Type: res.UniformColor, Value: mgl32.Vec4{f[0], f[1], f[2], f[3]}}, nil
	}
	if f, ok := toVecN(val, 3); ok {
		return res.Uniform{Type: res.UniformColor, Value: mgl32.Vec4{f[0], f[1], f[2], 1}}, nil
	}
	return res.Uniform{}, fmt.Errorf("want color, got %T", val)
}

func toFloat(val any) (float32, bool) {
	switch v := val.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int:
		return float32(v), true
	case int32:
		return float32(v), true
	case int64:
		return float32(v), true
	case uint32:
		return float32(v), true
	}
	return 0, false
}

func toVecN(val any, n int) ([]float32, bool) {
	collect := func(vals []any) ([]float32, bool) {
		if len(vals) != n {
			return nil, false
		}
		out := make([]float32, n)
		for i, one := range vals {
			f, ok := toFloat(one)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	switch v := val.(type) {
	case []float32:
		if len(v) == n {
			return v, true
		}
	case []float64:
		if len(v) == n {
			out := make([]float32, n)
			for i, f := range v {
				out[i] = float32(f)
			}
			return out, true
		}
	case []any:
		return collect(v)
	}
	return nil, false
}
