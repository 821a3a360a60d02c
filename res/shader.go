package res

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// ShaderDef declares the uniform interface of a shader program. The
// material builder consults it to decide which config keys are real
// uniforms and which of them expect textures.
type ShaderDef struct {
	Name     string
	Uniforms map[string]UniformType

	// Defaults seed new materials; uniforms absent here start unset.
	Defaults map[string]Uniform
}

// UniformType looks up the declared type of a uniform slot.
func (d *ShaderDef) UniformType(name string) (UniformType, bool) {
	t, ok := d.Uniforms[name]
	return t, ok
}

var (
	shaderMu  sync.RWMutex
	shaderReg = make(map[string]*ShaderDef)
)

// RegisterShader adds a shader definition to the global registry.
// Registering a name twice is an error.
func RegisterShader(def *ShaderDef) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("res.RegisterShader(): empty shader definition")
	}
	shaderMu.Lock()
	defer shaderMu.Unlock()
	if _, dup := shaderReg[def.Name]; dup {
		return fmt.Errorf("res.RegisterShader(): %q already registered", def.Name)
	}
	shaderReg[def.Name] = def
	return nil
}

// ShaderByName fetches a registered shader definition.
func ShaderByName(name string) (*ShaderDef, bool) {
	shaderMu.RLock()
	defer shaderMu.RUnlock()
	def, ok := shaderReg[name]
	return def, ok
}

// Shaders lists the registered shader names.
func Shaders() []string {
	shaderMu.RLock()
	defer shaderMu.RUnlock()
	names := make([]string, 0, len(shaderReg))
	for n := range shaderReg {
		names = append(names, n)
	}
	return names
}

func init() {
	for _, def := range []*ShaderDef{
		{
			Name: "unlit",
			Uniforms: map[string]UniformType{
				"color":   UniformColor,
				"map":     UniformTexture,
				"opacity": UniformFloat,
			},
			Defaults: map[string]Uniform{
				"color":   Color(1, 1, 1, 1),
				"opacity": {Type: UniformFloat, Value: float32(1)},
			},
		},
		{
			Name: "standard",
			Uniforms: map[string]UniformType{
				"baseColor":   UniformColor,
				"map":         UniformTexture,
				"normalMap":   UniformTexture,
				"emissive":    UniformColor,
				"emissiveMap": UniformTexture,
				"metallic":    UniformFloat,
				"roughness":   UniformFloat,
				"envMap":      UniformTexture,
				"aoMap":       UniformTexture,
			},
			Defaults: map[string]Uniform{
				"baseColor": Color(1, 1, 1, 1),
				"emissive":  Color(0, 0, 0, 1),
				"metallic":  {Type: UniformFloat, Value: float32(0)},
				"roughness": {Type: UniformFloat, Value: float32(1)},
			},
		},
		{
			Name: "phong",
			Uniforms: map[string]UniformType{
				"diffuse":   UniformColor,
				"map":       UniformTexture,
				"specular":  UniformColor,
				"shininess": UniformFloat,
				"normalMap": UniformTexture,
			},
			Defaults: map[string]Uniform{
				"diffuse":   Color(1, 1, 1, 1),
				"specular":  Color(0.1, 0.1, 0.1, 1),
				"shininess": {Type: UniformFloat, Value: float32(30)},
			},
		},
		{
			Name: "terrain",
			Uniforms: map[string]UniformType{
				"splat":      UniformTexture,
				"layers":     UniformTextureArray,
				"layerScale": UniformVec2,
			},
			Defaults: map[string]Uniform{
				"layerScale": {Type: UniformVec2, Value: mgl32.Vec2{1, 1}},
			},
		},
	} {
		if err := RegisterShader(def); err != nil {
			panic(err)
		}
	}
}
