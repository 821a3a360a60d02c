package collada

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen3d/lumen/asset"
	"github.com/lumen3d/lumen/loader"
	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
)

func init() {
	loader.RegisterSource("collada", []string{".dae"}, NewSource)
}

// NewSource builds the .dae model source.
func NewSource(env loader.ModelEnv) loader.ModelSource {
	return &source{env: env}
}

type source struct {
	env loader.ModelEnv
}

// Load fetches and parses url, producing one child node per geometry
// under a root named after the file. Diffuse textures resolve through
// the bridge, so they arrive Pending and settle on their own schedule.
func (s *source) Load(url string, onSuccess func(*loader.Model), onError func(error)) {
	data, err := asset.ReadAll(s.env.Assets, url)
	if err != nil {
		onError(fmt.Errorf("collada: %v", err))
		return
	}

	var doc Collada
	if err := xml.Unmarshal(data, &doc); err != nil {
		onError(fmt.Errorf("collada: parse: %v", err))
		return
	}
	if len(doc.Geometries) == 0 {
		onError(fmt.Errorf("collada: %q: %w", url, ErrNoGeometry))
		return
	}

	base := strings.TrimSuffix(path.Base(url), path.Ext(url))
	model := &loader.Model{Root: scene.NewNode(base)}

	for gi := range doc.Geometries {
		g := &doc.Geometries[gi]
		meshData, err := g.MeshData()
		if err != nil {
			onError(err)
			return
		}

		name := g.Name
		if name == "" {
			name = g.ID
		}
		geo := res.NewGeometry(base+"/"+name, meshData)
		model.Geometries = append(model.Geometries, geo)

		mat := s.buildMaterial(&doc, g, model)
		child := model.Root.NewChild(name)
		child.Attach(geo, mat)
	}

	onSuccess(model)
}

// buildMaterial turns the geometry's material symbol into a runtime
// material. Missing or unresolvable materials fall back to the plain
// shader default.
func (s *source) buildMaterial(doc *Collada, g *Geometry, model *loader.Model) *res.Material {
	cfg := loader.MaterialConfig{
		Name:           g.ID + "-material",
		Shader:         s.env.Shader,
		Uniforms:       map[string]any{},
		TextureOptions: s.env.TextureOptions,
	}

	mat, effect := doc.MaterialFor(g.Mesh.Triangles.Material)
	if mat != nil {
		cfg.Name = mat.ID
	}
	if effect != nil {
		if len(effect.DiffuseColor) >= 3 {
			c := effect.DiffuseColor
			a := float32(1)
			if len(c) >= 4 {
				a = c[3]
			}
			cfg.Uniforms[colorKey(s.env.Shader)] = mgl32.Vec4{c[0], c[1], c[2], a}
		}
		if file := doc.ImageFile(effect.ResolveImage()); file != "" {
			tex := s.env.Textures.Texture(s.env.TexturePath(file), s.env.TextureOptions)
			model.Textures = append(model.Textures, tex)
			cfg.Uniforms["map"] = tex
		}
	}
	return s.env.Materials.Material(cfg)
}

// colorKey names the diffuse color uniform of the built-in shaders.
func colorKey(shader string) string {
	switch shader {
	case "unlit":
		return "color"
	case "phong":
		return "diffuse"
	default:
		return "baseColor"
	}
}
