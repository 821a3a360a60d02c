package collada

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lumen3d/lumen/res"
)

// package errors
var (
	ErrNoGeometry = errors.New("document has no geometry")
	ErrNoSource   = errors.New("source not found")
	ErrBadIndex   = errors.New("index out of source range")
)

// MeshData expands the geometry's indexed tuples into the flat vertex
// arrays the renderer uploads. Every triangle corner becomes its own
// vertex; positions come through the VERTEX/POSITION indirection,
// normals and texture coordinates straight from their sources.
func (g *Geometry) MeshData() (res.MeshData, error) {
	mesh := &g.Mesh
	tris := &mesh.Triangles
	if len(tris.Index) == 0 {
		return res.MeshData{}, fmt.Errorf("collada: geometry %q: %w", g.ID, ErrNoGeometry)
	}

	stride := 0
	var posInput, normInput, texInput *Input
	for i := range tris.Inputs {
		in := &tris.Inputs[i]
		if int(in.Offset) >= stride {
			stride = int(in.Offset) + 1
		}
		switch in.Semantic {
		case "VERTEX":
			posInput = in
		case "NORMAL":
			normInput = in
		case "TEXCOORD":
			texInput = in
		}
	}
	if posInput == nil || stride == 0 {
		return res.MeshData{}, fmt.Errorf("collada: geometry %q: no VERTEX input", g.ID)
	}

	posSource, err := mesh.resolvePositions(posInput.Source)
	if err != nil {
		return res.MeshData{}, fmt.Errorf("collada: geometry %q: %w", g.ID, err)
	}

	var normSource, texSource *Source
	if normInput != nil {
		if normSource, err = mesh.findSource(normInput.Source); err != nil {
			return res.MeshData{}, fmt.Errorf("collada: geometry %q: %w", g.ID, err)
		}
	}
	if texInput != nil {
		if texSource, err = mesh.findSource(texInput.Source); err != nil {
			return res.MeshData{}, fmt.Errorf("collada: geometry %q: %w", g.ID, err)
		}
	}

	corners := len(tris.Index) / stride
	out := res.MeshData{
		Pos:   make([]float32, 0, corners*3),
		Index: make([]uint32, 0, corners),
	}
	if normSource != nil {
		out.Norm = make([]float32, 0, corners*3)
	}
	if texSource != nil {
		out.TexCoord = make([]float32, 0, corners*2)
	}

	for c := 0; c < corners; c++ {
		tuple := tris.Index[c*stride : (c+1)*stride]

		if err := appendVec(&out.Pos, posSource, tuple[posInput.Offset], 3); err != nil {
			return res.MeshData{}, fmt.Errorf("collada: geometry %q: positions: %w", g.ID, err)
		}
		if normSource != nil {
			if err := appendVec(&out.Norm, normSource, tuple[normInput.Offset], 3); err != nil {
				return res.MeshData{}, fmt.Errorf("collada: geometry %q: normals: %w", g.ID, err)
			}
		}
		if texSource != nil {
			if err := appendVec(&out.TexCoord, texSource, tuple[texInput.Offset], 2); err != nil {
				return res.MeshData{}, fmt.Errorf("collada: geometry %q: texcoords: %w", g.ID, err)
			}
		}
		out.Index = append(out.Index, uint32(c))
	}
	return out, nil
}

func appendVec(dst *[]float32, src *Source, index, width int) error {
	at := index * width
	if at < 0 || at+width > len(src.Floats.Data) {
		return fmt.Errorf("%w: %d of %q", ErrBadIndex, index, src.ID)
	}
	*dst = append(*dst, src.Floats.Data[at:at+width]...)
	return nil
}

// resolvePositions follows a VERTEX input through the vertices element
// to the POSITION source.
func (m *Mesh) resolvePositions(ref string) (*Source, error) {
	id := strings.TrimPrefix(ref, "#")
	if id == m.Vertices.ID {
		for _, in := range m.Vertices.Inputs {
			if in.Semantic == "POSITION" {
				return m.findSource(in.Source)
			}
		}
		return nil, fmt.Errorf("%w: vertices %q has no POSITION", ErrNoSource, id)
	}
	// some exporters point VERTEX straight at the position source
	return m.findSource(ref)
}

func (m *Mesh) findSource(ref string) (*Source, error) {
	id := strings.TrimPrefix(ref, "#")
	for i := range m.Source {
		if m.Source[i].ID == id {
			return &m.Source[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSource, id)
}

// MaterialFor resolves a triangle material symbol into the effect
// behind it. Symbols reference materials by ID or name; exporters
// disagree, so both are tried.
func (c *Collada) MaterialFor(symbol string) (*Material, *Effect) {
	if symbol == "" {
		return nil, nil
	}
	var mat *Material
	for i := range c.Materials {
		m := &c.Materials[i]
		if m.ID == symbol || m.Name == symbol {
			mat = m
			break
		}
	}
	if mat == nil {
		// symbols often derive from the ID, "Material-material" style
		for i := range c.Materials {
			m := &c.Materials[i]
			if strings.HasPrefix(symbol, m.ID) || strings.HasSuffix(symbol, m.ID) {
				mat = m
				break
			}
		}
	}
	if mat == nil {
		return nil, nil
	}
	for i := range c.Effects {
		if c.Effects[i].ID == mat.Effect {
			return mat, &c.Effects[i]
		}
	}
	return mat, nil
}

// ImageFile returns the file path behind an image ID.
func (c *Collada) ImageFile(id string) string {
	for _, img := range c.Images {
		if img.ID == id {
			return img.File
		}
	}
	return ""
}
