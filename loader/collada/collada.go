// Package collada reads the subset of COLLADA (.dae) documents the
// runtime cares about: triangle meshes with positions, normals and
// texture coordinates, plus enough of the material libraries to find
// each mesh's diffuse color or texture. It registers itself as the
// model source for ".dae" urls.
package collada

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Collada is the top-level Collada object.
type Collada struct {
	Geometries []Geometry `xml:"library_geometries>geometry"`
	Images     []Image    `xml:"library_images>image"`
	Materials  []Material `xml:"library_materials>material"`
	Effects    []Effect   `xml:"library_effects>effect"`
}

// Geometry represents Collada's geometry.
type Geometry struct {
	Mesh Mesh   `xml:"mesh"`
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// Mesh contains all the primitive data.
type Mesh struct {
	Source    []Source  `xml:"source"`
	Vertices  Vertices  `xml:"vertices"`
	Triangles Triangles `xml:"triangles"`
}

// Source links to other sources where data is present.
type Source struct {
	ID     string `xml:"id,attr"`
	Floats Floats `xml:"float_array"`
	// technique_common define accessing rules, add if needed
}

// Floats is the array of floats.
type Floats struct {
	ID   string
	Data []float32
}

// UnmarshalXML unmarshals the array of floats.
func (f *Floats) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "id":
			f.ID = attr.Value
		}
	}
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	for _, r := range strings.Fields(raw) {
		num, err := strconv.ParseFloat(r, 32)
		if err != nil {
			return err
		}
		f.Data = append(f.Data, float32(num))
	}
	return nil
}

// Vertices contains the list of vertices.
type Vertices struct {
	ID     string  `xml:"id,attr"`
	Inputs []Input `xml:"input"`
}

// Triangles contain the list of triangles.
type Triangles struct {
	Count    int     `xml:"count,attr"`
	Material string  `xml:"material,attr"`
	Inputs   []Input `xml:"input"`
	Index    []int
}

// UnmarshalXML parses the index list.
func (t *Triangles) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "count":
			num, err := strconv.Atoi(attr.Value)
			if err != nil {
				return err
			}
			t.Count = num
		case "material":
			t.Material = attr.Value
		}
	}

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "input":
				var input Input
				if err := d.DecodeElement(&input, &el); err != nil {
					return err
				}
				t.Inputs = append(t.Inputs, input)
			case "p":
				var raw string
				if err := d.DecodeElement(&raw, &el); err != nil {
					return err
				}
				ints := make([]int, 0, len(raw)/2)
				for _, r := range strings.Fields(raw) {
					num, err := strconv.Atoi(r)
					if err != nil {
						return err
					}
					ints = append(ints, num)
				}
				t.Index = ints
			}
		case xml.EndElement:
			if el == start.End() {
				return nil
			}
		}
	}
}

// Input is Collada's input type.
type Input struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   uint   `xml:"offset,attr"`
}

// Image is an entry of the image library.
type Image struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	File string `xml:"init_from"`
}

// Material binds a material symbol to an effect.
type Material struct {
	ID     string `xml:"id,attr"`
	Name   string `xml:"name,attr"`
	Effect string
}

// UnmarshalXML pulls the instance_effect url out of the material.
func (m *Material) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "id":
			m.ID = attr.Value
		case "name":
			m.Name = attr.Value
		}
	}
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch el := token.(type) {
		case xml.StartElement:
			if el.Name.Local == "instance_effect" {
				for _, attr := range el.Attr {
					if attr.Name.Local == "url" {
						m.Effect = strings.TrimPrefix(attr.Value, "#")
					}
				}
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			if el == start.End() {
				return nil
			}
		}
	}
}

// Effect carries the diffuse part of a common-profile effect. The
// texture reference may point at a sampler; surfaces and samplers are
// recorded so ResolveImage can follow the chain back to an image.
type Effect struct {
	ID string

	DiffuseColor   []float32
	DiffuseTexture string

	surfaces map[string]string
	samplers map[string]string
}

// UnmarshalXML walks the effect for newparam surface/sampler
// declarations and the diffuse value, wherever the technique nests
// them.
func (e *Effect) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "id" {
			e.ID = attr.Value
		}
	}
	e.surfaces = make(map[string]string)
	e.samplers = make(map[string]string)

	var paramSid string
	var inDiffuse bool
	var text string

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "newparam":
				for _, attr := range el.Attr {
					if attr.Name.Local == "sid" {
						paramSid = attr.Value
					}
				}
			case "diffuse":
				inDiffuse = true
			case "texture":
				if inDiffuse {
					for _, attr := range el.Attr {
						if attr.Name.Local == "texture" {
							e.DiffuseTexture = attr.Value
						}
					}
				}
			}
			text = ""
		case xml.CharData:
			text = strings.TrimSpace(string(el))
		case xml.EndElement:
			switch el.Name.Local {
			case "init_from":
				if paramSid != "" && text != "" {
					e.surfaces[paramSid] = text
				}
			case "source":
				if paramSid != "" && text != "" {
					e.samplers[paramSid] = text
				}
			case "color":
				if inDiffuse {
					var floats []float32
					for _, r := range strings.Fields(text) {
						num, err := strconv.ParseFloat(r, 32)
						if err != nil {
							return err
						}
						floats = append(floats, float32(num))
					}
					e.DiffuseColor = floats
				}
			case "diffuse":
				inDiffuse = false
			case "newparam":
				paramSid = ""
			}
			if el == start.End() {
				return nil
			}
		}
	}
}

// ResolveImage follows the diffuse texture reference through the
// sampler and surface indirection to an image ID. Exporters that skip
// the indirection and reference the image directly work too.
func (e *Effect) ResolveImage() string {
	ref := e.DiffuseTexture
	if ref == "" {
		return ""
	}
	if surface, ok := e.samplers[ref]; ok {
		ref = surface
	}
	if img, ok := e.surfaces[ref]; ok {
		ref = img
	}
	return ref
}
