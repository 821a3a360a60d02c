// Package shape builds procedural triangle meshes for common primitives.
// Builders return res.MeshData with positions, unit normals, texture
// coordinates and an index buffer, centered on the origin.
package shape

import "github.com/lumen3d/lumen/res"

// Axis indexes into a 3-float vertex.
const (
	axisX = iota
	axisY
	axisZ
)

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// writePlane appends a segmented rectangle spanning waxis and haxis at
// position off along the remaining axis. wdir and hdir flip traversal;
// the face normal follows the winding, so callers orient faces by
// choosing directions.
func writePlane(md *res.MeshData, waxis, haxis int, wdir, hdir float32, width, height, woff, hoff, off float32, wsegs, hsegs int) {
	if wsegs < 1 {
		wsegs = 1
	}
	if hsegs < 1 {
		hsegs = 1
	}
	naxis := 3 - waxis - haxis

	var wunit, hunit [3]float32
	wunit[waxis] = wdir
	hunit[haxis] = hdir
	norm := cross(hunit, wunit)

	start := uint32(len(md.Pos) / 3)
	for h := 0; h <= hsegs; h++ {
		hc := hdir * (hoff + float32(h)/float32(hsegs)*height)
		for w := 0; w <= wsegs; w++ {
			wc := wdir * (woff + float32(w)/float32(wsegs)*width)
			var p [3]float32
			p[waxis] = wc
			p[haxis] = hc
			p[naxis] = off
			md.Pos = append(md.Pos, p[0], p[1], p[2])
			md.Norm = append(md.Norm, norm[0], norm[1], norm[2])
			md.TexCoord = append(md.TexCoord, float32(w)/float32(wsegs), 1-float32(h)/float32(hsegs))
		}
	}

	stride := uint32(wsegs + 1)
	for h := 0; h < hsegs; h++ {
		for w := 0; w < wsegs; w++ {
			a := start + uint32(h)*stride + uint32(w)
			b := a + stride
			md.Index = append(md.Index, a, b, a+1, a+1, b, b+1)
		}
	}
}

// Plane returns a width x depth rectangle in the XZ plane facing +Y.
func Plane(width, depth float32, wsegs, dsegs int) res.MeshData {
	if wsegs < 1 {
		wsegs = 1
	}
	if dsegs < 1 {
		dsegs = 1
	}
	nvtx := (wsegs + 1) * (dsegs + 1)
	md := res.MeshData{
		Pos:      make([]float32, 0, nvtx*3),
		Norm:     make([]float32, 0, nvtx*3),
		TexCoord: make([]float32, 0, nvtx*2),
		Index:    make([]uint32, 0, wsegs*dsegs*6),
	}
	writePlane(&md, axisX, axisZ, 1, 1, width, depth, -width/2, -depth/2, 0, wsegs, dsegs)
	return md
}
