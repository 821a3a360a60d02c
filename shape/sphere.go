package shape

import (
	"github.com/chewxy/math32"

	"github.com/lumen3d/lumen/res"
)

// Sphere returns a UV sphere with wsegs longitude and hsegs latitude
// divisions. Normals are the unit radial directions. Degenerate pole
// triangles are not emitted.
func Sphere(radius float32, wsegs, hsegs int) res.MeshData {
	if wsegs < 3 {
		wsegs = 3
	}
	if hsegs < 2 {
		hsegs = 2
	}
	nvtx := (wsegs + 1) * (hsegs + 1)
	md := res.MeshData{
		Pos:      make([]float32, 0, nvtx*3),
		Norm:     make([]float32, 0, nvtx*3),
		TexCoord: make([]float32, 0, nvtx*2),
		Index:    make([]uint32, 0, wsegs*hsegs*6),
	}

	for h := 0; h <= hsegs; h++ {
		v := float32(h) / float32(hsegs)
		sinPhi, cosPhi := math32.Sincos(v * math32.Pi)
		for w := 0; w <= wsegs; w++ {
			u := float32(w) / float32(wsegs)
			sinTheta, cosTheta := math32.Sincos(u * 2 * math32.Pi)
			x := sinPhi * cosTheta
			y := cosPhi
			z := -sinPhi * sinTheta
			md.Pos = append(md.Pos, radius*x, radius*y, radius*z)
			md.Norm = append(md.Norm, x, y, z)
			md.TexCoord = append(md.TexCoord, u, 1-v)
		}
	}

	stride := uint32(wsegs + 1)
	for h := 0; h < hsegs; h++ {
		for w := 0; w < wsegs; w++ {
			a := uint32(h)*stride + uint32(w)
			b := a + stride
			if h != 0 {
				md.Index = append(md.Index, a, b, a+1)
			}
			if h != hsegs-1 {
				md.Index = append(md.Index, a+1, b, b+1)
			}
		}
	}
	return md
}
