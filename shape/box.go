package shape

import "github.com/lumen3d/lumen/res"

// Box returns a cuboid with the given extents, one quad per face.
// Faces are laid out back, bottom, right, left, top, front.
func Box(width, height, depth float32) res.MeshData {
	hx, hy, hz := width/2, height/2, depth/2

	md := res.MeshData{
		Pos:      make([]float32, 0, 24*3),
		Norm:     make([]float32, 0, 24*3),
		TexCoord: make([]float32, 0, 24*2),
		Index:    make([]uint32, 0, 36),
	}

	writePlane(&md, axisX, axisY, -1, -1, width, height, -hx, -hy, -hz, 1, 1)
	writePlane(&md, axisX, axisZ, 1, -1, width, depth, -hx, -hz, -hy, 1, 1)
	writePlane(&md, axisZ, axisY, -1, -1, depth, height, -hz, -hy, hx, 1, 1)
	writePlane(&md, axisZ, axisY, 1, -1, depth, height, -hz, -hy, -hx, 1, 1)
	writePlane(&md, axisX, axisZ, 1, 1, width, depth, -hx, -hz, hy, 1, 1)
	writePlane(&md, axisX, axisY, 1, -1, width, height, -hx, -hy, hz, 1, 1)
	return md
}

// Cube returns a box with equal sides.
func Cube(size float32) res.MeshData {
	return Box(size, size, size)
}
