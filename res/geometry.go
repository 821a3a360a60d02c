package res

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned bounding box in model space.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the box midpoint.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// MeshData is the CPU side of a geometry: flat arrays the renderer
// uploads as-is. Pos and Norm hold three floats per vertex, TexCoord
// two, Index three per triangle.
type MeshData struct {
	Pos      []float32
	Norm     []float32
	TexCoord []float32
	Index    []uint32
}

// VertexCount returns the number of vertices in the data.
func (m *MeshData) VertexCount() int { return len(m.Pos) / 3 }

// TriangleCount returns the number of indexed triangles.
func (m *MeshData) TriangleCount() int { return len(m.Index) / 3 }

// ComputeBounds scans positions for the axis-aligned box.
func (m *MeshData) ComputeBounds() Bounds {
	if len(m.Pos) < 3 {
		return Bounds{}
	}
	bb := Bounds{
		Min: mgl32.Vec3{m.Pos[0], m.Pos[1], m.Pos[2]},
		Max: mgl32.Vec3{m.Pos[0], m.Pos[1], m.Pos[2]},
	}
	for i := 3; i+2 < len(m.Pos); i += 3 {
		for a := 0; a < 3; a++ {
			v := m.Pos[i+a]
			if v < bb.Min[a] {
				bb.Min[a] = v
			}
			if v > bb.Max[a] {
				bb.Max[a] = v
			}
		}
	}
	return bb
}

// Geometry is a GPU vertex/index buffer resource. Like Texture it is
// attachable while Pending and carries the same settle-once lifecycle.
type Geometry struct {
	state
	use usage

	name string
	data MeshData
	bb   Bounds

	handle   any
	disposed bool
}

// NewGeometry returns a Ready geometry built from data.
func NewGeometry(name string, data MeshData) *Geometry {
	return &Geometry{
		state: newSettledState(),
		name:  name,
		data:  data,
		bb:    data.ComputeBounds(),
	}
}

// NewPendingGeometry returns a geometry whose data arrives later,
// through Resolve.
func NewPendingGeometry(name string) *Geometry {
	return &Geometry{state: newState(), name: name}
}

// Resolve settles a pending geometry with its mesh data. Only the
// load completion calls it, exactly once, on the frame timeline.
func (g *Geometry) Resolve(data MeshData) {
	g.data = data
	g.bb = data.ComputeBounds()
	g.settle(nil)
}

// Fail settles a pending geometry with a load error.
func (g *Geometry) Fail(err error) {
	g.settle(err)
}

func (g *Geometry) Name() string    { return g.name }
func (g *Geometry) Data() *MeshData { return &g.data }
func (g *Geometry) Bounds() Bounds  { return g.bb }

func (g *Geometry) VertexCount() int   { return g.data.VertexCount() }
func (g *Geometry) TriangleCount() int { return g.data.TriangleCount() }

// Handle is the renderer-owned GPU object for this geometry.
func (g *Geometry) Handle() any     { return g.handle }
func (g *Geometry) SetHandle(h any) { g.handle = h }

// MarkUsed records a use in the given frame, reporting true on the
// first mark of that frame. Collector bookkeeping.
func (g *Geometry) MarkUsed(frame uint64) bool { return g.use.mark(frame) }

// UsedIn reports whether the geometry was marked during frame.
func (g *Geometry) UsedIn(frame uint64) bool { return g.use.usedIn(frame) }

// UseCount returns the number of marks recorded in frame.
func (g *Geometry) UseCount(frame uint64) uint32 { return g.use.useCount(frame) }

// Disposed reports whether Dispose already ran.
func (g *Geometry) Disposed() bool { return g.disposed }

// Dispose releases the GPU side of the geometry through d. Repeat
// calls are no-ops; a geometry is disposed at most once.
func (g *Geometry) Dispose(d Disposer) error {
	if g.disposed {
		return nil
	}
	g.disposed = true
	if d == nil {
		return nil
	}
	return d.DisposeGeometry(g)
}
