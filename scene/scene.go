package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Scene owns a node tree, lights and a camera, and distills them into
// two render queues every frame. Everything here runs on the frame
// timeline; the scene is not safe for concurrent mutation.
type Scene struct {
	root   *Node
	lights []*Light
	camera *Camera

	opaque      []*Renderable
	transparent []*Renderable
}

// New returns an empty scene with a root node.
func New() *Scene {
	return &Scene{root: NewNode("root")}
}

// Root returns the tree root.
func (s *Scene) Root() *Node { return s.root }

// Add attaches a node under the root.
func (s *Scene) Add(n *Node) { s.root.Add(n) }

// Remove detaches a node from its parent, wherever it sits in the
// tree. Its resources become collectable once nothing else holds them.
func (s *Scene) Remove(n *Node) {
	if n != nil && n.parent != nil {
		n.parent.Remove(n)
	}
}

// AddLight adds a light to the scene.
func (s *Scene) AddLight(l *Light) {
	if l != nil {
		s.lights = append(s.lights, l)
	}
}

// RemoveLight takes a light out of the scene.
func (s *Scene) RemoveLight(l *Light) {
	for i, have := range s.lights {
		if have == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

// Lights returns the scene lights.
func (s *Scene) Lights() []*Light { return s.lights }

func (s *Scene) Camera() *Camera     { return s.camera }
func (s *Scene) SetCamera(c *Camera) { s.camera = c }

// Opaque returns the opaque queue from the last UpdateQueues call,
// sorted front to back.
func (s *Scene) Opaque() []*Renderable { return s.opaque }

// Transparent returns the blended queue from the last UpdateQueues
// call, sorted back to front.
func (s *Scene) Transparent() []*Renderable { return s.transparent }

// UpdateQueues recomposes world matrices and rebuilds both render
// queues from the visible part of the tree. Renderables with a
// transparent material go to the transparent queue, everything else
// to the opaque one.
func (s *Scene) UpdateQueues() {
	s.root.updateWorld(mgl32.Ident4())

	s.opaque = s.opaque[:0]
	s.transparent = s.transparent[:0]
	s.collect(s.root)

	if s.camera == nil {
		return
	}
	for _, r := range s.opaque {
		r.depth = s.camera.viewDepth(r.node.WorldPosition())
	}
	for _, r := range s.transparent {
		r.depth = s.camera.viewDepth(r.node.WorldPosition())
	}
	sort.Slice(s.opaque, func(i, j int) bool {
		return s.opaque[i].depth < s.opaque[j].depth
	})
	sort.Slice(s.transparent, func(i, j int) bool {
		return s.transparent[i].depth > s.transparent[j].depth
	})
}

func (s *Scene) collect(n *Node) {
	if !n.visible {
		return
	}
	for _, r := range n.renderables {
		if r.Geometry == nil {
			continue
		}
		if r.Material != nil && r.Material.Transparent() {
			s.transparent = append(s.transparent, r)
		} else {
			s.opaque = append(s.opaque, r)
		}
	}
	for _, c := range n.children {
		s.collect(c)
	}
}
