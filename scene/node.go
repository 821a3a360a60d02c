// Package scene holds the node tree the runtime renders from and the
// per-frame render queues derived from it. Transform handling is the
// minimal world-matrix compose needed to build and sort the queues;
// anything fancier belongs to the application.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen3d/lumen/res"
)

// Renderable pairs one geometry with one material. Each renderable
// lands in exactly one of the scene's two queues per frame.
type Renderable struct {
	Geometry *res.Geometry
	Material *res.Material

	node *Node
	// view-space depth of the owning node, set during queue build
	depth float32
}

// Node returns the scene node the renderable is attached to.
func (r *Renderable) Node() *Node { return r.node }

// Node is one element of the scene tree.
type Node struct {
	name     string
	parent   *Node
	children []*Node

	local mgl32.Mat4
	world mgl32.Mat4

	renderables []*Renderable
	visible     bool
}

// NewNode returns a detached node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		name:    name,
		local:   mgl32.Ident4(),
		world:   mgl32.Ident4(),
		visible: true,
	}
}

func (n *Node) Name() string      { return n.name }
func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// Add attaches child under n, detaching it from any previous parent.
func (n *Node) Add(child *Node) *Node {
	if child == nil || child == n {
		return n
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return n
}

// NewChild creates and attaches a child node in one step.
func (n *Node) NewChild(name string) *Node {
	child := NewNode(name)
	n.Add(child)
	return child
}

// Remove detaches child from n. The child keeps its own subtree; its
// resources stay alive only while something still references them.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Find walks the subtree depth-first for a node with the given name.
func (n *Node) Find(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if hit := c.Find(name); hit != nil {
			return hit
		}
	}
	return nil
}

// Local returns the node's local transform.
func (n *Node) Local() mgl32.Mat4 { return n.local }

// SetLocal replaces the local transform. World matrices refresh on
// the next queue build.
func (n *Node) SetLocal(m mgl32.Mat4) { n.local = m }

// SetPosition overwrites the translation part of the local transform.
func (n *Node) SetPosition(p mgl32.Vec3) {
	n.local.SetCol(3, mgl32.Vec4{p.X(), p.Y(), p.Z(), 1})
}

// Position returns the translation part of the local transform.
func (n *Node) Position() mgl32.Vec3 {
	c := n.local.Col(3)
	return mgl32.Vec3{c.X(), c.Y(), c.Z()}
}

// World returns the composed world matrix from the last queue build.
func (n *Node) World() mgl32.Mat4 { return n.world }

// WorldPosition returns the world-space translation.
func (n *Node) WorldPosition() mgl32.Vec3 {
	c := n.world.Col(3)
	return mgl32.Vec3{c.X(), c.Y(), c.Z()}
}

func (n *Node) Visible() bool     { return n.visible }
func (n *Node) SetVisible(v bool) { n.visible = v }

// Attach binds a geometry/material pair to the node and returns the
// renderable.
func (n *Node) Attach(geo *res.Geometry, mat *res.Material) *Renderable {
	r := &Renderable{Geometry: geo, Material: mat, node: n}
	n.renderables = append(n.renderables, r)
	return r
}

// Detach removes a renderable from the node.
func (n *Node) Detach(r *Renderable) {
	for i, have := range n.renderables {
		if have == r {
			n.renderables = append(n.renderables[:i], n.renderables[i+1:]...)
			return
		}
	}
}

// Renderables returns the pairs attached directly to this node.
func (n *Node) Renderables() []*Renderable { return n.renderables }

// updateWorld recomposes world matrices down the subtree.
func (n *Node) updateWorld(parent mgl32.Mat4) {
	n.world = parent.Mul4(n.local)
	for _, c := range n.children {
		c.updateWorld(n.world)
	}
}
