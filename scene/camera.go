package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera describes the view used for queue sorting and, by renderers,
// for projection.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	// FOV is the vertical field of view in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32
}

// NewCamera returns a camera at +Z looking at the origin.
func NewCamera(fovDeg, aspect, near, far float32) *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 0, 10},
		Target:   mgl32.Vec3{0, 0, 0},
		Up:       mgl32.Vec3{0, 1, 0},
		FOV:      fovDeg,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

// LookAt points the camera from pos towards target.
func (c *Camera) LookAt(pos, target mgl32.Vec3) {
	c.Position = pos
	c.Target = target
}

// SetAspect updates the projection aspect ratio, usually after a
// window resize.
func (c *Camera) SetAspect(width, height int) {
	if height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// ProjMatrix returns the perspective projection.
func (c *Camera) ProjMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// ViewProj returns projection times view.
func (c *Camera) ViewProj() mgl32.Mat4 {
	return c.ProjMatrix().Mul4(c.ViewMatrix())
}

// viewDepth returns the view-space depth of a world position, positive
// in front of the camera.
func (c *Camera) viewDepth(world mgl32.Vec3) float32 {
	v := c.ViewMatrix().Mul4x1(mgl32.Vec4{world.X(), world.Y(), world.Z(), 1})
	return -v.Z()
}
