package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen3d/lumen/res"
)

// LightKind selects the light model.
type LightKind uint8

const (
	Ambient LightKind = iota
	Directional
	Point
	Spot
)

// Light is a scene light. A light may carry a cubemap (environment or
// shadow map); the collector keeps that texture alive while the light
// is in the scene.
type Light struct {
	Name      string
	Kind      LightKind
	Color     mgl32.Vec3
	Lumens    float32
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	On        bool

	// CutoffAngle applies to Spot lights, in degrees.
	CutoffAngle float32

	Cubemap *res.Texture
}

// NewLight returns a white light of the given kind, switched on.
func NewLight(kind LightKind, name string) *Light {
	return &Light{
		Name:      name,
		Kind:      kind,
		Color:     mgl32.Vec3{1, 1, 1},
		Lumens:    1,
		Direction: mgl32.Vec3{0, 0, -1},
		On:        true,
	}
}
