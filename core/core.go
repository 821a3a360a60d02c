// Package core drives the frame loop. It owns the application object,
// the frame timeline and the usage tracker that disposes GPU resources
// no render queue references anymore. Rendering itself happens behind
// the Renderer interface; core never talks to a GPU API directly.
package core

import (
	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
)

// Renderer describes the rendering machinery the app drives. It's
// created elsewhere, usually through the render package registry, and
// handed in ready to use.
type Renderer interface {
	// Disposer releases individual GPU resources. The usage tracker
	// calls these during sweeps.
	res.Disposer

	// Resize adjusts the output surface to the given pixel size.
	Resize(width, height int)

	// Render draws one frame from the scene's render queues.
	Render(*scene.Scene) error

	// Dispose destroys internal members. The app calls it once,
	// after the last sweep.
	Dispose() error
}

// Window is the surface the renderer presents into. The app only
// measures and destroys it; platform specifics stay with the caller.
type Window interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)

	// Destroy destroys the underlying window.
	Destroy() error
}

// Invoker queues work onto the frame timeline. Loader completions run
// through it so resource mutations never race a frame in progress.
type Invoker interface {
	Invoke(func())
}
