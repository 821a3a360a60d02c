package render

import (
	"errors"

	"github.com/lumen3d/lumen/core"
	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
)

// Renderer name constants.
const (
	// RendererNull is the headless fallback renderer.
	RendererNull = "null"
	// RendererSDL is the SDL2 wireframe presenter from render/sdlview.
	RendererSDL = "sdl"
)

// ErrRendererDisposed is returned by Render after Dispose.
var ErrRendererDisposed = errors.New("render: renderer disposed")

// init registers the null renderer on package import.
func init() {
	Register(RendererNull, 0, func(_ core.Window, cfg core.RendererConfiguration) (core.Renderer, error) {
		return NewNullRenderer(cfg), nil
	})
}

// NullRenderer walks the render queues without touching a GPU. It
// assigns fake handles to ready resources so upload and dispose
// lifecycles stay observable in headless runs and tests.
type NullRenderer struct {
	width, height int

	frames     uint64
	draws      int
	nextHandle uint64
	released   int
	disposed   bool
}

// NewNullRenderer creates a headless renderer.
func NewNullRenderer(cfg core.RendererConfiguration) *NullRenderer {
	return &NullRenderer{
		width:  int(cfg.ScreenWidth),
		height: int(cfg.ScreenHeight),
	}
}

// Resize adjusts the pretend output size.
func (r *NullRenderer) Resize(width, height int) {
	r.width, r.height = width, height
}

// Render uploads newly ready resources and counts one draw per queued
// renderable.
func (r *NullRenderer) Render(sc *scene.Scene) error {
	if r.disposed {
		return ErrRendererDisposed
	}
	if sc == nil {
		return nil
	}
	r.frames++
	for _, q := range [][]*scene.Renderable{sc.Opaque(), sc.Transparent()} {
		for _, rend := range q {
			r.uploadGeometry(rend.Geometry)
			if rend.Material != nil {
				rend.Material.EachTexture(r.uploadTexture)
			}
			r.draws++
		}
	}
	return nil
}

func (r *NullRenderer) uploadGeometry(g *res.Geometry) {
	if g != nil && g.State() == res.Ready && g.Handle() == nil {
		r.nextHandle++
		g.SetHandle(r.nextHandle)
	}
}

func (r *NullRenderer) uploadTexture(t *res.Texture) {
	if t != nil && t.State() == res.Ready && t.Handle() == nil {
		r.nextHandle++
		t.SetHandle(r.nextHandle)
	}
}

// DisposeTexture releases the fake handle.
func (r *NullRenderer) DisposeTexture(t *res.Texture) error {
	if t.Handle() != nil {
		t.SetHandle(nil)
		r.released++
	}
	return nil
}

// DisposeGeometry releases the fake handle.
func (r *NullRenderer) DisposeGeometry(g *res.Geometry) error {
	if g.Handle() != nil {
		g.SetHandle(nil)
		r.released++
	}
	return nil
}

// Dispose shuts the renderer down. Further Render calls error.
func (r *NullRenderer) Dispose() error {
	r.disposed = true
	return nil
}

// Frames returns how many frames were rendered.
func (r *NullRenderer) Frames() uint64 { return r.frames }

// Draws returns the total number of queued renderables drawn.
func (r *NullRenderer) Draws() int { return r.draws }

// Released returns how many resource handles were disposed.
func (r *NullRenderer) Released() int { return r.released }

// Size returns the current output size.
func (r *NullRenderer) Size() (width, height int) { return r.width, r.height }
