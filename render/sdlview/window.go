// Package sdlview presents scenes into an SDL window. It draws a
// wireframe through the SDL 2D renderer: projected triangle edges, no
// shading. It registers itself in the render registry under "sdl".
package sdlview

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// Window wraps an SDL window as a core.Window.
type Window struct {
	win *sdl.Window
}

// NewWindow creates a shown, resizable SDL window. sdl.Init must have
// run before this.
func NewWindow(title string, width, height int) (*Window, error) {
	w, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("sdlview.NewWindow(): %w", err)
	}
	return &Window{win: w}, nil
}

// Wrap adopts an existing SDL window.
func Wrap(w *sdl.Window) *Window {
	return &Window{win: w}
}

// Native returns the underlying SDL window.
func (w *Window) Native() *sdl.Window { return w.win }

// Size returns the drawable size in pixels.
func (w *Window) Size() (width, height int) {
	ww, wh := w.win.GetSize()
	return int(ww), int(wh)
}

// Destroy destroys the window.
func (w *Window) Destroy() error { return w.win.Destroy() }
