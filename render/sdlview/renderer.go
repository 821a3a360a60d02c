package sdlview

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/lumen3d/lumen/core"
	"github.com/lumen3d/lumen/render"
	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
)

// ErrNotSDLWindow is returned when the window handed to the factory
// does not wrap an SDL window.
var ErrNotSDLWindow = errors.New("sdlview: window does not expose an SDL window")

func init() {
	render.Register(render.RendererSDL, 50, func(win core.Window, cfg core.RendererConfiguration) (core.Renderer, error) {
		return NewRenderer(win, cfg)
	})
}

// Renderer draws scene wireframes with the SDL 2D renderer. Geometry
// uploads cache projection-ready corners in the resource handle slot;
// textures have no SDL-side representation and keep a nil handle.
type Renderer struct {
	ren *sdl.Renderer

	width  int
	height int
	clear  [4]float32
}

// NewRenderer creates a wireframe presenter for the given window.
func NewRenderer(win core.Window, cfg core.RendererConfiguration) (*Renderer, error) {
	native, ok := win.(interface{ Native() *sdl.Window })
	if !ok {
		return nil, ErrNotSDLWindow
	}

	flags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.VSync {
		flags |= sdl.RENDERER_PRESENTVSYNC
	}
	ren, err := sdl.CreateRenderer(native.Native(), -1, flags)
	if err != nil {
		return nil, fmt.Errorf("sdlview.NewRenderer(): %w", err)
	}

	width, height := int(cfg.ScreenWidth), int(cfg.ScreenHeight)
	if width <= 0 || height <= 0 {
		width, height = win.Size()
	}
	return &Renderer{ren: ren, width: width, height: height, clear: cfg.ClearColor}, nil
}

// Resize adjusts the projection target size.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
}

// Render clears, draws both queues as wireframes and presents.
func (r *Renderer) Render(sc *scene.Scene) error {
	r.ren.SetDrawColor(toByte(r.clear[0]), toByte(r.clear[1]), toByte(r.clear[2]), toByte(r.clear[3]))
	if err := r.ren.Clear(); err != nil {
		return fmt.Errorf("sdlview: clear: %w", err)
	}

	if sc != nil {
		if cam := sc.Camera(); cam != nil {
			vp := cam.ViewProj()
			for _, rend := range sc.Opaque() {
				r.drawWire(vp, rend)
			}
			for _, rend := range sc.Transparent() {
				r.drawWire(vp, rend)
			}
		}
	}

	r.ren.Present()
	return nil
}

// wireMesh is the cached upload: object-space corners ready for
// projection.
type wireMesh struct {
	pos []mgl32.Vec4
	idx []uint32
}

func newWireMesh(d *res.MeshData) *wireMesh {
	m := &wireMesh{pos: make([]mgl32.Vec4, d.VertexCount()), idx: d.Index}
	for i := range m.pos {
		m.pos[i] = mgl32.Vec4{d.Pos[i*3], d.Pos[i*3+1], d.Pos[i*3+2], 1}
	}
	return m
}

func (r *Renderer) drawWire(vp mgl32.Mat4, rend *scene.Renderable) {
	g := rend.Geometry
	if g == nil || g.State() != res.Ready {
		return
	}
	mesh, _ := g.Handle().(*wireMesh)
	if mesh == nil {
		mesh = newWireMesh(g.Data())
		g.SetHandle(mesh)
	}

	cr, cg, cb := lineColor(rend.Material)
	r.ren.SetDrawColor(cr, cg, cb, 255)

	mvp := vp.Mul4(rend.Node().World())
	for t := 0; t+2 < len(mesh.idx); t += 3 {
		var pts [3][2]int32
		behind := false
		for c := 0; c < 3; c++ {
			clip := mvp.Mul4x1(mesh.pos[mesh.idx[t+c]])
			if clip.W() < 1e-4 {
				behind = true
				break
			}
			ndc := clip.Mul(1 / clip.W())
			pts[c][0] = int32((ndc.X() + 1) * 0.5 * float32(r.width))
			pts[c][1] = int32((1 - ndc.Y()) * 0.5 * float32(r.height))
		}
		if behind {
			continue
		}
		for c := 0; c < 3; c++ {
			a, b := pts[c], pts[(c+1)%3]
			r.ren.DrawLine(a[0], a[1], b[0], b[1])
		}
	}
}

// lineColor picks a wire color from the material's color-like uniforms.
func lineColor(mat *res.Material) (cr, cg, cb uint8) {
	if mat != nil {
		for _, name := range []string{"color", "baseColor", "diffuse"} {
			if u, ok := mat.Uniform(name); ok {
				if v, ok := u.Value.(mgl32.Vec4); ok {
					return toByte(v.X()), toByte(v.Y()), toByte(v.Z())
				}
			}
		}
	}
	return 220, 220, 220
}

func toByte(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}

// DisposeTexture drops the texture handle. SDL keeps no texture state
// for wireframes.
func (r *Renderer) DisposeTexture(t *res.Texture) error {
	t.SetHandle(nil)
	return nil
}

// DisposeGeometry drops the cached wire mesh.
func (r *Renderer) DisposeGeometry(g *res.Geometry) error {
	g.SetHandle(nil)
	return nil
}

// Dispose destroys the SDL renderer. The window stays with its owner.
func (r *Renderer) Dispose() error {
	if r.ren == nil {
		return nil
	}
	err := r.ren.Destroy()
	r.ren = nil
	return err
}
