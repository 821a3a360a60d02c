package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/lumen3d/lumen/asset"
	"github.com/lumen3d/lumen/loader"
	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
	"github.com/lumen3d/lumen/shape"
)

// construction and lifecycle errors
var (
	ErrNilWindow   = errors.New("core: nil window")
	ErrNilRenderer = errors.New("core: nil renderer")
	ErrBadSize     = errors.New("core: drawable size must be positive")
	ErrAppDisposed = errors.New("core: app disposed")
)

// App owns one window, one renderer and one scene, and drives the frame
// loop across them. Everything stateful happens on the frame timeline:
// async loaders hand their completions to Invoke and the app applies
// them at the top of the next Step, so nothing mutates a frame in
// progress.
type App struct {
	cfg      Configuration
	window   Window
	renderer Renderer

	sc       *scene.Scene
	timeline *Timeline
	tracker  *Tracker
	bridge   *loader.Bridge

	invokeMu sync.Mutex
	invokes  []func()

	update func(dt float64)

	exitC    chan struct{}
	quitOnce sync.Once

	logger   log.FieldLogger
	frames   uint64
	lastDt   float64
	disposed bool
}

// New builds the application around an existing window and renderer.
// The drawable size is validated before anything is created: the
// configured size wins, the window measurement fills the gaps. The
// scene starts with a default camera matching that size.
func New(window Window, renderer Renderer, cfg Configuration) (*App, error) {
	if window == nil {
		return nil, ErrNilWindow
	}
	if renderer == nil {
		return nil, ErrNilRenderer
	}

	w, h := cfg.App.Width, cfg.App.Height
	if w <= 0 || h <= 0 {
		mw, mh := window.Size()
		if w <= 0 {
			w = mw
		}
		if h <= 0 {
			h = mh
		}
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, w, h)
	}

	sc := scene.New()
	sc.SetCamera(scene.NewCamera(60, float32(w)/float32(h), 0.1, 1000))

	a := &App{
		cfg:      cfg,
		window:   window,
		renderer: renderer,
		sc:       sc,
		timeline: NewTimeline(cfg.Time),
		tracker:  NewTracker(),
		exitC:    make(chan struct{}),
		logger:   log.StandardLogger(),
	}
	a.bridge = loader.New(a, sc, asset.Dir(cfg.Loader.AssetRoot), loader.Config{
		TextureRoot:   cfg.Loader.TextureRoot,
		DefaultShader: cfg.Loader.DefaultShader,
	})
	a.bridge.SetClipRegistry(a.timeline)

	a.applySize(w, h)
	return a, nil
}

// Invoke queues fn onto the frame timeline. The next Step runs it
// before anything else. Safe from any goroutine.
func (a *App) Invoke(fn func()) {
	if fn == nil {
		return
	}
	a.invokeMu.Lock()
	a.invokes = append(a.invokes, fn)
	a.invokeMu.Unlock()
}

// drainInvokes runs the continuations queued since the last frame.
// Work queued while draining waits for the next frame.
func (a *App) drainInvokes() {
	a.invokeMu.Lock()
	pending := a.invokes
	a.invokes = nil
	a.invokeMu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// OnUpdate installs the per-frame update callback. It runs after the
// queued invokes and the clip tick, before queue rebuild and render.
func (a *App) OnUpdate(fn func(dt float64)) { a.update = fn }

// Step runs one frame: drain queued invokes, tick the timeline, run
// the update callback, rebuild the render queues, render, sweep. A
// render or disposal error is fatal to the step and comes back
// wrapped.
func (a *App) Step(dt float64) error {
	if a.disposed {
		return ErrAppDisposed
	}
	a.lastDt = dt

	a.drainInvokes()
	a.timeline.Tick(dt)
	if a.update != nil {
		a.update(dt)
	}
	a.sc.UpdateQueues()

	if err := a.renderer.Render(a.sc); err != nil {
		return fmt.Errorf("core: render: %w", err)
	}
	if err := a.tracker.Sweep(a.sc, a.renderer); err != nil {
		return fmt.Errorf("core: sweep: %w", err)
	}
	a.frames++
	return nil
}

// Run drives Step off the frame ticker until Quit is called or a step
// fails. Platform event polling belongs to the caller's own loop; see
// cmd/lumen for the select that folds it in.
func (a *App) Run(update func(dt float64)) error {
	if update != nil {
		a.OnUpdate(update)
	}
	for {
		select {
		case <-a.exitC:
			a.logger.Info("frame loop exited")
			return nil
		case <-a.timeline.FrameTicker().C:
			if err := a.Step(a.timeline.Advance()); err != nil {
				return err
			}
		}
	}
}

// Quit asks the frame loop to exit after the current frame. Safe to
// call more than once, from any goroutine.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.exitC) })
}

// Exit is closed once Quit has been called.
func (a *App) Exit() <-chan struct{} { return a.exitC }

// Resize applies a new drawable size to the renderer and the camera.
// Explicit arguments win, then the configured size, then the live
// window measurement; width and height resolve independently but by
// the same rule.
func (a *App) Resize(width, height int) {
	if a.disposed {
		return
	}
	mw, mh := a.window.Size()
	w := pick(width, a.cfg.App.Width, mw)
	h := pick(height, a.cfg.App.Height, mh)
	if w <= 0 || h <= 0 {
		return
	}
	a.applySize(w, h)
}

// pick returns the first positive candidate.
func pick(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func (a *App) applySize(w, h int) {
	a.renderer.Resize(w, h)
	if cam := a.sc.Camera(); cam != nil {
		cam.SetAspect(w, h)
	}
	a.logger.WithFields(log.Fields{"width": w, "height": h}).Debug("resized")
}

// Dispose tears the app down: stop the clock, release every tracked
// resource through the renderer, then destroy the renderer and the
// window. Further Steps fail with ErrAppDisposed; calling Dispose
// again is a no-op.
func (a *App) Dispose() error {
	if a.disposed {
		return nil
	}
	a.disposed = true
	a.timeline.Stop()

	var errs []error
	if err := a.tracker.DisposeAll(a.renderer); err != nil {
		errs = append(errs, err)
	}
	if err := a.renderer.Dispose(); err != nil {
		errs = append(errs, fmt.Errorf("core: renderer dispose: %w", err))
	}
	if err := a.window.Destroy(); err != nil {
		errs = append(errs, fmt.Errorf("core: window destroy: %w", err))
	}
	return errors.Join(errs...)
}

// accessors

func (a *App) Window() Window        { return a.window }
func (a *App) Renderer() Renderer    { return a.renderer }
func (a *App) Scene() *scene.Scene   { return a.sc }
func (a *App) Timeline() *Timeline   { return a.timeline }
func (a *App) Tracker() *Tracker     { return a.tracker }
func (a *App) Config() Configuration { return a.cfg }

// FrameCount returns the number of completed frames.
func (a *App) FrameCount() uint64 { return a.frames }

// FrameTime returns the delta of the last frame, in seconds.
func (a *App) FrameTime() float64 { return a.lastDt }

// Elapsed returns the total animated time in seconds.
func (a *App) Elapsed() float64 { return a.timeline.Elapsed() }

// SetLogger redirects app, tracker and loader logging.
func (a *App) SetLogger(l log.FieldLogger) {
	if l == nil {
		return
	}
	a.logger = l
	a.tracker.SetLogger(l)
	a.bridge.SetLogger(l)
}

// SetAssets swaps the source asset names resolve against.
func (a *App) SetAssets(src asset.Source) { a.bridge.SetAssets(src) }

// SetDiagnostic installs an observer for errors the loader swallows.
func (a *App) SetDiagnostic(d loader.Diagnostic) { a.bridge.SetDiagnostic(d) }

// loading

// Texture loads src through the bridge and returns an attachable
// texture immediately; see loader.Bridge.Texture.
func (a *App) Texture(src any, opts res.TextureOptions) *res.Texture {
	return a.bridge.Texture(src, opts)
}

// LoadTexture loads src and blocks until the texture settles. Not for
// the frame goroutine; the timeline keeps running while it waits.
func (a *App) LoadTexture(ctx context.Context, src any, opts res.TextureOptions) (*res.Texture, error) {
	tex := a.bridge.Texture(src, opts)
	if err := tex.Wait(ctx); err != nil {
		return nil, err
	}
	return tex, nil
}

// LoadTextureFunc loads src and calls fn on the frame timeline once
// the texture settles. The returned texture is attachable right away.
func (a *App) LoadTextureFunc(src any, opts res.TextureOptions, fn func(*res.Texture, error)) *res.Texture {
	tex := a.bridge.Texture(src, opts)
	if fn != nil {
		go func() {
			<-tex.Done()
			err := tex.Err()
			a.Invoke(func() { fn(tex, err) })
		}()
	}
	return tex
}

// Material builds a material; see loader.Bridge.Material.
func (a *App) Material(cfg loader.MaterialConfig) *res.Material {
	return a.bridge.Material(cfg)
}

// Model starts a model load and returns its handle right away; see
// loader.Bridge.Model.
func (a *App) Model(url string, opts loader.ModelOptions) *loader.ModelHandle {
	return a.bridge.Model(url, opts)
}

// LoadModel loads url and blocks until the model is inserted or its
// structure fails. Not for the frame goroutine.
func (a *App) LoadModel(ctx context.Context, url string, opts loader.ModelOptions) (*scene.Node, error) {
	return a.bridge.Model(url, opts).Wait(ctx)
}

// LoadModelFunc starts a model load and calls fn on the frame timeline
// when the handle settles.
func (a *App) LoadModelFunc(url string, opts loader.ModelOptions, fn func(*loader.ModelHandle)) *loader.ModelHandle {
	h := a.bridge.Model(url, opts)
	if fn != nil {
		go func() {
			<-h.Done()
			a.Invoke(func() { fn(h) })
		}()
	}
	return h
}

// Camera installs a fresh scene camera with the given projection. The
// aspect ratio carries over from the current drawable size.
func (a *App) Camera(fovDeg, near, far float32) *scene.Camera {
	aspect := float32(1)
	if cam := a.sc.Camera(); cam != nil {
		aspect = cam.Aspect
	}
	cam := scene.NewCamera(fovDeg, aspect, near, far)
	a.sc.SetCamera(cam)
	return cam
}

// mesh conveniences

// Cube adds a cube node under the scene root.
func (a *App) Cube(name string, size float32, mat *res.Material) *scene.Node {
	return a.addMesh(name, shape.Cube(size), mat)
}

// Sphere adds a UV sphere node under the scene root.
func (a *App) Sphere(name string, radius float32, mat *res.Material) *scene.Node {
	return a.addMesh(name, shape.Sphere(radius, 32, 16), mat)
}

// Plane adds a ground plane node under the scene root.
func (a *App) Plane(name string, width, depth float32, mat *res.Material) *scene.Node {
	return a.addMesh(name, shape.Plane(width, depth, 1, 1), mat)
}

func (a *App) addMesh(name string, data res.MeshData, mat *res.Material) *scene.Node {
	node := a.sc.Root().NewChild(name)
	node.Attach(res.NewGeometry(name, data), mat)
	return node
}
