package core

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
)

// SweepStats summarizes the last completed sweep.
type SweepStats struct {
	Frame              uint64
	LiveGeometries     int
	LiveTextures       int
	DisposedGeometries int
	DisposedTextures   int
}

// NewTracker creates an empty usage tracker.
func NewTracker() *Tracker {
	return &Tracker{logger: log.StandardLogger()}
}

// Tracker watches which GPU resources the render queues still reach
// and disposes the ones that dropped out. It keeps the resource set
// seen last frame; after marking the current frame, anything from the
// old set left unmarked gets released through the renderer.
//
// A resource referenced again in the same frame is marked once; a
// Pending resource sitting in a material counts as referenced, so
// in-flight loads never get collected out from under their target.
// Resources that were never reachable from a queue are simply not the
// tracker's problem.
type Tracker struct {
	frame uint64

	geos []*res.Geometry
	texs []*res.Texture

	nextGeos []*res.Geometry
	nextTexs []*res.Texture

	stats  SweepStats
	logger log.FieldLogger
}

// SetLogger redirects the tracker's sweep logging.
func (t *Tracker) SetLogger(l log.FieldLogger) {
	if l != nil {
		t.logger = l
	}
}

// Frame returns the number of completed sweeps.
func (t *Tracker) Frame() uint64 { return t.frame }

// Stats returns numbers from the last completed sweep.
func (t *Tracker) Stats() SweepStats { return t.stats }

// Live returns the tracked resource counts as of the last sweep.
func (t *Tracker) Live() (geometries, textures int) {
	return len(t.geos), len(t.texs)
}

// Sweep runs the per-frame collection pass: mark everything reachable
// from the scene's queues and lights, dispose what the previous frame
// reached but this one does not, then swap the snapshots. Runs after
// Render, on the frame timeline.
//
// A disposal error aborts the sweep and propagates to the frame tick;
// the failed resource still counts as disposed and is never retried.
// Resources not yet examined stay in the old snapshot and get another
// look next frame.
func (t *Tracker) Sweep(sc *scene.Scene, d res.Disposer) error {
	t.frame++
	t.nextGeos = t.nextGeos[:0]
	t.nextTexs = t.nextTexs[:0]

	for _, r := range sc.Opaque() {
		t.markRenderable(r)
	}
	for _, r := range sc.Transparent() {
		t.markRenderable(r)
	}
	for _, l := range sc.Lights() {
		if l.Cubemap != nil {
			t.markTexture(l.Cubemap)
		}
	}

	disposedGeos, disposedTexs := 0, 0
	for _, g := range t.geos {
		if g.Disposed() || g.UsedIn(t.frame) {
			continue
		}
		if err := g.Dispose(d); err != nil {
			return fmt.Errorf("tracker: dispose geometry %q: %w", g.Name(), err)
		}
		t.logger.WithField("geometry", g.Name()).Debug("swept")
		disposedGeos++
	}
	for _, tex := range t.texs {
		if tex.Disposed() || tex.UsedIn(t.frame) {
			continue
		}
		if err := tex.Dispose(d); err != nil {
			return fmt.Errorf("tracker: dispose texture %q: %w", tex.Name(), err)
		}
		t.logger.WithField("texture", tex.Name()).Debug("swept")
		disposedTexs++
	}

	t.geos, t.nextGeos = t.nextGeos, t.geos
	t.texs, t.nextTexs = t.nextTexs, t.texs

	t.stats = SweepStats{
		Frame:              t.frame,
		LiveGeometries:     len(t.geos),
		LiveTextures:       len(t.texs),
		DisposedGeometries: disposedGeos,
		DisposedTextures:   disposedTexs,
	}
	return nil
}

func (t *Tracker) markRenderable(r *scene.Renderable) {
	if g := r.Geometry; g != nil && g.MarkUsed(t.frame) {
		t.nextGeos = append(t.nextGeos, g)
	}
	if m := r.Material; m != nil {
		m.EachTexture(t.markTexture)
	}
}

func (t *Tracker) markTexture(tex *res.Texture) {
	if tex.MarkUsed(t.frame) {
		t.nextTexs = append(t.nextTexs, tex)
	}
}

// DisposeAll releases every resource the tracker still holds, both
// snapshots included. Used at application teardown. Unlike Sweep it
// keeps going past failures and reports them joined.
func (t *Tracker) DisposeAll(d res.Disposer) error {
	var errs []error
	for _, set := range [][]*res.Geometry{t.geos, t.nextGeos} {
		for _, g := range set {
			if err := g.Dispose(d); err != nil {
				errs = append(errs, fmt.Errorf("tracker: dispose geometry %q: %w", g.Name(), err))
			}
		}
	}
	for _, set := range [][]*res.Texture{t.texs, t.nextTexs} {
		for _, tex := range set {
			if err := tex.Dispose(d); err != nil {
				errs = append(errs, fmt.Errorf("tracker: dispose texture %q: %w", tex.Name(), err))
			}
		}
	}
	t.geos, t.texs = nil, nil
	t.nextGeos, t.nextTexs = nil, nil
	return errors.Join(errs...)
}
