// Package loader turns asset names into live resources. Textures,
// materials and whole models come back usable immediately; whatever is
// still being fetched or decoded arrives in Pending state and settles
// through the frame timeline, never concurrently with a frame.
package loader

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/lumen3d/lumen/asset"
	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
)

// package errors
var (
	ErrNoSource      = errors.New("no model source registered for url")
	ErrBadSource     = errors.New("unsupported texture source type")
	ErrNotDeclared   = errors.New("uniform not declared by shader")
	ErrUnknownShader = errors.New("shader not registered")
)

// Invoker queues a continuation onto the frame timeline. The app
// implements it; completions go through here so they interleave
// between frames instead of racing one.
type Invoker interface {
	Invoke(func())
}

// ClipRegistry receives animation clips from loaded models. The frame
// timeline implements it.
type ClipRegistry interface {
	AddClip(*scene.AnimationClip)
}

// Diagnostic observes errors the bridge swallows on purpose: texture
// loads that materials skip, texture failures inside a model join.
// op names the operation, name the resource.
type Diagnostic func(op, name string, err error)

// Config adjusts bridge behavior.
type Config struct {
	// TextureRoot prefixes relative texture paths coming out of
	// model sources.
	TextureRoot string

	// DefaultShader backs materials whose config names no shader.
	DefaultShader string
}

// Bridge orchestrates asset loading for one scene. Methods return
// resources that are attachable right away; fetching and decoding runs
// on background goroutines and every mutation lands back on the frame
// timeline through the Invoker.
type Bridge struct {
	inv    Invoker
	sc     *scene.Scene
	assets asset.Source
	clips  ClipRegistry
	cfg    Config

	diag   Diagnostic
	logger log.FieldLogger

	nameSeq uint64
}

// New creates a bridge loading from assets into sc. The default
// diagnostic logs swallowed errors as warnings.
func New(inv Invoker, sc *scene.Scene, assets asset.Source, cfg Config) *Bridge {
	if cfg.DefaultShader == "" {
		cfg.DefaultShader = "standard"
	}
	b := &Bridge{
		inv:    inv,
		sc:     sc,
		assets: assets,
		cfg:    cfg,
		logger: log.StandardLogger(),
	}
	b.diag = b.logDiagnostic
	return b
}

// SetLogger redirects bridge logging.
func (b *Bridge) SetLogger(l log.FieldLogger) {
	if l != nil {
		b.logger = l
	}
}

// SetDiagnostic installs an observer for swallowed errors. Passing nil
// restores the logging default.
func (b *Bridge) SetDiagnostic(d Diagnostic) {
	if d == nil {
		d = b.logDiagnostic
	}
	b.diag = d
}

// SetClipRegistry wires the timeline that receives model animation
// clips.
func (b *Bridge) SetClipRegistry(r ClipRegistry) { b.clips = r }

// Assets returns the source names resolve against.
func (b *Bridge) Assets() asset.Source { return b.assets }

// SetAssets swaps the asset source for subsequent loads.
func (b *Bridge) SetAssets(src asset.Source) { b.assets = src }

func (b *Bridge) logDiagnostic(op, name string, err error) {
	b.logger.WithFields(log.Fields{
		"op":   op,
		"name": name,
	}).WithError(err).Warn("load error swallowed")
}

// whenSettled runs fn on the frame timeline once tex settles, with the
// texture's load error. Works for already-settled textures too.
func (b *Bridge) whenSettled(tex *res.Texture, fn func(error)) {
	go func() {
		<-tex.Done()
		err := tex.Err()
		b.inv.Invoke(func() { fn(err) })
	}()
}
