package loader

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/lumen3d/lumen/asset"
	"github.com/lumen3d/lumen/res"
	"github.com/lumen3d/lumen/scene"
)

// Model is what a ModelSource produces: a node subtree plus the
// resources and clips hanging off it. Textures listed here may still
// be Pending; the insert policy decides whether that delays insertion.
type Model struct {
	Root       *scene.Node
	Geometries []*res.Geometry
	Textures   []*res.Texture
	Clips      []*scene.AnimationClip
}

// TextureService is the slice of the bridge a model source needs to
// route its texture references through.
type TextureService interface {
	Texture(src any, opts res.TextureOptions) *res.Texture
}

// MaterialService builds materials the bridge's way, shader defaults
// and all.
type MaterialService interface {
	Material(cfg MaterialConfig) *res.Material
}

// ModelEnv hands a model source everything it loads with.
type ModelEnv struct {
	Textures  TextureService
	Materials MaterialService
	Assets    asset.Source

	// TextureRoot prefixes relative texture paths in the model file.
	TextureRoot string

	// Shader is the shader name for the materials the source builds.
	Shader string

	// TextureOptions apply to every texture the source loads.
	TextureOptions res.TextureOptions
}

// TexturePath resolves a texture reference from the model file against
// the configured root.
func (e ModelEnv) TexturePath(name string) string {
	if e.TextureRoot == "" || strings.HasPrefix(name, "/") {
		return strings.TrimPrefix(name, "/")
	}
	return path.Join(e.TextureRoot, name)
}

// ModelSource parses one model format. Load fetches and parses url and
// then calls exactly one of the two callbacks. Sources run off the
// frame timeline; the bridge moves the results back onto it.
type ModelSource interface {
	Load(url string, onSuccess func(*Model), onError func(error))
}

// SourceFactory builds a model source bound to an environment.
type SourceFactory func(env ModelEnv) ModelSource

var (
	sourceMu   sync.RWMutex
	sourceByID = make(map[string]SourceFactory)
	sourceExts = make(map[string]string)
)

// RegisterSource adds a model source factory under a name, claiming
// the given url extensions (".dae" style, lower case). Format packages
// call this from init.
func RegisterSource(name string, exts []string, f SourceFactory) {
	sourceMu.Lock()
	defer sourceMu.Unlock()
	sourceByID[name] = f
	for _, ext := range exts {
		sourceExts[ext] = name
	}
}

// Sources lists the registered source names.
func Sources() []string {
	sourceMu.RLock()
	defer sourceMu.RUnlock()
	names := make([]string, 0, len(sourceByID))
	for n := range sourceByID {
		names = append(names, n)
	}
	return names
}

func lookupSource(name, url string) (SourceFactory, error) {
	sourceMu.RLock()
	defer sourceMu.RUnlock()
	if name != "" {
		if f, ok := sourceByID[name]; ok {
			return f, nil
		}
		return nil, fmt.Errorf("loader: source %q: %w", name, ErrNoSource)
	}
	ext := strings.ToLower(path.Ext(url))
	if id, ok := sourceExts[ext]; ok {
		return sourceByID[id], nil
	}
	return nil, fmt.Errorf("loader: %q: %w", url, ErrNoSource)
}

// InsertPolicy picks the moment a loaded model joins the scene.
type InsertPolicy uint8

const (
	// InsertImmediate splices the model in as soon as its structure
	// parses; its textures keep settling in place afterwards.
	InsertImmediate InsertPolicy = iota

	// InsertWaitTextures holds the model back until every texture it
	// references has settled, Ready or Failed alike. Texture failures
	// never fail the model.
	InsertWaitTextures
)

// ModelOptions adjust one model load.
type ModelOptions struct {
	Policy InsertPolicy

	// Parent receives the model; the scene root when nil.
	Parent *scene.Node

	// Source forces a registered source by name instead of picking
	// one by url extension.
	Source string

	// Shader overrides the shader models build their materials with.
	Shader string

	// TextureRoot overrides where relative texture paths resolve.
	TextureRoot string

	TextureOptions res.TextureOptions

	// AutoPlayAnimation registers the model's clips with the frame
	// timeline on insertion.
	AutoPlayAnimation bool
}

// ModelHandle tracks one model load. It settles exactly once: with the
// inserted root node, or with the structural load error.
type ModelHandle struct {
	done chan struct{}

	node  *scene.Node
	model *Model
	err   error
}

func newModelHandle() *ModelHandle {
	return &ModelHandle{done: make(chan struct{})}
}

// Done is closed once the handle settles.
func (h *ModelHandle) Done() <-chan struct{} { return h.done }

// Node returns the inserted root, nil before settlement or on failure.
func (h *ModelHandle) Node() *scene.Node { return h.node }

// Model returns the full source output once settled.
func (h *ModelHandle) Model() *Model { return h.model }

// Err returns the structural load error after settlement.
func (h *ModelHandle) Err() error { return h.err }

// Wait blocks until the model is inserted or failed. Not for the frame
// goroutine: settlement itself happens on the timeline.
func (h *ModelHandle) Wait(ctx context.Context) (*scene.Node, error) {
	select {
	case <-h.done:
		return h.node, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *ModelHandle) settle(node *scene.Node, err error) {
	h.node = node
	h.err = err
	close(h.done)
}

// Model starts loading url and returns a handle right away. The
// source's output is inserted into the scene on the frame timeline,
// per the insert policy; a structural parse or fetch failure is the
// only thing that fails the handle.
func (b *Bridge) Model(url string, opts ModelOptions) *ModelHandle {
	h := newModelHandle()

	factory, err := lookupSource(opts.Source, url)
	if err != nil {
		b.inv.Invoke(func() { h.settle(nil, err) })
		return h
	}

	env := ModelEnv{
		Textures:       b,
		Materials:      b,
		Assets:         b.assets,
		TextureRoot:    b.cfg.TextureRoot,
		Shader:         b.cfg.DefaultShader,
		TextureOptions: opts.TextureOptions,
	}
	if opts.TextureRoot != "" {
		env.TextureRoot = opts.TextureRoot
	}
	if opts.Shader != "" {
		env.Shader = opts.Shader
	}

	src := factory(env)
	go src.Load(url,
		func(m *Model) {
			b.inv.Invoke(func() { b.finishModel(h, m, opts, url) })
		},
		func(err error) {
			b.inv.Invoke(func() {
				h.settle(nil, fmt.Errorf("loader: model %q: %w", url, err))
			})
		},
	)
	return h
}

// finishModel runs on the frame timeline after a structural success.
func (b *Bridge) finishModel(h *ModelHandle, m *Model, opts ModelOptions, url string) {
	insert := func() {
		parent := opts.Parent
		if parent == nil {
			parent = b.sc.Root()
		}
		parent.Add(m.Root)
		if opts.AutoPlayAnimation && b.clips != nil {
			for _, c := range m.Clips {
				b.clips.AddClip(c)
			}
		}
		h.model = m
		h.settle(m.Root, nil)
		b.logger.WithField("model", url).Debug("model inserted")
	}

	if opts.Policy == InsertImmediate || len(m.Textures) == 0 {
		insert()
		return
	}

	// Hold insertion until every texture settles. Failed loads count
	// as settled; they surface through the diagnostic hook only.
	remaining := len(m.Textures)
	for _, tex := range m.Textures {
		tex := tex
		b.whenSettled(tex, func(err error) {
			if err != nil {
				b.diag("model", tex.Name(), err)
			}
			remaining--
			if remaining == 0 {
				insert()
			}
		})
	}
}
