// Copyright (c) 2026 lumen3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command lumen is the reference viewer: it opens an SDL window, wires
// a renderer from the registry and drives the frame loop. Without a
// model argument it shows a small built-in scene.
package main

import (
	"flag"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/lumen3d/lumen/asset"
	"github.com/lumen3d/lumen/core"
	"github.com/lumen3d/lumen/loader"
	_ "github.com/lumen3d/lumen/loader/collada"
	"github.com/lumen3d/lumen/render"
	"github.com/lumen3d/lumen/render/sdlview"
	"github.com/lumen3d/lumen/scene"
)

func init() {
	runtime.LockOSThread()
}

var (
	configFile   = flag.String("config", "", "Load configuration from a TOML file")
	envFile      = flag.String("env", "", "Load environment overrides from this file instead of .env")
	modelFile    = flag.String("model", "", "Load a model into the scene")
	waitTextures = flag.Bool("wait-textures", false, "Hold model insertion until all of its textures settled")
	verbose      = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	configuration, err := resolveConfiguration()
	if err != nil {
		log.Fatal(err)
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.Fatal(err)
	}
	defer sdl.Quit()

	window, err := sdlview.NewWindow(configuration.App.Title, configuration.App.Width, configuration.App.Height)
	if err != nil {
		log.Fatal(err)
	}

	renderer, err := render.New(configuration.Renderer.Backend, window, configuration.Renderer)
	if err != nil {
		log.Fatal(err)
	}
	log.WithField("available", render.Available()).Info("renderer ready")

	app, err := core.New(window, renderer, configuration)
	if err != nil {
		log.Fatal(err)
	}

	// Disk assets first, then whatever ships inside the binary.
	app.SetAssets(asset.Multi{
		asset.Dir(configuration.Loader.AssetRoot),
		asset.Box(defaultAssets),
	})

	cam := app.Camera(60, 0.1, 1000)
	cam.LookAt(mgl32.Vec3{6, 4, 8}, mgl32.Vec3{0, 1, 0})

	if *modelFile != "" {
		loadModel(app, *modelFile)
	} else {
		buildDemoScene(app)
	}

	if err := eventLoop(app); err != nil {
		log.WithError(err).Error("frame loop failed")
	}
	if err := app.Dispose(); err != nil {
		log.WithError(err).Error("teardown")
	}
}

// eventLoop folds SDL event polling into the frame loop: both run off
// the timeline's tickers, frames stepping between polls.
func eventLoop(app *core.App) error {
	timeline := app.Timeline()

EventLoop:
	for {
		select {
		case <-app.Exit():
			log.Info("event loop exited")
			break EventLoop
		case <-timeline.EventTicker().C:
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						app.Quit()
						continue EventLoop
					}
				case *sdl.WindowEvent:
					if et.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
						app.Resize(int(et.Data1), int(et.Data2))
					}
				case *sdl.QuitEvent:
					app.Quit()
					continue EventLoop
				}
			}
		case <-timeline.FrameTicker().C:
			if err := app.Step(timeline.Advance()); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadModel(app *core.App, url string) {
	opts := loader.ModelOptions{AutoPlayAnimation: true}
	if *waitTextures {
		opts.Policy = loader.InsertWaitTextures
	}
	app.LoadModelFunc(url, opts, func(h *loader.ModelHandle) {
		if h.Err() != nil {
			log.WithError(h.Err()).Error("model load failed")
			app.Quit()
			return
		}
		log.WithFields(log.Fields{
			"model":    url,
			"textures": len(h.Model().Textures),
			"clips":    len(h.Model().Clips),
		}).Info("model inserted")
	})
}

// buildDemoScene sets up the scene shown when no model is given: a
// spinning textured crate, a sphere and a ground plane under one
// directional light.
func buildDemoScene(app *core.App) {
	sun := scene.NewLight(scene.Directional, "sun")
	sun.Direction = mgl32.Vec3{-0.4, -1, -0.3}
	app.Scene().AddLight(sun)

	crate := app.Cube("crate", 2, app.Material(loader.MaterialConfig{
		Name:   "crate",
		Shader: "standard",
		Uniforms: map[string]any{
			"map":       "textures/checker.png",
			"baseColor": []float64{0.9, 0.7, 0.4, 1},
			"roughness": 0.7,
		},
	}))
	crate.SetPosition(mgl32.Vec3{0, 1, 0})

	ball := app.Sphere("ball", 1.2, app.Material(loader.MaterialConfig{
		Name:   "ball",
		Shader: "standard",
		Uniforms: map[string]any{
			"baseColor": 0x3366cc,
			"metallic":  0.1,
			"roughness": 0.3,
		},
	}))
	ball.SetPosition(mgl32.Vec3{3.5, 1.2, -1})

	app.Plane("ground", 20, 20, app.Material(loader.MaterialConfig{
		Name:     "ground",
		Shader:   "standard",
		Uniforms: map[string]any{"baseColor": []float64{0.25, 0.3, 0.25, 1}},
	}))

	var angle float32
	app.OnUpdate(func(dt float64) {
		angle += float32(dt)
		spin := mgl32.HomogRotate3D(angle, mgl32.Vec3{0, 1, 0})
		pos := crate.Position()
		spin.SetCol(3, mgl32.Vec4{pos.X(), pos.Y(), pos.Z(), 1})
		crate.SetLocal(spin)
	})
}
