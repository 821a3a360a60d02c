// Copyright (c) 2026 lumen3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"

	"github.com/lumen3d/lumen/core"
	"github.com/lumen3d/lumen/render"
)

// defaultAssets ships the fallback assets compiled into the binary,
// the demo checker texture among them.
var defaultAssets = packr.NewBox("./assets")

var (
	flagWidth   = flag.Int("width", 0, "Window width, overrides configuration")
	flagHeight  = flag.Int("height", 0, "Window height, overrides configuration")
	flagFps     = flag.Int("fps", 0, "Frame cap, overrides configuration")
	flagBackend = flag.String("backend", "", "Renderer backend, overrides configuration")
	flagAssets  = flag.String("assets", "", "Asset directory, overrides configuration")
)

var defaults = core.Configuration{
	App: core.AppConfiguration{
		Title:  "lumen",
		Width:  1280,
		Height: 720,
	},
	Time: core.TimeConfiguration{
		FramesPerSecond: 60,
		EventPollDelay:  10,
	},
	Renderer: core.RendererConfiguration{
		Backend:    render.RendererSDL,
		ClearColor: [4]float32{0.08, 0.09, 0.11, 1},
		VSync:      true,
	},
	Loader: core.LoaderConfiguration{
		AssetRoot:     "assets",
		DefaultShader: "standard",
	},
}

// resolveConfiguration assembles the runtime configuration. Precedence
// per field: flag, then LUMEN_* environment (.env loaded first), then
// the TOML file, then the built-in default.
func resolveConfiguration() (core.Configuration, error) {
	cfg := defaults

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", *configFile, err)
		}
	}

	loadEnvFile()
	cfg.App.Title = envy.Get("LUMEN_TITLE", cfg.App.Title)
	cfg.Renderer.Backend = envy.Get("LUMEN_BACKEND", cfg.Renderer.Backend)
	cfg.Loader.AssetRoot = envy.Get("LUMEN_ASSETS", cfg.Loader.AssetRoot)
	cfg.Time.FramesPerSecond = envInt("LUMEN_FPS", cfg.Time.FramesPerSecond)

	if *flagWidth > 0 {
		cfg.App.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.App.Height = *flagHeight
	}
	if *flagFps > 0 {
		cfg.Time.FramesPerSecond = *flagFps
	}
	if *flagBackend != "" {
		cfg.Renderer.Backend = *flagBackend
	}
	if *flagAssets != "" {
		cfg.Loader.AssetRoot = *flagAssets
	}
	return cfg, nil
}

// loadEnvFile reads overrides into the process environment: the -env
// argument when given, otherwise a .env in the working directory when
// there is one.
func loadEnvFile() {
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.WithError(err).Warn("env file not loaded")
		}
		return
	}
	if err := godotenv.Load(); err == nil {
		log.Debug(".env loaded")
	}
}

func envInt(key string, fallback int) int {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "value": raw}).Warn("ignoring non-numeric value")
		return fallback
	}
	return v
}
