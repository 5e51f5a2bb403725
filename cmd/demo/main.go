// demo - interactive viewer for the bordered cube scene.
//
// Controls:
//
//	Mouse drag        - Rotate around the look-at point (drag near a corner to roll)
//	Ctrl + drag       - Pan
//	Shift + drag      - Zoom
//	Ctrl+Shift + drag - Change field of view
//	S                 - Toggle bordered / smooth shading
//	R                 - Reset camera
//	Esc               - Quit
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/config"
	"github.com/Carmen-Shannon/oxy-scene/engine"
	"github.com/Carmen-Shannon/oxy-scene/engine/demo"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var (
	configPath = flag.String("config", "", "Path to a YAML config file")
	profile    = flag.Bool("profile", false, "Log frame statistics every second")
	fps        = flag.Float64("fps", 0, "Tick rate in ticks per second (overrides config)")
	verbose    = flag.Bool("v", false, "Debug logging from the scene and renderer packages")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "demo - bordered cube viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: demo [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag        - Rotate (near a corner: roll)\n")
		fmt.Fprintf(os.Stderr, "  Ctrl + drag       - Pan\n")
		fmt.Fprintf(os.Stderr, "  Shift + drag      - Zoom\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+Shift + drag - Field of view\n")
		fmt.Fprintf(os.Stderr, "  S                 - Toggle shading\n")
		fmt.Fprintf(os.Stderr, "  R                 - Reset camera\n")
		fmt.Fprintf(os.Stderr, "  Esc               - Quit\n")
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg, *profile, *fps)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	w := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(common.Size{Width: cfg.Window.Width, Height: cfg.Window.Height}),
	)

	backend, err := renderer.NewWGPUBackend(w.SurfaceDescriptor(), backendOptions(cfg)...)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("create backend: %w", err)
	}

	d, err := demo.NewDemo(w.Size(), demoOptions(cfg)...)
	if err != nil {
		backend.Release()
		_ = w.Close()
		return err
	}
	r := renderer.NewRenderer(backend, rendererOptions(cfg, d)...)

	w.SetMouseDownCallback(func(p common.Position, mods window.Modifiers) {
		d.MouseDown(p, mods.Ctrl, mods.Shift)
	})
	w.SetMouseDragCallback(func(p common.Position) {
		if err := d.MouseDrag(p); err != nil {
			log.Printf("[Demo] drag: %v", err)
		}
	})
	w.SetMouseUpCallback(func(common.Position) {
		d.MouseUp()
	})
	w.SetKeyDownCallback(func(keyCode uint32) {
		var err error
		switch glfw.Key(keyCode) {
		case glfw.KeyS:
			err = d.ToggleShader()
		case glfw.KeyR:
			err = d.ResetCamera()
		}
		if err != nil {
			log.Printf("[Demo] key %d: %v", keyCode, err)
		}
	})

	e := engine.NewEngine(
		engine.WithWindow(w),
		engine.WithRenderer(r),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithRenderFrameLimit(cfg.Engine.FrameLimit),
		engine.WithProfiling(cfg.Engine.Profile),
		engine.WithTickCallback(func(float32) {
			if _, err := d.Tick(); err != nil {
				log.Printf("[Demo] tick: %v", err)
			}
		}),
		engine.WithResizeCallback(func(size common.Size) {
			if err := d.Resize(size); err != nil {
				log.Printf("[Demo] resize: %v", err)
			}
		}),
	)

	log.Printf("[Demo] running %s at %s, tick rate %.0f", cfg.Scene.Shader, w.Size(), cfg.Engine.TickRate)
	e.Run()
	return w.Close()
}
