package main

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/demo"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
)

// applyFlags lets command line flags override the file configuration.
func applyFlags(cfg *config.Config, profile bool, fps float64) {
	if profile {
		cfg.Engine.Profile = true
	}
	if fps > 0 {
		cfg.Engine.TickRate = fps
	}
}

func color(v *config.Vec3) common.Color {
	return common.RGB(v[0], v[1], v[2])
}

func shaderSpec(cfg config.Config) rendering.ShaderSpec {
	if cfg.Scene.Shader == "smooth" {
		return rendering.Smooth{}
	}
	return rendering.FlatBordered{BorderThickness: cfg.Scene.BorderThickness}
}

func demoOptions(cfg config.Config) []demo.DemoBuilderOption {
	options := []demo.DemoBuilderOption{
		demo.WithCamera(camera.Params{
			LookAt:   cfg.Camera.LookAt.Vector3(),
			Position: cfg.Camera.Position.Vector3(),
			Up:       cfg.Camera.Up.Vector3(),
			FovY:     cfg.Camera.FovY,
		}),
		demo.WithBorderThickness(cfg.Scene.BorderThickness),
		demo.WithShader(shaderSpec(cfg)),
		demo.WithFaceColor(color(cfg.Scene.FaceColor)),
		demo.WithBorderColor(color(cfg.Scene.BorderColor)),
		demo.WithWorkers(cfg.Scene.Workers),
	}
	if cfg.Camera.Smoothing {
		options = append(options, demo.WithSmoothing(int(cfg.Engine.TickRate), 8, 1))
	}
	return options
}

func rendererOptions(cfg config.Config, d demo.Demo) []renderer.RendererBuilderOption {
	policy := renderer.FailurePolicySkipDraw
	if cfg.Renderer.FailurePolicy == "abort-frame" {
		policy = renderer.FailurePolicyAbortFrame
	}
	return []renderer.RendererBuilderOption{
		renderer.WithFailurePolicy(policy),
		renderer.WithRendering(d.Rendering()),
	}
}

func backendOptions(cfg config.Config) []renderer.WGPUBackendOption {
	mode := renderer.PresentModeVSync
	if cfg.Renderer.PresentMode == "uncapped" {
		mode = renderer.PresentModeUncapped
	}
	return []renderer.WGPUBackendOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.SoftwareRenderer),
	}
}
