// package config loads the demo's YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Vec3 is a three component vector written as a YAML sequence, e.g. [0, 4, 0].
type Vec3 [3]float32

// Vector3 converts v to a common.Vector3.
func (v Vec3) Vector3() common.Vector3 {
	return common.Vec3(v[0], v[1], v[2])
}

// Config is the full demo configuration. Vector fields are pointers so an omitted entry can be
// told apart from an explicit zero vector.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Camera   CameraConfig   `yaml:"camera"`
	Scene    SceneConfig    `yaml:"scene"`
	Renderer RendererConfig `yaml:"renderer"`
	Engine   EngineConfig   `yaml:"engine"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type CameraConfig struct {
	LookAt   *Vec3   `yaml:"look_at"`
	Position *Vec3   `yaml:"position"`
	Up       *Vec3   `yaml:"up"`
	FovY     float32 `yaml:"fov_y"`

	// Smoothing enables the spring that eases the camera toward drag targets.
	Smoothing bool `yaml:"smoothing"`
}

type SceneConfig struct {
	BorderThickness float32 `yaml:"border_thickness"`
	FaceColor       *Vec3   `yaml:"face_color"`
	BorderColor     *Vec3   `yaml:"border_color"`
	// Shader is "flat_bordered" or "smooth".
	Shader string `yaml:"shader"`
	// Workers is the triangulation worker count; below 2 triangulates on the calling goroutine.
	Workers int `yaml:"workers"`
}

type RendererConfig struct {
	// FailurePolicy is "skip-draw" or "abort-frame".
	FailurePolicy string `yaml:"failure_policy"`
	// MSAA is the sample count, 1 or 4.
	MSAA int `yaml:"msaa"`
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `yaml:"present_mode"`
	// SoftwareRenderer forces a fallback adapter.
	SoftwareRenderer bool `yaml:"software_renderer"`
}

type EngineConfig struct {
	TickRate   float64 `yaml:"tick_rate"`
	FrameLimit float64 `yaml:"frame_limit"`
	Profile    bool    `yaml:"profile"`
}

// Default returns the configuration used when no file is given: the bordered cube seen from
// (0, 0, 18), looking at (0, 4, 0).
func Default() Config {
	return Config{
		Window: WindowConfig{Title: "oxy-scene", Width: 800, Height: 600},
		Camera: CameraConfig{
			LookAt:   &Vec3{0, 4, 0},
			Position: &Vec3{0, 0, 18},
			Up:       &Vec3{0, 1, 0},
			FovY:     53.13 / 2,
		},
		Scene: SceneConfig{
			BorderThickness: 0.1,
			FaceColor:       &Vec3{0.8, 0.8, 0.8},
			BorderColor:     &Vec3{0, 0, 0},
			Shader:          "flat_bordered",
			Workers:         1,
		},
		Renderer: RendererConfig{
			FailurePolicy: "skip-draw",
			MSAA:          4,
			PresentMode:   "vsync",
		},
		Engine: EngineConfig{TickRate: 60},
	}
}

// Load reads the YAML file at path and fills omitted fields from Default.
// An empty path returns Default.
//
// Parameters:
//   - path: the file to read, or ""
//
// Returns:
//   - Config: the merged configuration
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML and fills omitted fields from Default.
func Parse(data []byte) (Config, error) {
	var raw Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg := merge(raw, Default())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func merge(c, d Config) Config {
	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, d.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, d.Window.Height)

	c.Camera.LookAt = common.Coalesce(c.Camera.LookAt, d.Camera.LookAt)
	c.Camera.Position = common.Coalesce(c.Camera.Position, d.Camera.Position)
	c.Camera.Up = common.Coalesce(c.Camera.Up, d.Camera.Up)
	c.Camera.FovY = common.Coalesce(c.Camera.FovY, d.Camera.FovY)

	c.Scene.BorderThickness = common.Coalesce(c.Scene.BorderThickness, d.Scene.BorderThickness)
	c.Scene.FaceColor = common.Coalesce(c.Scene.FaceColor, d.Scene.FaceColor)
	c.Scene.BorderColor = common.Coalesce(c.Scene.BorderColor, d.Scene.BorderColor)
	c.Scene.Shader = common.Coalesce(c.Scene.Shader, d.Scene.Shader)
	c.Scene.Workers = common.Coalesce(c.Scene.Workers, d.Scene.Workers)

	c.Renderer.FailurePolicy = common.Coalesce(c.Renderer.FailurePolicy, d.Renderer.FailurePolicy)
	c.Renderer.MSAA = common.Coalesce(c.Renderer.MSAA, d.Renderer.MSAA)
	c.Renderer.PresentMode = common.Coalesce(c.Renderer.PresentMode, d.Renderer.PresentMode)

	c.Engine.TickRate = common.Coalesce(c.Engine.TickRate, d.Engine.TickRate)
	return c
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Camera.FovY > 0 && c.Camera.FovY < 180, "camera fov_y %g outside (0, 180)", c.Camera.FovY)
	if c.Camera.LookAt == nil || c.Camera.Position == nil || c.Camera.Up == nil || c.Scene.FaceColor == nil || c.Scene.BorderColor == nil {
		check(false, "missing vector field")
	} else {
		check(*c.Camera.LookAt != *c.Camera.Position, "camera position equals look_at")
		check(*c.Camera.Up != Vec3{}, "camera up is zero")
	}
	check(c.Scene.BorderThickness > 0 && c.Scene.BorderThickness < 1, "border_thickness %g outside (0, 1)", c.Scene.BorderThickness)
	check(c.Scene.Shader == "flat_bordered" || c.Scene.Shader == "smooth", "shader %q", c.Scene.Shader)
	check(c.Scene.Workers >= 0, "workers %d", c.Scene.Workers)
	check(c.Renderer.FailurePolicy == "skip-draw" || c.Renderer.FailurePolicy == "abort-frame", "failure_policy %q", c.Renderer.FailurePolicy)
	check(c.Renderer.MSAA == 1 || c.Renderer.MSAA == 4, "msaa %d, want 1 or 4", c.Renderer.MSAA)
	check(c.Renderer.PresentMode == "vsync" || c.Renderer.PresentMode == "uncapped", "present_mode %q", c.Renderer.PresentMode)
	check(c.Engine.TickRate > 0, "tick_rate %g", c.Engine.TickRate)
	check(c.Engine.FrameLimit >= 0, "frame_limit %g", c.Engine.FrameLimit)

	return errors.Join(errs...)
}
