package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestParseFillsOmittedFields(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  width: 1024
camera:
  position: [0, 0, 30]
scene:
  border_color: [0, 0, 0]
  face_color: [1, 0, 0]
  shader: smooth
renderer:
  failure_policy: abort-frame
`))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, def.Window.Height, cfg.Window.Height)
	assert.Equal(t, def.Window.Title, cfg.Window.Title)
	assert.Equal(t, Vec3{0, 0, 30}, *cfg.Camera.Position)
	assert.Equal(t, *def.Camera.LookAt, *cfg.Camera.LookAt)
	assert.Equal(t, Vec3{1, 0, 0}, *cfg.Scene.FaceColor)
	// an explicit zero vector is kept
	assert.Equal(t, Vec3{}, *cfg.Scene.BorderColor)
	assert.Equal(t, "smooth", cfg.Scene.Shader)
	assert.Equal(t, "abort-frame", cfg.Renderer.FailurePolicy)
	assert.Equal(t, 4, cfg.Renderer.MSAA)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte(`
scene:
  border_thickness: 2
renderer:
  msaa: 8
  present_mode: sometimes
`))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "border_thickness")
	assert.Contains(t, err.Error(), "msaa 8")
	assert.Contains(t, err.Error(), "present_mode")
}

func TestParseRejectsDegenerateCamera(t *testing.T) {
	_, err := Parse([]byte(`
camera:
  look_at: [1, 2, 3]
  position: [1, 2, 3]
`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("window: [1, 2"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  tick_rate: 30\n  profile: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Engine.TickRate)
	assert.True(t, cfg.Engine.Profile)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
