package main

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/demo"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopBackend struct{ renderer.Backend }

func (nopBackend) Release() {}

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(&cfg, false, 0)
	assert.Equal(t, config.Default().Engine, cfg.Engine)

	applyFlags(&cfg, true, 30)
	assert.True(t, cfg.Engine.Profile)
	assert.Equal(t, 30.0, cfg.Engine.TickRate)
}

func TestShaderSpec(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, rendering.FlatBordered{BorderThickness: 0.1}, shaderSpec(cfg))
	cfg.Scene.Shader = "smooth"
	assert.Equal(t, rendering.Smooth{}, shaderSpec(cfg))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(`
scene:
  face_color: [1, 0, 0]
renderer:
  failure_policy: abort-frame
camera:
  smoothing: true
`))
	require.NoError(t, err)

	d, err := demo.NewDemo(common.Size{Width: 100, Height: 100}, demoOptions(cfg)...)
	require.NoError(t, err)

	var face common.Vector3
	d.Rendering().Read(func(s rendering.Snapshot) {
		for _, c := range s.Commands() {
			if b, ok := c.(rendering.Binding); ok && b.Variable == rendering.FaceColor {
				face = b.Value.Vector
			}
		}
	})
	assert.Equal(t, common.Vec3(1, 0, 0), face)

	r := renderer.NewRenderer(nopBackend{}, rendererOptions(cfg, d)...)
	defer r.Release()
	assert.Equal(t, renderer.FailurePolicyAbortFrame, r.FailurePolicy())
	assert.Equal(t, d.Rendering(), r.Rendering())

	assert.Len(t, backendOptions(cfg), 3)
}
