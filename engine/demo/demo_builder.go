package demo

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
)

// DemoBuilderOption is a functional option applied to a demo during construction via NewDemo.
type DemoBuilderOption func(*demo)

// WithRendering populates an existing descriptor instead of a new one.
func WithRendering(desc rendering.Rendering) DemoBuilderOption {
	return func(d *demo) {
		d.desc = desc
	}
}

// WithMesh displays m instead of the default cube. m needs a "positions" layer.
func WithMesh(m mesh.Mesh) DemoBuilderOption {
	return func(d *demo) {
		d.mesh = m
	}
}

// WithCamera sets the initial camera, which ResetCamera also returns to.
//
// Parameters:
//   - p: look-at point, position, up vector and vertical field of view
//
// Returns:
//   - DemoBuilderOption: a function that sets the initial camera
func WithCamera(p camera.Params) DemoBuilderOption {
	return func(d *demo) {
		d.initial = p
	}
}

// WithBorderThickness sets the border width of the bordered flat shader as a fraction of
// the distance from a triangle edge to the opposite corner. The default is 0.1.
func WithBorderThickness(thickness float32) DemoBuilderOption {
	return func(d *demo) {
		d.borderThickness = thickness
	}
}

// WithShader starts with spec instead of the bordered flat shader.
func WithShader(spec rendering.ShaderSpec) DemoBuilderOption {
	return func(d *demo) {
		d.shader = spec
	}
}

// WithFaceColor sets the color bound to faceColor.
func WithFaceColor(c common.Color) DemoBuilderOption {
	return func(d *demo) {
		d.faceColor = c
	}
}

// WithBorderColor sets the color bound to borderColor.
func WithBorderColor(c common.Color) DemoBuilderOption {
	return func(d *demo) {
		d.borderColor = c
	}
}

// WithWorkers sets the number of goroutines used to triangulate the mesh.
func WithWorkers(n int) DemoBuilderOption {
	return func(d *demo) {
		d.workers = n
	}
}

// WithSmoothing eases the camera toward drag targets on Tick instead of moving it on every drag.
//
// Parameters:
//   - fps: the rate Tick is called at
//   - angularFrequency: spring stiffness
//   - damping: damping ratio, 1 is critically damped
//
// Returns:
//   - DemoBuilderOption: a function that enables smoothing
func WithSmoothing(fps int, angularFrequency, damping float64) DemoBuilderOption {
	return func(d *demo) {
		d.smoothing = fps > 0
		d.spring = [3]float64{float64(fps), angularFrequency, damping}
	}
}
