package renderer

import "github.com/Carmen-Shannon/oxy-scene/engine/rendering"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithFailurePolicy sets what a frame does when an Execute command fails.
// The default is FailurePolicySkipDraw.
//
// Parameters:
//   - policy: the FailurePolicy to apply
//
// Returns:
//   - RendererBuilderOption: a function that applies the failure policy to a renderer
func WithFailurePolicy(policy FailurePolicy) RendererBuilderOption {
	return func(r *renderer) {
		r.policy = policy
	}
}

// WithRendering attaches a descriptor at construction, equivalent to calling SetRendering.
//
// Parameters:
//   - desc: the descriptor to render
//
// Returns:
//   - RendererBuilderOption: a function that attaches the descriptor to a renderer
func WithRendering(desc rendering.Rendering) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingRendering = desc
	}
}
