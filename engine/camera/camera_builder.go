package camera

import "github.com/Carmen-Shannon/oxy-scene/common"

// CameraBuilderOption is a functional option applied to a camera during construction via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithLookAt sets the point the camera looks at.
//
// Parameters:
//   - p: world-space look-at point
//
// Returns:
//   - CameraBuilderOption: a function that sets the look-at point
func WithLookAt(p common.Vector3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.view.LookAt = p
	}
}

// WithPosition sets the camera position.
//
// Parameters:
//   - p: world-space camera position
//
// Returns:
//   - CameraBuilderOption: a function that sets the position
func WithPosition(p common.Vector3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.view.Position = p
	}
}

// WithUp sets the camera's up vector. It need not be perpendicular to the view direction.
//
// Parameters:
//   - up: world-space up vector
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up common.Vector3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.view.Up = up
	}
}

// WithFov sets the camera's vertical field of view in degrees.
//
// Parameters:
//   - degrees: vertical field of view
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(degrees float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.view.FovY = degrees
	}
}

// WithSize sets the viewport size.
func WithSize(size common.Size) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.view.size = size
	}
}

// WithClipPlanes sets the near and far plane distances in camera space, where the look-at
// point is at distance 1. The defaults are 0.1 and 10.
//
// Parameters:
//   - near: near plane distance, greater than 0
//   - far: far plane distance, greater than near
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}
