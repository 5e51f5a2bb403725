package camera

import "github.com/charmbracelet/harmonica"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithSmoothing makes Step follow drags through a damped spring instead of jumping.
//
// Parameters:
//   - fps: the rate Step is called at
//   - angularFrequency: spring stiffness, higher is faster
//   - damping: damping ratio, 1 is critically damped
//
// Returns:
//   - CameraControllerOption: functional option enabling smoothing
func WithSmoothing(fps int, angularFrequency, damping float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.smoothing = fps > 0
		cc.spring = harmonica.NewSpring(harmonica.FPS(fps), angularFrequency, damping)
	}
}

// WithZoomBase sets the factor the camera distance (or field of view) changes by when
// dragging across the grab point's vertical reach. The default is 3.
func WithZoomBase(base float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomBase = base
	}
}

// WithRotateScale sets the rotation in radians for a drag of one viewport half height.
// The default is 2π/3.
func WithRotateScale(radians float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotateScale = radians
	}
}
