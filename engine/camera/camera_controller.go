package camera

import "github.com/Carmen-Shannon/oxy-scene/common"

// GrabState is the kind of click-and-drag interaction a controller is performing.
type GrabState int

const (
	// Ungrabbed means no drag is in progress.
	Ungrabbed GrabState = iota

	// Rotate moves the camera around the fixed look-at point. A grab far from the viewport
	// center rolls the camera around its view axis instead.
	Rotate

	// Pan moves both the camera and the look-at point by the same amount.
	Pan

	// Zoom moves the camera closer to or further from the fixed look-at point.
	Zoom

	// FOV narrows or widens the field of view.
	FOV

	// Pinch is a two-point grab combining pan, zoom and roll.
	Pinch
)

func (s GrabState) String() string {
	switch s {
	case Rotate:
		return "rotate"
	case Pan:
		return "pan"
	case Zoom:
		return "zoom"
	case FOV:
		return "fov"
	case Pinch:
		return "pinch"
	default:
		return "ungrabbed"
	}
}

// GrabStateFor maps mouse modifiers to a grab: shift selects zoom (with ctrl: field of
// view), ctrl alone selects pan, no modifier rotates.
func GrabStateFor(ctrl, shift bool) GrabState {
	switch {
	case shift && ctrl:
		return FOV
	case shift:
		return Zoom
	case ctrl:
		return Pan
	default:
		return Rotate
	}
}

// CameraController drives a Camera from click-and-drag input. Every drag is computed
// relative to the camera as it was when the grab began, so the result depends only on the
// grab point and the current pointer position.
//
// Drags set a target camera; Step moves the controlled camera toward it, either at once or
// through a critically damped spring when smoothing is enabled.
type CameraController interface {
	// Camera returns the controlled camera.
	Camera() Camera

	// Grab begins a drag at a window position.
	//
	// Parameters:
	//   - p: pointer position in pixels
	//   - state: the kind of drag, Ungrabbed is ignored
	Grab(p common.Position, state GrabState)

	// GrabPinch begins a two-point drag.
	GrabPinch(p1, p2 common.Position)

	// MoveTo updates the target camera for the pointer position of the current drag.
	// It does nothing when ungrabbed or pinching.
	//
	// Parameters:
	//   - p: pointer position in pixels
	MoveTo(p common.Position)

	// MovePinch updates the target camera for the two pointer positions of a pinch.
	MovePinch(p1, p2 common.Position)

	// Release ends the current drag.
	Release()

	// GrabState returns the current drag kind.
	GrabState() GrabState

	// IsGrabbed reports whether a drag is in progress.
	IsGrabbed() bool

	// Reset replaces both the target and the controlled camera parameters and ends any drag.
	Reset(p Params)

	// Step advances the controlled camera one tick toward the target.
	//
	// Returns:
	//   - bool: true if the controlled camera changed
	Step() bool
}
