package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/charmbracelet/harmonica"
	"github.com/chewxy/math32"
)

// springEpsilon is the distance and speed below which a smoothed parameter snaps to its target.
const springEpsilon = 1e-4

// cameraControllerImpl is the implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	camera *cameraImpl

	// target is where drags want the camera to be; Step moves the camera toward it
	target Params
	dirty  bool

	state GrabState
	// grab is the camera frame when the current drag began
	grab       view
	grabPoint  common.Vector3
	grabPoint2 common.Vector3
	roll       bool
	grabAngle  float32
	lastAngle  float32
	tScale     float32

	zoomBase    float32
	rotateScale float32

	smoothing bool
	spring    harmonica.Spring
	velocity  [paramComponents]float64
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller for a camera made by NewCamera.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(cam Camera, options ...CameraControllerOption) CameraController {
	impl, ok := cam.(*cameraImpl)
	if !ok {
		panic("camera: controller requires a camera created by NewCamera")
	}
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		camera:      impl,
		target:      impl.Params(),
		zoomBase:    3.0,
		rotateScale: math32.Pi / 1.5,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) GrabState() GrabState {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.state
}

func (cc *cameraControllerImpl) IsGrabbed() bool {
	return cc.GrabState() != Ungrabbed
}

// beginGrab records the frame drags are measured against. The target, not the possibly
// still moving camera, is the reference so a new grab continues where the last one ended.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) beginGrab(state GrabState) {
	cc.grab = newView(cc.target, cc.camera.Size())
	cc.state = state
}

func (cc *cameraControllerImpl) Grab(p common.Position, state GrabState) {
	if state == Ungrabbed || state == Pinch {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.beginGrab(state)
	g := &cc.grab
	cc.grabPoint = g.cameraSpacePoint(p)

	// grabs outside the central ellipse roll instead of orbiting
	cc.roll = cc.grabPoint.X*cc.grabPoint.X+cc.grabPoint.Y*cc.grabPoint.Y > g.fHeight*g.fWidth
	cc.grabAngle = math32.Atan2(cc.grabPoint.Y, cc.grabPoint.X)
	cc.lastAngle = cc.grabAngle
	if cc.grabPoint.Y < 0 {
		cc.tScale = g.fHeight - cc.grabPoint.Y
	} else {
		cc.tScale = g.fHeight + cc.grabPoint.Y
	}
}

func (cc *cameraControllerImpl) GrabPinch(p1, p2 common.Position) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.beginGrab(Pinch)
	cc.grabPoint = cc.grab.cameraSpacePoint(p1)
	cc.grabPoint2 = cc.grab.cameraSpacePoint(p2)
	cc.grabAngle = math32.Atan2(cc.grabPoint2.Y-cc.grabPoint.Y, cc.grabPoint2.X-cc.grabPoint.X)
	cc.lastAngle = cc.grabAngle
}

func (cc *cameraControllerImpl) MoveTo(p common.Position) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.state == Ungrabbed || cc.state == Pinch {
		return
	}
	g := cc.grab
	point := g.cameraSpacePoint(p)
	delta := point.Sub(cc.grabPoint)

	next := Params{
		LookAt:   g.LookAt,
		Position: g.Position,
		Up:       g.camY,
		FovY:     g.FovY,
	}

	switch cc.state {
	case Rotate:
		if delta.X == 0 && delta.Y == 0 {
			break
		}
		if cc.roll {
			angle := cc.unwrap(math32.Atan2(point.Y, point.X))
			next.Up = g.camY.Rotated(g.camZ, -(angle - cc.grabAngle))
			break
		}
		axis := common.Vec3(-delta.Y, delta.X, 0).Normalized()
		angle := -(common.Vec3(delta.X, delta.Y, 0).Length() / g.fHeight) * cc.rotateScale
		rotationAxis := g.camX.Scale(axis.X).Add(g.camY.Scale(axis.Y)).Normalized()
		next.Position = g.LookAt.Add(g.Position.Sub(g.LookAt).Rotated(rotationAxis, angle))
		next.Up = g.camY.Rotated(rotationAxis, angle)

	case Pan:
		translation := g.camX.Scale(-delta.X).Add(g.camY.Scale(-delta.Y)).Scale(g.distance)
		next.LookAt = g.LookAt.Add(translation)
		next.Position = next.LookAt.Add(g.Position.Sub(g.LookAt))

	case Zoom, FOV:
		multiplier := math32.Pow(cc.zoomBase, delta.Y/cc.tScale)
		if cc.state == Zoom {
			next.Position = g.LookAt.Add(g.Position.Sub(g.LookAt).Scale(multiplier))
		} else {
			next.FovY = 2 * math32.Atan(g.fHeight*multiplier) * 180 / math32.Pi
		}
	}
	cc.setTarget(next)
}

func (cc *cameraControllerImpl) MovePinch(p1, p2 common.Position) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.state != Pinch {
		return
	}
	g := cc.grab
	point := g.cameraSpacePoint(p1)
	point2 := g.cameraSpacePoint(p2)

	midpoint := point.Add(point2).Scale(0.5)
	grabMidpoint := cc.grabPoint.Add(cc.grabPoint2).Scale(0.5)
	translation := midpoint.Sub(grabMidpoint)

	// fingers moving apart bring the camera closer
	multiplier := float32(1)
	if d2 := point2.Sub(point).Length(); d2 > 0 {
		multiplier = cc.grabPoint2.Sub(cc.grabPoint).Length() / d2
	}

	lookAtTranslation := g.camX.Scale(-translation.X).Add(g.camY.Scale(-translation.Y)).Scale(g.distance)
	lookAt := g.LookAt.Add(lookAtTranslation)

	angle := cc.unwrap(math32.Atan2(point2.Y-point.Y, point2.X-point.X))
	cc.setTarget(Params{
		LookAt:   lookAt,
		Position: lookAt.Add(g.Position.Sub(g.LookAt).Scale(multiplier)),
		Up:       g.camY.Rotated(g.camZ, -(angle - cc.grabAngle)),
		FovY:     g.FovY,
	})
}

// unwrap shifts angle by whole turns to the value closest to the previous pointer angle so
// rolls continue smoothly past +-pi. Caller must hold the mutex.
func (cc *cameraControllerImpl) unwrap(angle float32) float32 {
	const twoPi = 2 * math32.Pi
	for math32.Abs(angle-cc.lastAngle+twoPi) < math32.Abs(angle-cc.lastAngle) {
		angle += twoPi
	}
	for math32.Abs(angle-cc.lastAngle-twoPi) < math32.Abs(angle-cc.lastAngle) {
		angle -= twoPi
	}
	cc.lastAngle = angle
	return angle
}

func (cc *cameraControllerImpl) setTarget(p Params) {
	cc.target = p
	cc.dirty = true
}

func (cc *cameraControllerImpl) Release() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.state = Ungrabbed
}

func (cc *cameraControllerImpl) Reset(p Params) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.state = Ungrabbed
	cc.target = p
	cc.velocity = [paramComponents]float64{}
	cc.camera.SetParams(p)
	cc.dirty = false
}

func (cc *cameraControllerImpl) Step() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if !cc.dirty {
		return false
	}
	if !cc.smoothing {
		cc.camera.SetParams(cc.target)
		cc.dirty = false
		return true
	}

	pos := flattenParams(cc.camera.Params())
	goal := flattenParams(cc.target)
	settled := true
	for i := range pos {
		p, v := cc.spring.Update(pos[i], cc.velocity[i], goal[i])
		if math.Abs(p-goal[i]) < springEpsilon && math.Abs(v) < springEpsilon {
			p, v = goal[i], 0
		} else {
			settled = false
		}
		pos[i], cc.velocity[i] = p, v
	}

	if settled {
		cc.camera.SetParams(cc.target)
		cc.dirty = false
		return true
	}
	cc.camera.SetParams(unflattenParams(pos))
	return true
}

const paramComponents = 10

func flattenParams(p Params) [paramComponents]float64 {
	return [paramComponents]float64{
		float64(p.LookAt.X), float64(p.LookAt.Y), float64(p.LookAt.Z),
		float64(p.Position.X), float64(p.Position.Y), float64(p.Position.Z),
		float64(p.Up.X), float64(p.Up.Y), float64(p.Up.Z),
		float64(p.FovY),
	}
}

func unflattenParams(v [paramComponents]float64) Params {
	f := func(i int) float32 { return float32(v[i]) }
	return Params{
		LookAt:   common.Vec3(f(0), f(1), f(2)),
		Position: common.Vec3(f(3), f(4), f(5)),
		Up:       common.Vec3(f(6), f(7), f(8)),
		FovY:     f(9),
	}
}
