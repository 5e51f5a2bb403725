package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-3

func demoCamera() Camera {
	return NewCamera(
		WithLookAt(common.Vec3(0, 4, 0)),
		WithPosition(common.Vec3(0, 0, 18)),
		WithUp(common.Vec3(0, 1, 0)),
		WithFov(53.13/2),
		WithSize(common.Size{Width: 800, Height: 600}),
	)
}

func assertVecInDelta(t *testing.T, want, got common.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x")
	assert.InDelta(t, want.Y, got.Y, delta, "y")
	assert.InDelta(t, want.Z, got.Z, delta, "z")
}

func TestModelToViewPutsTargetAtUnitDistance(t *testing.T) {
	cam := demoCamera()
	m := cam.ModelToView()

	p, w := m.Transform(common.Vec3(0, 4, 0))
	assert.InDelta(t, 1, w, delta)
	assertVecInDelta(t, common.Vec3(0, 0, -1), p)

	p, _ = m.Transform(common.Vec3(0, 0, 18))
	assertVecInDelta(t, common.Vector3{}, p)

	assert.InDelta(t, math32.Sqrt(340), cam.Distance(), delta)
}

func TestViewToClipMapsFrustum(t *testing.T) {
	cam := demoCamera()
	proj := cam.ViewToClip()

	fHeight := math32.Tan(common.Radians(53.13/2) / 2)
	p, w := proj.Transform(common.Vec3(0, fHeight, -1))
	assert.InDelta(t, 1, p.Y/w, delta)
	assert.Greater(t, p.Z/w, float32(0))
	assert.Less(t, p.Z/w, float32(1))

	fWidth := fHeight * 800 / 600
	p, w = proj.Transform(common.Vec3(fWidth, 0, -1))
	assert.InDelta(t, 1, p.X/w, delta)
}

func TestAxesAreOrthonormal(t *testing.T) {
	x, y, z := demoCamera().Axes()
	assert.InDelta(t, 1, x.Length(), delta)
	assert.InDelta(t, 1, y.Length(), delta)
	assert.InDelta(t, 0, x.Dot(y), delta)
	assert.InDelta(t, 0, y.Dot(z), delta)
	// the target lies along -z
	assert.Less(t, z.Dot(common.Vec3(0, 4, -18)), float32(0))
}

func TestSetSizeChangesAspectOnly(t *testing.T) {
	cam := demoCamera()
	before := cam.ModelToView()
	cam.SetSize(common.Size{Width: 600, Height: 600})
	assert.Equal(t, before, cam.ModelToView())
	assert.Equal(t, common.Size{Width: 600, Height: 600}, cam.Size())

	proj := cam.ViewToClip()
	assert.InDelta(t, proj[5], proj[0], delta)
}

func TestGrabStateFor(t *testing.T) {
	assert.Equal(t, Rotate, GrabStateFor(false, false))
	assert.Equal(t, Pan, GrabStateFor(true, false))
	assert.Equal(t, Zoom, GrabStateFor(false, true))
	assert.Equal(t, FOV, GrabStateFor(true, true))
	assert.Equal(t, "fov", FOV.String())
}

func TestMoveWithoutGrabDoesNothing(t *testing.T) {
	ctrl := NewCameraController(demoCamera())
	ctrl.MoveTo(common.Position{X: 10, Y: 10})
	assert.False(t, ctrl.Step())
	assert.False(t, ctrl.IsGrabbed())
}

func TestPanKeepsOffset(t *testing.T) {
	cam := demoCamera()
	ctrl := NewCameraController(cam)
	before := cam.Params()
	right, _, _ := cam.Axes()

	ctrl.Grab(common.Position{X: 400, Y: 300}, Pan)
	assert.Equal(t, Pan, ctrl.GrabState())
	ctrl.MoveTo(common.Position{X: 600, Y: 300})
	require.True(t, ctrl.Step())

	after := cam.Params()
	assertVecInDelta(t, before.Position.Sub(before.LookAt), after.Position.Sub(after.LookAt))
	// dragging right moves the scene right, so the target moves left
	assert.Less(t, after.LookAt.Sub(before.LookAt).Dot(right), float32(0))
	assert.False(t, ctrl.Step())
}

func TestZoomTriplesDistanceOverFullReach(t *testing.T) {
	cam := demoCamera()
	ctrl := NewCameraController(cam)
	d := cam.Distance()

	ctrl.Grab(common.Position{X: 400, Y: 300}, Zoom)
	ctrl.MoveTo(common.Position{X: 400, Y: 0})
	ctrl.Step()

	assert.InDelta(t, 3*d, cam.Distance(), 1e-2)
	assertVecInDelta(t, common.Vec3(0, 4, 0), cam.Params().LookAt)
}

func TestFOVDrag(t *testing.T) {
	cam := demoCamera()
	ctrl := NewCameraController(cam)
	fHeight := math32.Tan(common.Radians(53.13/2) / 2)

	ctrl.Grab(common.Position{X: 400, Y: 300}, FOV)
	ctrl.MoveTo(common.Position{X: 400, Y: 0})
	ctrl.Step()

	want := 2 * math32.Atan(3*fHeight) * 180 / math32.Pi
	assert.InDelta(t, want, cam.Params().FovY, 1e-2)
	assert.InDelta(t, math32.Sqrt(340), cam.Distance(), delta)
}

func TestRotateOrbitsTarget(t *testing.T) {
	cam := demoCamera()
	ctrl := NewCameraController(cam)
	before := cam.Params()

	ctrl.Grab(common.Position{X: 400, Y: 300}, Rotate)
	ctrl.MoveTo(common.Position{X: 400, Y: 300})
	ctrl.Step()
	assertVecInDelta(t, before.Position, cam.Params().Position)

	ctrl.MoveTo(common.Position{X: 500, Y: 300})
	ctrl.Step()
	after := cam.Params()
	assert.InDelta(t, math32.Sqrt(340), cam.Distance(), delta)
	assertVecInDelta(t, before.LookAt, after.LookAt)
	assert.Greater(t, after.Position.Sub(before.Position).Length(), float32(0.1))
}

func TestRotateFromCornerRolls(t *testing.T) {
	cam := demoCamera()
	ctrl := NewCameraController(cam)
	before := cam.Params()

	ctrl.Grab(common.Position{X: 0, Y: 0}, Rotate)
	ctrl.MoveTo(common.Position{X: 800, Y: 0})
	ctrl.Step()

	after := cam.Params()
	assertVecInDelta(t, before.Position, after.Position)
	_, y, z := cam.Axes()
	assert.InDelta(t, 0, y.Dot(z), delta)
	assert.Greater(t, math32.Abs(y.X), float32(0.1))
}

func TestPinchZoomsAroundMidpoint(t *testing.T) {
	cam := demoCamera()
	ctrl := NewCameraController(cam)
	d := cam.Distance()

	ctrl.GrabPinch(common.Position{X: 300, Y: 300}, common.Position{X: 500, Y: 300})
	assert.Equal(t, Pinch, ctrl.GrabState())
	ctrl.MoveTo(common.Position{X: 0, Y: 0})
	assert.False(t, ctrl.Step())

	ctrl.MovePinch(common.Position{X: 200, Y: 300}, common.Position{X: 600, Y: 300})
	ctrl.Step()
	assert.InDelta(t, d/2, cam.Distance(), 1e-2)
	assertVecInDelta(t, common.Vec3(0, 4, 0), cam.Params().LookAt)

	ctrl.Release()
	assert.False(t, ctrl.IsGrabbed())
}

func TestSmoothingSettlesOnTarget(t *testing.T) {
	cam := demoCamera()
	ctrl := NewCameraController(cam, WithSmoothing(60, 6, 1))
	d := cam.Distance()

	ctrl.Grab(common.Position{X: 400, Y: 300}, Zoom)
	ctrl.MoveTo(common.Position{X: 400, Y: 0})

	require.True(t, ctrl.Step())
	first := cam.Distance()
	assert.Greater(t, first, d)
	assert.Less(t, first, 3*d)

	steps := 1
	for ctrl.Step() {
		steps++
		require.Less(t, steps, 10000, "spring never settled")
	}
	assert.InDelta(t, 3*d, cam.Distance(), 1e-2)
}

func TestResetStopsDrag(t *testing.T) {
	cam := demoCamera()
	ctrl := NewCameraController(cam)
	ctrl.Grab(common.Position{X: 400, Y: 300}, Pan)
	ctrl.MoveTo(common.Position{X: 500, Y: 300})

	p := Params{LookAt: common.Vec3(1, 1, 1), Position: common.Vec3(1, 1, 5), Up: common.Vec3(0, 1, 0), FovY: 30}
	ctrl.Reset(p)
	assert.False(t, ctrl.IsGrabbed())
	assert.False(t, ctrl.Step())
	assert.Equal(t, p, cam.Params())
}

func TestControllerRejectsForeignCamera(t *testing.T) {
	assert.Panics(t, func() { NewCameraController(nil) })
}
