package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/chewxy/math32"
)

// Params are the free parameters of a camera. Everything else is derived from them and the
// viewport size.
type Params struct {
	LookAt   common.Vector3
	Position common.Vector3
	Up       common.Vector3
	// FovY is the vertical field of view in degrees.
	FovY float32
}

// view is a camera frame derived from Params and a viewport size.
type view struct {
	Params
	size common.Size

	// camX, camY, camZ are the camera axes in world space; the target lies along -camZ
	camX, camY, camZ common.Vector3

	distance float32

	// fHeight and fWidth are the half extents of the visible rectangle at unit distance
	fHeight, fWidth float32
}

func newView(p Params, size common.Size) view {
	v := view{Params: p, size: size}
	toTarget := p.LookAt.Sub(p.Position)
	v.distance = toTarget.Length()
	if v.distance == 0 {
		v.distance = 1
		toTarget = common.Vec3(0, 0, -1)
	}
	v.camZ = toTarget.Scale(-1 / v.distance)
	v.camX = p.Up.Cross(v.camZ).Normalized()
	v.camY = v.camZ.Cross(v.camX).Normalized()

	v.fHeight = math32.Tan(common.Radians(p.FovY) * 0.5)
	v.fWidth = size.Aspect() * v.fHeight
	return v
}

// modelToView maps world space to a camera space where the camera sits at the origin and the
// target at (0, 0, -1).
func (v view) modelToView() common.Matrix4 {
	s := 1 / v.distance
	scale := common.Identity4()
	scale[0], scale[5], scale[10] = s, s, s
	return scale.Mul(common.LookAt(v.Position, v.LookAt, v.Up))
}

func (v view) viewToClip(near, far float32) common.Matrix4 {
	return common.Perspective(common.Radians(v.FovY), v.size.Aspect(), near, far)
}

// cameraSpacePoint maps a window pixel to the plane z = -1 of camera space.
func (v view) cameraSpacePoint(p common.Position) common.Vector3 {
	halfW := float32(v.size.Width / 2)
	halfH := float32(v.size.Height / 2)
	if halfW == 0 || halfH == 0 {
		return common.Vec3(0, 0, -1)
	}
	x := v.fWidth * (float32(p.X) - halfW) / halfW
	y := v.fHeight * (halfH - float32(p.Y)) / halfH
	return common.Vec3(x, y, -1)
}

type cameraImpl struct {
	mu *sync.Mutex

	view view
	near float32
	far  float32
}

// Camera projects world space onto a viewport. It produces the modelToView and viewToClip
// matrices bound by the scene's command list. Camera space is scaled so the look-at point is
// at unit distance, which keeps the near and far planes independent of the scene scale.
type Camera interface {
	// Params returns the free camera parameters.
	//
	// Returns:
	//   - Params: look-at point, position, up vector and vertical field of view
	Params() Params

	// SetParams replaces the camera parameters.
	//
	// Parameters:
	//   - p: the new parameters
	SetParams(p Params)

	// Size returns the viewport size in pixels.
	Size() common.Size

	// SetSize sets the viewport size, changing the aspect ratio.
	SetSize(size common.Size)

	// Axes returns the camera's right, up and backward axes in world space.
	//
	// Returns:
	//   - x, y, z: orthonormal camera axes
	Axes() (x, y, z common.Vector3)

	// Distance returns the distance from the position to the look-at point.
	Distance() float32

	// ModelToView returns the world to camera space matrix.
	//
	// Returns:
	//   - common.Matrix4: the view matrix (column-major)
	ModelToView() common.Matrix4

	// ViewToClip returns the camera to clip space projection with depth mapped to [0, 1].
	//
	// Returns:
	//   - common.Matrix4: the projection matrix (column-major)
	ViewToClip() common.Matrix4
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with the given options. Defaults look at the origin from
// (0, 0, 10) with +Y up and a 45 degree vertical field of view on a 1x1 viewport.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:   &sync.Mutex{},
		near: 0.1,
		far:  10.0,
		view: view{
			Params: Params{
				Position: common.Vec3(0, 0, 10),
				Up:       common.Vec3(0, 1, 0),
				FovY:     45,
			},
			size: common.Size{Width: 1, Height: 1},
		},
	}
	for _, option := range options {
		option(c)
	}
	c.view = newView(c.view.Params, c.view.size)
	return c
}

func (c *cameraImpl) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Params
}

func (c *cameraImpl) SetParams(p Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = newView(p, c.view.size)
}

func (c *cameraImpl) Size() common.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.size
}

func (c *cameraImpl) SetSize(size common.Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = newView(c.view.Params, size)
}

func (c *cameraImpl) Axes() (x, y, z common.Vector3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.camX, c.view.camY, c.view.camZ
}

func (c *cameraImpl) Distance() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.distance
}

func (c *cameraImpl) ModelToView() common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.modelToView()
}

func (c *cameraImpl) ViewToClip() common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.viewToClip(c.near, c.far)
}

// snapshot returns the current derived frame.
func (c *cameraImpl) snapshot() view {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}
