// package demo is the application layer: it loads a mesh, publishes it to a scene descriptor
// and keeps the command list in step with an interactively controlled camera.
package demo

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
)

// Descriptor keys used by the demo.
const (
	ShaderKey     = 0
	PositionsKey  = 1
	NormalsKey    = 2
	BaryCoordsKey = 3
)

// DefaultCamera looks down at the cube from slightly below its top.
var DefaultCamera = camera.Params{
	LookAt:   common.Vec3(0, 4, 0),
	Position: common.Vec3(0, 0, 18),
	Up:       common.Vec3(0, 1, 0),
	FovY:     53.13 / 2,
}

// Demo owns a mesh, a camera controller and the descriptor they feed.
//
// Input methods may be called from the window goroutine while Tick runs on the engine tick
// goroutine.
type Demo interface {
	// Rendering returns the descriptor the demo populates.
	Rendering() rendering.Rendering

	// Mesh returns the displayed mesh. Call Retriangulate after editing it.
	Mesh() mesh.Mesh

	// Controller returns the camera controller.
	Controller() camera.CameraController

	// MouseDown starts a camera drag. Shift zooms (with ctrl: field of view), ctrl pans,
	// no modifier rotates.
	MouseDown(p common.Position, ctrl, shift bool)

	// MouseDrag moves the current camera drag.
	//
	// Returns:
	//   - error: an error if the command list could not be replaced
	MouseDrag(p common.Position) error

	// MouseUp ends the current camera drag.
	MouseUp()

	// Resize updates the camera aspect ratio for a new viewport size and ends any drag.
	Resize(size common.Size) error

	// Tick advances the camera toward its drag target and republishes the command list if it moved.
	//
	// Returns:
	//   - bool: true if the command list was replaced
	//   - error: an error if the command list could not be replaced
	Tick() (bool, error)

	// ResetCamera returns the camera to its initial parameters.
	ResetCamera() error

	// SetShader replaces the shader used to draw the mesh.
	SetShader(spec rendering.ShaderSpec) error

	// ToggleShader switches between bordered flat shading and smooth shading.
	ToggleShader() error

	// Retriangulate rebuilds the vertex buffers from the mesh and republishes them together
	// with a command list for the new triangle count.
	Retriangulate() error
}

type demo struct {
	mu *sync.Mutex

	desc       rendering.Rendering
	mesh       mesh.Mesh
	buffers    *mesh.TriangleBuffers
	controller camera.CameraController
	initial    camera.Params

	shader          rendering.ShaderSpec
	borderThickness float32
	faceColor       common.Color
	borderColor     common.Color

	workers   int
	smoothing bool
	spring    [3]float64

	triangles int
}

var _ Demo = &demo{}

// NewDemo loads the mesh (a cube of edge 4 unless WithMesh is given), triangulates it and
// publishes shader, vertex buffers and command list to the descriptor.
//
// Parameters:
//   - size: the initial viewport size
//   - options: functional options to configure the demo
//
// Returns:
//   - Demo: the running demo
//   - error: an error if the mesh could not be built or triangulated
func NewDemo(size common.Size, options ...DemoBuilderOption) (Demo, error) {
	d := &demo{
		mu:              &sync.Mutex{},
		initial:         DefaultCamera,
		borderThickness: 0.1,
		faceColor:       common.RGB(0.8, 0.8, 0.8),
		workers:         1,
	}
	for _, option := range options {
		option(d)
	}

	if d.desc == nil {
		d.desc = rendering.NewRendering()
	}
	if d.shader == nil {
		d.shader = rendering.FlatBordered{BorderThickness: d.borderThickness}
	}
	if d.mesh == nil {
		cube, err := NewCube(2)
		if err != nil {
			return nil, fmt.Errorf("demo: %w", err)
		}
		d.mesh = cube
	}

	cam := camera.NewCamera(
		camera.WithLookAt(d.initial.LookAt),
		camera.WithPosition(d.initial.Position),
		camera.WithUp(d.initial.Up),
		camera.WithFov(d.initial.FovY),
		camera.WithSize(size),
	)
	var controllerOptions []camera.CameraControllerOption
	if d.smoothing {
		controllerOptions = append(controllerOptions, camera.WithSmoothing(int(d.spring[0]), d.spring[1], d.spring[2]))
	}
	d.controller = camera.NewCameraController(cam, controllerOptions...)

	d.buffers = mesh.NewTriangleBuffers()
	if err := d.desc.SetShader(ShaderKey, d.shader); err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}
	if err := d.Retriangulate(); err != nil {
		return nil, err
	}

	common.Logger().Info("demo: mesh loaded",
		"vertices", d.mesh.NumVertices(),
		"faces", d.mesh.NumFaces(),
		"edges", d.mesh.NumEdges(),
		"triangles", d.triangles,
		"viewport", size.String())
	return d, nil
}

func (d *demo) Rendering() rendering.Rendering {
	return d.desc
}

func (d *demo) Mesh() mesh.Mesh {
	return d.mesh
}

func (d *demo) Controller() camera.CameraController {
	return d.controller
}

func (d *demo) MouseDown(p common.Position, ctrl, shift bool) {
	d.controller.Grab(p, camera.GrabStateFor(ctrl, shift))
}

func (d *demo) MouseDrag(p common.Position) error {
	d.controller.MoveTo(p)
	if d.smoothing {
		// Tick eases toward the new target
		return nil
	}
	_, err := d.step()
	return err
}

func (d *demo) MouseUp() {
	d.controller.Release()
}

func (d *demo) Resize(size common.Size) error {
	d.controller.Release()
	d.controller.Camera().SetSize(size)
	common.Logger().Debug("demo: resized", "viewport", size.String())

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.publishCommands()
}

func (d *demo) Tick() (bool, error) {
	return d.step()
}

func (d *demo) step() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.controller.Step() {
		return false, nil
	}
	return true, d.publishCommands()
}

func (d *demo) ResetCamera() error {
	d.controller.Reset(d.initial)

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.publishCommands()
}

func (d *demo) SetShader(spec rendering.ShaderSpec) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.desc.SetShader(ShaderKey, spec); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	d.shader = spec
	return nil
}

func (d *demo) ToggleShader() error {
	d.mu.Lock()
	current := d.shader
	d.mu.Unlock()

	if _, bordered := current.(rendering.FlatBordered); bordered {
		return d.SetShader(rendering.Smooth{})
	}
	return d.SetShader(rendering.FlatBordered{BorderThickness: d.borderThickness})
}

func (d *demo) Retriangulate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// The published arrays are rewritten in place, so the rebuild runs under the descriptor
	// lock. A failed rebuild leaves them untouched and notifies nothing.
	err := d.desc.Update(func(m rendering.Mutator) error {
		if err := d.buffers.Rebuild(d.mesh, mesh.WithWorkers(d.workers)); err != nil {
			return err
		}
		d.triangles = d.buffers.NumTriangles()
		if err := d.buffers.Apply(m, PositionsKey, NormalsKey, BaryCoordsKey); err != nil {
			return err
		}
		return m.SetCommands(d.commands())
	})
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	return nil
}

// publishCommands replaces the command list. Caller must hold the mutex.
func (d *demo) publishCommands() error {
	if err := d.desc.SetCommands(d.commands()); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	return nil
}

// commands builds the command list for the current camera: one draw of every triangle.
// Caller must hold the mutex.
func (d *demo) commands() []rendering.Command {
	cam := d.controller.Camera()
	return []rendering.Command{
		rendering.BindMatrix4(rendering.ViewToClip, cam.ViewToClip()),
		rendering.BindMatrix4(rendering.ModelToView, cam.ModelToView()),
		rendering.BindVector3(rendering.FaceColor, d.faceColor.Vector3()),
		rendering.BindVector3(rendering.BorderColor, d.borderColor.Vector3()),
		rendering.BindVertexBuffer(rendering.Positions, PositionsKey),
		rendering.BindVertexBuffer(rendering.Normals, NormalsKey),
		rendering.BindVertexBuffer(rendering.BaryCoords, BaryCoordsKey),
		rendering.Execute{Shader: ShaderKey, Triangles: d.triangles},
	}
}
