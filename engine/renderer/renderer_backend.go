package renderer

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// Handle is an opaque native resource returned by a Backend. The renderer never inspects it,
// it only hands it back to the backend that created it.
type Handle any

// Backend is the graphics API contract the renderer drives. All methods are called from the
// render goroutine only, never while the descriptor lock is held.
type Backend interface {
	// BeginFrame starts a frame targeting a width x height surface.
	BeginFrame(width, height int) error

	// EndFrame finishes and presents the frame started by BeginFrame.
	EndFrame() error

	// CreateBuffer allocates a vertex buffer holding data.
	CreateBuffer(data []byte) (Handle, error)

	// WriteBuffer overwrites data at a byte offset of an existing buffer.
	WriteBuffer(h Handle, offset int, data []byte) error

	// DestroyBuffer releases a buffer.
	DestroyBuffer(h Handle)

	// CreateTexture allocates a texture from tightly packed 8-bit RGBA texels.
	CreateTexture(width, height int, rgba []byte) (Handle, error)

	// WriteTexture overwrites every texel of an existing texture of the same size.
	WriteTexture(h Handle, width, height int, rgba []byte) error

	// DestroyTexture releases a texture.
	DestroyTexture(h Handle)

	// CreateProgram builds the program implementing a shader spec.
	CreateProgram(spec rendering.ShaderSpec) (Handle, error)

	// DestroyProgram releases a program.
	DestroyProgram(h Handle)

	// Draw binds the resolved values of a draw call and draws its vertices.
	Draw(call DrawCall) error

	// Release frees the backend itself.
	Release()
}

// ResolvedValue is one binding in effect at an Execute. Handle is set for vertex buffer and
// sampler values and nil for matrices and vectors.
type ResolvedValue struct {
	Variable rendering.Variable
	Value    rendering.Value
	Handle   Handle
}

// DrawCall is one resolved Execute command.
type DrawCall struct {
	Program Handle
	Shader  rendering.ShaderSpec
	// Values holds the bindings in effect, sorted by variable name.
	Values      []ResolvedValue
	VertexCount int
}

func (d DrawCall) lookup(name string, kind rendering.ValueKind) (ResolvedValue, bool) {
	for _, v := range d.Values {
		if v.Variable.Name == name && v.Value.Kind == kind {
			return v, true
		}
	}
	return ResolvedValue{}, false
}

// Matrix returns the matrix bound to the named variable.
func (d DrawCall) Matrix(name string) (common.Matrix4, bool) {
	v, ok := d.lookup(name, rendering.ValueMatrix4)
	return v.Value.Matrix, ok
}

// Vector returns the vector bound to the named variable.
func (d DrawCall) Vector(name string) (common.Vector3, bool) {
	v, ok := d.lookup(name, rendering.ValueVector3)
	return v.Value.Vector, ok
}

// Buffer returns the native vertex buffer bound to the named variable.
func (d DrawCall) Buffer(name string) (Handle, bool) {
	v, ok := d.lookup(name, rendering.ValueVertexBuffer)
	return v.Handle, ok
}

// Sampler returns the native texture bound to the named variable.
func (d DrawCall) Sampler(name string) (Handle, bool) {
	v, ok := d.lookup(name, rendering.ValueSampler)
	return v.Handle, ok
}

// FrameStats counts what one call to Render did.
type FrameStats struct {
	Draws        int
	SkippedDraws int
	Creates      int
	Updates      int
	Destroys     int
	Errors       int
}
