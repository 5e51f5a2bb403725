package rendering

import "fmt"

// ShaderInput is one variable a shader reads. Optional inputs fall back to a backend default when unbound.
type ShaderInput struct {
	Variable Variable
	Optional bool
}

// ShaderSpec describes a shader program without naming any graphics API.
// The set of implementations is closed: Smooth and FlatBordered.
type ShaderSpec interface {
	// Name returns a short identifier for the program, used for logging and pipeline lookup.
	Name() string

	// Inputs returns the variables the program reads, in a stable order.
	Inputs() []ShaderInput

	isShaderSpec()
}

// Smooth shades faces with the interpolated vertex normals and a uniform face color.
type Smooth struct{}

// FlatBordered shades faces flat and draws a border of BorderThickness along real polygon edges,
// as classified by the baryCoords vertex buffer.
type FlatBordered struct {
	BorderThickness float32
}

var (
	_ ShaderSpec = Smooth{}
	_ ShaderSpec = FlatBordered{}
)

func (Smooth) Name() string { return "smooth" }

func (Smooth) Inputs() []ShaderInput {
	return []ShaderInput{
		{Variable: ModelToView},
		{Variable: ViewToClip},
		{Variable: Positions},
		{Variable: Normals},
		{Variable: FaceColor, Optional: true},
	}
}

func (Smooth) isShaderSpec() {}

func (FlatBordered) Name() string { return "flat_bordered" }

func (FlatBordered) Inputs() []ShaderInput {
	return []ShaderInput{
		{Variable: ModelToView},
		{Variable: ViewToClip},
		{Variable: Positions},
		{Variable: Normals},
		{Variable: BaryCoords},
		{Variable: FaceColor, Optional: true},
		{Variable: BorderColor, Optional: true},
	}
}

func (FlatBordered) isShaderSpec() {}

func (s FlatBordered) String() string {
	return fmt.Sprintf("flat_bordered(%g)", s.BorderThickness)
}
