package renderer

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
)

var (
	// DefaultFaceColor is used when a program's faceColor input is unbound.
	DefaultFaceColor = common.Vec3(0.8, 0.8, 0.8)

	// DefaultBorderColor is used when a program's borderColor input is unbound.
	DefaultBorderColor = common.Vec3(0, 0, 0)
)

// packUniforms lays out the matrices and colors of a draw call, plus the spec's constants,
// in the program's uniform block.
func packUniforms(p shader.Program, call DrawCall) []byte {
	buf := make([]byte, p.UniformSize())

	putFloats := func(field string, values []float32) {
		if off, ok := p.UniformOffset(field); ok {
			copy(buf[off:], common.SliceToBytes(values))
		}
	}

	for _, v := range []rendering.Variable{rendering.ModelToView, rendering.ViewToClip} {
		m, ok := call.Matrix(v.Name)
		if !ok {
			m = common.Identity4()
		}
		putFloats(v.Name, m[:])
	}

	face, ok := call.Vector(rendering.FaceColor.Name)
	if !ok {
		face = DefaultFaceColor
	}
	faceArr := face.Array()
	putFloats(rendering.FaceColor.Name, faceArr[:])

	border, ok := call.Vector(rendering.BorderColor.Name)
	if !ok {
		border = DefaultBorderColor
	}
	borderArr := border.Array()
	putFloats(rendering.BorderColor.Name, borderArr[:])

	if fb, ok := call.Shader.(rendering.FlatBordered); ok {
		putFloats(shader.BorderThicknessField, []float32{fb.BorderThickness})
	}
	return buf
}
