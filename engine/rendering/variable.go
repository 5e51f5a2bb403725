package rendering

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// ValueKind tags the variant held by a Value and the kind of value a Variable accepts.
type ValueKind int

const (
	ValueMatrix4 ValueKind = iota
	ValueVector3
	ValueVertexBuffer
	ValueSampler
)

func (k ValueKind) String() string {
	switch k {
	case ValueMatrix4:
		return "matrix4"
	case ValueVector3:
		return "vector3"
	case ValueVertexBuffer:
		return "vertex buffer"
	case ValueSampler:
		return "sampler"
	default:
		return fmt.Sprintf("value(%d)", int(k))
	}
}

// Variable is a named shader input. Variables are compared by value, so two bindings
// target the same input exactly when their Variables are equal.
type Variable struct {
	Name string
	Kind ValueKind

	// Type is the element layout a vertex buffer bound to this variable must have.
	// Unused for other kinds.
	Type common.ArrayType
}

func (v Variable) String() string {
	return v.Name
}

var (
	ModelToView = Variable{Name: "modelToView", Kind: ValueMatrix4}
	ViewToClip  = Variable{Name: "viewToClip", Kind: ValueMatrix4}
	FaceColor   = Variable{Name: "faceColor", Kind: ValueVector3}
	BorderColor = Variable{Name: "borderColor", Kind: ValueVector3}
	Positions   = Variable{Name: "positions", Kind: ValueVertexBuffer, Type: common.ThreeFloats}
	Normals     = Variable{Name: "normals", Kind: ValueVertexBuffer, Type: common.ThreeFloats}
	BaryCoords  = Variable{Name: "baryCoords", Kind: ValueVertexBuffer, Type: common.ThreeFloats}
)

// Value is a closed variant over the values a binding can carry. Only the field selected by Kind is meaningful.
type Value struct {
	Kind   ValueKind
	Matrix common.Matrix4
	Vector common.Vector3
	Key    int
}

func (v Value) String() string {
	switch v.Kind {
	case ValueMatrix4:
		return fmt.Sprintf("matrix4%v", [16]float32(v.Matrix))
	case ValueVector3:
		return fmt.Sprintf("vector3(%g, %g, %g)", v.Vector.X, v.Vector.Y, v.Vector.Z)
	case ValueVertexBuffer:
		return fmt.Sprintf("vertex buffer #%d", v.Key)
	case ValueSampler:
		return fmt.Sprintf("sampler #%d", v.Key)
	default:
		return v.Kind.String()
	}
}

// ResourceKind returns the collection a key-valued Value refers to, and false for matrices and vectors.
func (v Value) ResourceKind() (ResourceKind, bool) {
	switch v.Kind {
	case ValueVertexBuffer:
		return KindVertexBuffer, true
	case ValueSampler:
		return KindSampler, true
	default:
		return 0, false
	}
}
