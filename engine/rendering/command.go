package rendering

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Command is one entry of the command list: a Binding or an Execute.
type Command interface {
	isCommand()
}

// Binding associates a shader variable with a value for every following Execute,
// until the same variable is bound again.
type Binding struct {
	Variable Variable
	Value    Value
}

// Execute draws Triangles triangles with the shader stored under Shader, using the bindings made so far.
type Execute struct {
	Shader    int
	Triangles int
}

func (Binding) isCommand() {}
func (Execute) isCommand() {}

func (b Binding) String() string {
	return fmt.Sprintf("bind %s = %s", b.Variable, b.Value)
}

func (e Execute) String() string {
	return fmt.Sprintf("execute shader #%d (%d triangles)", e.Shader, e.Triangles)
}

// BindMatrix4 builds a Binding carrying a 4x4 matrix.
func BindMatrix4(v Variable, m common.Matrix4) Binding {
	return Binding{Variable: v, Value: Value{Kind: ValueMatrix4, Matrix: m}}
}

// BindVector3 builds a Binding carrying a 3-vector.
func BindVector3(v Variable, vec common.Vector3) Binding {
	return Binding{Variable: v, Value: Value{Kind: ValueVector3, Vector: vec}}
}

// BindVertexBuffer builds a Binding referencing the vertex buffer stored under key.
func BindVertexBuffer(v Variable, key int) Binding {
	return Binding{Variable: v, Value: Value{Kind: ValueVertexBuffer, Key: key}}
}

// BindSampler builds a Binding referencing the sampler stored under key.
func BindSampler(v Variable, key int) Binding {
	return Binding{Variable: v, Value: Value{Kind: ValueSampler, Key: key}}
}

// validateCommand checks the structural rules of a single command. Whether referenced keys
// exist is only known when the list is interpreted, so it is not checked here.
func validateCommand(i int, c Command) error {
	switch c := c.(type) {
	case Binding:
		if c.Variable.Kind != c.Value.Kind {
			return fmt.Errorf("command %d: %s expects a %s, got %s: %w", i, c.Variable, c.Variable.Kind, c.Value.Kind, ErrInvalidCommand)
		}
		if _, keyed := c.Value.ResourceKind(); keyed && c.Value.Key < 0 {
			return fmt.Errorf("command %d: %s: %w", i, c, ErrInvalidKey)
		}
	case Execute:
		if c.Shader < 0 {
			return fmt.Errorf("command %d: %s: %w", i, c, ErrInvalidKey)
		}
		if c.Triangles < 0 {
			return fmt.Errorf("command %d: negative triangle count %d: %w", i, c.Triangles, ErrInvalidCommand)
		}
	case nil:
		return fmt.Errorf("command %d: %w", i, ErrNilValue)
	default:
		return fmt.Errorf("command %d: unsupported command %T: %w", i, c, ErrInvalidCommand)
	}
	return nil
}
