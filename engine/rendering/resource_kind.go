package rendering

import "fmt"

// ResourceKind names one of the descriptor's keyed collections. Keys are independent per kind.
type ResourceKind int

const (
	KindVertexBuffer ResourceKind = iota
	KindSampler
	KindShader
)

// ResourceKinds lists every kind in a stable order.
var ResourceKinds = [...]ResourceKind{KindVertexBuffer, KindSampler, KindShader}

func (k ResourceKind) String() string {
	switch k {
	case KindVertexBuffer:
		return "vertex buffer"
	case KindSampler:
		return "sampler"
	case KindShader:
		return "shader"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
