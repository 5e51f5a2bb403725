package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
)

// ShadowState is the lifecycle state of the backend mirror of one descriptor entry.
type ShadowState int

const (
	ShadowAbsent ShadowState = iota
	ShadowPendingCreate
	ShadowLive
	ShadowPendingDestroy
)

func (s ShadowState) String() string {
	switch s {
	case ShadowAbsent:
		return "absent"
	case ShadowPendingCreate:
		return "pending-create"
	case ShadowLive:
		return "live"
	case ShadowPendingDestroy:
		return "pending-destroy"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type shadowKey struct {
	kind rendering.ResourceKind
	key  int
}

func (k shadowKey) String() string {
	return fmt.Sprintf("%s #%d", k.kind, k.key)
}

// shadow mirrors one descriptor entry. handle is non-nil exactly while a native resource
// exists for it.
type shadow struct {
	shadowKey
	needsUpdate      bool
	needsDestruction bool
	handle           Handle

	// byteSize is the size of the data behind handle, used to choose between an
	// in-place write and a reallocation.
	byteSize int

	// vertex buffers
	numElements int
	arrayType   common.ArrayType

	// samplers
	width, height int

	// shaders
	spec rendering.ShaderSpec
}

func newShadow(k shadowKey) *shadow {
	return &shadow{shadowKey: k, needsUpdate: true}
}

func (s *shadow) state() ShadowState {
	switch {
	case s.needsDestruction:
		return ShadowPendingDestroy
	case s.handle == nil || s.needsUpdate:
		return ShadowPendingCreate
	default:
		return ShadowLive
	}
}

// live reports whether draws may reference the shadow's handle.
func (s *shadow) live() bool {
	return s.handle != nil && !s.needsDestruction
}

// eventType is a queued descriptor notification.
type eventType int

const (
	eventAdded eventType = iota
	eventChanged
	eventRemoved
)

type event struct {
	typ eventType
	shadowKey
}

// upload is the descriptor data a pending shadow needs, copied while the descriptor lock is held.
type upload struct {
	shadow *shadow

	data        []byte
	numElements int
	arrayType   common.ArrayType

	width, height int

	spec rendering.ShaderSpec
}
