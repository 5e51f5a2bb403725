package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownShader is reported for an Execute whose shader key has no live program.
	ErrUnknownShader = errors.New("renderer: unknown shader")

	// ErrUnknownResource is reported for an Execute with a vertex buffer or sampler binding
	// that has no live resource, or with a required shader input left unbound.
	ErrUnknownResource = errors.New("renderer: unknown resource")

	// ErrBufferTooSmall is reported for an Execute drawing more vertices than a bound buffer holds.
	ErrBufferTooSmall = errors.New("renderer: vertex buffer too small")

	// ErrBufferType is reported for a vertex buffer whose element layout differs from the variable it is bound to.
	ErrBufferType = errors.New("renderer: vertex buffer type mismatch")

	// ErrBackendAllocation wraps failures of backend create and update calls. The affected
	// resource keeps its previous state and is retried on the next frame.
	ErrBackendAllocation = errors.New("renderer: backend allocation failed")

	// ErrReleased is returned by Render after Release.
	ErrReleased = errors.New("renderer: released")
)

// DrawError records why one Execute command did not draw.
type DrawError struct {
	// Index is the position of the Execute in the command list.
	Index int
	// Shader is the shader key named by the Execute.
	Shader int
	// Variable names the binding that failed to resolve, empty when the shader itself failed.
	Variable string
	Err      error
}

func (e *DrawError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("command %d (shader #%d) variable %q: %v", e.Index, e.Shader, e.Variable, e.Err)
	}
	return fmt.Sprintf("command %d (shader #%d): %v", e.Index, e.Shader, e.Err)
}

func (e *DrawError) Unwrap() error { return e.Err }
