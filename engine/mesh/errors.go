package mesh

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedMesh is the category of every topology error.
	ErrMalformedMesh = errors.New("mesh: malformed mesh")

	// ErrLayerNotFound is returned when no data layer has the requested name.
	ErrLayerNotFound = errors.New("mesh: data layer not found")

	// ErrLayerTypeMismatch is returned when a data layer exists with a different type than requested.
	ErrLayerTypeMismatch = errors.New("mesh: data layer type mismatch")

	// ErrLayerExists is returned when creating a data layer under a name already in use.
	ErrLayerExists = errors.New("mesh: data layer already exists")
)

// MeshError describes a topology violation. Ids that do not apply are -1.
// MeshError matches ErrMalformedMesh with errors.Is.
type MeshError struct {
	Op     string
	Face   int
	Edge   int
	Vertex int
	Reason string
}

func newMeshError(op, reason string) *MeshError {
	return &MeshError{Op: op, Face: -1, Edge: -1, Vertex: -1, Reason: reason}
}

func (e *MeshError) face(f int) *MeshError   { e.Face = f; return e }
func (e *MeshError) edge(d int) *MeshError   { e.Edge = d; return e }
func (e *MeshError) vertex(v int) *MeshError { e.Vertex = v; return e }

func (e *MeshError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mesh: %s: %s", e.Op, e.Reason)
	if e.Face >= 0 {
		fmt.Fprintf(&b, " (face %d)", e.Face)
	}
	if e.Edge >= 0 {
		fmt.Fprintf(&b, " (directed edge %d)", e.Edge)
	}
	if e.Vertex >= 0 {
		fmt.Fprintf(&b, " (vertex %d)", e.Vertex)
	}
	return b.String()
}

func (e *MeshError) Unwrap() error {
	return ErrMalformedMesh
}
