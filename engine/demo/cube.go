package demo

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
)

// cubeFaces are the six quads of the cube over its corner ids, each wound counter-clockwise
// seen from outside so fan normals point outward. Corner i has x = bit 2, y = bit 1, z = bit 0 of i.
var cubeFaces = [6][4]int{
	{0, 1, 3, 2},
	{4, 6, 7, 5},
	{0, 2, 6, 4},
	{5, 7, 3, 1},
	{2, 3, 7, 6},
	{1, 0, 4, 5},
}

// NewCube builds an axis-aligned cube of 8 vertices and 6 quad faces spanning
// [-half, half] on every axis, with positions in the "positions" layer.
//
// Parameters:
//   - half: half the edge length
//
// Returns:
//   - mesh.Mesh: the cube
//   - error: an error if the mesh rejected a face
func NewCube(half float32) (mesh.Mesh, error) {
	m := mesh.NewMesh()

	var v [8]int
	for i := range v {
		v[i] = m.NewVertex()
	}

	positions, err := m.CreateDataLayer(mesh.PositionsLayer, mesh.ThreeFloatsPerVertex)
	if err != nil {
		return nil, err
	}
	coords := positions.Data.Floats()
	coord := func(bit bool) float32 {
		if bit {
			return half
		}
		return -half
	}
	for i, id := range v {
		coords[3*id] = coord(i&4 != 0)
		coords[3*id+1] = coord(i&2 != 0)
		coords[3*id+2] = coord(i&1 != 0)
	}

	for _, f := range cubeFaces {
		if _, err := m.AddFace(v[f[0]], v[f[1]], v[f[2]], v[f[3]]); err != nil {
			return nil, fmt.Errorf("cube face %v: %w", f, err)
		}
	}
	return m, nil
}
