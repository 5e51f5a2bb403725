// Package mesh implements a half-edge polygon mesh with typed data layers,
// and the fan triangulator that turns it into flat per-triangle vertex streams.
package mesh

import (
	"fmt"
	"iter"
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Mesh tracks the connectivity of vertices, edges and faces.
//
// Every edge owns two directed edges with ids 2*edge (forward) and 2*edge+1 (reverse).
// Each directed edge belongs to exactly one loop: the loop around a face, or a boundary
// loop with face -1. Ids are dense and released ids are reused.
//
// A Mesh is not safe for concurrent mutation. Concurrent reads are safe while no goroutine mutates it.
type Mesh interface {
	// NewVertex reserves a vertex id. The vertex is disconnected until a face uses it.
	//
	// Returns:
	//   - int: the new vertex id
	NewVertex() int

	// AddFace connects the given vertices, in loop order, with a new face.
	// Every check runs before the mesh is modified, so a failed call leaves the mesh untouched.
	//
	// Parameters:
	//   - vertices: at least 3 distinct, reserved vertex ids
	//
	// Returns:
	//   - int: the new face id
	//   - error: a *MeshError wrapping ErrMalformedMesh if the face cannot be added
	AddFace(vertices ...int) (int, error)

	// RemoveFace undoes AddFace. Edges no longer adjacent to any face are removed and
	// vertices left without edges become disconnected.
	//
	// Parameters:
	//   - face: the face id to remove
	//
	// Returns:
	//   - bool: false if face was not connected
	RemoveFace(face int) bool

	// Clear removes every vertex, edge and face. Data layers stay attached with zero elements.
	Clear()

	StartOf(directedEdge int) int
	EndOf(directedEdge int) int
	FaceOf(directedEdge int) int
	IsBoundary(directedEdge int) bool
	NextInLoop(directedEdge int) int
	PrevInLoop(directedEdge int) int
	NextAroundStart(directedEdge int) int
	PrevAroundStart(directedEdge int) int

	// OutgoingEdge returns a directed edge starting at vertex, or -1 if the vertex is disconnected.
	OutgoingEdge(vertex int) int

	// FaceEdge returns the first directed edge of face's loop, or -1 if the face is disconnected.
	FaceEdge(face int) int

	IsVertexConnected(vertex int) bool
	IsFaceConnected(face int) bool
	IsEdgeConnected(edge int) bool

	NumVertexIDs() int
	NumEdgeIDs() int
	NumFaceIDs() int
	NumVertices() int
	NumEdges() int
	NumFaces() int

	// NumEdgesForFace returns the length of face's loop, 0 for a disconnected face.
	NumEdgesForFace(face int) int

	// NumEdgesForVertex returns the number of directed edges leaving vertex.
	NumEdgesForVertex(vertex int) int

	// NumTriangles returns the number of triangles a fan triangulation emits, the sum of N-2 over all faces.
	NumTriangles() int

	// Vertices yields connected vertex ids in ascending order.
	Vertices() iter.Seq[int]

	// Faces yields connected face ids in ascending order.
	Faces() iter.Seq[int]

	// Edges yields connected edge ids in ascending order.
	Edges() iter.Seq[int]

	// FaceEdges yields the directed edges of face's loop starting at its first edge.
	FaceEdges(face int) iter.Seq[int]

	// OutgoingEdges yields the directed edges leaving vertex.
	OutgoingEdges(vertex int) iter.Seq[int]

	// CreateDataLayer attaches a new data layer sized to the matching id space.
	//
	// Parameters:
	//   - name: the layer name, unique per mesh
	//   - t: the layer type
	//
	// Returns:
	//   - *DataLayer: the new layer
	//   - error: ErrLayerExists if name is taken
	CreateDataLayer(name string, t LayerType) (*DataLayer, error)

	// DataLayer looks up a layer by name and type.
	//
	// Parameters:
	//   - name: the layer name
	//   - t: the expected layer type
	//
	// Returns:
	//   - *DataLayer: the layer
	//   - error: ErrLayerNotFound or ErrLayerTypeMismatch
	DataLayer(name string, t LayerType) (*DataLayer, error)

	// DestroyDataLayer detaches and forgets a layer.
	//
	// Returns:
	//   - bool: false if no layer had that name
	DestroyDataLayer(name string) bool

	// Validate checks every connectivity invariant.
	//
	// Returns:
	//   - error: a *MeshError wrapping ErrMalformedMesh describing the first violation found
	Validate() error
}

// directed edge record layout inside edgeData: 4 integers per directed edge, 2 directed edges per edge.
const (
	fieldStart = iota
	fieldFace
	fieldNext
	fieldPrev
	fieldsPerDirectedEdge
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	vertexToEdge *common.DataArray
	faceToEdge   *common.DataArray
	edgeData     *common.DataArray

	vertexIDs idManager
	edgeIDs   idManager
	faceIDs   idManager

	numVertices int
	numEdges    int
	numFaces    int

	layers map[string]*DataLayer
}

var _ Mesh = &mesh{}

// NewMesh creates an empty Mesh.
func NewMesh() Mesh {
	m := &mesh{
		vertexToEdge: common.NewDataArray(common.OneInteger),
		faceToEdge:   common.NewDataArray(common.OneInteger),
		edgeData:     common.NewDataArray(common.ArrayType{PrimitivesPerElement: 2 * fieldsPerDirectedEdge, Primitive: common.PrimitiveIntegers}),
		layers:       make(map[string]*DataLayer),
	}
	m.vertexIDs.attach(m.vertexToEdge)
	m.faceIDs.attach(m.faceToEdge)
	m.edgeIDs.attach(m.edgeData)
	return m
}

// Opposite returns the directed edge running the other way along the same edge.
func Opposite(directedEdge int) int {
	return directedEdge ^ 1
}

// EdgeOf returns the edge id owning directedEdge.
func EdgeOf(directedEdge int) int {
	return directedEdge / 2
}

// ForwardEdge returns the forward directed edge of edge.
func ForwardEdge(edge int) int {
	return 2 * edge
}

func (m *mesh) field(d, f int) int {
	return int(m.edgeData.Integers()[fieldsPerDirectedEdge*d+f])
}

func (m *mesh) setField(d, f, v int) {
	m.edgeData.Integers()[fieldsPerDirectedEdge*d+f] = int32(v)
}

func (m *mesh) validDirectedEdge(d int) bool {
	return d >= 0 && d < 2*m.edgeIDs.numReserved
}

func (m *mesh) validVertex(v int) bool {
	return v >= 0 && v < m.vertexIDs.numReserved
}

func (m *mesh) validFace(f int) bool {
	return f >= 0 && f < m.faceIDs.numReserved
}

func (m *mesh) StartOf(d int) int         { return m.field(d, fieldStart) }
func (m *mesh) EndOf(d int) int           { return m.StartOf(Opposite(d)) }
func (m *mesh) FaceOf(d int) int          { return m.field(d, fieldFace) }
func (m *mesh) IsBoundary(d int) bool     { return m.FaceOf(d) < 0 }
func (m *mesh) NextInLoop(d int) int      { return m.field(d, fieldNext) }
func (m *mesh) PrevInLoop(d int) int      { return m.field(d, fieldPrev) }
func (m *mesh) NextAroundStart(d int) int { return Opposite(m.PrevInLoop(d)) }
func (m *mesh) PrevAroundStart(d int) int { return m.NextInLoop(Opposite(d)) }

func (m *mesh) OutgoingEdge(v int) int {
	if !m.validVertex(v) {
		return -1
	}
	return int(m.vertexToEdge.Integers()[v])
}

func (m *mesh) FaceEdge(f int) int {
	if !m.validFace(f) {
		return -1
	}
	return int(m.faceToEdge.Integers()[f])
}

func (m *mesh) setOutgoingEdge(v, d int) { m.vertexToEdge.Integers()[v] = int32(d) }
func (m *mesh) setFaceEdge(f, d int)     { m.faceToEdge.Integers()[f] = int32(d) }

func (m *mesh) connect(prev, next int) {
	m.setField(prev, fieldNext, next)
	m.setField(next, fieldPrev, prev)
}

func (m *mesh) initEdge(edge, start, end int) {
	for i, v := range [2 * fieldsPerDirectedEdge]int{start, -1, -1, -1, end, -1, -1, -1} {
		m.edgeData.Integers()[2*fieldsPerDirectedEdge*edge+i] = int32(v)
	}
}

func (m *mesh) IsVertexConnected(v int) bool { return m.OutgoingEdge(v) >= 0 }
func (m *mesh) IsFaceConnected(f int) bool   { return m.FaceEdge(f) >= 0 }

func (m *mesh) IsEdgeConnected(e int) bool {
	return e >= 0 && e < m.edgeIDs.numReserved && m.StartOf(ForwardEdge(e)) >= 0
}

func (m *mesh) NumVertexIDs() int { return m.vertexIDs.numReserved }
func (m *mesh) NumEdgeIDs() int   { return m.edgeIDs.numReserved }
func (m *mesh) NumFaceIDs() int   { return m.faceIDs.numReserved }
func (m *mesh) NumVertices() int  { return m.numVertices }
func (m *mesh) NumEdges() int     { return m.numEdges }
func (m *mesh) NumFaces() int     { return m.numFaces }

func (m *mesh) NewVertex() int {
	v := m.vertexIDs.newID()
	m.setOutgoingEdge(v, -1)
	return v
}

func (m *mesh) AddFace(vertices ...int) (int, error) {
	n := len(vertices)
	if n < 3 {
		return -1, newMeshError("add face", fmt.Sprintf("a face needs at least 3 vertices, got %d", n))
	}
	for i, v := range vertices {
		if !m.validVertex(v) {
			return -1, newMeshError("add face", "unknown vertex").vertex(v)
		}
		if slices.Contains(vertices[:i], v) {
			return -1, newMeshError("add face", "vertex repeated in face").vertex(v)
		}
	}

	faceEdges := make([]int, n)
	boundaryOut := make([]int, n)
	for i := range n {
		faceEdges[i] = -1
		boundaryOut[i] = -1
	}

	// Find existing edges the face reuses, and a boundary gap at every connected corner.
	for i := range n {
		start, end := vertices[i], vertices[(i+1)%n]
		first := m.OutgoingEdge(start)
		if first < 0 {
			continue
		}
		foundBoundary := false
		d := first
		for {
			if m.EndOf(d) == end {
				if !m.IsBoundary(d) {
					return -1, newMeshError("add face", fmt.Sprintf("directed edge %d->%d already has a face", start, end)).edge(d).vertex(start)
				}
				foundBoundary = true
				faceEdges[i] = d
				break
			}
			if m.IsBoundary(d) {
				boundaryOut[i] = d
				foundBoundary = true
			}
			d = m.NextAroundStart(d)
			if d == first {
				break
			}
		}
		if !foundBoundary {
			return -1, newMeshError("add face", "vertex already surrounded by faces").vertex(start)
		}
	}

	// Two reused edges meeting at a corner must be adjacent in their boundary loop,
	// or the edges in between need another boundary gap to move to.
	for i := range n {
		prev, next := faceEdges[(i+n-1)%n], faceEdges[i]
		if prev < 0 || next < 0 || m.PrevInLoop(next) == prev {
			continue
		}
		found := false
		for d := m.NextAroundStart(Opposite(prev)); d != next; d = m.NextAroundStart(d) {
			if m.IsBoundary(d) {
				boundaryOut[i] = d
				found = true
				break
			}
		}
		if !found {
			return -1, newMeshError("add face", "faces around vertex block the new face").vertex(m.StartOf(next))
		}
	}

	face := m.faceIDs.newID()
	for i := range n {
		if faceEdges[i] < 0 {
			e := m.edgeIDs.newID()
			m.initEdge(e, vertices[i], vertices[(i+1)%n])
			faceEdges[i] = ForwardEdge(e)
			m.numEdges++
		}
		m.setField(faceEdges[i], fieldFace, face)
	}
	m.setFaceEdge(face, faceEdges[0])
	m.numFaces++

	for i := range n {
		prev, next := faceEdges[(i+n-1)%n], faceEdges[i]
		oppPrev, oppNext := Opposite(prev), Opposite(next)
		prevFree, nextFree := m.IsBoundary(oppPrev), m.IsBoundary(oppNext)

		switch {
		case prevFree && nextFree:
			v := m.StartOf(next)
			if m.OutgoingEdge(v) < 0 {
				m.connect(oppNext, oppPrev)
				m.setOutgoingEdge(v, next)
				m.numVertices++
			} else {
				out := boundaryOut[i]
				in := m.PrevInLoop(out)
				m.connect(oppNext, out)
				m.connect(in, oppPrev)
			}
		case !prevFree && nextFree:
			m.connect(oppNext, m.NextInLoop(prev))
		case prevFree && !nextFree:
			m.connect(m.PrevInLoop(next), oppPrev)
		default:
			if m.PrevInLoop(next) != prev {
				out := boundaryOut[i]
				in := m.PrevInLoop(out)
				orphanIn := m.PrevInLoop(next)
				orphanOut := m.NextInLoop(prev)
				m.connect(orphanIn, out)
				m.connect(in, orphanOut)
			}
		}
		m.connect(prev, next)
	}
	return face, nil
}

func (m *mesh) RemoveFace(face int) bool {
	first := m.FaceEdge(face)
	if first < 0 {
		return false
	}
	faceEdges := slices.Collect(m.FaceEdges(face))
	n := len(faceEdges)

	// Move each corner's outgoing edge off this face where another face allows it.
	for _, d := range faceEdges {
		v := m.StartOf(d)
		if m.OutgoingEdge(v) != d {
			continue
		}
		out := d
		for {
			out = m.NextAroundStart(out)
			if !m.IsBoundary(out) || out == d {
				break
			}
		}
		m.setOutgoingEdge(v, out)
	}

	for i := range n {
		prev, next := faceEdges[(i+n-1)%n], faceEdges[i]
		oppPrev, oppNext := Opposite(prev), Opposite(next)
		prevFree, nextFree := m.IsBoundary(oppPrev), m.IsBoundary(oppNext)

		switch {
		case prevFree && nextFree:
			if m.NextInLoop(oppNext) == oppPrev {
				m.setOutgoingEdge(m.StartOf(next), -1)
				m.numVertices--
			} else {
				m.connect(m.PrevInLoop(oppPrev), m.NextInLoop(oppNext))
			}
		case !prevFree && nextFree:
			m.connect(prev, m.NextInLoop(oppNext))
		case prevFree && !nextFree:
			m.connect(m.PrevInLoop(oppPrev), next)
		}
	}

	m.setFaceEdge(face, -1)
	m.faceIDs.release(face)
	m.numFaces--

	for _, d := range faceEdges {
		m.setField(d, fieldFace, -1)
		if m.IsBoundary(Opposite(d)) {
			e := EdgeOf(d)
			m.initEdge(e, -1, -1)
			m.edgeIDs.release(e)
			m.numEdges--
		}
	}
	return true
}

func (m *mesh) Clear() {
	m.numVertices, m.numEdges, m.numFaces = 0, 0, 0
	m.vertexIDs.reset()
	m.edgeIDs.reset()
	m.faceIDs.reset()
}

func (m *mesh) NumEdgesForFace(face int) int {
	count := 0
	for range m.FaceEdges(face) {
		count++
	}
	return count
}

func (m *mesh) NumEdgesForVertex(vertex int) int {
	count := 0
	for range m.OutgoingEdges(vertex) {
		count++
	}
	return count
}

func (m *mesh) NumTriangles() int {
	total := 0
	for f := range m.Faces() {
		total += m.NumEdgesForFace(f) - 2
	}
	return total
}

func (m *mesh) Vertices() iter.Seq[int] {
	return ids(m.NumVertexIDs(), m.IsVertexConnected)
}

func (m *mesh) Faces() iter.Seq[int] {
	return ids(m.NumFaceIDs(), m.IsFaceConnected)
}

func (m *mesh) Edges() iter.Seq[int] {
	return ids(m.NumEdgeIDs(), m.IsEdgeConnected)
}

func (m *mesh) FaceEdges(face int) iter.Seq[int] {
	return m.cycle(m.FaceEdge(face), m.NextInLoop)
}

func (m *mesh) OutgoingEdges(vertex int) iter.Seq[int] {
	return m.cycle(m.OutgoingEdge(vertex), m.NextAroundStart)
}

func ids(limit int, connected func(int) bool) iter.Seq[int] {
	return func(yield func(int) bool) {
		for id := range limit {
			if connected(id) && !yield(id) {
				return
			}
		}
	}
}

// cycle walks from first until it comes back around. The walk stops after visiting every
// directed edge once, so a corrupted loop cannot spin forever.
func (m *mesh) cycle(first int, next func(int) int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if first < 0 {
			return
		}
		limit := 2 * m.NumEdgeIDs()
		d := first
		for range limit {
			if !yield(d) {
				return
			}
			d = next(d)
			if d == first || !m.validDirectedEdge(d) {
				return
			}
		}
	}
}

func (m *mesh) Validate() error {
	limit := 2 * m.NumEdgeIDs()
	for e := range m.Edges() {
		for _, d := range [2]int{ForwardEdge(e), ForwardEdge(e) + 1} {
			next, prev := m.NextInLoop(d), m.PrevInLoop(d)
			if !m.validDirectedEdge(next) || !m.validDirectedEdge(prev) {
				return newMeshError("validate", "loop link out of range").edge(d)
			}
			if m.PrevInLoop(next) != d || m.NextInLoop(prev) != d {
				return newMeshError("validate", "next and prev links disagree").edge(d)
			}
			if m.EndOf(d) != m.StartOf(next) {
				return newMeshError("validate", "loop is not continuous").edge(d)
			}
			if f := m.FaceOf(d); m.FaceOf(next) != f || (f >= 0 && !m.IsFaceConnected(f)) {
				return newMeshError("validate", "loop mixes faces").edge(d).face(f)
			}
			if m.StartOf(d) == m.EndOf(d) {
				return newMeshError("validate", "degenerate edge").edge(d).vertex(m.StartOf(d))
			}
		}
	}
	faces, vertices := 0, 0
	for f := range m.Faces() {
		faces++
		if err := m.checkFaceLoop(f, limit); err != nil {
			return err
		}
	}
	for v := range m.Vertices() {
		vertices++
		if out := m.OutgoingEdge(v); !m.validDirectedEdge(out) || m.StartOf(out) != v {
			return newMeshError("validate", "outgoing edge does not start at vertex").vertex(v).edge(m.OutgoingEdge(v))
		}
	}
	if faces != m.numFaces || vertices != m.numVertices {
		return newMeshError("validate", fmt.Sprintf("counts out of date: %d faces (want %d), %d vertices (want %d)", faces, m.numFaces, vertices, m.numVertices))
	}
	for name, layer := range m.layers {
		if want := m.idsFor(layer.Type.Elements).numReserved; layer.Data.NumElements() != want {
			return newMeshError("validate", fmt.Sprintf("layer %q has %d elements, want %d", name, layer.Data.NumElements(), want))
		}
	}
	return nil
}

// checkFaceLoop walks face's loop with a bounded step count and checks it closes,
// stays on the face, and has at least 3 edges.
func (m *mesh) checkFaceLoop(face, limit int) error {
	first := m.FaceEdge(face)
	if !m.validDirectedEdge(first) {
		return newMeshError("validate", "first edge out of range").face(face).edge(first)
	}
	d, count := first, 0
	for {
		if m.FaceOf(d) != face {
			return newMeshError("validate", "loop leaves its face").face(face).edge(d)
		}
		next := m.NextInLoop(d)
		if !m.validDirectedEdge(next) || m.EndOf(d) < 0 || m.EndOf(d) != m.StartOf(next) {
			return newMeshError("validate", "twin inconsistency").face(face).edge(d)
		}
		count++
		d = next
		if d == first {
			break
		}
		if count > limit || !m.validDirectedEdge(d) {
			return newMeshError("validate", "loop does not return to its first edge").face(face).edge(first)
		}
	}
	if count < 3 {
		return newMeshError("validate", fmt.Sprintf("face has %d edges", count)).face(face)
	}
	return nil
}
