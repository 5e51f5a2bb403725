package mesh

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
)

// TriangleBuffers holds three parallel THREE_FLOATS arrays with 3 elements per triangle:
// corner positions, the flat face normal, and the border classification codes.
//
// A border code is (1,0,0) at the fan origin. The other two corners carry +1 in their
// own component when the triangle side facing them is a real polygon edge, and -1 when
// it is a diagonal introduced by the fan. The side between the two non-origin corners is
// always a polygon edge and carries no flag.
type TriangleBuffers struct {
	Positions  *common.DataArray
	Normals    *common.DataArray
	BaryCoords *common.DataArray
}

// NewTriangleBuffers returns empty buffers ready for Rebuild.
func NewTriangleBuffers() *TriangleBuffers {
	return &TriangleBuffers{
		Positions:  common.NewDataArray(common.ThreeFloats),
		Normals:    common.NewDataArray(common.ThreeFloats),
		BaryCoords: common.NewDataArray(common.ThreeFloats),
	}
}

// NumTriangles returns the number of triangles currently held.
func (b *TriangleBuffers) NumTriangles() int {
	return b.Positions.NumElements() / 3
}

// Triangulate fan-triangulates every face of m into new TriangleBuffers, in face id order.
//
// Parameters:
//   - m: the mesh; it must not be mutated during the call
//   - options: optional TriangulateOption values
//
// Returns:
//   - *TriangleBuffers: the triangle streams
//   - error: ErrLayerNotFound or ErrLayerTypeMismatch for the positions layer, or a *MeshError
//     wrapping ErrMalformedMesh; no buffers are returned on error
func Triangulate(m Mesh, options ...TriangulateOption) (*TriangleBuffers, error) {
	b := NewTriangleBuffers()
	if err := b.Rebuild(m, options...); err != nil {
		return nil, err
	}
	return b, nil
}

// faceJob is one face's loop and where its triangles land in the output.
type faceJob struct {
	face      int
	firstEdge int
	numEdges  int
	triangle  int
}

// Rebuild refills b from m, reusing its arrays. On error b is left unchanged. Arrays already
// stored in a descriptor must be rebuilt inside its Update.
//
// Parameters:
//   - m: the mesh; it must not be mutated during the call
//   - options: optional TriangulateOption values
//
// Returns:
//   - error: see Triangulate
func (b *TriangleBuffers) Rebuild(m Mesh, options ...TriangulateOption) error {
	cfg := triangulateConfig{positionsLayer: PositionsLayer}
	for _, option := range options {
		option(&cfg)
	}

	layer, err := m.DataLayer(cfg.positionsLayer, ThreeFloatsPerVertex)
	if err != nil {
		return fmt.Errorf("triangulate: %w", err)
	}

	// Phase 1 validates every loop and assigns output offsets, so a failure leaves no partial output.
	var jobs []faceJob
	triangles := 0
	for f := range m.Faces() {
		job, err := walkFace(m, f)
		if err != nil {
			return err
		}
		job.triangle = triangles
		triangles += job.numEdges - 2
		jobs = append(jobs, job)
	}

	b.Positions.SetNumElements(3 * triangles)
	b.Normals.SetNumElements(3 * triangles)
	b.BaryCoords.SetNumElements(3 * triangles)

	f := &fanFiller{
		mesh:       m,
		positions:  layer.Data.Floats(),
		outPos:     b.Positions.Floats(),
		outNormals: b.Normals.Floats(),
		outBary:    b.BaryCoords.Floats(),
	}

	// Phase 2 writes disjoint ranges per face and may run in parallel.
	pool := cfg.pool
	if pool == nil && cfg.workers > 1 && len(jobs) > 1 {
		pool = worker.NewDynamicWorkerPool(cfg.workers, 256, 1*time.Second)
	}
	if pool == nil {
		for _, job := range jobs {
			f.fill(job)
		}
	} else {
		fillParallel(pool, f, jobs, max(cfg.workers, 1))
	}

	common.Logger().Debug("mesh: triangulated", "faces", len(jobs), "triangles", triangles)
	return nil
}

// walkFace checks one face loop with a bounded walk.
func walkFace(m Mesh, face int) (faceJob, error) {
	first := m.FaceEdge(face)
	limit := 2 * m.NumEdgeIDs()
	job := faceJob{face: face, firstEdge: first}
	if first < 0 || first >= limit {
		return job, newMeshError("triangulate", "face has no valid first edge").face(face).edge(first)
	}
	d := first
	for {
		if m.FaceOf(d) != face {
			return job, newMeshError("triangulate", "loop leaves its face").face(face).edge(d)
		}
		next := m.NextInLoop(d)
		if next < 0 || next >= limit {
			return job, newMeshError("triangulate", "loop link out of range").face(face).edge(d)
		}
		if end := m.EndOf(d); end < 0 || end != m.StartOf(next) || m.StartOf(d) < 0 {
			return job, newMeshError("triangulate", "twin inconsistency").face(face).edge(d)
		}
		job.numEdges++
		if next == first {
			break
		}
		if job.numEdges >= limit {
			return job, newMeshError("triangulate", "loop does not return to its first edge").face(face).edge(first)
		}
		d = next
	}
	if job.numEdges < 3 {
		return job, newMeshError("triangulate", fmt.Sprintf("face has %d edges, need at least 3", job.numEdges)).face(face)
	}
	return job, nil
}

func fillParallel(pool worker.DynamicWorkerPool, f *fanFiller, jobs []faceJob, workers int) {
	chunk := max(1, len(jobs)/(4*workers))
	var wg sync.WaitGroup
	for id, start := 0, 0; start < len(jobs); id, start = id+1, start+chunk {
		batch := jobs[start:min(start+chunk, len(jobs))]
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for _, job := range batch {
					f.fill(job)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// fanFiller writes triangles for validated faces. The output slices are shared and each
// job writes only its own range.
type fanFiller struct {
	mesh       Mesh
	positions  []float32
	outPos     []float32
	outNormals []float32
	outBary    []float32
}

func (f *fanFiller) fill(job faceJob) {
	m := f.mesh
	first := job.firstEdge
	last := m.PrevInLoop(first)
	v0 := m.StartOf(first)
	p0 := common.Vector3FromSlice(f.positions, 3*v0)

	edge := m.NextInLoop(first)
	vS := m.StartOf(edge)
	edge0SInFace := true
	out := 9 * job.triangle

	for {
		next := m.NextInLoop(edge)
		vT := m.StartOf(next)
		edgeT0InFace := next == last

		pS := common.Vector3FromSlice(f.positions, 3*vS)
		pT := common.Vector3FromSlice(f.positions, 3*vT)
		normal := pS.Sub(p0).Cross(pT.Sub(p0)).Normalized()

		p0.CopyTo(f.outPos, out)
		pS.CopyTo(f.outPos, out+3)
		pT.CopyTo(f.outPos, out+6)
		for k := range 3 {
			normal.CopyTo(f.outNormals, out+3*k)
		}
		bary := [9]float32{
			1, 0, 0,
			0, sign(edgeT0InFace), 0,
			0, 0, sign(edge0SInFace),
		}
		copy(f.outBary[out:out+9], bary[:])
		out += 9

		if edgeT0InFace {
			return
		}
		edge = next
		vS = vT
		edge0SInFace = false
	}
}

func sign(b bool) float32 {
	if b {
		return 1
	}
	return -1
}

// Apply publishes the buffers as three vertex buffers in one descriptor update.
//
// Parameters:
//   - r: the descriptor, or a Mutator inside Rendering.Update
//   - positionsKey: vertex buffer key for positions
//   - normalsKey: vertex buffer key for normals
//   - baryKey: vertex buffer key for border codes
//
// Returns:
//   - error: the first error reported by the descriptor
func (b *TriangleBuffers) Apply(r rendering.Mutator, positionsKey, normalsKey, baryKey int) error {
	if err := r.SetVertexBuffer(positionsKey, b.Positions); err != nil {
		return fmt.Errorf("apply positions: %w", err)
	}
	if err := r.SetVertexBuffer(normalsKey, b.Normals); err != nil {
		return fmt.Errorf("apply normals: %w", err)
	}
	if err := r.SetVertexBuffer(baryKey, b.BaryCoords); err != nil {
		return fmt.Errorf("apply bary coords: %w", err)
	}
	return nil
}
