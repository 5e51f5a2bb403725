package mesh

import "github.com/Carmen-Shannon/automation/tools/worker"

// PositionsLayer is the default name of the per-vertex position layer read by Triangulate.
const PositionsLayer = "positions"

// TriangulateOption is a functional option applied to a triangulation via Triangulate or TriangleBuffers.Rebuild.
type TriangulateOption func(*triangulateConfig)

type triangulateConfig struct {
	positionsLayer string
	workers        int
	pool           worker.DynamicWorkerPool
}

// WithWorkers fills faces in parallel on a worker pool of n goroutines created for the call.
// Values below 2 keep the fill on the calling goroutine. The output does not depend on n.
//
// Parameters:
//   - n: the number of workers
//
// Returns:
//   - TriangulateOption: a function that applies the worker count
func WithWorkers(n int) TriangulateOption {
	return func(c *triangulateConfig) {
		c.workers = n
	}
}

// WithWorkerPool fills faces in parallel on an existing pool, so repeated rebuilds reuse its goroutines.
//
// Parameters:
//   - pool: the pool to submit fill tasks to
//
// Returns:
//   - TriangulateOption: a function that applies the pool
func WithWorkerPool(pool worker.DynamicWorkerPool) TriangulateOption {
	return func(c *triangulateConfig) {
		c.pool = pool
	}
}

// WithPositionsLayer reads vertex positions from the named THREE_FLOATS_PER_VERTEX layer instead of "positions".
//
// Parameters:
//   - name: the layer name
//
// Returns:
//   - TriangulateOption: a function that applies the layer name
func WithPositionsLayer(name string) TriangulateOption {
	return func(c *triangulateConfig) {
		c.positionsLayer = name
	}
}
