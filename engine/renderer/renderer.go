package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
)

// FailurePolicy decides what a frame does when an Execute command cannot be resolved or drawn.
type FailurePolicy int

const (
	// FailurePolicySkipDraw skips the failing Execute, logs it and keeps interpreting the
	// command list. Every skipped draw is returned from Render. This is the default.
	FailurePolicySkipDraw FailurePolicy = iota

	// FailurePolicyAbortFrame stops interpreting the command list at the first failing
	// Execute, ends the frame and returns the error.
	FailurePolicyAbortFrame
)

func (p FailurePolicy) String() string {
	if p == FailurePolicyAbortFrame {
		return "abort-frame"
	}
	return "skip-draw"
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	// frameMu serializes Render, SetRendering, ShadowState and Release, and guards every
	// field below it up to mu.
	frameMu *sync.Mutex

	backend  Backend
	policy   FailurePolicy
	desc     rendering.Rendering
	released bool

	// pendingRendering is attached once options have been applied
	pendingRendering rendering.Rendering

	shadows map[shadowKey]*shadow
	// retired holds shadows flagged for destruction, released at the start of the next frame
	retired  []*shadow
	commands []rendering.Command
	// commandsDirty is set when a drained CommandsChanged has not been snapshotted yet
	commandsDirty bool

	// mu guards the notification queue and the last frame stats. Listener callbacks only
	// take mu, never frameMu.
	mu              *sync.Mutex
	events          []event
	commandsChanged bool
	lastStats       FrameStats
}

// Renderer keeps a Backend synchronized with a scene descriptor. It registers itself as a
// listener of the descriptor, mirrors every vertex buffer, sampler and shader in a shadow
// resource, and on each Render reconciles the shadows with the backend before replaying the
// command list as draw calls.
//
// Descriptor mutations may come from any goroutine. Render, SetRendering and Release must be
// called from the goroutine that owns the backend.
type Renderer interface {
	rendering.Listener

	// SetRendering switches the descriptor being rendered. Shadows of the previous descriptor
	// are flagged for destruction and released on the next frame; every entry of the new
	// descriptor is treated as newly added. Passing nil detaches the renderer.
	//
	// Parameters:
	//   - r: the descriptor to render, or nil
	SetRendering(r rendering.Rendering)

	// Rendering returns the descriptor being rendered, or nil.
	//
	// Returns:
	//   - rendering.Rendering: the current descriptor
	Rendering() rendering.Rendering

	// Render draws one frame of a width x height surface. Pending shadow destructions run
	// first, then creations and updates, then the command list is interpreted. A zero size
	// or a missing descriptor only reconciles resources.
	//
	// Errors of a frame are aggregated with errors.Join: ErrBackendAllocation for failed
	// creations and updates, *DrawError for skipped Execute commands.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - error: the frame's errors, or nil
	Render(width, height int) error

	// ShadowState reports the lifecycle state of the shadow for a descriptor entry, taking
	// notifications received since the last frame into account.
	//
	// Parameters:
	//   - kind: the resource kind
	//   - key: the descriptor key
	//
	// Returns:
	//   - ShadowState: the shadow's state, ShadowAbsent if there is none
	ShadowState(kind rendering.ResourceKind, key int) ShadowState

	// LastFrameStats returns the statistics of the most recent Render.
	//
	// Returns:
	//   - FrameStats: counts of draws and resource operations
	LastFrameStats() FrameStats

	// FailurePolicy returns the policy applied to failing Execute commands.
	FailurePolicy() FailurePolicy

	// Release detaches from the descriptor, destroys every native resource and releases the
	// backend. Render returns ErrReleased afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer driving the given backend.
//
// Parameters:
//   - backend: the graphics backend, must not be nil
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer
func NewRenderer(backend Backend, options ...RendererBuilderOption) Renderer {
	if backend == nil {
		panic("renderer: nil backend")
	}
	r := &renderer{
		frameMu: &sync.Mutex{},
		mu:      &sync.Mutex{},
		backend: backend,
		policy:  FailurePolicySkipDraw,
		shadows: make(map[shadowKey]*shadow),
	}

	for _, opt := range options {
		opt(r)
	}
	if r.pendingRendering != nil {
		r.SetRendering(r.pendingRendering)
		r.pendingRendering = nil
	}
	return r
}

func (r *renderer) ResourceAdded(kind rendering.ResourceKind, key int) {
	r.enqueue(event{typ: eventAdded, shadowKey: shadowKey{kind, key}})
}

func (r *renderer) ResourceChanged(kind rendering.ResourceKind, key int) {
	r.enqueue(event{typ: eventChanged, shadowKey: shadowKey{kind, key}})
}

func (r *renderer) ResourceRemoved(kind rendering.ResourceKind, key int) {
	r.enqueue(event{typ: eventRemoved, shadowKey: shadowKey{kind, key}})
}

func (r *renderer) CommandsChanged() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commandsChanged = true
}

func (r *renderer) enqueue(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *renderer) SetRendering(desc rendering.Rendering) {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()

	if r.released || desc == r.desc {
		return
	}
	if r.desc != nil {
		r.desc.RemoveListener(r)
	}

	r.mu.Lock()
	r.events = nil
	r.commandsChanged = false
	r.mu.Unlock()

	for _, s := range r.shadows {
		r.retire(s)
	}
	r.commands = nil
	r.commandsDirty = false
	r.desc = desc
	if desc == nil {
		return
	}

	desc.AddListener(r)
	desc.Read(func(s rendering.Snapshot) {
		for _, kind := range rendering.ResourceKinds {
			for _, key := range s.Keys(kind) {
				r.ResourceAdded(kind, key)
			}
		}
		r.CommandsChanged()
	})
	common.Logger().Debug("renderer: descriptor attached")
}

func (r *renderer) Rendering() rendering.Rendering {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	return r.desc
}

func (r *renderer) FailurePolicy() FailurePolicy {
	return r.policy
}

func (r *renderer) ShadowState(kind rendering.ResourceKind, key int) ShadowState {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()

	r.drain()
	k := shadowKey{kind, key}
	if s, ok := r.shadows[k]; ok {
		return s.state()
	}
	for _, s := range r.retired {
		if s.shadowKey == k {
			return ShadowPendingDestroy
		}
	}
	return ShadowAbsent
}

func (r *renderer) LastFrameStats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastStats
}

func (r *renderer) Release() {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()

	if r.released {
		return
	}
	if r.desc != nil {
		r.desc.RemoveListener(r)
		r.desc = nil
	}
	for _, s := range r.shadows {
		r.retire(s)
	}
	var stats FrameStats
	r.destroyRetired(&stats)
	r.backend.Release()
	r.released = true
	common.Logger().Info("renderer: released", "destroyed", stats.Destroys)
}

// drain applies queued notifications to the shadows. Callers hold frameMu.
func (r *renderer) drain() {
	r.mu.Lock()
	events := r.events
	r.events = nil
	if r.commandsChanged {
		r.commandsDirty = true
		r.commandsChanged = false
	}
	r.mu.Unlock()

	for _, e := range events {
		s, exists := r.shadows[e.shadowKey]
		switch e.typ {
		case eventAdded:
			if exists {
				continue
			}
			r.shadows[e.shadowKey] = newShadow(e.shadowKey)
			common.Logger().Debug("renderer: shadow pending-create", "resource", e.shadowKey)
		case eventChanged:
			if !exists {
				s = newShadow(e.shadowKey)
				r.shadows[e.shadowKey] = s
			}
			s.needsUpdate = true
			common.Logger().Debug("renderer: shadow pending-update", "resource", e.shadowKey)
		case eventRemoved:
			if exists {
				r.retire(s)
			}
		}
	}
}

// retire flags a shadow for destruction and moves it out of the live table so the same key
// can be added again before the native handle is released.
func (r *renderer) retire(s *shadow) {
	s.needsDestruction = true
	s.needsUpdate = false
	delete(r.shadows, s.shadowKey)
	r.retired = append(r.retired, s)
	common.Logger().Debug("renderer: shadow pending-destroy", "resource", s.shadowKey)
}

// destroyRetired releases the native handles of retired shadows and drops them.
func (r *renderer) destroyRetired(stats *FrameStats) {
	for _, s := range r.retired {
		if s.handle == nil {
			continue
		}
		switch s.kind {
		case rendering.KindVertexBuffer:
			r.backend.DestroyBuffer(s.handle)
		case rendering.KindSampler:
			r.backend.DestroyTexture(s.handle)
		case rendering.KindShader:
			r.backend.DestroyProgram(s.handle)
		}
		s.handle = nil
		stats.Destroys++
		common.Logger().Debug("renderer: shadow destroyed", "resource", s.shadowKey)
	}
	clear(r.retired)
	r.retired = r.retired[:0]
}
