// Package rendering holds the scene descriptor: keyed vertex buffers, samplers and shader specs
// plus an ordered command list, with change notification to registered listeners.
package rendering

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Mutator is the write side of a Rendering. Each successful state change notifies
// every registered listener exactly once, before the lock is released.
type Mutator interface {
	// SetVertexBuffer stores array under key. The descriptor keeps the pointer and the render
	// thread reads it under the descriptor lock, so a stored array may only be rewritten in
	// place inside Update, followed by SetVertexBuffer in the same call to publish the change.
	//
	// Parameters:
	//   - key: a non-negative vertex buffer key
	//   - array: the buffer contents
	//
	// Returns:
	//   - error: ErrInvalidKey or ErrNilValue; nothing is stored or notified on error
	SetVertexBuffer(key int, array *common.DataArray) error

	// SetSampler stores img under key, notifying added or changed.
	//
	// Parameters:
	//   - key: a non-negative sampler key
	//   - img: the image the sampler reads
	//
	// Returns:
	//   - error: ErrInvalidKey or ErrNilValue
	SetSampler(key int, img *common.Image) error

	// SetShader stores spec under key, notifying added or changed.
	//
	// Parameters:
	//   - key: a non-negative shader key
	//   - spec: Smooth or FlatBordered
	//
	// Returns:
	//   - error: ErrInvalidKey or ErrNilValue
	SetShader(key int, spec ShaderSpec) error

	// RemoveVertexBuffer erases the buffer stored under key.
	//
	// Returns:
	//   - bool: false if nothing was stored under key, in which case no listener is notified
	RemoveVertexBuffer(key int) bool

	// RemoveSampler erases the sampler stored under key.
	//
	// Returns:
	//   - bool: false if nothing was stored under key
	RemoveSampler(key int) bool

	// RemoveShader erases the shader stored under key.
	//
	// Returns:
	//   - bool: false if nothing was stored under key
	RemoveShader(key int) bool

	// SetCommands replaces the command list with a copy of commands and notifies CommandsChanged.
	// Referenced keys do not need to exist yet; they are resolved when the list is interpreted.
	//
	// Parameters:
	//   - commands: the new command list; nil clears it
	//
	// Returns:
	//   - error: ErrInvalidCommand, ErrInvalidKey or ErrNilValue for a malformed entry; the old list is kept
	SetCommands(commands []Command) error
}

// Snapshot is read access to a Rendering, valid only inside the Read callback that supplied it.
type Snapshot interface {
	VertexBuffer(key int) (*common.DataArray, bool)
	Sampler(key int) (*common.Image, bool)
	Shader(key int) (ShaderSpec, bool)

	// Keys returns the keys stored for kind in ascending order.
	Keys(kind ResourceKind) []int

	// Commands returns a copy of the command list.
	Commands() []Command
}

// Rendering is a mutable, observable scene description shared between a mutating thread
// and one or more renderers.
//
// Every mutation holds the descriptor lock across the change and its notifications,
// so a listener never observes a notification for a state it cannot read.
type Rendering interface {
	Mutator

	// Update runs fn with the lock held, so several mutations are published together.
	// Mutations made before fn returns an error are kept and were already notified.
	//
	// Parameters:
	//   - fn: the mutation batch; it must not call methods on this Rendering directly
	//
	// Returns:
	//   - error: the error returned by fn
	Update(fn func(m Mutator) error) error

	// Read runs fn with the lock held. The Snapshot must not escape fn.
	//
	// Parameters:
	//   - fn: the read callback; it must not call methods on this Rendering directly
	Read(fn func(s Snapshot))

	// AddListener registers l. Adding the same listener twice has no effect.
	// Listeners are not told about entries that already exist.
	AddListener(l Listener)

	// RemoveListener unregisters l. Unknown listeners are ignored.
	RemoveListener(l Listener)
}

// rendering is the implementation of the Rendering interface.
type rendering struct {
	mu *sync.Mutex

	vertexBuffers map[int]*common.DataArray
	samplers      map[int]*common.Image
	shaders       map[int]ShaderSpec
	commands      []Command

	listeners []Listener
}

var _ Rendering = &rendering{}

// NewRendering creates an empty Rendering.
func NewRendering() Rendering {
	return &rendering{
		mu:            &sync.Mutex{},
		vertexBuffers: make(map[int]*common.DataArray),
		samplers:      make(map[int]*common.Image),
		shaders:       make(map[int]ShaderSpec),
	}
}

func (r *rendering) SetVertexBuffer(key int, array *common.DataArray) error {
	return r.Update(func(m Mutator) error { return m.SetVertexBuffer(key, array) })
}

func (r *rendering) SetSampler(key int, img *common.Image) error {
	return r.Update(func(m Mutator) error { return m.SetSampler(key, img) })
}

func (r *rendering) SetShader(key int, spec ShaderSpec) error {
	return r.Update(func(m Mutator) error { return m.SetShader(key, spec) })
}

func (r *rendering) RemoveVertexBuffer(key int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (*tx)(r).RemoveVertexBuffer(key)
}

func (r *rendering) RemoveSampler(key int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (*tx)(r).RemoveSampler(key)
}

func (r *rendering) RemoveShader(key int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (*tx)(r).RemoveShader(key)
}

func (r *rendering) SetCommands(commands []Command) error {
	return r.Update(func(m Mutator) error { return m.SetCommands(commands) })
}

func (r *rendering) Update(fn func(m Mutator) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn((*tx)(r))
}

func (r *rendering) Read(fn func(s Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn((*snapshot)(r))
}

func (r *rendering) AddListener(l Listener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.listeners, l) {
		return
	}
	r.listeners = append(r.listeners, l)
}

func (r *rendering) RemoveListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = slices.DeleteFunc(r.listeners, func(x Listener) bool { return x == l })
}

// tx is the Mutator handed out while the lock is held.
type tx rendering

func (t *tx) notifyStored(kind ResourceKind, key int, existed bool) {
	for _, l := range t.listeners {
		if existed {
			l.ResourceChanged(kind, key)
		} else {
			l.ResourceAdded(kind, key)
		}
	}
	common.Logger().Debug("rendering: resource stored", "kind", kind, "key", key, "replaced", existed)
}

func (t *tx) notifyRemoved(kind ResourceKind, key int) {
	for _, l := range t.listeners {
		l.ResourceRemoved(kind, key)
	}
	common.Logger().Debug("rendering: resource removed", "kind", kind, "key", key)
}

func checkKey(kind ResourceKind, key int) error {
	if key < 0 {
		return fmt.Errorf("%s key %d: %w", kind, key, ErrInvalidKey)
	}
	return nil
}

func (t *tx) SetVertexBuffer(key int, array *common.DataArray) error {
	if err := checkKey(KindVertexBuffer, key); err != nil {
		return err
	}
	if array == nil {
		return fmt.Errorf("vertex buffer %d: %w", key, ErrNilValue)
	}
	_, existed := t.vertexBuffers[key]
	t.vertexBuffers[key] = array
	t.notifyStored(KindVertexBuffer, key, existed)
	return nil
}

func (t *tx) SetSampler(key int, img *common.Image) error {
	if err := checkKey(KindSampler, key); err != nil {
		return err
	}
	if img == nil || img.Data == nil {
		return fmt.Errorf("sampler %d: %w", key, ErrNilValue)
	}
	_, existed := t.samplers[key]
	t.samplers[key] = img
	t.notifyStored(KindSampler, key, existed)
	return nil
}

func (t *tx) SetShader(key int, spec ShaderSpec) error {
	if err := checkKey(KindShader, key); err != nil {
		return err
	}
	if spec == nil {
		return fmt.Errorf("shader %d: %w", key, ErrNilValue)
	}
	_, existed := t.shaders[key]
	t.shaders[key] = spec
	t.notifyStored(KindShader, key, existed)
	return nil
}

func (t *tx) RemoveVertexBuffer(key int) bool {
	if _, ok := t.vertexBuffers[key]; !ok {
		return false
	}
	delete(t.vertexBuffers, key)
	t.notifyRemoved(KindVertexBuffer, key)
	return true
}

func (t *tx) RemoveSampler(key int) bool {
	if _, ok := t.samplers[key]; !ok {
		return false
	}
	delete(t.samplers, key)
	t.notifyRemoved(KindSampler, key)
	return true
}

func (t *tx) RemoveShader(key int) bool {
	if _, ok := t.shaders[key]; !ok {
		return false
	}
	delete(t.shaders, key)
	t.notifyRemoved(KindShader, key)
	return true
}

func (t *tx) SetCommands(commands []Command) error {
	for i, c := range commands {
		if err := validateCommand(i, c); err != nil {
			return err
		}
	}
	t.commands = slices.Clone(commands)
	for _, l := range t.listeners {
		l.CommandsChanged()
	}
	common.Logger().Debug("rendering: commands replaced", "count", len(commands))
	return nil
}

// snapshot is the Snapshot handed out while the lock is held.
type snapshot rendering

func (s *snapshot) VertexBuffer(key int) (*common.DataArray, bool) {
	a, ok := s.vertexBuffers[key]
	return a, ok
}

func (s *snapshot) Sampler(key int) (*common.Image, bool) {
	img, ok := s.samplers[key]
	return img, ok
}

func (s *snapshot) Shader(key int) (ShaderSpec, bool) {
	spec, ok := s.shaders[key]
	return spec, ok
}

func (s *snapshot) Keys(kind ResourceKind) []int {
	switch kind {
	case KindVertexBuffer:
		return slices.Sorted(maps.Keys(s.vertexBuffers))
	case KindSampler:
		return slices.Sorted(maps.Keys(s.samplers))
	case KindShader:
		return slices.Sorted(maps.Keys(s.shaders))
	default:
		return nil
	}
}

func (s *snapshot) Commands() []Command {
	return slices.Clone(s.commands)
}
