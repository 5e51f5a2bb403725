package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Modifiers are the modifier keys held when a mouse button went down.
type Modifiers struct {
	Ctrl  bool
	Shift bool
}

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new size in pixels
	SetResizeCallback(callback func(size common.Size))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the platform key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetMouseDownCallback sets the callback for a primary button press.
	//
	// Parameters:
	//   - callback: function receiving the pointer position and held modifiers
	SetMouseDownCallback(callback func(p common.Position, mods Modifiers))

	// SetMouseDragCallback sets the callback for pointer movement while the primary button is held.
	// Movement with the button up is not reported.
	//
	// Parameters:
	//   - callback: function receiving the pointer position
	SetMouseDragCallback(callback func(p common.Position))

	// SetMouseUpCallback sets the callback for a primary button release that ends a drag.
	//
	// Parameters:
	//   - callback: function receiving the pointer position
	SetMouseUpCallback(callback func(p common.Position))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Size returns the current framebuffer size in pixels.
	Size() common.Size
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and event callbacks.
type engineWindow struct {
	mu *sync.Mutex

	title string

	// minSize and maxSize bound interactive resizing; zero fields are unbounded
	minSize common.Size
	maxSize common.Size

	// size is the current framebuffer size in pixels
	size common.Size

	// dragging is set between a primary button press and its release
	dragging bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate    func()
	onResize    func(size common.Size)
	onKeyDown   func(keyCode uint32)
	onMouseDown func(p common.Position, mods Modifiers)
	onMouseDrag func(p common.Position)
	onMouseUp   func(p common.Position)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options and opens the platform window.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// newEngineWindow applies defaults and options without touching the platform layer.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:      &sync.Mutex{},
		title:   "oxy-scene",
		minSize: common.Size{Width: 200, Height: 150},
		size:    common.Size{Width: 800, Height: 600},
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(size common.Size)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onKeyDown = callback
}

func (w *engineWindow) SetMouseDownCallback(callback func(p common.Position, mods Modifiers)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onMouseDown = callback
}

func (w *engineWindow) SetMouseDragCallback(callback func(p common.Position)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onMouseDrag = callback
}

func (w *engineWindow) SetMouseUpCallback(callback func(p common.Position)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onMouseUp = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		w.mu.Lock()
		onUpdate := w.onUpdate
		w.mu.Unlock()
		if onUpdate != nil {
			onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Size() common.Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// The handle* methods translate platform events into callbacks. Callbacks run without the
// mutex held so they may call back into the window.

func (w *engineWindow) handleResize(size common.Size) {
	w.mu.Lock()
	if size == w.size {
		w.mu.Unlock()
		return
	}
	w.size = size
	onResize := w.onResize
	w.mu.Unlock()

	if onResize != nil {
		onResize(size)
	}
}

func (w *engineWindow) handleKeyDown(keyCode uint32) {
	w.mu.Lock()
	onKeyDown := w.onKeyDown
	w.mu.Unlock()

	if onKeyDown != nil {
		onKeyDown(keyCode)
	}
}

func (w *engineWindow) handleMouseButton(p common.Position, pressed bool, mods Modifiers) {
	w.mu.Lock()
	var down func(common.Position, Modifiers)
	var up func(common.Position)
	switch {
	case pressed && !w.dragging:
		w.dragging = true
		down = w.onMouseDown
	case !pressed && w.dragging:
		w.dragging = false
		up = w.onMouseUp
	}
	w.mu.Unlock()

	if down != nil {
		down(p, mods)
	}
	if up != nil {
		up(p)
	}
}

func (w *engineWindow) handleCursor(p common.Position) {
	w.mu.Lock()
	var drag func(common.Position)
	if w.dragging {
		drag = w.onMouseDrag
	}
	w.mu.Unlock()

	if drag != nil {
		drag(p)
	}
}
