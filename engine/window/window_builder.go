package window

import "github.com/Carmen-Shannon/oxy-scene/common"

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size. The framebuffer may end up larger on high-DPI displays.
//
// Parameters:
//   - size: initial size in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(size common.Size) WindowBuilderOption {
	return func(w *engineWindow) {
		w.size = size
	}
}

// WithMinSize sets the smallest size the window can be resized to.
func WithMinSize(size common.Size) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minSize = size
	}
}

// WithMaxSize sets the largest size the window can be resized to. Zero means unbounded.
func WithMaxSize(size common.Size) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxSize = size
	}
}
