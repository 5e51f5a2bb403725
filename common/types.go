// package common contains plain data types and helpers shared by the mesh, rendering and renderer packages.
package common

import "fmt"

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Aspect returns width/height, or 1 for an empty size.
func (s Size) Aspect() float32 {
	if s.Empty() {
		return 1
	}
	return float32(s.Width) / float32(s.Height)
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Position is a pixel position inside a window, origin at the top-left corner.
type Position struct {
	X int
	Y int
}

// Color is a linear RGB color with components in [0, 1].
type Color struct {
	R, G, B float32
}

// RGB is shorthand for constructing a Color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b}
}

// Vector3 returns the color as an (R, G, B) vector, the form shader color variables take.
func (c Color) Vector3() Vector3 {
	return Vector3{X: c.R, Y: c.G, Z: c.B}
}

// Bytes returns the color quantized to 8 bits per channel.
func (c Color) Bytes() [3]byte {
	q := func(v float32) byte {
		return byte(Clamp(v, 0, 1)*255 + 0.5)
	}
	return [3]byte{q(c.R), q(c.G), q(c.B)}
}
