package common

import (
	"github.com/chewxy/math32"
)

// Vector3 is a plain 3-component float32 vector.
type Vector3 struct {
	X, Y, Z float32
}

// Vec3 is shorthand for constructing a Vector3.
func Vec3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Vector3FromSlice reads three consecutive floats starting at offset.
//
// Parameters:
//   - data: source slice (must hold at least offset+3 elements)
//   - offset: index of the X component
//
// Returns:
//   - Vector3: the vector read from data
func Vector3FromSlice(data []float32, offset int) Vector3 {
	return Vector3{X: data[offset], Y: data[offset+1], Z: data[offset+2]}
}

// CopyTo writes the three components into dst starting at offset.
func (v Vector3) CopyTo(dst []float32, offset int) {
	dst[offset] = v.X
	dst[offset+1] = v.Y
	dst[offset+2] = v.Z
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the right-handed cross product v × o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalized returns v scaled to unit length. A zero vector is returned unchanged.
func (v Vector3) Normalized() Vector3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Rotated returns v rotated by angle radians around axis, right-handed.
// A zero axis leaves v unchanged.
func (v Vector3) Rotated(axis Vector3, angle float32) Vector3 {
	k := axis.Normalized()
	if k.Length() == 0 {
		return v
	}
	sin, cos := math32.Sincos(angle)
	return v.Scale(cos).
		Add(k.Cross(v).Scale(sin)).
		Add(k.Scale(k.Dot(v) * (1 - cos)))
}

// Array returns the components as a fixed-size array, handy for GPU uploads.
func (v Vector3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Matrix4 is a 4x4 float32 matrix stored in column-major order (WebGPU convention).
type Matrix4 [16]float32

// Identity4 returns the 4x4 identity matrix.
func Identity4() Matrix4 {
	var m Matrix4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Mul returns a * b.
func (a Matrix4) Mul(b Matrix4) Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			out[i*4+j] = sum
		}
	}
	return out
}

// Transform applies the matrix to a point (w = 1) and returns the homogeneous result.
//
// Parameters:
//   - p: the point to transform
//
// Returns:
//   - Vector3: the transformed xyz
//   - float32: the transformed w
func (a Matrix4) Transform(p Vector3) (Vector3, float32) {
	x := a[0]*p.X + a[4]*p.Y + a[8]*p.Z + a[12]
	y := a[1]*p.X + a[5]*p.Y + a[9]*p.Z + a[13]
	z := a[2]*p.X + a[6]*p.Y + a[10]*p.Z + a[14]
	w := a[3]*p.X + a[7]*p.Y + a[11]*p.Z + a[15]
	return Vector3{x, y, z}, w
}

// Perspective creates a perspective projection matrix mapping view-space depth into the
// WebGPU clip range [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - Matrix4: the projection matrix
func Perspective(fovY, aspect, near, far float32) Matrix4 {
	f := 1.0 / math32.Tan(fovY/2.0)
	var out Matrix4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// LookAt creates a view matrix that transforms world coordinates to camera space.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation
//
// Returns:
//   - Matrix4: the view matrix
func LookAt(eye, center, up Vector3) Matrix4 {
	z := eye.Sub(center)
	if z.Length() == 0 {
		z = Vector3{Z: 1}
	}
	z = z.Normalized()

	x := up.Cross(z)
	if x.Length() == 0 {
		x = Vector3{X: 1}
	}
	x = x.Normalized()
	y := z.Cross(x)

	var out Matrix4
	out[0], out[4], out[8], out[12] = x.X, x.Y, x.Z, -x.Dot(eye)
	out[1], out[5], out[9], out[13] = y.X, y.Y, y.Z, -y.Dot(eye)
	out[2], out[6], out[10], out[14] = z.X, z.Y, z.Z, -z.Dot(eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
	return out
}

// Invert computes the inverse of a column-major matrix by cofactor expansion.
// Returns false and the zero matrix when m is singular.
func (m Matrix4) Invert() (Matrix4, bool) {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Matrix4{}, false
	}
	invDet := 1.0 / det

	var out Matrix4
	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	return out, true
}

// Radians converts degrees to radians.
func Radians(degrees float32) float32 {
	return degrees * math32.Pi / 180
}

// Clamp restricts v to the closed range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
