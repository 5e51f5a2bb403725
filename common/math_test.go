package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector3Cross(t *testing.T) {
	x := Vec3(1, 0, 0)
	y := Vec3(0, 1, 0)
	assert.Equal(t, Vec3(0, 0, 1), x.Cross(y))
	assert.Equal(t, Vec3(0, 0, -1), y.Cross(x))
}

func TestVector3Normalized(t *testing.T) {
	v := Vec3(3, 0, 4).Normalized()
	assert.InDelta(t, 0.6, v.X, 1e-6)
	assert.InDelta(t, 0.8, v.Z, 1e-6)
	assert.InDelta(t, 1.0, v.Length(), 1e-6)

	assert.Equal(t, Vector3{}, Vector3{}.Normalized())
}

func TestVector3SliceRoundTrip(t *testing.T) {
	buf := make([]float32, 6)
	Vec3(1, 2, 3).CopyTo(buf, 3)
	assert.Equal(t, []float32{0, 0, 0, 1, 2, 3}, buf)
	assert.Equal(t, Vec3(1, 2, 3), Vector3FromSlice(buf, 3))
}

func TestVector3Rotated(t *testing.T) {
	v := Vec3(1, 0, 0).Rotated(Vec3(0, 0, 2), Radians(90))
	assert.InDelta(t, 0, v.X, 1e-6)
	assert.InDelta(t, 1, v.Y, 1e-6)
	assert.InDelta(t, 0, v.Z, 1e-6)

	assert.Equal(t, Vec3(1, 2, 3), Vec3(1, 2, 3).Rotated(Vector3{}, 1))
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3(0, 0, 18)
	view := LookAt(eye, Vec3(0, 4, 0), Vec3(0, 1, 0))

	p, w := view.Transform(eye)
	assert.InDelta(t, 0, p.X, 1e-4)
	assert.InDelta(t, 0, p.Y, 1e-4)
	assert.InDelta(t, 0, p.Z, 1e-4)
	assert.Equal(t, float32(1), w)

	// The target sits straight ahead, down the -Z axis.
	target, _ := view.Transform(Vec3(0, 4, 0))
	assert.InDelta(t, 0, target.X, 1e-4)
	assert.InDelta(t, 0, target.Y, 1e-4)
	assert.Less(t, target.Z, float32(0))
}

func TestMatrixInvert(t *testing.T) {
	view := LookAt(Vec3(3, 2, 9), Vec3(0, 0, 0), Vec3(0, 1, 0))
	inv, ok := view.Invert()
	require.True(t, ok)

	product := view.Mul(inv)
	identity := Identity4()
	for i := range product {
		assert.InDelta(t, identity[i], product[i], 1e-5, "element %d", i)
	}

	_, ok = Matrix4{}.Invert()
	assert.False(t, ok)
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(Radians(60), 16.0/9.0, 0.1, 100)

	near, w := proj.Transform(Vec3(0, 0, -0.1))
	assert.InDelta(t, 0, near.Z/w, 1e-5)

	far, w := proj.Transform(Vec3(0, 0, -100))
	assert.InDelta(t, 1, far.Z/w, 1e-5)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
}

func TestColorBytes(t *testing.T) {
	assert.Equal(t, [3]byte{255, 0, 128}, RGB(1, -0.5, 0.5).Bytes())
}
