package common

import "fmt"

// Primitive identifies the scalar storage of a DataArray.
type Primitive int

const (
	PrimitiveIntegers Primitive = iota
	PrimitiveFloats
	PrimitiveBytes
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveIntegers:
		return "integers"
	case PrimitiveFloats:
		return "floats"
	case PrimitiveBytes:
		return "bytes"
	default:
		return fmt.Sprintf("primitive(%d)", int(p))
	}
}

// Size returns the byte size of one primitive.
func (p Primitive) Size() int {
	if p == PrimitiveBytes {
		return 1
	}
	return 4
}

// ArrayType describes the element layout of a DataArray: how many primitives make one element.
type ArrayType struct {
	PrimitivesPerElement int
	Primitive            Primitive
}

var (
	OneInteger    = ArrayType{1, PrimitiveIntegers}
	TwoIntegers   = ArrayType{2, PrimitiveIntegers}
	ThreeIntegers = ArrayType{3, PrimitiveIntegers}
	FourIntegers  = ArrayType{4, PrimitiveIntegers}

	OneFloat      = ArrayType{1, PrimitiveFloats}
	TwoFloats     = ArrayType{2, PrimitiveFloats}
	ThreeFloats   = ArrayType{3, PrimitiveFloats}
	FourFloats    = ArrayType{4, PrimitiveFloats}
	SixFloats     = ArrayType{6, PrimitiveFloats}
	NineFloats    = ArrayType{9, PrimitiveFloats}
	SixteenFloats = ArrayType{16, PrimitiveFloats}

	ThreeBytes = ArrayType{3, PrimitiveBytes}
)

func (t ArrayType) String() string {
	return fmt.Sprintf("%d %s", t.PrimitivesPerElement, t.Primitive)
}

// ElementSize returns the byte size of one element.
func (t ArrayType) ElementSize() int {
	return t.PrimitivesPerElement * t.Primitive.Size()
}

const initialArrayCapacity = 4

// DataArray is a typed, growable flat array. Only the slice matching its primitive is allocated.
// A DataArray is not safe for concurrent use; the owner of the structure holding it
// serializes access.
type DataArray struct {
	typ         ArrayType
	numElements int

	ints   []int32
	floats []float32
	bytes  []byte
}

// NewDataArray creates an empty DataArray of the given type.
//
// Parameters:
//   - t: the element layout; PrimitivesPerElement must be positive
//
// Returns:
//   - *DataArray: the new, empty array
func NewDataArray(t ArrayType) *DataArray {
	if t.PrimitivesPerElement <= 0 {
		panic(fmt.Sprintf("data array: invalid primitives per element %d", t.PrimitivesPerElement))
	}
	a := &DataArray{typ: t}
	n := t.PrimitivesPerElement * initialArrayCapacity
	switch t.Primitive {
	case PrimitiveIntegers:
		a.ints = make([]int32, n)
	case PrimitiveFloats:
		a.floats = make([]float32, n)
	case PrimitiveBytes:
		a.bytes = make([]byte, n)
	default:
		panic(fmt.Sprintf("data array: unknown primitive %d", int(t.Primitive)))
	}
	return a
}

// NewFloatArray creates a float DataArray holding a copy of values.
// len(values) must be a multiple of primitivesPerElement.
func NewFloatArray(primitivesPerElement int, values ...float32) *DataArray {
	a := NewDataArray(ArrayType{primitivesPerElement, PrimitiveFloats})
	a.SetNumElements(len(values) / primitivesPerElement)
	copy(a.floats, values)
	return a
}

func (a *DataArray) Type() ArrayType {
	return a.typ
}

func (a *DataArray) NumElements() int {
	return a.numElements
}

// Len returns the number of primitives in use (elements times primitives per element).
func (a *DataArray) Len() int {
	return a.numElements * a.typ.PrimitivesPerElement
}

// ByteLen returns the byte size of the elements in use.
func (a *DataArray) ByteLen() int {
	return a.numElements * a.typ.ElementSize()
}

// SetNumElements resizes the array. Storage grows by doubling and existing content is kept.
func (a *DataArray) SetNumElements(n int) {
	if n < 0 {
		n = 0
	}
	needed := n * a.typ.PrimitivesPerElement
	switch a.typ.Primitive {
	case PrimitiveIntegers:
		a.ints = grow(a.ints, needed, a.Len())
	case PrimitiveFloats:
		a.floats = grow(a.floats, needed, a.Len())
	case PrimitiveBytes:
		a.bytes = grow(a.bytes, needed, a.Len())
	}
	a.numElements = n
}

func grow[T any](s []T, needed, inUse int) []T {
	if len(s) >= needed {
		return s
	}
	newLen := max(len(s), 1)
	for newLen < needed {
		newLen *= 2
	}
	out := make([]T, newLen)
	copy(out, s[:inUse])
	return out
}

// Floats returns the in-use float storage, or nil if the array does not hold floats.
// The slice aliases the array.
func (a *DataArray) Floats() []float32 {
	if a.typ.Primitive != PrimitiveFloats {
		return nil
	}
	return a.floats[:a.Len()]
}

// Integers returns the in-use integer storage, or nil if the array does not hold integers.
func (a *DataArray) Integers() []int32 {
	if a.typ.Primitive != PrimitiveIntegers {
		return nil
	}
	return a.ints[:a.Len()]
}

// Bytes returns the in-use byte storage, or nil if the array does not hold bytes.
func (a *DataArray) Bytes() []byte {
	if a.typ.Primitive != PrimitiveBytes {
		return nil
	}
	return a.bytes[:a.Len()]
}

// RawBytes returns a byte view over the in-use elements regardless of primitive,
// in native byte order. The view aliases the array.
func (a *DataArray) RawBytes() []byte {
	switch a.typ.Primitive {
	case PrimitiveIntegers:
		return SliceToBytes(a.Integers())
	case PrimitiveFloats:
		return SliceToBytes(a.Floats())
	default:
		return a.Bytes()
	}
}

// Clone returns a deep copy trimmed to the elements in use.
func (a *DataArray) Clone() *DataArray {
	c := &DataArray{typ: a.typ, numElements: a.numElements}
	switch a.typ.Primitive {
	case PrimitiveIntegers:
		c.ints = append([]int32(nil), a.Integers()...)
	case PrimitiveFloats:
		c.floats = append([]float32(nil), a.Floats()...)
	case PrimitiveBytes:
		c.bytes = append([]byte(nil), a.Bytes()...)
	}
	return c
}
