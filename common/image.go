package common

import "fmt"

// Image is a width x height grid of texels stored row-major in a DataArray.
// Samplers upload the Data array as-is; THREE_BYTES (RGB) images are expanded to RGBA by the backend.
type Image struct {
	Width  int
	Height int
	Data   *DataArray
}

// NewRGBImage allocates a width x height THREE_BYTES image filled with black.
func NewRGBImage(width, height int) *Image {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("image: invalid size %dx%d", width, height))
	}
	data := NewDataArray(ThreeBytes)
	data.SetNumElements(width * height)
	return &Image{Width: width, Height: height, Data: data}
}

// SetRGB writes the texel at (x, y). Out of range coordinates are ignored.
func (img *Image) SetRGB(x, y int, c Color) {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return
	}
	b := img.Data.Bytes()
	if b == nil {
		return
	}
	rgb := c.Bytes()
	copy(b[(y*img.Width+x)*3:], rgb[:])
}

// RGBA returns the texels as tightly packed 8-bit RGBA with opaque alpha.
// Float images are quantized, integer images are clamped to [0, 255].
func (img *Image) RGBA() []byte {
	n := img.Width * img.Height
	out := make([]byte, 0, n*4)
	if img.Data == nil {
		return out
	}
	ppe := img.Data.Type().PrimitivesPerElement
	for i := 0; i < n && i < img.Data.NumElements(); i++ {
		var px [4]byte
		px[3] = 255
		for c := 0; c < ppe && c < 4; c++ {
			j := i*ppe + c
			switch img.Data.Type().Primitive {
			case PrimitiveBytes:
				px[c] = img.Data.Bytes()[j]
			case PrimitiveFloats:
				px[c] = byte(Clamp(img.Data.Floats()[j], 0, 1)*255 + 0.5)
			case PrimitiveIntegers:
				px[c] = byte(min(max(img.Data.Integers()[j], 0), 255))
			}
		}
		if ppe == 1 {
			px[1], px[2] = px[0], px[0]
		}
		out = append(out, px[:]...)
	}
	return out
}
