package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BufferWrite describes a single GPU buffer write targeting a binding of a BindGroupProvider
// at a byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Apply performs the write with the given write function, typically wrapping Queue.WriteBuffer.
// Writes to a binding without a buffer are skipped and reported as false.
func (w BufferWrite) Apply(write func(buf *wgpu.Buffer, offset uint64, data []byte)) bool {
	if w.Provider == nil {
		return false
	}
	buf := w.Provider.Buffer(w.Binding)
	if buf == nil {
		return false
	}
	write(buf, w.Offset, w.Data)
	return true
}
