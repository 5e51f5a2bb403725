package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProviderEmpty(t *testing.T) {
	p := NewBindGroupProvider("uniforms")

	assert.Equal(t, "uniforms", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.Texture(0))
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Sampler(1))

	// releasing a provider that never allocated anything is a no-op
	p.Release()
	p.Release()
}

func TestBufferWriteSkipsMissingBuffer(t *testing.T) {
	called := false
	w := BufferWrite{Provider: NewBindGroupProvider("empty"), Binding: 0, Data: []byte{1}}
	assert.False(t, w.Apply(func(*wgpu.Buffer, uint64, []byte) { called = true }))
	assert.False(t, called)

	assert.False(t, BufferWrite{}.Apply(func(*wgpu.Buffer, uint64, []byte) { called = true }))
	assert.False(t, called)
}
