package shader

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// typeLayout is the size and alignment of a host-shareable type.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type typeLayout struct {
	size  uint64
	align uint64
}

// scalarLayout handles the 4 byte scalars and vectors of them, in both long and shorthand
// spellings ("vec3<f32>", "vec3f").
func scalarLayout(typ string) (typeLayout, bool) {
	switch typ {
	case "f32", "i32", "u32", "bool":
		return typeLayout{4, 4}, true
	}
	if !strings.HasPrefix(typ, "vec") || len(typ) < 4 {
		return typeLayout{}, false
	}
	elem := typ[4:]
	if elem != "f" && elem != "i" && elem != "u" && elem != "<f32>" && elem != "<i32>" && elem != "<u32>" {
		return typeLayout{}, false
	}
	switch typ[3] {
	case '2':
		return typeLayout{8, 8}, true
	case '3':
		return typeLayout{12, 16}, true
	case '4':
		return typeLayout{16, 16}, true
	}
	return typeLayout{}, false
}

// matrixLayout handles matCxR<f32>: C columns, each a vecR<f32>.
func matrixLayout(typ string) (typeLayout, bool) {
	var dims string
	switch {
	case strings.HasPrefix(typ, "mat") && strings.HasSuffix(typ, "<f32>"):
		dims = strings.TrimSuffix(typ[3:], "<f32>")
	case strings.HasPrefix(typ, "mat") && strings.HasSuffix(typ, "f"):
		dims = strings.TrimSuffix(typ[3:], "f")
	default:
		return typeLayout{}, false
	}
	if len(dims) != 3 || dims[1] != 'x' {
		return typeLayout{}, false
	}
	cols, rows := int(dims[0]-'0'), int(dims[2]-'0')
	if cols < 2 || cols > 4 || rows < 2 || rows > 4 {
		return typeLayout{}, false
	}
	column, _ := scalarLayout("vec" + dims[2:] + "f")
	return typeLayout{uint64(cols) * roundUp(column.align, column.size), column.align}, true
}

func roundUp(align, n uint64) uint64 {
	if align == 0 {
		return n
	}
	return (n + align - 1) / align * align
}

// layoutOf resolves a type against the built-in types and the module's structs. Fixed size
// arrays use the 16 byte element stride required in the uniform address space; runtime
// sized arrays do not resolve.
func (m *wgslModule) layoutOf(typ string, visiting map[string]bool) (typeLayout, bool) {
	if l, ok := scalarLayout(typ); ok {
		return l, true
	}
	if l, ok := matrixLayout(typ); ok {
		return l, true
	}
	if inner, ok := strings.CutPrefix(typ, "array<"); ok && strings.HasSuffix(inner, ">") {
		inner = inner[:len(inner)-1]
		comma := strings.LastIndex(inner, ",")
		if comma < 0 {
			return typeLayout{}, false
		}
		count, err := strconv.ParseUint(inner[comma+1:], 10, 64)
		if err != nil {
			return typeLayout{}, false
		}
		elem, ok := m.layoutOf(inner[:comma], visiting)
		if !ok {
			return typeLayout{}, false
		}
		align := max(elem.align, 16)
		return typeLayout{count * roundUp(align, elem.size), align}, true
	}
	l, _, ok := m.structLayout(typ, visiting)
	return l, ok
}

// structLayout places each non-builtin member at its next aligned offset and rounds the
// total up to the largest member alignment.
func (m *wgslModule) structLayout(name string, visiting map[string]bool) (typeLayout, map[string]uint64, bool) {
	st, ok := m.structs[name]
	if !ok || visiting[name] {
		return typeLayout{}, nil, false
	}
	if visiting == nil {
		visiting = make(map[string]bool)
	}
	visiting[name] = true
	defer delete(visiting, name)

	offsets := make(map[string]uint64, len(st.members))
	var end uint64
	align := uint64(1)
	for _, member := range st.members {
		if member.builtin {
			continue
		}
		l, ok := m.layoutOf(member.typ, visiting)
		if !ok {
			return typeLayout{}, nil, false
		}
		offset := roundUp(l.align, end)
		offsets[member.name] = offset
		end = offset + l.size
		align = max(align, l.align)
	}
	return typeLayout{roundUp(align, end), align}, offsets, true
}

// vertexFormat maps a @location member type to its vertex format and byte size.
func vertexFormat(typ string) (wgpu.VertexFormat, uint64, bool) {
	l, ok := scalarLayout(typ)
	if !ok || typ == "bool" {
		return wgpu.VertexFormatUndefined, 0, false
	}
	var kind byte
	switch {
	case len(typ) == 3: // f32, i32, u32
		kind = typ[0]
	case strings.HasSuffix(typ, ">"): // vecN<T32>
		kind = typ[5]
	default: // vecNT
		kind = typ[4]
	}
	formats := vertexFormats[kind]
	return formats[l.size/4-1], l.size, true
}

var vertexFormats = map[byte][4]wgpu.VertexFormat{
	'f': {wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4},
	'i': {wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4},
	'u': {wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4},
}

// layoutEntry builds the bind group layout entry for a resource binding. Buffers are told
// apart by address space; handle types cover filtering samplers and 2D float textures.
func (b wgslBinding) layoutEntry(visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(b.binding),
		Visibility: visibility,
	}
	switch {
	case b.space == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case b.space == "storage" && b.access == "read_write":
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
	case b.space == "storage":
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case b.typ == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case strings.HasPrefix(b.typ, "texture_2d"):
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
	}
	return entry
}

// bindGroupLayouts groups the module's resource bindings by group index, entries sorted by
// binding, and records each binding's variable name.
func (m *wgslModule) bindGroupLayouts(visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, b := range m.bindings {
		entry := b.layoutEntry(visibility)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := m.layoutOf(b.typ, nil); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[b.group] = append(entries[b.group], entry)
		if names[b.group] == nil {
			names[b.group] = make(map[int]string)
		}
		names[b.group][b.binding] = b.name
	}

	layouts := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for group, list := range entries {
		slices.SortFunc(list, func(a, b wgpu.BindGroupLayoutEntry) int {
			return cmp.Compare(a.Binding, b.Binding)
		})
		layouts[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return layouts, names
}
