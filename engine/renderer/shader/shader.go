package shader

import (
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

//go:embed wgsl/*.wgsl
var sources embed.FS

const (
	// UniformGroup is the bind group index holding a program's uniform block.
	UniformGroup = 0

	// UniformBinding is the binding index of the uniform block within UniformGroup.
	UniformBinding = 0

	// BorderThicknessField is the uniform field fed from FlatBordered.BorderThickness rather than a binding.
	BorderThicknessField = "borderThickness"

	spirvMagic = 0x07230203
)

var (
	// ErrUnknownProgram is returned when no WGSL source exists for a shader spec.
	ErrUnknownProgram = errors.New("shader: unknown program")

	// ErrNoVertexInput is returned when a program declares no usable vertex input struct.
	ErrNoVertexInput = errors.New("shader: no vertex input struct")

	// ErrNoUniforms is returned when a program has no uniform block at the expected binding.
	ErrNoUniforms = errors.New("shader: no uniform block")

	// ErrCompile is returned when the WGSL source fails to compile.
	ErrCompile = errors.New("shader: compile failed")
)

// Attribute describes one vertex attribute of a program. Each attribute is fed from its own
// vertex buffer; Slot is the vertex buffer slot and Name matches the bound variable name.
type Attribute struct {
	Name     string
	Slot     uint32
	Location uint32
	Format   wgpu.VertexFormat
	Stride   uint64
}

// Layout returns the single-attribute vertex buffer layout for the attribute's slot.
func (a Attribute) Layout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: a.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{{
			Format:         a.Format,
			Offset:         0,
			ShaderLocation: a.Location,
		}},
	}
}

// Program holds everything parsed from a program's WGSL source that a backend needs to build
// a pipeline and feed it: entry points, vertex attributes, the uniform block layout and the
// bind group layout descriptors.
type Program interface {
	// Key returns the program name, matching rendering.ShaderSpec.Name.
	Key() string

	// Source returns the WGSL source code.
	Source() string

	// Module returns a shader module descriptor for the WGSL source.
	Module() *wgpu.ShaderModuleDescriptor

	// VertexEntryPoint returns the @vertex function name.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the @fragment function name.
	FragmentEntryPoint() string

	// Attributes returns the vertex attributes in slot order.
	Attributes() []Attribute

	// Attribute looks up a vertex attribute by name.
	Attribute(name string) (Attribute, bool)

	// VertexLayouts returns one vertex buffer layout per slot.
	VertexLayouts() []wgpu.VertexBufferLayout

	// UniformSize returns the byte size of the uniform block.
	UniformSize() uint64

	// UniformOffset returns the byte offset of a uniform field. ok is false when the program
	// does not declare the field.
	UniformOffset(field string) (offset uint64, ok bool)

	// BindGroupLayoutDescriptors returns the parsed bind group layouts keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable name at a group and binding, or "".
	BindGroupVarName(group, binding int) string
}

type program struct {
	key                        string
	source                     string
	vertexEntry                string
	fragmentEntry              string
	attributes                 []Attribute
	uniformSize                uint64
	uniformOffsets             map[string]uint64
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
}

var _ Program = &program{}

// NewProgram parses WGSL source into a Program. The source must declare a vertex input struct,
// a uniform block at group UniformGroup binding UniformBinding, and both entry points.
//
// Parameters:
//   - key: the program name
//   - source: the WGSL source code
//
// Returns:
//   - Program: the parsed program
//   - error: ErrNoVertexInput, ErrNoUniforms or a missing entry point error
func NewProgram(key, source string) (Program, error) {
	m, err := parseModule(source)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}
	p := &program{
		key:           key,
		source:        source,
		vertexEntry:   m.entryPoint(wgpu.ShaderStageVertex),
		fragmentEntry: m.entryPoint(wgpu.ShaderStageFragment),
	}
	if p.vertexEntry == "" || p.fragmentEntry == "" {
		return nil, fmt.Errorf("shader %q: missing vertex or fragment entry point", key)
	}

	if p.attributes, err = m.vertexAttributes(); err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}

	var ok bool
	if p.uniformSize, p.uniformOffsets, ok = m.uniformBlock(UniformGroup, UniformBinding); !ok {
		return nil, fmt.Errorf("shader %q: %w", key, ErrNoUniforms)
	}

	p.bindGroupLayoutDescriptors, p.bindingVarNames = m.bindGroupLayouts(wgpu.ShaderStageVertex | wgpu.ShaderStageFragment)
	return p, nil
}

var (
	programCache   = map[string]Program{}
	programCacheMu sync.Mutex
)

// ForSpec returns the built-in program implementing a shader spec. Programs are parsed once
// and cached by name.
func ForSpec(spec rendering.ShaderSpec) (Program, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spec", ErrUnknownProgram)
	}
	name := spec.Name()

	programCacheMu.Lock()
	defer programCacheMu.Unlock()
	if p, ok := programCache[name]; ok {
		return p, nil
	}

	src, err := sources.ReadFile("wgsl/" + name + ".wgsl")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, name)
	}
	p, err := NewProgram(name, string(src))
	if err != nil {
		return nil, err
	}
	if err := checkInputs(p, spec); err != nil {
		return nil, err
	}
	programCache[name] = p
	return p, nil
}

// checkInputs verifies that every vertex buffer input of the spec has an attribute and every
// uniform input has a field in the program.
func checkInputs(p Program, spec rendering.ShaderSpec) error {
	for _, in := range spec.Inputs() {
		v := in.Variable
		if v.Kind == rendering.ValueVertexBuffer {
			if _, ok := p.Attribute(v.Name); !ok {
				return fmt.Errorf("shader %q: no vertex attribute for input %q", p.Key(), v.Name)
			}
			continue
		}
		if v.Kind == rendering.ValueSampler {
			continue
		}
		if _, ok := p.UniformOffset(v.Name); !ok {
			return fmt.Errorf("shader %q: no uniform field for input %q", p.Key(), v.Name)
		}
	}
	return nil
}

// Validate compiles the program source to SPIR-V with naga, catching WGSL errors before a
// GPU device is involved.
func Validate(p Program) error {
	spirv, err := naga.Compile(p.Source())
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCompile, p.Key(), err)
	}
	if len(spirv) < 4 {
		return fmt.Errorf("%w: %s: empty SPIR-V output", ErrCompile, p.Key())
	}
	magic := uint32(spirv[0]) | uint32(spirv[1])<<8 | uint32(spirv[2])<<16 | uint32(spirv[3])<<24
	if magic != spirvMagic {
		return fmt.Errorf("%w: %s: bad SPIR-V magic %#x", ErrCompile, p.Key(), magic)
	}
	return nil
}

func (p *program) Key() string                { return p.key }
func (p *program) Source() string             { return p.source }
func (p *program) VertexEntryPoint() string   { return p.vertexEntry }
func (p *program) FragmentEntryPoint() string { return p.fragmentEntry }
func (p *program) UniformSize() uint64        { return p.uniformSize }

func (p *program) Module() *wgpu.ShaderModuleDescriptor {
	return &wgpu.ShaderModuleDescriptor{
		Label:          p.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: p.source},
	}
}

func (p *program) Attributes() []Attribute {
	out := make([]Attribute, len(p.attributes))
	copy(out, p.attributes)
	return out
}

func (p *program) Attribute(name string) (Attribute, bool) {
	for _, a := range p.attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

func (p *program) VertexLayouts() []wgpu.VertexBufferLayout {
	layouts := make([]wgpu.VertexBufferLayout, len(p.attributes))
	for i, a := range p.attributes {
		layouts[i] = a.Layout()
	}
	return layouts
}

func (p *program) UniformOffset(field string) (uint64, bool) {
	off, ok := p.uniformOffsets[field]
	return off, ok
}

func (p *program) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.bindGroupLayoutDescriptors
}

func (p *program) BindGroupVarName(group, binding int) string {
	if names, ok := p.bindingVarNames[group]; ok {
		return names[binding]
	}
	return ""
}
