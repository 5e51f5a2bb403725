package shader

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslModule is the part of a WGSL module a backend needs to feed a program: struct
// declarations, resource bindings and entry points. Function bodies are skipped.
type wgslModule struct {
	structs  map[string]wgslStruct
	bindings []wgslBinding
	entries  map[wgpu.ShaderStage]wgslEntry
}

type wgslMember struct {
	name     string
	typ      string
	location int // -1 without @location
	builtin  bool
}

type wgslStruct struct {
	name    string
	members []wgslMember
}

// wgslBinding is a module scope `@group(g) @binding(b) var<space, access> name: typ;`.
type wgslBinding struct {
	group   int
	binding int
	space   string
	access  string
	name    string
	typ     string
}

type wgslEntry struct {
	name   string
	params []string // parameter types
}

type wgslAttr struct {
	name string
	args []string
}

// wgslParser walks the token stream of a WGSL source. Types are normalized to their tokens
// joined without spaces, e.g. "array<vec4<f32>,4>".
type wgslParser struct {
	toks []string
	pos  int
}

// tokenize splits WGSL source into identifier, number and punctuation tokens, dropping
// comments. Nested block comments are not supported.
func tokenize(source string) ([]string, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(source))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanComments | scanner.SkipComments
	var scanErr error
	s.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("wgsl %s: %s", s.Pos(), msg)
		}
	}

	var toks []string
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		toks = append(toks, s.TokenText())
	}
	return toks, scanErr
}

// parseModule extracts the declarations of a WGSL source.
func parseModule(source string) (*wgslModule, error) {
	toks, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &wgslParser{toks: toks}
	m := &wgslModule{
		structs: make(map[string]wgslStruct),
		entries: make(map[wgpu.ShaderStage]wgslEntry),
	}

	var attrs []wgslAttr
	for !p.done() {
		switch p.peek() {
		case "@":
			attrs = append(attrs, p.attribute())
			continue
		case "struct":
			p.next()
			st, err := p.structDecl()
			if err != nil {
				return nil, err
			}
			m.structs[st.name] = st
		case "var":
			p.next()
			b, err := p.varDecl(attrs)
			if err != nil {
				return nil, err
			}
			if b != nil {
				m.bindings = append(m.bindings, *b)
			}
		case "fn":
			p.next()
			entry, err := p.function()
			if err != nil {
				return nil, err
			}
			if stage, ok := stageOf(attrs); ok {
				m.entries[stage] = entry
			}
		default:
			p.next()
		}
		attrs = attrs[:0]
	}
	return m, nil
}

func stageOf(attrs []wgslAttr) (wgpu.ShaderStage, bool) {
	for _, a := range attrs {
		switch a.name {
		case "vertex":
			return wgpu.ShaderStageVertex, true
		case "fragment":
			return wgpu.ShaderStageFragment, true
		case "compute":
			return wgpu.ShaderStageCompute, true
		}
	}
	return wgpu.ShaderStageNone, false
}

func (p *wgslParser) done() bool { return p.pos >= len(p.toks) }

func (p *wgslParser) peek() string {
	if p.done() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *wgslParser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *wgslParser) expect(tok string) error {
	if got := p.next(); got != tok {
		return fmt.Errorf("wgsl: expected %q, found %q", tok, got)
	}
	return nil
}

// attribute consumes `@name` or `@name(args)`.
func (p *wgslParser) attribute() wgslAttr {
	p.next()
	a := wgslAttr{name: p.next()}
	if p.peek() != "(" {
		return a
	}
	p.next()
	var arg strings.Builder
	for depth := 0; !p.done(); {
		tok := p.next()
		switch {
		case tok == "(":
			depth++
		case tok == ")" && depth == 0:
			if arg.Len() > 0 {
				a.args = append(a.args, arg.String())
			}
			return a
		case tok == ")":
			depth--
		case tok == "," && depth == 0:
			a.args = append(a.args, arg.String())
			arg.Reset()
			continue
		}
		arg.WriteString(tok)
	}
	return a
}

// typeExpr consumes a type, including any template list.
func (p *wgslParser) typeExpr() string {
	var b strings.Builder
	b.WriteString(p.next())
	if p.peek() != "<" {
		return b.String()
	}
	for depth := 0; !p.done(); {
		tok := p.next()
		b.WriteString(tok)
		if tok == "<" {
			depth++
		} else if tok == ">" {
			depth--
			if depth == 0 {
				break
			}
		}
	}
	return b.String()
}

func (p *wgslParser) structDecl() (wgslStruct, error) {
	st := wgslStruct{name: p.next()}
	if err := p.expect("{"); err != nil {
		return st, fmt.Errorf("struct %s: %w", st.name, err)
	}
	for p.peek() != "}" {
		if p.done() {
			return st, fmt.Errorf("wgsl: struct %s is not closed", st.name)
		}
		member := wgslMember{location: -1}
		for p.peek() == "@" {
			a := p.attribute()
			switch a.name {
			case "builtin":
				member.builtin = true
			case "location":
				if len(a.args) == 1 {
					if loc, err := strconv.Atoi(a.args[0]); err == nil {
						member.location = loc
					}
				}
			}
		}
		member.name = p.next()
		if err := p.expect(":"); err != nil {
			return st, fmt.Errorf("struct %s member %s: %w", st.name, member.name, err)
		}
		member.typ = p.typeExpr()
		st.members = append(st.members, member)
		if p.peek() == "," {
			p.next()
		}
	}
	p.next()
	return st, nil
}

// varDecl parses a module scope variable. Variables without @group and @binding return nil.
func (p *wgslParser) varDecl(attrs []wgslAttr) (*wgslBinding, error) {
	b := wgslBinding{group: -1, binding: -1}
	if p.peek() == "<" {
		p.next()
		b.space = p.next()
		if p.peek() == "," {
			p.next()
			b.access = p.next()
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
	}
	b.name = p.next()
	if err := p.expect(":"); err != nil {
		return nil, fmt.Errorf("var %s: %w", b.name, err)
	}
	b.typ = p.typeExpr()

	for _, a := range attrs {
		if len(a.args) != 1 {
			continue
		}
		n, err := strconv.Atoi(a.args[0])
		if err != nil {
			continue
		}
		switch a.name {
		case "group":
			b.group = n
		case "binding":
			b.binding = n
		}
	}
	if b.group < 0 || b.binding < 0 {
		return nil, nil
	}
	return &b, nil
}

// function parses a function header, records its parameter types and skips the body.
func (p *wgslParser) function() (wgslEntry, error) {
	entry := wgslEntry{name: p.next()}
	if err := p.expect("("); err != nil {
		return entry, fmt.Errorf("fn %s: %w", entry.name, err)
	}
	for p.peek() != ")" && !p.done() {
		for p.peek() == "@" {
			p.attribute()
		}
		p.next()
		if err := p.expect(":"); err != nil {
			return entry, fmt.Errorf("fn %s: %w", entry.name, err)
		}
		entry.params = append(entry.params, p.typeExpr())
		if p.peek() == "," {
			p.next()
		}
	}

	for !p.done() && p.peek() != "{" {
		p.next()
	}
	for depth := 0; !p.done(); {
		switch p.next() {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return entry, nil
			}
		}
	}
	return entry, fmt.Errorf("wgsl: fn %s body is not closed", entry.name)
}

// vertexAttributes returns the @location members of the vertex entry point's struct
// parameters, one vertex buffer slot per attribute in declaration order.
func (m *wgslModule) vertexAttributes() ([]Attribute, error) {
	entry, ok := m.entries[wgpu.ShaderStageVertex]
	if !ok {
		return nil, ErrNoVertexInput
	}

	var attrs []Attribute
	for _, typ := range entry.params {
		st, ok := m.structs[typ]
		if !ok {
			continue
		}
		for _, member := range st.members {
			if member.location < 0 {
				continue
			}
			format, size, ok := vertexFormat(member.typ)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s has unsupported type %s", ErrNoVertexInput, st.name, member.name, member.typ)
			}
			attrs = append(attrs, Attribute{
				Name:     member.name,
				Slot:     uint32(len(attrs)),
				Location: uint32(member.location),
				Format:   format,
				Stride:   size,
			})
		}
	}
	if len(attrs) == 0 {
		return nil, ErrNoVertexInput
	}
	return attrs, nil
}

// uniformBlock returns the layout of the struct bound as var<uniform> at group and binding.
func (m *wgslModule) uniformBlock(group, binding int) (size uint64, offsets map[string]uint64, ok bool) {
	for _, b := range m.bindings {
		if b.group != group || b.binding != binding || b.space != "uniform" {
			continue
		}
		layout, offsets, ok := m.structLayout(b.typ, nil)
		if !ok {
			return 0, nil, false
		}
		return layout.size, offsets, true
	}
	return 0, nil, false
}

func (m *wgslModule) entryPoint(stage wgpu.ShaderStage) string {
	return m.entries[stage].name
}
