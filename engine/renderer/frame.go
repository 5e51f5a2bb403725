package renderer

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
)

func (r *renderer) Render(width, height int) error {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()

	if r.released {
		return ErrReleased
	}

	var (
		stats   FrameStats
		errs    []error
		uploads []upload
	)

	if r.desc != nil {
		r.desc.Read(func(s rendering.Snapshot) {
			r.drain()
			uploads = r.collectUploads(s)
			if r.commandsDirty {
				r.commands = s.Commands()
				r.commandsDirty = false
			}
		})
	} else {
		r.drain()
	}

	r.destroyRetired(&stats)
	for _, u := range uploads {
		if err := r.apply(u, &stats); err != nil {
			errs = append(errs, err)
		}
	}

	if r.desc != nil && width > 0 && height > 0 {
		errs = append(errs, r.draw(width, height, &stats)...)
	}

	stats.Errors = len(errs)
	r.mu.Lock()
	r.lastStats = stats
	r.mu.Unlock()
	return errors.Join(errs...)
}

// collectUploads copies the descriptor data of every shadow awaiting creation or update.
// Runs with the descriptor lock held.
func (r *renderer) collectUploads(s rendering.Snapshot) []upload {
	var uploads []upload
	for _, sh := range r.shadows {
		if !sh.needsUpdate {
			continue
		}
		u := upload{shadow: sh}
		switch sh.kind {
		case rendering.KindVertexBuffer:
			arr, ok := s.VertexBuffer(sh.key)
			if !ok {
				continue
			}
			u.data = slices.Clone(arr.RawBytes())
			u.numElements = arr.NumElements()
			u.arrayType = arr.Type()
		case rendering.KindSampler:
			img, ok := s.Sampler(sh.key)
			if !ok {
				continue
			}
			u.data = img.RGBA()
			u.width, u.height = img.Width, img.Height
		case rendering.KindShader:
			spec, ok := s.Shader(sh.key)
			if !ok {
				continue
			}
			u.spec = spec
		}
		uploads = append(uploads, u)
	}
	// deterministic backend call order
	sort.Slice(uploads, func(i, j int) bool {
		a, b := uploads[i].shadow, uploads[j].shadow
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.key < b.key
	})
	return uploads
}

// apply creates or updates the native resource of one shadow. On failure the shadow keeps
// its previous handle and stays pending so the next frame retries.
func (r *renderer) apply(u upload, stats *FrameStats) error {
	sh := u.shadow
	var err error
	switch sh.kind {
	case rendering.KindVertexBuffer:
		err = r.applyBuffer(sh, u, stats)
	case rendering.KindSampler:
		err = r.applyTexture(sh, u, stats)
	case rendering.KindShader:
		err = r.applyProgram(sh, u, stats)
	}
	if err != nil {
		common.Logger().Debug("renderer: upload failed", "resource", sh.shadowKey, "err", err)
		return fmt.Errorf("%w: %s: %w", ErrBackendAllocation, sh.shadowKey, err)
	}
	sh.needsUpdate = false
	common.Logger().Debug("renderer: shadow live", "resource", sh.shadowKey, "bytes", sh.byteSize)
	return nil
}

func (r *renderer) applyBuffer(sh *shadow, u upload, stats *FrameStats) error {
	if sh.handle != nil && sh.byteSize == len(u.data) {
		if err := r.backend.WriteBuffer(sh.handle, 0, u.data); err != nil {
			return err
		}
		stats.Updates++
	} else {
		h, err := r.backend.CreateBuffer(u.data)
		if err != nil {
			return err
		}
		if sh.handle != nil {
			r.backend.DestroyBuffer(sh.handle)
			stats.Destroys++
		}
		sh.handle = h
		sh.byteSize = len(u.data)
		stats.Creates++
	}
	sh.numElements = u.numElements
	sh.arrayType = u.arrayType
	return nil
}

func (r *renderer) applyTexture(sh *shadow, u upload, stats *FrameStats) error {
	if sh.handle != nil && sh.width == u.width && sh.height == u.height {
		if err := r.backend.WriteTexture(sh.handle, u.width, u.height, u.data); err != nil {
			return err
		}
		stats.Updates++
		return nil
	}
	h, err := r.backend.CreateTexture(u.width, u.height, u.data)
	if err != nil {
		return err
	}
	if sh.handle != nil {
		r.backend.DestroyTexture(sh.handle)
		stats.Destroys++
	}
	sh.handle = h
	sh.width, sh.height = u.width, u.height
	sh.byteSize = len(u.data)
	stats.Creates++
	return nil
}

// applyProgram always rebuilds: a changed spec means a different program.
func (r *renderer) applyProgram(sh *shadow, u upload, stats *FrameStats) error {
	h, err := r.backend.CreateProgram(u.spec)
	if err != nil {
		return err
	}
	if sh.handle != nil {
		r.backend.DestroyProgram(sh.handle)
		stats.Destroys++
	}
	sh.handle = h
	sh.spec = u.spec
	stats.Creates++
	return nil
}

// draw interprets the command list inside one backend frame.
func (r *renderer) draw(width, height int, stats *FrameStats) []error {
	if err := r.backend.BeginFrame(width, height); err != nil {
		return []error{fmt.Errorf("renderer: begin frame: %w", err)}
	}

	var errs []error
	bound := make(map[rendering.Variable]rendering.Value)
interpret:
	for i, cmd := range r.commands {
		switch c := cmd.(type) {
		case rendering.Binding:
			bound[c.Variable] = c.Value
		case rendering.Execute:
			err := r.execute(i, c, bound)
			if err == nil {
				stats.Draws++
				continue
			}
			stats.SkippedDraws++
			errs = append(errs, err)
			common.Logger().Warn("renderer: draw skipped", "err", err, "policy", r.policy)
			if r.policy == FailurePolicyAbortFrame {
				break interpret
			}
		}
	}

	if err := r.backend.EndFrame(); err != nil {
		errs = append(errs, fmt.Errorf("renderer: end frame: %w", err))
	}
	return errs
}

// execute resolves one Execute against the live shadows and issues its draw.
func (r *renderer) execute(index int, c rendering.Execute, bound map[rendering.Variable]rendering.Value) error {
	fail := func(variable string, err error) error {
		return &DrawError{Index: index, Shader: c.Shader, Variable: variable, Err: err}
	}

	program, ok := r.shadows[shadowKey{rendering.KindShader, c.Shader}]
	if !ok || !program.live() {
		return fail("", ErrUnknownShader)
	}

	call := DrawCall{
		Program:     program.handle,
		Shader:      program.spec,
		Values:      make([]ResolvedValue, 0, len(bound)),
		VertexCount: 3 * c.Triangles,
	}

	// resolve in name order so the reported failure does not depend on map order
	for _, variable := range sortedVariables(bound) {
		value := bound[variable]
		rv := ResolvedValue{Variable: variable, Value: value}
		if kind, isResource := value.ResourceKind(); isResource {
			res, ok := r.shadows[shadowKey{kind, value.Key}]
			if !ok || !res.live() {
				return fail(variable.Name, fmt.Errorf("%w: %s #%d", ErrUnknownResource, kind, value.Key))
			}
			rv.Handle = res.handle
		}
		call.Values = append(call.Values, rv)
	}

	for _, in := range program.spec.Inputs() {
		value, ok := bound[in.Variable]
		if !ok {
			if in.Optional {
				continue
			}
			return fail(in.Variable.Name, fmt.Errorf("%w: %s is not bound", ErrUnknownResource, in.Variable.Name))
		}
		if value.Kind != rendering.ValueVertexBuffer {
			continue
		}
		buf := r.shadows[shadowKey{rendering.KindVertexBuffer, value.Key}]
		if buf.arrayType != in.Variable.Type {
			return fail(in.Variable.Name, fmt.Errorf("%w: buffer #%d is %s, want %s", ErrBufferType, value.Key, buf.arrayType, in.Variable.Type))
		}
		if buf.numElements < call.VertexCount {
			return fail(in.Variable.Name, fmt.Errorf("%w: buffer #%d has %d elements, draw needs %d", ErrBufferTooSmall, value.Key, buf.numElements, call.VertexCount))
		}
	}

	if err := r.backend.Draw(call); err != nil {
		return fail("", err)
	}
	return nil
}

func sortedVariables(bound map[rendering.Variable]rendering.Value) []rendering.Variable {
	vars := make([]rendering.Variable, 0, len(bound))
	for v := range bound {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool {
		if vars[i].Name != vars[j].Name {
			return vars[i].Name < vars[j].Name
		}
		return vars[i].Kind < vars[j].Kind
	})
	return vars
}
