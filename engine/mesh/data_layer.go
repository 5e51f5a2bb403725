package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Elements says which id space a data layer is indexed by.
type Elements int

const (
	PerVertex Elements = iota
	PerEdge
	PerFace
)

func (e Elements) String() string {
	switch e {
	case PerVertex:
		return "per vertex"
	case PerEdge:
		return "per edge"
	case PerFace:
		return "per face"
	default:
		return fmt.Sprintf("elements(%d)", int(e))
	}
}

// LayerType is the full type of a data layer: element layout plus indexing.
type LayerType struct {
	Data     common.ArrayType
	Elements Elements
}

func (t LayerType) String() string {
	return fmt.Sprintf("%s %s", t.Data, t.Elements)
}

var (
	OneFloatPerVertex    = LayerType{common.OneFloat, PerVertex}
	TwoFloatsPerVertex   = LayerType{common.TwoFloats, PerVertex}
	ThreeFloatsPerVertex = LayerType{common.ThreeFloats, PerVertex}

	OneFloatPerEdge = LayerType{common.OneFloat, PerEdge}

	OneIntegerPerFace   = LayerType{common.OneInteger, PerFace}
	FourIntegersPerFace = LayerType{common.FourIntegers, PerFace}
	SixFloatsPerFace    = LayerType{common.SixFloats, PerFace}
)

// DataLayer is a named array attached to a mesh. Its element count always equals the
// number of reserved ids of its Elements kind; entries for disconnected ids are unspecified.
type DataLayer struct {
	Name string
	Type LayerType
	Data *common.DataArray
}

func (m *mesh) idsFor(e Elements) *idManager {
	switch e {
	case PerEdge:
		return &m.edgeIDs
	case PerFace:
		return &m.faceIDs
	default:
		return &m.vertexIDs
	}
}

func (m *mesh) CreateDataLayer(name string, t LayerType) (*DataLayer, error) {
	if _, ok := m.layers[name]; ok {
		return nil, fmt.Errorf("create %q: %w", name, ErrLayerExists)
	}
	if t.Elements < PerVertex || t.Elements > PerFace {
		return nil, fmt.Errorf("create %q: unknown elements %s: %w", name, t.Elements, ErrLayerTypeMismatch)
	}
	layer := &DataLayer{Name: name, Type: t, Data: common.NewDataArray(t.Data)}
	m.idsFor(t.Elements).attach(layer.Data)
	m.layers[name] = layer
	return layer, nil
}

func (m *mesh) DataLayer(name string, t LayerType) (*DataLayer, error) {
	layer, ok := m.layers[name]
	if !ok {
		return nil, fmt.Errorf("layer %q: %w", name, ErrLayerNotFound)
	}
	if layer.Type != t {
		return nil, fmt.Errorf("layer %q is %s, want %s: %w", name, layer.Type, t, ErrLayerTypeMismatch)
	}
	return layer, nil
}

func (m *mesh) DestroyDataLayer(name string) bool {
	layer, ok := m.layers[name]
	if !ok {
		return false
	}
	m.idsFor(layer.Type.Elements).detach(layer.Data)
	delete(m.layers, name)
	return true
}
