package mesh

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// idManager hands out dense integer ids, reusing released ones first,
// and keeps every attached array sized to the number of reserved ids.
type idManager struct {
	numReserved int
	released    []int
	arrays      []*common.DataArray
}

func (m *idManager) newID() int {
	if n := len(m.released); n > 0 {
		id := m.released[n-1]
		m.released = m.released[:n-1]
		return id
	}
	m.numReserved++
	m.resize()
	return m.numReserved - 1
}

func (m *idManager) release(id int) {
	m.released = append(m.released, id)
}

func (m *idManager) attach(a *common.DataArray) {
	a.SetNumElements(m.numReserved)
	m.arrays = append(m.arrays, a)
}

func (m *idManager) detach(a *common.DataArray) {
	m.arrays = slices.DeleteFunc(m.arrays, func(x *common.DataArray) bool { return x == a })
}

func (m *idManager) reset() {
	m.numReserved = 0
	m.released = m.released[:0]
	m.resize()
}

func (m *idManager) resize() {
	for _, a := range m.arrays {
		a.SetNumElements(m.numReserved)
	}
}
