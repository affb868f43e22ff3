package exporter

import (
	"errors"
	"fmt"
	"slices"

	"github.com/binzume/glbexport/model"
)

var (
	ErrDuplicateSparseIndex = errors.New("exporter: duplicate sparse index")
	ErrSparseIndexRange     = errors.New("exporter: sparse index out of range")
)

// SparseBuilder collects overrides against a base array of vectors.
type SparseBuilder struct {
	count  int
	base   *bounds
	values map[uint32][3]float32
}

// NewSparseBuilder records the bounds of base; base itself is not retained.
func NewSparseBuilder(base [][3]float32) *SparseBuilder {
	b := newBounds(3)
	for _, v := range base {
		b.add(v[:]...)
	}
	return &SparseBuilder{count: len(base), base: b, values: map[uint32][3]float32{}}
}

// Add overrides element index with value. Each index may be added once.
func (s *SparseBuilder) Add(value [3]float32, index uint32) error {
	if int(index) >= s.count {
		return fmt.Errorf("%w: %d >= %d", ErrSparseIndexRange, index, s.count)
	}
	if _, ok := s.values[index]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateSparseIndex, index)
	}
	s.values[index] = value
	return nil
}

// Count returns the number of elements of the logical array.
func (s *SparseBuilder) Count() int {
	return s.count
}

// Len returns the number of overrides.
func (s *SparseBuilder) Len() int {
	return len(s.values)
}

// Build returns the overrides ordered by ascending index.
func (s *SparseBuilder) Build() ([]uint32, [][3]float32) {
	indices := make([]uint32, 0, len(s.values))
	for i := range s.values {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	values := make([][3]float32, len(indices))
	for i, index := range indices {
		values[i] = s.values[index]
	}
	return indices, values
}

// IndexComponentType returns the narrowest unsigned type holding the largest index.
func (s *SparseBuilder) IndexComponentType() model.ComponentType {
	var top uint32
	for i := range s.values {
		if i > top {
			top = i
		}
	}
	return sparseIndexType(top)
}

func sparseIndexType(top uint32) model.ComponentType {
	switch {
	case top <= 0xFF:
		return model.ComponentUbyte
	case top <= 0xFFFF:
		return model.ComponentUshort
	}
	return model.ComponentUint
}

// Bounds returns the bounds of the base array merged with the overrides.
// Elements that are not overridden read as zero, so the zero vector is
// included whenever there are fewer overrides than elements.
func (s *SparseBuilder) Bounds() (min, max [3]float32) {
	b := &bounds{min: slices.Clone(s.base.min), max: slices.Clone(s.base.max)}
	for _, v := range s.values {
		b.add(v[:]...)
	}
	if len(s.values) < s.count {
		b.add(0, 0, 0)
	}
	copy(min[:], b.min)
	copy(max[:], b.max)
	return min, max
}

func packSparseIndices(indices []uint32, componentType model.ComponentType) []byte {
	switch componentType {
	case model.ComponentUbyte:
		narrow := make([]uint8, len(indices))
		for i, v := range indices {
			narrow[i] = uint8(v)
		}
		return pack(narrow, len(narrow), 1)
	case model.ComponentUshort:
		narrow := make([]uint16, len(indices))
		for i, v := range indices {
			narrow[i] = uint16(v)
		}
		return pack(narrow, len(narrow), 2)
	}
	return pack(indices, len(indices), 4)
}

// CreateSparseAccessorVector3 writes a VEC3 float accessor whose logical
// array is all zeros overlaid by the collected overrides. It returns NullID
// when there is nothing to override.
func (e *Exporter) CreateSparseAccessorVector3(s *SparseBuilder) model.ObjectID {
	return e.writeSparseVector3(model.NullID, s)
}

func (e *Exporter) writeSparseVector3(id model.ObjectID, s *SparseBuilder) model.ObjectID {
	if s.count == 0 || len(s.values) == 0 {
		return model.NullID
	}
	acc, valuesView := e.CreateOrReuseAccessor(id)
	a := e.Accessors[acc]
	if a.Count > 0 {
		return acc
	}
	indices, values := s.Build()
	indexType := s.IndexComponentType()

	indicesView := e.AddBufferView(&model.BufferView{Buffer: bufferID})
	e.writeView(indicesView, packSparseIndices(indices, indexType), 0, model.TargetNone)
	e.writeView(valuesView, pack(values, len(values), 12), 0, model.TargetNone)

	min, max := s.Bounds()
	a.BufferView = model.NullID
	a.ComponentType = model.ComponentFloat
	a.Type = model.AccessorVec3
	a.Count = uint32(s.count)
	a.Min = min[:]
	a.Max = max[:]
	a.Sparse = &model.Sparse{
		Count:   uint32(len(indices)),
		Indices: model.SparseIndices{BufferView: indicesView, ComponentType: indexType},
		Values:  model.SparseValues{BufferView: valuesView},
	}
	return acc
}
