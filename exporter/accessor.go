package exporter

import (
	"github.com/binzume/glbexport/model"
	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

type bounds struct {
	min, max []float32
}

func newBounds(n int) *bounds {
	b := &bounds{min: make([]float32, n), max: make([]float32, n)}
	for i := range b.min {
		b.min[i] = math32.Inf(1)
		b.max[i] = math32.Inf(-1)
	}
	return b
}

func (b *bounds) add(row ...float32) {
	for i, v := range row {
		b.min[i] = math32.Min(b.min[i], v)
		b.max[i] = math32.Max(b.max[i], v)
	}
}

type accessorLayout struct {
	componentType model.ComponentType
	accessorType  model.AccessorType
	target        model.Target
	noStride      bool
}

func (l accessorLayout) rowSize() int {
	return l.componentType.ByteSize() * l.accessorType.Components()
}

// writeAccessor fills the accessor id (materializing it when null) with
// count rows of data. A filled accessor is returned as is.
func (e *Exporter) writeAccessor(id model.ObjectID, data interface{}, count int, layout accessorLayout, b *bounds) model.ObjectID {
	acc, view := e.CreateOrReuseAccessor(id)
	a := e.Accessors[acc]
	if a.Count > 0 {
		return acc
	}
	rowSize := layout.rowSize()
	var stride uint32
	if !layout.noStride {
		stride = uint32(rowSize)
	}
	e.writeView(view, pack(data, count, rowSize), stride, layout.target)
	a.BufferView = view
	a.ComponentType = layout.componentType
	a.Type = layout.accessorType
	a.Count = uint32(count)
	if b != nil {
		a.Min, a.Max = b.min, b.max
	}
	e.log.Debug("accessor written",
		zap.Stringer("accessor", acc),
		zap.Int("count", count),
		zap.Int("rowSize", rowSize))
	return acc
}

// CreateIndexAccessor writes a primitive index buffer. Index views carry no byteStride.
func (e *Exporter) CreateIndexAccessor(indices []uint32) model.ObjectID {
	if len(indices) == 0 {
		return model.NullID
	}
	return e.writeAccessor(model.NullID, indices, len(indices), accessorLayout{
		componentType: model.ComponentUint,
		accessorType:  model.AccessorScalar,
		target:        model.TargetElementArrayBuffer,
		noStride:      true,
	}, nil)
}

func (e *Exporter) CreateAccessorFloat(values []float32, target model.Target) model.ObjectID {
	return e.writeFloat(model.NullID, values, target)
}

func (e *Exporter) writeFloat(id model.ObjectID, values []float32, target model.Target) model.ObjectID {
	if len(values) == 0 {
		return model.NullID
	}
	b := newBounds(1)
	for _, v := range values {
		b.add(v)
	}
	return e.writeAccessor(id, values, len(values), accessorLayout{
		componentType: model.ComponentFloat,
		accessorType:  model.AccessorScalar,
		target:        target,
	}, b)
}

func (e *Exporter) CreateAccessorVector2(values [][2]float32, target model.Target) model.ObjectID {
	if len(values) == 0 {
		return model.NullID
	}
	b := newBounds(2)
	for _, v := range values {
		b.add(v[:]...)
	}
	return e.writeAccessor(model.NullID, values, len(values), accessorLayout{
		componentType: model.ComponentFloat,
		accessorType:  model.AccessorVec2,
		target:        target,
	}, b)
}

func (e *Exporter) CreateAccessorVector3(values [][3]float32, target model.Target) model.ObjectID {
	return e.writeVector3(model.NullID, values, target)
}

func (e *Exporter) writeVector3(id model.ObjectID, values [][3]float32, target model.Target) model.ObjectID {
	if len(values) == 0 {
		return model.NullID
	}
	b := newBounds(3)
	for _, v := range values {
		b.add(v[:]...)
	}
	return e.writeAccessor(id, values, len(values), accessorLayout{
		componentType: model.ComponentFloat,
		accessorType:  model.AccessorVec3,
		target:        target,
	}, b)
}

func (e *Exporter) CreateAccessorVector4(values [][4]float32, target model.Target) model.ObjectID {
	return e.writeVector4(model.NullID, values, target)
}

func (e *Exporter) writeVector4(id model.ObjectID, values [][4]float32, target model.Target) model.ObjectID {
	if len(values) == 0 {
		return model.NullID
	}
	b := newBounds(4)
	for _, v := range values {
		b.add(v[:]...)
	}
	return e.writeAccessor(id, values, len(values), accessorLayout{
		componentType: model.ComponentFloat,
		accessorType:  model.AccessorVec4,
		target:        target,
	}, b)
}

// CreateAccessorJoints writes JOINTS_0 style data as unsigned shorts.
func (e *Exporter) CreateAccessorJoints(values [][4]uint16) model.ObjectID {
	if len(values) == 0 {
		return model.NullID
	}
	b := newBounds(4)
	for _, v := range values {
		b.add(float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3]))
	}
	return e.writeAccessor(model.NullID, values, len(values), accessorLayout{
		componentType: model.ComponentUshort,
		accessorType:  model.AccessorVec4,
		target:        model.TargetArrayBuffer,
	}, b)
}

// CreateAccessorMatrix4 writes column-major 4x4 matrices (m[column][row]).
func (e *Exporter) CreateAccessorMatrix4(values [][4][4]float32) model.ObjectID {
	if len(values) == 0 {
		return model.NullID
	}
	columns := make([][4]float32, 0, len(values)*4)
	for _, m := range values {
		columns = append(columns, m[0], m[1], m[2], m[3])
	}
	acc, view := e.CreateOrReuseAccessor(model.NullID)
	e.writeView(view, pack(columns, len(columns), 16), 64, model.TargetNone)
	a := e.Accessors[acc]
	a.ComponentType = model.ComponentFloat
	a.Type = model.AccessorMat4
	a.Count = uint32(len(values))
	return acc
}
