package exporter

import (
	"errors"
	"fmt"

	"github.com/binzume/glbexport/model"
	"go.uber.org/zap"
)

const (
	AttributePosition  = "POSITION"
	AttributeNormal    = "NORMAL"
	AttributeTangent   = "TANGENT"
	AttributeColor     = "COLOR_0"
	AttributeTexCoord0 = "TEXCOORD_0"
	AttributeTexCoord1 = "TEXCOORD_1"
	AttributeJoints    = "JOINTS_0"
	AttributeWeights   = "WEIGHTS_0"
)

var ErrVertexIndexRange = errors.New("exporter: vertex index out of range")

// MeshUnit is a mesh in producer form: parallel per-vertex arrays sharing one
// vertex id space. Arrays other than Positions may be shorter (ragged).
type MeshUnit struct {
	Name       string
	Positions  [][3]float32
	Normals    [][3]float32
	Tangents   [][4]float32
	Colors     [][4]float32
	TexCoords0 [][2]float32
	TexCoords1 [][2]float32
	Joints     [][4]uint16
	Weights    [][4]float32

	Primitives   []*PrimitiveUnit
	MorphTargets []*MorphTarget
}

type PrimitiveUnit struct {
	Indices  []uint32
	Material model.ObjectID
	Mode     model.PrimitiveMode
}

// MorphTarget holds per-vertex deltas in the owning mesh's vertex id space.
type MorphTarget struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	Weight    *float32
}

// remap holds the vertices referenced by one primitive, in ascending id order.
type remap struct {
	vertices []uint32 // new id -> old id
	table    map[uint32]uint32
}

func buildRemap(indices []uint32, vertexCount int) (*remap, error) {
	used := make([]bool, vertexCount)
	for _, i := range indices {
		if int(i) >= vertexCount {
			return nil, fmt.Errorf("%w: %d >= %d", ErrVertexIndexRange, i, vertexCount)
		}
		used[i] = true
	}
	r := &remap{table: map[uint32]uint32{}}
	for v, ok := range used {
		if ok {
			r.table[uint32(v)] = uint32(len(r.vertices))
			r.vertices = append(r.vertices, uint32(v))
		}
	}
	return r, nil
}

func (r *remap) apply(indices []uint32) []uint32 {
	out := make([]uint32, len(indices))
	for i, v := range indices {
		out[i] = r.table[v]
	}
	return out
}

func gather[T any](src []T, vertices []uint32) []T {
	if len(src) == 0 {
		return nil
	}
	var out []T
	for _, v := range vertices {
		if int(v) < len(src) {
			out = append(out, src[v])
		}
	}
	return out
}

// CreateMesh appends a mesh with one primitive per non-empty primitive unit.
// Each primitive gets its own compacted vertex arrays. NullID is returned
// when no primitive has indices.
func (e *Exporter) CreateMesh(unit *MeshUnit) (model.ObjectID, error) {
	mesh := &model.Mesh{Name: unit.Name}
	for i, p := range unit.Primitives {
		if len(p.Indices) == 0 {
			continue
		}
		prim, err := e.createPrimitive(unit, p)
		if err != nil {
			return model.NullID, fmt.Errorf("mesh %q primitive %d: %w", unit.Name, i, err)
		}
		mesh.Primitives = append(mesh.Primitives, prim)
	}
	if len(mesh.Primitives) == 0 {
		return model.NullID, nil
	}
	if len(unit.MorphTargets) > 0 {
		names := make([]string, len(unit.MorphTargets))
		weights := make([]float32, len(unit.MorphTargets))
		for i, t := range unit.MorphTargets {
			names[i] = t.Name
			if t.Weight != nil {
				weights[i] = *t.Weight
			}
		}
		mesh.Weights = weights
		mesh.Extras = &model.MeshExtras{TargetNames: names}
	}
	return e.AddMesh(mesh), nil
}

func (e *Exporter) createPrimitive(unit *MeshUnit, p *PrimitiveUnit) (*model.Primitive, error) {
	r, err := buildRemap(p.Indices, len(unit.Positions))
	if err != nil {
		return nil, err
	}
	attributes := model.Attributes{}
	set := func(name string, id model.ObjectID, n int) {
		if id.IsNull() {
			return
		}
		if n != len(r.vertices) {
			e.log.Warn("ragged vertex attribute",
				zap.String("mesh", unit.Name),
				zap.String("attribute", name),
				zap.Int("count", n),
				zap.Int("vertices", len(r.vertices)))
		}
		attributes[name] = id
	}

	positions := gather(unit.Positions, r.vertices)
	attributes[AttributePosition] = e.CreateAccessorVector3(positions, model.TargetArrayBuffer)

	normals := gather(unit.Normals, r.vertices)
	set(AttributeNormal, e.CreateAccessorVector3(normals, model.TargetArrayBuffer), len(normals))
	tangents := gather(unit.Tangents, r.vertices)
	set(AttributeTangent, e.CreateAccessorVector4(tangents, model.TargetArrayBuffer), len(tangents))
	colors := gather(unit.Colors, r.vertices)
	set(AttributeColor, e.CreateAccessorVector4(colors, model.TargetArrayBuffer), len(colors))
	uv0 := gather(unit.TexCoords0, r.vertices)
	set(AttributeTexCoord0, e.CreateAccessorVector2(uv0, model.TargetArrayBuffer), len(uv0))
	uv1 := gather(unit.TexCoords1, r.vertices)
	set(AttributeTexCoord1, e.CreateAccessorVector2(uv1, model.TargetArrayBuffer), len(uv1))
	joints := gather(unit.Joints, r.vertices)
	set(AttributeJoints, e.CreateAccessorJoints(joints), len(joints))
	weights := gather(unit.Weights, r.vertices)
	set(AttributeWeights, e.CreateAccessorVector4(weights, model.TargetArrayBuffer), len(weights))

	prim := &model.Primitive{
		Attributes: attributes,
		Indices:    e.CreateIndexAccessor(r.apply(p.Indices)),
		Material:   p.Material,
		Mode:       p.Mode,
	}
	for i, t := range unit.MorphTargets {
		target, err := e.createMorphTarget(t, r)
		if err != nil {
			return nil, fmt.Errorf("morph target %d (%s): %w", i, t.Name, err)
		}
		prim.Targets = append(prim.Targets, target)
	}
	return prim, nil
}

func (e *Exporter) createMorphTarget(t *MorphTarget, r *remap) (model.Attributes, error) {
	target := model.Attributes{}
	pos, err := e.createDeltaAccessor(t.Positions, r)
	if err != nil {
		return nil, err
	}
	target[AttributePosition] = pos
	if len(t.Normals) > 0 {
		nrm, err := e.createDeltaAccessor(t.Normals, r)
		if err != nil {
			return nil, err
		}
		target[AttributeNormal] = nrm
	}
	return target, nil
}

// createDeltaAccessor stores the non-zero deltas of the primitive's vertices
// as a sparse accessor. A target without any non-zero delta still gets one
// zero entry at index 0.
func (e *Exporter) createDeltaAccessor(deltas [][3]float32, r *remap) (model.ObjectID, error) {
	base := make([][3]float32, len(r.vertices))
	for newID, oldID := range r.vertices {
		if int(oldID) < len(deltas) {
			base[newID] = deltas[oldID]
		}
	}
	sb := NewSparseBuilder(base)
	for i, d := range base {
		if d != ([3]float32{}) {
			if err := sb.Add(d, uint32(i)); err != nil {
				return model.NullID, err
			}
		}
	}
	if sb.Len() == 0 {
		if err := sb.Add([3]float32{}, 0); err != nil {
			return model.NullID, err
		}
	}
	return e.CreateSparseAccessorVector3(sb), nil
}
