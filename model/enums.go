package model

import (
	"encoding/json"
	"fmt"
)

// wireEnum maps an in-memory enum to its fixed wire token.
type wireEnum[T comparable, W comparable] struct {
	name string
	wire map[T]W
	back map[W]T
}

func newWireEnum[T comparable, W comparable](name string, wire map[T]W) *wireEnum[T, W] {
	back := make(map[W]T, len(wire))
	for k, v := range wire {
		back[v] = k
	}
	return &wireEnum[T, W]{name: name, wire: wire, back: back}
}

func (e *wireEnum[T, W]) marshal(v T) ([]byte, error) {
	w, ok := e.wire[v]
	if !ok {
		return nil, fmt.Errorf("model: invalid %s value %v", e.name, v)
	}
	return json.Marshal(w)
}

func (e *wireEnum[T, W]) unmarshal(data []byte, v *T) error {
	var w W
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("model: %s: %w", e.name, err)
	}
	t, ok := e.back[w]
	if !ok {
		return fmt.Errorf("%w: %s %v", ErrUnknownToken, e.name, w)
	}
	*v = t
	return nil
}

// ComponentType is the element type of an accessor.
type ComponentType uint8

const (
	ComponentFloat ComponentType = iota
	ComponentByte
	ComponentUbyte
	ComponentShort
	ComponentUshort
	ComponentUint
)

var componentTypes = newWireEnum("componentType", map[ComponentType]uint16{
	ComponentByte:   5120,
	ComponentUbyte:  5121,
	ComponentShort:  5122,
	ComponentUshort: 5123,
	ComponentUint:   5125,
	ComponentFloat:  5126,
})

// ByteSize returns the size of one component in bytes.
func (c ComponentType) ByteSize() int {
	switch c {
	case ComponentByte, ComponentUbyte:
		return 1
	case ComponentShort, ComponentUshort:
		return 2
	}
	return 4
}

func (c ComponentType) MarshalJSON() ([]byte, error)     { return componentTypes.marshal(c) }
func (c *ComponentType) UnmarshalJSON(data []byte) error { return componentTypes.unmarshal(data, c) }

// AccessorType is the shape of one accessor element.
type AccessorType uint8

const (
	AccessorScalar AccessorType = iota
	AccessorVec2
	AccessorVec3
	AccessorVec4
	AccessorMat2
	AccessorMat3
	AccessorMat4
)

var accessorTypes = newWireEnum("type", map[AccessorType]string{
	AccessorScalar: "SCALAR",
	AccessorVec2:   "VEC2",
	AccessorVec3:   "VEC3",
	AccessorVec4:   "VEC4",
	AccessorMat2:   "MAT2",
	AccessorMat3:   "MAT3",
	AccessorMat4:   "MAT4",
})

// Components returns the number of components in one element.
func (a AccessorType) Components() int {
	switch a {
	case AccessorVec2:
		return 2
	case AccessorVec3:
		return 3
	case AccessorVec4, AccessorMat2:
		return 4
	case AccessorMat3:
		return 9
	case AccessorMat4:
		return 16
	}
	return 1
}

func (a AccessorType) MarshalJSON() ([]byte, error)     { return accessorTypes.marshal(a) }
func (a *AccessorType) UnmarshalJSON(data []byte) error { return accessorTypes.unmarshal(data, a) }

// Target is the GPU usage hint of a buffer view.
type Target uint8

const (
	TargetNone Target = iota
	TargetArrayBuffer
	TargetElementArrayBuffer
)

var targets = newWireEnum("target", map[Target]uint16{
	TargetArrayBuffer:        34962,
	TargetElementArrayBuffer: 34963,
})

func (t Target) MarshalJSON() ([]byte, error)     { return targets.marshal(t) }
func (t *Target) UnmarshalJSON(data []byte) error { return targets.unmarshal(data, t) }

// PrimitiveMode is the topology of a primitive. The zero value is triangles.
type PrimitiveMode uint8

const (
	PrimitiveTriangles PrimitiveMode = iota
	PrimitivePoints
	PrimitiveLines
	PrimitiveLineLoop
	PrimitiveLineStrip
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
)

var primitiveModes = newWireEnum("mode", map[PrimitiveMode]uint8{
	PrimitivePoints:        0,
	PrimitiveLines:         1,
	PrimitiveLineLoop:      2,
	PrimitiveLineStrip:     3,
	PrimitiveTriangles:     4,
	PrimitiveTriangleStrip: 5,
	PrimitiveTriangleFan:   6,
})

func (m PrimitiveMode) MarshalJSON() ([]byte, error)     { return primitiveModes.marshal(m) }
func (m *PrimitiveMode) UnmarshalJSON(data []byte) error { return primitiveModes.unmarshal(data, m) }

type AlphaMode uint8

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

var alphaModes = newWireEnum("alphaMode", map[AlphaMode]string{
	AlphaOpaque: "OPAQUE",
	AlphaMask:   "MASK",
	AlphaBlend:  "BLEND",
})

func (a AlphaMode) MarshalJSON() ([]byte, error)     { return alphaModes.marshal(a) }
func (a *AlphaMode) UnmarshalJSON(data []byte) error { return alphaModes.unmarshal(data, a) }

type Interpolation uint8

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

var interpolations = newWireEnum("interpolation", map[Interpolation]string{
	InterpolationLinear:      "LINEAR",
	InterpolationStep:        "STEP",
	InterpolationCubicSpline: "CUBICSPLINE",
})

func (i Interpolation) MarshalJSON() ([]byte, error)     { return interpolations.marshal(i) }
func (i *Interpolation) UnmarshalJSON(data []byte) error { return interpolations.unmarshal(data, i) }

// TRSProperty is the node property an animation channel drives.
type TRSProperty uint8

const (
	TRSTranslation TRSProperty = iota
	TRSRotation
	TRSScale
	TRSWeights
)

var trsProperties = newWireEnum("path", map[TRSProperty]string{
	TRSTranslation: "translation",
	TRSRotation:    "rotation",
	TRSScale:       "scale",
	TRSWeights:     "weights",
})

func (p TRSProperty) String() string {
	if s, ok := trsProperties.wire[p]; ok {
		return s
	}
	return fmt.Sprintf("TRSProperty(%d)", uint8(p))
}

func (p TRSProperty) MarshalJSON() ([]byte, error)     { return trsProperties.marshal(p) }
func (p *TRSProperty) UnmarshalJSON(data []byte) error { return trsProperties.unmarshal(data, p) }

// MagFilter zero value means unspecified.
type MagFilter uint8

const (
	MagUndefined MagFilter = iota
	MagNearest
	MagLinear
)

var magFilters = newWireEnum("magFilter", map[MagFilter]uint16{
	MagNearest: 9728,
	MagLinear:  9729,
})

func (f MagFilter) MarshalJSON() ([]byte, error)     { return magFilters.marshal(f) }
func (f *MagFilter) UnmarshalJSON(data []byte) error { return magFilters.unmarshal(data, f) }

// MinFilter zero value means unspecified.
type MinFilter uint8

const (
	MinUndefined MinFilter = iota
	MinNearest
	MinLinear
	MinNearestMipMapNearest
	MinLinearMipMapNearest
	MinNearestMipMapLinear
	MinLinearMipMapLinear
)

var minFilters = newWireEnum("minFilter", map[MinFilter]uint16{
	MinNearest:              9728,
	MinLinear:               9729,
	MinNearestMipMapNearest: 9984,
	MinLinearMipMapNearest:  9985,
	MinNearestMipMapLinear:  9986,
	MinLinearMipMapLinear:   9987,
})

func (f MinFilter) MarshalJSON() ([]byte, error)     { return minFilters.marshal(f) }
func (f *MinFilter) UnmarshalJSON(data []byte) error { return minFilters.unmarshal(data, f) }

// WrappingMode zero value is REPEAT.
type WrappingMode uint8

const (
	WrapRepeat WrappingMode = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

var wrappingModes = newWireEnum("wrap", map[WrappingMode]uint16{
	WrapRepeat:         10497,
	WrapClampToEdge:    33071,
	WrapMirroredRepeat: 33648,
})

func (w WrappingMode) MarshalJSON() ([]byte, error)     { return wrappingModes.marshal(w) }
func (w *WrappingMode) UnmarshalJSON(data []byte) error { return wrappingModes.unmarshal(data, w) }
