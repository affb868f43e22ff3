package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/binzume/glbexport/model"
)

var (
	ErrMissingTangents = errors.New("exporter: cubic spline channel without tangents")
	ErrWeightCount     = errors.New("exporter: inconsistent morph weight count")
)

type Keyframe[T any] struct {
	Time       float32
	Value      T
	InTangent  T
	OutTangent T
}

// KeyframeChannel is a time-ascending key list. Tangents applies to every key.
type KeyframeChannel[T any] struct {
	Keys          []Keyframe[T]
	Tangents      bool
	Interpolation model.Interpolation
}

func (c *KeyframeChannel[T]) times() []float32 {
	times := make([]float32, len(c.Keys))
	for i, k := range c.Keys {
		times[i] = k.Time
	}
	return times
}

func (c *KeyframeChannel[T]) interpolation() (model.Interpolation, error) {
	if c.Tangents {
		return model.InterpolationCubicSpline, nil
	}
	if c.Interpolation == model.InterpolationCubicSpline {
		return 0, ErrMissingTangents
	}
	return c.Interpolation, nil
}

// rows returns one row per key, or in-tangent/value/out-tangent triples.
func (c *KeyframeChannel[T]) rows() []T {
	if !c.Tangents {
		rows := make([]T, len(c.Keys))
		for i, k := range c.Keys {
			rows[i] = k.Value
		}
		return rows
	}
	rows := make([]T, 0, len(c.Keys)*3)
	for _, k := range c.Keys {
		rows = append(rows, k.InTangent, k.Value, k.OutTangent)
	}
	return rows
}

// KeyframeAccessorBundle holds the animated channels of one node. Weights
// keys carry one value per morph target.
type KeyframeAccessorBundle struct {
	Translation KeyframeChannel[[3]float32]
	Rotation    KeyframeChannel[[4]float32]
	Scale       KeyframeChannel[[3]float32]
	Weights     KeyframeChannel[[]float32]

	// Input optionally shares a time accessor across bundles. A null handle
	// is materialized by the first channel and stored back. Channels whose
	// key times differ from the shared accessor get their own input.
	Input *model.ObjectID
}

type SamplerAccessors struct {
	Path          model.TRSProperty
	Input         model.ObjectID
	Output        model.ObjectID
	Interpolation model.Interpolation
}

type inputCache struct {
	times []float32
	id    model.ObjectID
}

// sharesInput reports whether the accessor id is unfilled or already holds times.
func (e *Exporter) sharesInput(id model.ObjectID, times []float32) bool {
	if !id.In(len(e.Accessors)) {
		return false
	}
	a := e.Accessors[id]
	if a.Count == 0 {
		return true
	}
	return a.Count == uint32(len(times)) && a.Sparse == nil &&
		bytes.Equal(e.GetData(a.BufferView), pack(times, len(times), 4))
}

func (e *Exporter) writeInput(times []float32, shared *model.ObjectID, cache *inputCache) model.ObjectID {
	if cache.id != model.NullID && slices.Equal(cache.times, times) {
		return cache.id
	}
	id := model.NullID
	if shared != nil && e.sharesInput(*shared, times) {
		id = *shared
	}
	acc, view := e.CreateOrReuseAccessor(id)
	if a := e.Accessors[acc]; a.Count == 0 {
		e.writeView(view, pack(times, len(times), 4), 4, model.TargetNone)
		a.ComponentType = model.ComponentFloat
		a.Type = model.AccessorScalar
		a.Count = uint32(len(times))
		a.Min = []float32{times[0]}
		a.Max = []float32{times[len(times)-1]}
	}
	if shared != nil && shared.IsNull() {
		*shared = acc
	}
	cache.times, cache.id = times, acc
	return acc
}

// CreateAnimationSamplers writes input/output accessors for every non-empty
// channel of b, in translation, rotation, scale, weights order.
func (e *Exporter) CreateAnimationSamplers(b *KeyframeAccessorBundle) ([]SamplerAccessors, error) {
	var out []SamplerAccessors
	cache := &inputCache{id: model.NullID}

	add := func(path model.TRSProperty, times []float32, interp model.Interpolation, output func() model.ObjectID) {
		input := e.writeInput(times, b.Input, cache)
		out = append(out, SamplerAccessors{Path: path, Input: input, Output: output(), Interpolation: interp})
	}

	if ch := &b.Translation; len(ch.Keys) > 0 {
		interp, err := ch.interpolation()
		if err != nil {
			return nil, fmt.Errorf("translation: %w", err)
		}
		add(model.TRSTranslation, ch.times(), interp, func() model.ObjectID {
			return e.writeVector3(model.NullID, ch.rows(), model.TargetNone)
		})
	}
	if ch := &b.Rotation; len(ch.Keys) > 0 {
		interp, err := ch.interpolation()
		if err != nil {
			return nil, fmt.Errorf("rotation: %w", err)
		}
		add(model.TRSRotation, ch.times(), interp, func() model.ObjectID {
			return e.writeVector4(model.NullID, ch.rows(), model.TargetNone)
		})
	}
	if ch := &b.Scale; len(ch.Keys) > 0 {
		interp, err := ch.interpolation()
		if err != nil {
			return nil, fmt.Errorf("scale: %w", err)
		}
		add(model.TRSScale, ch.times(), interp, func() model.ObjectID {
			return e.writeVector3(model.NullID, ch.rows(), model.TargetNone)
		})
	}
	if ch := &b.Weights; len(ch.Keys) > 0 {
		interp, err := ch.interpolation()
		if err != nil {
			return nil, fmt.Errorf("weights: %w", err)
		}
		n := len(ch.Keys[0].Value)
		var flat []float32
		for _, row := range ch.rows() {
			if len(row) != n {
				return nil, fmt.Errorf("%w: %d != %d", ErrWeightCount, len(row), n)
			}
			flat = append(flat, row...)
		}
		if n == 0 {
			return out, nil
		}
		add(model.TRSWeights, ch.times(), interp, func() model.ObjectID {
			return e.writeFloat(model.NullID, flat, model.TargetNone)
		})
	}
	return out, nil
}

// AddAnimationChannels appends the samplers of b to anim and binds them to node.
func (e *Exporter) AddAnimationChannels(anim *model.Animation, node model.ObjectID, b *KeyframeAccessorBundle) error {
	samplers, err := e.CreateAnimationSamplers(b)
	if err != nil {
		return err
	}
	for _, s := range samplers {
		anim.Samplers = append(anim.Samplers, &model.AnimationSampler{
			Input:         s.Input,
			Output:        s.Output,
			Interpolation: s.Interpolation,
		})
		anim.Channels = append(anim.Channels, &model.Channel{
			Sampler: model.ObjectID(len(anim.Samplers) - 1),
			Target:  model.ChannelTarget{Node: node, Path: s.Path},
		})
	}
	return nil
}
