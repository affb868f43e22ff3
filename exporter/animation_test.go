package exporter

import (
	"errors"
	"testing"

	"github.com/binzume/glbexport/model"
)

func TestCreateAnimationSamplers(t *testing.T) {
	e := NewExporter(nil)
	b := &KeyframeAccessorBundle{
		Translation: KeyframeChannel[[3]float32]{Keys: []Keyframe[[3]float32]{
			{Time: 0, Value: [3]float32{0, 0, 0}},
			{Time: 1, Value: [3]float32{0, 1, 0}},
		}},
		Rotation: KeyframeChannel[[4]float32]{
			Interpolation: model.InterpolationStep,
			Keys: []Keyframe[[4]float32]{
				{Time: 0, Value: [4]float32{0, 0, 0, 1}},
				{Time: 1, Value: [4]float32{0, 0, 1, 0}},
			},
		},
		Scale: KeyframeChannel[[3]float32]{
			Tangents: true,
			Keys: []Keyframe[[3]float32]{
				{Time: 0.5, Value: [3]float32{1, 1, 1}},
				{Time: 2, Value: [3]float32{2, 2, 2}, InTangent: [3]float32{1, 0, 0}},
			},
		},
	}
	samplers, err := e.CreateAnimationSamplers(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(samplers) != 3 {
		t.Fatalf("samplers = %d", len(samplers))
	}
	tr, rot, sc := samplers[0], samplers[1], samplers[2]
	if tr.Path != model.TRSTranslation || rot.Path != model.TRSRotation || sc.Path != model.TRSScale {
		t.Errorf("paths = %v %v %v", tr.Path, rot.Path, sc.Path)
	}
	if tr.Input != rot.Input {
		t.Errorf("equal key times should share the input accessor")
	}
	if sc.Input == tr.Input {
		t.Errorf("different key times share an input accessor")
	}
	if rot.Interpolation != model.InterpolationStep || sc.Interpolation != model.InterpolationCubicSpline {
		t.Errorf("interpolation = %v %v", rot.Interpolation, sc.Interpolation)
	}

	in := e.Accessors[sc.Input]
	if in.Count != 2 || in.Min[0] != 0.5 || in.Max[0] != 2 {
		t.Errorf("input = %+v", in)
	}
	out := e.Accessors[sc.Output]
	if out.Count != 6 || out.Type != model.AccessorVec3 {
		t.Errorf("cubic spline output = %+v", out)
	}
	rows := readVec3(t, e.GetData(out.BufferView))
	if rows[1] != [3]float32{1, 1, 1} || rows[3] != [3]float32{1, 0, 0} || rows[4] != [3]float32{2, 2, 2} {
		t.Errorf("rows = %v", rows)
	}
	if e.Accessors[rot.Output].Type != model.AccessorVec4 {
		t.Errorf("rotation output type = %v", e.Accessors[rot.Output].Type)
	}
}

func TestAnimationSharedInput(t *testing.T) {
	e := NewExporter(nil)
	input := model.NullID
	bundle := func() *KeyframeAccessorBundle {
		return &KeyframeAccessorBundle{
			Input: &input,
			Translation: KeyframeChannel[[3]float32]{Keys: []Keyframe[[3]float32]{
				{Time: 0}, {Time: 1},
			}},
		}
	}
	a, err := e.CreateAnimationSamplers(bundle())
	if err != nil {
		t.Fatal(err)
	}
	if input.IsNull() || a[0].Input != input {
		t.Fatalf("input = %v, sampler input = %v", input, a[0].Input)
	}
	b, err := e.CreateAnimationSamplers(bundle())
	if err != nil {
		t.Fatal(err)
	}
	if b[0].Input != input {
		t.Errorf("second bundle input = %v, want %v", b[0].Input, input)
	}
	if len(e.Accessors) != 3 {
		t.Errorf("accessors = %d, want 3", len(e.Accessors))
	}
}

func TestAnimationSharedInputDifferentTimes(t *testing.T) {
	e := NewExporter(nil)
	input := model.NullID
	b := &KeyframeAccessorBundle{
		Input: &input,
		Translation: KeyframeChannel[[3]float32]{Keys: []Keyframe[[3]float32]{
			{Time: 0}, {Time: 1},
		}},
		Rotation: KeyframeChannel[[4]float32]{Keys: []Keyframe[[4]float32]{
			{Time: 0}, {Time: 0.5}, {Time: 2},
		}},
	}
	samplers, err := e.CreateAnimationSamplers(b)
	if err != nil {
		t.Fatal(err)
	}
	tr, rot := samplers[0], samplers[1]
	if input != tr.Input {
		t.Errorf("shared input = %v, want %v", input, tr.Input)
	}
	if rot.Input == tr.Input {
		t.Fatalf("rotation reuses the translation input")
	}
	for _, s := range samplers {
		in, out := e.Accessors[s.Input], e.Accessors[s.Output]
		if in.Count != out.Count {
			t.Errorf("%v: input count %d != output count %d", s.Path, in.Count, out.Count)
		}
	}
	if in := e.Accessors[rot.Input]; in.Max[0] != 2 {
		t.Errorf("rotation input = %+v", in)
	}

	// a later bundle with other times leaves the shared handle alone
	other, err := e.CreateAnimationSamplers(&KeyframeAccessorBundle{
		Input: &input,
		Scale: KeyframeChannel[[3]float32]{Keys: []Keyframe[[3]float32]{{Time: 3}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if other[0].Input == input || input != tr.Input {
		t.Errorf("input = %v, scale input = %v", input, other[0].Input)
	}
	if in := e.Accessors[other[0].Input]; in.Count != 1 || in.Min[0] != 3 {
		t.Errorf("scale input = %+v", in)
	}
}

func TestAnimationWeights(t *testing.T) {
	e := NewExporter(nil)
	b := &KeyframeAccessorBundle{
		Weights: KeyframeChannel[[]float32]{Keys: []Keyframe[[]float32]{
			{Time: 0, Value: []float32{0, 1}},
			{Time: 1, Value: []float32{1, 0}},
		}},
	}
	samplers, err := e.CreateAnimationSamplers(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(samplers) != 1 || samplers[0].Path != model.TRSWeights {
		t.Fatalf("samplers = %+v", samplers)
	}
	if out := e.Accessors[samplers[0].Output]; out.Count != 4 || out.Type != model.AccessorScalar {
		t.Errorf("output = %+v", out)
	}

	b.Weights.Keys[1].Value = []float32{1}
	if _, err := e.CreateAnimationSamplers(b); !errors.Is(err, ErrWeightCount) {
		t.Errorf("err = %v", err)
	}
}

func TestAnimationMissingTangents(t *testing.T) {
	e := NewExporter(nil)
	b := &KeyframeAccessorBundle{
		Scale: KeyframeChannel[[3]float32]{
			Interpolation: model.InterpolationCubicSpline,
			Keys:          []Keyframe[[3]float32]{{Time: 0}},
		},
	}
	if _, err := e.CreateAnimationSamplers(b); !errors.Is(err, ErrMissingTangents) {
		t.Errorf("err = %v", err)
	}
}

func TestAddAnimationChannels(t *testing.T) {
	e := NewExporter(nil)
	node := e.AddNode(model.NewNode("root"))
	anim := &model.Animation{Name: "walk"}
	b := &KeyframeAccessorBundle{
		Translation: KeyframeChannel[[3]float32]{Keys: []Keyframe[[3]float32]{{Time: 0}, {Time: 1}}},
		Rotation:    KeyframeChannel[[4]float32]{Keys: []Keyframe[[4]float32]{{Time: 0}, {Time: 1}}},
	}
	if err := e.AddAnimationChannels(anim, node, b); err != nil {
		t.Fatal(err)
	}
	e.AddAnimation(anim)
	if len(anim.Channels) != 2 || len(anim.Samplers) != 2 {
		t.Fatalf("channels = %d, samplers = %d", len(anim.Channels), len(anim.Samplers))
	}
	if ch := anim.Channels[1]; ch.Sampler != 1 || ch.Target.Node != node || ch.Target.Path != model.TRSRotation {
		t.Errorf("channel = %+v", ch)
	}
	if err := e.Validate(); err != nil {
		t.Error(err)
	}
}

func TestCreateSkin(t *testing.T) {
	e := NewExporter(nil)
	j0 := e.AddNode(model.NewNode("hips"))
	j1 := e.AddNode(model.NewNode("spine"))
	skin, err := e.CreateSkin("body", []model.ObjectID{j0, j1}, j0, [][4][4]float32{
		TranslationInverse([3]float32{0, 1, 0}),
		TranslationInverse([3]float32{0, 1.5, 0}),
	})
	if err != nil {
		t.Fatal(err)
	}
	acc := e.Accessors[e.Skins[skin].InverseBindMatrices]
	if acc.Type != model.AccessorMat4 || acc.Count != 2 {
		t.Errorf("inverse bind accessor = %+v", acc)
	}
	view := e.BufferViews[acc.BufferView]
	if view.ByteStride != 64 || view.ByteLength != 128 {
		t.Errorf("view = %+v", view)
	}
	if got := readVec3(t, e.GetData(acc.BufferView)[48:60]); got[0] != [3]float32{0, -1, 0} {
		t.Errorf("translation column = %v", got)
	}

	if _, err := e.CreateSkin("bad", []model.ObjectID{j0, 7}, j0, nil); err == nil {
		t.Error("expected error for missing joint")
	}
	if _, err := e.CreateSkin("bad", []model.ObjectID{j0}, j0, make([][4][4]float32, 2)); err == nil {
		t.Error("expected error for matrix count")
	}
}
