package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func f32(v float32) *float32 { return &v }

func sampleRoot() *Root {
	r := NewRoot("test")
	r.Asset.Copyright = "(c) test"
	r.UseExtension(UnlitExtension, false)
	r.UseExtension("EXT_unknown", true)

	buf := r.AddBuffer(&Buffer{ByteLength: 128})
	v0 := r.AddBufferView(&BufferView{Buffer: buf, ByteLength: 36, ByteStride: 12, Target: TargetArrayBuffer})
	v1 := r.AddBufferView(&BufferView{Buffer: buf, ByteOffset: 36, ByteLength: 12, Target: TargetElementArrayBuffer})
	v2 := r.AddBufferView(&BufferView{Buffer: buf, ByteOffset: 48, ByteLength: 4})
	v3 := r.AddBufferView(&BufferView{Buffer: buf, ByteOffset: 52, ByteLength: 12})
	v4 := r.AddBufferView(&BufferView{Name: "image", Buffer: buf, ByteOffset: 64, ByteLength: 64})

	pos := r.AddAccessor(&Accessor{BufferView: v0, ComponentType: ComponentFloat, Count: 3, Type: AccessorVec3,
		Min: []float32{-1, 0, 0}, Max: []float32{1, 0.5, 0}})
	idx := r.AddAccessor(&Accessor{BufferView: v1, ComponentType: ComponentUint, Count: 3, Type: AccessorScalar})
	morph := r.AddAccessor(&Accessor{BufferView: NullID, ComponentType: ComponentFloat, Count: 3, Type: AccessorVec3,
		Min: []float32{0, 0, 0}, Max: []float32{0, 1, 0},
		Sparse: &Sparse{Count: 1,
			Indices: SparseIndices{BufferView: v2, ComponentType: ComponentUbyte},
			Values:  SparseValues{BufferView: v3}}})

	r.AddSampler(&Sampler{MagFilter: MagLinear, MinFilter: MinLinearMipMapLinear, WrapS: WrapClampToEdge, WrapT: WrapMirroredRepeat})
	img := r.AddImage(&Image{Name: "tex", MimeType: "image/png", BufferView: v4})
	tex := r.AddTexture(&Texture{Sampler: 0, Source: img})

	mat := &Material{
		Name: "skin",
		PBRMetallicRoughness: &PBRMetallicRoughness{
			BaseColorFactor:  &[4]float32{1, 0.5, 0.25, 1},
			BaseColorTexture: &TextureInfo{Index: tex},
			MetallicFactor:   f32(0),
			RoughnessFactor:  f32(0.75),
		},
		NormalTexture:  &NormalTexture{Index: tex, Scale: f32(2)},
		EmissiveFactor: &[3]float32{0.1, 0.2, 0.3},
		AlphaMode:      AlphaMask,
		AlphaCutoff:    f32(0.5),
		DoubleSided:    true,
		Extras:         json.RawMessage(`{"shader":"toon"}`),
	}
	mat.Extensions.Set(&MaterialsUnlit{})
	mat.PBRMetallicRoughness.BaseColorTexture.Extensions.Set(&TextureTransform{Offset: &[2]float32{0.5, 0}, Rotation: 1.5})
	matID := r.AddMaterial(mat)

	mesh := r.AddMesh(&Mesh{
		Name: "body",
		Primitives: []*Primitive{{
			Attributes: Attributes{"POSITION": pos},
			Indices:    idx,
			Material:   matID,
			Targets:    []Attributes{{"POSITION": morph}},
		}, {
			Attributes: Attributes{"POSITION": pos},
			Indices:    NullID,
			Material:   NullID,
			Mode:       PrimitiveLines,
		}},
		Weights: []float32{0.25},
		Extras:  &MeshExtras{TargetNames: []string{"smile"}},
	})

	root := NewNode("root")
	root.Translation = &[3]float32{0, 1, 0}
	root.Rotation = &[4]float32{0, 0, 0, 1}
	root.Extras = json.RawMessage(`{"tag":1}`)
	rootID := r.AddNode(root)
	child := NewNode("child")
	child.Mesh = mesh
	child.Scale = &[3]float32{2, 2, 2}
	childID := r.AddNode(child)
	r.Nodes[rootID].Children = []ObjectID{childID}
	joint := NewNode("joint")
	joint.Matrix = &[16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 3, 4, 5, 1}
	jointID := r.AddNode(joint)

	skin := r.AddSkin(&Skin{Name: "skin", InverseBindMatrices: NullID, Skeleton: rootID, Joints: []ObjectID{jointID}})
	r.Nodes[childID].Skin = skin

	r.AddAnimation(&Animation{
		Name:     "wave",
		Samplers: []*AnimationSampler{{Input: idx, Output: pos, Interpolation: InterpolationCubicSpline}, {Input: idx, Output: pos}},
		Channels: []*Channel{
			{Sampler: 0, Target: ChannelTarget{Node: jointID, Path: TRSRotation}},
			{Sampler: 1, Target: ChannelTarget{Node: NullID, Path: TRSWeights}},
		},
	})

	r.Scene = r.AddScene(&Scene{Name: "scene", Nodes: []ObjectID{rootID, jointID}})
	r.Extensions.Set(&RawExtension{Name: "EXT_unknown", Data: json.RawMessage(`{"list":[1,2,3]}`)})
	return r
}

func TestRoundTrip(t *testing.T) {
	src := sampleRoot()
	data, err := Encode(src)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	dst, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(src, dst) {
		again, _ := Encode(dst)
		t.Errorf("round trip mismatch\n src: %s\n dst: %s", data, again)
	}
	if err := dst.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestWireTokens(t *testing.T) {
	data, err := Encode(sampleRoot())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{
		`"componentType":5126`,
		`"componentType":5125`,
		`"componentType":5121`,
		`"target":34962`,
		`"target":34963`,
		`"type":"VEC3"`,
		`"type":"SCALAR"`,
		`"alphaMode":"MASK"`,
		`"interpolation":"CUBICSPLINE"`,
		`"path":"rotation"`,
		`"path":"weights"`,
		`"mode":1`,
		`"magFilter":9729`,
		`"minFilter":9987`,
		`"wrapS":33071`,
		`"wrapT":33648`,
		`"KHR_materials_unlit":{}`,
		`"targetNames":["smile"]`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded document does not contain %s", want)
		}
	}
	for _, unwanted := range []string{`null`, `4294967295`, `"mode":4`, `"interpolation":"LINEAR"`} {
		if strings.Contains(s, unwanted) {
			t.Errorf("encoded document should not contain %s", unwanted)
		}
	}
}

func TestDecodeRejectsUnknownTokens(t *testing.T) {
	cases := map[string]string{
		"componentType": `{"asset":{"version":"2.0"},"accessors":[{"componentType":1234,"count":1,"type":"SCALAR"}]}`,
		"type":          `{"asset":{"version":"2.0"},"accessors":[{"componentType":5126,"count":1,"type":"VEC5"}]}`,
		"mode":          `{"asset":{"version":"2.0"},"meshes":[{"primitives":[{"attributes":{},"mode":9}]}]}`,
		"alphaMode":     `{"asset":{"version":"2.0"},"materials":[{"alphaMode":"blend"}]}`,
		"path":          `{"asset":{"version":"2.0"},"animations":[{"channels":[{"sampler":0,"target":{"path":"color"}}],"samplers":[]}]}`,
	}
	for name, doc := range cases {
		_, err := Decode([]byte(doc))
		if !errors.Is(err, ErrUnknownToken) {
			t.Errorf("%s: expected ErrUnknownToken, got %v", name, err)
		}
	}
}

func TestDecodeDefaults(t *testing.T) {
	r, err := Decode([]byte(`{"asset":{"version":"2.0"},"nodes":[{"name":"a"}],"textures":[{}],"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Scene.IsNull() {
		t.Error("absent scene should decode as NullID")
	}
	if n := r.Nodes[0]; !n.Mesh.IsNull() || !n.Skin.IsNull() {
		t.Error("absent node references should decode as NullID", n.Mesh, n.Skin)
	}
	if tex := r.Textures[0]; !tex.Source.IsNull() || !tex.Sampler.IsNull() {
		t.Error("absent texture references should decode as NullID")
	}
	p := r.Meshes[0].Primitives[0]
	if !p.Indices.IsNull() || !p.Material.IsNull() || p.Mode != PrimitiveTriangles {
		t.Error("unexpected primitive defaults", p.Indices, p.Material, p.Mode)
	}
}

func TestEncodeNullRequiredReference(t *testing.T) {
	r := NewRoot("test")
	r.AddBufferView(&BufferView{Buffer: NullID, ByteLength: 4})
	if _, err := Encode(r); !errors.Is(err, ErrNullReference) {
		t.Errorf("expected ErrNullReference, got %v", err)
	}
}

func TestEscapeNonASCII(t *testing.T) {
	r := NewRoot("test")
	r.AddNode(&Node{Name: "頭😀", Mesh: NullID, Skin: NullID})
	data, err := Encode(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"name":"\u982d\ud83d\ude00"`)) {
		t.Errorf("non-ASCII name not escaped: %s", data)
	}
	for _, b := range data {
		if b >= 0x80 {
			t.Fatalf("output contains non-ASCII byte: %s", data)
		}
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Nodes[0].Name != "頭😀" {
		t.Errorf("escaped name did not decode back: %q", back.Nodes[0].Name)
	}
}

func TestExtensionsOrder(t *testing.T) {
	var ext Extensions
	ext.Set(&RawExtension{Name: "b", Data: json.RawMessage(`1`)})
	ext.Set(&RawExtension{Name: "a", Data: json.RawMessage(`2`)})
	ext.Set(&RawExtension{Name: "b", Data: json.RawMessage(`3`)})
	data, err := json.Marshal(ext)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"b":3,"a":2}` {
		t.Errorf("unexpected order: %s", data)
	}
	var back Extensions
	if err := json.Unmarshal([]byte(`{"z":{},"KHR_materials_unlit":{},"m":[]}`), &back); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(back.Names(), ","); got != "z,KHR_materials_unlit,m" {
		t.Errorf("unexpected decoded order: %s", got)
	}
	if e, _ := back.Get(UnlitExtension); reflect.TypeOf(e) != reflect.TypeOf(&MaterialsUnlit{}) {
		t.Errorf("registered extension decoded as %T", e)
	}
	if e, _ := back.Get("z"); reflect.TypeOf(e) != reflect.TypeOf(&RawExtension{}) {
		t.Errorf("unknown extension decoded as %T", e)
	}
}

func TestValidate(t *testing.T) {
	r := NewRoot("test")
	n := NewNode("n")
	n.Mesh = 3
	r.AddNode(n)
	r.AddBuffer(&Buffer{ByteLength: 8})
	r.AddBufferView(&BufferView{Buffer: 0, ByteOffset: 4, ByteLength: 8})
	err := r.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "nodes[0].mesh") || !strings.Contains(msg, "bufferViews[0]") {
		t.Errorf("unexpected validation message: %s", msg)
	}
	if err := sampleRoot().Validate(); err != nil {
		t.Errorf("sample root should be valid: %v", err)
	}
}

func TestObjectID(t *testing.T) {
	if !NullID.IsNull() || ObjectID(0).IsNull() {
		t.Error("IsNull")
	}
	if NullID.Index() != -1 || ObjectID(7).Index() != 7 {
		t.Error("Index")
	}
	if ObjectID(2).In(2) || !ObjectID(1).In(2) || NullID.In(10) {
		t.Error("In")
	}
	if ObjectID(1) >= ObjectID(2) {
		t.Error("ordering")
	}
	var id ObjectID
	if err := json.Unmarshal([]byte(`4294967295`), &id); err == nil {
		t.Error("reserved id should not decode")
	}
}
