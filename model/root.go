// Package model is the in-memory glTF 2.0 document graph.
//
// Entities refer to each other by ObjectID, an index into the owning array
// of Root. Arrays are append-only, so a handle stays valid once issued.
package model

import "encoding/json"

const Version = "2.0"

type Asset struct {
	Version    string `json:"version"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
	MinVersion string `json:"minVersion,omitempty"`
}

// Root is the whole document.
type Root struct {
	ExtensionsUsed     []string        `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string        `json:"extensionsRequired,omitempty"`
	Accessors          []*Accessor     `json:"accessors,omitempty"`
	Animations         []*Animation    `json:"animations,omitempty"`
	Asset              Asset           `json:"asset"`
	Buffers            []*Buffer       `json:"buffers,omitempty"`
	BufferViews        []*BufferView   `json:"bufferViews,omitempty"`
	Images             []*Image        `json:"images,omitempty"`
	Materials          []*Material     `json:"materials,omitempty"`
	Meshes             []*Mesh         `json:"meshes,omitempty"`
	Nodes              []*Node         `json:"nodes,omitempty"`
	Samplers           []*Sampler      `json:"samplers,omitempty"`
	Scene              ObjectID        `json:"scene,omitzero"`
	Scenes             []*Scene        `json:"scenes,omitempty"`
	Skins              []*Skin         `json:"skins,omitempty"`
	Textures           []*Texture      `json:"textures,omitempty"`
	Extensions         Extensions      `json:"extensions,omitzero"`
	Extras             json.RawMessage `json:"extras,omitempty"`
}

// NewRoot returns an empty document with the asset record filled in.
func NewRoot(generator string) *Root {
	return &Root{
		Asset: Asset{Version: Version, Generator: generator},
		Scene: NullID,
	}
}

func (r *Root) UnmarshalJSON(data []byte) error {
	type alias Root
	tmp := alias{Scene: NullID}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*r = Root(tmp)
	return nil
}

func push[T any](s *[]*T, v *T) ObjectID {
	*s = append(*s, v)
	return ObjectID(len(*s) - 1)
}

func (r *Root) AddAccessor(a *Accessor) ObjectID { return push(&r.Accessors, a) }
func (r *Root) AddAnimation(a *Animation) ObjectID { return push(&r.Animations, a) }
func (r *Root) AddBuffer(b *Buffer) ObjectID { return push(&r.Buffers, b) }
func (r *Root) AddBufferView(v *BufferView) ObjectID { return push(&r.BufferViews, v) }
func (r *Root) AddImage(i *Image) ObjectID { return push(&r.Images, i) }
func (r *Root) AddMaterial(m *Material) ObjectID { return push(&r.Materials, m) }
func (r *Root) AddMesh(m *Mesh) ObjectID { return push(&r.Meshes, m) }
func (r *Root) AddNode(n *Node) ObjectID { return push(&r.Nodes, n) }
func (r *Root) AddSampler(s *Sampler) ObjectID { return push(&r.Samplers, s) }
func (r *Root) AddScene(s *Scene) ObjectID { return push(&r.Scenes, s) }
func (r *Root) AddSkin(s *Skin) ObjectID { return push(&r.Skins, s) }
func (r *Root) AddTexture(t *Texture) ObjectID { return push(&r.Textures, t) }

// UseExtension records name in extensionsUsed (and extensionsRequired) once.
func (r *Root) UseExtension(name string, required bool) {
	if !contains(r.ExtensionsUsed, name) {
		r.ExtensionsUsed = append(r.ExtensionsUsed, name)
	}
	if required && !contains(r.ExtensionsRequired, name) {
		r.ExtensionsRequired = append(r.ExtensionsRequired, name)
	}
}

func (r *Root) IsExtensionUsed(name string) bool {
	return contains(r.ExtensionsUsed, name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Accessor is a typed view into a buffer view, optionally overlaid by sparse values.
type Accessor struct {
	Name          string        `json:"name,omitempty"`
	BufferView    ObjectID      `json:"bufferView,omitzero"`
	ByteOffset    uint32        `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
	Normalized    bool          `json:"normalized,omitempty"`
	Count         uint32        `json:"count"`
	Type          AccessorType  `json:"type"`
	Max           []float32     `json:"max,omitempty"`
	Min           []float32     `json:"min,omitempty"`
	Sparse        *Sparse       `json:"sparse,omitempty"`
	Extensions    Extensions    `json:"extensions,omitzero"`
}

func (a *Accessor) UnmarshalJSON(data []byte) error {
	type alias Accessor
	tmp := alias{BufferView: NullID}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*a = Accessor(tmp)
	return nil
}

type Sparse struct {
	Count   uint32        `json:"count"`
	Indices SparseIndices `json:"indices"`
	Values  SparseValues  `json:"values"`
}

type SparseIndices struct {
	BufferView    ObjectID      `json:"bufferView"`
	ByteOffset    uint32        `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
}

type SparseValues struct {
	BufferView ObjectID `json:"bufferView"`
	ByteOffset uint32   `json:"byteOffset,omitempty"`
}

type BufferView struct {
	Name       string   `json:"name,omitempty"`
	Buffer     ObjectID `json:"buffer"`
	ByteOffset uint32   `json:"byteOffset,omitempty"`
	ByteLength uint32   `json:"byteLength"`
	ByteStride uint32   `json:"byteStride,omitempty"`
	Target     Target   `json:"target,omitzero"`
}

type Buffer struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	ByteLength uint32 `json:"byteLength"`
}

// Attributes maps semantic names (POSITION, NORMAL, ...) to accessors.
type Attributes map[string]ObjectID

type MeshExtras struct {
	TargetNames []string `json:"targetNames,omitempty"`
}

type Mesh struct {
	Name       string       `json:"name,omitempty"`
	Primitives []*Primitive `json:"primitives"`
	Weights    []float32    `json:"weights,omitempty"`
	Extensions Extensions   `json:"extensions,omitzero"`
	Extras     *MeshExtras  `json:"extras,omitempty"`
}

type Primitive struct {
	Attributes Attributes    `json:"attributes"`
	Indices    ObjectID      `json:"indices,omitzero"`
	Material   ObjectID      `json:"material,omitzero"`
	Mode       PrimitiveMode `json:"mode,omitzero"`
	Targets    []Attributes  `json:"targets,omitempty"`
	Extensions Extensions    `json:"extensions,omitzero"`
}

func (p *Primitive) UnmarshalJSON(data []byte) error {
	type alias Primitive
	tmp := alias{Indices: NullID, Material: NullID}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*p = Primitive(tmp)
	return nil
}

type Node struct {
	Name        string          `json:"name,omitempty"`
	Children    []ObjectID      `json:"children,omitempty"`
	Skin        ObjectID        `json:"skin,omitzero"`
	Mesh        ObjectID        `json:"mesh,omitzero"`
	Matrix      *[16]float32    `json:"matrix,omitempty"` // column-major
	Rotation    *[4]float32     `json:"rotation,omitempty"`
	Scale       *[3]float32     `json:"scale,omitempty"`
	Translation *[3]float32     `json:"translation,omitempty"`
	Weights     []float32       `json:"weights,omitempty"`
	Extensions  Extensions      `json:"extensions,omitzero"`
	Extras      json.RawMessage `json:"extras,omitempty"`
}

// NewNode returns a node with no mesh and no skin.
func NewNode(name string) *Node {
	return &Node{Name: name, Skin: NullID, Mesh: NullID}
}

func (n *Node) UnmarshalJSON(data []byte) error {
	type alias Node
	tmp := alias{Skin: NullID, Mesh: NullID}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*n = Node(tmp)
	return nil
}

type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *NormalTexture        `json:"normalTexture,omitempty"`
	OcclusionTexture     *OcclusionTexture     `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
	EmissiveFactor       *[3]float32           `json:"emissiveFactor,omitempty"`
	AlphaMode            AlphaMode             `json:"alphaMode,omitzero"`
	AlphaCutoff          *float32              `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	Extensions           Extensions            `json:"extensions,omitzero"`
	Extras               json.RawMessage       `json:"extras,omitempty"`
}

type PBRMetallicRoughness struct {
	BaseColorFactor          *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float32     `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

type TextureInfo struct {
	Index      ObjectID   `json:"index"`
	TexCoord   uint32     `json:"texCoord,omitempty"`
	Extensions Extensions `json:"extensions,omitzero"`
}

type NormalTexture struct {
	Index    ObjectID `json:"index"`
	TexCoord uint32   `json:"texCoord,omitempty"`
	Scale    *float32 `json:"scale,omitempty"`
}

type OcclusionTexture struct {
	Index    ObjectID `json:"index"`
	TexCoord uint32   `json:"texCoord,omitempty"`
	Strength *float32 `json:"strength,omitempty"`
}

type Texture struct {
	Name       string     `json:"name,omitempty"`
	Sampler    ObjectID   `json:"sampler,omitzero"`
	Source     ObjectID   `json:"source,omitzero"`
	Extensions Extensions `json:"extensions,omitzero"`
}

func (t *Texture) UnmarshalJSON(data []byte) error {
	type alias Texture
	tmp := alias{Sampler: NullID, Source: NullID}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*t = Texture(tmp)
	return nil
}

type Image struct {
	Name       string   `json:"name,omitempty"`
	URI        string   `json:"uri,omitempty"`
	MimeType   string   `json:"mimeType,omitempty"`
	BufferView ObjectID `json:"bufferView,omitzero"`
}

func (i *Image) UnmarshalJSON(data []byte) error {
	type alias Image
	tmp := alias{BufferView: NullID}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*i = Image(tmp)
	return nil
}

type Sampler struct {
	Name      string       `json:"name,omitempty"`
	MagFilter MagFilter    `json:"magFilter,omitzero"`
	MinFilter MinFilter    `json:"minFilter,omitzero"`
	WrapS     WrappingMode `json:"wrapS,omitzero"`
	WrapT     WrappingMode `json:"wrapT,omitzero"`
}

type Scene struct {
	Name  string     `json:"name,omitempty"`
	Nodes []ObjectID `json:"nodes,omitempty"`
}

type Skin struct {
	Name                string     `json:"name,omitempty"`
	InverseBindMatrices ObjectID   `json:"inverseBindMatrices,omitzero"`
	Skeleton            ObjectID   `json:"skeleton,omitzero"`
	Joints              []ObjectID `json:"joints"`
}

func (s *Skin) UnmarshalJSON(data []byte) error {
	type alias Skin
	tmp := alias{InverseBindMatrices: NullID, Skeleton: NullID}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*s = Skin(tmp)
	return nil
}

type Animation struct {
	Name     string              `json:"name,omitempty"`
	Channels []*Channel          `json:"channels"`
	Samplers []*AnimationSampler `json:"samplers"`
}

type Channel struct {
	Sampler ObjectID      `json:"sampler"`
	Target  ChannelTarget `json:"target"`
}

type ChannelTarget struct {
	Node ObjectID    `json:"node,omitzero"`
	Path TRSProperty `json:"path"`
}

func (c *ChannelTarget) UnmarshalJSON(data []byte) error {
	type alias ChannelTarget
	tmp := alias{Node: NullID}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*c = ChannelTarget(tmp)
	return nil
}

type AnimationSampler struct {
	Input         ObjectID      `json:"input"`
	Interpolation Interpolation `json:"interpolation,omitzero"`
	Output        ObjectID      `json:"output"`
}
