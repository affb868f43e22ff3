package converter

import (
	"os"

	"github.com/binzume/glbexport/config"
	"gopkg.in/yaml.v2"
)

// Scene is a scene description read from YAML. Objects refer to each other by name.
type Scene struct {
	Name       string       `yaml:"name"`
	Materials  []*Material  `yaml:"materials"`
	Meshes     []*Mesh      `yaml:"meshes"`
	Nodes      []*Node      `yaml:"nodes"`
	Skins      []*Skin      `yaml:"skins"`
	Animations []*Animation `yaml:"animations"`
}

type Material struct {
	Name        string      `yaml:"name"`
	Color       *[4]float32 `yaml:"color"`
	Metallic    *float32    `yaml:"metallic"`
	Roughness   *float32    `yaml:"roughness"`
	Emissive    *[3]float32 `yaml:"emissive"`
	Texture     string      `yaml:"texture"`
	NormalMap   string      `yaml:"normal_map"`
	Wrap        string      `yaml:"wrap"` // repeat, clamp, mirror
	Unlit       bool        `yaml:"unlit"`
	AlphaMode   string      `yaml:"alpha_mode"`
	AlphaCutoff *float32    `yaml:"alpha_cutoff"`
	DoubleSided bool        `yaml:"double_sided"`
}

type Mesh struct {
	Name       string         `yaml:"name"`
	Positions  [][3]float32   `yaml:"positions"`
	Normals    [][3]float32   `yaml:"normals"`
	Tangents   [][4]float32   `yaml:"tangents"`
	Colors     [][4]float32   `yaml:"colors"`
	UV         [][2]float32   `yaml:"uv"`
	UV1        [][2]float32   `yaml:"uv1"`
	Joints     [][4]uint16    `yaml:"joints"`
	Weights    [][4]float32   `yaml:"weights"`
	Primitives []*Primitive   `yaml:"primitives"`
	Morphs     []*MorphTarget `yaml:"morphs"`
}

type Primitive struct {
	Material string   `yaml:"material"`
	Mode     string   `yaml:"mode"`
	Indices  []uint32 `yaml:"indices"`
}

type MorphTarget struct {
	Name      string       `yaml:"name"`
	Positions [][3]float32 `yaml:"positions"`
	Normals   [][3]float32 `yaml:"normals"`
	Weight    *float32     `yaml:"weight"`
}

type Node struct {
	Name        string      `yaml:"name"`
	Translation *[3]float32 `yaml:"translation"`
	Rotation    *[4]float32 `yaml:"rotation"`
	Scale       *[3]float32 `yaml:"scale"`
	Mesh        string      `yaml:"mesh"`
	Skin        string      `yaml:"skin"`
	Children    []*Node     `yaml:"children"`
}

// Skin joints are node names. BindPositions gives the bind pose of each
// joint as a translation.
type Skin struct {
	Name          string       `yaml:"name"`
	Joints        []string     `yaml:"joints"`
	Skeleton      string       `yaml:"skeleton"`
	BindPositions [][3]float32 `yaml:"bind_positions"`
}

type Animation struct {
	Name     string     `yaml:"name"`
	Channels []*Channel `yaml:"channels"`
}

type Channel struct {
	Node        string             `yaml:"node"`
	Translation *Track[[3]float32] `yaml:"translation"`
	Rotation    *Track[[4]float32] `yaml:"rotation"`
	Scale       *Track[[3]float32] `yaml:"scale"`
	Weights     *Track[[]float32]  `yaml:"weights"`
}

// Track is a keyframe list. Tangents are used only when both lists are given.
type Track[T any] struct {
	Interpolation string    `yaml:"interpolation"`
	Times         []float32 `yaml:"times"`
	Values        []T       `yaml:"values"`
	InTangents    []T       `yaml:"in_tangents"`
	OutTangents   []T       `yaml:"out_tangents"`
}

// LoadScene reads a YAML scene description encoded in charset.
func LoadScene(path, charset string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if data, err = config.Transcode(data, charset); err != nil {
		return nil, err
	}
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}
