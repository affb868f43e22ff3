package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/glbexport/exporter"
	"github.com/binzume/glbexport/model"
	"go.uber.org/zap"
)

var ErrUnknownReference = errors.New("converter: unknown reference")

type sceneToGlb struct {
	*exporter.Exporter
	log *zap.Logger

	materials map[string]model.ObjectID
	meshes    map[string]model.ObjectID
	nodes     map[string]model.ObjectID
	skins     map[string]model.ObjectID
	nodeIDs   map[*Node]model.ObjectID
}

func NewSceneToGLBConverter(options *exporter.Options) *sceneToGlb {
	if options == nil {
		options = &exporter.Options{}
	}
	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &sceneToGlb{
		Exporter:  exporter.NewExporter(options),
		log:       log,
		materials: map[string]model.ObjectID{},
		meshes:    map[string]model.ObjectID{},
		nodes:     map[string]model.ObjectID{},
		skins:     map[string]model.ObjectID{},
		nodeIDs:   map[*Node]model.ObjectID{},
	}
}

func lookup(m map[string]model.ObjectID, kind, name string) (model.ObjectID, error) {
	if name == "" {
		return model.NullID, nil
	}
	if id, ok := m[name]; ok {
		return id, nil
	}
	return model.NullID, fmt.Errorf("%w: %s %q", ErrUnknownReference, kind, name)
}

func (c *sceneToGlb) addTexture(path, textureDir string, wrap model.WrappingMode) (model.ObjectID, error) {
	data, err := os.ReadFile(filepath.Join(textureDir, path))
	if err != nil {
		return model.NullID, err
	}
	return c.CreateSampledTexture(&exporter.SampledTextureUnit{
		Name:    filepath.ToSlash(path),
		Data:    data,
		Sampler: model.Sampler{WrapS: wrap, WrapT: wrap},
	})
}

func wrappingMode(s string) model.WrappingMode {
	switch strings.ToLower(s) {
	case "clamp":
		return model.WrapClampToEdge
	case "mirror":
		return model.WrapMirroredRepeat
	}
	return model.WrapRepeat
}

func (c *sceneToGlb) convertMaterial(mat *Material, textureDir string) *model.Material {
	var rf float32 = 0.4
	var mf float32
	mm := &model.Material{
		Name: mat.Name,
		PBRMetallicRoughness: &model.PBRMetallicRoughness{
			BaseColorFactor: mat.Color,
			MetallicFactor:  &mf,
			RoughnessFactor: &rf,
		},
		EmissiveFactor: mat.Emissive,
		AlphaCutoff:    mat.AlphaCutoff,
		DoubleSided:    mat.DoubleSided,
	}
	if mat.Metallic != nil {
		mm.PBRMetallicRoughness.MetallicFactor = mat.Metallic
	}
	if mat.Roughness != nil {
		mm.PBRMetallicRoughness.RoughnessFactor = mat.Roughness
	}
	switch strings.ToLower(mat.AlphaMode) {
	case "blend":
		mm.AlphaMode = model.AlphaBlend
	case "mask":
		mm.AlphaMode = model.AlphaMask
	case "":
		if mat.Color != nil && mat.Color[3] < 0.99 {
			mm.AlphaMode = model.AlphaBlend
		}
	}

	wrap := wrappingMode(mat.Wrap)
	if mat.Texture != "" {
		if tex, err := c.addTexture(mat.Texture, textureDir, wrap); err == nil {
			mm.PBRMetallicRoughness.BaseColorTexture = &model.TextureInfo{Index: tex}
		} else {
			c.log.Warn("texture read error", zap.String("texture", mat.Texture), zap.Error(err))
		}
	}
	if mat.NormalMap != "" {
		if tex, err := c.addTexture(mat.NormalMap, textureDir, wrap); err == nil {
			mm.NormalTexture = &model.NormalTexture{Index: tex}
		} else {
			c.log.Warn("texture read error", zap.String("texture", mat.NormalMap), zap.Error(err))
		}
	}
	return mm
}

var primitiveModes = map[string]model.PrimitiveMode{
	"":               model.PrimitiveTriangles,
	"triangles":      model.PrimitiveTriangles,
	"points":         model.PrimitivePoints,
	"lines":          model.PrimitiveLines,
	"line_loop":      model.PrimitiveLineLoop,
	"line_strip":     model.PrimitiveLineStrip,
	"triangle_strip": model.PrimitiveTriangleStrip,
	"triangle_fan":   model.PrimitiveTriangleFan,
}

func (c *sceneToGlb) convertMesh(mesh *Mesh) (model.ObjectID, error) {
	unit := &exporter.MeshUnit{
		Name:       mesh.Name,
		Positions:  mesh.Positions,
		Normals:    mesh.Normals,
		Tangents:   mesh.Tangents,
		Colors:     mesh.Colors,
		TexCoords0: mesh.UV,
		TexCoords1: mesh.UV1,
		Joints:     mesh.Joints,
		Weights:    mesh.Weights,
	}
	for _, p := range mesh.Primitives {
		mat, err := lookup(c.materials, "material", p.Material)
		if err != nil {
			return model.NullID, err
		}
		mode, ok := primitiveModes[strings.ToLower(p.Mode)]
		if !ok {
			return model.NullID, fmt.Errorf("mesh %q: unknown primitive mode %q", mesh.Name, p.Mode)
		}
		unit.Primitives = append(unit.Primitives, &exporter.PrimitiveUnit{
			Indices:  p.Indices,
			Material: mat,
			Mode:     mode,
		})
	}
	for _, m := range mesh.Morphs {
		unit.MorphTargets = append(unit.MorphTargets, &exporter.MorphTarget{
			Name:      m.Name,
			Positions: m.Positions,
			Normals:   m.Normals,
			Weight:    m.Weight,
		})
	}
	return c.CreateMesh(unit)
}

func (c *sceneToGlb) convertNode(n *Node) (model.ObjectID, error) {
	node := model.NewNode(n.Name)
	node.Translation = n.Translation
	node.Rotation = n.Rotation
	node.Scale = n.Scale
	mesh, err := lookup(c.meshes, "mesh", n.Mesh)
	if err != nil {
		return model.NullID, err
	}
	node.Mesh = mesh
	if mesh.IsNull() && n.Mesh != "" {
		c.log.Warn("node references an empty mesh", zap.String("node", n.Name), zap.String("mesh", n.Mesh))
	}
	for _, child := range n.Children {
		id, err := c.convertNode(child)
		if err != nil {
			return model.NullID, err
		}
		node.Children = append(node.Children, id)
	}
	id := c.AddNode(node)
	c.nodeIDs[n] = id
	if _, ok := c.nodes[n.Name]; !ok && n.Name != "" {
		c.nodes[n.Name] = id
	}
	return id, nil
}

func (c *sceneToGlb) bindSkins(nodes []*Node) error {
	for _, n := range nodes {
		if n.Skin != "" {
			skin, err := lookup(c.skins, "skin", n.Skin)
			if err != nil {
				return err
			}
			c.Nodes[c.nodeIDs[n]].Skin = skin
		}
		if err := c.bindSkins(n.Children); err != nil {
			return err
		}
	}
	return nil
}

func (c *sceneToGlb) convertSkin(skin *Skin) (model.ObjectID, error) {
	joints := make([]model.ObjectID, len(skin.Joints))
	for i, name := range skin.Joints {
		id, err := lookup(c.nodes, "joint", name)
		if err != nil {
			return model.NullID, err
		}
		joints[i] = id
	}
	skeleton, err := lookup(c.nodes, "skeleton", skin.Skeleton)
	if err != nil {
		return model.NullID, err
	}
	var inverseBind [][4][4]float32
	for _, p := range skin.BindPositions {
		inverseBind = append(inverseBind, exporter.TranslationInverse(p))
	}
	return c.CreateSkin(skin.Name, joints, skeleton, inverseBind)
}

var interpolations = map[string]model.Interpolation{
	"":            model.InterpolationLinear,
	"linear":      model.InterpolationLinear,
	"step":        model.InterpolationStep,
	"cubicspline": model.InterpolationCubicSpline,
}

func keyframes[T any](path string, t *Track[T]) (exporter.KeyframeChannel[T], error) {
	var ch exporter.KeyframeChannel[T]
	if t == nil {
		return ch, nil
	}
	interp, ok := interpolations[strings.ToLower(t.Interpolation)]
	if !ok {
		return ch, fmt.Errorf("%s: unknown interpolation %q", path, t.Interpolation)
	}
	if len(t.Values) != len(t.Times) {
		return ch, fmt.Errorf("%s: %d values for %d key times", path, len(t.Values), len(t.Times))
	}
	ch.Interpolation = interp
	ch.Tangents = len(t.InTangents) == len(t.Times) && len(t.OutTangents) == len(t.Times) && len(t.Times) > 0
	for i, time := range t.Times {
		k := exporter.Keyframe[T]{Time: time, Value: t.Values[i]}
		if ch.Tangents {
			k.InTangent = t.InTangents[i]
			k.OutTangent = t.OutTangents[i]
		}
		ch.Keys = append(ch.Keys, k)
	}
	return ch, nil
}

func (c *sceneToGlb) convertAnimation(anim *Animation) error {
	a := &model.Animation{Name: anim.Name}
	for _, ch := range anim.Channels {
		node, err := lookup(c.nodes, "node", ch.Node)
		if err != nil {
			return err
		}
		b := &exporter.KeyframeAccessorBundle{}
		if b.Translation, err = keyframes("translation", ch.Translation); err != nil {
			return err
		}
		if b.Rotation, err = keyframes("rotation", ch.Rotation); err != nil {
			return err
		}
		if b.Scale, err = keyframes("scale", ch.Scale); err != nil {
			return err
		}
		if b.Weights, err = keyframes("weights", ch.Weights); err != nil {
			return err
		}
		if err := c.AddAnimationChannels(a, node, b); err != nil {
			return fmt.Errorf("animation %q node %q: %w", anim.Name, ch.Node, err)
		}
	}
	if len(a.Channels) == 0 {
		c.log.Warn("animation without channels", zap.String("animation", anim.Name))
		return nil
	}
	c.AddAnimation(a)
	return nil
}

// Convert builds an export session from scene. Texture paths are relative
// to textureDir.
func (c *sceneToGlb) Convert(scene *Scene, textureDir string) (*exporter.Exporter, error) {
	for _, mat := range scene.Materials {
		mm := c.convertMaterial(mat, textureDir)
		var id model.ObjectID
		if mat.Unlit {
			id = c.AddUnlitMaterial(mm)
		} else {
			id = c.AddMaterial(mm)
		}
		c.materials[mat.Name] = id
	}

	for _, mesh := range scene.Meshes {
		id, err := c.convertMesh(mesh)
		if err != nil {
			return nil, err
		}
		c.meshes[mesh.Name] = id
	}

	root := &model.Scene{Name: scene.Name}
	for _, n := range scene.Nodes {
		id, err := c.convertNode(n)
		if err != nil {
			return nil, err
		}
		root.Nodes = append(root.Nodes, id)
	}
	c.Scene = c.AddScene(root)

	for _, skin := range scene.Skins {
		id, err := c.convertSkin(skin)
		if err != nil {
			return nil, err
		}
		c.skins[skin.Name] = id
	}
	if err := c.bindSkins(scene.Nodes); err != nil {
		return nil, err
	}

	for _, anim := range scene.Animations {
		if err := c.convertAnimation(anim); err != nil {
			return nil, err
		}
	}

	c.log.Info("scene converted",
		zap.String("scene", scene.Name),
		zap.Int("meshes", len(c.Meshes)),
		zap.Int("nodes", len(c.Nodes)),
		zap.Int("animations", len(c.Animations)),
		zap.Int("bytes", c.Len()))
	return c.Exporter, nil
}
