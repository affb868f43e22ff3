package vrm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/binzume/glbexport/model"
	"go.uber.org/zap"
)

// PresetDir holds <preset>.json files. Empty means "vrmconfig_presets" next
// to the executable.
var PresetDir string

type Config struct {
	Metadata Metadata `json:"meta"`

	BoneMappings     []*BoneMapping              `json:"boneMappings"`
	MorphMappings    []*MorphMapping             `json:"morphMappings"`
	MaterialSettings map[string]*MaterialSetting `json:"materialSettings"`

	AnimationBoneGroups []*AnimationBoneGroup `json:"animationBoneGroups"`

	Preset string `json:"preset"`
}

type BoneMapping struct {
	Bone
	NodeName string `json:"nodeName"`
}

type AnimationBoneGroup struct {
	SecondaryAnimationBoneGroup
	NodeNames []string `json:"nodeNames"`
}

// MorphMapping binds a blend shape to a morph target, by target name or by
// node and target index.
type MorphMapping struct {
	Name        string `json:"name"`
	NodeName    string `json:"nodeName"`
	TargetName  string `json:"targetName"`
	TargetIndex int    `json:"targetIndex"`
}

type MaterialSetting struct {
	ForceUnlit bool   `json:"forceUnlit"`
	AlphaMode  string `json:"alphaMode"`
}

type configApplier struct {
	doc        *Document
	ext        *VRM
	log        *zap.Logger
	nodes      map[string]int
	targets    map[string][2]int
	foundBones map[string]bool
}

func (a *configApplier) apply(conf *Config) {
	ext := a.ext
	for _, mapping := range conf.BoneMappings {
		if a.foundBones[mapping.Bone.Bone] {
			continue
		}
		if mapping.NodeName == "" {
			// explicitly unmapped
			a.foundBones[mapping.Bone.Bone] = true
			continue
		}
		id, ok := a.nodes[mapping.NodeName]
		if !ok {
			a.log.Warn("bone node not found", zap.String("bone", mapping.Bone.Bone), zap.String("node", mapping.NodeName))
			continue
		}
		b := mapping.Bone
		a.foundBones[b.Bone] = true
		b.Node = id
		b.UseDefaultValues = b.UseDefaultValues || b.Min == nil && b.Max == nil && b.Center == nil
		ext.Humanoid.Bones = append(ext.Humanoid.Bones, &b)
	}

	if len(conf.MaterialSettings) > 0 {
		for _, mat := range a.doc.Materials {
			setting := conf.MaterialSettings[mat.Name]
			if setting == nil {
				setting = conf.MaterialSettings["*"]
			}
			if setting == nil {
				continue
			}
			if setting.ForceUnlit {
				a.doc.Root().UseExtension(model.UnlitExtension, false)
				mat.Extensions.Set(&model.MaterialsUnlit{})
			}
			switch setting.AlphaMode {
			case "blend":
				mat.AlphaMode = model.AlphaBlend
			case "mask":
				mat.AlphaMode = model.AlphaMask
			}
		}
	}

	for _, group := range conf.AnimationBoneGroups {
		b := group.SecondaryAnimationBoneGroup
		for _, name := range group.NodeNames {
			if id, ok := a.nodes[name]; ok {
				b.Bones = append(b.Bones, id)
			} else {
				a.log.Warn("bone node not found", zap.String("node", name))
			}
		}
		if len(b.Bones) > 0 {
			if ext.SecondaryAnimation == nil {
				ext.SecondaryAnimation = &SecondaryAnimation{}
			}
			ext.SecondaryAnimation.BoneGroups = append(ext.SecondaryAnimation.BoneGroups, &b)
		}
	}

	for _, mapping := range conf.MorphMappings {
		bind := a.resolveMorph(mapping)
		if bind == nil {
			a.log.Warn("morph target not found",
				zap.String("name", mapping.Name),
				zap.String("target", mapping.TargetName),
				zap.String("node", mapping.NodeName))
			continue
		}
		ext.BlendShapeMaster.BlendShapeGroups = append(ext.BlendShapeMaster.BlendShapeGroups, &BlendShapeGroup{
			Name:       mapping.Name,
			PresetName: mapping.Name,
			Binds:      []*BlendShapeBind{bind},
		})
	}
}

func (a *configApplier) resolveMorph(mapping *MorphMapping) *BlendShapeBind {
	if mapping.TargetName != "" {
		if t, ok := a.targets[mapping.TargetName]; ok {
			return &BlendShapeBind{Mesh: t[0], Index: t[1], Weight: 100}
		}
		return nil
	}
	id, ok := a.nodes[mapping.NodeName]
	if !ok || a.doc.Nodes[id].Mesh.IsNull() {
		return nil
	}
	return &BlendShapeBind{Mesh: a.doc.Nodes[id].Mesh.Index(), Index: mapping.TargetIndex, Weight: 100}
}

func defaultMaterialProperty(name string) *MaterialProperty {
	return &MaterialProperty{
		Name:              name,
		Shader:            "VRM_USE_GLTFSHADER",
		RenderQueue:       2000,
		FloatProperties:   map[string]float64{},
		VectorProperties:  map[string][]float64{},
		TextureProperties: map[string]int{},
		KeywordMap:        map[string]bool{},
		TagMap:            map[string]string{},
	}
}

// ApplyConfig fills the VRM extension of doc from conf. A preset named by
// conf is applied first; mappings in conf take precedence. Required bones
// left unmapped are bound to nodes of the same name.
func ApplyConfig(doc *Document, conf *Config, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	ext := doc.VRM()
	ext.ExporterVersion = ExporterVersion
	ext.Meta = conf.Metadata

	if len(ext.MaterialProperties) != len(doc.Materials) {
		ext.MaterialProperties = []*MaterialProperty{}
		for _, mat := range doc.Materials {
			ext.MaterialProperties = append(ext.MaterialProperties, defaultMaterialProperty(mat.Name))
		}
	}

	a := &configApplier{
		doc:        doc,
		ext:        ext,
		log:        log,
		nodes:      doc.NodeIndex(),
		targets:    doc.MorphTargets(),
		foundBones: map[string]bool{},
	}
	ext.Humanoid.Bones = []*Bone{}

	if conf.Preset != "" {
		preset, err := loadPreset(conf.Preset)
		if err != nil {
			return err
		}
		a.apply(preset)
	}
	a.apply(conf)

	for _, name := range RequiredBones {
		if id, ok := a.nodes[name]; ok && !a.foundBones[name] {
			ext.Humanoid.Bones = append(ext.Humanoid.Bones, &Bone{Bone: name, Node: id, UseDefaultValues: true})
		}
	}
	return nil
}

func loadPreset(name string) (*Config, error) {
	dir := PresetDir
	if dir == "" {
		execPath, err := os.Executable()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(filepath.Dir(execPath), "vrmconfig_presets")
	}
	conf, err := LoadConfig(filepath.Join(dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("vrm: preset %s: %w", name, err)
	}
	return conf, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (doc *Document) ApplyConfigFile(path string, log *zap.Logger) error {
	conf, err := LoadConfig(path)
	if err != nil {
		return err
	}
	return ApplyConfig(doc, conf, log)
}
