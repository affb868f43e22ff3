package vrm

// https://vrm.dev/
// https://github.com/vrm-c/vrm-specification/blob/master/specification/0.0/README.ja.md

import (
	"encoding/json"

	"github.com/binzume/glbexport/model"
)

const (
	ExtensionName   = "VRM"
	ExporterVersion = "glbexport-0.1"
)

func init() {
	model.RegisterExtension(ExtensionName, Unmarshal)
}

var RequiredBones = []string{
	"hips", "spine", "chest", "neck", "head",
	"leftUpperArm", "leftLowerArm", "leftHand",
	"rightUpperArm", "rightLowerArm", "rightHand",
	"leftUpperLeg", "leftLowerLeg", "leftFoot",
	"rightUpperLeg", "rightLowerLeg", "rightFoot",
}

type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type Metadata struct {
	Title   string `json:"title"`
	Version string `json:"version"`
	Author  string `json:"author"`

	ContactInformation string `json:"contactInformation,omitempty"`
	Reference          string `json:"reference,omitempty"`
	Texture            *int   `json:"texture,omitempty"`

	AllowedUserName     string `json:"allowedUserName,omitempty"`
	ViolentUsageName    string `json:"violentUssageName,omitempty"`
	SexualUsageName     string `json:"sexualUssageName,omitempty"`
	CommercialUsageName string `json:"commercialUssageName,omitempty"`
	OtherPermissionURL  string `json:"otherPermissionUrl,omitempty"`
	LicenseName         string `json:"licenseName"`
	OtherLicenseURL     string `json:"otherLicenseUrl"`
}

type Bone struct {
	Bone             string  `json:"bone"`
	Node             int     `json:"node"`
	UseDefaultValues bool    `json:"useDefaultValues"`
	Min              *Vec3   `json:"min,omitempty"`
	Max              *Vec3   `json:"max,omitempty"`
	Center           *Vec3   `json:"center,omitempty"`
	AxisLength       float32 `json:"axisLength,omitempty"`
}

type Humanoid struct {
	Bones []*Bone `json:"humanBones"`
}

type BlendShapeBind struct {
	Mesh   int     `json:"mesh"`
	Index  int     `json:"index"`
	Weight float32 `json:"weight"`
}

type BlendShapeGroup struct {
	Name       string            `json:"name"`
	PresetName string            `json:"presetName"`
	Binds      []*BlendShapeBind `json:"binds"`
	IsBinary   bool              `json:"isBinary,omitempty"`
}

type BlendShapeMaster struct {
	BlendShapeGroups []*BlendShapeGroup `json:"blendShapeGroups"`
}

type SecondaryAnimationBoneGroup struct {
	Comment        string  `json:"comment"`
	Stiffness      float32 `json:"stiffiness"`
	GravityPower   float32 `json:"gravityPower"`
	GravityDir     Vec3    `json:"gravityDir"`
	DragForce      float32 `json:"dragForce"`
	Center         int     `json:"center"`
	HitRadius      float32 `json:"hitRadius"`
	Bones          []int   `json:"bones"`
	ColliderGroups []int   `json:"colliderGroups"`
}

type SecondaryAnimation struct {
	BoneGroups     []*SecondaryAnimationBoneGroup `json:"boneGroups"`
	ColliderGroups []json.RawMessage              `json:"colliderGroups"`
}

type MaterialProperty struct {
	Name              string               `json:"name"`
	Shader            string               `json:"shader"`
	RenderQueue       int                  `json:"renderQueue"`
	FloatProperties   map[string]float64   `json:"floatProperties"`
	VectorProperties  map[string][]float64 `json:"vectorProperties"`
	TextureProperties map[string]int       `json:"textureProperties"`
	KeywordMap        map[string]bool      `json:"keywordMap"`
	TagMap            map[string]string    `json:"tagMap"`
}

// VRM is the VRM 0.x root extension.
type VRM struct {
	Meta               Metadata            `json:"meta"`
	Humanoid           Humanoid            `json:"humanoid"`
	FirstPerson        json.RawMessage     `json:"firstPerson,omitempty"`
	BlendShapeMaster   BlendShapeMaster    `json:"blendShapeMaster"`
	SecondaryAnimation *SecondaryAnimation `json:"secondaryAnimation,omitempty"`
	MaterialProperties []*MaterialProperty `json:"materialProperties"`
	ExporterVersion    string              `json:"exporterVersion"`
}

func NewVRM() *VRM {
	return &VRM{
		Humanoid:           Humanoid{Bones: []*Bone{}},
		BlendShapeMaster:   BlendShapeMaster{BlendShapeGroups: []*BlendShapeGroup{}},
		MaterialProperties: []*MaterialProperty{},
		ExporterVersion:    ExporterVersion,
	}
}

func (*VRM) ExtensionName() string { return ExtensionName }

func Unmarshal(data []byte) (model.Extension, error) {
	var ext VRM
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, err
	}
	return &ext, nil
}

func (v *VRM) Title() string {
	return v.Meta.Title
}

func (v *VRM) Author() string {
	return v.Meta.Author
}

// CheckRequiredBones returns the required humanoid bones that are not mapped.
func (v *VRM) CheckRequiredBones() []string {
	mapped := map[string]bool{}
	for _, b := range v.Humanoid.Bones {
		mapped[b.Bone] = true
	}
	var missing []string
	for _, name := range RequiredBones {
		if !mapped[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
