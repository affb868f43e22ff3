package exporter

import (
	"fmt"

	"github.com/binzume/glbexport/model"
)

// CreateSkin adds a skin over joints. inverseBind may be nil; otherwise it
// must hold one matrix per joint.
func (e *Exporter) CreateSkin(name string, joints []model.ObjectID, skeleton model.ObjectID, inverseBind [][4][4]float32) (model.ObjectID, error) {
	for _, j := range joints {
		if !j.In(len(e.Nodes)) {
			return model.NullID, fmt.Errorf("skin %q: joint %v: %w", name, j, model.ErrNullReference)
		}
	}
	if len(inverseBind) > 0 && len(inverseBind) != len(joints) {
		return model.NullID, fmt.Errorf("skin %q: %d inverse bind matrices for %d joints", name, len(inverseBind), len(joints))
	}
	return e.AddSkin(&model.Skin{
		Name:                name,
		Joints:              joints,
		Skeleton:            skeleton,
		InverseBindMatrices: e.CreateAccessorMatrix4(inverseBind),
	}), nil
}

// TranslationInverse returns the inverse bind matrix of a joint whose bind
// pose is a pure translation.
func TranslationInverse(pos [3]float32) [4][4]float32 {
	return [4][4]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{-pos[0], -pos[1], -pos[2], 1},
	}
}

// AddUnlitMaterial adds a material marked with KHR_materials_unlit.
func (e *Exporter) AddUnlitMaterial(m *model.Material) model.ObjectID {
	m.Extensions.Set(&model.MaterialsUnlit{})
	e.UseExtension(model.UnlitExtension, false)
	return e.AddMaterial(m)
}
