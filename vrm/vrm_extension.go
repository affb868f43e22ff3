package vrm

import (
	"fmt"
	"strings"

	"github.com/binzume/glbexport/model"
)

type Document model.Root

func (doc *Document) Root() *model.Root {
	return (*model.Root)(doc)
}

// VRM returns the VRM extension of doc, adding an empty one when missing.
func (doc *Document) VRM() *VRM {
	if ext, ok := doc.Extensions.Get(ExtensionName); ok {
		if v, ok := ext.(*VRM); ok {
			return v
		}
	}
	ext := NewVRM()
	doc.Extensions.Set(ext)
	doc.Root().UseExtension(ExtensionName, false)
	return ext
}

func (doc *Document) ValidateBones() error {
	errorBones := doc.VRM().CheckRequiredBones()
	if len(errorBones) > 0 {
		return fmt.Errorf("vrm: missing bones: %v", strings.Join(errorBones, ","))
	}
	return nil
}

// NodeIndex maps node names to their first index.
func (doc *Document) NodeIndex() map[string]int {
	nodes := map[string]int{}
	for id, node := range doc.Nodes {
		if _, ok := nodes[node.Name]; !ok {
			nodes[node.Name] = id
		}
	}
	return nodes
}

// MorphTargets maps morph target names, as recorded in mesh extras, to
// (mesh, target index) pairs.
func (doc *Document) MorphTargets() map[string][2]int {
	targets := map[string][2]int{}
	for mi, mesh := range doc.Meshes {
		if mesh.Extras == nil {
			continue
		}
		for i, name := range mesh.Extras.TargetNames {
			if _, ok := targets[name]; !ok {
				targets[name] = [2]int{mi, i}
			}
		}
	}
	return targets
}
