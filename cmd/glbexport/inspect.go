package main

import (
	"fmt"
	"io"
	"os"

	"github.com/binzume/glbexport/vrm"
	"github.com/qmuntal/gltf"
)

func inspect(w io.Writer, path string) error {
	doc, err := gltf.Open(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "generator:  %s\n", doc.Asset.Generator)
	fmt.Fprintf(w, "extensions: %v\n", doc.ExtensionsUsed)
	fmt.Fprintf(w, "scenes:     %d\n", len(doc.Scenes))
	fmt.Fprintf(w, "nodes:      %d\n", len(doc.Nodes))
	fmt.Fprintf(w, "meshes:     %d\n", len(doc.Meshes))
	for _, m := range doc.Meshes {
		fmt.Fprintf(w, "  %s: %d primitives\n", m.Name, len(m.Primitives))
	}
	fmt.Fprintf(w, "materials:  %d\n", len(doc.Materials))
	fmt.Fprintf(w, "textures:   %d\n", len(doc.Textures))
	fmt.Fprintf(w, "skins:      %d\n", len(doc.Skins))
	fmt.Fprintf(w, "animations: %d\n", len(doc.Animations))
	fmt.Fprintf(w, "accessors:  %d\n", len(doc.Accessors))

	for _, ext := range doc.ExtensionsUsed {
		if ext != vrm.ExtensionName {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		v, _, err := vrm.Parse(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "vrm title:  %s\n", v.VRM().Title())
		fmt.Fprintf(w, "vrm author: %s\n", v.VRM().Author())
		if err := v.ValidateBones(); err != nil {
			fmt.Fprintf(w, "vrm bones:  %v\n", err)
		}
	}
	return nil
}
