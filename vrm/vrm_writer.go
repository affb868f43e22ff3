package vrm

import (
	"io"

	"github.com/binzume/glbexport/glb"
	"github.com/binzume/glbexport/model"
)

// Write writes doc and its binary buffer as a .vrm (GLB) stream.
func Write(w io.Writer, doc *Document, bin []byte) error {
	json, err := model.Encode(doc.Root())
	if err != nil {
		return err
	}
	return glb.Write(w, json, bin)
}
