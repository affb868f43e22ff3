package vrm

import (
	"bytes"
	"io"

	"github.com/binzume/glbexport/glb"
	"github.com/binzume/glbexport/model"
)

// Parse reads a .vrm (GLB) stream. The returned bytes are the BIN chunk.
func Parse(r io.Reader) (*Document, []byte, error) {
	json, bin, err := glb.Read(r)
	if err != nil {
		return nil, nil, err
	}
	root, err := model.Decode(bytes.TrimRight(json, " "))
	if err != nil {
		return nil, nil, err
	}
	return (*Document)(root), bin, nil
}
