package exporter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/binzume/glbexport/glb"
	"github.com/binzume/glbexport/model"
	"go.uber.org/zap"
)

// Export validates the document and writes it together with the packed
// buffer as a GLB container.
func (e *Exporter) Export(w io.Writer) error {
	e.Buffers[bufferID].ByteLength = uint32(len(e.buffer))
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	json, err := model.Encode(e.Root)
	if err != nil {
		return err
	}
	e.log.Debug("export",
		zap.Int("json", len(json)),
		zap.Int("bin", len(e.buffer)),
		zap.Int("accessors", len(e.Accessors)),
		zap.Int("meshes", len(e.Meshes)))
	return glb.Write(w, json, e.buffer)
}

// ExportFile writes the container to path. The file is replaced only when
// the export succeeds.
func (e *Exporter) ExportFile(path string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	w := bufio.NewWriter(f)
	if err = e.Export(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
