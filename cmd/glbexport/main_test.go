package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binzume/glbexport/config"
	"github.com/binzume/glbexport/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const scene = `
name: tri
meshes:
  - name: tri
    positions: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    primitives:
      - indices: [0, 1, 2]
nodes:
  - name: hips
    mesh: tri
`

func TestBuildInspect(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tri.yaml")
	if err := os.WriteFile(input, []byte(scene), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, out := range []string{"tri.glb", "tri.vrm"} {
		output := filepath.Join(dir, out)
		if err := build(config.Default(), zap.NewNop(), input, output, ""); err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := inspect(&buf, output); err != nil {
			t.Fatal(err)
		}
		text := buf.String()
		if !strings.Contains(text, "meshes:     1") || !strings.Contains(text, "glbexport") {
			t.Errorf("%s:\n%s", out, text)
		}
		if strings.HasSuffix(out, ".vrm") != strings.Contains(text, "vrm bones:") {
			t.Errorf("%s: unexpected vrm section:\n%s", out, text)
		}
	}
}

func TestDefaultOutputFile(t *testing.T) {
	if got := defaultOutputFile(filepath.Join("a", "scene.yaml")); got != filepath.Join("a", "scene.glb") {
		t.Errorf("got %s", got)
	}
}

type syncBuffer struct {
	bytes.Buffer
	synced bool
}

func (b *syncBuffer) Sync() error {
	b.synced = true
	return nil
}

func TestFailSyncsLog(t *testing.T) {
	var out syncBuffer
	log := zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), &out, zap.DebugLevel))
	savedLog, savedExit := logger.Log, exit
	defer func() { logger.Log, exit = savedLog, savedExit }()
	logger.Log = log

	code, syncedBeforeExit := -1, false
	exit = func(c int) {
		code, syncedBeforeExit = c, out.synced
	}
	fail(log, "build failed", errors.New("no such scene"))

	if code != 1 {
		t.Errorf("exit code = %d", code)
	}
	if !syncedBeforeExit {
		t.Error("log was not synced before exit")
	}
	if !strings.Contains(out.String(), "no such scene") {
		t.Errorf("log = %q", out.String())
	}
}
