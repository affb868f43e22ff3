package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"export.yaml", "copyright: ACME\ntexture:\n  max_resolution: 1024\nlogging:\n  level: debug\n"},
		{"export.toml", "copyright = \"ACME\"\n[texture]\nmax_resolution = 1024\n[logging]\nlevel = \"debug\"\n"},
		{"export.json", `{"copyright":"ACME","texture":{"max_resolution":1024},"logging":{"level":"debug"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.name, []byte(tt.data)))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Copyright != "ACME" || cfg.Texture.MaxResolution != 1024 || cfg.Logging.Level != "debug" {
				t.Errorf("cfg = %+v", cfg)
			}
			// defaults survive
			if cfg.Generator != Default().Generator || cfg.Texture.JPEGQuality != 90 || cfg.Texture.Scale != 1 {
				t.Errorf("defaults lost: %+v", cfg)
			}
		})
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	if _, err := Load(writeFile(t, "export.ini", []byte("a=1"))); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestLoadShiftJIS(t *testing.T) {
	data, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("copyright: 著作者\n"))
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "sjis.yaml", data)
	cfg, err := LoadWithCharset(path, "shift_jis")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Copyright != "著作者" {
		t.Errorf("copyright = %q", cfg.Copyright)
	}
	if _, err := LoadWithCharset(path, "ebcdic"); err == nil {
		t.Error("expected error for unsupported charset")
	}
}

func TestExporterOptions(t *testing.T) {
	cfg := Default()
	cfg.Copyright = "ACME"
	cfg.Texture.ReCompress = true
	opt := cfg.ExporterOptions(nil)
	if opt.Generator != cfg.Generator || opt.Copyright != "ACME" || !opt.Texture.ReCompress || opt.Texture.JPEGQuality != 90 {
		t.Errorf("options = %+v", opt)
	}
}
