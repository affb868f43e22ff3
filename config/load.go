package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/encoding/japanese"
	"gopkg.in/yaml.v2"
)

var ErrUnknownFormat = errors.New("config: unknown file format")

// Load reads a UTF-8 config file over the defaults.
func Load(path string) (*Config, error) {
	return LoadWithCharset(path, "")
}

// LoadWithCharset is Load for files in charset ("" or "utf-8", "shift_jis").
func LoadWithCharset(path, charset string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if data, err = Transcode(data, charset); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	cfg := Default()
	if err := Unmarshal(data, Format(path), cfg); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Format returns the format name for a file extension.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	}
	return ""
}

// Unmarshal decodes data in format into v, keeping fields absent from data.
func Unmarshal(data []byte, format string, v interface{}) error {
	switch format {
	case "yaml":
		return yaml.Unmarshal(data, v)
	case "toml":
		return toml.Unmarshal(data, v)
	case "json":
		return json.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Transcode converts data in charset to UTF-8.
func Transcode(data []byte, charset string) ([]byte, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return data, nil
	case "shift_jis", "sjis", "cp932":
		return japanese.ShiftJIS.NewDecoder().Bytes(data)
	}
	return nil, fmt.Errorf("config: unsupported charset %q", charset)
}
