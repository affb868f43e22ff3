// Package config loads export settings from YAML, TOML or JSON files.
package config

import (
	"github.com/binzume/glbexport/exporter"
	"go.uber.org/zap"
)

type Config struct {
	Generator string        `yaml:"generator" toml:"generator" json:"generator"`
	Copyright string        `yaml:"copyright" toml:"copyright" json:"copyright"`
	Texture   TextureConfig `yaml:"texture" toml:"texture" json:"texture"`
	Logging   LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`

	// VRMConfig is the path of a VRM mapping file applied to .vrm outputs.
	VRMConfig string `yaml:"vrm_config" toml:"vrm_config" json:"vrm_config"`
}

type TextureConfig struct {
	ReCompress    bool    `yaml:"recompress" toml:"recompress" json:"recompress"`
	MaxResolution int     `yaml:"max_resolution" toml:"max_resolution" json:"max_resolution"`
	Scale         float32 `yaml:"scale" toml:"scale" json:"scale"`
	JPEGQuality   int     `yaml:"jpeg_quality" toml:"jpeg_quality" json:"jpeg_quality"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	File  string `yaml:"file" toml:"file" json:"file"`
}

func Default() *Config {
	return &Config{
		Generator: exporter.DefaultGenerator,
		Texture: TextureConfig{
			Scale:       1,
			JPEGQuality: 90,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ExporterOptions converts the settings into options for a new export session.
func (c *Config) ExporterOptions(log *zap.Logger) *exporter.Options {
	return &exporter.Options{
		Generator: c.Generator,
		Copyright: c.Copyright,
		Logger:    log,
		Texture: exporter.TextureOptions{
			ReCompress:    c.Texture.ReCompress,
			MaxResolution: c.Texture.MaxResolution,
			Scale:         c.Texture.Scale,
			JPEGQuality:   c.Texture.JPEGQuality,
		},
	}
}
