package main

import (
	"path/filepath"
	"strings"

	"github.com/binzume/glbexport/config"
	"github.com/binzume/glbexport/converter"
	"github.com/binzume/glbexport/vrm"
	"go.uber.org/zap"
)

func build(cfg *config.Config, log *zap.Logger, input, output, charset string) error {
	scene, err := converter.LoadScene(input, charset)
	if err != nil {
		return err
	}
	e, err := converter.NewSceneToGLBConverter(cfg.ExporterOptions(log)).Convert(scene, filepath.Dir(input))
	if err != nil {
		return err
	}

	if strings.ToLower(filepath.Ext(output)) == ".vrm" {
		doc := (*vrm.Document)(e.Root)
		if cfg.VRMConfig != "" {
			if err := doc.ApplyConfigFile(cfg.VRMConfig, log); err != nil {
				return err
			}
		} else {
			log.Warn("no vrm config")
			if err := vrm.ApplyConfig(doc, &vrm.Config{}, log); err != nil {
				return err
			}
		}
		log.Info("vrm", zap.String("title", doc.VRM().Title()), zap.String("author", doc.VRM().Author()))
		if err := doc.ValidateBones(); err != nil {
			log.Warn("invalid humanoid", zap.Error(err))
		}
	}
	return e.ExportFile(output)
}
