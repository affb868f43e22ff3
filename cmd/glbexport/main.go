package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/glbexport/config"
	"github.com/binzume/glbexport/logger"
	"go.uber.org/zap"
)

func defaultOutputFile(input string) string {
	ext := filepath.Ext(input)
	return input[0:len(input)-len(ext)] + ".glb"
}

func defaultVRMConfig(input string) string {
	confFile := input[0:len(input)-len(filepath.Ext(input))] + ".vrmconfig.json"
	if _, err := os.Stat(confFile); err != nil {
		return ""
	}
	return confFile
}

var exit = os.Exit

// fail logs err, flushes the log outputs and exits with status 1.
func fail(log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	logger.Sync()
	exit(1)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] build scene.yaml [output.glb|output.vrm]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [flags] inspect input.glb\n", os.Args[0])
		flag.PrintDefaults()
	}
	confPath := flag.String("config", "", "export settings (.yaml, .toml, .json)")
	charset := flag.String("charset", "", "charset of scene and config files (utf-8, shift_jis)")
	vrmconf := flag.String("vrmconfig", "", "config file for VRM")
	logLevel := flag.String("loglevel", "", "debug, info, warn, error")
	logFile := flag.String("logfile", "", "log file path")
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *confPath != "" {
		c, err := config.LoadWithCharset(*confPath, *charset)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = c
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Logging.File = *logFile
	}
	log, err := logger.Init(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	input := flag.Arg(1)
	switch cmd := flag.Arg(0); cmd {
	case "build":
		output := defaultOutputFile(input)
		if flag.NArg() > 2 {
			output = flag.Arg(2)
		}
		if *vrmconf != "" {
			cfg.VRMConfig = *vrmconf
		} else if cfg.VRMConfig == "" {
			cfg.VRMConfig = defaultVRMConfig(input)
		}
		log.Info("build", zap.String("in", input), zap.String("out", output))
		if err := build(cfg, log, input, output, *charset); err != nil {
			fail(log, "build failed", err)
		}
	case "inspect":
		if err := inspect(os.Stdout, input); err != nil {
			fail(log, "inspect failed", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", strings.TrimSpace(cmd))
		flag.Usage()
		os.Exit(2)
	}
}
