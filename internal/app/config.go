package app

import (
	"errors"

	"github.com/specialistvlad/dicompiler/internal/compiler"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // files or directories with configuration files
	OutputPath  string   // generated file; empty writes to the output writer

	ClassName     string
	Package       string
	DynamicParams []string
	Debug         bool

	Cache bool // skip compiling while the dependency metadata is fresh
	Watch bool // recompile when a dependency changes

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	if (cfg.Cache || cfg.Watch) && cfg.OutputPath == "" {
		return nil, errors.New("cache and watch modes require an output file")
	}
	if cfg.ClassName == "" {
		cfg.ClassName = compiler.DefaultClassName
	}
	if cfg.Package == "" {
		cfg.Package = compiler.DefaultPackage
	}
	return &cfg, nil
}
