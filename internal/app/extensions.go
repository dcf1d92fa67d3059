package app

import (
	"github.com/specialistvlad/dicompiler/internal/compiler"
	"github.com/specialistvlad/dicompiler/modules/di"
	"github.com/specialistvlad/dicompiler/modules/extensions"
	"github.com/specialistvlad/dicompiler/modules/inject"
)

// ExtensionFactory creates a fresh extension for every compile.
type ExtensionFactory struct {
	Name string
	New  func(cfg *Config) compiler.Extension
}

// coreExtensions is the definitive list of extensions every compile
// starts with. Others are enabled from the `extensions` section.
var coreExtensions = []ExtensionFactory{
	{Name: extensions.SectionName, New: func(cfg *Config) compiler.Extension {
		return extensions.New(extensionKinds(cfg))
	}},
	{Name: di.SectionName, New: func(cfg *Config) compiler.Extension {
		return di.New(cfg.Debug)
	}},
}

// extensionKinds lists the extensions the `extensions` section can enable.
func extensionKinds(cfg *Config) map[string]extensions.Factory {
	return map[string]extensions.Factory{
		"inject": func() compiler.Extension { return inject.New() },
		"di":     func() compiler.Extension { return di.New(cfg.Debug) },
	}
}
