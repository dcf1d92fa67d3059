package app

import (
	"errors"
	"io/fs"
	"os"

	"github.com/specialistvlad/dicompiler/internal/depcheck"
)

// freshMeta reads the metadata of the last compile and reports whether the
// output can be reused.
func (a *App) freshMeta() (depcheck.Meta, bool, error) {
	if _, err := os.Stat(a.config.OutputPath); errors.Is(err, fs.ErrNotExist) {
		return depcheck.Meta{}, false, nil
	}

	meta, err := depcheck.ReadMeta(a.metaPath())
	if errors.Is(err, fs.ErrNotExist) {
		return depcheck.Meta{}, false, nil
	}
	if err != nil {
		a.logger.Warn("Dependency metadata is unreadable, recompiling.", "error", err)
		return depcheck.Meta{}, false, nil
	}

	expired, err := depcheck.IsExpired(meta)
	if err != nil {
		return depcheck.Meta{}, false, err
	}
	return meta, !expired, nil
}
