package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/specialistvlad/dicompiler/internal/compiler"
	"github.com/specialistvlad/dicompiler/internal/ctxlog"
	"github.com/specialistvlad/dicompiler/internal/depcheck"
	"github.com/specialistvlad/dicompiler/internal/fsutil"
	"github.com/specialistvlad/dicompiler/internal/loader"
)

// MetaSuffix is appended to the output path to name the dependency
// metadata file used by the cache.
const MetaSuffix = ".deps.json"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	extensions []ExtensionFactory
	debounce   time.Duration
}

// Result describes one compile.
type Result struct {
	Source       string
	Dependencies []string
	// Cached is set when the output was fresh and nothing was compiled.
	Cached bool
}

// NewApp is the constructor for the main application. Generated code goes
// to outW unless an output file is configured; logs go to logW. extra
// extensions are registered after the core ones.
func NewApp(outW, logW io.Writer, cfg *Config, extra ...ExtensionFactory) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	exts := append(append([]ExtensionFactory(nil), coreExtensions...), extra...)
	return &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		extensions: exts,
		debounce:   100 * time.Millisecond,
	}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run compiles once and, in watch mode, keeps recompiling until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	res, err := a.Compile(ctx)
	if err != nil {
		return err
	}
	if !a.config.Watch {
		return nil
	}
	return a.Watch(ctx, res.Dependencies)
}

// Compile generates the container, or reuses the output when caching is
// enabled and no dependency changed.
func (a *App) Compile(ctx context.Context) (*Result, error) {
	if a.config.Cache {
		meta, fresh, err := a.freshMeta()
		if err != nil {
			return nil, err
		}
		if fresh {
			a.logger.Info("Container is up to date, compilation skipped.", "output", a.config.OutputPath)
			return &Result{Dependencies: meta.Descriptors, Cached: true}, nil
		}
	}
	return a.compile(ctx)
}

func (a *App) compile(ctx context.Context) (*Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	start := time.Now()

	files, err := fsutil.ExpandPaths(a.config.ConfigPaths, loader.Extensions...)
	if err != nil {
		return nil, fmt.Errorf("failed to find configuration files: %w", err)
	}
	a.logger.Debug("Configuration files found.", "count", len(files))

	c := compiler.New(compiler.WithPackage(a.config.Package))
	c.SetClassName(a.config.ClassName)
	c.SetDynamicParameterNames(a.config.DynamicParams...)
	for _, f := range a.extensions {
		if err := c.AddExtension(f.Name, f.New(a.config)); err != nil {
			return nil, err
		}
	}

	// Directories are dependencies too: adding a file changes their mtime.
	for _, p := range a.config.ConfigPaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, err
			}
			c.AddDependencies(abs)
		}
	}

	for _, f := range files {
		if err := c.LoadConfig(ctx, f, nil); err != nil {
			return nil, err
		}
	}

	src, err := c.Compile(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.write(src, c.Ledger()); err != nil {
		return nil, err
	}

	deps := c.ExportDependencies()
	a.logger.Info("Container compiled.", "class", a.config.ClassName, "files", len(files), "dependencies", len(deps), "duration", time.Since(start))
	return &Result{Source: src, Dependencies: deps}, nil
}

func (a *App) write(src string, ledger *depcheck.Ledger) error {
	if a.config.OutputPath == "" {
		_, err := io.WriteString(a.outW, src)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.config.OutputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(a.config.OutputPath, []byte(src), 0o644); err != nil {
		return fmt.Errorf("failed to write container: %w", err)
	}
	if !a.config.Cache {
		return nil
	}
	meta, err := ledger.Meta()
	if err != nil {
		return err
	}
	if err := depcheck.WriteMeta(a.metaPath(), meta); err != nil {
		return fmt.Errorf("failed to write dependency metadata: %w", err)
	}
	return nil
}

func (a *App) metaPath() string {
	return a.config.OutputPath + MetaSuffix
}
