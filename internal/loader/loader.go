package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/config"
	"github.com/specialistvlad/dicompiler/internal/ctxlog"
	"github.com/specialistvlad/dicompiler/internal/fsutil"
	"github.com/specialistvlad/dicompiler/internal/hcl_adapter"
	"gopkg.in/yaml.v3"
)

// IncludesKey is the top-level key listing files to load before the
// current one.
const IncludesKey = "includes"

// Extensions lists the file extensions the loader understands.
var Extensions = []string{".hcl", ".yaml", ".yml", ".json"}

// Loader reads HCL, YAML and JSON configuration files.
type Loader struct {
	deps  map[string]struct{}
	stack []string
}

var _ config.Loader = (*Loader)(nil)

// New creates a new file loader.
func New() *Loader {
	return &Loader{deps: make(map[string]struct{})}
}

// Load reads a file and everything it includes. Included documents come
// before the including one, in the order they are listed.
func (l *Loader) Load(ctx context.Context, file string) ([]config.Document, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", file, err)
	}

	for _, f := range l.stack {
		if f == abs {
			return nil, fmt.Errorf("recursive include of file '%s' (%s)", abs, strings.Join(append(l.stack, abs), " -> "))
		}
	}
	l.stack = append(l.stack, abs)
	defer func() { l.stack = l.stack[:len(l.stack)-1] }()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading configuration file.", "file", abs, "depth", len(l.stack))

	data, err := l.decode(ctx, abs)
	if err != nil {
		return nil, err
	}
	l.deps[abs] = struct{}{}

	var docs []config.Document
	if raw, ok := data[IncludesKey]; ok {
		delete(data, IncludesKey)
		includes, err := includeList(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", abs, err)
		}
		for _, inc := range includes {
			if !filepath.IsAbs(inc) {
				inc = filepath.Join(filepath.Dir(abs), inc)
			}
			files, err := fsutil.ExpandPaths([]string{inc}, Extensions...)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to resolve include: %w", abs, err)
			}
			for _, f := range files {
				sub, err := l.Load(ctx, f)
				if err != nil {
					return nil, err
				}
				docs = append(docs, sub...)
			}
		}
	}

	return append(docs, config.Document{File: abs, Data: data}), nil
}

// Dependencies returns every file read so far, sorted.
func (l *Loader) Dependencies() []string {
	out := make([]string, 0, len(l.deps))
	for f := range l.deps {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (l *Loader) decode(ctx context.Context, file string) (map[string]any, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var data map[string]any
	switch strings.ToLower(filepath.Ext(file)) {
	case ".hcl":
		data, err = hcl_adapter.DecodeFile(ctx, file, src)
		if err != nil {
			return nil, err
		}
	case ".yaml", ".yml", ".json":
		// yaml.v3 reads JSON as a YAML subset.
		if err := yaml.Unmarshal(src, &data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration file '%s': expected one of %s", file, strings.Join(Extensions, ", "))
	}

	if data == nil {
		return map[string]any{}, nil
	}
	canon, err := config.Canonical(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return canon.(map[string]any), nil
}

func includeList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("'%s' item %d must be a string, %s given", IncludesKey, i, hcl_adapter.DescribeType(item))
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("'%s' must be a list of files, %s given", IncludesKey, hcl_adapter.DescribeType(raw))
}
