package depcheck

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Version changes whenever generated output changes for the same input.
const Version = 1

// Ledger is a set of dependency descriptors. Descriptors are absolute file
// paths or opaque strings such as "ext:*di.Extension".
type Ledger struct {
	set map[string]struct{}
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{set: make(map[string]struct{})}
}

// Add records descriptors. Empty strings are ignored.
func (l *Ledger) Add(descs ...string) {
	for _, d := range descs {
		if d != "" {
			l.set[d] = struct{}{}
		}
	}
}

// Len returns the number of recorded descriptors.
func (l *Ledger) Len() int {
	return len(l.set)
}

// Export returns the descriptors, sorted.
func (l *Ledger) Export() []string {
	out := make([]string, 0, len(l.set))
	for d := range l.set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Meta is the persisted state of a ledger.
type Meta struct {
	Version     int              `json:"version"`
	Files       map[string]int64 `json:"files"`
	Descriptors []string         `json:"descriptors"`
	Hash        string           `json:"hash"`
}

// Meta snapshots the ledger along with the modification time of every file
// descriptor. Missing files are recorded with time 0.
func (l *Ledger) Meta() (Meta, error) {
	descs := l.Export()
	files, err := fileTimes(descs)
	if err != nil {
		return Meta{}, err
	}
	return Meta{
		Version:     Version,
		Files:       files,
		Descriptors: descs,
		Hash:        hash(descs),
	}, nil
}

// IsExpired reports whether a result built with meta must be rebuilt.
func IsExpired(meta Meta) (bool, error) {
	if meta.Version != Version || meta.Hash != hash(meta.Descriptors) {
		return true, nil
	}
	current, err := fileTimes(meta.Descriptors)
	if err != nil {
		return false, err
	}
	if len(current) != len(meta.Files) {
		return true, nil
	}
	for file, mtime := range meta.Files {
		if current[file] != mtime {
			return true, nil
		}
	}
	return false, nil
}

// WriteMeta stores meta as JSON.
func WriteMeta(path string, meta Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMeta loads meta written by WriteMeta. A missing file returns
// fs.ErrNotExist.
func ReadMeta(path string) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, err
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("failed to parse dependency metadata %s: %w", path, err)
	}
	return meta, nil
}

func fileTimes(descs []string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, d := range descs {
		if !filepath.IsAbs(d) {
			continue
		}
		info, err := os.Stat(d)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			out[d] = 0
		case err != nil:
			return nil, err
		default:
			out[d] = info.ModTime().UnixNano()
		}
	}
	return out, nil
}

func hash(descs []string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("v%d\n%s", Version, strings.Join(descs, "\n"))))
	return hex.EncodeToString(sum[:])
}
