package curriculum

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed bundle/*.yaml
var bundleFS embed.FS

// Registry holds the curriculum's levels in play order.
type Registry struct {
	levels []Level
	byID   map[string]int
}

// NewRegistry validates the levels and orders them by Order, then ID.
func NewRegistry(levels []Level) (*Registry, error) {
	var errs []error
	seen := make(map[string]bool, len(levels))
	for _, l := range levels {
		if seen[l.ID] {
			errs = append(errs, fmt.Errorf("duplicate level id %q", l.ID))
		}
		seen[l.ID] = true
		if err := ValidateLevel(l); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	sorted := make([]Level, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})

	r := &Registry{levels: sorted, byID: make(map[string]int, len(sorted))}
	for i, l := range sorted {
		r.byID[l.ID] = i
	}
	return r, nil
}

// Default loads the sample curriculum compiled into the binary.
func Default() (*Registry, error) {
	sub, err := fs.Sub(bundleFS, "bundle")
	if err != nil {
		return nil, fmt.Errorf("open embedded bundle: %w", err)
	}
	return LoadBundle(sub)
}

// LoadDir loads a curriculum from a directory of level YAML files.
func LoadDir(dir string) (*Registry, error) {
	return LoadBundle(os.DirFS(dir))
}

// LoadBundle reads every *.yaml file at the root of fsys as one level.
// Content is rejected on the first malformed file or on any validation
// issue.
func LoadBundle(fsys fs.FS) (*Registry, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list bundle: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("bundle has no level files")
	}
	sort.Strings(names)

	levels := make([]Level, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		l, err := ParseLevel(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		levels = append(levels, l)
	}
	return NewRegistry(levels)
}

// ParseLevel decodes a single level YAML document. Unknown fields are
// rejected so authoring typos surface at load time.
func ParseLevel(data []byte) (Level, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc LevelDoc
	if err := dec.Decode(&doc); err != nil {
		return Level{}, fmt.Errorf("decode level: %w", err)
	}
	return doc.ToLevel()
}

// Levels returns all levels in play order.
func (r *Registry) Levels() []Level {
	out := make([]Level, len(r.levels))
	copy(out, r.levels)
	return out
}

// LevelIDs returns level IDs in play order.
func (r *Registry) LevelIDs() []string {
	ids := make([]string, len(r.levels))
	for i, l := range r.levels {
		ids[i] = l.ID
	}
	return ids
}

// Level looks up a level by ID.
func (r *Registry) Level(id string) (Level, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Level{}, false
	}
	return r.levels[i], true
}

// Next returns the ID of the level after id in play order.
func (r *Registry) Next(id string) (string, bool) {
	i, ok := r.byID[id]
	if !ok || i+1 >= len(r.levels) {
		return "", false
	}
	return r.levels[i+1].ID, true
}

// Len returns the number of levels.
func (r *Registry) Len() int { return len(r.levels) }
