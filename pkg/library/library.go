// Package library loads score definitions from YAML files and indexes them
// by score ID and specialty.
package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

// ErrNotFound is returned when a score ID is not in the library.
var ErrNotFound = errors.New("score not found")

// LoadError describes a definition file that could not be loaded.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("loading %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("loading %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Entry is a loaded definition together with its ID and source path.
type Entry struct {
	ID         string                   `json:"id"`
	Path       string                   `json:"path"`
	Definition *scoring.ScoreDefinition `json:"definition"`
}

// Library is an immutable, indexed set of score definitions.
type Library struct {
	entries     map[string]*Entry
	bySpecialty map[scoring.Specialty][]*Entry
}

// Load walks dir recursively and loads every *.yaml / *.yml file.
// Invalid files are logged and skipped. A missing dir is an error.
func Load(dir string, logger *slog.Logger) (*Library, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scores directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scores directory: %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), ".", logger)
}

// LoadFS loads definitions below root in fsys. Paths containing "template"
// are skipped. The score ID is the file name without extension.
func LoadFS(fsys fs.FS, root string, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	lib := &Library{
		entries:     make(map[string]*Entry),
		bySpecialty: make(map[scoring.Specialty][]*Entry),
	}

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(p) || strings.Contains(p, "template") {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			logger.Warn("skipping score definition", "path", p, "error", err)
			return nil
		}
		def, err := Parse(data, p)
		if err != nil {
			logger.Warn("skipping score definition", "path", p, "error", err)
			return nil
		}

		id := ScoreID(p)
		if prev, ok := lib.entries[id]; ok {
			logger.Warn("duplicate score id, keeping first", "id", id, "path", p, "kept", prev.Path)
			return nil
		}
		lib.add(&Entry{ID: id, Path: p, Definition: def})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking scores: %w", err)
	}

	for _, entries := range lib.bySpecialty {
		sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	}
	logger.Debug("score library loaded", "count", len(lib.entries))
	return lib, nil
}

// LoadFile loads and validates a single definition file.
func LoadFile(filePath string) (*scoring.ScoreDefinition, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &LoadError{Path: filePath, Reason: "reading file", Err: err}
	}
	return Parse(data, filePath)
}

// Parse decodes and validates a definition. name is used in errors only.
func Parse(data []byte, name string) (*scoring.ScoreDefinition, error) {
	var def scoring.ScoreDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &LoadError{Path: name, Reason: "parsing YAML", Err: err}
	}
	if def.Specialty == "" {
		def.Specialty = scoring.SpecialtyOther
	}
	if err := Validate(&def); err != nil {
		return nil, &LoadError{Path: name, Reason: "invalid definition", Err: err}
	}
	return &def, nil
}

// ScoreID derives a score ID from a file path: the base name without extension.
func ScoreID(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func isYAML(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (l *Library) add(e *Entry) {
	l.entries[e.ID] = e
	sp := e.Definition.Specialty
	l.bySpecialty[sp] = append(l.bySpecialty[sp], e)
}

// Get returns the definition for id.
func (l *Library) Get(id string) (*scoring.ScoreDefinition, error) {
	e, ok := l.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.Definition, nil
}

// Entry returns the full entry for id.
func (l *Library) Entry(id string) (*Entry, bool) {
	e, ok := l.entries[id]
	return e, ok
}

// IDs returns all score IDs, sorted.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns all entries sorted by ID.
func (l *Library) Entries() []*Entry {
	out := make([]*Entry, 0, len(l.entries))
	for _, id := range l.IDs() {
		out = append(out, l.entries[id])
	}
	return out
}

// ForSpecialty returns the entries of one specialty, sorted by ID.
func (l *Library) ForSpecialty(s scoring.Specialty) []*Entry {
	entries := l.bySpecialty[s]
	out := make([]*Entry, len(entries))
	copy(out, entries)
	return out
}

// Specialties returns the specialties that have at least one score, sorted.
func (l *Library) Specialties() []scoring.Specialty {
	out := make([]scoring.Specialty, 0, len(l.bySpecialty))
	for s := range l.bySpecialty {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the number of loaded scores.
func (l *Library) Count() int { return len(l.entries) }
