package packrules

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Paths locates the rules files under a base directory.
type Paths struct {
	BaseDir string
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "default.yaml")
}

func (p Paths) SetPath(setID string) string {
	return filepath.Join(p.BaseDir, "sets", setID+".yaml")
}

const defaultKey = "$default"

// Loader reads YAML rules and merges default -> set.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawRules // key: set id or "$default"
}

func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawRules),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged returns the default rules overlaid with the set's file.
// Either file may be missing.
func (l *Loader) LoadMerged(setID string) (RawRules, error) {
	if !validSetID(setID) {
		return RawRules{}, errors.Errorf("invalid set id %q", setID)
	}
	l.mu.RLock()
	if cfg, ok := l.cache[setID]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	def, haveDef := l.cache[defaultKey]
	l.mu.RUnlock()

	if !haveDef {
		var err error
		def, err = readYAML(l.paths.DefaultPath())
		if err != nil {
			return RawRules{}, errors.Wrap(err, "read default rules")
		}
	}
	set, err := readYAML(l.paths.SetPath(setID))
	if err != nil {
		return RawRules{}, errors.Wrapf(err, "read rules for %s", setID)
	}
	merged := mergeRaw(def, set)

	l.mu.Lock()
	l.cache[defaultKey] = def
	l.cache[setID] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears the cache. The watcher calls it when a file changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawRules)
}

// readYAML loads one file. A missing file is an empty layer.
func readYAML(path string) (RawRules, error) {
	var cfg RawRules
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawRules{}, nil
		}
		return RawRules{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawRules{}, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// mergeRaw overlays b on a: any field b sets wins.
func mergeRaw(a, b RawRules) RawRules {
	out := a
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.PoolSize != nil {
		out.PoolSize = b.PoolSize
	}

	switch {
	case out.Slots == nil && b.Slots != nil:
		c := *b.Slots
		out.Slots = &c
	case out.Slots != nil && b.Slots != nil:
		c := *out.Slots
		if b.Slots.Common != nil {
			c.Common = b.Slots.Common
		}
		if b.Slots.Uncommon != nil {
			c.Uncommon = b.Slots.Uncommon
		}
		if b.Slots.RareOrBetter != nil {
			c.RareOrBetter = b.Slots.RareOrBetter
		}
		out.Slots = &c
	}
	return out
}

func validSetID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}
