package packrules

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/pack-sim/internal/gacha"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func rulesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default.yaml"), `
version: "2024.1"
pool_size: 40
slots:
  common: 6
  uncommon: 3
  rare_or_better: 1
`)
	writeFile(t, filepath.Join(dir, "sets", "sv1.yaml"), `
version: "2024.1-sv1"
slots:
  common: 5
  rare_or_better: 2
`)
	return dir
}

func TestResolve_MergesSetOverDefault(t *testing.T) {
	l := NewLoader(rulesDir(t))

	r, err := l.Resolve("sv1")
	require.NoError(t, err)
	assert.Equal(t, gacha.SlotPlan{Common: 5, Uncommon: 3, RareOrBetter: 2}, r.Plan)
	assert.Equal(t, 40, r.PoolSize)
	assert.Equal(t, "2024.1-sv1", r.Version)
}

func TestResolve_SetWithoutFile(t *testing.T) {
	l := NewLoader(rulesDir(t))
	r, err := l.Resolve("base1")
	require.NoError(t, err)
	assert.Equal(t, gacha.DefaultSlotPlan, r.Plan)
	assert.Equal(t, 40, r.PoolSize)
}

func TestResolve_EmptyDirectory(t *testing.T) {
	r, err := NewLoader(t.TempDir()).Resolve("base1")
	require.NoError(t, err)
	assert.Equal(t, gacha.DefaultSlotPlan, r.Plan)
	assert.Equal(t, gacha.MaxPoolSize, r.PoolSize)
}

func TestResolve_Invalid(t *testing.T) {
	dir := rulesDir(t)
	writeFile(t, filepath.Join(dir, "sets", "bad.yaml"), `
pool_size: 0
slots:
  common: -1
`)
	_, err := NewLoader(dir).Resolve("bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRules))
	assert.Contains(t, err.Error(), "pool_size must be >= 1")
	assert.Contains(t, err.Error(), "slots.common must be >= 0")
	assert.Contains(t, err.Error(), "slots must add up to 10, got 3")
}

func TestResolve_BadYAML(t *testing.T) {
	dir := rulesDir(t)
	writeFile(t, filepath.Join(dir, "sets", "broken.yaml"), "slots: [1, 2")
	_, err := NewLoader(dir).Resolve("broken")
	assert.Error(t, err)
}

func TestResolve_RejectsPathLikeIDs(t *testing.T) {
	l := NewLoader(rulesDir(t))
	for _, id := range []string{"", "..", "../etc", `a\b`} {
		_, err := l.Resolve(id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestLoader_CacheAndInvalidate(t *testing.T) {
	dir := rulesDir(t)
	l := NewLoader(dir)

	r, err := l.Resolve("sv1")
	require.NoError(t, err)
	require.Equal(t, 2, r.Plan.RareOrBetter)

	writeFile(t, filepath.Join(dir, "sets", "sv1.yaml"), "slots: {common: 6, rare_or_better: 1}\n")
	r, err = l.Resolve("sv1")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Plan.RareOrBetter, "cached")

	l.Invalidate()
	r, err = l.Resolve("sv1")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Plan.RareOrBetter)
}

func TestMergeRaw_DoesNotAliasLayers(t *testing.T) {
	one, two := 1, 2
	def := RawRules{Slots: &SlotsConfig{Common: &one}}
	set := RawRules{Slots: &SlotsConfig{Uncommon: &two}}
	out := mergeRaw(def, set)
	require.NotNil(t, out.Slots)
	assert.Equal(t, 1, *out.Slots.Common)
	assert.Equal(t, 2, *out.Slots.Uncommon)
	assert.Nil(t, def.Slots.Uncommon)
}

func TestNewResolver(t *testing.T) {
	r, err := NewResolver("").Resolve("anything")
	require.NoError(t, err)
	assert.Equal(t, Builtin(), r)

	_, ok := NewResolver(t.TempDir()).(*Loader)
	assert.True(t, ok)
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	dir := rulesDir(t)
	l := NewLoader(dir)
	_, err := l.Resolve("sv1")
	require.NoError(t, err)

	changed := make(chan string, 8)
	w := NewWatcher(l, nil, func(p string) { changed <- p })
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	setFile := filepath.Join(dir, "sets", "sv1.yaml")
	require.Eventually(t, func() bool {
		writeFile(t, setFile, "slots: {common: 7, rare_or_better: 0}\n")
		select {
		case <-changed:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	r, err := l.Resolve("sv1")
	require.NoError(t, err)
	assert.Equal(t, gacha.SlotPlan{Common: 7, Uncommon: 3, RareOrBetter: 0}, r.Plan)
}
