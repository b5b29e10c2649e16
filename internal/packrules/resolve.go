package packrules

import "github.com/xtding233/pack-sim/internal/gacha"

// Resolver yields the effective rules for a set.
type Resolver interface {
	Resolve(setID string) (Rules, error)
}

// Static always returns the same rules.
type Static Rules

func (s Static) Resolve(string) (Rules, error) { return Rules(s), nil }

// Resolve merges, validates and normalizes the rules for setID.
func (l *Loader) Resolve(setID string) (Rules, error) {
	raw, err := l.LoadMerged(setID)
	if err != nil {
		return Rules{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return Rules{}, err
	}
	r := Rules{
		Plan:     resolvePlan(raw.Slots),
		PoolSize: gacha.MaxPoolSize,
		Version:  raw.Version,
	}
	if raw.PoolSize != nil {
		r.PoolSize = *raw.PoolSize
	}
	return r, nil
}

// NewResolver returns a Loader over dir, or the built-in rules when dir is empty.
func NewResolver(dir string) Resolver {
	if dir == "" {
		return Static(Builtin())
	}
	return NewLoader(dir)
}
