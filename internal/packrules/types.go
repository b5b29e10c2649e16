package packrules

import "github.com/xtding233/pack-sim/internal/gacha"

// RawRules is one YAML rules file. Nil fields inherit from the layer below.
type RawRules struct {
	Version  string       `yaml:"version"`
	Slots    *SlotsConfig `yaml:"slots,omitempty"`
	PoolSize *int         `yaml:"pool_size,omitempty"`
	Notes    string       `yaml:"notes,omitempty"`
}

type SlotsConfig struct {
	Common       *int `yaml:"common,omitempty"`
	Uncommon     *int `yaml:"uncommon,omitempty"`
	RareOrBetter *int `yaml:"rare_or_better,omitempty"`
}

// Rules are the effective settings for drawing packs of one set.
type Rules struct {
	Plan     gacha.SlotPlan `json:"plan"`
	PoolSize int            `json:"pool_size"`
	Version  string         `json:"version,omitempty"` // effective rules version for tracing
}

// Builtin is used when no rules directory is configured.
func Builtin() Rules {
	return Rules{Plan: gacha.DefaultSlotPlan, PoolSize: gacha.MaxPoolSize, Version: "builtin"}
}
