package rarity

import (
	"sort"
	"strings"
)

// Tier is the normalized rarity bucket used for pack slot sampling.
type Tier int

const (
	Common Tier = iota
	Uncommon
	RareOrBetter
)

// DefaultLabel stands in for a card whose rarity is unknown.
// The catalog spells it this way, and it classifies as Common.
const DefaultLabel = "Commún"

// DefaultWeight is the display weight of labels missing from the weight table.
const DefaultWeight = 3

// AllTiers returns the tiers in slot order.
func AllTiers() []Tier {
	return []Tier{Common, Uncommon, RareOrBetter}
}

func (t Tier) String() string {
	switch t {
	case Common:
		return "common"
	case Uncommon:
		return "uncommon"
	case RareOrBetter:
		return "rare_or_better"
	default:
		return "unknown"
	}
}

// tierRule maps any label containing one of Substrings to Tier.
type tierRule struct {
	Tier       Tier
	Substrings []string
}

// tierRules is checked in order; the first match wins. The catalog misspells
// "Común" on some cards, so both spellings are listed. "Entrenador" (trainer)
// cards sit in the uncommon slots.
var tierRules = []tierRule{
	{Tier: Common, Substrings: []string{"Commún", "Común"}},
	{Tier: Uncommon, Substrings: []string{"Uncommon", "Poco común", "Entrenador"}},
}

// displayWeights orders revealed cards; it is an exact-match table.
var displayWeights = map[string]int{
	"Commún":                    1,
	"Común":                     1,
	"Uncommon":                  2,
	"Poco común":                2,
	"Entrenador":                2,
	"Rara":                      3,
	"Holo Rara":                 3,
	"Holo Rara V":               4,
	"Holo Rara VMAX":            4,
	"Holo Rara VSTAR":           5,
	"Rara Doble":                4,
	"Rara Ultra":                5,
	"Rara Secreto":              6,
	"Rara Ilustración":          5,
	"Rara Ilustración Especial": 6,
	"Rara Radiante":             5,
}

// Classify maps a raw catalog label to its tier. Empty labels are Common.
func Classify(label string) Tier {
	if label == "" {
		return Common
	}
	for _, rule := range tierRules {
		for _, s := range rule.Substrings {
			if strings.Contains(label, s) {
				return rule.Tier
			}
		}
	}
	return RareOrBetter
}

// DisplayWeight returns the 1..6 presentation weight of a label.
func DisplayWeight(label string) int {
	if w, ok := displayWeights[label]; ok {
		return w
	}
	return DefaultWeight
}

// KnownLabels returns every label with an explicit display weight, ordered by
// weight and then by label.
func KnownLabels() []string {
	out := make([]string, 0, len(displayWeights))
	for l := range displayWeights {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		wi, wj := displayWeights[out[i]], displayWeights[out[j]]
		if wi != wj {
			return wi < wj
		}
		return out[i] < out[j]
	})
	return out
}
