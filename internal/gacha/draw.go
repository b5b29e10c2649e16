package gacha

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/rarity"
)

var ErrEmptyPool = errors.New("card pool is empty")

// Pack is one opened booster, ordered for presentation.
type Pack struct {
	Cards []catalog.Card `json:"cards"`
}

// TierCounts counts the cards of each tier in the pack. Every tier is present.
func (p Pack) TierCounts() map[rarity.Tier]int {
	tiers := rarity.AllTiers()
	out := make(map[rarity.Tier]int, len(tiers))
	for _, t := range tiers {
		out[t] = 0
	}
	for _, c := range p.Cards {
		out[rarity.Classify(c.Rarity)]++
	}
	return out
}

// buckets partitions a pool by tier into owned copies.
func buckets(pool []catalog.Card) map[rarity.Tier][]catalog.Card {
	out := make(map[rarity.Tier][]catalog.Card, 3)
	for _, c := range pool {
		t := rarity.Classify(c.Rarity)
		out[t] = append(out[t], c)
	}
	return out
}

// pickFrom draws amount cards from bucket. A drawn card leaves the bucket while
// more than one remains, so an exhausted bucket repeats its last card. An empty
// bucket falls back to the whole pool, with replacement.
func pickFrom(bucket, pool []catalog.Card, amount int, rng RandomSource) []catalog.Card {
	picked := make([]catalog.Card, 0, amount)
	if len(bucket) == 0 {
		for i := 0; i < amount; i++ {
			picked = append(picked, pool[IntN(rng, len(pool))])
		}
		return picked
	}
	for i := 0; i < amount; i++ {
		idx := IntN(rng, len(bucket))
		picked = append(picked, bucket[idx])
		if len(bucket) > 1 {
			bucket = append(bucket[:idx], bucket[idx+1:]...)
		}
	}
	return picked
}

// Draw samples one pack from pool following plan.
// Common and uncommon slots are filled first, then the rare-or-better slots
// from the untouched rare bucket (or the whole pool if it is empty). The result
// is stable-sorted by display weight. pool is never modified.
func Draw(pool []catalog.Card, plan SlotPlan, rng RandomSource) (Pack, error) {
	if len(pool) == 0 {
		return Pack{}, ErrEmptyPool
	}
	if err := plan.Validate(); err != nil {
		return Pack{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	groups := buckets(pool)
	cards := make([]catalog.Card, 0, plan.Total())

	common := pickFrom(groups[rarity.Common], pool, plan.Common, rng)
	cards = append(cards, common...)
	uncommon := pickFrom(groups[rarity.Uncommon], pool, plan.Uncommon, rng)
	cards = append(cards, uncommon...)

	rareSlot := groups[rarity.RareOrBetter]
	if len(rareSlot) == 0 {
		rareSlot = pool
	}
	for i := 0; i < plan.RareOrBetter; i++ {
		cards = append(cards, rareSlot[IntN(rng, len(rareSlot))])
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return rarity.DisplayWeight(cards[i].Rarity) < rarity.DisplayWeight(cards[j].Rarity)
	})
	return Pack{Cards: cards}, nil
}
