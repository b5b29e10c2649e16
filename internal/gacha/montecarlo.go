package gacha

import (
	"math"
	"sort"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/rarity"
	"github.com/xtding233/pack-sim/internal/valuation"
)

// Stats summarizes one integer metric over many simulated packs.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"std_dev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// SimResult is the outcome of SimulatePacks.
type SimResult struct {
	Trials int `json:"trials"`
	// RareSlots counts rare-or-better tier cards per pack (fallback draws included).
	RareSlots Stats `json:"rare_slots"`
	// Tiers holds the per-pack card count of every tier, keyed by tier name.
	Tiers map[string]Stats `json:"tiers"`
	// UniqueCards counts distinct card ids per pack.
	UniqueCards Stats `json:"unique_cards"`
	// ValueCents is the pack market value in euro cents, rounded like recorded totals.
	ValueCents Stats `json:"value_cents"`
	// HitRate maps each display weight to the share of packs holding at least one card of it.
	HitRate map[int]float64 `json:"hit_rate"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		Min:     cp[0],
		Max:     cp[n-1],
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// SimulatePacks draws trials packs from the same pool and summarizes them.
func SimulatePacks(pool []catalog.Card, plan SlotPlan, trials int, rng RandomSource) (SimResult, error) {
	if trials <= 0 {
		return SimResult{Tiers: map[string]Stats{}, HitRate: map[int]float64{}}, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	tiers := rarity.AllTiers()
	perTier := make(map[rarity.Tier][]int, len(tiers))
	for _, t := range tiers {
		perTier[t] = make([]int, trials)
	}
	rares := perTier[rarity.RareOrBetter]
	unique := make([]int, trials)
	values := make([]int, trials)
	hits := make(map[int]int)

	for i := 0; i < trials; i++ {
		p, err := Draw(pool, plan, rng)
		if err != nil {
			return SimResult{}, err
		}
		for t, n := range p.TierCounts() {
			perTier[t][i] = n
		}

		seen := make(map[string]struct{}, len(p.Cards))
		weights := make(map[int]struct{})
		for _, c := range p.Cards {
			seen[c.ID] = struct{}{}
			weights[rarity.DisplayWeight(c.Rarity)] = struct{}{}
		}
		unique[i] = len(seen)
		values[i] = int(valuation.Sum(p.Cards).Round(2).Shift(2).IntPart())
		for w := range weights {
			hits[w]++
		}
	}

	rate := make(map[int]float64, len(hits))
	for w, n := range hits {
		rate[w] = float64(n) / float64(trials)
	}
	byName := make(map[string]Stats, len(tiers))
	for _, t := range tiers {
		byName[t.String()] = calcStats(perTier[t])
	}
	return SimResult{
		Trials:      trials,
		RareSlots:   calcStats(rares),
		Tiers:       byName,
		UniqueCards: calcStats(unique),
		ValueCents:  calcStats(values),
		HitRate:     rate,
	}, nil
}
