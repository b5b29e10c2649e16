package gacha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/valuation"
)

func TestCalcStats(t *testing.T) {
	s := calcStats([]int{1, 2, 3, 4, 5})
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.Var, 1e-9)
	assert.Equal(t, 1, s.Min)
	assert.Equal(t, 5, s.Max)
	assert.InDelta(t, 3.0, s.P50, 1e-9)

	assert.Equal(t, Stats{}, calcStats(nil))
}

func TestSimulatePacks(t *testing.T) {
	pool := makePool(4, 3, 3)
	for i := range pool {
		pool[i].Pricing = &catalog.Pricing{Cardmarket: &catalog.CardmarketPrice{Avg: 0.10}}
	}

	res, err := SimulatePacks(pool, DefaultSlotPlan, 200, NewSeededRNG(1))
	require.NoError(t, err)
	assert.Equal(t, 200, res.Trials)
	assert.InDelta(t, 1.0, res.RareSlots.Mean, 1e-9)
	require.Len(t, res.Tiers, 3)
	assert.InDelta(t, 6.0, res.Tiers["common"].Mean, 1e-9)
	assert.InDelta(t, 3.0, res.Tiers["uncommon"].Mean, 1e-9)
	assert.Equal(t, res.RareSlots.Mean, res.Tiers["rare_or_better"].Mean)
	// 4 commons + 3 uncommons + 1 rare are always distinct
	assert.Equal(t, 8, res.UniqueCards.Min)
	assert.Equal(t, 8, res.UniqueCards.Max)
	assert.Equal(t, 100, res.ValueCents.Min)
	assert.InDelta(t, 1.0, res.HitRate[1], 1e-9)
	assert.InDelta(t, 1.0, res.HitRate[3], 1e-9)
}

func TestSimulatePacks_ValueMatchesRecordedTotal(t *testing.T) {
	// ten copies of a half-cent price land exactly on a rounding boundary
	pool := []catalog.Card{{ID: "a", Rarity: "Común", Pricing: &catalog.Pricing{Cardmarket: &catalog.CardmarketPrice{Avg: 0.0045}}}}

	res, err := SimulatePacks(pool, DefaultSlotPlan, 5, NewSeededRNG(1))
	require.NoError(t, err)

	p, err := Draw(pool, DefaultSlotPlan, NewSeededRNG(1))
	require.NoError(t, err)
	assert.Equal(t, "0.05", valuation.PackTotal(p.Cards))
	assert.Equal(t, 5, res.ValueCents.Min)
	assert.Equal(t, 5, res.ValueCents.Max)
}

func TestSimulatePacks_EmptyPool(t *testing.T) {
	_, err := SimulatePacks(nil, DefaultSlotPlan, 10, NewSeededRNG(1))
	assert.ErrorIs(t, err, ErrEmptyPool)

	res, err := SimulatePacks(nil, DefaultSlotPlan, 0, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Trials)
}
