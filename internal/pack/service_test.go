package pack

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/catalog/catalogtest"
	"github.com/xtding233/pack-sim/internal/gacha"
	"github.com/xtding233/pack-sim/internal/packrules"
	"github.com/xtding233/pack-sim/internal/rarity"
)

// fakeSet registers a set with common, uncommon and rare cards.
func fakeSet(f *catalogtest.Fake, id string, common, uncommon, rare int) {
	var cards []catalog.Card
	add := func(kind, label string, n int) {
		for i := 0; i < n; i++ {
			cards = append(cards, catalog.Card{
				ID:      fmt.Sprintf("%s-%s%d", id, kind, i),
				Name:    fmt.Sprintf("%s %d", kind, i),
				Rarity:  label,
				Pricing: &catalog.Pricing{Cardmarket: &catalog.CardmarketPrice{Avg: 0.1}},
			})
		}
	}
	add("c", "Común", common)
	add("u", "Poco común", uncommon)
	add("r", "Rara Holo", rare)
	f.AddSet(catalog.Set{ID: id, Name: "Set " + id, Logo: "logo"}, cards...)
}

func newService(f *catalogtest.Fake, opts ...Option) *Service {
	opts = append([]Option{WithRNG(gacha.NewSeededRNG(7))}, opts...)
	return NewService(f, opts...)
}

func TestDraw_TenCards(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "sv1", 20, 10, 5)

	p, err := newService(f).Draw(context.Background(), "sv1")
	require.NoError(t, err)
	require.Len(t, p.Cards, gacha.PackSize)
	counts := p.TierCounts()
	assert.Equal(t, 6, counts[rarity.Common])
	assert.Equal(t, 3, counts[rarity.Uncommon])
	assert.Equal(t, 1, counts[rarity.RareOrBetter])
}

func TestPool_CappedAt45(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "big", 80, 15, 5)

	pool, _, err := newService(f).Pool(context.Background(), "big")
	require.NoError(t, err)
	assert.Len(t, pool.Cards, gacha.MaxPoolSize)

	fetched := 0
	for _, s := range f.Details["big"].Cards {
		fetched += f.CardHits(s.ID)
	}
	assert.Equal(t, gacha.MaxPoolSize, fetched, "only pooled cards are fetched")
}

func TestPool_RulesPoolSize(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "sv1", 20, 10, 5)
	rules := packrules.Builtin()
	rules.PoolSize = 12

	pool, got, err := newService(f, WithRules(packrules.Static(rules))).Pool(context.Background(), "sv1")
	require.NoError(t, err)
	assert.Len(t, pool.Cards, 12)
	assert.Equal(t, 12, got.PoolSize)
}

func TestPool_SmallSetUsesEveryCard(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "tiny", 2, 1, 0)

	pool, _, err := newService(f).Pool(context.Background(), "tiny")
	require.NoError(t, err)
	assert.Len(t, pool.Cards, 3)
}

func TestPool_CardFailureDegrades(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "sv1", 3, 0, 1)
	f.CardErr["sv1-r0"] = catalogtest.ErrUnavailable

	pool, _, err := newService(f).Pool(context.Background(), "sv1")
	require.NoError(t, err)
	require.Len(t, pool.Cards, 4)
	assert.Equal(t, 1, pool.Degraded)

	for _, c := range pool.Cards {
		if c.ID == "sv1-r0" {
			assert.Equal(t, rarity.DefaultLabel, c.Rarity)
			assert.Nil(t, c.Pricing)
			assert.Equal(t, "r 0", c.Name)
			return
		}
	}
	t.Fatal("degraded card missing from pool")
}

func TestPool_MissingRarityKept(t *testing.T) {
	f := catalogtest.New()
	f.AddSet(catalog.Set{ID: "x"}, catalog.Card{ID: "x-1", Name: "No label"})

	pool, _, err := newService(f).Pool(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, pool.Cards[0].Rarity)
	assert.Zero(t, pool.Degraded)
}

func TestDraw_UnlabeledCardSortsAsUnknown(t *testing.T) {
	f := catalogtest.New()
	f.AddSet(catalog.Set{ID: "x"},
		catalog.Card{ID: "x-rare", Name: "Rare", Rarity: "Rara Doble"},
		catalog.Card{ID: "x-nolabel", Name: "No label"},
	)

	p, err := newService(f).Draw(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, p.Cards, gacha.PackSize)

	unlabeled := 0
	for _, c := range p.Cards {
		if c.ID != "x-nolabel" {
			break
		}
		unlabeled++
		assert.Empty(t, c.Rarity)
		assert.Equal(t, rarity.Common, rarity.Classify(c.Rarity))
		assert.Equal(t, rarity.DefaultWeight, rarity.DisplayWeight(c.Rarity))
	}
	// the six common slots all land on the unlabeled card and sort before weight 4
	assert.GreaterOrEqual(t, unlabeled, gacha.DefaultSlotPlan.Common)
	for _, c := range p.Cards[unlabeled:] {
		assert.Equal(t, "x-rare", c.ID)
	}
}

func TestDraw_EmptySet(t *testing.T) {
	f := catalogtest.New()
	f.AddSet(catalog.Set{ID: "empty", Name: "Empty"})

	_, err := newService(f).Draw(context.Background(), "empty")
	assert.True(t, errors.Is(err, gacha.ErrEmptyPool))
}

func TestDraw_SetFetchFails(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "sv1", 6, 3, 1)
	f.SetErr["sv1"] = catalogtest.ErrUnavailable

	_, err := newService(f).Draw(context.Background(), "sv1")
	assert.True(t, errors.Is(err, catalogtest.ErrUnavailable))

	_, err = newService(f).Draw(context.Background(), "nope")
	var nf *catalog.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestDraw_CanceledContextYieldsNoPack(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "sv1", 6, 3, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := newService(f).Draw(ctx, "sv1")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, p.Cards)
}

func TestDraw_BadRules(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "sv1", 6, 3, 1)
	dir := t.TempDir()
	s := newService(f, WithRules(packrules.NewLoader(dir)))

	_, err := s.Draw(context.Background(), "../sv1")
	assert.Error(t, err)
}

func TestOpen_UsesPreparedPack(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "sv1", 6, 3, 1)
	s := newService(f)

	s.Prepare("sv1")
	h := s.Prepared().TakeIfPresent("sv1")
	require.NotNil(t, h)
	<-h.Done()
	hits := f.CardHits("sv1-r0")

	p, err := s.Open(context.Background(), "sv1")
	require.NoError(t, err)
	assert.Len(t, p.Cards, gacha.PackSize)
	assert.Equal(t, hits, f.CardHits("sv1-r0"), "no new fetches for a prepared pack")
	assert.Equal(t, 0, s.Prepared().Len())

	_, err = s.Open(context.Background(), "sv1")
	require.NoError(t, err)
	assert.Greater(t, f.CardHits("sv1-r0"), hits, "second open draws fresh")
}

func TestSimulate(t *testing.T) {
	f := catalogtest.New()
	fakeSet(f, "sv1", 20, 10, 5)

	res, err := newService(f).Simulate(context.Background(), "sv1", 200)
	require.NoError(t, err)
	assert.Equal(t, 200, res.Trials)
	assert.Equal(t, 1.0, res.RareSlots.Mean)
	assert.Equal(t, 100, res.ValueCents.Min)
}
