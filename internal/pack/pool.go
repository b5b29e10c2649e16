package pack

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/gacha"
	"github.com/xtding233/pack-sim/internal/rarity"
)

// DefaultConcurrency bounds the parallel card detail fetches of one pool.
const DefaultConcurrency = 8

// Pool is the resolved card pool of a set.
type Pool struct {
	Set   catalog.Set
	Cards []catalog.Card
	// Degraded counts cards whose detail fetch failed and were kept as summaries.
	Degraded int
}

// poolBuilder fetches a set and resolves a random subset of its cards.
type poolBuilder struct {
	src         catalog.Source
	rng         gacha.RandomSource
	log         *zap.Logger
	concurrency int
}

// build returns at most size cards of setID. It fails with gacha.ErrEmptyPool
// when the set has no cards, and with the catalog error when the set can't be
// fetched. A failed card detail degrades to its summary with the default rarity.
func (b poolBuilder) build(ctx context.Context, setID string, size int) (Pool, error) {
	set, err := b.src.GetSet(ctx, setID)
	if err != nil {
		return Pool{}, errors.Wrapf(err, "get set %s", setID)
	}
	if len(set.Cards) == 0 {
		return Pool{}, errors.Wrapf(gacha.ErrEmptyPool, "set %s", setID)
	}

	summaries := append([]catalog.CardSummary(nil), set.Cards...)
	gacha.Shuffle(b.rng, summaries)
	if size <= 0 || size > gacha.MaxPoolSize {
		size = gacha.MaxPoolSize
	}
	if len(summaries) > size {
		summaries = summaries[:size]
	}

	cards := make([]catalog.Card, len(summaries))
	failed := make([]bool, len(summaries))
	g := new(errgroup.Group)
	g.SetLimit(b.concurrency)
	for i, s := range summaries {
		g.Go(func() error {
			c, err := b.src.GetCard(ctx, s.ID)
			if err != nil {
				b.log.Debug("card detail failed, using summary", zap.String("card_id", s.ID), zap.Error(err))
				cards[i] = catalog.FromSummary(s, rarity.DefaultLabel)
				failed[i] = true
				return nil
			}
			cards[i] = c
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Pool{}, errors.Wrap(err, "build pool")
	}

	p := Pool{Set: set, Cards: cards}
	for _, f := range failed {
		if f {
			p.Degraded++
		}
	}
	if p.Degraded > 0 {
		b.log.Warn("pool built with degraded cards",
			zap.String("set_id", setID),
			zap.Int("degraded", p.Degraded),
			zap.Int("pool", len(cards)),
		)
	}
	return p, nil
}
