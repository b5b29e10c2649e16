// Package pack turns a set id into an opened booster: rules, pool, draw.
package pack

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/gacha"
	"github.com/xtding233/pack-sim/internal/packrules"
)

// Service draws packs from the catalog.
type Service struct {
	src      catalog.Source
	rules    packrules.Resolver
	rng      gacha.RandomSource
	log      *zap.Logger
	workers  int
	prepared *Prepared
}

type Option func(*Service)

func WithRules(r packrules.Resolver) Option { return func(s *Service) { s.rules = r } }

func WithRNG(rng gacha.RandomSource) Option { return func(s *Service) { s.rng = rng } }

func WithLogger(log *zap.Logger) Option { return func(s *Service) { s.log = log } }

// WithConcurrency bounds parallel card fetches; n <= 0 keeps the default.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithPrepareContext sets the context prepared draws run under.
func WithPrepareContext(ctx context.Context) Option {
	return func(s *Service) { s.prepared = NewPrepared(ctx, s.Draw) }
}

func NewService(src catalog.Source, opts ...Option) *Service {
	s := &Service{
		src:     src,
		rules:   packrules.Static(packrules.Builtin()),
		rng:     gacha.DefaultRNG(),
		log:     zap.NewNop(),
		workers: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.prepared == nil {
		s.prepared = NewPrepared(context.Background(), s.Draw)
	}
	return s
}

// Prepared exposes the pre-fetch registry.
func (s *Service) Prepared() *Prepared { return s.prepared }

// Pool resolves the card pool of setID under its rules.
func (s *Service) Pool(ctx context.Context, setID string) (Pool, packrules.Rules, error) {
	rules, err := s.rules.Resolve(setID)
	if err != nil {
		return Pool{}, packrules.Rules{}, errors.Wrapf(err, "rules for %s", setID)
	}
	b := poolBuilder{src: s.src, rng: s.rng, log: s.log, concurrency: s.workers}
	pool, err := b.build(ctx, setID, rules.PoolSize)
	if err != nil {
		return Pool{}, rules, err
	}
	return pool, rules, nil
}

// Draw builds a fresh pool and draws one pack. Any failure yields no pack.
func (s *Service) Draw(ctx context.Context, setID string) (gacha.Pack, error) {
	pool, rules, err := s.Pool(ctx, setID)
	if err != nil {
		s.log.Warn("draw failed", zap.String("set_id", setID), zap.Error(err))
		return gacha.Pack{}, err
	}
	p, err := gacha.Draw(pool.Cards, rules.Plan, s.rng)
	if err != nil {
		return gacha.Pack{}, errors.Wrapf(err, "draw %s", setID)
	}
	s.log.Info("pack drawn",
		zap.String("set_id", setID),
		zap.Int("pool", len(pool.Cards)),
		zap.String("rules", rules.Version),
	)
	return p, nil
}

// Prepare starts drawing a pack for setID in the background.
func (s *Service) Prepare(setID string) {
	s.prepared.Prepare(setID)
}

// Open returns the prepared pack for setID if there is one, else draws now.
func (s *Service) Open(ctx context.Context, setID string) (gacha.Pack, error) {
	if h := s.prepared.TakeIfPresent(setID); h != nil {
		s.log.Debug("using prepared pack", zap.String("set_id", setID))
		return h.Wait(ctx)
	}
	return s.Draw(ctx, setID)
}

// Simulate opens trials packs from one pool and reports their statistics.
func (s *Service) Simulate(ctx context.Context, setID string, trials int) (gacha.SimResult, error) {
	pool, rules, err := s.Pool(ctx, setID)
	if err != nil {
		return gacha.SimResult{}, err
	}
	return gacha.SimulatePacks(pool.Cards, rules.Plan, trials, s.rng)
}
