package collection

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/valuation"
)

// DefaultDedupWindow is how close two identical-value recordings must be to merge.
const DefaultDedupWindow = 2 * time.Second

// Store owns the collection state. It is loaded once, kept in memory, and
// written back through the repository after every mutation.
type Store struct {
	repo        StateRepository
	log         *zap.Logger
	now         func() time.Time
	historyCap  int
	dedupWindow time.Duration

	mu    sync.RWMutex
	state State
}

// Option configures a Store.
type Option func(*Store)

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithLogger(log *zap.Logger) Option { return func(s *Store) { s.log = log } }

// WithHistoryCap overrides the history length; values <= 0 are ignored.
func WithHistoryCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// WithDedupWindow overrides the duplicate-recording window; 0 disables it.
func WithDedupWindow(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.dedupWindow = d
		}
	}
}

// NewStore creates a store over repo. Call Load before use.
func NewStore(repo StateRepository, opts ...Option) *Store {
	s := &Store{
		repo:        repo,
		log:         zap.NewNop(),
		now:         time.Now,
		historyCap:  DefaultHistoryCap,
		dedupWindow: DefaultDedupWindow,
		state:       EmptyState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted state into memory and returns a snapshot.
// Missing or corrupt data yields the empty state; Load never fails.
func (s *Store) Load(ctx context.Context) State {
	st, err := s.repo.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrStateNotFound):
		st = EmptyState()
	case errors.Is(err, ErrStateCorrupt):
		s.log.Warn("persisted collection is corrupt, starting empty", zap.Error(err))
		st = EmptyState()
	default:
		s.log.Error("load collection failed, starting empty", zap.Error(err))
		st = EmptyState()
	}
	if st.Inventory == nil {
		st.Inventory = map[string]int{}
	}
	if st.History == nil {
		st.History = []HistoryEntry{}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return st.Clone()
}

// Record credits every card to the inventory and prepends a history entry.
//
// If the newest entry has the same total value and was created less than the
// dedup window ago, the call is treated as a double submit and the previous
// state is returned untouched. The match ignores card identity, so two
// different packs with equal value inside the window also merge.
//
// When the save fails the mutation is dropped: the in-memory state stays as
// it was and the error is returned.
func (s *Store) Record(ctx context.Context, cards []catalog.Card, set *SetInfo) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	now := s.now()
	total := valuation.PackTotal(cards)

	if len(prev.History) > 0 {
		last := prev.History[0]
		if last.TotalValue == total && now.UnixMilli()-last.ID < s.dedupWindow.Milliseconds() {
			s.log.Debug("duplicate pack recording skipped", zap.Int64("entry_id", last.ID), zap.String("total", total))
			return prev.Clone(), nil
		}
	}

	next := prev.Clone()
	for _, c := range cards {
		next.Inventory[c.ID]++
	}

	entry := HistoryEntry{
		ID:         now.UnixMilli(),
		Timestamp:  now.UTC().Format(isoLayout),
		SetName:    UnknownSetName,
		Cards:      append([]catalog.Card(nil), cards...),
		TotalValue: total,
	}
	if set != nil {
		if set.Name != "" {
			entry.SetName = set.Name
		}
		entry.SetLogo = set.Logo
	}

	history := make([]HistoryEntry, 0, len(prev.History)+1)
	history = append(history, entry)
	history = append(history, prev.History...)
	if len(history) > s.historyCap {
		history = history[:s.historyCap]
	}
	next.History = history

	if err := s.repo.Save(ctx, next); err != nil {
		s.log.Error("save collection failed, pack not recorded", zap.Error(err), zap.Int("cards", len(cards)))
		return prev.Clone(), errors.Wrap(err, "save collection")
	}
	s.state = next
	s.log.Info("pack recorded",
		zap.String("set", entry.SetName),
		zap.Int("cards", len(cards)),
		zap.String("total", total),
		zap.Int("history", len(history)),
	)
	return next.Clone(), nil
}

// HasCard reports whether at least one copy of the card is owned.
func (s *Store) HasCard(id string) bool {
	return s.CardCount(id) > 0
}

// CardCount is the number of owned copies of the card, 0 if none.
func (s *Store) CardCount(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Inventory[id]
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// History returns the recorded openings, newest first.
func (s *Store) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]HistoryEntry(nil), s.state.History...)
}

// HistorySummary aggregates the value of every recorded opening.
func (s *Store) HistorySummary() valuation.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make([]string, len(s.state.History))
	for i, h := range s.state.History {
		totals[i] = h.TotalValue
	}
	return valuation.Summarize(totals)
}

// Progress counts how many of the given cards are owned.
type Progress struct {
	Collected int `json:"collected"`
	Total     int `json:"total"`
}

// Percent is the rounded share of collected cards, 0 when Total is 0.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int(float64(p.Collected)/float64(p.Total)*100 + 0.5)
}

// Progress checks a set's card list against the inventory.
func (s *Store) Progress(cardIDs []string) Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := Progress{Total: len(cardIDs)}
	for _, id := range cardIDs {
		if s.state.Inventory[id] > 0 {
			p.Collected++
		}
	}
	return p
}

// SetProgress estimates progress without the card list: owned ids that start
// with the set id, against the set's declared total.
func (s *Store) SetProgress(setID string, total int) Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := Progress{Total: total}
	for id, n := range s.state.Inventory {
		if n > 0 && strings.HasPrefix(id, setID) {
			p.Collected++
		}
	}
	return p
}
