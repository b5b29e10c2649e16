// Package catalogtest provides an in-memory catalog.Source for tests.
package catalogtest

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/xtding233/pack-sim/internal/catalog"
)

var ErrUnavailable = errors.New("catalog unavailable")

// Fake serves sets and cards from memory. Build it with New.
type Fake struct {
	mu sync.Mutex

	Sets     []catalog.SetSummary
	Details  map[string]catalog.Set
	Cards    map[string]catalog.Card
	ListErr  error
	SetErr   map[string]error
	CardErr  map[string]error
	cardHits map[string]int
}

// New returns a Fake with initialized maps.
func New() *Fake {
	return &Fake{
		Details:  make(map[string]catalog.Set),
		Cards:    make(map[string]catalog.Card),
		SetErr:   make(map[string]error),
		CardErr:  make(map[string]error),
		cardHits: make(map[string]int),
	}
}

// AddSet registers a set detail and its listing entry, plus the given cards.
func (f *Fake) AddSet(set catalog.Set, cards ...catalog.Card) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range cards {
		f.Cards[c.ID] = c
		set.Cards = append(set.Cards, catalog.CardSummary{ID: c.ID, LocalID: c.LocalID, Name: c.Name, Image: c.Image})
	}
	f.Details[set.ID] = set
	f.Sets = append(f.Sets, set.Summary())
}

func (f *Fake) ListSets(ctx context.Context) ([]catalog.SetSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]catalog.SetSummary(nil), f.Sets...), nil
}

func (f *Fake) GetSet(ctx context.Context, setID string) (catalog.Set, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.SetErr[setID]; err != nil {
		return catalog.Set{}, err
	}
	s, ok := f.Details[setID]
	if !ok {
		return catalog.Set{}, &catalog.NotFoundError{URL: "/sets/" + setID}
	}
	return s, nil
}

func (f *Fake) GetCard(ctx context.Context, cardID string) (catalog.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cardHits[cardID]++
	if err := f.CardErr[cardID]; err != nil {
		return catalog.Card{}, err
	}
	c, ok := f.Cards[cardID]
	if !ok {
		return catalog.Card{}, &catalog.NotFoundError{URL: "/cards/" + cardID}
	}
	return c, nil
}

// CardHits reports how many times GetCard was called for an id.
func (f *Fake) CardHits(cardID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cardHits[cardID]
}
