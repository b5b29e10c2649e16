package collection

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/xtding233/pack-sim/internal/catalog"
)

const (
	// DefaultHistoryCap is the number of pack openings kept in history.
	DefaultHistoryCap = 50
	// UnknownSetName labels history entries recorded without set info.
	UnknownSetName = "Set Desconocido"
	// isoLayout matches JavaScript's Date.toISOString.
	isoLayout = "2006-01-02T15:04:05.000Z"
)

var (
	ErrStateNotFound = errors.New("collection state not found")
	ErrStateCorrupt  = errors.New("collection state is corrupt")
)

// SetInfo identifies the set a pack was opened from.
type SetInfo struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// HistoryEntry is one recorded pack opening.
type HistoryEntry struct {
	ID         int64          `json:"id"` // unix milliseconds at creation
	Timestamp  string         `json:"timestamp"`
	SetName    string         `json:"setName"`
	SetLogo    string         `json:"setLogo,omitempty"`
	Cards      []catalog.Card `json:"cards"`
	TotalValue string         `json:"totalValue"`
}

// State is the whole persisted collection: owned counts plus history, newest first.
type State struct {
	Inventory map[string]int `json:"inventory"`
	History   []HistoryEntry `json:"history"`
}

// EmptyState is the state of a first run.
func EmptyState() State {
	return State{Inventory: map[string]int{}, History: []HistoryEntry{}}
}

// Clone deep-copies the inventory and history slice so callers can't alias store memory.
func (s State) Clone() State {
	out := State{
		Inventory: make(map[string]int, len(s.Inventory)),
		History:   make([]HistoryEntry, len(s.History)),
	}
	for k, v := range s.Inventory {
		out.Inventory[k] = v
	}
	copy(out.History, s.History)
	return out
}

// StateRepository persists the collection as one blob. Load returns
// ErrStateNotFound when nothing was saved yet and ErrStateCorrupt when the
// stored value can't be decoded.
type StateRepository interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// DecodeState parses the persisted JSON layout. Missing fields become empty.
func DecodeState(b []byte) (State, error) {
	var raw struct {
		Inventory map[string]int `json:"inventory"`
		History   []HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return State{}, errors.Wrap(ErrStateCorrupt, err.Error())
	}
	s := EmptyState()
	if raw.Inventory != nil {
		s.Inventory = raw.Inventory
	}
	if raw.History != nil {
		s.History = raw.History
	}
	return s, nil
}

// EncodeState renders the persisted JSON layout.
func EncodeState(s State) ([]byte, error) {
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	if s.History == nil {
		s.History = []HistoryEntry{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encode collection state")
	}
	return b, nil
}
