package storage

import (
	"context"
	"sync"

	"github.com/xtding233/pack-sim/internal/collection"
)

// Memory keeps the encoded blob in process memory. State goes through the same
// codec as the persistent backends so nothing aliases the store's maps.
type Memory struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(ctx context.Context) (collection.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decode(m.blob)
}

func (m *Memory) Save(ctx context.Context, state collection.State) error {
	b, err := collection.EncodeState(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blob = b
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
