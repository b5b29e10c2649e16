package pack

import (
	"context"
	"sync"

	"github.com/xtding233/pack-sim/internal/gacha"
)

// DrawFunc produces one pack for a set.
type DrawFunc func(ctx context.Context, setID string) (gacha.Pack, error)

// Prepared holds at most one in-flight or finished draw per set, so a pack can
// be drawn while the user is still looking at the set.
type Prepared struct {
	ctx  context.Context
	draw DrawFunc

	mu      sync.Mutex
	entries map[string]*Pending
}

// NewPrepared runs draws under ctx; cancel it to abandon pending draws.
func NewPrepared(ctx context.Context, draw DrawFunc) *Prepared {
	return &Prepared{ctx: ctx, draw: draw, entries: make(map[string]*Pending)}
}

// Pending is the handle of one prepared draw.
type Pending struct {
	setID string
	owner *Prepared
	done  chan struct{}
	pack  gacha.Pack
	err   error
}

// Prepare starts a draw for setID unless one is already registered.
func (p *Prepared) Prepare(setID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[setID]; ok {
		return
	}
	h := &Pending{setID: setID, owner: p, done: make(chan struct{})}
	p.entries[setID] = h
	go func() {
		h.pack, h.err = p.draw(p.ctx, setID)
		close(h.done)
	}()
}

// TakeIfPresent returns the registered handle for setID, or nil. The entry
// stays registered until a waiter observes its result.
func (p *Prepared) TakeIfPresent(setID string) *Pending {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries[setID]
}

// Len is the number of registered entries.
func (p *Prepared) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *Prepared) clear(h *Pending) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entries[h.setID] == h {
		delete(p.entries, h.setID)
	}
}

// Wait blocks until the draw finishes or ctx is done. Observing the result
// clears the registry entry; giving up on ctx leaves it in place.
func (h *Pending) Wait(ctx context.Context) (gacha.Pack, error) {
	select {
	case <-h.done:
		h.owner.clear(h)
		return h.pack, h.err
	case <-ctx.Done():
		return gacha.Pack{}, ctx.Err()
	}
}

// Done is closed when the draw has finished.
func (h *Pending) Done() <-chan struct{} { return h.done }
