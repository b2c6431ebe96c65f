package knowledge

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Base owns the current snapshot. Readers call Current; Reload and Swap
// publish a new snapshot atomically.
type Base struct {
	mu      sync.Mutex // serializes loads
	src     Sources
	log     *zap.Logger
	current atomic.Pointer[Snapshot]
}

// NewBase loads src and returns a base holding the result.
func NewBase(ctx context.Context, src Sources, log *zap.Logger) *Base {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Base{src: src, log: log}
	b.current.Store(Load(ctx, src, log))
	return b
}

// Current returns the snapshot in effect.
func (b *Base) Current() *Snapshot {
	return b.current.Load()
}

// Sources returns the sources the current snapshot was loaded from.
func (b *Base) Sources() Sources {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.src
}

// Reload rebuilds the snapshot from the configured sources.
func (b *Base) Reload(ctx context.Context) *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Load(ctx, b.src, b.log)
	b.current.Store(snap)
	return snap
}

// Swap replaces the sources and loads them.
func (b *Base) Swap(ctx context.Context, src Sources) *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.src = src
	snap := Load(ctx, src, b.log)
	b.current.Store(snap)
	return snap
}
