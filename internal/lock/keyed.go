package lock

import (
	"context"
	"sync"
)

// Keyed is a process-wide registry of one mutex per key, created lazily on
// first use. Holders of different keys never contend; entries are never
// removed, so the registry grows by one slot per distinct key seen.
type Keyed struct {
	slots sync.Map // key -> chan struct{} with capacity 1
}

func NewKeyed() *Keyed {
	return &Keyed{}
}

// Acquire blocks until the key's slot is free or ctx is done. On success it
// returns a release func that must be called exactly once. The LoadOrStore
// makes the create-if-absent step atomic: two callers racing on a fresh key
// end up contending on the same slot.
func (k *Keyed) Acquire(ctx context.Context, key string) (func(), error) {
	v, _ := k.slots.LoadOrStore(key, make(chan struct{}, 1))
	sem := v.(chan struct{})

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
