// Package presence tracks which users currently have an active
// connection. Existence in the registry means online; there is no
// heartbeat or expiry, entries live and die with connections.
package presence

import (
	"context"
	"sort"
	"sync"
)

// Registry is the online-user set. Add and Remove are idempotent, and
// every mutation is visible to the next Online call from any goroutine.
type Registry interface {
	Add(ctx context.Context, userID string) error
	Remove(ctx context.Context, userID string) error
	Online(ctx context.Context) ([]string, error)
}

// MemoryRegistry is the process-wide default, a mutex-guarded set.
type MemoryRegistry struct {
	mu     sync.Mutex
	online map[string]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{online: make(map[string]struct{})}
}

func (r *MemoryRegistry) Add(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[userID] = struct{}{}
	return nil
}

func (r *MemoryRegistry) Remove(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.online, userID)
	return nil
}

// Online returns the online user ids in a stable order.
func (r *MemoryRegistry) Online(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]string, 0, len(r.online))
	for id := range r.online {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}
