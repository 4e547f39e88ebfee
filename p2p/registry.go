package p2p

import (
	"sort"
	"sync"
)

// Registry is the set of peer addresses a node resolves conflicts against.
// It tracks membership only, not liveness.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]struct{}
}

func NewRegistry(seeds ...string) *Registry {
	r := &Registry{nodes: make(map[string]struct{})}
	for _, s := range seeds {
		r.Add(s)
	}
	return r
}

// Add inserts address and reports whether it was new.
func (r *Registry) Add(address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.nodes[address]; ok {
		return false
	}
	r.nodes[address] = struct{}{}
	return true
}

func (r *Registry) Contains(address string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.nodes[address]
	return ok
}

// List returns the addresses in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.nodes))
	for addr := range r.nodes {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
