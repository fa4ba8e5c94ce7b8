package market

import (
	"strings"
	"sync"
)

// WorldKey addresses the default-store table: either one concrete world or
// the distinguished global key that stands for every world.
type WorldKey struct {
	world  string
	global bool
}

// GlobalKey is the default-store key covering every world. A store assigned
// under it masks any per-world assignment during resolution.
func GlobalKey() WorldKey { return WorldKey{global: true} }

// WorldOf keys the default-store table for one concrete world.
func WorldOf(id string) WorldKey { return WorldKey{world: id} }

func (k WorldKey) IsGlobal() bool { return k.global }

// WorldID returns the concrete world id; ok is false for the global key.
func (k WorldKey) WorldID() (id string, ok bool) {
	if k.global {
		return "", false
	}
	return k.world, true
}

// DefaultSink is notified of default-store assignments so they survive a
// restart. Implemented by the persistence layer.
type DefaultSink interface {
	SaveDefault(key WorldKey, storeID string) error
}

// Registry owns every live store for its lifetime plus the default-store
// table. It is constructed once at process start and passed by handle;
// Remove is the sole destruction path for a store.
type Registry struct {
	mu       sync.RWMutex
	stores   []*Store // insertion order; Locate scans depend on it
	defaults map[WorldKey]*Store
	sink     DefaultSink
}

// NewRegistry returns an empty registry. sink may be nil when default-store
// assignments need not be persisted (tests, ephemeral hosts).
func NewRegistry(sink DefaultSink) *Registry {
	return &Registry{
		defaults: map[WorldKey]*Store{},
		sink:     sink,
	}
}

// Create allocates a store with a fresh UUID, zero balance, empty catalog
// and no volume, and registers it. Construction and registration are one
// step: a store never exists unregistered.
func (r *Registry) Create(name, owner string) *Store {
	s := newStore(name, owner)
	r.mu.Lock()
	r.stores = append(r.stores, s)
	r.mu.Unlock()
	return s
}

// Stores returns the live stores in insertion order.
func (r *Registry) Stores() []*Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Store, len(r.stores))
	copy(out, r.stores)
	return out
}

// ByID returns the store with the given UUID string, or nil.
func (r *Registry) ByID(id string) *Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.stores {
		if strings.EqualFold(s.id.String(), id) {
			return s
		}
	}
	return nil
}

// Identify resolves a user-entered token to a store. A bare token matches
// the display name case-insensitively or the UUID string; a compound
// "name~uuid" token must match both fields at once. No match returns
// (nil, nil) — absence is an ordinary outcome, not an error. More than one
// match returns ErrAmbiguousStore; the engine never picks silently.
func (r *Registry) Identify(token string) (*Store, error) {
	name, id, compound := splitToken(token)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *Store
	for _, s := range r.stores {
		var hit bool
		if compound {
			hit = strings.EqualFold(s.name, name) && strings.EqualFold(s.id.String(), id)
		} else {
			hit = strings.EqualFold(s.name, token) || strings.EqualFold(s.id.String(), token)
		}
		if !hit {
			continue
		}
		if found != nil {
			return nil, ErrAmbiguousStore
		}
		found = s
	}
	return found, nil
}

func splitToken(token string) (name, id string, compound bool) {
	i := strings.LastIndex(token, "~")
	if i < 0 {
		return "", "", false
	}
	return token[:i], token[i+1:], true
}

// SetDefault assigns the default store for key, replacing any previous
// assignment, and notifies the persistence sink.
func (r *Registry) SetDefault(key WorldKey, s *Store) {
	r.mu.Lock()
	r.defaults[key] = s
	sink := r.sink
	r.mu.Unlock()
	if sink != nil {
		_ = sink.SaveDefault(key, s.id.String())
	}
}

// ResolveDefault returns the default store for key. The global key is
// consulted first: a global default always masks a per-world default, so
// operators have a single override switch.
func (r *Registry) ResolveDefault(key WorldKey) *Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s := r.defaults[GlobalKey()]; s != nil {
		return s
	}
	return r.defaults[key]
}

// Remove erases the store from the registry and from every default-table
// entry referencing it. After Remove the store is dead; no other path
// destroys stores.
func (r *Registry) Remove(s *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.stores {
		if cur == s {
			r.stores = append(r.stores[:i], r.stores[i+1:]...)
			break
		}
	}
	for k, cur := range r.defaults {
		if cur == s {
			delete(r.defaults, k)
		}
	}
}
