package effects

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind names the visual cue an effect drives.
type Kind string

const (
	KindShield     Kind = "shield"
	KindBlock      Kind = "block"
	KindDamage     Kind = "damage"
	KindProjectile Kind = "projectile"
)

// Target says which side of the arena the effect annotates.
type Target string

const (
	TargetPlayer   Target = "player"
	TargetOpponent Target = "opponent"
)

// Effect is one ephemeral presentation cue. It carries no gameplay
// authority; combatant numbers only ever change via game_state snapshots.
type Effect struct {
	ID        string
	Kind      Kind
	Target    Target
	Value     int
	ExpiresAt time.Time
}

// DefaultLifetime is how long a cue stays visible.
const DefaultLifetime = time.Second

// maxPending bounds the registry against a misbehaving peer flooding
// cosmetic events faster than they expire.
const maxPending = 64

type entry struct {
	effect Effect
	timer  *time.Timer
}

// Registry holds live effects keyed by id. Every insertion schedules its own
// removal; removal is idempotent so a late timer firing after Reset is a
// no-op rather than a race.
type Registry struct {
	mu       sync.Mutex
	lifetime time.Duration
	entries  map[string]*entry
	order    []string
	closed   bool
}

func NewRegistry(lifetime time.Duration) *Registry {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Registry{
		lifetime: lifetime,
		entries:  make(map[string]*entry),
	}
}

// Spawn inserts a new effect and arms its expiry timer.
func (r *Registry) Spawn(kind Kind, target Target, value int) Effect {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Effect{}
	}

	if len(r.order) >= maxPending {
		r.removeLocked(r.order[0])
	}

	id := uuid.NewString()
	eff := Effect{
		ID:        id,
		Kind:      kind,
		Target:    target,
		Value:     value,
		ExpiresAt: time.Now().Add(r.lifetime),
	}
	e := &entry{effect: eff}
	e.timer = time.AfterFunc(r.lifetime, func() { r.Remove(id) })
	r.entries[id] = e
	r.order = append(r.order, id)
	return eff
}

// Remove drops the effect with the given id. Removing an id that already
// expired or was never present is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

func (r *Registry) removeLocked(id string) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.timer.Stop()
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Snapshot returns the live effects in insertion order.
func (r *Registry) Snapshot() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Effect, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].effect)
	}
	return out
}

// ActiveFor reports whether any live effect matches kind and target. The
// answer is recomputed on every call; callers must not cache it.
func (r *Registry) ActiveFor(kind Kind, target Target) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.effect.Kind == kind && e.effect.Target == target {
			return true
		}
	}
	return false
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reset cancels every pending expiry and empties the registry. The registry
// stays usable for the next match.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		e.timer.Stop()
	}
	r.entries = make(map[string]*entry)
	r.order = nil
}

// Close resets the registry and rejects further spawns. Used on session
// teardown so no stale callback outlives the session that owned it.
func (r *Registry) Close() {
	r.mu.Lock()
	for _, e := range r.entries {
		e.timer.Stop()
	}
	r.entries = make(map[string]*entry)
	r.order = nil
	r.closed = true
	r.mu.Unlock()
}
