package app

import (
	"sync"

	"github.com/dkeye/CamRelay/internal/core"
	"github.com/dkeye/CamRelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry maps registered identities to their live connection, one map per
// role. Membership is the only notion of "connected" the relay has.
type Registry struct {
	mu      sync.RWMutex
	viewers map[domain.ClientID]*core.ClientConnection
	cameras map[domain.ClientID]*core.ClientConnection
}

func NewRegistry() *Registry {
	return &Registry{
		viewers: make(map[domain.ClientID]*core.ClientConnection),
		cameras: make(map[domain.ClientID]*core.ClientConnection),
	}
}

func (r *Registry) byRole(role domain.Role) map[domain.ClientID]*core.ClientConnection {
	if role == domain.RoleCamera {
		return r.cameras
	}
	return r.viewers
}

// Register inserts or replaces the entry for (c.Role, c.Identity) and returns
// the connection it displaced, if any. The displaced connection is left open.
func (r *Registry) Register(c *core.ClientConnection) *core.ClientConnection {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.byRole(c.Role)
	prev := m[c.Identity]
	m[c.Identity] = c
	ev := log.Info().Str("module", "app.registry").Str("id", string(c.Identity)).Str("role", string(c.Role))
	if prev != nil && prev != c {
		ev = ev.Bool("replaced", true)
	}
	ev.Msg("registered")
	if prev == c {
		return nil
	}
	return prev
}

func (r *Registry) Unregister(id domain.ClientID, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.byRole(role)
	if _, ok := m[id]; !ok {
		return
	}
	delete(m, id)
	log.Info().Str("module", "app.registry").Str("id", string(id)).Str("role", string(role)).Msg("unregistered")
}

// UnregisterConn removes c only while it is still the registered entry for
// its identity. It reports whether anything was removed.
func (r *Registry) UnregisterConn(c *core.ClientConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.byRole(c.Role)
	if cur, ok := m[c.Identity]; !ok || cur != c {
		return false
	}
	delete(m, c.Identity)
	log.Info().Str("module", "app.registry").Str("id", string(c.Identity)).Str("role", string(c.Role)).Msg("unregistered")
	return true
}

func (r *Registry) Lookup(id domain.ClientID, role domain.Role) (*core.ClientConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byRole(role)[id]
	return c, ok
}

func (r *Registry) IsCameraConnected(id domain.ClientID) bool {
	_, ok := r.Lookup(id, domain.RoleCamera)
	return ok
}

type Counts struct {
	Viewers int `json:"viewers"`
	Cameras int `json:"cameras"`
}

func (r *Registry) Counts() Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Counts{Viewers: len(r.viewers), Cameras: len(r.cameras)}
}
