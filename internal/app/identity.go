package app

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/armon/go-radix"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/metrics"
)

// IdentityDirectory issues and retracts the ephemeral identities of
// connections and indexes their display names for prefix search.
type IdentityDirectory struct {
	mu      sync.RWMutex
	users   map[domain.UserID]domain.Identity
	index   *radix.Tree
	names   NameGenerator
	metrics *metrics.Metrics
}

func NewIdentityDirectory(names NameGenerator, m *metrics.Metrics) *IdentityDirectory {
	if names == nil {
		names = RandomNames{}
	}
	return &IdentityDirectory{
		users:   make(map[domain.UserID]domain.Identity),
		index:   radix.New(),
		names:   names,
		metrics: m,
	}
}

// indexKey orders entries by lowercased name; the id suffix keeps equal names apart.
func indexKey(u domain.Identity) string {
	return strings.ToLower(u.DisplayName) + "\x00" + string(u.ID)
}

// Create issues a new identity for id, replacing any previous one.
func (d *IdentityDirectory) Create(id domain.UserID) domain.Identity {
	u := domain.Identity{ID: id, DisplayName: d.names.Name(), Color: d.names.Color()}

	d.mu.Lock()
	if old, ok := d.users[id]; ok {
		d.index.Delete(indexKey(old))
	}
	d.users[id] = u
	d.index.Insert(indexKey(u), u)
	n := len(d.users)
	d.mu.Unlock()

	d.metrics.SetIdentities(n)
	log.Info().Str("module", "app.identity").Str("user", string(id)).Str("name", u.DisplayName).Msg("identity created")
	return u
}

// Retract removes the identity of id. Unknown ids are ignored.
func (d *IdentityDirectory) Retract(id domain.UserID) {
	d.mu.Lock()
	u, ok := d.users[id]
	if ok {
		delete(d.users, id)
		d.index.Delete(indexKey(u))
	}
	n := len(d.users)
	d.mu.Unlock()

	if ok {
		d.metrics.SetIdentities(n)
		log.Info().Str("module", "app.identity").Str("user", string(id)).Msg("identity retracted")
	}
}

func (d *IdentityDirectory) Get(id domain.UserID) (domain.Identity, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	return u, ok
}

func (d *IdentityDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// Search returns identities whose display name starts with prefix, ignoring
// case, ordered by name. An empty prefix matches nothing.
func (d *IdentityDirectory) Search(prefix string) []domain.Identity {
	if prefix == "" {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []domain.Identity
	d.index.WalkPrefix(strings.ToLower(prefix), func(_ string, v interface{}) bool {
		out = append(out, v.(domain.Identity))
		return false
	})
	return out
}

// Sample returns up to n distinct identities in random order.
func (d *IdentityDirectory) Sample(n int) []domain.Identity {
	if n <= 0 {
		return nil
	}
	d.mu.RLock()
	all := make([]domain.Identity, 0, len(d.users))
	for _, u := range d.users {
		all = append(all, u)
	}
	d.mu.RUnlock()

	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Snapshot returns a copy of every current identity keyed by id.
func (d *IdentityDirectory) Snapshot() map[domain.UserID]domain.Identity {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[domain.UserID]domain.Identity, len(d.users))
	for id, u := range d.users {
		out[id] = u
	}
	return out
}
