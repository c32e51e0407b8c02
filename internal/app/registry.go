package app

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/jump/internal/core"
	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/metrics"
	"github.com/dkeye/jump/internal/protocol"
)

type sessionEntry struct {
	Conn   core.SignalConnection
	Cancel context.CancelFunc
	Rooms  []domain.RoomID
}

// Registry binds connection ids to their transport and keeps the rooms each
// connection takes part in, so a disconnect can unwind them. It is also the
// Notifier used by the room registry and the relay.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.UserID]*sessionEntry
	policy   Policy
	metrics  *metrics.Metrics
}

func NewRegistry(policy Policy, m *metrics.Metrics) *Registry {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Registry{
		sessions: make(map[domain.UserID]*sessionEntry),
		policy:   policy,
		metrics:  m,
	}
}

func (r *Registry) Bind(id domain.UserID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	r.sessions[id] = &sessionEntry{Conn: conn, Cancel: cancel}
	n := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetConnections(n)
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Msg("bound signal")
}

// Unbind forgets the connection and returns the rooms it was indexed in.
func (r *Registry) Unbind(id domain.UserID) []domain.RoomID {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	r.metrics.SetConnections(n)
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Msg("unbind session")
	return e.Rooms
}

func (r *Registry) Bound(id domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// AddRoom indexes room for id. Unbound ids and duplicates are ignored.
func (r *Registry) AddRoom(id domain.UserID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok || slices.Contains(e.Rooms, room) {
		return
	}
	e.Rooms = append(e.Rooms, room)
}

func (r *Registry) RemoveRoom(id domain.UserID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.Rooms = slices.DeleteFunc(e.Rooms, func(x domain.RoomID) bool { return x == room })
	}
}

// RoomsOf returns a copy of the rooms indexed for id.
func (r *Registry) RoomsOf(id domain.UserID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return slices.Clone(e.Rooms)
	}
	return nil
}

// Kick cancels the connection context and closes the transport; the adapter
// then runs the regular disconnect path.
func (r *Registry) Kick(id domain.UserID) bool {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	e.Conn.Close()
	log.Warn().Str("module", "app.registry").Str("sid", string(id)).Msg("kicked connection")
	return true
}

func (r *Registry) Emit(to domain.UserID, event protocol.Event, payload any) bool {
	return r.EmitMany([]domain.UserID{to}, event, payload) == 1
}

func (r *Registry) EmitMany(to []domain.UserID, event protocol.Event, payload any) int {
	if len(to) == 0 {
		return 0
	}
	frame, ok := encode(event, payload)
	if !ok {
		return 0
	}

	type target struct {
		id   domain.UserID
		conn core.SignalConnection
	}
	r.mu.RLock()
	targets := make([]target, 0, len(to))
	for _, id := range to {
		if e, ok := r.sessions[id]; ok {
			targets = append(targets, target{id, e.Conn})
		}
	}
	r.mu.RUnlock()

	sent := 0
	for _, t := range targets {
		if r.send(t.id, t.conn, frame) {
			sent++
		}
	}
	return sent
}

func (r *Registry) Broadcast(event protocol.Event, payload any) int {
	r.mu.RLock()
	ids := make([]domain.UserID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	return r.EmitMany(ids, event, payload)
}

func (r *Registry) send(id domain.UserID, conn core.SignalConnection, frame core.Frame) bool {
	err := conn.TrySend(frame)
	if err == nil {
		return true
	}
	r.metrics.Dropped()
	log.Debug().Err(err).Str("module", "app.registry").Str("sid", string(id)).Msg("send dropped")
	switch r.policy.OnBackPressure(id, err) {
	case KickMember:
		r.Kick(id)
	case DropMessage, NoAction:
	}
	return false
}

func encode(event protocol.Event, payload any) (core.Frame, bool) {
	b, err := protocol.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("event", string(event)).Msg("encode failed")
		return nil, false
	}
	return core.Frame(b), true
}
