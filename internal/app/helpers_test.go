package app

import (
	"sort"
	"sync"

	"github.com/dkeye/jump/internal/core"
	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/protocol"
)

type sent struct {
	To      domain.UserID
	Event   protocol.Event
	Payload any
}

// recorder is a Notifier that keeps every message instead of sending it.
type recorder struct {
	mu        sync.Mutex
	msgs      []sent
	broadcast []sent
}

func (r *recorder) Emit(to domain.UserID, event protocol.Event, payload any) bool {
	return r.EmitMany([]domain.UserID{to}, event, payload) == 1
}

func (r *recorder) EmitMany(to []domain.UserID, event protocol.Event, payload any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range to {
		r.msgs = append(r.msgs, sent{To: id, Event: event, Payload: payload})
	}
	return len(to)
}

func (r *recorder) Broadcast(event protocol.Event, payload any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast = append(r.broadcast, sent{Event: event, Payload: payload})
	return 1
}

func (r *recorder) to(id domain.UserID) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sent
	for _, m := range r.msgs {
		if m.To == id {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) recipients(event protocol.Event) []domain.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UserID
	for _, m := range r.msgs {
		if m.Event == event {
			out = append(out, m.To)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
	r.broadcast = nil
}

// fakeConn is a SignalConnection backed by a bounded queue.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	limit  int
	closed bool
}

func newFakeConn(limit int) *fakeConn { return &fakeConn{limit: limit} }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if len(c.frames) >= c.limit {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fixedNames hands out names in order, then repeats the last one.
type fixedNames struct {
	mu    sync.Mutex
	names []string
}

func (f *fixedNames) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.names[0]
	if len(f.names) > 1 {
		f.names = f.names[1:]
	}
	return n
}

func (f *fixedNames) Color() string { return Palette[0] }

func ident(id string) domain.Identity {
	return domain.Identity{ID: domain.UserID(id), DisplayName: id, Color: Palette[0]}
}

func invites(ids ...string) domain.Invited {
	in := domain.Invited{}
	for _, id := range ids {
		in[domain.UserID(id)] = domain.InviteState{DisplayName: ident(id)}
	}
	return in
}
