package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/jump/internal/core"
	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/metrics"
	"github.com/dkeye/jump/internal/protocol"
)

type room struct {
	mu         sync.Mutex
	id         domain.RoomID
	owner      domain.UserID
	invited    domain.Invited
	lastActive time.Time
	closed     bool
}

func (rm *room) snapshot() domain.Room {
	return domain.Room{ID: rm.id, Owner: rm.owner, Invited: rm.invited.Clone()}
}

func (rm *room) status(kind protocol.StatusType, user domain.UserID, withInvited bool) protocol.Status {
	st := protocol.Status{
		Type:   kind,
		RoomID: rm.id,
		Full:   rm.invited.Full(),
		Owner:  rm.owner,
		UserID: user,
	}
	if withInvited {
		st.Invited = rm.invited.Clone()
	}
	return st
}

// LeaveResult describes what a leave did to the room.
type LeaveResult struct {
	Closed bool
	// Survivor is the last remaining invitee of a closed room, if any.
	Survivor domain.UserID
}

type RoomOption func(*RoomRegistry)

// WithIDSource replaces the uuid room id source.
func WithIDSource(next func() string) RoomOption {
	return func(r *RoomRegistry) { r.newID = next }
}

// RoomRegistry owns rooms and the invite state machine of their members.
// Every mutation of a room runs under that room's lock; notifications are
// sent after the lock is released, to a member snapshot taken under it.
type RoomRegistry struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]*room
	newID   func() string
	notify  core.Notifier
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewRoomRegistry(notify core.Notifier, clk clock.Clock, m *metrics.Metrics, opts ...RoomOption) *RoomRegistry {
	if clk == nil {
		clk = clock.New()
	}
	r := &RoomRegistry{
		rooms:   make(map[domain.RoomID]*room),
		newID:   uuid.NewString,
		notify:  notify,
		clock:   clk,
		metrics: m,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// allocate draws ids until one is not live. Caller holds r.mu.
func (r *RoomRegistry) allocate() domain.RoomID {
	for {
		id := domain.RoomID(r.newID())
		if _, taken := r.rooms[id]; id != "" && !taken {
			return id
		}
	}
}

// CreateRoom stores a new room owned by owner. Every invitee starts out
// pending except the owner, who is always part of the list and accepted.
func (r *RoomRegistry) CreateRoom(owner domain.Identity, invited domain.Invited) domain.Room {
	in := make(domain.Invited, len(invited)+1)
	for uid, st := range invited {
		st.Accepted = false
		in[uid] = st
	}
	st := in[owner.ID]
	st.Accepted = true
	if st.DisplayName.ID == "" {
		st.DisplayName = owner
	}
	in[owner.ID] = st

	r.mu.Lock()
	id := r.allocate()
	rm := &room{id: id, owner: owner.ID, invited: in, lastActive: r.clock.Now()}
	r.rooms[id] = rm
	snap := rm.snapshot()
	r.mu.Unlock()

	r.metrics.RoomOpened()
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("owner", string(owner.ID)).Int("invited", len(in)).Msg("room created")
	return snap
}

// withRoom runs fn with the room locked. Closed rooms count as absent.
func (r *RoomRegistry) withRoom(id domain.RoomID, fn func(rm *room) error) error {
	r.mu.RLock()
	rm, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return domain.ErrRoomNotFound
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.closed {
		return domain.ErrRoomNotFound
	}
	return fn(rm)
}

func (r *RoomRegistry) GetRoom(id domain.RoomID) (domain.Room, bool) {
	var out domain.Room
	err := r.withRoom(id, func(rm *room) error {
		out = rm.snapshot()
		return nil
	})
	return out, err == nil
}

func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Touch marks the room active.
func (r *RoomRegistry) Touch(id domain.RoomID) {
	_ = r.withRoom(id, func(rm *room) error {
		rm.lastActive = r.clock.Now()
		return nil
	})
}

// ConnectToRoom accepts the invite of user and tells every accepted member.
func (r *RoomRegistry) ConnectToRoom(user domain.UserID, id domain.RoomID) error {
	var (
		status protocol.Status
		to     []domain.UserID
	)
	err := r.withRoom(id, func(rm *room) error {
		st, invited := rm.invited[user]
		switch {
		case rm.invited.Full():
			return domain.ErrRoomFull
		case !invited:
			return domain.ErrNotInvited
		case st.Accepted:
			return domain.ErrAlreadyInRoom
		}
		st.Accepted = true
		rm.invited[user] = st
		rm.lastActive = r.clock.Now()
		status = rm.status(protocol.UserConnect, user, false)
		to = rm.invited.Accepted()
		return nil
	})
	if err != nil {
		return fmt.Errorf("connect %s to room %s: %w", user, id, err)
	}
	r.notify.EmitMany(to, protocol.RoomStatus, status)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(user)).Bool("full", status.Full).Msg("user connected")
	return nil
}

// SendInvites notifies every invitee except the sender. No state changes.
func (r *RoomRegistry) SendInvites(id domain.RoomID, sender domain.Identity) error {
	var to []domain.UserID
	err := r.withRoom(id, func(rm *room) error {
		if _, ok := rm.invited[sender.ID]; !ok {
			return domain.ErrNotInvited
		}
		for uid := range rm.invited {
			if uid != sender.ID {
				to = append(to, uid)
			}
		}
		rm.lastActive = r.clock.Now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("send invites for room %s: %w", id, err)
	}
	n := r.notify.EmitMany(to, protocol.SendRoomInvites, protocol.RoomInvite{Sender: sender, RoomID: id})
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("sender", string(sender.ID)).Int("sent", n).Msg("invites sent")
	return nil
}

// AcceptTransferRequest marks user accepted and sends the full invite list
// to accepted members.
func (r *RoomRegistry) AcceptTransferRequest(id domain.RoomID, user domain.UserID) error {
	var (
		status protocol.Status
		to     []domain.UserID
	)
	err := r.withRoom(id, func(rm *room) error {
		st, ok := rm.invited[user]
		if !ok {
			return domain.ErrNotInvited
		}
		st.Accepted = true
		rm.invited[user] = st
		rm.lastActive = r.clock.Now()
		status = rm.status(protocol.UserConnect, user, true)
		to = rm.invited.Accepted()
		return nil
	})
	if err != nil {
		return fmt.Errorf("accept transfer in room %s: %w", id, err)
	}
	r.notify.EmitMany(to, protocol.RoomStatus, status)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(user)).Msg("transfer accepted")
	return nil
}

// RejectTransferRequest tells accepted members that user declined. The user
// stays invited; removing them is a separate LeaveRoom.
func (r *RoomRegistry) RejectTransferRequest(id domain.RoomID, user domain.UserID) error {
	var (
		status protocol.Status
		to     []domain.UserID
	)
	err := r.withRoom(id, func(rm *room) error {
		if _, ok := rm.invited[user]; !ok {
			return domain.ErrNotInvited
		}
		rm.lastActive = r.clock.Now()
		status = rm.status(protocol.UserDisconnect, user, true)
		to = rm.invited.Accepted()
		return nil
	})
	if err != nil {
		return fmt.Errorf("reject transfer in room %s: %w", id, err)
	}
	r.notify.EmitMany(to, protocol.RoomStatus, status)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(user)).Msg("transfer rejected")
	return nil
}

// LeaveRoom removes user from the invite list. When at most one invitee is
// left, accepted or not, the room closes and the survivor gets LEAVE_ROOM.
func (r *RoomRegistry) LeaveRoom(id domain.RoomID, user domain.UserID) (LeaveResult, error) {
	var (
		res    LeaveResult
		status protocol.Status
		to     []domain.UserID
		rm     *room
	)
	err := r.withRoom(id, func(locked *room) error {
		if _, ok := locked.invited[user]; !ok {
			return domain.ErrNotInvited
		}
		delete(locked.invited, user)
		rm = locked
		if len(locked.invited) <= 1 {
			locked.closed = true
			res.Closed = true
			for uid := range locked.invited {
				res.Survivor = uid
			}
			return nil
		}
		locked.lastActive = r.clock.Now()
		status = locked.status(protocol.UserDisconnect, user, true)
		to = locked.invited.Accepted()
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("leave room %s: %w", id, err)
	}

	if !res.Closed {
		r.notify.EmitMany(to, protocol.RoomStatus, status)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(user)).Msg("user left")
		return res, nil
	}

	r.remove(id, rm)
	r.metrics.RoomClosed(metrics.CloseLeave)
	if res.Survivor != "" {
		r.notify.Emit(res.Survivor, protocol.LeaveRoom, protocol.RoomLeft{RoomID: id})
	}
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(user)).Msg("room closed")
	return res, nil
}

func (r *RoomRegistry) remove(id domain.RoomID, rm *room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[id] == rm {
		delete(r.rooms, id)
	}
}

// ExpireIdle closes rooms without activity for at least ttl and returns
// them as they were at closing.
func (r *RoomRegistry) ExpireIdle(ttl time.Duration) []domain.Room {
	if ttl <= 0 {
		return nil
	}
	now := r.clock.Now()
	var expired []domain.Room

	r.mu.Lock()
	for id, rm := range r.rooms {
		rm.mu.Lock()
		if !rm.closed && now.Sub(rm.lastActive) >= ttl {
			rm.closed = true
			expired = append(expired, rm.snapshot())
			delete(r.rooms, id)
		}
		rm.mu.Unlock()
	}
	r.mu.Unlock()

	for _, x := range expired {
		r.metrics.RoomClosed(metrics.CloseIdle)
		log.Info().Str("module", "app.rooms").Str("room", string(x.ID)).Dur("ttl", ttl).Msg("idle room expired")
	}
	return expired
}
