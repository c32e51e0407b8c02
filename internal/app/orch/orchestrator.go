// Package orch binds connections to identities and turns client requests
// into registry operations.
package orch

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/jump/internal/app"
	"github.com/dkeye/jump/internal/core"
	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/metrics"
	"github.com/dkeye/jump/internal/protocol"
)

const (
	DefaultSampleSize   = 5
	DefaultReapInterval = time.Minute
)

type Options struct {
	SampleSize     int
	RemoveOnReject bool
	// RoomIdleTTL closes rooms without activity; zero keeps them forever.
	RoomIdleTTL  time.Duration
	ReapInterval time.Duration
}

type Orchestrator struct {
	Registry *app.Registry
	Users    *app.IdentityDirectory
	Rooms    *app.RoomRegistry
	Relay    *app.SignalRelay
	Clock    clock.Clock
	Metrics  *metrics.Metrics
	Options  Options
}

// OnConnect binds a new connection, issues its identity and refreshes the
// user listing of everyone.
func (o *Orchestrator) OnConnect(sid domain.UserID, conn core.SignalConnection, cancel context.CancelFunc) domain.Identity {
	o.Registry.Bind(sid, conn, cancel)
	user := o.Users.Create(sid)
	o.Registry.Emit(sid, protocol.DisplayName, user)
	o.broadcastUsers()
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("name", user.DisplayName).Msg("connected")
	return user
}

// OnDisconnect leaves every room of the connection, retracts its identity
// and refreshes the listing. Safe to call more than once.
func (o *Orchestrator) OnDisconnect(sid domain.UserID) {
	for _, id := range o.Registry.RoomsOf(sid) {
		if err := o.leave(sid, id); err != nil {
			log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", string(id)).Msg("leave on disconnect")
		}
	}
	o.Registry.Unbind(sid)
	o.Users.Retract(sid)
	o.broadcastUsers()
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
}

// Handle dispatches one decoded request of sid.
func (o *Orchestrator) Handle(sid domain.UserID, msg protocol.Inbound) {
	var err error
	switch m := msg.(type) {
	case protocol.LoginRequest:
		o.login(sid)
	case protocol.GetUsersRequest:
		o.getUsers(sid)
	case protocol.PingRequest:
		o.Registry.Emit(sid, protocol.Pong, nil)
	case protocol.SearchUsersRequest:
		o.searchUsers(sid, m.SearchTerm)
	case protocol.CreateRoomRequest:
		o.createRoom(sid, m.Invited)
	case protocol.RoomRequest:
		err = o.handleRoomRequest(sid, m)
	case protocol.Description:
		o.Relay.Relay(m.RoomID, m.Kind, m, sid)
	case protocol.Candidate:
		o.Relay.Relay(m.RoomID, protocol.ICECandidate, m, sid)
	case protocol.FileMessage:
		o.fileMessage(sid, m)
	default:
		err = domain.ErrUnknownEvent
	}
	if err != nil {
		o.Fail(sid, msg.Event(), err)
	}
}

// Fail reports err to the requesting connection only.
func (o *Orchestrator) Fail(sid domain.UserID, event protocol.Event, err error) {
	code := domain.Code(err)
	o.Metrics.Error(code)
	log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("event", string(event)).Str("code", code).Msg("request failed")
	o.Registry.Emit(sid, protocol.Error, protocol.ErrorReply{Event: event, Code: code, Message: err.Error()})
}

// Run expires idle rooms until ctx is done. It returns at once when idle
// expiry is disabled.
func (o *Orchestrator) Run(ctx context.Context) {
	if o.Options.RoomIdleTTL <= 0 {
		return
	}
	interval := o.Options.ReapInterval
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	t := o.clock().Ticker(interval)
	defer t.Stop()
	log.Info().Str("module", "orch").Dur("ttl", o.Options.RoomIdleTTL).Dur("interval", interval).Msg("idle room reaper started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			o.ExpireIdle()
		}
	}
}

// ExpireIdle closes idle rooms and tells their members. It returns the
// number of rooms closed.
func (o *Orchestrator) ExpireIdle() int {
	expired := o.Rooms.ExpireIdle(o.Options.RoomIdleTTL)
	for _, room := range expired {
		for uid := range room.Invited {
			o.Registry.RemoveRoom(uid, room.ID)
			o.Registry.Emit(uid, protocol.LeaveRoom, protocol.RoomLeft{RoomID: room.ID})
		}
	}
	return len(expired)
}

func (o *Orchestrator) clock() clock.Clock {
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	return o.Clock
}

// identity returns the directory identity of sid, or a bare one when the
// connection has none.
func (o *Orchestrator) identity(sid domain.UserID) domain.Identity {
	if u, ok := o.Users.Get(sid); ok {
		return u
	}
	return domain.Identity{ID: sid}
}

func (o *Orchestrator) broadcastUsers() {
	o.Registry.Broadcast(protocol.Users, o.Users.Snapshot())
}
