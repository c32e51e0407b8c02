package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/protocol"
)

func (o *Orchestrator) createRoom(sid domain.UserID, invited domain.Invited) {
	in := make(domain.Invited, len(invited))
	for uid, st := range invited {
		if u, ok := o.Users.Get(uid); ok {
			st.DisplayName = u
		}
		in[uid] = st
	}

	room := o.Rooms.CreateRoom(o.identity(sid), in)
	for uid := range room.Invited {
		o.Registry.AddRoom(uid, room.ID)
	}
	o.Registry.Emit(sid, protocol.CreateRoomOK, protocol.RoomCreated{RoomID: room.ID})
}

func (o *Orchestrator) handleRoomRequest(sid domain.UserID, req protocol.RoomRequest) error {
	switch req.Kind {
	case protocol.ConnectToRoom:
		return o.connect(sid, req.RoomID)
	case protocol.LeaveRoom:
		return o.leave(sid, req.RoomID)
	case protocol.SendRoomInvites:
		return o.Rooms.SendInvites(req.RoomID, o.identity(sid))
	case protocol.AcceptTransfer:
		return o.acceptTransfer(sid, req.RoomID)
	case protocol.RejectTransfer:
		return o.rejectTransfer(sid, req.RoomID)
	default:
		return domain.ErrUnknownEvent
	}
}

func (o *Orchestrator) connect(sid domain.UserID, id domain.RoomID) error {
	if err := o.Rooms.ConnectToRoom(sid, id); err != nil {
		return err
	}
	o.Registry.AddRoom(sid, id)
	return nil
}

func (o *Orchestrator) acceptTransfer(sid domain.UserID, id domain.RoomID) error {
	if err := o.Rooms.AcceptTransferRequest(id, sid); err != nil {
		return err
	}
	o.Registry.AddRoom(sid, id)
	return nil
}

func (o *Orchestrator) rejectTransfer(sid domain.UserID, id domain.RoomID) error {
	if err := o.Rooms.RejectTransferRequest(id, sid); err != nil {
		return err
	}
	if !o.Options.RemoveOnReject {
		return nil
	}
	return o.leave(sid, id)
}

// leave removes sid from the room and keeps the connection index in step,
// including the survivor of a room that closed.
func (o *Orchestrator) leave(sid domain.UserID, id domain.RoomID) error {
	res, err := o.Rooms.LeaveRoom(id, sid)
	o.Registry.RemoveRoom(sid, id)
	if err != nil {
		return err
	}
	if res.Closed && res.Survivor != "" {
		o.Registry.RemoveRoom(res.Survivor, id)
	}
	log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("room", string(id)).Bool("closed", res.Closed).Msg("left room")
	return nil
}
