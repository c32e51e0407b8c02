package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/protocol"
)

// fileMessage routes file negotiation. A request goes to the whole room with
// the sender stamped by the server; an answer that names the file's sender
// goes to that peer only.
func (o *Orchestrator) fileMessage(sid domain.UserID, m protocol.FileMessage) {
	if m.Kind == protocol.SendFileRequest {
		m.Sender = o.identity(sid)
		o.Relay.Relay(m.RoomID, m.Kind, m, sid)
		return
	}

	if peer := m.Sender.ID; peer != "" && peer != sid {
		if !o.Relay.RelayTo(m.RoomID, m.Kind, m, sid, peer) {
			log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("to", string(peer)).Str("event", string(m.Kind)).Msg("file answer not delivered")
		}
		return
	}
	o.Relay.Relay(m.RoomID, m.Kind, m, sid)
}
