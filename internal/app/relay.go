package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/jump/internal/core"
	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/metrics"
	"github.com/dkeye/jump/internal/protocol"
)

// SignalRelay forwards peer messages to the accepted members of a room. It
// keeps no state; membership is read from the room registry per message.
type SignalRelay struct {
	rooms   *RoomRegistry
	notify  core.Notifier
	metrics *metrics.Metrics
}

func NewSignalRelay(rooms *RoomRegistry, notify core.Notifier, m *metrics.Metrics) *SignalRelay {
	return &SignalRelay{rooms: rooms, notify: notify, metrics: m}
}

// Relay sends payload to every accepted member except the sender and returns
// how many sends were queued. An unknown room is a silent no-op.
func (s *SignalRelay) Relay(id domain.RoomID, event protocol.Event, payload any, sender domain.UserID) int {
	room, ok := s.rooms.GetRoom(id)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("room", string(id)).Str("event", string(event)).Msg("relay to missing room")
		return 0
	}
	to := make([]domain.UserID, 0, len(room.Invited))
	for _, uid := range room.Invited.Accepted() {
		if uid != sender {
			to = append(to, uid)
		}
	}
	s.rooms.Touch(id)
	n := s.notify.EmitMany(to, event, payload)
	s.metrics.Relay(string(event), n)
	log.Debug().Str("module", "app.relay").Str("room", string(id)).Str("event", string(event)).Str("from", string(sender)).Int("sent_to", n).Msg("relayed")
	return n
}

// RelayTo sends payload to one accepted member of the room. It reports false
// when the room is gone or the recipient is not an accepted member.
func (s *SignalRelay) RelayTo(id domain.RoomID, event protocol.Event, payload any, sender, recipient domain.UserID) bool {
	room, ok := s.rooms.GetRoom(id)
	if !ok || recipient == sender {
		return false
	}
	if st, ok := room.Invited[recipient]; !ok || !st.Accepted {
		return false
	}
	s.rooms.Touch(id)
	sent := s.notify.Emit(recipient, event, payload)
	if sent {
		s.metrics.Relay(string(event), 1)
	}
	log.Debug().Str("module", "app.relay").Str("room", string(id)).Str("event", string(event)).Str("from", string(sender)).Str("to", string(recipient)).Bool("sent", sent).Msg("relayed")
	return sent
}
