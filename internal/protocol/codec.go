package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/jump/internal/domain"
)

// Envelope is the frame layout on the wire.
type Envelope struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode wraps payload in an envelope. A nil payload is sent without data.
func Encode(event Event, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", event, err)
		}
		env.Data = b
	}
	return json.Marshal(env)
}

// Decode parses a client frame into its typed request.
func Decode(data []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	switch env.Event {
	case Login:
		return LoginRequest{}, nil
	case GetUsers:
		return GetUsersRequest{}, nil
	case Ping:
		return PingRequest{}, nil
	case SearchUsers:
		var p SearchUsersRequest
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return p, nil
	case CreateRoom:
		var p CreateRoomRequest
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ConnectToRoom, LeaveRoom, SendRoomInvites, AcceptTransfer, RejectTransfer:
		p := RoomRequest{Kind: env.Event}
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		if p.RoomID == "" {
			return nil, missing(env.Event, "roomId")
		}
		return p, nil
	case RTCOffer, RTCAnswer:
		p := Description{Kind: env.Event}
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return p, nil
	case ICECandidate:
		var p Candidate
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		if p.RoomID == "" {
			return nil, missing(env.Event, "roomId")
		}
		return p, nil
	case SendFileRequest, FileAccept, FileReject:
		p := FileMessage{Kind: env.Event}
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		if p.RoomID == "" {
			return nil, missing(env.Event, "roomId")
		}
		if p.FileID == "" {
			return nil, missing(env.Event, "fileId")
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, env.Event)
	}
}

func (d Description) validate() error {
	if d.RoomID == "" {
		return missing(d.Kind, "roomId")
	}
	if d.SDP.SDP == "" {
		return missing(d.Kind, "sdp")
	}
	switch d.Kind {
	case RTCOffer:
		if d.SDP.Type != webrtc.SDPTypeOffer {
			return fmt.Errorf("%w: %s carries sdp type %s", domain.ErrInvalidPayload, d.Kind, d.SDP.Type)
		}
	case RTCAnswer:
		if d.SDP.Type != webrtc.SDPTypeAnswer && d.SDP.Type != webrtc.SDPTypePranswer {
			return fmt.Errorf("%w: %s carries sdp type %s", domain.ErrInvalidPayload, d.Kind, d.SDP.Type)
		}
	}
	return nil
}

func unmarshal(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s without data", domain.ErrInvalidPayload, env.Event)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidPayload, env.Event, err)
	}
	return nil
}

func missing(event Event, field string) error {
	return fmt.Errorf("%w: %s missing %s", domain.ErrInvalidPayload, event, field)
}
