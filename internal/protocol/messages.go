package protocol

import (
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/jump/internal/domain"
)

// Inbound is a decoded client->server message. The set is closed: only types
// in this package implement it.
type Inbound interface {
	Event() Event
	inbound()
}

type (
	LoginRequest    struct{}
	GetUsersRequest struct{}
	PingRequest     struct{}

	SearchUsersRequest struct {
		SearchTerm string `json:"searchTerm"`
	}

	CreateRoomRequest struct {
		Invited domain.Invited `json:"invited"`
	}

	// RoomRequest is the body of every request that only names a room.
	RoomRequest struct {
		Kind   Event         `json:"-"`
		RoomID domain.RoomID `json:"roomId"`
	}

	// Description carries an SDP offer or answer.
	Description struct {
		Kind   Event                     `json:"-"`
		SDP    webrtc.SessionDescription `json:"sdp"`
		RoomID domain.RoomID             `json:"roomId"`
	}

	Candidate struct {
		Candidate webrtc.ICECandidateInit `json:"candidate"`
		RoomID    domain.RoomID           `json:"roomId"`
	}

	// FileMessage negotiates a file transfer between peers of a room.
	FileMessage struct {
		Kind     Event           `json:"-"`
		Sender   domain.Identity `json:"sender"`
		RoomID   domain.RoomID   `json:"roomId"`
		FileID   string          `json:"fileId"`
		FileName string          `json:"fileName,omitempty"`
		FileSize int64           `json:"fileSize,omitempty"`
	}
)

func (LoginRequest) Event() Event       { return Login }
func (GetUsersRequest) Event() Event    { return GetUsers }
func (PingRequest) Event() Event        { return Ping }
func (SearchUsersRequest) Event() Event { return SearchUsers }
func (CreateRoomRequest) Event() Event  { return CreateRoom }
func (r RoomRequest) Event() Event      { return r.Kind }
func (d Description) Event() Event      { return d.Kind }
func (Candidate) Event() Event          { return ICECandidate }
func (f FileMessage) Event() Event      { return f.Kind }

func (LoginRequest) inbound()       {}
func (GetUsersRequest) inbound()    {}
func (PingRequest) inbound()        {}
func (SearchUsersRequest) inbound() {}
func (CreateRoomRequest) inbound()  {}
func (RoomRequest) inbound()        {}
func (Description) inbound()        {}
func (Candidate) inbound()          {}
func (FileMessage) inbound()        {}

// Server->client payloads.
type (
	RoomCreated struct {
		RoomID domain.RoomID `json:"roomId"`
	}

	RoomLeft struct {
		RoomID domain.RoomID `json:"roomId"`
	}

	Status struct {
		Type    StatusType     `json:"type"`
		RoomID  domain.RoomID  `json:"roomId"`
		Invited domain.Invited `json:"invited,omitempty"`
		Full    bool           `json:"full"`
		Owner   domain.UserID  `json:"owner"`
		UserID  domain.UserID  `json:"userId"`
	}

	RoomInvite struct {
		Sender domain.Identity `json:"sender"`
		RoomID domain.RoomID   `json:"roomId"`
	}

	ErrorReply struct {
		Event   Event  `json:"event,omitempty"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)
