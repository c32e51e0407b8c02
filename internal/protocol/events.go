// Package protocol defines the wire catalog of the signaling server: a closed
// set of event names, one payload record per event and the JSON envelope
// that carries them over the websocket.
package protocol

// Event names a message on the wire.
type Event string

const (
	Login           Event = "LOGIN"
	DisplayName     Event = "DISPLAY_NAME"
	GetUsers        Event = "GET_USERS"
	SearchUsers     Event = "SEARCH_USERS"
	Users           Event = "USERS"
	CreateRoom      Event = "CREATE_ROOM"
	CreateRoomOK    Event = "CREATE_ROOM_SUCCESS"
	ConnectToRoom   Event = "CONNECT_TO_ROOM"
	LeaveRoom       Event = "LEAVE_ROOM"
	RoomStatus      Event = "ROOM_STATUS"
	SendRoomInvites Event = "SEND_ROOM_INVITES"
	AcceptTransfer  Event = "ACCEPT_TRANSFER_REQUEST"
	RejectTransfer  Event = "REJECT_TRANSFER_REQUEST"
	SendFileRequest Event = "SEND_FILE_REQUEST"
	FileAccept      Event = "FILE_ACCEPT"
	FileReject      Event = "FILE_REJECT"
	RTCOffer        Event = "RTC_DESCRIPTION_OFFER"
	RTCAnswer       Event = "RTC_DESCRIPTION_ANSWER"
	ICECandidate    Event = "ICE_CANDIDATE"
	Ping            Event = "PING"
	Pong            Event = "PONG"
	Error           Event = "ERROR"
)

// StatusType is the kind of a ROOM_STATUS update.
type StatusType string

const (
	UserConnect    StatusType = "USER_CONNECT"
	UserDisconnect StatusType = "USER_DISCONNECT"
)
