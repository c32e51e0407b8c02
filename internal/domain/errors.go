package domain

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room full")
	ErrNotInvited     = errors.New("not invited")
	ErrAlreadyInRoom  = errors.New("already in room")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrRateLimited    = errors.New("rate limited")
)

// Code maps an error to the code reported to clients.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, ErrRoomFull):
		return "ROOM_FULL"
	case errors.Is(err, ErrNotInvited):
		return "NOT_INVITED"
	case errors.Is(err, ErrAlreadyInRoom):
		return "ALREADY_IN_ROOM"
	case errors.Is(err, ErrInvalidPayload):
		return "INVALID_PAYLOAD"
	case errors.Is(err, ErrUnknownEvent):
		return "UNKNOWN_EVENT"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	default:
		return "INTERNAL"
	}
}
