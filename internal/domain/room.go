package domain

type RoomID string

// Room is a bounded set of invited identities negotiating a peer session.
type Room struct {
	ID      RoomID  `json:"roomId"`
	Owner   UserID  `json:"owner"`
	Invited Invited `json:"invited"`
}

func (r Room) Full() bool { return r.Invited.Full() }
