package domain

// InviteState tracks whether an invited identity has accepted room membership.
type InviteState struct {
	Accepted    bool     `json:"accepted"`
	DisplayName Identity `json:"displayName"`
}

// Invited is the invite list of a room keyed by user id.
type Invited map[UserID]InviteState

// Full reports whether every invited member has accepted.
// An empty list is never full.
func (in Invited) Full() bool {
	if len(in) == 0 {
		return false
	}
	for _, st := range in {
		if !st.Accepted {
			return false
		}
	}
	return true
}

// Accepted returns the ids of members that have accepted.
func (in Invited) Accepted() []UserID {
	out := make([]UserID, 0, len(in))
	for id, st := range in {
		if st.Accepted {
			out = append(out, id)
		}
	}
	return out
}

func (in Invited) Clone() Invited {
	out := make(Invited, len(in))
	for id, st := range in {
		out[id] = st
	}
	return out
}
