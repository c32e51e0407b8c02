package orch

import (
	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/protocol"
)

func (o *Orchestrator) login(sid domain.UserID) {
	user, ok := o.Users.Get(sid)
	if !ok {
		user = o.Users.Create(sid)
		o.broadcastUsers()
	}
	o.Registry.Emit(sid, protocol.DisplayName, user)
}

func (o *Orchestrator) getUsers(sid domain.UserID) {
	n := o.Options.SampleSize
	if n <= 0 {
		n = DefaultSampleSize
	}
	sample := o.Users.Sample(n)
	out := make(map[domain.UserID]domain.Identity, len(sample))
	for _, u := range sample {
		out[u.ID] = u
	}
	o.Registry.Emit(sid, protocol.Users, out)
}

func (o *Orchestrator) searchUsers(sid domain.UserID, term string) {
	found := o.Users.Search(term)
	if found == nil {
		found = []domain.Identity{}
	}
	o.Registry.Emit(sid, protocol.SearchUsers, found)
}
