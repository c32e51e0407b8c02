package app

import (
	"errors"

	"github.com/dkeye/jump/internal/core"
	"github.com/dkeye/jump/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropMessage
	KickMember
)

// Policy decides what happens to a connection whose send failed.
type Policy interface {
	OnBackPressure(id domain.UserID, err error) BackpressureAction
}

// DropPolicy drops the message and keeps the connection.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.UserID, error) BackpressureAction {
	return DropMessage
}

// KickPolicy disconnects members whose queue is full.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(_ domain.UserID, err error) BackpressureAction {
	if errors.Is(err, core.ErrBackpressure) {
		return KickMember
	}
	return DropMessage
}

// PolicyByName maps a config value to a Policy. Unknown names drop.
func PolicyByName(name string) Policy {
	if name == "kick" {
		return KickPolicy{}
	}
	return DropPolicy{}
}
