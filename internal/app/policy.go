package app

import (
	"fmt"

	"github.com/dkeye/CamRelay/internal/core"
)

type BackpressureAction int

const (
	DropMessage BackpressureAction = iota
	KickConnection
)

// Policy decides what happens when a target's send queue is full.
type Policy interface {
	OnBackPressure(target *core.ClientConnection) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(*core.ClientConnection) BackpressureAction {
	return p.Action
}

// ParsePolicy maps the config value to a policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "drop":
		return SimplePolicy{Action: DropMessage}, nil
	case "kick":
		return SimplePolicy{Action: KickConnection}, nil
	}
	return nil, fmt.Errorf("unknown backpressure policy %q", s)
}
