package adapter

import (
	"fmt"
	"strings"

	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
)

// State is the lifecycle state of a window adapter.
//
//	uninitialized -> handle_known -> activated -> destroyed
//	                              \-> degraded  -/
//
// Every state may move to destroyed; nothing moves backwards.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateHandleKnown   State = "handle_known"
	StateActivated     State = "activated"
	StateDegraded      State = "degraded"
	StateDestroyed     State = "destroyed"
)

// ParseState converts a string to a State.
func ParseState(s string) (State, error) {
	st := State(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch st {
	case StateUninitialized, StateHandleKnown, StateActivated, StateDegraded, StateDestroyed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown adapter state: %q", s)
	}
}

// phase holds exactly the data valid in one State. A pending snapshot only
// exists in phases without a backend, and a backend only exists together
// with a handle.
type phase interface {
	state() State
}

type uninitialized struct {
	pending             *model.TreeUpdate
	activationRequested bool
}

type handleKnown struct {
	handle              platform.NativeHandle
	pending             *model.TreeUpdate
	activationRequested bool
}

type activated struct {
	handle  platform.NativeHandle
	backend platform.Backend
}

type degraded struct {
	handle platform.NativeHandle
	cause  error
}

type destroyed struct{}

func (uninitialized) state() State { return StateUninitialized }
func (handleKnown) state() State   { return StateHandleKnown }
func (activated) state() State     { return StateActivated }
func (degraded) state() State      { return StateDegraded }
func (destroyed) state() State     { return StateDestroyed }

func handleOf(p phase) platform.NativeHandle {
	switch p := p.(type) {
	case handleKnown:
		return p.handle
	case activated:
		return p.handle
	case degraded:
		return p.handle
	default:
		return 0
	}
}

func pendingOf(p phase) *model.TreeUpdate {
	switch p := p.(type) {
	case uninitialized:
		return p.pending
	case handleKnown:
		return p.pending
	default:
		return nil
	}
}
