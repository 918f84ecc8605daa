package router

import (
	"fmt"
	"strings"

	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
)

// Kind is the kind of a windowing toolkit event.
type Kind string

const (
	KindWindowCreated      Kind = "window_created"
	KindHandleAvailable    Kind = "handle_available"
	KindFocusGained        Kind = Kind(platform.EventFocusGained)
	KindFocusLost          Kind = Kind(platform.EventFocusLost)
	KindMinimized          Kind = Kind(platform.EventMinimized)
	KindRestored           Kind = Kind(platform.EventRestored)
	KindAccessibilityQuery Kind = Kind(platform.EventAccessibilityQuery)
	KindActionRequest      Kind = "action_request"
	KindWindowDestroyed    Kind = "window_destroyed"
	KindOther              Kind = "other"
)

// Kinds lists every event kind.
var Kinds = []Kind{
	KindWindowCreated, KindHandleAvailable, KindFocusGained, KindFocusLost,
	KindMinimized, KindRestored, KindAccessibilityQuery, KindActionRequest,
	KindWindowDestroyed, KindOther,
}

// ParseKind converts a string to a Kind. Hyphens are accepted in place of
// underscores.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, have := range Kinds {
		if have == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown event kind: %q", s)
}

// windowEvent returns the platform window event of a window-state kind.
func (k Kind) windowEvent() (platform.WindowEvent, bool) {
	ev, err := platform.ParseWindowEvent(string(k))
	return ev, err == nil
}

// Event is one windowing toolkit event as seen by the router.
type Event struct {
	Window adapter.WindowID
	Kind   Kind
	// Handle is set on window_created and handle_available events.
	Handle platform.NativeHandle
	// Action is set on action_request events.
	Action *model.ActionRequest
	// Payload is the toolkit's own event value, passed through untouched.
	Payload any
}

func (ev Event) String() string {
	switch {
	case ev.Handle != 0:
		return fmt.Sprintf("%s %s(%s)", ev.Window, ev.Kind, ev.Handle)
	case ev.Action != nil:
		return fmt.Sprintf("%s %s(%s)", ev.Window, ev.Kind, ev.Action)
	default:
		return fmt.Sprintf("%s %s", ev.Window, ev.Kind)
	}
}

// Class is how an event relates to accessibility.
type Class int

const (
	// ClassIrrelevant events never touch an adapter.
	ClassIrrelevant Class = iota
	// ClassLifecycle events create, attach or destroy a window.
	ClassLifecycle
	// ClassWindowState events are forwarded to a live backend.
	ClassWindowState
	// ClassActivation events fire the compiled-in activation trigger.
	ClassActivation
	// ClassAction events carry an action request.
	ClassAction
)

func (c Class) String() string {
	switch c {
	case ClassIrrelevant:
		return "irrelevant"
	case ClassLifecycle:
		return "lifecycle"
	case ClassWindowState:
		return "window_state"
	case ClassActivation:
		return "activation"
	case ClassAction:
		return "action"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}
