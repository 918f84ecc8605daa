package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/accessbridge/internal/model"
)

// NativeHandle is the OS-level window reference a backend attaches to
// (HWND, NSView pointer, X11/Wayland surface id). Zero means unknown.
type NativeHandle uintptr

func (h NativeHandle) String() string {
	return fmt.Sprintf("0x%x", uintptr(h))
}

// ParseHandle parses a handle given as decimal or 0x-prefixed hex.
func ParseHandle(s string) (NativeHandle, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid native handle %q: %w", s, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("invalid native handle %q: must be non-zero", s)
	}
	return NativeHandle(v), nil
}

// WindowEvent is an OS-originated change of a native window that the
// backend may need to know about.
type WindowEvent string

const (
	EventFocusGained        WindowEvent = "focus_gained"
	EventFocusLost          WindowEvent = "focus_lost"
	EventMinimized          WindowEvent = "minimized"
	EventRestored           WindowEvent = "restored"
	EventAccessibilityQuery WindowEvent = "accessibility_query"
)

// ParseWindowEvent converts a string to a WindowEvent. Hyphens are accepted
// in place of underscores.
func ParseWindowEvent(s string) (WindowEvent, error) {
	ev := WindowEvent(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch ev {
	case EventFocusGained, EventFocusLost, EventMinimized, EventRestored, EventAccessibilityQuery:
		return ev, nil
	default:
		return "", fmt.Errorf("unknown window event: %q (expected focus_gained, focus_lost, minimized, restored, or accessibility_query)", s)
	}
}

// Notification is a single event raised towards the native accessibility
// service.
type Notification struct {
	Window   NativeHandle `yaml:"window"             json:"window"`
	Name     string       `yaml:"name"               json:"name"`
	Node     model.NodeID `yaml:"node,omitempty"     json:"node,omitempty"`
	Role     string       `yaml:"role,omitempty"     json:"role,omitempty"`
	Text     string       `yaml:"text,omitempty"     json:"text,omitempty"`
	Priority string       `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// QueuedEvents are notifications produced while a backend was updated.
// They must be raised after the caller has released any lock that an OS
// query into the backend would need.
type QueuedEvents struct {
	notifier Notifier
	events   []Notification
}

// NewQueuedEvents bundles notifications with the notifier that raises them.
func NewQueuedEvents(notifier Notifier, events []Notification) QueuedEvents {
	return QueuedEvents{notifier: notifier, events: events}
}

// Len returns the number of queued notifications.
func (q QueuedEvents) Len() int { return len(q.events) }

// Events returns the queued notifications in raise order.
func (q QueuedEvents) Events() []Notification { return q.events }

// Raise delivers all queued notifications synchronously.
func (q QueuedEvents) Raise(ctx context.Context) {
	if q.notifier == nil {
		return
	}
	for _, n := range q.events {
		q.notifier.Notify(ctx, n)
	}
}
