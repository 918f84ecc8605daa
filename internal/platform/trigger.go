package platform

import "fmt"

// Trigger names the signal that activates a window's backend.
type Trigger string

const (
	// TriggerWindowCreated constructs the backend as soon as the native
	// handle and a tree are available.
	TriggerWindowCreated Trigger = "window_created"
	// TriggerFocusGained constructs the backend when the window first
	// gains focus.
	TriggerFocusGained Trigger = "focus_gained"
	// TriggerAccessibilityQuery constructs the backend when the OS
	// accessibility service first asks the window for its tree.
	TriggerAccessibilityQuery Trigger = "accessibility_query"
)

// Eager reports whether the backend is constructed without waiting for an
// OS signal.
func (t Trigger) Eager() bool { return t == TriggerWindowCreated }

// Matches reports whether a window event fires this trigger.
func (t Trigger) Matches(ev WindowEvent) bool {
	switch t {
	case TriggerFocusGained:
		return ev == EventFocusGained
	case TriggerAccessibilityQuery:
		return ev == EventAccessibilityQuery
	default:
		return false
	}
}

// ParseTrigger converts a string to a Trigger.
func ParseTrigger(s string) (Trigger, error) {
	switch t := Trigger(s); t {
	case TriggerWindowCreated, TriggerFocusGained, TriggerAccessibilityQuery:
		return t, nil
	default:
		return "", fmt.Errorf("unknown activation trigger: %q", s)
	}
}
