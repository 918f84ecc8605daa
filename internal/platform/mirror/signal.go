package mirror

import "github.com/mj1618/accessbridge/internal/model"

// Signal is a platform-neutral notification kind.
type Signal string

const (
	SignalNodeCreated      Signal = "node_created"
	SignalNodeDestroyed    Signal = "node_destroyed"
	SignalNameChanged      Signal = "name_changed"
	SignalValueChanged     Signal = "value_changed"
	SignalSelectionChanged Signal = "selection_changed"
	SignalChildrenChanged  Signal = "children_changed"
	SignalFocusChanged     Signal = "focus_changed"
	SignalAnnouncement     Signal = "announcement"
	SignalWindowFocused    Signal = "window_focused"
	SignalWindowUnfocused  Signal = "window_unfocused"
	SignalWindowMinimized  Signal = "window_minimized"
	SignalWindowRestored   Signal = "window_restored"
)

// Translator maps platform-neutral signals and roles to native names.
type Translator interface {
	// Name returns the native notification name for a signal, or "" when
	// the platform has no equivalent and the signal is dropped.
	Name(s Signal) string
	// Role returns the native role for a compact role code.
	Role(role string) string
	// Priority returns the native announcement priority for a live setting.
	Priority(live model.Live) string
}

// Neutral is a Translator that keeps the platform-neutral names: signals
// are reported by their own name, roles by their compact code.
type Neutral struct{}

var _ Translator = Neutral{}

// Name implements Translator.
func (Neutral) Name(s Signal) string { return string(s) }

// Role implements Translator.
func (Neutral) Role(role string) string { return role }

// Priority implements Translator.
func (Neutral) Priority(live model.Live) string { return string(live) }
