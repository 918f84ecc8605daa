package teabridge

import (
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
)

// AccessibilityQueryMsg reports that the OS accessibility service asked the
// window for its tree.
type AccessibilityQueryMsg struct{}

// WindowEventMsg reports a change of the native window that bubbletea has no
// message for.
type WindowEventMsg struct {
	Event platform.WindowEvent
}

// WindowClosedMsg reports that the window is going away.
type WindowClosedMsg struct{}

// ActionRequestMsg carries an action request from the accessibility backend
// to the inner model.
type ActionRequestMsg struct {
	Window  adapter.WindowID
	Request model.ActionRequest
}

// TreeProvider is implemented by inner models that expose an accessibility
// tree. AccessibilityTree must return a full tree (Root set).
type TreeProvider interface {
	AccessibilityTree() model.TreeUpdate
}
