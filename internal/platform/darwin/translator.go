package darwin

import (
	"sort"

	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform/mirror"
)

// Announcement priorities as accepted by NSAccessibilityPriorityKey.
const (
	PriorityHigh   = "NSAccessibilityPriorityHigh"
	PriorityMedium = "NSAccessibilityPriorityMedium"
)

var notifications = map[mirror.Signal]string{
	mirror.SignalNodeCreated:      "AXCreated",
	mirror.SignalNodeDestroyed:    "AXUIElementDestroyed",
	mirror.SignalNameChanged:      "AXTitleChanged",
	mirror.SignalValueChanged:     "AXValueChanged",
	mirror.SignalSelectionChanged: "AXSelectedChildrenChanged",
	mirror.SignalChildrenChanged:  "AXLayoutChanged",
	mirror.SignalFocusChanged:     "AXFocusedUIElementChanged",
	mirror.SignalAnnouncement:     "AXAnnouncementRequested",
	mirror.SignalWindowFocused:    "AXFocusedWindowChanged",
	mirror.SignalWindowMinimized:  "AXWindowMiniaturized",
	mirror.SignalWindowRestored:   "AXWindowDeminiaturized",
	// AppKit has no "window lost focus" notification; the next
	// AXFocusedWindowChanged covers it.
}

// preferredAX picks the AX role for compact codes that several AX roles
// collapse into.
var preferredAX = map[string]string{
	"input": "AXTextField",
	"menu":  "AXMenu",
	"list":  "AXList",
	"group": "AXGroup",
}

// axRoles is the inverse of model.RoleMap.
var axRoles = func() map[string]string {
	keys := make([]string, 0, len(model.RoleMap))
	for ax := range model.RoleMap {
		keys = append(keys, ax)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(keys))
	for _, ax := range keys {
		short := model.RoleMap[ax]
		if _, ok := out[short]; !ok {
			out[short] = ax
		}
	}
	for short, ax := range preferredAX {
		out[short] = ax
	}
	return out
}()

// Translator implements mirror.Translator for NSAccessibility.
type Translator struct{}

var _ mirror.Translator = Translator{}

// Name implements mirror.Translator.
func (Translator) Name(s mirror.Signal) string { return notifications[s] }

// Role implements mirror.Translator.
func (Translator) Role(role string) string {
	if ax, ok := axRoles[role]; ok {
		return ax
	}
	return "AXUnknown"
}

// Priority implements mirror.Translator.
func (Translator) Priority(live model.Live) string {
	if live == model.LiveAssertive {
		return PriorityHigh
	}
	return PriorityMedium
}
