package unix

import (
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform/mirror"
)

var signals = map[mirror.Signal]string{
	mirror.SignalNodeCreated:      "object:children-changed:add",
	mirror.SignalNodeDestroyed:    "object:children-changed:remove",
	mirror.SignalChildrenChanged:  "object:visible-data-changed",
	mirror.SignalNameChanged:      "object:property-change:accessible-name",
	mirror.SignalValueChanged:     "object:property-change:accessible-value",
	mirror.SignalSelectionChanged: "object:state-changed:selected",
	mirror.SignalFocusChanged:     "object:state-changed:focused",
	mirror.SignalAnnouncement:     "object:announcement",
	mirror.SignalWindowFocused:    "window:activate",
	mirror.SignalWindowUnfocused:  "window:deactivate",
	mirror.SignalWindowMinimized:  "window:minimize",
	mirror.SignalWindowRestored:   "window:restore",
}

var roles = map[string]string{
	"btn":      "push button",
	"txt":      "label",
	"lnk":      "link",
	"img":      "image",
	"input":    "entry",
	"chk":      "check box",
	"toggle":   "toggle button",
	"radio":    "radio button",
	"menu":     "menu",
	"menuitem": "menu item",
	"tab":      "page tab list",
	"list":     "list",
	"row":      "table row",
	"cell":     "table cell",
	"group":    "panel",
	"scroll":   "scroll pane",
	"toolbar":  "tool bar",
	"web":      "document web",
	"window":   "frame",
}

// Translator implements mirror.Translator for AT-SPI.
type Translator struct{}

var _ mirror.Translator = Translator{}

// Name implements mirror.Translator.
func (Translator) Name(s mirror.Signal) string { return signals[s] }

// Role implements mirror.Translator.
func (Translator) Role(role string) string {
	if r, ok := roles[role]; ok {
		return r
	}
	return "unknown"
}

// Priority implements mirror.Translator. The values are AT-SPI politeness
// levels.
func (Translator) Priority(live model.Live) string {
	if live == model.LiveAssertive {
		return "assertive"
	}
	return "polite"
}
