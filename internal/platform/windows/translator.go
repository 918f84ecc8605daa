package windows

import (
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform/mirror"
)

const (
	propertyChanged  = "UIA_AutomationPropertyChangedEventId:"
	structureChanged = "UIA_StructureChangedEventId:"
)

var events = map[mirror.Signal]string{
	mirror.SignalNodeCreated:      structureChanged + "ChildAdded",
	mirror.SignalNodeDestroyed:    structureChanged + "ChildRemoved",
	mirror.SignalChildrenChanged:  structureChanged + "ChildrenReordered",
	mirror.SignalNameChanged:      propertyChanged + "UIA_NamePropertyId",
	mirror.SignalValueChanged:     propertyChanged + "UIA_ValueValuePropertyId",
	mirror.SignalSelectionChanged: "UIA_SelectionItem_ElementSelectedEventId",
	mirror.SignalFocusChanged:     "UIA_AutomationFocusChangedEventId",
	mirror.SignalAnnouncement:     "UIA_LiveRegionChangedEventId",
	mirror.SignalWindowMinimized:  propertyChanged + "UIA_WindowWindowVisualStatePropertyId",
	mirror.SignalWindowRestored:   propertyChanged + "UIA_WindowWindowVisualStatePropertyId",
	// Window focus is reported through the focused element's
	// UIA_AutomationFocusChangedEventId.
}

var controlTypes = map[string]string{
	"btn":      "UIA_ButtonControlTypeId",
	"txt":      "UIA_TextControlTypeId",
	"lnk":      "UIA_HyperlinkControlTypeId",
	"img":      "UIA_ImageControlTypeId",
	"input":    "UIA_EditControlTypeId",
	"chk":      "UIA_CheckBoxControlTypeId",
	"toggle":   "UIA_ButtonControlTypeId",
	"radio":    "UIA_RadioButtonControlTypeId",
	"menu":     "UIA_MenuControlTypeId",
	"menuitem": "UIA_MenuItemControlTypeId",
	"tab":      "UIA_TabControlTypeId",
	"list":     "UIA_ListControlTypeId",
	"row":      "UIA_DataItemControlTypeId",
	"cell":     "UIA_DataItemControlTypeId",
	"group":    "UIA_GroupControlTypeId",
	"scroll":   "UIA_PaneControlTypeId",
	"toolbar":  "UIA_ToolBarControlTypeId",
	"web":      "UIA_DocumentControlTypeId",
	"window":   "UIA_WindowControlTypeId",
}

// Translator implements mirror.Translator for UI Automation.
type Translator struct{}

var _ mirror.Translator = Translator{}

// Name implements mirror.Translator.
func (Translator) Name(s mirror.Signal) string { return events[s] }

// Role implements mirror.Translator.
func (Translator) Role(role string) string {
	if ct, ok := controlTypes[role]; ok {
		return ct
	}
	return "UIA_CustomControlTypeId"
}

// Priority implements mirror.Translator. The values are UIA LiveSetting names.
func (Translator) Priority(live model.Live) string {
	if live == model.LiveAssertive {
		return "Assertive"
	}
	return "Polite"
}
