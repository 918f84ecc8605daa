package model

import (
	"fmt"
	"strings"
)

// Action is an accessibility action that assistive technology may request.
type Action string

const (
	ActionClick               Action = "click"
	ActionFocus               Action = "focus"
	ActionBlur                Action = "blur"
	ActionCollapse            Action = "collapse"
	ActionExpand              Action = "expand"
	ActionCustom              Action = "custom"
	ActionDecrement           Action = "decrement"
	ActionIncrement           Action = "increment"
	ActionHideTooltip         Action = "hide_tooltip"
	ActionShowTooltip         Action = "show_tooltip"
	ActionReplaceSelectedText Action = "replace_selected_text"
	ActionScrollIntoView      Action = "scroll_into_view"
	ActionScrollUp            Action = "scroll_up"
	ActionScrollDown          Action = "scroll_down"
	ActionSetValue            Action = "set_value"
	ActionShowContextMenu     Action = "show_context_menu"
)

// Actions lists every known action in a stable order.
var Actions = []Action{
	ActionClick, ActionFocus, ActionBlur, ActionCollapse, ActionExpand,
	ActionCustom, ActionDecrement, ActionIncrement, ActionHideTooltip,
	ActionShowTooltip, ActionReplaceSelectedText, ActionScrollIntoView,
	ActionScrollUp, ActionScrollDown, ActionSetValue, ActionShowContextMenu,
}

// ParseAction converts a user-supplied action name to an Action.
// Hyphens are accepted in place of underscores ("set-value").
func ParseAction(s string) (Action, error) {
	norm := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, a := range Actions {
		if a == norm {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action: %q", s)
}

// ActionData carries action-specific arguments.
type ActionData struct {
	Value        string   `yaml:"value,omitempty"         json:"value,omitempty"`
	NumericValue *float64 `yaml:"numeric_value,omitempty" json:"numeric_value,omitempty"`
	ScrollX      int      `yaml:"scroll_x,omitempty"      json:"scroll_x,omitempty"`
	ScrollY      int      `yaml:"scroll_y,omitempty"      json:"scroll_y,omitempty"`
}

// ActionRequest is a request from assistive technology to perform an action
// on a node. It is consumed exactly once.
type ActionRequest struct {
	Action Action      `yaml:"action"         json:"action"`
	Target NodeID      `yaml:"target"         json:"target"`
	Data   *ActionData `yaml:"data,omitempty" json:"data,omitempty"`
}

func (r ActionRequest) String() string {
	if r.Data != nil && r.Data.Value != "" {
		return fmt.Sprintf("%s(#%d, %q)", r.Action, r.Target, r.Data.Value)
	}
	return fmt.Sprintf("%s(#%d)", r.Action, r.Target)
}

// Validate checks that the request names a known action and a target.
func (r ActionRequest) Validate() error {
	if _, err := ParseAction(string(r.Action)); err != nil {
		return err
	}
	if r.Target == 0 {
		return fmt.Errorf("action %s: target node is required", r.Action)
	}
	switch r.Action {
	case ActionSetValue, ActionReplaceSelectedText:
		if r.Data == nil {
			return fmt.Errorf("action %s: data is required", r.Action)
		}
	}
	return nil
}
