package darwin

import (
	"testing"

	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform/mirror"
)

func TestTranslator_Roles(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{"btn", "AXButton"},
		{"input", "AXTextField"},
		{"list", "AXList"},
		{"menu", "AXMenu"},
		{"group", "AXGroup"},
		{"window", "AXWindow"},
		{"other", "AXUnknown"},
	}
	for _, tt := range tests {
		if got := (Translator{}).Role(tt.role); got != tt.want {
			t.Errorf("Role(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestTranslator_RolesRoundTrip(t *testing.T) {
	for ax, short := range model.RoleMap {
		back := (Translator{}).Role(short)
		if model.RoleMap[back] != short {
			t.Errorf("%s -> %s -> %s does not map back", ax, short, back)
		}
	}
}

func TestTranslator_Names(t *testing.T) {
	tr := Translator{}
	if got := tr.Name(mirror.SignalValueChanged); got != "AXValueChanged" {
		t.Errorf("value changed = %q", got)
	}
	if got := tr.Name(mirror.SignalSelectionChanged); got != "AXSelectedChildrenChanged" {
		t.Errorf("selection changed = %q", got)
	}
	if got := tr.Name(mirror.SignalWindowUnfocused); got != "" {
		t.Errorf("window unfocused should be dropped, got %q", got)
	}
}

func TestTranslator_Priority(t *testing.T) {
	tr := Translator{}
	if tr.Priority(model.LiveAssertive) != PriorityHigh {
		t.Error("assertive should be high priority")
	}
	if tr.Priority(model.LivePolite) != PriorityMedium {
		t.Error("polite should be medium priority")
	}
}
