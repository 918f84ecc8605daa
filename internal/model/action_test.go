package model

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		input   string
		want    Action
		wantErr bool
	}{
		{"click", ActionClick, false},
		{"set-value", ActionSetValue, false},
		{" Focus ", ActionFocus, false},
		{"scroll_into_view", ActionScrollIntoView, false},
		{"press", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAction(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAction(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestActionRequest_Validate(t *testing.T) {
	if err := (ActionRequest{Action: ActionClick, Target: 3}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (ActionRequest{Action: ActionClick}).Validate(); err == nil {
		t.Error("expected error for missing target")
	}
	if err := (ActionRequest{Action: ActionSetValue, Target: 3}).Validate(); err == nil {
		t.Error("expected error for set_value without data")
	}
	if err := (ActionRequest{Action: "press", Target: 3}).Validate(); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestActionRequest_String(t *testing.T) {
	r := ActionRequest{Action: ActionSetValue, Target: 4, Data: &ActionData{Value: "hi"}}
	if got := r.String(); got != `set_value(#4, "hi")` {
		t.Errorf("String() = %s", got)
	}
}

func TestParseLive(t *testing.T) {
	for _, s := range []string{"", "off", "polite", "assertive"} {
		if _, err := ParseLive(s); err != nil {
			t.Errorf("ParseLive(%q): %v", s, err)
		}
	}
	if _, err := ParseLive("loud"); err == nil {
		t.Error("expected error for unknown live setting")
	}
}
