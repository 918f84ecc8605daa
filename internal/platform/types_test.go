package platform

import (
	"context"
	"testing"
)

func TestParseHandle(t *testing.T) {
	tests := []struct {
		input   string
		want    NativeHandle
		wantErr bool
	}{
		{"0x1a2b", 0x1a2b, false},
		{"4096", 4096, false},
		{" 0x10 ", 0x10, false},
		{"0", 0, true},
		{"", 0, true},
		{"window", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHandle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHandle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHandle(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNativeHandle_String(t *testing.T) {
	if got := NativeHandle(0xbeef).String(); got != "0xbeef" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseWindowEvent(t *testing.T) {
	for _, s := range []string{"focus_gained", "focus-lost", "Minimized", "restored", "accessibility-query"} {
		if _, err := ParseWindowEvent(s); err != nil {
			t.Errorf("ParseWindowEvent(%q): %v", s, err)
		}
	}
	if _, err := ParseWindowEvent("resized"); err == nil {
		t.Error("expected error for unknown event")
	}
}

func TestTrigger_Matches(t *testing.T) {
	tests := []struct {
		trigger Trigger
		ev      WindowEvent
		want    bool
	}{
		{TriggerAccessibilityQuery, EventAccessibilityQuery, true},
		{TriggerAccessibilityQuery, EventFocusGained, false},
		{TriggerFocusGained, EventFocusGained, true},
		{TriggerWindowCreated, EventFocusGained, false},
		{TriggerWindowCreated, EventAccessibilityQuery, false},
	}
	for _, tt := range tests {
		if got := tt.trigger.Matches(tt.ev); got != tt.want {
			t.Errorf("%s.Matches(%s) = %v, want %v", tt.trigger, tt.ev, got, tt.want)
		}
	}
	if !TriggerWindowCreated.Eager() || TriggerFocusGained.Eager() {
		t.Error("only window_created is eager")
	}
}

func TestActivationTrigger_IsValid(t *testing.T) {
	if _, err := ParseTrigger(string(ActivationTrigger)); err != nil {
		t.Errorf("compiled-in trigger is invalid: %v", err)
	}
	if Family == "" {
		t.Error("Family must be set by a build-tagged file")
	}
}

func TestQueuedEvents_Raise(t *testing.T) {
	ctx := context.Background()
	var rec Recorder
	q := NewQueuedEvents(&rec, []Notification{{Name: "a"}, {Name: "b"}})
	if q.Len() != 2 {
		t.Fatalf("Len() = %d", q.Len())
	}
	q.Raise(ctx)
	got := rec.Drain(ctx)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Errorf("unexpected raised events: %+v", got)
	}
	if len(rec.Events(ctx)) != 0 {
		t.Error("Drain should empty the recorder")
	}

	// A zero value has no notifier and must not panic.
	QueuedEvents{}.Raise(ctx)
}
