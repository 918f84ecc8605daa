package output

import (
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
)

// WindowInfo describes one adapter as listed by `replay` and the `windows`
// MCP tool.
type WindowInfo struct {
	ID       uint64 `yaml:"id"                 json:"id"`
	State    string `yaml:"state"              json:"state"`
	Handle   uint64 `yaml:"handle,omitempty"   json:"handle,omitempty"`
	Pending  bool   `yaml:"pending,omitempty"  json:"pending,omitempty"`
	Backend  bool   `yaml:"backend,omitempty"  json:"backend,omitempty"`
	Degraded string `yaml:"degraded,omitempty" json:"degraded,omitempty"`
}

// StepResult is the outcome of one replay step.
type StepResult struct {
	Step          int                     `yaml:"step"                    json:"step"`
	Op            string                  `yaml:"op"                      json:"op"`
	Window        uint64                  `yaml:"window,omitempty"        json:"window,omitempty"`
	State         string                  `yaml:"state,omitempty"         json:"state,omitempty"`
	Forwarded     bool                    `yaml:"forwarded,omitempty"     json:"forwarded,omitempty"`
	Error         string                  `yaml:"error,omitempty"         json:"error,omitempty"`
	Notifications []platform.Notification `yaml:"notifications,omitempty" json:"notifications,omitempty"`
	Tree          []model.FlatNode        `yaml:"tree,omitempty"          json:"tree,omitempty"`
}

// ReplayResult is the top-level output of the `replay` command.
type ReplayResult struct {
	OK      bool         `yaml:"ok"                json:"ok"`
	TS      int64        `yaml:"ts"                json:"ts"`
	Failed  int          `yaml:"failed,omitempty"  json:"failed,omitempty"`
	Steps   []StepResult `yaml:"steps"             json:"steps"`
	Windows []WindowInfo `yaml:"windows,omitempty" json:"windows,omitempty"`
}

// ActionInfo is an action request received from assistive technology.
type ActionInfo struct {
	Window  uint64              `yaml:"window"  json:"window"`
	Request model.ActionRequest `yaml:"request" json:"request"`
	TS      int64               `yaml:"ts"      json:"ts"`
}

// PlatformInfo is the output of the `platform` command.
type PlatformInfo struct {
	OS        string `yaml:"os"              json:"os"`
	Arch      string `yaml:"arch"            json:"arch"`
	Trigger   string `yaml:"trigger"         json:"trigger"`
	Eager     bool   `yaml:"eager"           json:"eager"`
	Available bool   `yaml:"available"       json:"available"`
	Error     string `yaml:"error,omitempty" json:"error,omitempty"`
}
