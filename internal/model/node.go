package model

import "fmt"

// NodeID identifies a node within one window's accessibility tree.
// Zero is reserved and never names a node.
type NodeID uint64

// Live is the politeness setting of a live region.
type Live string

const (
	LiveOff       Live = ""
	LivePolite    Live = "polite"
	LiveAssertive Live = "assertive"
)

// ParseLive converts a string to Live. An empty string means off.
func ParseLive(s string) (Live, error) {
	switch Live(s) {
	case LiveOff, "off":
		return LiveOff, nil
	case LivePolite:
		return LivePolite, nil
	case LiveAssertive:
		return LiveAssertive, nil
	default:
		return LiveOff, fmt.Errorf("unknown live setting: %q (expected off, polite, or assertive)", s)
	}
}

// Node is a single element of the platform-neutral accessibility tree.
type Node struct {
	ID          NodeID   `yaml:"i"            json:"i"`           // Unique within the tree
	Role        string   `yaml:"r"            json:"r"`           // Compact role code (see RoleMap)
	Name        string   `yaml:"t,omitempty"  json:"t,omitempty"` // Label / title
	Value       string   `yaml:"v,omitempty"  json:"v,omitempty"` // Current value
	Description string   `yaml:"d,omitempty"  json:"d,omitempty"` // Accessibility description
	Live        Live     `yaml:"live,omitempty" json:"live,omitempty"`
	Bounds      [4]int   `yaml:"b,flow"       json:"b"` // [x, y, width, height]
	Children    []NodeID `yaml:"c,flow,omitempty" json:"c,omitempty"`
	Actions     []Action `yaml:"a,flow,omitempty" json:"a,omitempty"`
	Disabled    bool     `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Hidden      bool     `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Selected    bool     `yaml:"s,omitempty"  json:"s,omitempty"`
}

// Supports reports whether the node advertises the given action.
func (n Node) Supports(a Action) bool {
	for _, have := range n.Actions {
		if have == a {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of n so callers can keep it past the update
// that produced it.
func (n Node) Clone() Node {
	c := n
	if n.Children != nil {
		c.Children = append([]NodeID(nil), n.Children...)
	}
	if n.Actions != nil {
		c.Actions = append([]Action(nil), n.Actions...)
	}
	return c
}
