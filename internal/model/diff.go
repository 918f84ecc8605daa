package model

import (
	"fmt"
	"strings"
)

// ChangeType represents the kind of tree change detected.
type ChangeType string

const (
	ChangeAdded      ChangeType = "added"
	ChangeRemoved    ChangeType = "removed"
	ChangeChanged    ChangeType = "changed"
	ChangeFocusMoved ChangeType = "focus_moved"
)

// Change is a single difference produced by Tree.Apply.
type Change struct {
	Type    ChangeType           `yaml:"type"              json:"type"`
	ID      NodeID               `yaml:"id"                json:"id"`
	Node    *Node                `yaml:"node,omitempty"    json:"node,omitempty"`    // For added/changed: the new node
	Old     *Node                `yaml:"old,omitempty"     json:"old,omitempty"`     // For changed/removed: the previous node
	From    NodeID               `yaml:"from,omitempty"    json:"from,omitempty"`    // For focus_moved: previous focus
	Changes map[string][2]string `yaml:"changes,omitempty" json:"changes,omitempty"` // For changed: field diffs
}

// Changed reports whether the given field key is part of a changed entry.
func (c Change) Changed(field string) bool {
	_, ok := c.Changes[field]
	return ok
}

// diffProperties compares two versions of a node and returns changed fields,
// keyed by the node's short yaml field names.
func diffProperties(prev, curr Node) map[string][2]string {
	diffs := make(map[string][2]string)

	if prev.Name != curr.Name {
		diffs["t"] = [2]string{prev.Name, curr.Name}
	}
	if prev.Value != curr.Value {
		diffs["v"] = [2]string{prev.Value, curr.Value}
	}
	if prev.Role != curr.Role {
		diffs["r"] = [2]string{prev.Role, curr.Role}
	}
	if prev.Description != curr.Description {
		diffs["d"] = [2]string{prev.Description, curr.Description}
	}
	if prev.Live != curr.Live {
		diffs["live"] = [2]string{string(prev.Live), string(curr.Live)}
	}
	if prev.Bounds != curr.Bounds {
		diffs["b"] = [2]string{
			fmt.Sprintf("%v", prev.Bounds),
			fmt.Sprintf("%v", curr.Bounds),
		}
	}
	if prev.Selected != curr.Selected {
		diffs["s"] = [2]string{
			fmt.Sprintf("%v", prev.Selected),
			fmt.Sprintf("%v", curr.Selected),
		}
	}
	if prev.Disabled != curr.Disabled {
		diffs["disabled"] = [2]string{
			fmt.Sprintf("%v", prev.Disabled),
			fmt.Sprintf("%v", curr.Disabled),
		}
	}
	if prev.Hidden != curr.Hidden {
		diffs["hidden"] = [2]string{
			fmt.Sprintf("%v", prev.Hidden),
			fmt.Sprintf("%v", curr.Hidden),
		}
	}
	if a, b := joinIDs(prev.Children), joinIDs(curr.Children); a != b {
		diffs["c"] = [2]string{a, b}
	}
	if a, b := joinActions(prev.Actions), joinActions(curr.Actions); a != b {
		diffs["a"] = [2]string{a, b}
	}

	if len(diffs) == 0 {
		return nil
	}
	return diffs
}

func joinIDs(ids []NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

func joinActions(actions []Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}
