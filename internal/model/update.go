package model

import (
	"errors"
	"fmt"
)

// ErrInvalidUpdate is returned when a tree update cannot be applied.
var ErrInvalidUpdate = errors.New("invalid tree update")

// TreeUpdate is a full or incremental snapshot of a window's accessibility
// tree. Nodes lists every node that is new or changed; Root is set on the
// first update (and whenever the root changes); Focus names the node that
// has keyboard focus within the window. Updates are treated as immutable
// once produced.
type TreeUpdate struct {
	Nodes []Node `yaml:"nodes"           json:"nodes"`
	Root  NodeID `yaml:"root,omitempty"  json:"root,omitempty"`
	Focus NodeID `yaml:"focus,omitempty" json:"focus,omitempty"`
}

// IsFull reports whether the update carries a root and can therefore seed
// an empty tree.
func (u TreeUpdate) IsFull() bool {
	return u.Root != 0
}

// Validate performs the checks that do not need the current tree state.
func (u TreeUpdate) Validate() error {
	seen := make(map[NodeID]bool, len(u.Nodes))
	for _, n := range u.Nodes {
		if n.ID == 0 {
			return fmt.Errorf("%w: node id 0 is reserved", ErrInvalidUpdate)
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: node %d listed twice", ErrInvalidUpdate, n.ID)
		}
		seen[n.ID] = true
		for _, c := range n.Children {
			if c == n.ID {
				return fmt.Errorf("%w: node %d lists itself as a child", ErrInvalidUpdate, n.ID)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the update.
func (u TreeUpdate) Clone() TreeUpdate {
	c := TreeUpdate{Root: u.Root, Focus: u.Focus}
	if u.Nodes != nil {
		c.Nodes = make([]Node, len(u.Nodes))
		for i, n := range u.Nodes {
			c.Nodes[i] = n.Clone()
		}
	}
	return c
}
