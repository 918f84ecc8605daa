package model

import (
	"fmt"
	"sort"
)

// Tree is the applied state of a sequence of TreeUpdates. The zero value is
// an empty tree waiting for its first full update. Tree is not safe for
// concurrent use; callers provide their own locking.
type Tree struct {
	nodes map[NodeID]Node
	root  NodeID
	focus NodeID
}

// Root returns the root node id, or 0 for an empty tree.
func (t *Tree) Root() NodeID { return t.root }

// Focus returns the focused node id, or 0 for an empty tree.
func (t *Tree) Focus() NodeID { return t.focus }

// Len returns the number of nodes reachable from the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Walk visits every node in depth-first order starting at the root.
// Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	if t.root == 0 {
		return
	}
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		n, ok := t.nodes[id]
		if !ok {
			return
		}
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(t.root, 0)
}

// Snapshot returns a full update that recreates the current tree.
func (t *Tree) Snapshot() TreeUpdate {
	u := TreeUpdate{Root: t.root, Focus: t.focus}
	t.Walk(func(n Node, _ int) bool {
		u.Nodes = append(u.Nodes, n.Clone())
		return true
	})
	return u
}

// Apply merges an update into the tree and returns the resulting changes.
// The tree is left untouched when the update is rejected.
func (t *Tree) Apply(u TreeUpdate) ([]Change, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if t.root == 0 && u.Root == 0 {
		return nil, fmt.Errorf("%w: first update must set the root", ErrInvalidUpdate)
	}

	merged := make(map[NodeID]Node, len(t.nodes)+len(u.Nodes))
	for id, n := range t.nodes {
		merged[id] = n
	}
	for _, n := range u.Nodes {
		merged[n.ID] = n.Clone()
	}

	root := t.root
	if u.Root != 0 {
		root = u.Root
	}
	if _, ok := merged[root]; !ok {
		return nil, fmt.Errorf("%w: root %d is not in the tree", ErrInvalidUpdate, root)
	}

	// Keep only what is reachable from the root; each node needs exactly
	// one parent.
	reachable := make(map[NodeID]Node, len(merged))
	order := make([]NodeID, 0, len(merged))
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := merged[id]
		reachable[id] = n
		order = append(order, id)
		for i := len(n.Children) - 1; i >= 0; i-- {
			c := n.Children[i]
			if _, ok := merged[c]; !ok {
				return nil, fmt.Errorf("%w: node %d references unknown child %d", ErrInvalidUpdate, id, c)
			}
			if _, dup := reachable[c]; dup || containsID(stack, c) {
				return nil, fmt.Errorf("%w: node %d is reachable more than once", ErrInvalidUpdate, c)
			}
			stack = append(stack, c)
		}
	}

	focus := t.focus
	if u.Focus != 0 {
		if _, ok := reachable[u.Focus]; !ok {
			return nil, fmt.Errorf("%w: focus %d is not in the tree", ErrInvalidUpdate, u.Focus)
		}
		focus = u.Focus
	}
	if _, ok := reachable[focus]; !ok {
		focus = root
	}

	changes := diffTrees(t.nodes, reachable, order)
	if focus != t.focus {
		changes = append(changes, Change{Type: ChangeFocusMoved, ID: focus, From: t.focus})
	}

	t.nodes = reachable
	t.root = root
	t.focus = focus
	return changes, nil
}

func containsID(ids []NodeID, id NodeID) bool {
	for _, have := range ids {
		if have == id {
			return true
		}
	}
	return false
}

// diffTrees compares the previous node set against the new one. Added and
// changed nodes follow the new tree's depth-first order; removed nodes are
// listed last, sorted by id.
func diffTrees(prev, curr map[NodeID]Node, order []NodeID) []Change {
	var changes []Change
	for _, id := range order {
		n := curr[id]
		old, existed := prev[id]
		if !existed {
			nodeCopy := n
			changes = append(changes, Change{Type: ChangeAdded, ID: id, Node: &nodeCopy})
			continue
		}
		if diffs := diffProperties(old, n); len(diffs) > 0 {
			nodeCopy, oldCopy := n, old
			changes = append(changes, Change{Type: ChangeChanged, ID: id, Node: &nodeCopy, Old: &oldCopy, Changes: diffs})
		}
	}

	var removed []NodeID
	for id := range prev {
		if _, ok := curr[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	for _, id := range removed {
		oldCopy := prev[id]
		changes = append(changes, Change{Type: ChangeRemoved, ID: id, Old: &oldCopy})
	}
	return changes
}
