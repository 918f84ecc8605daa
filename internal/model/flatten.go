package model

// FlatNode is a node with a path breadcrumb instead of children.
type FlatNode struct {
	ID          NodeID   `yaml:"i"             json:"i"`
	Role        string   `yaml:"r"             json:"r"`
	Name        string   `yaml:"t,omitempty"   json:"t,omitempty"`
	Value       string   `yaml:"v,omitempty"   json:"v,omitempty"`
	Description string   `yaml:"d,omitempty"   json:"d,omitempty"`
	Bounds      [4]int   `yaml:"b,flow"        json:"b"`
	Focused     bool     `yaml:"f,omitempty"   json:"f,omitempty"`
	Disabled    bool     `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Selected    bool     `yaml:"s,omitempty"   json:"s,omitempty"`
	Actions     []Action `yaml:"a,flow,omitempty" json:"a,omitempty"`
	Path        string   `yaml:"p,omitempty"   json:"p,omitempty"`
}

// Flatten converts the tree into a flat list in depth-first order. Each node
// gets a path string showing its location in the tree using role codes
// joined with " > ". Subtrees excluded by Filter are skipped.
func Flatten(t *Tree) []FlatNode {
	var result []FlatNode
	if t.Root() == 0 {
		return result
	}
	flattenRecursive(t, t.Root(), "", &result)
	return result
}

func flattenRecursive(t *Tree, id NodeID, parentPath string, result *[]FlatNode) {
	n, ok := t.Node(id)
	if !ok || Filter(n) == FilterExcludeSubtree {
		return
	}

	currentPath := n.Role
	if parentPath != "" {
		currentPath = parentPath + " > " + n.Role
	}

	*result = append(*result, FlatNode{
		ID:          n.ID,
		Role:        n.Role,
		Name:        n.Name,
		Value:       n.Value,
		Description: n.Description,
		Bounds:      n.Bounds,
		Focused:     n.ID == t.Focus(),
		Disabled:    n.Disabled,
		Selected:    n.Selected,
		Actions:     n.Actions,
		Path:        currentPath,
	})

	for _, c := range n.Children {
		flattenRecursive(t, c, currentPath, result)
	}
}
