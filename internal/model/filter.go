package model

import "strings"

// FilterResult tells a backend whether a node is exposed to assistive
// technology.
type FilterResult int

const (
	// FilterInclude exposes the node.
	FilterInclude FilterResult = iota
	// FilterExcludeNode hides the node but keeps its children, which are
	// promoted to the nearest included ancestor.
	FilterExcludeNode
	// FilterExcludeSubtree hides the node and everything below it.
	FilterExcludeSubtree
)

// Filter decides how a node is exposed. Hidden nodes drop their subtree;
// anonymous group/other nodes carry no information and are skipped.
func Filter(n Node) FilterResult {
	if n.Hidden {
		return FilterExcludeSubtree
	}
	if isEmptyGroup(n) {
		return FilterExcludeNode
	}
	return FilterInclude
}

// isEmptyGroup returns true if the node has role "group" or "other"
// and has no name, value, or description.
func isEmptyGroup(n Node) bool {
	return (n.Role == "group" || n.Role == "other") &&
		n.Name == "" && n.Value == "" && n.Description == ""
}

// FilterByRoles keeps the flat nodes whose role is in roles. Meta-roles are
// expanded first. An empty role list keeps everything.
func FilterByRoles(nodes []FlatNode, roles []string) []FlatNode {
	if len(roles) == 0 {
		return nodes
	}
	roleSet := make(map[string]bool, len(roles))
	for _, r := range ExpandRoles(roles) {
		roleSet[r] = true
	}
	var result []FlatNode
	for _, n := range nodes {
		if roleSet[n.Role] {
			result = append(result, n)
		}
	}
	return result
}

// FilterByText keeps flat nodes whose name, value, or description contains
// text (case-insensitive).
func FilterByText(nodes []FlatNode, text string) []FlatNode {
	if text == "" {
		return nodes
	}
	textLower := strings.ToLower(text)
	var result []FlatNode
	for _, n := range nodes {
		if strings.Contains(strings.ToLower(n.Name), textLower) ||
			strings.Contains(strings.ToLower(n.Value), textLower) ||
			strings.Contains(strings.ToLower(n.Description), textLower) {
			result = append(result, n)
		}
	}
	return result
}

// PruneEmptyGroupsFlat removes flat nodes that are anonymous group/other
// nodes. The path breadcrumbs of remaining nodes are not modified.
func PruneEmptyGroupsFlat(nodes []FlatNode) []FlatNode {
	var result []FlatNode
	for _, n := range nodes {
		if (n.Role == "group" || n.Role == "other") &&
			n.Name == "" && n.Value == "" && n.Description == "" {
			continue
		}
		result = append(result, n)
	}
	return result
}
