package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
)

// staticRoles are roles that display content but do not take input.
var staticRoles = map[string]bool{
	"txt": true, "img": true, "group": true, "other": true, "window": true,
	"scroll": true, "toolbar": true, "web": true, "row": true, "cell": true,
}

// ResolveTarget fills in req.Target from a text match over the window's
// exposed nodes when no target id was given.
func (s *Session) ResolveTarget(ctx context.Context, window adapter.WindowID, req *model.ActionRequest, text, roles string, exact bool) error {
	if req.Target != 0 {
		return nil
	}
	if text == "" {
		return fmt.Errorf("specify target or text to pick a node")
	}
	nodes, err := s.Tree(ctx, window)
	if err != nil {
		return err
	}
	node, err := resolveNodeByText(nodes, text, roles, exact)
	if err != nil {
		return err
	}
	logger.Debugf(ctx, "%q resolved to node %d (%s)", text, node.ID, node.Path)
	req.Target = node.ID
	return nil
}

// resolveNodeByText finds a single node matching text (and the optional
// comma-separated role filter). Returns an error listing the candidates if
// zero or several nodes match.
func resolveNodeByText(nodes []model.FlatNode, text, roles string, exact bool) (model.FlatNode, error) {
	if roles != "" {
		nodes = model.FilterByRoles(nodes, strings.Split(roles, ","))
	}
	textLower := strings.ToLower(text)
	var matches []model.FlatNode
	for _, n := range nodes {
		if textMatchesNode(n, textLower, exact) {
			matches = append(matches, n)
		}
	}
	matches = preferInteractiveNodes(matches)

	switch len(matches) {
	case 0:
		return model.FlatNode{}, fmt.Errorf("no node found matching %q", text)
	case 1:
		return matches[0], nil
	default:
		var candidates []string
		for _, m := range matches {
			candidates = append(candidates, fmt.Sprintf("  id=%d role=%s name=%q path=%q", m.ID, m.Role, m.Name, m.Path))
		}
		return model.FlatNode{}, fmt.Errorf("%d nodes match %q; use target or roles to pick one:\n%s",
			len(matches), text, strings.Join(candidates, "\n"))
	}
}

func textMatchesNode(n model.FlatNode, textLower string, exact bool) bool {
	if exact {
		return exactFieldMatch(n.Name, textLower) ||
			exactFieldMatch(n.Value, textLower) ||
			exactFieldMatch(n.Description, textLower)
	}
	return strings.Contains(strings.ToLower(n.Name), textLower) ||
		strings.Contains(strings.ToLower(n.Value), textLower) ||
		strings.Contains(strings.ToLower(n.Description), textLower)
}

// exactFieldMatch returns true if field matches text case-insensitively,
// either directly or after stripping a trailing parenthetical suffix like " (⌘Enter)".
func exactFieldMatch(field, textLower string) bool {
	if strings.EqualFold(field, textLower) {
		return true
	}
	if idx := strings.LastIndex(field, "("); idx > 0 && strings.HasSuffix(strings.TrimRight(field, "\u202c"), ")") {
		stripped := strings.TrimRight(field[:idx], " \u202a")
		return strings.EqualFold(stripped, textLower)
	}
	return false
}

// preferInteractiveNodes keeps the interactive matches when the match set
// mixes interactive and static roles.
func preferInteractiveNodes(matches []model.FlatNode) []model.FlatNode {
	var interactive []model.FlatNode
	for _, m := range matches {
		if !staticRoles[m.Role] {
			interactive = append(interactive, m)
		}
	}
	if len(interactive) > 0 && len(interactive) < len(matches) {
		return interactive
	}
	return matches
}
