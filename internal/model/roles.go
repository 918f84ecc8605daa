package model

// RoleMap maps macOS AXRole values to compact role codes. The compact codes
// are the platform-neutral roles used throughout the tree model.
var RoleMap = map[string]string{
	"AXButton":      "btn",
	"AXStaticText":  "txt",
	"AXLink":        "lnk",
	"AXImage":       "img",
	"AXTextField":   "input",
	"AXTextArea":    "input",
	"AXCheckBox":    "chk",
	"AXSwitch":      "toggle",
	"AXRadioButton": "radio",
	"AXMenu":        "menu",
	"AXMenuBar":     "menu",
	"AXMenuItem":    "menuitem",
	"AXTabGroup":    "tab",
	"AXList":        "list",
	"AXTable":       "list",
	"AXRow":         "row",
	"AXCell":        "cell",
	"AXGroup":       "group",
	"AXSplitGroup":  "group",
	"AXScrollArea":  "scroll",
	"AXToolbar":     "toolbar",
	"AXWebArea":     "web",
	"AXWindow":      "window",
}

// Roles lists the compact role codes a node may carry.
var Roles = []string{
	"btn", "txt", "lnk", "img", "input", "chk", "toggle", "radio", "menu",
	"menuitem", "tab", "list", "row", "cell", "group", "scroll", "toolbar",
	"web", "window", "other",
}

// MetaRoles maps meta-role names to the concrete roles they expand to.
// "interactive" matches roles that are likely to accept user input.
var MetaRoles = map[string][]string{
	"interactive": {"btn", "lnk", "input", "chk", "toggle", "radio", "menuitem", "list"},
}

// ExpandRoles expands any meta-roles in the given list to their concrete roles.
// Non-meta roles are passed through unchanged. Duplicates are removed.
func ExpandRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	var expanded []string
	for _, r := range roles {
		if concrete, ok := MetaRoles[r]; ok {
			for _, c := range concrete {
				if !seen[c] {
					seen[c] = true
					expanded = append(expanded, c)
				}
			}
		} else if !seen[r] {
			seen[r] = true
			expanded = append(expanded, r)
		}
	}
	return expanded
}

// IsKnownRole reports whether r is one of the compact role codes.
func IsKnownRole(r string) bool {
	for _, have := range Roles {
		if have == r {
			return true
		}
	}
	return false
}
