package model

import "testing"

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want FilterResult
	}{
		{"button", Node{Role: "btn", Name: "OK"}, FilterInclude},
		{"hidden", Node{Role: "btn", Name: "OK", Hidden: true}, FilterExcludeSubtree},
		{"empty group", Node{Role: "group"}, FilterExcludeNode},
		{"named group", Node{Role: "group", Name: "Toolbar"}, FilterInclude},
		{"empty other", Node{Role: "other"}, FilterExcludeNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filter(tt.node); got != tt.want {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterByRoles(t *testing.T) {
	nodes := []FlatNode{
		{ID: 1, Role: "btn", Name: "OK"},
		{ID: 2, Role: "txt", Name: "Hello"},
		{ID: 3, Role: "input", Name: "Search"},
	}
	got := FilterByRoles(nodes, []string{"interactive"})
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("unexpected filter result: %+v", got)
	}
	if len(FilterByRoles(nodes, nil)) != 3 {
		t.Error("empty role list should keep everything")
	}
}

func TestFilterByText(t *testing.T) {
	nodes := []FlatNode{
		{ID: 1, Role: "btn", Name: "Submit"},
		{ID: 2, Role: "input", Value: "submitted value"},
		{ID: 3, Role: "txt", Description: "unrelated"},
	}
	got := FilterByText(nodes, "SUBMIT")
	if len(got) != 2 {
		t.Errorf("expected 2 matches, got %d", len(got))
	}
}

func TestPruneEmptyGroupsFlat(t *testing.T) {
	nodes := []FlatNode{
		{ID: 1, Role: "group"},
		{ID: 2, Role: "group", Name: "Named"},
		{ID: 3, Role: "btn"},
	}
	got := PruneEmptyGroupsFlat(nodes)
	if len(got) != 2 || got[0].ID != 2 {
		t.Errorf("unexpected prune result: %+v", got)
	}
}
