package model

import "testing"

func TestDiffElements_NoChanges(t *testing.T) {
	elements := []FlatElement{
		{ID: 1, Role: "push button", Name: "OK", Bounds: [4]int{10, 20, 100, 30}, Path: "frame"},
	}
	if changes := DiffElements(elements, elements); len(changes) != 0 {
		t.Errorf("expected no changes, got %d", len(changes))
	}
}

func TestDiffElements_Added(t *testing.T) {
	prev := []FlatElement{
		{ID: 1, Role: "push button", Name: "OK", Path: "frame"},
	}
	curr := []FlatElement{
		{ID: 1, Role: "push button", Name: "OK", Path: "frame"},
		{ID: 2, Role: "push button", Name: "Cancel", Path: "frame"},
	}
	changes := DiffElements(prev, curr)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Type != ChangeAdded {
		t.Errorf("expected added, got %s", changes[0].Type)
	}
	if changes[0].Element.Name != "Cancel" {
		t.Errorf("expected Cancel, got %s", changes[0].Element.Name)
	}
}

func TestDiffElements_Removed(t *testing.T) {
	prev := []FlatElement{
		{ID: 1, Role: "push button", Name: "OK", Path: "frame"},
		{ID: 2, Role: "label", Name: "Loading...", Path: "frame"},
	}
	curr := []FlatElement{
		{ID: 1, Role: "push button", Name: "OK", Path: "frame"},
	}
	changes := DiffElements(prev, curr)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Type != ChangeRemoved {
		t.Errorf("expected removed, got %s", changes[0].Type)
	}
	if changes[0].ID != 2 || changes[0].Name != "Loading..." {
		t.Errorf("unexpected removed change: %+v", changes[0])
	}
}

func TestDiffElements_Changed(t *testing.T) {
	prev := []FlatElement{{ID: 1, Role: "entry", Name: "Search", Path: "frame"}}
	curr := []FlatElement{{ID: 1, Role: "entry", Name: "Search results", Path: "frame"}}
	changes := DiffElements(prev, curr)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Type != ChangeChanged {
		t.Errorf("expected changed, got %s", changes[0].Type)
	}
	if changes[0].Changes["n"][1] != "Search results" {
		t.Errorf("expected new name, got %s", changes[0].Changes["n"][1])
	}
}

func TestDiffProperties_BoundsChange(t *testing.T) {
	prev := FlatElement{ID: 1, Role: "push button", Name: "OK", Bounds: [4]int{10, 20, 100, 30}}
	curr := FlatElement{ID: 1, Role: "push button", Name: "OK", Bounds: [4]int{10, 20, 200, 30}}
	diffs := diffProperties(prev, curr)
	if diffs == nil || diffs["b"][0] == "" {
		t.Error("expected bounds diff")
	}
}

func TestDiffProperties_NoDiff(t *testing.T) {
	el := FlatElement{ID: 1, Role: "push button", Name: "OK", Bounds: [4]int{1, 2, 3, 4}}
	if diffs := diffProperties(el, el); diffs != nil {
		t.Errorf("expected nil for identical elements, got %v", diffs)
	}
}

func TestDiffElements_Empty(t *testing.T) {
	if changes := DiffElements(nil, nil); len(changes) != 0 {
		t.Errorf("expected no changes for nil inputs, got %d", len(changes))
	}
}
