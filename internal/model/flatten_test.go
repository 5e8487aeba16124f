package model

import "testing"

func TestFlattenElements_Basic(t *testing.T) {
	elements := []Element{
		{ID: 1, Role: "push button", Name: "OK", Bounds: [4]int{0, 0, 100, 30}},
		{ID: 2, Role: "label", Name: "Hello", Bounds: [4]int{0, 30, 100, 20}},
	}
	result := FlattenElements(elements)
	if len(result) != 2 {
		t.Fatalf("expected 2 flat elements, got %d", len(result))
	}
	if result[0].Path != "push button" {
		t.Errorf("expected path 'push button', got %q", result[0].Path)
	}
	if result[1].Path != "label" {
		t.Errorf("expected path 'label', got %q", result[1].Path)
	}
}

func TestFlattenElements_NestedPath(t *testing.T) {
	elements := []Element{
		{
			ID: 1, Role: "frame", Name: "Main",
			Children: []Element{
				{
					ID: 2, Role: "tool bar", Name: "Nav",
					Children: []Element{
						{ID: 3, Role: "push button", Name: "Back"},
					},
				},
			},
		},
	}
	result := FlattenElements(elements)
	if len(result) != 3 {
		t.Fatalf("expected 3 flat elements, got %d", len(result))
	}
	wantPaths := []string{"frame", "frame > tool bar", "frame > tool bar > push button"}
	for i, want := range wantPaths {
		if result[i].Path != want {
			t.Errorf("element %d: expected path %q, got %q", i, want, result[i].Path)
		}
		if result[i].Depth != i {
			t.Errorf("element %d: expected depth %d, got %d", i, i, result[i].Depth)
		}
	}
}

func TestFlattenElements_NoChildren(t *testing.T) {
	result := FlattenElements(nil)
	if len(result) != 0 {
		t.Errorf("expected 0 elements for nil input, got %d", len(result))
	}
}

func TestFlattenElements_TraversalOrder(t *testing.T) {
	elements := []Element{
		{
			ID: 1, Role: "frame",
			Children: []Element{
				{
					ID: 2, Role: "panel",
					Children: []Element{
						{ID: 3, Role: "push button", Name: "A"},
					},
				},
				{ID: 4, Role: "push button", Name: "B"},
			},
		},
	}
	result := FlattenElements(elements)
	if len(result) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(result))
	}
	for i, want := range []int{1, 2, 3, 4} {
		if result[i].ID != want {
			t.Errorf("element %d: expected ID %d, got %d", i, want, result[i].ID)
		}
	}
}
