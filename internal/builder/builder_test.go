package builder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/platform/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(x, y, w, h int) *model.Rect {
	return &model.Rect{X: x, Y: y, Width: w, Height: h}
}

func newClient(t *testing.T, windows ...fixture.Object) (*fixture.Client, model.Identity) {
	t.Helper()
	c, err := fixture.New(&fixture.Document{Apps: []fixture.App{{Name: "app", Windows: windows}}})
	require.NoError(t, err)
	roots, err := c.ListRoots(context.Background())
	require.NoError(t, err)
	return c, roots[0].ID
}

func flatNames(tree *model.Tree) []string {
	var names []string
	tree.Walk(func(n *model.Node, _ int) { names = append(names, n.Name) })
	return names
}

func rootChildCount(tree *model.Tree) int {
	n := 0
	tree.Read(func(root *model.Node) {
		if root != nil {
			n = len(root.Children())
		}
	})
	return n
}

func TestBuild_PreorderAndGeometry(t *testing.T) {
	c, root := newClient(t, fixture.Object{
		Name: "win", Role: "frame", Extents: rect(0, 0, 100, 100),
		Children: []fixture.Object{
			{Name: "A", Role: "panel", Extents: rect(0, 0, 50, 50), Children: []fixture.Object{
				{Name: "A1", Role: "push button", Extents: rect(5, 5, 10, 10)},
			}},
			{Name: "B", Role: "filler"},
		},
	})

	tree := model.NewTree()
	require.NoError(t, New(c).Build(context.Background(), tree, root))

	assert.Equal(t, []string{"win", "A", "A1", "B"}, flatNames(tree))
	snap := tree.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, [4]int{0, 0, 100, 100}, snap.Bounds)
	assert.Equal(t, "push button", snap.Children[0].Children[0].Role)
	assert.Equal(t, [4]int{}, snap.Children[1].Bounds, "object without Component gets the sentinel")
}

func TestBuild_FailureKeepsPartialTree(t *testing.T) {
	c, root := newClient(t, fixture.Object{
		Name: "win", Role: "frame", Extents: rect(0, 0, 100, 100),
		Children: []fixture.Object{
			{Name: "A", Role: "panel", Extents: rect(0, 0, 50, 50)},
			{Name: "B", Role: "panel", Fail: "object vanished"},
			{Name: "C", Role: "panel"},
		},
	})

	tree := model.NewTree()
	err := New(c).Build(context.Background(), tree, root)
	require.Error(t, err)
	assert.ErrorContains(t, err, "object vanished")
	assert.False(t, IsCancelled(err))
	assert.Equal(t, 2, tree.Size())
	assert.Equal(t, []string{"win", "A"}, flatNames(tree))
}

func TestBuild_RootFailureLeavesTreeEmpty(t *testing.T) {
	c, root := newClient(t, fixture.Object{Name: "win", Role: "frame", Fail: "bus unreachable"})
	tree := model.NewTree()
	err := New(c).Build(context.Background(), tree, root)
	require.Error(t, err)
	assert.Nil(t, tree.Snapshot())
}

func TestBuild_CancelAfterNChildren(t *testing.T) {
	const total, stopAt = 6, 3
	var kids []fixture.Object
	for i := 0; i < total; i++ {
		kids = append(kids, fixture.Object{Name: fmt.Sprintf("c%d", i), Role: "push button", Extents: rect(i*10, 0, 10, 10)})
	}
	c, root := newClient(t, fixture.Object{Name: "win", Role: "frame", Extents: rect(0, 0, 100, 100), Children: kids})
	ids, err := c.Children(context.Background(), root)
	require.NoError(t, err)

	reached := make(chan struct{})
	c.SetHook(func(ctx context.Context, op fixture.Op, id model.Identity) error {
		if op == fixture.OpAttributes && id == ids[stopAt] {
			close(reached)
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	tree := model.NewTree()
	done := make(chan error, 1)
	go func() { done <- New(c).Build(ctx, tree, root) }()

	<-reached
	assert.Equal(t, stopAt, rootChildCount(tree))
	cancel()

	select {
	case err := <-done:
		assert.True(t, IsCancelled(err), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("build did not stop after cancellation")
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopAt, rootChildCount(tree))
	assert.Equal(t, stopAt+1, tree.Size())
}

func TestBuild_ClosedTreeStopsWithoutContext(t *testing.T) {
	c, root := newClient(t, fixture.Object{
		Name: "win", Role: "frame", Extents: rect(0, 0, 100, 100),
		Children: []fixture.Object{{Name: "A", Role: "panel"}, {Name: "B", Role: "panel"}},
	})
	ids, err := c.Children(context.Background(), root)
	require.NoError(t, err)

	tree := model.NewTree()
	c.SetHook(func(_ context.Context, op fixture.Op, id model.Identity) error {
		if op == fixture.OpAttributes && id == ids[1] {
			tree.Close()
		}
		return nil
	})

	err = New(c).Build(context.Background(), tree, root)
	assert.True(t, errors.Is(err, model.ErrTreeClosed), "got %v", err)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, []string{"win", "A"}, flatNames(tree))
}

func TestBuild_RootPublishedBeforeChildren(t *testing.T) {
	c, root := newClient(t, fixture.Object{
		Name: "win", Role: "frame", Extents: rect(0, 0, 100, 100),
		Children: []fixture.Object{{Name: "A", Role: "panel"}},
	})
	tree := model.NewTree()
	var sizeAtFirstChildFetch int
	c.SetHook(func(_ context.Context, op fixture.Op, id model.Identity) error {
		if op == fixture.OpChildren && id == root {
			sizeAtFirstChildFetch = tree.Size()
		}
		return nil
	})
	require.NoError(t, New(c).Build(context.Background(), tree, root))
	assert.Equal(t, 1, sizeAtFirstChildFetch)
}

func TestBuild_ProgressIsMonotonic(t *testing.T) {
	c, root := newClient(t, fixture.Object{
		Name: "win", Role: "frame",
		Children: []fixture.Object{
			{Name: "A", Role: "panel", Children: []fixture.Object{{Name: "A1", Role: "label"}}},
			{Name: "B", Role: "panel"},
		},
	})
	var sizes []int
	b := New(c)
	b.Progress = func(n int) { sizes = append(sizes, n) }
	require.NoError(t, b.Build(context.Background(), model.NewTree(), root))
	assert.Equal(t, []int{1, 2, 3, 4}, sizes)
}

func TestBuild_DeepHierarchy(t *testing.T) {
	const depth = 5000
	leaf := fixture.Object{Name: "leaf", Role: "label"}
	for i := 0; i < depth; i++ {
		leaf = fixture.Object{Name: "level", Role: "panel", Children: []fixture.Object{leaf}}
	}
	c, root := newClient(t, leaf)
	tree := model.NewTree()
	require.NoError(t, New(c).Build(context.Background(), tree, root))
	assert.Equal(t, depth+1, tree.Size())
}
