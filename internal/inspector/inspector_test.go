package inspector

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mj1618/atspi-inspector/internal/highlight"
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/pick"
	"github.com/mj1618/atspi-inspector/internal/platform/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(x, y, w, h int) *model.Rect {
	return &model.Rect{X: x, Y: y, Width: w, Height: h}
}

func editorDoc() *fixture.Document {
	return &fixture.Document{Apps: []fixture.App{
		{Name: "editor", Windows: []fixture.Object{{
			Name: "Document 1", Role: "frame", Extents: rect(0, 0, 1000, 800),
			Children: []fixture.Object{
				{Name: "toolbar", Role: "tool bar", Extents: rect(0, 0, 1000, 100), Children: []fixture.Object{
					{Name: "Save", Role: "push button", Extents: rect(10, 10, 80, 40)},
				}},
				{Name: "body", Role: "text", Extents: rect(0, 100, 1000, 700)},
			},
		}}},
		{Name: "terminal", Windows: []fixture.Object{
			{Name: "", Role: "frame", Extents: rect(0, 0, 400, 300)},
		}},
	}}
}

func newInspector(t *testing.T, opts ...Option) (*Inspector, *fixture.Client) {
	t.Helper()
	c, err := fixture.New(editorDoc())
	require.NoError(t, err)
	in := New(c.Provider(), opts...)
	t.Cleanup(in.Close)
	return in, c
}

func wait(t *testing.T, in *Inspector) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return in.Wait(ctx)
}

func firstRoot(t *testing.T, in *Inspector) model.Identity {
	t.Helper()
	roots, err := in.ListRoots(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, roots)
	return roots[0].ID
}

func TestListRoots(t *testing.T) {
	in, _ := newInspector(t)
	roots, err := in.ListRoots(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Document 1", roots[0].Name)
	assert.Equal(t, "terminal", roots[1].Name, "unnamed window falls back to the app name")
}

func TestSelect_BuildsTree(t *testing.T) {
	in, _ := newInspector(t)
	assert.Nil(t, in.Tree())

	in.Select(firstRoot(t, in))
	require.NoError(t, wait(t, in))

	tree := in.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, 4, tree.Size())
	assert.False(t, in.Building())
	assert.NoError(t, in.LastError())
}

func TestSelect_CancelsPreviousBuild(t *testing.T) {
	in, c := newInspector(t)
	roots, err := in.ListRoots(context.Background())
	require.NoError(t, err)

	blocked := make(chan struct{})
	var once atomic.Bool
	c.SetHook(func(ctx context.Context, op fixture.Op, id model.Identity) error {
		if id.Destination == roots[0].ID.Destination && op == fixture.OpChildren && once.CompareAndSwap(false, true) {
			close(blocked)
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})

	in.Select(roots[0].ID)
	<-blocked
	old := in.Tree()
	require.Equal(t, 1, old.Size())

	in.Select(roots[1].ID)
	assert.True(t, old.Closed(), "superseded tree is sealed")
	require.NoError(t, wait(t, in))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, old.Size())
	assert.Equal(t, 1, in.Tree().Size())
	sel, ok := in.Selected()
	require.True(t, ok)
	assert.Equal(t, roots[1].ID, sel)

	select {
	case n := <-in.Notifications():
		t.Fatalf("cancellation must not notify, got %q", n.Message)
	default:
	}
}

func TestFailure_NotifiesOnceAndKeepsPartialTree(t *testing.T) {
	doc := &fixture.Document{Apps: []fixture.App{{Name: "app", Windows: []fixture.Object{{
		Name: "win", Role: "frame", Extents: rect(0, 0, 100, 100),
		Children: []fixture.Object{
			{Name: "ok", Role: "panel", Extents: rect(0, 0, 50, 50)},
			{Name: "gone", Role: "panel", Fail: "object vanished"},
		},
	}}}}}
	c, err := fixture.New(doc)
	require.NoError(t, err)
	in := New(c.Provider())
	t.Cleanup(in.Close)

	in.Select(firstRoot(t, in))
	require.Error(t, wait(t, in))

	select {
	case n := <-in.Notifications():
		assert.Contains(t, n.Message, "object vanished")
	case <-time.After(5 * time.Second):
		t.Fatal("no notification")
	}
	select {
	case n := <-in.Notifications():
		t.Fatalf("unexpected second notification %q", n.Message)
	case <-time.After(20 * time.Millisecond):
	}

	assert.Equal(t, 2, in.Tree().Size())
	assert.Error(t, in.LastError())
	assert.NotEmpty(t, in.State().Error)
}

func TestRefresh(t *testing.T) {
	in, c := newInspector(t)
	assert.ErrorIs(t, in.Refresh(), ErrNoSelection)

	in.Select(firstRoot(t, in))
	require.NoError(t, wait(t, in))
	first := in.Tree()
	calls := c.Calls()

	require.NoError(t, in.Refresh())
	require.NoError(t, wait(t, in))
	assert.NotSame(t, first, in.Tree())
	assert.Equal(t, 4, in.Tree().Size())
	assert.Greater(t, c.Calls(), calls)
}

func TestClear_ResetsHighlightAndTree(t *testing.T) {
	in, _ := newInspector(t, WithViewport(pick.Viewport{Width: 1000, Height: 800}))
	in.Select(firstRoot(t, in))
	require.NoError(t, wait(t, in))

	assert.True(t, in.PointerMove(20, 20))
	require.NotNil(t, in.Press(20, 20))
	snap := in.Highlight()
	require.NotNil(t, snap.Picked)
	require.NotNil(t, snap.Hovered)

	in.Clear()
	snap = in.Highlight()
	assert.Nil(t, snap.Picked)
	assert.Nil(t, snap.Hovered)
	assert.Nil(t, snap.Popup)
	assert.Nil(t, in.Tree())
	_, ok := in.Selected()
	assert.False(t, ok)
	assert.NoError(t, wait(t, in))
}

func TestPointerEvents_Scaled(t *testing.T) {
	// Tree is 1000x800 shown in a 500x400 viewport: scale 0.5.
	in, _ := newInspector(t, WithViewport(pick.Viewport{Width: 500, Height: 400}))
	in.Select(firstRoot(t, in))
	require.NoError(t, wait(t, in))
	assert.InDelta(t, 0.5, in.Scale(), 1e-9)

	// (10, 10) in the viewport is (20, 20) in the tree: the Save button.
	assert.True(t, in.PointerMove(10, 10))
	assert.False(t, in.PointerMove(11, 11), "same node, no redraw")
	snap := in.Highlight()
	require.NotNil(t, snap.Hovered)
	assert.Equal(t, model.Rect{X: 10, Y: 10, Width: 80, Height: 40}, *snap.Hovered)
	assert.Equal(t, highlight.Hovering.String(), snap.Mode)

	popup := in.Press(10, 10)
	require.NotNil(t, popup)
	assert.Equal(t, "Save", popup.Name)
	assert.Equal(t, "push button", popup.Role)
	assert.Equal(t, model.Rect{X: 10, Y: 10, Width: 1, Height: 1}, popup.Anchor)
	assert.Equal(t, highlight.Picked.String(), in.Highlight().Mode)

	assert.True(t, in.ClosePopup())
	snap = in.Highlight()
	assert.Nil(t, snap.Popup)
	assert.Nil(t, snap.Picked, "closing the popup clears the pick")
	require.NotNil(t, snap.Hovered, "hover survives the popup")

	assert.True(t, in.PointerLeave())
	assert.False(t, in.PointerLeave())

	assert.Nil(t, in.Press(900, 900), "outside the tree")
	assert.Nil(t, in.Highlight().Picked)
}

func TestPointerEvents_NoSelection(t *testing.T) {
	in, _ := newInspector(t)
	assert.False(t, in.PointerMove(10, 10))
	assert.Nil(t, in.Press(10, 10))
	_, ok := in.Pick(10, 10)
	assert.False(t, ok)
	assert.Equal(t, 1.0, in.Scale())
}

func TestRedrawCallback(t *testing.T) {
	var redraws atomic.Int32
	in, _ := newInspector(t,
		WithRedraw(func() { redraws.Add(1) }),
		WithViewport(pick.Viewport{Width: 1000, Height: 800}),
	)
	in.Select(firstRoot(t, in))
	require.NoError(t, wait(t, in))
	afterBuild := redraws.Load()
	assert.GreaterOrEqual(t, afterBuild, int32(5), "selection plus one per node")

	in.PointerMove(20, 20)
	assert.Equal(t, afterBuild+1, redraws.Load())
	in.PointerMove(21, 21)
	assert.Equal(t, afterBuild+1, redraws.Load())
}

func TestState(t *testing.T) {
	in, _ := newInspector(t, WithViewport(pick.Viewport{Width: 2000, Height: 2000}))
	s := in.State()
	assert.Nil(t, s.Selected)
	assert.Equal(t, "idle", s.Highlight.Mode)

	root := firstRoot(t, in)
	in.Select(root)
	require.NoError(t, wait(t, in))
	s = in.State()
	require.NotNil(t, s.Selected)
	assert.Equal(t, root, *s.Selected)
	assert.Equal(t, 4, s.Nodes)
	assert.False(t, s.Building)
	assert.Equal(t, 1.0, s.Scale, "viewport larger than tree never upscales")
}
