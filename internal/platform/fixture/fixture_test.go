package fixture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
apps:
  - name: gedit
    windows:
      - name: ""
        role: frame
        extents: {x: 0, y: 0, w: 800, h: 600}
        children:
          - name: Save
            role: push button
            extents: {x: 700, y: 10, w: 60, h: 30}
          - name: Document
            role: filler
  - name: terminal
    windows:
      - name: bash
        role: frame
        extents: {x: 0, y: 0, w: 640, h: 480}
`

func loadSample(t *testing.T) *Client {
	t.Helper()
	doc, err := Parse([]byte(sampleYAML), "yaml")
	require.NoError(t, err)
	c, err := New(doc)
	require.NoError(t, err)
	return c
}

func TestListRoots_FallsBackToAppName(t *testing.T) {
	c := loadSample(t)
	roots, err := c.ListRoots(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "gedit", roots[0].App)
	assert.Equal(t, "gedit", roots[0].Name)
	assert.Equal(t, "bash", roots[1].Name)
	assert.Equal(t, ":1.2", roots[1].ID.Destination)
}

func TestClient_Hierarchy(t *testing.T) {
	c := loadSample(t)
	ctx := context.Background()
	roots, _ := c.ListRoots(ctx)

	kids, err := c.Children(ctx, roots[0].ID)
	require.NoError(t, err)
	require.Len(t, kids, 2)

	attrs, err := c.Attributes(ctx, kids[0])
	require.NoError(t, err)
	assert.Equal(t, "Save", attrs.Name)
	assert.Equal(t, model.RolePushButton, attrs.Role)
	assert.True(t, attrs.Interfaces.HasGeometry())

	r, err := c.Extents(ctx, kids[0])
	require.NoError(t, err)
	assert.Equal(t, model.Rect{X: 700, Y: 10, Width: 60, Height: 30}, r)

	attrs, err = c.Attributes(ctx, kids[1])
	require.NoError(t, err)
	assert.False(t, attrs.Interfaces.HasGeometry())
	_, err = c.Extents(ctx, kids[1])
	assert.Error(t, err)
}

func TestClient_UnknownIdentity(t *testing.T) {
	c := loadSample(t)
	_, err := c.Attributes(context.Background(), model.Identity{Destination: ":9.9", Path: "/nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_FailField(t *testing.T) {
	doc := &Document{Apps: []App{{Name: "a", Windows: []Object{{Name: "w", Role: "frame", Fail: "object vanished"}}}}}
	c, err := New(doc)
	require.NoError(t, err)
	_, err = c.Attributes(context.Background(), c.roots[0].ID)
	assert.ErrorContains(t, err, "object vanished")
}

func TestClient_UnknownRole(t *testing.T) {
	doc := &Document{Apps: []App{{Name: "a", Windows: []Object{{Role: "AXWindow"}}}}}
	_, err := New(doc)
	assert.ErrorContains(t, err, "unknown role")
}

func TestClient_DelayHonoursContext(t *testing.T) {
	c := loadSample(t)
	c.SetDelay(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Children(ctx, c.roots[0].ID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Hook(t *testing.T) {
	c := loadSample(t)
	boom := errors.New("bus unreachable")
	var seen []Op
	c.SetHook(func(_ context.Context, op Op, _ model.Identity) error {
		seen = append(seen, op)
		if op == OpChildren {
			return boom
		}
		return nil
	})
	_, err := c.Attributes(context.Background(), c.roots[0].ID)
	require.NoError(t, err)
	_, err = c.Children(context.Background(), c.roots[0].ID)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []Op{OpAttributes, OpChildren}, seen)
	assert.Equal(t, 2, c.Calls())
}

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"f.yaml": sampleYAML,
		"f.json": `{"apps":[{"name":"x","windows":[{"name":"w","role":"frame","extents":{"x":0,"y":0,"w":10,"h":10}}]}]}`,
		"f.toml": "[[apps]]\nname = \"x\"\n[[apps.windows]]\nname = \"w\"\nrole = \"frame\"\nextents = {x = 0, y = 0, w = 10, h = 10}\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			c, err := Load(path)
			require.NoError(t, err)
			roots, err := c.ListRoots(context.Background())
			require.NoError(t, err)
			assert.NotEmpty(t, roots)
		})
	}

	_, err := Parse([]byte("x"), "ini")
	assert.Error(t, err)
}
