// Package fixture serves an accessibility hierarchy from a file, for offline
// inspection and for tests.
//
// A fixture lists applications, each with top-level objects that nest
// children:
//
//	apps:
//	  - name: gedit
//	    windows:
//	      - name: Untitled Document 1
//	        role: frame
//	        extents: {x: 0, y: 0, w: 800, h: 600}
//	        children:
//	          - {name: Save, role: push button, extents: {x: 700, y: 10, w: 60, h: 30}}
//
// Objects without extents do not advertise the Component interface.
package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/platform"
	"gopkg.in/yaml.v3"
)

// Document is the file format.
type Document struct {
	Apps []App `yaml:"apps" json:"apps" toml:"apps"`
}

// App is one application and its top-level objects.
type App struct {
	Name    string   `yaml:"name"    json:"name"    toml:"name"`
	Windows []Object `yaml:"windows" json:"windows" toml:"windows"`
}

// Object is one accessible object.
type Object struct {
	Name       string      `yaml:"name"                 json:"name"                 toml:"name"`
	Role       string      `yaml:"role"                 json:"role"                 toml:"role"`
	Extents    *model.Rect `yaml:"extents,omitempty"    json:"extents,omitempty"    toml:"extents,omitempty"`
	Interfaces []string    `yaml:"interfaces,omitempty" json:"interfaces,omitempty" toml:"interfaces,omitempty"`
	// Fail makes every fetch for this object return an error with this text.
	Fail     string   `yaml:"fail,omitempty"     json:"fail,omitempty"     toml:"fail,omitempty"`
	Children []Object `yaml:"children,omitempty" json:"children,omitempty" toml:"children,omitempty"`
}

// Op names a client operation, passed to hooks.
type Op string

const (
	OpAttributes Op = "attributes"
	OpExtents    Op = "extents"
	OpChildren   Op = "children"
)

// Hook runs before every fetch. Returning an error fails the fetch.
type Hook func(ctx context.Context, op Op, id model.Identity) error

type entry struct {
	attrs    platform.Attributes
	extents  model.Rect
	fail     string
	children []model.Identity
}

// Client implements platform.Client and platform.Lister over a Document.
type Client struct {
	objects map[model.Identity]*entry
	roots   []model.Root

	mu    sync.Mutex
	delay time.Duration
	hook  Hook
	calls int
}

var (
	_ platform.Client = (*Client)(nil)
	_ platform.Lister = (*Client)(nil)
)

// ErrNotFound is returned for identities the fixture does not contain.
var ErrNotFound = errors.New("no such object")

// Load reads a fixture file; the format follows the extension (.yaml, .yml,
// .json, .toml).
func Load(path string) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	doc, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, err
	}
	return New(doc)
}

// Parse decodes a fixture in the given format ("yaml", "yml", "json", "toml").
func Parse(data []byte, format string) (*Document, error) {
	doc := &Document{}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode YAML fixture: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode JSON fixture: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(string(data), doc); err != nil {
			return nil, fmt.Errorf("decode TOML fixture: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported fixture format %q (use yaml, json or toml)", format)
	}
	return doc, nil
}

// New indexes doc. Identities are assigned per application (":1.N") with
// object paths numbered in pre-order.
func New(doc *Document) (*Client, error) {
	c := &Client{objects: make(map[model.Identity]*entry)}
	for i, app := range doc.Apps {
		dest := fmt.Sprintf(":1.%d", i+1)
		next := 0
		for _, w := range app.Windows {
			id, err := c.add(dest, &next, w)
			if err != nil {
				return nil, fmt.Errorf("app %q: %w", app.Name, err)
			}
			name := w.Name
			if name == "" {
				name = app.Name
			}
			c.roots = append(c.roots, model.Root{App: app.Name, Name: name, ID: id})
		}
	}
	return c, nil
}

func (c *Client) add(dest string, next *int, o Object) (model.Identity, error) {
	id := model.Identity{
		Destination: dest,
		Path:        fmt.Sprintf("/org/a11y/atspi/accessible/%d", *next),
	}
	*next++

	role := model.RoleUnknown
	if o.Role != "" {
		r, ok := model.ParseRole(o.Role)
		if !ok {
			return id, fmt.Errorf("object %q: unknown role %q", o.Name, o.Role)
		}
		role = r
	}
	ifaces := append([]string{model.InterfaceAccessible}, o.Interfaces...)
	e := &entry{fail: o.Fail}
	if o.Extents != nil {
		ifaces = append(ifaces, model.InterfaceComponent)
		e.extents = *o.Extents
	}
	e.attrs = platform.Attributes{Name: o.Name, Role: role, Interfaces: model.NewInterfaceSet(ifaces...)}
	c.objects[id] = e

	for _, child := range o.Children {
		cid, err := c.add(dest, next, child)
		if err != nil {
			return id, err
		}
		e.children = append(e.children, cid)
	}
	return id, nil
}

// SetDelay makes every fetch wait d (or until ctx is done).
func (c *Client) SetDelay(d time.Duration) {
	c.mu.Lock()
	c.delay = d
	c.mu.Unlock()
}

// SetHook installs a hook run before every fetch.
func (c *Client) SetHook(h Hook) {
	c.mu.Lock()
	c.hook = h
	c.mu.Unlock()
}

// Calls returns the number of fetches issued so far.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *Client) fetch(ctx context.Context, op Op, id model.Identity) (*entry, error) {
	c.mu.Lock()
	c.calls++
	delay, hook := c.delay, c.hook
	c.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if hook != nil {
		if err := hook(ctx, op, id); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := c.objects[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	if e.fail != "" {
		return nil, fmt.Errorf("%s %s: %s", op, id, e.fail)
	}
	return e, nil
}

// Attributes implements platform.Client.
func (c *Client) Attributes(ctx context.Context, id model.Identity) (platform.Attributes, error) {
	e, err := c.fetch(ctx, OpAttributes, id)
	if err != nil {
		return platform.Attributes{}, err
	}
	return e.attrs, nil
}

// Extents implements platform.Client.
func (c *Client) Extents(ctx context.Context, id model.Identity) (model.Rect, error) {
	e, err := c.fetch(ctx, OpExtents, id)
	if err != nil {
		return model.NoExtents, err
	}
	if !e.attrs.Interfaces.HasGeometry() {
		return model.NoExtents, fmt.Errorf("extents %s: object has no Component interface", id)
	}
	return e.extents, nil
}

// Children implements platform.Client.
func (c *Client) Children(ctx context.Context, id model.Identity) ([]model.Identity, error) {
	e, err := c.fetch(ctx, OpChildren, id)
	if err != nil {
		return nil, err
	}
	out := make([]model.Identity, len(e.children))
	copy(out, e.children)
	return out, nil
}

// ListRoots implements platform.Lister.
func (c *Client) ListRoots(ctx context.Context) ([]model.Root, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Root, len(c.roots))
	copy(out, c.roots)
	return out, nil
}

// Provider wraps the client as a platform.Provider.
func (c *Client) Provider() *platform.Provider {
	return platform.NewProviderWith(c, c, nil)
}
