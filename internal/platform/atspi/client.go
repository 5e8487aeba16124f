package atspi

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/platform"
)

const (
	a11yBusName = "org.a11y.Bus"
	a11yBusPath = "/org/a11y/bus"

	registryName = "org.a11y.atspi.Registry"
	rootPath     = "/org/a11y/atspi/accessible/root"
	nullPath     = "/org/a11y/atspi/null"

	accessibleInterface = "org.a11y.atspi.Accessible"
	componentInterface  = "org.a11y.atspi.Component"
	propertiesGet       = "org.freedesktop.DBus.Properties.Get"

	// ATSPI_COORD_TYPE_WINDOW
	coordTypeWindow uint32 = 1
)

// RegistryRoot is the desktop object whose children are the applications.
var RegistryRoot = model.Identity{Destination: registryName, Path: rootPath}

// Client talks to accessible objects over a private connection to the
// accessibility bus.
type Client struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

var (
	_ platform.Client = (*Client)(nil)
	_ platform.Lister = (*Client)(nil)
)

// BusAddress discovers the accessibility bus address.
func BusAddress(ctx context.Context) (string, error) {
	if addr := os.Getenv("AT_SPI_BUS_ADDRESS"); addr != "" {
		return addr, nil
	}
	session, err := dbus.SessionBus()
	if err != nil {
		return "", fmt.Errorf("failed to connect to session bus: %w", err)
	}
	var addr string
	err = session.Object(a11yBusName, a11yBusPath).
		CallWithContext(ctx, a11yBusName+".GetAddress", 0).
		Store(&addr)
	if err != nil {
		return "", fmt.Errorf("failed to get accessibility bus address: %w", err)
	}
	return addr, nil
}

// Connect opens a connection to the accessibility bus at address.
func Connect(ctx context.Context, address string) (*Client, error) {
	conn, err := dbus.Connect(address, dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to accessibility bus: %w", err)
	}
	return &Client{
		conn:   conn,
		logger: slog.Default().With("component", "atspi"),
	}, nil
}

// Close closes the bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) object(id model.Identity) dbus.BusObject {
	return c.conn.Object(id.Destination, dbus.ObjectPath(id.Path))
}

// Attributes implements platform.Client.
func (c *Client) Attributes(ctx context.Context, id model.Identity) (platform.Attributes, error) {
	obj := c.object(id)

	var ifaces []string
	if err := obj.CallWithContext(ctx, accessibleInterface+".GetInterfaces", 0).Store(&ifaces); err != nil {
		return platform.Attributes{}, fmt.Errorf("get interfaces of %s: %w", id, err)
	}
	var role uint32
	if err := obj.CallWithContext(ctx, accessibleInterface+".GetRole", 0).Store(&role); err != nil {
		return platform.Attributes{}, fmt.Errorf("get role of %s: %w", id, err)
	}
	name, err := c.name(ctx, obj)
	if err != nil {
		return platform.Attributes{}, fmt.Errorf("get name of %s: %w", id, err)
	}
	return platform.Attributes{
		Name:       name,
		Role:       model.Role(role),
		Interfaces: model.NewInterfaceSet(ifaces...),
	}, nil
}

func (c *Client) name(ctx context.Context, obj dbus.BusObject) (string, error) {
	var v dbus.Variant
	if err := obj.CallWithContext(ctx, propertiesGet, 0, accessibleInterface, "Name").Store(&v); err != nil {
		return "", err
	}
	name, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected Name type %s", v.Signature())
	}
	return name, nil
}

// Extents implements platform.Client.
func (c *Client) Extents(ctx context.Context, id model.Identity) (model.Rect, error) {
	var raw []interface{}
	err := c.object(id).
		CallWithContext(ctx, componentInterface+".GetExtents", 0, coordTypeWindow).
		Store(&raw)
	if err != nil {
		return model.NoExtents, fmt.Errorf("get extents of %s: %w", id, err)
	}
	r, err := decodeExtents(raw)
	if err != nil {
		return model.NoExtents, fmt.Errorf("get extents of %s: %w", id, err)
	}
	return r, nil
}

// Children implements platform.Client.
func (c *Client) Children(ctx context.Context, id model.Identity) ([]model.Identity, error) {
	var raw [][]interface{}
	if err := c.object(id).CallWithContext(ctx, accessibleInterface+".GetChildren", 0).Store(&raw); err != nil {
		return nil, fmt.Errorf("get children of %s: %w", id, err)
	}
	refs, err := decodeRefs(raw)
	if err != nil {
		return nil, fmt.Errorf("get children of %s: %w", id, err)
	}
	return refs, nil
}

// ListRoots implements platform.Lister: every top-level child of every
// application registered on the bus. A window without a name is listed under
// its application's name.
func (c *Client) ListRoots(ctx context.Context) ([]model.Root, error) {
	apps, err := c.Children(ctx, RegistryRoot)
	if err != nil {
		return nil, err
	}
	roots := []model.Root{}
	for _, app := range apps {
		appName, err := c.name(ctx, c.object(app))
		if err != nil {
			return nil, fmt.Errorf("get name of %s: %w", app, err)
		}
		windows, err := c.Children(ctx, app)
		if err != nil {
			return nil, err
		}
		for _, w := range windows {
			name, err := c.name(ctx, c.object(w))
			if err != nil {
				return nil, fmt.Errorf("get name of %s: %w", w, err)
			}
			if name == "" {
				name = appName
			}
			roots = append(roots, model.Root{App: appName, Name: name, ID: w})
		}
	}
	c.logger.Debug("listed roots", "applications", len(apps), "roots", len(roots))
	return roots, nil
}

// decodeRefs converts an a(so) reply into identities, dropping null
// references.
func decodeRefs(raw [][]interface{}) ([]model.Identity, error) {
	refs := make([]model.Identity, 0, len(raw))
	for i, r := range raw {
		if len(r) != 2 {
			return nil, fmt.Errorf("malformed reference %d: %d fields", i, len(r))
		}
		dest, ok := r[0].(string)
		if !ok {
			return nil, fmt.Errorf("malformed reference %d: bus name is %T", i, r[0])
		}
		path, ok := r[1].(dbus.ObjectPath)
		if !ok {
			return nil, fmt.Errorf("malformed reference %d: path is %T", i, r[1])
		}
		if path == nullPath {
			continue
		}
		refs = append(refs, model.Identity{Destination: dest, Path: string(path)})
	}
	return refs, nil
}

// decodeExtents converts an (iiii) reply into a Rect.
func decodeExtents(raw []interface{}) (model.Rect, error) {
	if len(raw) != 4 {
		return model.NoExtents, fmt.Errorf("malformed extents: %d fields", len(raw))
	}
	var v [4]int
	for i, f := range raw {
		n, ok := f.(int32)
		if !ok {
			return model.NoExtents, fmt.Errorf("malformed extents: field %d is %T", i, f)
		}
		v[i] = int(n)
	}
	return model.RectFromBounds(v), nil
}
