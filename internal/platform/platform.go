package platform

import (
	"context"

	"github.com/mj1618/atspi-inspector/internal/model"
)

// Attributes are the per-object facts fetched before a node is created.
type Attributes struct {
	Name       string
	Role       model.Role
	Interfaces model.InterfaceSet
}

// Client reads accessible objects from the accessibility bus. Every call may
// block and must honour ctx.
type Client interface {
	// Attributes returns the object's name, role and supported interfaces.
	Attributes(ctx context.Context, id model.Identity) (Attributes, error)

	// Extents returns the object's window-relative bounds. Only valid when
	// the object advertises the Component interface.
	Extents(ctx context.Context, id model.Identity) (model.Rect, error)

	// Children returns the object's children in enumeration order.
	Children(ctx context.Context, id model.Identity) ([]model.Identity, error)
}

// Lister enumerates the top-level objects that can be inspected.
type Lister interface {
	// ListRoots returns every application's top-level children in order.
	ListRoots(ctx context.Context) ([]model.Root, error)
}
