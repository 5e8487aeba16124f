// Package builder mirrors a live accessibility hierarchy into a model.Tree.
//
// The walk is depth-first, left to right and strictly sequential. The root is
// published as soon as its own attributes arrive and every descendant is
// appended the moment it is fetched, so the tree can be read at any point of
// the build. An explicit worklist replaces recursion, so depth is bounded only
// by the heap.
package builder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/platform"
)

// Builder walks accessible objects through a platform.Client.
type Builder struct {
	client platform.Client
	logger *slog.Logger

	// Progress, if set, is called after every node is added, with the
	// current tree size.
	Progress func(nodes int)
}

// New creates a Builder.
func New(client platform.Client) *Builder {
	return &Builder{
		client: client,
		logger: slog.Default().With("component", "builder"),
	}
}

// IsCancelled reports whether err means the build was stopped rather than
// failed: the context was cancelled or the tree was closed under it.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, model.ErrTreeClosed)
}

// frame is a worklist entry: a node already in the tree and the identities
// of its children still to be visited.
type frame struct {
	node    *model.Node
	pending []model.Identity
}

// Build populates tree, which must be empty, from the object root.
//
// Cancellation is observed after every fetch, before the result is applied;
// once ctx is done or tree is closed nothing more is added. A failed fetch
// ends the whole build. In both cases the nodes added so far stay in tree.
func (b *Builder) Build(ctx context.Context, tree *model.Tree, root model.Identity) error {
	start := time.Now()
	logger := b.logger.With("root", root.String())
	logger.Debug("build started")

	err := b.walk(ctx, tree, root)
	switch {
	case err == nil:
		logger.Info("build complete", "nodes", tree.Size(), "duration", time.Since(start))
	case IsCancelled(err):
		logger.Debug("build cancelled", "nodes", tree.Size())
	default:
		logger.Warn("build failed", "nodes", tree.Size(), "error", err)
	}
	return err
}

func (b *Builder) walk(ctx context.Context, tree *model.Tree, root model.Identity) error {
	node, err := b.fetchNode(ctx, root)
	if err != nil {
		return err
	}
	if err := b.apply(ctx, tree, func() error { return tree.SetRoot(node) }); err != nil {
		return err
	}
	kids, err := b.client.Children(ctx, root)
	if err != nil {
		return err
	}

	stack := []frame{{node: node, pending: kids}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.pending) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		id := top.pending[0]
		top.pending = top.pending[1:]
		parent := top.node

		child, err := b.fetchNode(ctx, id)
		if err != nil {
			return err
		}
		if err := b.apply(ctx, tree, func() error { return tree.Append(parent, child) }); err != nil {
			return err
		}
		grandkids, err := b.client.Children(ctx, id)
		if err != nil {
			return err
		}
		stack = append(stack, frame{node: child, pending: grandkids})
	}
	return nil
}

// apply runs one tree mutation unless the build has been cancelled.
func (b *Builder) apply(ctx context.Context, tree *model.Tree, mutate func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}
	if b.Progress != nil {
		b.Progress(tree.Size())
	}
	return nil
}

// fetchNode reads one object's attributes and, when it has geometry, its
// extents.
func (b *Builder) fetchNode(ctx context.Context, id model.Identity) (*model.Node, error) {
	attrs, err := b.client.Attributes(ctx, id)
	if err != nil {
		return nil, err
	}
	extents := model.NoExtents
	if attrs.Interfaces.HasGeometry() {
		if extents, err = b.client.Extents(ctx, id); err != nil {
			return nil, err
		}
	}
	return model.NewNode(attrs.Name, attrs.Role, extents), nil
}
