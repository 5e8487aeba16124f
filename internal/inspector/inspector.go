// Package inspector owns the tree being inspected: which root is selected,
// the build that populates it, and the highlight state driven by pointer
// events over the overlay.
//
// At most one build is live. Selecting, refreshing or clearing cancels the
// previous build and closes its tree before going on, so a superseded build
// can never add another node.
package inspector

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mj1618/atspi-inspector/internal/builder"
	"github.com/mj1618/atspi-inspector/internal/highlight"
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/pick"
	"github.com/mj1618/atspi-inspector/internal/platform"
)

// ErrNoSelection is returned by Refresh when no root is selected.
var ErrNoSelection = errors.New("no root selected")

// Notification is a transient, dismissible message about a failed build.
type Notification struct {
	Message string         `yaml:"message" json:"message"`
	Root    model.Identity `yaml:"root"    json:"root"`
	Time    time.Time      `yaml:"time"    json:"time"`
}

// build is one run of the builder against one tree.
type build struct {
	gen    uint64
	root   model.Identity
	tree   *model.Tree
	cancel context.CancelFunc
	done   chan struct{}
	err    error // set, and reported, before done is closed
}

func (b *build) finished() bool {
	select {
	case <-b.done:
		return true
	default:
	}
	return false
}

// Inspector is safe for concurrent use.
type Inspector struct {
	client platform.Client
	lister platform.Lister
	logger *slog.Logger

	ctx     context.Context
	stop    context.CancelFunc
	notify  chan Notification
	redraws func()

	mu        sync.Mutex
	gen       uint64
	current   *build
	highlight highlight.State
	viewport  pick.Viewport
	lastErr   error
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithRedraw registers fn to be called whenever the overlay should be
// repainted: on highlight changes and while a build adds nodes.
func WithRedraw(fn func()) Option {
	return func(in *Inspector) { in.redraws = fn }
}

// WithViewport sets the initial viewport.
func WithViewport(vp pick.Viewport) Option {
	return func(in *Inspector) { in.viewport = vp }
}

// New creates an Inspector over provider's client and lister.
func New(provider *platform.Provider, opts ...Option) *Inspector {
	ctx, stop := context.WithCancel(context.Background())
	in := &Inspector{
		client: provider.Client,
		lister: provider.Lister,
		logger: slog.Default().With("component", "inspector"),
		ctx:    ctx,
		stop:   stop,
		notify: make(chan Notification, 16),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Close cancels any build in flight.
func (in *Inspector) Close() {
	in.mu.Lock()
	in.cancelLocked()
	in.mu.Unlock()
	in.stop()
}

// ListRoots enumerates the objects that can be selected.
func (in *Inspector) ListRoots(ctx context.Context) ([]model.Root, error) {
	if in.lister == nil {
		return nil, errors.New("root listing not available on this platform")
	}
	return in.lister.ListRoots(ctx)
}

// Select starts inspecting root, replacing any current tree.
func (in *Inspector) Select(root model.Identity) {
	in.mu.Lock()
	in.cancelLocked()
	in.highlight.Clear()
	in.lastErr = nil
	in.gen++

	ctx, cancel := context.WithCancel(in.ctx)
	b := &build{
		gen:    in.gen,
		root:   root,
		tree:   model.NewTree(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	in.current = b
	in.mu.Unlock()

	in.logger.Debug("selected root", "root", root.String(), "generation", b.gen)
	in.requestRedraw()

	bld := builder.New(in.client)
	bld.Progress = func(int) { in.requestRedraw() }
	go func() {
		err := bld.Build(ctx, b.tree, root)
		b.err = err
		in.finish(b, err)
		close(b.done)
	}()
}

// Refresh rebuilds the selected root from scratch.
func (in *Inspector) Refresh() error {
	in.mu.Lock()
	cur := in.current
	in.mu.Unlock()
	if cur == nil {
		return ErrNoSelection
	}
	in.Select(cur.root)
	return nil
}

// Clear drops the selection and the tree.
func (in *Inspector) Clear() {
	in.mu.Lock()
	in.cancelLocked()
	in.current = nil
	in.highlight.Clear()
	in.lastErr = nil
	in.gen++
	in.mu.Unlock()
	in.requestRedraw()
}

// cancelLocked stops the live build. Closing the tree makes the stop take
// effect immediately even if the builder is between checks.
func (in *Inspector) cancelLocked() {
	if in.current == nil {
		return
	}
	in.current.cancel()
	in.current.tree.Close()
}

func (in *Inspector) finish(b *build, err error) {
	b.cancel()
	if err == nil || builder.IsCancelled(err) {
		in.requestRedraw()
		return
	}

	in.mu.Lock()
	live := in.current == b
	if live {
		in.lastErr = err
	}
	in.mu.Unlock()
	if !live {
		return
	}

	n := Notification{Message: err.Error(), Root: b.root, Time: time.Now()}
	select {
	case in.notify <- n:
	default:
		in.logger.Warn("notification dropped", "message", n.Message)
	}
	in.requestRedraw()
}

// Notifications delivers build failures. Cancellation is never reported.
func (in *Inspector) Notifications() <-chan Notification {
	return in.notify
}

// Wait blocks until the current build ends and returns its error. It
// returns nil immediately when nothing is selected.
func (in *Inspector) Wait(ctx context.Context) error {
	in.mu.Lock()
	b := in.current
	in.mu.Unlock()
	if b == nil {
		return nil
	}
	select {
	case <-b.done:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tree returns the current tree, or nil when nothing is selected.
func (in *Inspector) Tree() *model.Tree {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.current == nil {
		return nil
	}
	return in.current.tree
}

// Selected returns the selected root.
func (in *Inspector) Selected() (model.Identity, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.current == nil {
		return model.Identity{}, false
	}
	return in.current.root, true
}

// Building reports whether a build is in flight.
func (in *Inspector) Building() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.current != nil && !in.current.finished()
}

// LastError returns the failure of the current tree's build, if any.
func (in *Inspector) LastError() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.lastErr
}

func (in *Inspector) requestRedraw() {
	if in.redraws != nil {
		in.redraws()
	}
}
