// Package server exposes a long-lived inspector session over the Model
// Context Protocol, so an agent can select a root, move a virtual pointer
// over the overlay and read back what it hits.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/atspi-inspector/internal/inspector"
	"github.com/mj1618/atspi-inspector/internal/pick"
	"github.com/mj1618/atspi-inspector/internal/platform"
	"github.com/mj1618/atspi-inspector/internal/render"
	"github.com/mj1618/atspi-inspector/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
	// BuildTimeout bounds how long select and refresh wait for a build. The
	// build itself keeps running in the session past it.
	BuildTimeout time.Duration
	Viewport     pick.Viewport
	Palette      render.Palette
}

// Server wraps the MCP server with the inspector session and root cache.
type Server struct {
	cfg       Config
	provider  *platform.Provider
	inspector *inspector.Inspector
	roots     *RootCache
	logger    *slog.Logger
	mcp       *mcpserver.MCPServer

	notesMu sync.Mutex
	notes   []inspector.Notification
}

// New creates a server with all inspector tools registered. Close releases
// the session; the provider stays owned by the caller.
func New(provider *platform.Provider, cfg Config) *Server {
	if cfg.Palette == (render.Palette{}) {
		cfg.Palette = render.DefaultPalette
	}
	s := &Server{
		cfg:       cfg,
		provider:  provider,
		inspector: inspector.New(provider, inspector.WithViewport(cfg.Viewport)),
		roots:     NewRootCache(cfg.CacheTTL),
		logger:    slog.Default().With("component", "server"),
	}
	s.mcp = mcpserver.NewMCPServer(
		"atspi-inspector",
		version.Version,
		mcpserver.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// Inspector returns the session.
func (s *Server) Inspector() *inspector.Inspector {
	return s.inspector
}

// Close stops the session.
func (s *Server) Close() {
	s.inspector.Close()
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve() error {
	switch s.cfg.Transport {
	case "", "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.logger.Info("listening", "addr", addr)
		return httpServer.Start(addr)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", s.cfg.Transport)
	}
}

// notifications returns the build failures not yet dismissed. Pending ones
// are drained from the session first, so a failure is visible in the same
// response that waited for its build.
func (s *Server) notifications(dismiss bool) []inspector.Notification {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()
	for drained := false; !drained; {
		select {
		case n := <-s.inspector.Notifications():
			s.logger.Warn("build failed", "root", n.Root.String(), "error", n.Message)
			s.notes = append(s.notes, n)
		default:
			drained = true
		}
	}
	out := append([]inspector.Notification(nil), s.notes...)
	if dismiss {
		s.notes = nil
	}
	return out
}

// waitBuild waits for the current build up to the configured timeout. A
// timeout is not an error: the caller reports building=true.
func (s *Server) waitBuild(ctx context.Context) error {
	if s.cfg.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.BuildTimeout)
		defer cancel()
	}
	err := s.inspector.Wait(ctx)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

func (s *Server) registerTools() {
	pointer := func(name, description string, extra ...mcp.ToolOption) mcp.Tool {
		opts := []mcp.ToolOption{
			mcp.WithDescription(description),
			mcp.WithNumber("x", mcp.Description("X in overlay device pixels (divided by the viewport device scale)"), mcp.Required()),
			mcp.WithNumber("y", mcp.Description("Y in overlay device pixels (divided by the viewport device scale)"), mcp.Required()),
		}
		return mcp.NewTool(name, append(opts, extra...)...)
	}

	s.mcp.AddTool(
		mcp.NewTool("list_roots",
			mcp.WithDescription("List inspectable roots: the top-level windows of every application on the accessibility bus"),
			mcp.WithBoolean("refresh", mcp.Description("Re-list instead of using the cached listing")),
			mcp.WithString("app", mcp.Description("Filter by application name substring")),
		),
		s.handleListRoots,
	)

	s.mcp.AddTool(
		mcp.NewTool("select",
			mcp.WithDescription("Select a root and build its accessibility tree. Cancels any build in progress."),
			mcp.WithNumber("index", mcp.Description("Index into the last list_roots result")),
			mcp.WithString("dest", mcp.Description("Bus name of the root object (with path)")),
			mcp.WithString("path", mcp.Description("Object path of the root object (with dest)")),
			mcp.WithBoolean("wait", mcp.Description("Wait for the build to finish (default: true)")),
		),
		s.handleSelect,
	)

	s.mcp.AddTool(
		mcp.NewTool("refresh",
			mcp.WithDescription("Rebuild the selected root from scratch and report what changed"),
		),
		s.handleRefresh,
	)

	s.mcp.AddTool(
		mcp.NewTool("clear",
			mcp.WithDescription("Drop the selection, the tree and all highlights"),
		),
		s.handleClear,
	)

	s.mcp.AddTool(
		mcp.NewTool("tree",
			mcp.WithDescription("Read the current tree (possibly partial while building)"),
			mcp.WithBoolean("flat", mcp.Description("Flat list with path breadcrumbs")),
			mcp.WithNumber("depth", mcp.Description("Max depth (0 = unlimited)")),
			mcp.WithString("roles", mcp.Description("Comma-separated roles or role codes (e.g. \"btn,txt\")")),
			mcp.WithString("bbox", mcp.Description("Only nodes intersecting x,y,w,h")),
			mcp.WithString("name", mcp.Description("Filter by name substring")),
		),
		s.handleTree,
	)

	s.mcp.AddTool(
		pointer("pick", "Report the deepest node under a point without changing the highlight",
			mcp.WithBoolean("tree", mcp.Description("x and y are already tree (screen) coordinates; skip device and overlay scaling")),
		),
		s.handlePick,
	)
	s.mcp.AddTool(pointer("hover", "Move the pointer over the overlay"), s.handleHover)
	s.mcp.AddTool(pointer("press", "Press on the overlay: picks the node under the pointer and opens its detail popup"), s.handlePress)

	s.mcp.AddTool(
		mcp.NewTool("leave", mcp.WithDescription("Move the pointer off the overlay")),
		s.handleLeave,
	)
	s.mcp.AddTool(
		mcp.NewTool("close_popup", mcp.WithDescription("Close the detail popup and clear the picked highlight")),
		s.handleClosePopup,
	)

	s.mcp.AddTool(
		mcp.NewTool("state",
			mcp.WithDescription("Session state: selection, build progress, scale, highlight and build failure notifications"),
			mcp.WithBoolean("dismiss", mcp.Description("Dismiss the returned notifications")),
			mcp.WithNumber("width", mcp.Description("Set the viewport width first")),
			mcp.WithNumber("height", mcp.Description("Set the viewport height first")),
		),
		s.handleState,
	)

	s.mcp.AddTool(
		mcp.NewTool("overlay",
			mcp.WithDescription("Render the overlay as PNG: node outlines plus the picked or hovered fill"),
			mcp.WithBoolean("labels", mcp.Description("Draw role codes on each node")),
		),
		s.handleOverlay,
	)
}
