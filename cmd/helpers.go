package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mj1618/atspi-inspector/internal/inspector"
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/pick"
	"github.com/mj1618/atspi-inspector/internal/platform"
	"github.com/spf13/cobra"
)

// addRootFlags registers the flags that choose which root to inspect.
func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().Int("index", -1, "Root index as printed by `list`")
	cmd.Flags().String("app", "", "Application name substring")
	cmd.Flags().String("window", "", "Window name substring")
	cmd.Flags().String("dest", "", "Bus name of the root object (with --path)")
	cmd.Flags().String("path", "", "Object path of the root object (with --dest)")
	cmd.Flags().Duration("timeout", 0, "Give up on the build after this long (default from config)")
}

// rootSelector holds the root-selection flags.
type rootSelector struct {
	Index  int
	App    string
	Window string
	Dest   string
	Path   string
}

func getRootSelector(cmd *cobra.Command) rootSelector {
	var sel rootSelector
	sel.Index, _ = cmd.Flags().GetInt("index")
	sel.App, _ = cmd.Flags().GetString("app")
	sel.Window, _ = cmd.Flags().GetString("window")
	sel.Dest, _ = cmd.Flags().GetString("dest")
	sel.Path, _ = cmd.Flags().GetString("path")
	return sel
}

// resolveRoot picks exactly one root. With no selector at all, a listing
// with a single root selects it.
func resolveRoot(ctx context.Context, lister platform.Lister, sel rootSelector) (model.Root, error) {
	if sel.Dest != "" || sel.Path != "" {
		if sel.Dest == "" || sel.Path == "" {
			return model.Root{}, fmt.Errorf("--dest and --path must be given together")
		}
		return model.Root{ID: model.Identity{Destination: sel.Dest, Path: sel.Path}}, nil
	}
	if lister == nil {
		return model.Root{}, fmt.Errorf("root listing not available on this platform; use --dest and --path")
	}
	roots, err := lister.ListRoots(ctx)
	if err != nil {
		return model.Root{}, err
	}

	if sel.Index >= 0 {
		if sel.Index >= len(roots) {
			return model.Root{}, fmt.Errorf("--index %d out of range (%d roots)", sel.Index, len(roots))
		}
		return roots[sel.Index], nil
	}

	matches := filterRoots(roots, sel.App, sel.Window)
	switch {
	case len(matches) == 1:
		return matches[0], nil
	case len(matches) == 0:
		return model.Root{}, fmt.Errorf("no root matches (app=%q window=%q); run `list` to see what is available", sel.App, sel.Window)
	default:
		var names []string
		for _, r := range matches {
			names = append(names, fmt.Sprintf("%s: %s", r.App, r.Name))
		}
		return model.Root{}, fmt.Errorf("%d roots match, narrow with --app, --window or --index:\n  %s", len(matches), strings.Join(names, "\n  "))
	}
}

// filterRoots keeps roots whose app and window names contain the given
// substrings (case-insensitive). Empty filters match everything.
func filterRoots(roots []model.Root, app, window string) []model.Root {
	app, window = strings.ToLower(app), strings.ToLower(window)
	var out []model.Root
	for _, r := range roots {
		if app != "" && !strings.Contains(strings.ToLower(r.App), app) {
			continue
		}
		if window != "" && !strings.Contains(strings.ToLower(r.Name), window) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// buildContext returns a context cancelled by Ctrl-C or by the --timeout
// flag (falling back to the configured build timeout).
func buildContext(cmd *cobra.Command) (context.Context, context.CancelFunc, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if !cmd.Flags().Changed("timeout") {
		var err error
		if timeout, err = cfg.Timeout(); err != nil {
			return nil, nil, err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop, nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() { cancel(); stop() }, nil
}

// buildTimeoutOr returns d unless it is zero, in which case fallback.
func buildTimeoutOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// addViewportFlags registers the overlay geometry flags.
func addViewportFlags(cmd *cobra.Command) {
	cmd.Flags().String("viewport", "", "Overlay size WxH in logical pixels (default from config, else the root's size)")
	cmd.Flags().Float64("device-scale", 0, "Device pixels per logical pixel for --at/--hover/--press (default from config, else 1)")
}

// getViewport merges the viewport flags over the config.
func getViewport(cmd *cobra.Command) (pick.Viewport, error) {
	vp := cfg.PickViewport()
	if s, _ := cmd.Flags().GetString("viewport"); s != "" {
		w, h, err := platform.ParseSize(s)
		if err != nil {
			return vp, err
		}
		vp.Width, vp.Height = w, h
	}
	if cmd.Flags().Changed("device-scale") {
		vp.DeviceScale, _ = cmd.Flags().GetFloat64("device-scale")
		if vp.DeviceScale <= 0 {
			return vp, fmt.Errorf("--device-scale must be positive")
		}
	}
	return vp, nil
}

// session is a one-shot inspector session over a freshly built root.
type session struct {
	provider  *platform.Provider
	inspector *inspector.Inspector
	root      model.Root
	// buildErr is the build's failure, if any. The partial tree stays usable.
	buildErr error
}

func (s *session) Close() {
	s.inspector.Close()
	s.provider.Close()
}

// openSession resolves the root from the command's flags, selects it and
// waits for the build.
func openSession(ctx context.Context, cmd *cobra.Command, vp pick.Viewport) (*session, error) {
	provider, err := newProvider()
	if err != nil {
		return nil, err
	}
	root, err := resolveRoot(ctx, provider.Lister, getRootSelector(cmd))
	if err != nil {
		provider.Close()
		return nil, err
	}

	in := inspector.New(provider, inspector.WithViewport(vp))
	in.Select(root.ID)
	s := &session{provider: provider, inspector: in, root: root, buildErr: in.Wait(ctx)}
	if s.buildErr != nil {
		slog.Warn("build incomplete, using partial tree", "root", root.ID.String(), "nodes", in.Tree().Size(), "error", s.buildErr)
	}
	return s, nil
}

// devicePoint parses an "x,y" flag in device pixels and converts it to
// viewport coordinates.
func devicePoint(vp pick.Viewport, s string) (float64, float64, error) {
	x, y, err := platform.ParsePoint(s)
	if err != nil {
		return 0, 0, err
	}
	x, y = vp.FromDevice(x, y)
	return x, y, nil
}
