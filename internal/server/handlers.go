package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/atspi-inspector/internal/highlight"
	"github.com/mj1618/atspi-inspector/internal/inspector"
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/output"
	"github.com/mj1618/atspi-inspector/internal/pick"
	"github.com/mj1618/atspi-inspector/internal/platform"
	"github.com/mj1618/atspi-inspector/internal/render"
	"gopkg.in/yaml.v3"
)

// yamlResult serializes v to YAML for an MCP response.
func yamlResult(v interface{}) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("yaml encode: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

// stateResult is returned by every tool that changes the session.
type stateResult struct {
	inspector.State `yaml:",inline"`
	Notifications   []inspector.Notification `yaml:"notifications,omitempty"`
}

func (s *Server) state(dismiss bool) stateResult {
	return stateResult{State: s.inspector.State(), Notifications: s.notifications(dismiss)}
}

func (s *Server) handleListRoots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	roots, err := s.roots.Roots(ctx, s.provider.Lister, boolParam(params, "refresh", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type entry struct {
		Index      int `yaml:"index"`
		model.Root `yaml:",inline"`
	}
	app := strings.ToLower(stringParam(params, "app", ""))
	entries := []entry{}
	for i, r := range roots {
		if app != "" && !strings.Contains(strings.ToLower(r.App), app) {
			continue
		}
		entries = append(entries, entry{Index: i, Root: r})
	}
	return yamlResult(map[string]interface{}{"roots": entries}), nil
}

// resolveRoot reads the root identity from either index or dest+path.
func (s *Server) resolveRoot(ctx context.Context, params map[string]interface{}) (model.Identity, error) {
	dest, path := stringParam(params, "dest", ""), stringParam(params, "path", "")
	if dest != "" || path != "" {
		if dest == "" || path == "" {
			return model.Identity{}, fmt.Errorf("dest and path must be given together")
		}
		return model.Identity{Destination: dest, Path: path}, nil
	}
	if !hasParam(params, "index") {
		return model.Identity{}, fmt.Errorf("provide index (from list_roots) or dest and path")
	}

	roots := s.roots.Last()
	if roots == nil {
		var err error
		if roots, err = s.roots.Roots(ctx, s.provider.Lister, false); err != nil {
			return model.Identity{}, err
		}
	}
	i := intParam(params, "index", -1)
	if i < 0 || i >= len(roots) {
		return model.Identity{}, fmt.Errorf("index %d out of range (%d roots)", i, len(roots))
	}
	return roots[i].ID, nil
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id, err := s.resolveRoot(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.inspector.Select(id)
	if boolParam(params, "wait", true) {
		if err := s.waitBuild(ctx); err != nil {
			// The partial tree stays selected; state carries the error.
			s.logger.Debug("select: build ended with error", "error", err)
		}
	}
	return yamlResult(s.state(false)), nil
}

func (s *Server) handleRefresh(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var before []model.FlatElement
	if t := s.inspector.Tree(); t != nil {
		if el := t.Snapshot(); el != nil {
			before = model.FlattenElements([]model.Element{*el})
		}
	}

	s.roots.Invalidate()
	if err := s.inspector.Refresh(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.waitBuild(ctx); err != nil {
		s.logger.Debug("refresh: build ended with error", "error", err)
	}

	root, _ := s.inspector.Selected()
	result := output.RefreshResult{Root: root}
	if t := s.inspector.Tree(); t != nil {
		result.Nodes = t.Size()
		var after []model.FlatElement
		if el := t.Snapshot(); el != nil {
			after = model.FlattenElements([]model.Element{*el})
		}
		result.Changes = model.DiffElements(before, after)
	}
	return yamlResult(struct {
		output.RefreshResult `yaml:",inline"`
		Building             bool   `yaml:"building"`
		Error                string `yaml:"error,omitempty"`
	}{result, s.inspector.Building(), errString(s.inspector.LastError())}), nil
}

func (s *Server) handleClear(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.inspector.Clear()
	return yamlResult(s.state(false)), nil
}

func (s *Server) handleTree(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	tree := s.inspector.Tree()
	if tree == nil {
		return mcp.NewToolResultError(inspector.ErrNoSelection.Error()), nil
	}

	q := model.Query{
		Name:  stringParam(params, "name", ""),
		Roles: listParam(params, "roles"),
		Depth: intParam(params, "depth", 0),
	}
	if bbox := stringParam(params, "bbox", ""); bbox != "" {
		r, err := platform.ParseBBox(bbox)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b := r.Bounds()
		q.BBox = &b
	}

	var snapshot []model.Element
	if el := tree.Snapshot(); el != nil {
		snapshot = []model.Element{*el}
	}
	root, _ := s.inspector.Selected()
	building := s.inspector.Building()
	errText := errString(s.inspector.LastError())

	if boolParam(params, "flat", false) {
		flat := q.ApplyFlat(snapshot)
		if flat == nil {
			flat = []model.FlatElement{}
		}
		return yamlResult(output.TreeFlatResult{
			Root: root, TS: time.Now().Unix(), Nodes: tree.Size(),
			Partial: building || errText != "", Error: errText, Elements: flat,
		}), nil
	}
	elements := q.Apply(snapshot)
	if elements == nil {
		elements = []model.Element{}
	}
	return yamlResult(output.TreeResult{
		Root: root, TS: time.Now().Unix(), Nodes: tree.Size(),
		Partial: building || errText != "", Error: errText, Elements: elements,
	}), nil
}

func rawPointerParams(params map[string]interface{}) (float64, float64, error) {
	if !hasParam(params, "x") || !hasParam(params, "y") {
		return 0, 0, fmt.Errorf("x and y are required")
	}
	return floatParam(params, "x", 0), floatParam(params, "y", 0), nil
}

// pointerParams reads x and y in device pixels and returns logical overlay
// coordinates, the same conversion the pick command applies.
func (s *Server) pointerParams(params map[string]interface{}) (float64, float64, error) {
	x, y, err := rawPointerParams(params)
	if err != nil {
		return 0, 0, err
	}
	x, y = s.inspector.Viewport().FromDevice(x, y)
	return x, y, nil
}

func (s *Server) handlePick(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	if boolParam(params, "tree", false) {
		x, y, err := rawPointerParams(params)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		p := model.Point{X: int(x), Y: int(y)}
		result := output.PickResult{Point: p, Scale: 1}
		if hit, ok := s.inspector.PickTreePoint(p); ok {
			result.Hit = &hit
		}
		return yamlResult(result), nil
	}

	x, y, err := s.pointerParams(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scale := s.inspector.Scale()
	result := output.PickResult{Point: pick.ToTreeSpace(x, y, scale), Scale: scale}
	if hit, ok := s.inspector.Pick(x, y); ok {
		result.Hit = &hit
	}
	return yamlResult(result), nil
}

func (s *Server) handleHover(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, y, err := s.pointerParams(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	redraw := s.inspector.PointerMove(x, y)
	return yamlResult(struct {
		Redraw    bool               `yaml:"redraw"`
		Highlight highlight.Snapshot `yaml:"highlight"`
	}{redraw, s.inspector.Highlight()}), nil
}

func (s *Server) handlePress(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, y, err := s.pointerParams(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	popup := s.inspector.Press(x, y)
	return yamlResult(struct {
		Popup     *highlight.Popup   `yaml:"popup"`
		Highlight highlight.Snapshot `yaml:"highlight"`
	}{popup, s.inspector.Highlight()}), nil
}

func (s *Server) handleLeave(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	redraw := s.inspector.PointerLeave()
	return yamlResult(struct {
		Redraw    bool               `yaml:"redraw"`
		Highlight highlight.Snapshot `yaml:"highlight"`
	}{redraw, s.inspector.Highlight()}), nil
}

func (s *Server) handleClosePopup(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	redraw := s.inspector.ClosePopup()
	return yamlResult(struct {
		Redraw    bool               `yaml:"redraw"`
		Highlight highlight.Snapshot `yaml:"highlight"`
	}{redraw, s.inspector.Highlight()}), nil
}

func (s *Server) handleState(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	if hasParam(params, "width") || hasParam(params, "height") {
		vp := s.inspector.Viewport()
		vp.Width = intParam(params, "width", vp.Width)
		vp.Height = intParam(params, "height", vp.Height)
		if vp.Width < 0 || vp.Height < 0 {
			return mcp.NewToolResultError("viewport size must not be negative"), nil
		}
		s.inspector.SetViewport(vp)
	}
	return yamlResult(s.state(boolParam(params, "dismiss", false))), nil
}

func (s *Server) handleOverlay(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	tree := s.inspector.Tree()
	if tree == nil {
		return mcp.NewToolResultError(inspector.ErrNoSelection.Error()), nil
	}

	vp := s.inspector.Viewport()
	data, err := render.PNG(render.Frame{
		Tree:      tree,
		Highlight: s.inspector.Highlight(),
		Scale:     s.inspector.Scale(),
		Width:     vp.Width,
		Height:    vp.Height,
		Labels:    boolParam(params, "labels", false),
	}, s.cfg.Palette)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	st := s.inspector.State()
	summary, _ := yaml.Marshal(struct {
		Building bool    `yaml:"building"`
		Nodes    int     `yaml:"nodes"`
		Scale    float64 `yaml:"scale"`
	}{st.Building, st.Nodes, st.Scale})

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: string(summary)},
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(data),
				MIMEType: "image/png",
			},
		},
	}, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
