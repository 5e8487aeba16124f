package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mj1618/atspi-inspector/internal/builder"
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/output"
	"github.com/mj1618/atspi-inspector/internal/platform"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Build and print a window's accessibility tree",
	Long: `Walk the accessibility tree under one root, depth-first in bus order, and
print it. If the walk fails part way, or is interrupted with Ctrl-C or
--timeout, the nodes fetched so far are printed with partial: true.

Examples:
  atspi-inspector tree --app gedit
  atspi-inspector tree --index 2 --roles btn,txt --flat
  atspi-inspector tree --app firefox --bbox 0,0,800,200 --depth 4`,
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	addRootFlags(treeCmd)
	treeCmd.Flags().String("roles", "", "Comma-separated roles or role codes to include (e.g. \"btn,txt\")")
	treeCmd.Flags().String("bbox", "", "Only nodes intersecting x,y,w,h")
	treeCmd.Flags().Int("depth", 0, "Max depth to print (0 = unlimited)")
	treeCmd.Flags().String("name", "", "Only nodes whose name contains this text, plus their ancestors")
	treeCmd.Flags().Bool("flat", false, "Flat list with path breadcrumbs instead of nesting")
}

func runTree(cmd *cobra.Command, args []string) error {
	q, err := getQueryFlags(cmd)
	if err != nil {
		return err
	}
	flat, _ := cmd.Flags().GetBool("flat")

	provider, err := newProvider()
	if err != nil {
		return err
	}
	defer provider.Close()

	ctx, cancel, err := buildContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	root, err := resolveRoot(ctx, provider.Lister, getRootSelector(cmd))
	if err != nil {
		return err
	}

	tree := model.NewTree()
	start := time.Now()
	buildErr := builder.New(provider.Client).Build(ctx, tree, root.ID)
	slog.Debug("tree built", "nodes", tree.Size(), "duration", time.Since(start), "error", buildErr)

	if tree.Size() == 0 && buildErr != nil {
		return fmt.Errorf("build %s: %w", root.ID, buildErr)
	}

	var snapshot []model.Element
	if el := tree.Snapshot(); el != nil {
		snapshot = []model.Element{*el}
	}
	errText := ""
	if buildErr != nil {
		errText = describeBuildError(buildErr)
	}

	var printErr error
	if flat {
		flatElements := q.ApplyFlat(snapshot)
		if flatElements == nil {
			flatElements = []model.FlatElement{}
		}
		printErr = output.Print(output.TreeFlatResult{
			Root: root.ID, Name: root.Name, TS: time.Now().Unix(), Nodes: tree.Size(),
			Partial: buildErr != nil, Error: errText, Elements: flatElements,
		})
	} else {
		elements := q.Apply(snapshot)
		if elements == nil {
			elements = []model.Element{}
		}
		printErr = output.Print(output.TreeResult{
			Root: root.ID, Name: root.Name, TS: time.Now().Unix(), Nodes: tree.Size(),
			Partial: buildErr != nil, Error: errText, Elements: elements,
		})
	}
	if printErr != nil {
		return printErr
	}
	if buildErr != nil && !builder.IsCancelled(buildErr) {
		return fmt.Errorf("tree is partial: %w", buildErr)
	}
	return nil
}

// getQueryFlags reads the tree filter flags.
func getQueryFlags(cmd *cobra.Command) (model.Query, error) {
	var q model.Query
	roles, _ := cmd.Flags().GetString("roles")
	q.Roles = splitList(roles)
	q.Depth, _ = cmd.Flags().GetInt("depth")
	q.Name, _ = cmd.Flags().GetString("name")
	if bbox, _ := cmd.Flags().GetString("bbox"); bbox != "" {
		r, err := platform.ParseBBox(bbox)
		if err != nil {
			return q, err
		}
		b := r.Bounds()
		q.BBox = &b
	}
	return q, nil
}

func describeBuildError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out: " + err.Error()
	case builder.IsCancelled(err):
		return "interrupted"
	default:
		return err.Error()
	}
}
