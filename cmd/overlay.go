package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/mj1618/atspi-inspector/internal/highlight"
	"github.com/mj1618/atspi-inspector/internal/output"
	"github.com/mj1618/atspi-inspector/internal/render"
	"github.com/spf13/cobra"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Render the outline overlay of a window's tree as PNG",
	Long: `Build a root's tree and draw every node's outline, scaled to fit the
viewport without enlarging. --hover and --press replay pointer events first:
the pressed node is filled red, otherwise the hovered node is filled blue.

Examples:
  atspi-inspector overlay --app gedit --output gedit.png
  atspi-inspector overlay --index 0 --viewport 800x600 --press 120,40 --labels --output pick.png`,
	RunE: runOverlay,
}

func init() {
	rootCmd.AddCommand(overlayCmd)
	addRootFlags(overlayCmd)
	addViewportFlags(overlayCmd)
	overlayCmd.Flags().String("hover", "", "Hover the pointer at x,y before rendering")
	overlayCmd.Flags().String("press", "", "Press at x,y before rendering")
	overlayCmd.Flags().Bool("labels", false, "Draw each node's role code")
	overlayCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
}

// overlayResult is printed when the image goes to a file.
type overlayResult struct {
	Output    string             `yaml:"output"            json:"output"`
	Width     int                `yaml:"width"             json:"width"`
	Height    int                `yaml:"height"            json:"height"`
	Scale     float64            `yaml:"scale"             json:"scale"`
	Nodes     int                `yaml:"nodes"             json:"nodes"`
	Partial   bool               `yaml:"partial,omitempty" json:"partial,omitempty"`
	Highlight highlight.Snapshot `yaml:"highlight"         json:"highlight"`
}

func runOverlay(cmd *cobra.Command, args []string) error {
	vp, err := getViewport(cmd)
	if err != nil {
		return err
	}
	pal, err := cfg.Palette()
	if err != nil {
		return err
	}
	hoverAt, _ := cmd.Flags().GetString("hover")
	pressAt, _ := cmd.Flags().GetString("press")
	labels, _ := cmd.Flags().GetBool("labels")
	outPath, _ := cmd.Flags().GetString("output")

	ctx, cancel, err := buildContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	s, err := openSession(ctx, cmd, vp)
	if err != nil {
		return err
	}
	defer s.Close()
	if s.inspector.Tree().Size() == 0 {
		return fmt.Errorf("build %s: %w", s.root.ID, s.buildErr)
	}

	if hoverAt != "" {
		x, y, err := devicePoint(vp, hoverAt)
		if err != nil {
			return err
		}
		s.inspector.PointerMove(x, y)
	}
	if pressAt != "" {
		x, y, err := devicePoint(vp, pressAt)
		if err != nil {
			return err
		}
		s.inspector.Press(x, y)
	}

	img := render.Draw(render.Frame{
		Tree:      s.inspector.Tree(),
		Highlight: s.inspector.Highlight(),
		Scale:     s.inspector.Scale(),
		Width:     vp.Width,
		Height:    vp.Height,
		Labels:    labels,
	}, pal)

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return err
	}

	if outPath == "" {
		fmt.Println(base64.StdEncoding.EncodeToString(buf.Bytes()))
		return nil
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write overlay: %w", err)
	}
	st := s.inspector.State()
	return output.Print(overlayResult{
		Output:    outPath,
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Scale:     st.Scale,
		Nodes:     st.Nodes,
		Partial:   s.buildErr != nil || st.Building,
		Highlight: st.Highlight,
	})
}
