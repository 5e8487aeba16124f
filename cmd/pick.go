package cmd

import (
	"fmt"

	"github.com/mj1618/atspi-inspector/internal/output"
	"github.com/mj1618/atspi-inspector/internal/pick"
	"github.com/spf13/cobra"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Find the deepest accessible object under a point",
	Long: `Build a root's tree and report the deepest object whose extents contain the
point. Where siblings overlap, the first child in bus order wins.

--at is in device pixels on an overlay of --viewport size. It is divided by
--device-scale and by the overlay scale, min(viewport/root, 1), to get a
position in the root's coordinates. Without --viewport the overlay is the
root's own size and --at is simply window coordinates.

Examples:
  atspi-inspector pick --app gedit --at 120,40
  atspi-inspector pick --index 0 --viewport 640x400 --at 100,100`,
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
	addRootFlags(pickCmd)
	addViewportFlags(pickCmd)
	pickCmd.Flags().String("at", "", "Point x,y to pick at (required)")
	_ = pickCmd.MarkFlagRequired("at")
}

func runPick(cmd *cobra.Command, args []string) error {
	vp, err := getViewport(cmd)
	if err != nil {
		return err
	}
	at, _ := cmd.Flags().GetString("at")
	x, y, err := devicePoint(vp, at)
	if err != nil {
		return err
	}

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

	scale := s.inspector.Scale()
	result := output.PickResult{Point: pick.ToTreeSpace(x, y, scale), Scale: scale}
	if hit, ok := s.inspector.Pick(x, y); ok {
		result.Hit = &hit
	}
	return output.Print(result)
}
