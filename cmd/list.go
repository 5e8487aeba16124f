package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/output"
	"github.com/mj1618/atspi-inspector/internal/platform"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List inspectable windows",
	Long: `List the top-level windows of every application on the accessibility bus,
in bus order. The printed index selects a root in the tree, pick and overlay
commands. A window without a name is listed under its application's name.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("app", "", "Filter by application name substring")
	listCmd.Flags().String("window", "", "Filter by window name substring")
}

// listEntry is one root with its index in the unfiltered listing.
type listEntry struct {
	Index      int `yaml:"index" json:"index"`
	model.Root `yaml:",inline"`
}

func runList(cmd *cobra.Command, args []string) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}
	defer provider.Close()

	appName, _ := cmd.Flags().GetString("app")
	window, _ := cmd.Flags().GetString("window")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	entries, err := listRoots(ctx, provider.Lister, appName, window)
	if err != nil {
		return err
	}
	return output.Print(entries)
}

func listRoots(ctx context.Context, lister platform.Lister, appName, window string) ([]listEntry, error) {
	if lister == nil {
		return nil, fmt.Errorf("root listing not available on this platform")
	}
	roots, err := lister.ListRoots(ctx)
	if err != nil {
		return nil, err
	}
	entries := []listEntry{}
	for i, r := range roots {
		if len(filterRoots([]model.Root{r}, appName, window)) == 0 {
			continue
		}
		entries = append(entries, listEntry{Index: i, Root: r})
	}
	return entries, nil
}
