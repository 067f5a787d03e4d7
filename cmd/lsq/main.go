// Command lsq lists directories with precomputed subtree sizes.
//
// The foreground command reads the snapshot the background daemon
// maintains; without a daemon it still works, computing sizes online.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lsq-dev/lsq/internal/config"
	"github.com/lsq-dev/lsq/internal/sizedb"
	"github.com/lsq-dev/lsq/internal/sizes"
	"github.com/lsq-dev/lsq/internal/tree"
	"github.com/lsq-dev/lsq/internal/ui"
)

var (
	listDepth int
	listPlain bool
)

var rootCmd = &cobra.Command{
	Use:   "lsq [path]",
	Short: "Fast directory listing with cached subtree sizes",
	Long: `lsq renders a tree view of a directory with the total size and file
count of every subtree.

Sizes come from a snapshot the lsq daemon precomputes in the background
(see "lsq daemon"), so listings over very large hierarchies render
instantly. Without a snapshot, or for directories that changed since the
last scan, sizes are computed on the fly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,

	SilenceUsage: true,
}

func runList(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("cannot resolve %q: %w", target, err)
	}

	// A missing or mid-swap snapshot degrades to online walks.
	client, err := sizedb.Open(config.SnapshotPath())
	if err != nil {
		client = nil
	} else {
		defer client.Close()
	}
	resolver := sizes.New(client)

	node, err := tree.Build(abs, listDepth, resolver)
	if err != nil {
		return err
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	tree.Render(os.Stdout, node, tree.RenderOptions{
		Plain:    listPlain || !ui.HasColor(),
		MaxWidth: width,
	})
	return nil
}

func main() {
	rootCmd.Flags().IntVarP(&listDepth, "depth", "d", 1, "levels of the tree to expand")
	rootCmd.Flags().BoolVar(&listPlain, "plain", false, "disable colors and styling")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(cacheCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
