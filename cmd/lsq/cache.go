package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lsq-dev/lsq/internal/config"
	"github.com/lsq-dev/lsq/internal/sizedb"
	"github.com/lsq-dev/lsq/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the size snapshot",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the snapshot files",
	Long: `Delete the live snapshot, any scratch left by an interrupted scan, and
their WAL sidecars. The daemon rebuilds the snapshot on its next scan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		live := config.SnapshotPath()
		removed := 0
		for _, p := range []string{
			live, live + "-wal", live + "-shm",
			live + ".tmp", live + ".tmp-wal", live + ".tmp-shm",
		} {
			err := os.Remove(p)
			if err == nil {
				removed++
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", p, err)
			}
		}
		fmt.Printf("Removed %d cache file(s).\n", removed)
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot row count and on-disk size",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sizedb.Open(config.SnapshotPath())
		if err != nil {
			fmt.Println("No snapshot. Start the daemon with `lsq daemon install`.")
			return nil
		}
		defer client.Close()

		n, err := client.Count()
		if err != nil {
			return err
		}
		fmt.Printf("Directories cached: %d\n", n)
		if st, err := os.Stat(config.SnapshotPath()); err == nil {
			fmt.Printf("On-disk size:       %s\n", ui.HumanSize(st.Size()))
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
}
