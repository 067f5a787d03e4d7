package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lsq-dev/lsq/internal/config"
	"github.com/lsq-dev/lsq/internal/daemon"
	"github.com/lsq-dev/lsq/internal/service"
	"github.com/lsq-dev/lsq/internal/sizedb"
	"github.com/lsq-dev/lsq/internal/ui"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the background size-precompute daemon",
	Long: `The daemon walks the filesystem on an interval and caches per-directory
sizes, so foreground listings render without touching the whole tree.

Configuration lives in ` + config.FilePath() + ` as key=value lines:
scan_interval (seconds, default 1800) and file_threshold (default 1000).`,
}

var daemonRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daemon in the foreground",
	Long: `Run the scan loop in the current process. This is what the installed
service unit executes; run it directly for debugging or on platforms
without a supported service manager.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := daemon.New(daemon.Options{})
		return d.Run(context.Background())
	},
}

var daemonInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install and start the per-user daemon service",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := service.New()
		if err != nil {
			return err
		}
		if err := c.Install(); err != nil {
			return err
		}
		fmt.Println("Daemon service installed and started.")
		return nil
	},
}

var daemonUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop and remove the daemon service",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := service.New()
		if err != nil {
			return err
		}
		if err := c.Uninstall(); err != nil {
			return err
		}
		fmt.Println("Daemon service removed.")
		return nil
	},
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the installed daemon service",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := service.New()
		if err != nil {
			return err
		}
		return c.Start()
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := service.New()
		if err != nil {
			return err
		}
		return c.Stop()
	},
}

var daemonRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Trigger an immediate rescan",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := service.New()
		if err != nil {
			return err
		}
		if err := c.Refresh(); err != nil {
			return err
		}
		fmt.Println("Rescan requested.")
		return nil
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon status and snapshot statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := "not running"
		if raw, err := os.ReadFile(config.StatusPath()); err == nil {
			status = string(bytes.TrimSpace(raw))
		}
		styled := status
		if ui.HasColor() {
			switch status {
			case "idle":
				styled = ui.Size.Render(status)
			case "scanning":
				styled = ui.Warn.Render(status)
			default:
				styled = ui.Err.Render(status)
			}
		}
		fmt.Printf("Daemon:   %s\n", styled)

		if client, err := sizedb.Open(config.SnapshotPath()); err == nil {
			defer client.Close()
			if n, err := client.Count(); err == nil {
				fmt.Printf("Snapshot: %d directories cached\n", n)
			}
			if st, err := os.Stat(config.SnapshotPath()); err == nil {
				fmt.Printf("          %s on disk, updated %s\n",
					ui.HumanSize(st.Size()), st.ModTime().Format("2006-01-02 15:04:05"))
			}
		} else {
			fmt.Println("Snapshot: none")
		}
		fmt.Printf("Log:      %s\n", config.LogPath)
		return nil
	},
}

func init() {
	daemonCmd.AddCommand(daemonRunCmd)
	daemonCmd.AddCommand(daemonInstallCmd)
	daemonCmd.AddCommand(daemonUninstallCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonRefreshCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}
