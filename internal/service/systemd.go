package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lsq-dev/lsq/internal/config"
)

const unitTemplate = `[Unit]
Description=lsq size precompute daemon

[Service]
ExecStart=%s daemon run
Restart=always
RestartSec=5
StandardOutput=append:%s
StandardError=append:%s
Environment=HOME=%s
Environment=USER=%s

[Install]
WantedBy=default.target
`

func logPath() string { return config.LogPath }

func (c *Controller) unitPath() string {
	return filepath.Join(c.home, ".config", "systemd", "user", UnitName+".service")
}

// SystemdUnit renders the user unit for this controller.
func (c *Controller) SystemdUnit(logPath string) string {
	return fmt.Sprintf(unitTemplate, c.exe, logPath, logPath, c.home, os.Getenv("USER"))
}

func (c *Controller) installSystemd() error {
	path := c.unitPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create systemd user directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.SystemdUnit(logPath())), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := c.run("systemctl", "--user", "daemon-reload"); err != nil {
		return err
	}
	return c.run("systemctl", "--user", "enable", "--now", UnitName)
}

func (c *Controller) uninstallSystemd() error {
	if err := c.run("systemctl", "--user", "disable", "--now", UnitName); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	path := c.unitPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return c.run("systemctl", "--user", "daemon-reload")
}
