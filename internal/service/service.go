// Package service installs and controls the per-user daemon service:
// a launchd agent on macOS, a systemd user unit on Linux. The units keep
// the daemon restarted, redirect its output to the shared log path, and
// propagate HOME and USER so the daemon resolves the right cache
// directory.
package service

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Label identifies the launchd agent; UnitName the systemd user unit.
const (
	Label    = "com.lsq.daemon"
	UnitName = "lsq-daemon"
)

// Controller performs service-manager operations for the current user.
type Controller struct {
	home string
	exe  string
	goos string

	// run invokes the platform service manager; swapped out in tests.
	run func(name string, args ...string) error
}

// New resolves the current user's home and the running executable.
func New() (*Controller, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable path: %w", err)
	}
	return &Controller{home: home, exe: exe, goos: runtime.GOOS, run: runCommand}, nil
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}

// Install writes the service unit and activates it.
func (c *Controller) Install() error {
	switch c.goos {
	case "darwin":
		return c.installLaunchd()
	case "linux":
		return c.installSystemd()
	}
	return c.unsupported()
}

// Uninstall deactivates the service and removes its unit file.
func (c *Controller) Uninstall() error {
	switch c.goos {
	case "darwin":
		return c.uninstallLaunchd()
	case "linux":
		return c.uninstallSystemd()
	}
	return c.unsupported()
}

// Start asks the service manager to start the daemon.
func (c *Controller) Start() error {
	switch c.goos {
	case "darwin":
		return c.run("launchctl", "start", Label)
	case "linux":
		return c.run("systemctl", "--user", "start", UnitName)
	}
	return c.unsupported()
}

// Stop asks the service manager to stop the daemon.
func (c *Controller) Stop() error {
	switch c.goos {
	case "darwin":
		return c.run("launchctl", "stop", Label)
	case "linux":
		return c.run("systemctl", "--user", "stop", UnitName)
	}
	return c.unsupported()
}

// Refresh delivers the rescan signal to the running daemon.
func (c *Controller) Refresh() error {
	switch c.goos {
	case "darwin":
		return c.run("launchctl", "kill", "SIGUSR1",
			fmt.Sprintf("gui/%d/%s", os.Getuid(), Label))
	case "linux":
		return c.run("systemctl", "--user", "kill", "-s", "SIGUSR1", UnitName)
	}
	return c.unsupported()
}

func (c *Controller) unsupported() error {
	return fmt.Errorf("no service manager support on %s; run the daemon directly with `lsq daemon run`", c.goos)
}
