package service

import (
	"fmt"
	"os"
	"path/filepath"
)

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>daemon</string>
		<string>run</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>%s</string>
	<key>StandardErrorPath</key>
	<string>%s</string>
	<key>EnvironmentVariables</key>
	<dict>
		<key>HOME</key>
		<string>%s</string>
		<key>USER</key>
		<string>%s</string>
	</dict>
</dict>
</plist>
`

func (c *Controller) plistPath() string {
	return filepath.Join(c.home, "Library", "LaunchAgents", Label+".plist")
}

// LaunchdPlist renders the agent property list for this controller.
func (c *Controller) LaunchdPlist(logPath string) string {
	return fmt.Sprintf(plistTemplate, Label, c.exe, logPath, logPath, c.home, os.Getenv("USER"))
}

func (c *Controller) installLaunchd() error {
	path := c.plistPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create LaunchAgents directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.LaunchdPlist(logPath())), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return c.run("launchctl", "load", "-w", path)
}

func (c *Controller) uninstallLaunchd() error {
	path := c.plistPath()
	// Unload before removing; an already-unloaded agent is not an error
	// worth failing the uninstall over.
	if err := c.run("launchctl", "unload", path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
