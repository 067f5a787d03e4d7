package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// commandLog records service-manager invocations instead of running them.
type commandLog struct {
	calls [][]string
}

func (l *commandLog) run(name string, args ...string) error {
	l.calls = append(l.calls, append([]string{name}, args...))
	return nil
}

func newController(t *testing.T, goos string) (*Controller, *commandLog) {
	t.Helper()
	log := &commandLog{}
	c := &Controller{
		home: t.TempDir(),
		exe:  "/usr/local/bin/lsq",
		goos: goos,
		run:  log.run,
	}
	return c, log
}

func joined(calls [][]string) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = strings.Join(c, " ")
	}
	return out
}

func TestInstallSystemd(t *testing.T) {
	c, log := newController(t, "linux")
	if err := c.Install(); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	unit := filepath.Join(c.home, ".config", "systemd", "user", "lsq-daemon.service")
	raw, err := os.ReadFile(unit)
	if err != nil {
		t.Fatalf("unit file not written: %v", err)
	}
	for _, want := range []string{
		"ExecStart=/usr/local/bin/lsq daemon run",
		"Restart=always",
		"StandardOutput=append:/tmp/lsq.log",
		"Environment=HOME=" + c.home,
		"WantedBy=default.target",
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("unit file missing %q", want)
		}
	}

	got := joined(log.calls)
	want := []string{
		"systemctl --user daemon-reload",
		"systemctl --user enable --now lsq-daemon",
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("commands = %v, want %v", got, want)
	}
}

func TestUninstallSystemd(t *testing.T) {
	c, log := newController(t, "linux")
	if err := c.Install(); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if err := c.Uninstall(); err != nil {
		t.Fatalf("Uninstall failed: %v", err)
	}

	unit := filepath.Join(c.home, ".config", "systemd", "user", "lsq-daemon.service")
	if _, err := os.Stat(unit); !os.IsNotExist(err) {
		t.Error("unit file survived uninstall")
	}
	got := joined(log.calls)
	if got[len(got)-2] != "systemctl --user disable --now lsq-daemon" {
		t.Errorf("commands = %v, want disable --now before the final reload", got)
	}
}

func TestInstallLaunchd(t *testing.T) {
	c, log := newController(t, "darwin")
	if err := c.Install(); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	plist := filepath.Join(c.home, "Library", "LaunchAgents", "com.lsq.daemon.plist")
	raw, err := os.ReadFile(plist)
	if err != nil {
		t.Fatalf("plist not written: %v", err)
	}
	for _, want := range []string{
		"<string>com.lsq.daemon</string>",
		"<string>/usr/local/bin/lsq</string>",
		"<string>daemon</string>",
		"<string>run</string>",
		"<key>KeepAlive</key>",
		"<string>/tmp/lsq.log</string>",
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("plist missing %q", want)
		}
	}

	got := joined(log.calls)
	if len(got) != 1 || got[0] != "launchctl load -w "+plist {
		t.Errorf("commands = %v, want a single launchctl load", got)
	}
}

func TestStartStopRefresh(t *testing.T) {
	linux, linuxLog := newController(t, "linux")
	if err := linux.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := linux.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := linux.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	got := joined(linuxLog.calls)
	want := []string{
		"systemctl --user start lsq-daemon",
		"systemctl --user stop lsq-daemon",
		"systemctl --user kill -s SIGUSR1 lsq-daemon",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	darwin, darwinLog := newController(t, "darwin")
	if err := darwin.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if darwinLog.calls[0][0] != "launchctl" || darwinLog.calls[0][1] != "start" {
		t.Errorf("darwin start = %v, want launchctl start", darwinLog.calls[0])
	}
}

func TestUnsupportedPlatform(t *testing.T) {
	c, _ := newController(t, "plan9")
	for name, op := range map[string]func() error{
		"Install": c.Install, "Uninstall": c.Uninstall,
		"Start": c.Start, "Stop": c.Stop, "Refresh": c.Refresh,
	} {
		if err := op(); err == nil {
			t.Errorf("%s succeeded on an unsupported platform", name)
		}
	}
}
