// Package config loads the daemon configuration file.
//
// The file is line-oriented key=value text at <cache dir>/config.
// Recognized keys:
//
//	scan_interval   seconds between daemon scans (default 1800)
//	file_threshold  minimum file count for a directory to be cached (default 1000)
//	same_device     walk policy: stay on the root's device (default false)
//
// Unrecognized keys and malformed values are ignored; a missing or
// unreadable file yields all defaults. Loading never fails.
package config

import (
	"bytes"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultScanInterval  = 1800 * time.Second
	DefaultFileThreshold = 1000
)

// Config is the daemon's effective configuration.
type Config struct {
	ScanInterval  time.Duration
	FileThreshold int64
	SameDevice    bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ScanInterval:  DefaultScanInterval,
		FileThreshold: DefaultFileThreshold,
	}
}

var keyValueLine = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// Load reads path and overlays recognized keys on the defaults.
func Load(path string) Config {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	// Drop comments and anything that is not key=value before handing the
	// rest to viper, so one malformed line cannot poison the file.
	var buf bytes.Buffer
	for _, line := range bytes.Split(raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if keyValueLine.Match(line) {
			buf.Write(line)
			buf.WriteByte('\n')
		}
	}

	v := viper.New()
	v.SetConfigType("env")
	if err := v.ReadConfig(&buf); err != nil {
		return cfg
	}

	if s := v.GetString("scan_interval"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			cfg.ScanInterval = time.Duration(n) * time.Second
		}
	}
	if s := v.GetString("file_threshold"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
			cfg.FileThreshold = n
		}
	}
	if s := v.GetString("same_device"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			cfg.SameDevice = b
		}
	}
	return cfg
}
