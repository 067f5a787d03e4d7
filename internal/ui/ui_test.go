package ui

import "testing"

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{-1, "-"},
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.n); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestHumanCount(t *testing.T) {
	if got := HumanCount(-1); got != "-" {
		t.Errorf("HumanCount(-1) = %q, want dash", got)
	}
	if got := HumanCount(42); got != "42" {
		t.Errorf("HumanCount(42) = %q, want 42", got)
	}
}
