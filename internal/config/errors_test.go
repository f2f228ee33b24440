package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestErrorsMatchFilesystemSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"not found is ErrNotExist", &ConfigNotFoundError{Path: "x"}, fs.ErrNotExist, true},
		{"not found is not ErrPermission", &ConfigNotFoundError{Path: "x"}, fs.ErrPermission, false},
		{"permission is ErrPermission", &PermissionError{Path: "x", Op: "read"}, fs.ErrPermission, true},
		{"permission is not ErrNotExist", &PermissionError{Path: "x", Op: "read"}, fs.ErrNotExist, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermissionErrorMessage(t *testing.T) {
	err := &PermissionError{
		Path:    "/home/farmer/.duriancare.json",
		Op:      "write",
		Fix:     "chmod u+w /home/farmer/.duriancare.json",
		Details: "Config file is read-only",
	}

	msg := err.Error()
	for _, want := range []string{"cannot write duriancare settings", "read-only", "💡 Fix: chmod u+w"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q should contain %q", msg, want)
		}
	}
}

func TestInvalidConfigUnwrapsCause(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := LoadFrom(path)

	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidConfigError, got %T", err)
	}
	if invalid.Err == nil || errors.Unwrap(invalid) != invalid.Err {
		t.Errorf("expected the parse error to be wrapped, got %v", invalid.Err)
	}
}
