package config

import (
	"fmt"
	"io/fs"
)

// PermissionError is returned when the settings file or its directory
// cannot be read or written.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string // shell command that restores access
	Details string
}

func (e *PermissionError) Error() string {
	msg := fmt.Sprintf("permission denied (cannot %s duriancare settings): %s\n", e.Op, e.Path)
	if e.Details != "" {
		msg += e.Details + "\n"
	}
	msg += "💡 Fix: " + e.Fix
	return msg
}

// Is lets callers match with errors.Is(err, fs.ErrPermission).
func (e *PermissionError) Is(target error) bool {
	return target == fs.ErrPermission
}

// ConfigNotFoundError is returned by LoadFrom when no settings file exists.
// LoadOrCreate treats it as a first run.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint)
}

// Is lets callers match with errors.Is(err, fs.ErrNotExist).
func (e *ConfigNotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// InvalidConfigError reports settings that cannot be parsed or fail
// validation. Path is "environment" when the bad value came from a
// DURIANCARE_* variable.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string

	// Err is the parse or validation failure, if any.
	Err error
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config: %s\n", e.Path)
	if e.Message != "" {
		msg += e.Message + "\n"
	}
	if e.Hint != "" {
		msg += "💡 " + e.Hint
	}
	return msg
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }
