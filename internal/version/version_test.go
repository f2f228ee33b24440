package version

import "testing"

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{"dev build", "dev", "none", "unknown", "dev (development build)"},
		{"release", "v1.0.0", "abc1234", "2026-10-15", "v1.0.0 (commit: abc1234, built: 2026-10-15)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatVersion(tt.version, tt.commit, tt.date); got != tt.want {
				t.Errorf("FormatVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCurrent(t *testing.T) {
	saved := Current()
	t.Cleanup(func() { Version, Commit, Date = saved.Version, saved.Commit, saved.Date })

	Version, Commit, Date = "v0.3.0", "abc1234", "2026-10-15"
	b := Current()
	if b.Dev() {
		t.Error("stamped build should not be dev")
	}
	if got := b.String(); got != "v0.3.0 (commit: abc1234, built: 2026-10-15)" {
		t.Errorf("String() = %q", got)
	}

	Version = "dev"
	if !Current().Dev() {
		t.Error("unstamped build should be dev")
	}
	if got := GetVersion(); got != "dev (development build)" {
		t.Errorf("GetVersion() = %q", got)
	}
}
