package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func skipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
}

func TestLoadFromEnhancedErrors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		testPath := filepath.Join(t.TempDir(), "nonexistent.json")

		_, err := LoadFrom(testPath)
		if err == nil {
			t.Fatal("LoadFrom should error for nonexistent file")
		}

		var notFound *ConfigNotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("expected ConfigNotFoundError, got %T", err)
		}
		if !strings.Contains(err.Error(), "💡") {
			t.Errorf("error should contain helpful hint, got: %v", err)
		}
		if !strings.Contains(err.Error(), "duriancare home") {
			t.Errorf("error should mention how to create the file, got: %v", err)
		}
	})

	t.Run("permission denied", func(t *testing.T) {
		skipIfRoot(t)

		testPath := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(testPath, []byte(`{}`), 0000); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}
		defer os.Chmod(testPath, 0644)

		_, err := LoadFrom(testPath)
		if err == nil {
			t.Fatal("LoadFrom should error for permission denied")
		}
		if !strings.Contains(err.Error(), "permission denied") {
			t.Errorf("error should mention permission denied, got: %v", err)
		}
		if !strings.Contains(err.Error(), "chmod 644") {
			t.Errorf("error should suggest chmod fix, got: %v", err)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		testPath := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(testPath, []byte(`{invalid json}`), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := LoadFrom(testPath)
		if err == nil {
			t.Fatal("LoadFrom should error for invalid JSON")
		}

		var invalid *InvalidConfigError
		if !errors.As(err, &invalid) {
			t.Errorf("expected InvalidConfigError, got %T", err)
		}
		if !strings.Contains(err.Error(), ".bak") {
			t.Errorf("error should mention .bak file, got: %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		testPath := filepath.Join(t.TempDir(), "config.json")
		body := `{"classifier": {"minScore": 99, "maxScore": 50}}`
		if err := os.WriteFile(testPath, []byte(body), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := LoadFrom(testPath)
		if err == nil {
			t.Fatal("LoadFrom should reject an inverted score band")
		}
		if !strings.Contains(err.Error(), "score band") {
			t.Errorf("error should name the bad setting, got: %v", err)
		}
	})
}

func TestLoadFromPartialConfigKeepsDefaults(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.json")

	partial := `{
		"capture": {"variety": "Puyat", "quality": 70},
		"preferences": {"haptic": false}
	}`
	if err := os.WriteFile(testPath, []byte(partial), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	cfg, err := LoadFrom(testPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Capture.Quality != 70 {
		t.Errorf("expected quality 70, got %d", cfg.Capture.Quality)
	}
	if cfg.Capture.DateLayout != "1/2/2006" {
		t.Errorf("missing dateLayout should keep default, got %q", cfg.Capture.DateLayout)
	}
	if cfg.Classifier.MaxScore != 99 {
		t.Errorf("missing classifier should keep defaults, got max %.1f", cfg.Classifier.MaxScore)
	}
	if cfg.Preferences.Haptic {
		t.Error("expected haptic off")
	}
}
