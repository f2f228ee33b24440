/*
Package config handles loading and saving duriancare configuration.

Configuration is stored in ~/.duriancare.json. Environment variables
(DURIANCARE_*, optionally from a .env file) override file values at
startup without being written back.

Schema:
  {
    "dataDir": "/home/me/.duriancare",
    "classifier": {"minScore": 88, "maxScore": 99, "latencyMs": 2200},
    "capture": {
      "quality": 85,
      "variety": "Puyat",
      "dateLayout": "1/2/2006",
      "timeLayout": "3:04 PM"
    },
    "server": {"addr": "127.0.0.1:8088", "sessionTtlSeconds": 600, "maxUploadMb": 10},
    "preferences": {"haptic": true}
  }
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/khanglvm/duriancare/internal/capture"
	"github.com/khanglvm/duriancare/internal/imaging"
	"github.com/khanglvm/duriancare/internal/ripeness"
	"github.com/khanglvm/duriancare/internal/storage"
)

// Config represents the root configuration structure.
type Config struct {
	// DataDir holds the record database. Empty means ~/.duriancare.
	DataDir string `json:"dataDir,omitempty" env:"DURIANCARE_DATA_DIR"`

	Classifier  Classifier  `json:"classifier"`
	Capture     Capture     `json:"capture"`
	Server      Server      `json:"server"`
	Preferences Preferences `json:"preferences"`
}

// Classifier configures the placeholder classifier.
type Classifier struct {
	// MinScore and MaxScore bound the reported confidence.
	MinScore float64 `json:"minScore" env:"DURIANCARE_MIN_SCORE"`
	MaxScore float64 `json:"maxScore" env:"DURIANCARE_MAX_SCORE"`

	// LatencyMs is the artificial scan delay.
	LatencyMs int `json:"latencyMs" env:"DURIANCARE_LATENCY_MS"`
}

// Capture configures how stills become records.
type Capture struct {
	// Quality is the JPEG quality, 1 to 100.
	Quality int `json:"quality" env:"DURIANCARE_JPEG_QUALITY"`

	// Variety is the cultivar stamped on every record.
	Variety string `json:"variety" env:"DURIANCARE_VARIETY"`

	DateLayout string `json:"dateLayout" env:"DURIANCARE_DATE_LAYOUT"`
	TimeLayout string `json:"timeLayout" env:"DURIANCARE_TIME_LAYOUT"`
}

// Server configures the local HTTP API.
type Server struct {
	Addr string `json:"addr" env:"DURIANCARE_ADDR"`

	// SessionTTLSeconds expires idle capture sessions.
	SessionTTLSeconds int `json:"sessionTtlSeconds" env:"DURIANCARE_SESSION_TTL_SECONDS"`

	// MaxUploadMB caps the size of an uploaded image.
	MaxUploadMB int64 `json:"maxUploadMb" env:"DURIANCARE_MAX_UPLOAD_MB"`
}

// Preferences holds user toggles from the info screen.
type Preferences struct {
	// Haptic enables vibration feedback in the front end.
	Haptic bool `json:"haptic" env:"DURIANCARE_HAPTIC"`
}

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		Classifier: Classifier{
			MinScore:  ripeness.DefaultMinScore,
			MaxScore:  ripeness.DefaultMaxScore,
			LatencyMs: int(ripeness.DefaultLatency / time.Millisecond),
		},
		Capture: Capture{
			Quality:    imaging.DefaultQuality,
			Variety:    storage.DefaultVariety,
			DateLayout: capture.DefaultDateLayout,
			TimeLayout: capture.DefaultTimeLayout,
		},
		Server: Server{
			Addr:              "127.0.0.1:8088",
			SessionTTLSeconds: 600,
			MaxUploadMB:       10,
		},
		Preferences: Preferences{
			Haptic: true,
		},
	}
}

// DefaultConfigPath returns the path to ~/.duriancare.json
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".duriancare.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadOrCreate reads the configuration at path, writing the defaults there
// first if the file does not exist yet.
func LoadOrCreate(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if err == nil {
		return cfg, nil
	}

	var notFound *ConfigNotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	cfg = NewConfig()
	if err := Save(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DBPath returns the record database path.
func (c *Config) DBPath() (string, error) {
	if c.DataDir == "" {
		return storage.DefaultDBPath()
	}
	return filepath.Join(c.DataDir, "store.db"), nil
}

// Latency returns the classifier latency as a duration.
func (c *Config) Latency() time.Duration {
	return time.Duration(c.Classifier.LatencyMs) * time.Millisecond
}

// SessionTTL returns the capture session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTLSeconds) * time.Second
}
