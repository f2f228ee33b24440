package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error

	cl := c.Classifier
	if cl.MinScore < 0 || cl.MaxScore > 100 || cl.MinScore > cl.MaxScore {
		errs = append(errs, fmt.Errorf("classifier: score band %.1f-%.1f must lie within 0-100 with min <= max", cl.MinScore, cl.MaxScore))
	}
	if cl.LatencyMs < 0 {
		errs = append(errs, fmt.Errorf("classifier: latencyMs must not be negative"))
	}

	cp := c.Capture
	if cp.Quality < 1 || cp.Quality > 100 {
		errs = append(errs, fmt.Errorf("capture: quality %d must be between 1 and 100", cp.Quality))
	}
	if strings.TrimSpace(cp.Variety) == "" {
		errs = append(errs, fmt.Errorf("capture: variety is required"))
	}
	if !formatsTime(cp.DateLayout) {
		errs = append(errs, fmt.Errorf("capture: dateLayout %q is not a time layout", cp.DateLayout))
	}
	if !formatsTime(cp.TimeLayout) {
		errs = append(errs, fmt.Errorf("capture: timeLayout %q is not a time layout", cp.TimeLayout))
	}

	sv := c.Server
	if _, _, err := net.SplitHostPort(sv.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server: addr %q: %v", sv.Addr, err))
	}
	if sv.SessionTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("server: sessionTtlSeconds must be positive"))
	}
	if sv.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("server: maxUploadMb must be positive"))
	}

	return errors.Join(errs...)
}

// formatsTime reports whether layout renders something that varies with
// the time, which rules out empty and literal-only layouts.
func formatsTime(layout string) bool {
	if strings.TrimSpace(layout) == "" {
		return false
	}
	a := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	b := time.Date(2012, 11, 22, 16, 17, 18, 0, time.UTC)
	return a.Format(layout) != b.Format(layout)
}
