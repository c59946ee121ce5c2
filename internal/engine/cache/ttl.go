package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL configuration constants and defaults.
const (
	// DefaultTTL is the summary cache lifetime.
	DefaultTTL = 5 * time.Minute

	// MinTTL is the smallest accepted TTL.
	MinTTL = time.Minute

	// MaxTTL is the largest accepted TTL.
	MaxTTL = time.Hour

	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// EnvTTL is the environment variable overriding the summary cache TTL.
	EnvTTL = "ADMINBOARD_CACHE_TTL"
)

// TTL validation errors.
var (
	ErrInvalidTTL = fmt.Errorf("TTL must be between %s and %s", MinTTL, MaxTTL)
)

// ValidateTTL reports whether ttl is within [MinTTL, MaxTTL].
func ValidateTTL(ttl time.Duration) error {
	if ttl < MinTTL || ttl > MaxTTL {
		return fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	return nil
}

// GetTTLFromEnv reads the TTL from the environment or returns DefaultTTL.
// Unparseable or out-of-range values fall back to the default.
func GetTTLFromEnv() time.Duration {
	envVal := os.Getenv(EnvTTL)
	if envVal == "" {
		return DefaultTTL
	}

	ttl, err := ParseTTL(envVal)
	if err != nil {
		return DefaultTTL
	}
	return ttl
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "45s", "5m", "1h", "1h30m".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % minutesPerHour
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, minutes)
}

// ParseTTL parses a TTL given either as integer seconds ("300") or as a
// duration string ("5m", "1h").
func ParseTTL(s string) (time.Duration, error) {
	var ttl time.Duration
	if seconds, err := strconv.Atoi(s); err == nil {
		ttl = time.Duration(seconds) * time.Second
	} else {
		parsed, parseErr := time.ParseDuration(s)
		if parseErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", parseErr)
		}
		ttl = parsed
	}

	if err := ValidateTTL(ttl); err != nil {
		return 0, err
	}
	return ttl, nil
}
