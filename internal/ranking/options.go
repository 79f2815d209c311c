package ranking

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultThreshold is the minimum similarity when none is configured.
	DefaultThreshold = 0.6
	// DefaultTopK caps the number of recommendations when none is configured.
	DefaultTopK = 10
)

// ParseThreshold parses a similarity threshold. It must be a finite,
// non-negative number.
func ParseThreshold(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("threshold %q is not a finite number", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("threshold %v is negative", v)
	}
	return v, nil
}

// ResolveThreshold returns the configured threshold, or DefaultThreshold when
// raw is unset or invalid. Invalid values are logged, never returned as errors.
func ResolveThreshold(raw string, logger *zap.Logger) float64 {
	if strings.TrimSpace(raw) == "" {
		return DefaultThreshold
	}

	v, err := ParseThreshold(raw)
	if err != nil {
		if logger != nil {
			logger.Warn("invalid threshold, falling back to default",
				zap.String("threshold", raw),
				zap.Float64("default", DefaultThreshold),
				zap.Error(err),
			)
		}
		return DefaultThreshold
	}
	return v
}

// ResolveTopK returns the configured result cap, or DefaultTopK when raw is
// unset or not an integer. Zero and negative values mean no cap.
func ResolveTopK(raw string, logger *zap.Logger) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTopK
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		if logger != nil {
			logger.Warn("invalid top-k, falling back to default",
				zap.String("top_k", raw),
				zap.Int("default", DefaultTopK),
				zap.Error(err),
			)
		}
		return DefaultTopK
	}
	return v
}
