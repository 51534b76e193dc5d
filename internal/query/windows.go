package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Downsampling window sizes by requested range, coarser for longer
// ranges so response size stays bounded. A fixed lookup table, not a
// continuous function.
var downsampleWindows = []struct {
	maxRange time.Duration
	window   time.Duration
}{
	{24 * time.Hour, 5 * time.Minute},
	{7 * 24 * time.Hour, 30 * time.Minute},
	{30 * 24 * time.Hour, 2 * time.Hour},
}

// fallbackWindow applies to ranges beyond the table (e.g. a year).
const fallbackWindow = 24 * time.Hour

// windowFor returns the downsampling window for a requested range.
func windowFor(rangeDur time.Duration) time.Duration {
	for _, entry := range downsampleWindows {
		if rangeDur <= entry.maxRange {
			return entry.window
		}
	}
	return fallbackWindow
}

// parseRangeStart parses a history range start like "-24h" or "-7d" into
// a positive lookback duration.
//
// The value must be a negative offset from now. Day, week, and year
// suffixes are accepted beyond what time.ParseDuration supports.
func parseRangeStart(raw string) (time.Duration, error) {
	if !strings.HasPrefix(raw, "-") {
		return 0, fmt.Errorf("%w: %q must be a negative offset", ErrInvalidRange, raw)
	}

	lookback := raw[1:]
	if parsed, err := time.ParseDuration(lookback); err == nil {
		if parsed <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidRange, raw)
		}
		return parsed, nil
	}

	parsed, err := parseExtendedDuration(lookback)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRange, raw)
	}
	return parsed, nil
}

// parseExtendedDuration handles day/week/year suffixes not supported by
// time.ParseDuration.
func parseExtendedDuration(raw string) (time.Duration, error) {
	if len(raw) < 2 {
		return 0, fmt.Errorf("invalid duration")
	}

	number := raw[:len(raw)-1]
	unit := raw[len(raw)-1]

	multiplier, ok := map[byte]time.Duration{
		'd': 24 * time.Hour,
		'w': 7 * 24 * time.Hour,
		'y': 365 * 24 * time.Hour,
	}[unit]
	if !ok {
		return 0, fmt.Errorf("invalid duration")
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration")
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid duration")
	}

	return time.Duration(value * float64(multiplier)), nil
}
