package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
)

var durationUnits = map[byte]time.Duration{
	'w': 7 * 24 * time.Hour,
	'd': 24 * time.Hour,
	'h': time.Hour,
	'm': time.Minute,
	's': time.Second,
}

// ParseDuration converts strings such as "1w2d", "10h10m" or "90s" into a duration.
// Every number must carry one of the w/d/h/m/s suffixes.
func ParseDuration(raw string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", entities.ErrInvalidDuration)
	}

	var total time.Duration
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			continue
		}
		unit, ok := durationUnits[c]
		if !ok {
			return 0, fmt.Errorf("%w: unknown unit %q in %q", entities.ErrInvalidDuration, c, raw)
		}
		if i == start {
			return 0, fmt.Errorf("%w: unit %q without a number in %q", entities.ErrInvalidDuration, c, raw)
		}
		n, err := strconv.ParseInt(s[start:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", entities.ErrInvalidDuration, err)
		}
		total += time.Duration(n) * unit
		start = i + 1
	}

	if start != len(s) {
		return 0, fmt.Errorf("%w: trailing number without unit in %q", entities.ErrInvalidDuration, raw)
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive", entities.ErrInvalidDuration)
	}
	return total, nil
}
