package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimezone supports:
// - IANA names like "Europe/Madrid"
// - "UTC" / "GMT"
// - fixed offsets: "UTC+3", "UTC-7", "UTC+5:30", "+3", "-03:30"
func ParseTimezone(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" || strings.EqualFold(tz, "UTC") || strings.EqualFold(tz, "GMT") || strings.EqualFold(tz, "Etc/UTC") {
		return time.UTC, nil
	}

	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}

	offSec, ok := parseUTCOffset(tz)
	if !ok {
		return nil, fmt.Errorf("unsupported timezone %q", tz)
	}
	return time.FixedZone(formatUTCOffset(offSec), offSec), nil
}

func parseUTCOffset(tz string) (int, bool) {
	s := tz
	if strings.HasPrefix(strings.ToUpper(s), "UTC") {
		s = strings.TrimSpace(s[3:])
		if s == "" {
			return 0, true
		}
	}
	if len(s) < 2 {
		return 0, false
	}

	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}

	hh, mm, found := strings.Cut(s[1:], ":")
	if !found {
		mm = "0"
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 14 || m < 0 || m >= 60 {
		return 0, false
	}
	return sign * (h*3600 + m*60), true
}

func formatUTCOffset(offsetSec int) string {
	sign := "+"
	if offsetSec < 0 {
		sign = "-"
		offsetSec = -offsetSec
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offsetSec/3600, (offsetSec%3600)/60)
}
