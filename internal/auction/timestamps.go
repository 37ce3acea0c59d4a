package auction

import (
	"fmt"
	"strings"
	"time"
)

// naiveLayouts are accepted for timestamps that carry no zone information.
// Such values are always read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeUTC converts t to UTC. Every timestamp entering the system passes
// through here before it is compared or stored.
func NormalizeUTC(t time.Time) time.Time {
	return t.UTC()
}

// ParseTimestamp parses an RFC 3339 timestamp, or a naive one which is taken as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return NormalizeUTC(t), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
