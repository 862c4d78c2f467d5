// Package format holds the pure presentation helpers shared by table columns,
// detail views and CLI printers.
package format

import (
	"fmt"
	"time"
)

// FormatAge renders the time elapsed between t and now in the largest whole
// unit: seconds, minutes, hours or days. A zero or future t renders as "0s".
func FormatAge(t, now time.Time) string {
	if t.IsZero() || t.After(now) {
		return "0s"
	}
	age := now.Sub(t)

	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours())/24)
	}
}

// Age is FormatAge relative to the current time
func Age(t time.Time) string {
	return FormatAge(t, time.Now())
}

// FormatAgeString parses an RFC3339 timestamp as found in object metadata.
// Unparsable input renders as "0s".
func FormatAgeString(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return "0s"
	}
	return FormatAge(t, now)
}

// FormatDuration renders a duration the way job durations are shown ("1m30s", "2h5m")
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h >= 48:
		return fmt.Sprintf("%dd", h/24)
	case h > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case m > 0:
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
