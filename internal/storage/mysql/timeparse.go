package mysql

import (
	"strings"
	"time"
)

// Layouts for the best-effort rung: driver DATETIME strings, bare ISO
// variants, and date-only values seen in backend exports.
var looseLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime normalizes a timestamp string from the backend into a usable
// time.Time. It never fails: the backend has been observed to emit
// inconsistent fractional-second precision, so parsing walks a fallback
// ladder and bottoms out at the current process time.
func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)

	// 1) direct ISO-8601, "Z" or numeric offset
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}

	// 2) pad/truncate fractional digits to exactly 6 and retry
	if fixed, ok := normalizeFraction(raw); ok {
		if t, err := time.Parse(time.RFC3339Nano, fixed); err == nil {
			return t
		}
	}

	// 3) best-effort layouts without a timezone, taken as UTC
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}

	// 4) strip a trailing "Z" and retry the loose layouts
	if s := strings.TrimSuffix(raw, "Z"); s != raw {
		for _, layout := range looseLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}

	// 5) unparseable; fall back to now
	return time.Now().UTC()
}

// normalizeFraction rewrites the fractional-second component to exactly six
// digits, e.g. "…47.33+00:00" -> "…47.330000+00:00". Returns false when the
// string has no fractional component to fix.
func normalizeFraction(raw string) (string, bool) {
	dot := strings.IndexByte(raw, '.')
	if dot < 0 {
		return "", false
	}
	// fractional part runs until the timezone marker (or end of string)
	end := len(raw)
	for i := dot + 1; i < len(raw); i++ {
		c := raw[i]
		if c == '+' || c == '-' || c == 'Z' || c == ' ' {
			end = i
			break
		}
		if c < '0' || c > '9' {
			return "", false
		}
	}
	frac := raw[dot+1 : end]
	if frac == "" {
		return "", false
	}
	if len(frac) < 6 {
		frac += strings.Repeat("0", 6-len(frac))
	} else {
		frac = frac[:6]
	}
	return raw[:dot+1] + frac + raw[end:], true
}
