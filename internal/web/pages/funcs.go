package pages

import (
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
)

var funcs = template.FuncMap{
	"relativeTime": FormatRelativeTime,
	"count":        FormatCount,
	"urlName":      URLName,
}

// FormatRelativeTime formats a time.Time as a relative time string like "3 minutes ago".
// The zero time renders as "never".
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return timediff.TimeDiff(t)
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// URLName turns a region name into its /state/ path segment.
func URLName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
