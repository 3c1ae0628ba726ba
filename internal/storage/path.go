package storage

import (
	"path"
	"strings"
	"time"
)

// keyLayout is the timestamp part of an archive key; it sorts lexically.
const keyLayout = "20060102T150405.000000Z"

// ReportKey builds the archive key for a report generated for username at t.
//
// Example:
//
//	prefix:   "reports"
//	username: "alice"
//	result:   "reports/alice/20240105T103000.000000Z.pdf"
func ReportKey(prefix, username string, t time.Time) string {
	return path.Join(prefix, sanitizeSegment(username), t.UTC().Format(keyLayout)+".pdf")
}

// sanitizeSegment keeps a username from introducing extra path segments.
func sanitizeSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)

	switch s {
	case "", ".", "..":
		return "_"
	}
	return s
}
