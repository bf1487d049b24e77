package buckets

import (
	"regexp"
	"strings"
)

var (
	uuidSegment    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	numericSegment = regexp.MustCompile(`^[0-9]+$`)
	hexSegment     = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	ulidSegment    = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
)

// SanitizePath strips the query string and fragment from a page path and
// replaces any path segment that looks like an identifier (UUID, ULID,
// numeric id, long hex token) with the ":id" placeholder. The result is
// safe to attach to outgoing events.
func SanitizePath(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if uuidSegment.MatchString(seg) || numericSegment.MatchString(seg) ||
			hexSegment.MatchString(seg) || ulidSegment.MatchString(seg) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
