package webcache

import "time"

// httpDateLayout is RFC 1123 with a fixed "GMT" zone literal, matching the
// display format the original implementation uses
// ("%a, %d %b %Y %H:%M:%S GMT").
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// parseHTTPDateLayouts are the zone spellings tolerated when parsing an
// inbound Last-Modified/If-Modified-Since header (SPEC_FULL §9, decision 3).
// Anything else fails to parse and the header is treated as absent.
var parseHTTPDateLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05 GMT",
	"Mon, 02 Jan 2006 15:04:05 UTC",
}

// parseHTTPDate parses an HTTP-date string, tolerating GMT and UTC zone
// literals and rejecting everything else by returning ok=false (fail open:
// the caller treats the header as absent rather than erroring).
func parseHTTPDate(s string) (t time.Time, ok bool) {
	for _, layout := range parseHTTPDateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// makeHTTPDate formats t as an RFC1123-in-GMT HTTP-date string.
func makeHTTPDate(t time.Time) string {
	return t.UTC().Format(httpDateLayout)
}

// lastModifiedFor computes metadata.last_modified per spec §4.4: the given
// wall-clock reading, or the content's own Last-Modified header, whichever
// is older. Never advertise a modification time newer than the moment this
// cache observed the content, nor newer than the origin's own claim.
func lastModifiedFor(now float64, content *Content) string {
	nowTime := time.Unix(0, int64(now*1e9)).UTC()

	if hdr, ok := content.Headers["Last-Modified"]; ok {
		if parsed, ok := parseHTTPDate(hdr); ok {
			if parsed.Before(nowTime) {
				return makeHTTPDate(parsed)
			}
		}
	}
	return makeHTTPDate(nowTime)
}
