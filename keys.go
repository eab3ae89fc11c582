package webcache

import "fmt"

// metadataKey returns the KV key for a URL's metadata record.
func metadataKey(url string) string {
	return "metadata_" + url
}

// contentKey returns the KV key for a content record identified by a
// reservation token (session, reservation). The pair is unique across a
// metadata's lifetime, so a metadata's content_key never collides with
// content left over from a prior (evicted) lifetime of the same URL.
func contentKey(url string, session float64, reservation int) string {
	return fmt.Sprintf("body_%s_%s-%d", url, formatSession(session), reservation)
}
