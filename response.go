package webcache

import "net/http"

// dropHeaders are stripped from a cached content record before it is
// emitted to the client: hop-by-hop headers, plus the cache-managed
// Last-Modified/Vary that this layer synthesizes or has already accounted
// for (spec §4.5).
var dropHeaders = map[string]bool{
	"Last-Modified":     true,
	"Vary":              true,
	"Server":            true,
	"Keep-Alive":        true,
	"Connection":        true,
	"Transfer-Encoding": true,
	"Content-Encoding":  true,
}

// buildResponse assembles the client-facing Response from a metadata and its
// (already loaded) content entry.
func buildResponse(m *Metadata, content *Content) *Response {
	headers := make(http.Header, len(content.Headers)+1)
	for name, value := range content.Headers {
		if dropHeaders[http.CanonicalHeaderKey(name)] {
			continue
		}
		headers.Set(name, value)
	}
	headers.Set("Last-Modified", m.LastModified)

	return &Response{
		Status:     content.Status,
		StatusCode: statusCodeOf(content.Status),
		Headers:    headers,
		Body:       content.Content,
	}
}
