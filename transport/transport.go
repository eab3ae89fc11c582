// Package transport binds webcache.Handler to net/http. The original
// implementation spoke WSGI/CGI (decoding HTTP_-prefixed environ keys back
// into header names); this package is the idiomatic Go equivalent of that
// same "external transport binding" collaborator named in spec §2 — only
// GET is forwarded, matching the spec's non-goal of not forwarding request
// bodies.
package transport

import (
	"io"
	"net/http"

	"github.com/mchtech/webcache"
)

// Handler adapts a webcache.Handler into an http.Handler.
type Handler struct {
	Cache *webcache.Handler
}

// New returns an http.Handler that serves every request through cache.
func New(cache *webcache.Handler) http.Handler {
	return &Handler{Cache: cache}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "only GET is supported", http.StatusMethodNotAllowed)
		return
	}

	req := webcache.Request{
		URL:     r.URL.RequestURI(),
		Time:    h.Cache.Clock.Now(),
		Headers: r.Header,
	}

	resp, err := h.Cache.Handle(r.Context(), req)
	if err != nil {
		if h.Cache.Logger != nil {
			h.Cache.Logger.WithError(err).WithField("url", req.URL).Error("request failed")
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp *webcache.Response) {
	for name, values := range resp.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}

	code := resp.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)

	if len(resp.Body) > 0 {
		_, _ = io.Copy(w, &byteReader{b: resp.Body})
	}
}

// byteReader is a minimal io.Reader over a byte slice, so this one call
// site needs no bytes import and writeResponse reads naturally as "copy the
// body out".
type byteReader struct {
	b []byte
	i int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.i >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.i:])
	r.i += n
	return n, nil
}
