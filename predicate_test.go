package webcache

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedValidMetadataWithContent(t *testing.T, store Store, url string, now float64, body []byte) *Metadata {
	t.Helper()
	content := &Content{
		URL:        url,
		Status:     "200 OK",
		Headers:    map[string]string{},
		Content:    body,
		ContentKey: contentKey(url, now, 1),
	}
	require.NoError(t, storeContent(store, content))
	m := fromServerResponse(store, url, now, content)
	ok, err := storeMetadata(store, m)
	require.NoError(t, err)
	require.True(t, ok)
	return m
}

func TestCheckForCacheResponseMiss(t *testing.T) {
	h := newTestHandler(newFakeStore(), newFakeClock(1000), &fakeOrigin{})
	resp, err := h.checkForCacheResponse(Request{URL: "/missing", Time: 1000, Headers: http.Header{}}, nil)
	require.NoError(t, err)
	require.Nil(t, resp)
}

func TestCheckForCacheResponseExpired(t *testing.T) {
	store := newFakeStore()
	seedValidMetadataWithContent(t, store, "/url1", 1000, []byte("stuff"))
	h := newTestHandler(store, newFakeClock(1000), &fakeOrigin{})

	resp, err := h.checkForCacheResponse(Request{URL: "/url1", Time: 1000 + 31, Headers: http.Header{}}, nil)
	require.NoError(t, err)
	require.Nil(t, resp)
}

func TestCheckForCacheResponseConditionalGetNotModified(t *testing.T) {
	store := newFakeStore()
	m := seedValidMetadataWithContent(t, store, "/url1", 1000, []byte("stuff"))
	h := newTestHandler(store, newFakeClock(1000), &fakeOrigin{})

	headers := http.Header{}
	headers.Set("If-Modified-Since", m.LastModified)
	resp, err := h.checkForCacheResponse(Request{URL: "/url1", Time: 1000, Headers: headers}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 304, resp.StatusCode)
	require.Empty(t, resp.Body)
}

func TestCheckForCacheResponseConditionalGetMalformedFailsOpen(t *testing.T) {
	store := newFakeStore()
	seedValidMetadataWithContent(t, store, "/url1", 1000, []byte("stuff"))
	h := newTestHandler(store, newFakeClock(1000), &fakeOrigin{})

	headers := http.Header{}
	headers.Set("If-Modified-Since", "not a date")
	resp, err := h.checkForCacheResponse(Request{URL: "/url1", Time: 1000, Headers: headers}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, []byte("stuff"), resp.Body)
}

func TestBuildResponseStripsHopByHopHeaders(t *testing.T) {
	content := &Content{
		URL:    "/url1",
		Status: "200 OK",
		Headers: map[string]string{
			"Content-Type": "text/plain",
			"Connection":   "keep-alive",
			"Server":       "origin/1.0",
		},
		Content:    []byte("stuff"),
		ContentKey: "body_/url1_1000.000000-1",
	}
	m := &Metadata{LastModified: "Wed, 21 Oct 2015 07:28:00 GMT"}

	resp := buildResponse(m, content)
	require.Equal(t, "text/plain", resp.Headers.Get("Content-Type"))
	require.Empty(t, resp.Headers.Get("Connection"))
	require.Empty(t, resp.Headers.Get("Server"))
	require.Equal(t, m.LastModified, resp.Headers.Get("Last-Modified"))
}
