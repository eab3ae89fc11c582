package webcache

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// unixTime converts a Clock reading into the time.Time the implementation
// derives internally, so tests can build matching Last-Modified headers.
func unixTime(now float64) time.Time {
	return time.Unix(0, int64(now*1e9)).UTC()
}

func testConfig() Config {
	cfg := DefaultConfig()
	// Zero out the backoff window: with SleepMultiplyInterval=0 a losing
	// worker's computed window is always 0, so competeForCacheUpdate
	// returns immediately instead of sleeping — scenarios S6/S7 need the
	// losing path's logic, not real wall-clock backoff.
	cfg.SleepMultiplyInterval = 0
	cfg.SleepPollInterval = 0
	return cfg
}

func newTestHandler(store Store, clock Clock, origin Origin) *Handler {
	return &Handler{
		Store:  store,
		Origin: origin,
		Clock:  clock,
		Config: testConfig(),
	}
}

// S1: cold miss, 200 stored.
func TestHandleColdMissStores200(t *testing.T) {
	store := newFakeStore()
	clock := newFakeClock(1000)
	origin := &fakeOrigin{resp: &OriginResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{},
		Body:       []byte("stuff"),
	}}
	h := newTestHandler(store, clock, origin)

	resp, err := h.Handle(context.Background(), Request{URL: "/url1", Time: 1000, Headers: http.Header{}})
	require.NoError(t, err)
	require.Equal(t, "200 OK", resp.Status)
	require.Equal(t, []byte("stuff"), resp.Body)

	m, err := loadMetadata(store, "/url1")
	require.NoError(t, err)
	require.NotNil(t, m)
	require.True(t, m.Valid)
	require.Equal(t, "/url1", m.URL)
	require.Equal(t, 1, m.Reservation)
	require.Equal(t, 1, m.LastNoted)

	content, err := loadContent(store, m.ContentKey)
	require.NoError(t, err)
	require.Equal(t, []byte("stuff"), content.Content)
}

// S3: dropped 500, nothing cached.
func TestHandleDroppedErrorStatusNotCached(t *testing.T) {
	store := newFakeStore()
	clock := newFakeClock(1000)
	origin := &fakeOrigin{resp: &OriginResponse{
		StatusCode: 500,
		Status:     "500 UNAVAILABLE",
		Headers:    map[string]string{},
		Body:       nil,
	}}
	h := newTestHandler(store, clock, origin)

	resp, err := h.Handle(context.Background(), Request{URL: "/url1", Time: 1000, Headers: http.Header{}})
	require.NoError(t, err)
	require.Equal(t, "500 UNAVAILABLE", resp.Status)
	require.Empty(t, resp.Body)

	_, ok := store.Get(metadataKey("/url1"))
	require.False(t, ok)
}

// S4: expired refetch, same content leaves last_modified/digest/session
// unchanged.
func TestHandleExpiredRefetchSameContentPreservesDigest(t *testing.T) {
	store := newFakeStore()
	clock := newFakeClock(1000)
	origin := &fakeOrigin{resp: &OriginResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{},
		Body:       []byte("stuff"),
	}}
	h := newTestHandler(store, clock, origin)

	_, err := h.Handle(context.Background(), Request{URL: "/url1", Time: clock.Now(), Headers: http.Header{}})
	require.NoError(t, err)
	first, err := loadMetadata(store, "/url1")
	require.NoError(t, err)

	clock.Advance(60)
	origin.resp = &OriginResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{"Last-Modified": makeHTTPDate(unixTime(clock.Now()))},
		Body:       []byte("stuff"),
	}

	_, err = h.Handle(context.Background(), Request{URL: "/url1", Time: clock.Now(), Headers: http.Header{}})
	require.NoError(t, err)

	second, err := loadMetadata(store, "/url1")
	require.NoError(t, err)
	require.Equal(t, first.LastModified, second.LastModified)
	require.Equal(t, first.SHA256Digest, second.SHA256Digest)
	require.Equal(t, first.Session, second.Session)
	require.Equal(t, 2, second.Reservation)
	require.Equal(t, 2, second.LastNoted)
	require.True(t, second.Valid)
}

// S5: expired refetch, different content updates last_modified/digest but
// keeps the session.
func TestHandleExpiredRefetchDifferentContentUpdatesDigest(t *testing.T) {
	store := newFakeStore()
	clock := newFakeClock(1000)
	origin := &fakeOrigin{resp: &OriginResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{},
		Body:       []byte("stuff"),
	}}
	h := newTestHandler(store, clock, origin)

	_, err := h.Handle(context.Background(), Request{URL: "/url1", Time: clock.Now(), Headers: http.Header{}})
	require.NoError(t, err)
	first, err := loadMetadata(store, "/url1")
	require.NoError(t, err)

	clock.Advance(60)
	newLastModified := makeHTTPDate(unixTime(clock.Now()))
	origin.resp = &OriginResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{"Last-Modified": newLastModified},
		Body:       []byte("other stuff"),
	}

	resp, err := h.Handle(context.Background(), Request{URL: "/url1", Time: clock.Now(), Headers: http.Header{}})
	require.NoError(t, err)
	require.Equal(t, newLastModified, resp.Headers.Get("Last-Modified"))

	second, err := loadMetadata(store, "/url1")
	require.NoError(t, err)
	require.NotEqual(t, first.SHA256Digest, second.SHA256Digest)
	require.Equal(t, newLastModified, second.LastModified)
	require.Equal(t, first.Session, second.Session)
	require.Equal(t, 2, second.Reservation)
	require.Equal(t, 2, second.LastNoted)
	require.True(t, second.Valid)
}

// S6: a peer's bare reservation is observed, this worker loses the contest,
// finds no servable content on re-check, and fetches the origin itself.
func TestHandleLostContentionPeerLeftOnlyReservation(t *testing.T) {
	store := newFakeStore()
	clock := newFakeClock(1000)

	peer := newReservation(store, "/url1", clock.Now())
	ok, err := storeMetadata(store, peer)
	require.NoError(t, err)
	require.True(t, ok)

	origin := &fakeOrigin{resp: &OriginResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{},
		Body:       []byte("stuff"),
	}}
	h := newTestHandler(store, clock, origin)

	resp, err := h.Handle(context.Background(), Request{URL: "/url1", Time: clock.Now(), Headers: http.Header{}})
	require.NoError(t, err)
	require.Equal(t, "200 OK", resp.Status)
	require.Equal(t, 1, origin.calls)

	final, err := loadMetadata(store, "/url1")
	require.NoError(t, err)
	require.True(t, final.Valid)
	require.Equal(t, 2, final.Reservation)
	require.Equal(t, 2, final.LastNoted)
}

// S7: same starting point as S6 (nothing cached yet), but the peer's write
// lands between this worker's initial cache check and its reservation bump:
// by the time updateReservation reads the metadata, the peer has already
// published a complete, valid entry (reservation=1, last_noted=0, real
// content attached) instead of a bare reservation. The bump only increments
// Reservation, so Valid/LastNoted stay at true/0, the worker loses the
// contest (2 != 0+1), and its post-loss re-check serves the peer's content
// without ever contacting the origin. Mirrors the original implementation's
// push_contest injection in test_update_contention_loss_with_update_fulfilled,
// which fires the injection on the reservation read, not the initial one.
func TestHandleLostContentionPeerAlreadyPublished(t *testing.T) {
	store := newFakeStore()
	clock := newFakeClock(1000)
	req := Request{URL: "/url1", Time: clock.Now(), Headers: http.Header{}}

	origin := &fakeOrigin{resp: &OriginResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{},
		Body:       []byte("stuff"),
	}}
	h := newTestHandler(store, clock, origin)

	// Initial check: nothing cached yet.
	resp, err := h.checkForCacheResponse(req, nil)
	require.NoError(t, err)
	require.Nil(t, resp)

	// The peer now publishes a full entry before this worker's reservation
	// bump observes the store.
	peerContent := &Content{
		URL:        "/url1",
		Status:     "200 OK",
		Headers:    map[string]string{},
		Content:    []byte("peer stuff"),
		ContentKey: contentKey("/url1", clock.Now(), 1),
	}
	require.NoError(t, storeContent(store, peerContent))
	peer := fromServerResponse(store, "/url1", clock.Now(), peerContent)
	peer.Reservation = 1
	ok, err := storeMetadata(store, peer)
	require.NoError(t, err)
	require.True(t, ok)

	// This worker contends for the reservation and loses: its bump lands
	// on reservation=2 against the peer's untouched last_noted=0.
	won, _, err := h.competeForCacheUpdate(context.Background(), req)
	require.NoError(t, err)
	require.False(t, won)
	require.Equal(t, 0, origin.calls)

	// The post-loss re-check (handle()'s step 3) finds the peer's content
	// already servable.
	resp, err = h.checkForCacheResponse(req, nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, []byte("peer stuff"), resp.Body)
	require.Equal(t, 0, origin.calls)

	final, err := loadMetadata(store, "/url1")
	require.NoError(t, err)
	require.True(t, final.Valid)
	require.Equal(t, 2, final.Reservation)
	require.Equal(t, 0, final.LastNoted)
}

// Invariant 5: no two workers ever both observe won=true for the same
// reservation bump.
func TestUpdateReservationAtMostOneWinner(t *testing.T) {
	store := newFakeStore()
	clock := newFakeClock(1000)
	h := newTestHandler(store, clock, &fakeOrigin{})

	_, firstWon, err := h.updateReservation("/url1")
	require.NoError(t, err)
	require.True(t, firstWon)

	_, secondWon, err := h.updateReservation("/url1")
	require.NoError(t, err)
	require.False(t, secondWon)
}

// Idempotence: two identical requests with no clock advance and no origin
// change produce the same response; the second is served from cache, so the
// origin is contacted only once.
func TestHandleIdempotentBackToBackRequests(t *testing.T) {
	store := newFakeStore()
	clock := newFakeClock(1000)
	origin := &fakeOrigin{resp: &OriginResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{},
		Body:       []byte("stuff"),
	}}
	h := newTestHandler(store, clock, origin)

	req := Request{URL: "/url1", Time: clock.Now(), Headers: http.Header{}}
	first, err := h.Handle(context.Background(), req)
	require.NoError(t, err)

	second, err := h.Handle(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, first.Status, second.Status)
	require.Equal(t, first.Body, second.Body)
	require.Equal(t, 1, origin.calls)
}

func TestMetadataSerializationRoundTrip(t *testing.T) {
	store := newFakeStore()
	content := &Content{
		URL:        "/url1",
		Status:     "200 OK",
		Headers:    map[string]string{"X-Test": "1"},
		Content:    []byte("stuff"),
		ContentKey: contentKey("/url1", 1000, 1),
	}
	require.NoError(t, storeContent(store, content))
	reloaded, err := loadContent(store, content.ContentKey)
	require.NoError(t, err)
	require.Equal(t, content.URL, reloaded.URL)
	require.Equal(t, content.Status, reloaded.Status)
	require.Equal(t, content.Headers, reloaded.Headers)
	require.Equal(t, content.Content, reloaded.Content)

	m := fromServerResponse(store, "/url1", 1000, content)
	ok, err := storeMetadata(store, m)
	require.NoError(t, err)
	require.True(t, ok)

	reloadedMeta, err := loadMetadata(store, "/url1")
	require.NoError(t, err)
	require.Equal(t, m.URL, reloadedMeta.URL)
	require.Equal(t, m.Valid, reloadedMeta.Valid)
	require.Equal(t, m.Session, reloadedMeta.Session)
	require.Equal(t, m.Reservation, reloadedMeta.Reservation)
	require.Equal(t, m.LastNoted, reloadedMeta.LastNoted)
	require.Equal(t, m.SHA256Digest, reloadedMeta.SHA256Digest)
	require.Equal(t, m.ContentKey, reloadedMeta.ContentKey)
}

func TestConsistencyErrorMapsTo500(t *testing.T) {
	store := newFakeStore()
	clock := newFakeClock(1000)
	h := &Handler{
		Store:  store,
		Origin: &fakeOrigin{resp: &OriginResponse{StatusCode: 200, Status: "200 OK", Body: []byte("x")}},
		Clock:  clock,
		Config: func() Config {
			cfg := testConfig()
			cfg.UpdateMaxAttempts = 0
			return cfg
		}(),
	}

	resp, err := h.Handle(context.Background(), Request{URL: "/url1", Time: clock.Now(), Headers: http.Header{}})
	require.NoError(t, err)
	require.Equal(t, 500, resp.StatusCode)
}
