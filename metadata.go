package webcache

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Metadata is the in-memory view of a metadata_<url> record: the nine
// fields from spec §3, plus (unexported, never serialized) the CAS token it
// was read with and a handle back to the store for lazy content loading.
//
// A Metadata with Valid == false is a reservation: a placeholder left by a
// worker currently fetching the origin, with no content yet attached.
type Metadata struct {
	URL          string  `msgpack:"url"`
	Valid        bool    `msgpack:"valid"`
	Session      float64 `msgpack:"session"`
	Reservation  int     `msgpack:"reservation"`
	LastNoted    int     `msgpack:"last_noted"`
	Fetched      float64 `msgpack:"fetched"`
	LastModified string  `msgpack:"last_modified"`
	SHA256Digest []byte  `msgpack:"sha256_digest"`
	ContentKey   string  `msgpack:"content_key"`

	token   Token
	store   Store
	content *Content // lazily populated; nil with loaded set means the record was absent
	loaded  bool     // whether content has been loaded (or set) yet
}

// encodeMetadata serializes m's data fields (not the envelope) to bytes.
func encodeMetadata(m *Metadata) ([]byte, error) {
	return msgpack.Marshal(m)
}

// decodeMetadata parses bytes written by encodeMetadata into a fresh
// Metadata's data fields.
func decodeMetadata(data []byte) (*Metadata, error) {
	m := &Metadata{}
	if err := msgpack.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// metadataKeyOf returns this metadata's own KV key.
func (m *Metadata) metadataKeyOf() string {
	return metadataKey(m.URL)
}

// loadMetadata reads the metadata for url from store, if present.
func loadMetadata(store Store, url string) (*Metadata, error) {
	raw, token, ok := store.Gets(metadataKey(url))
	if !ok {
		return nil, nil
	}
	m, err := decodeMetadata(raw)
	if err != nil {
		return nil, err
	}
	m.token = token
	m.store = store
	return m, nil
}

// newReservation builds a fresh placeholder metadata for url, to be
// inserted via Add when no prior metadata exists. The worker that installs
// it wins the reservation contest immediately (reservation=1, last_noted=0).
func newReservation(store Store, url string, now float64) *Metadata {
	return &Metadata{
		URL:         url,
		Valid:       false,
		Session:     now,
		Reservation: 1,
		LastNoted:   0,

		store: store,
	}
}

// fromServerResponse builds a brand-new, fully populated metadata entry from
// an origin response, for insertion via Add when no prior metadata existed.
func fromServerResponse(store Store, url string, now float64, content *Content) *Metadata {
	m := &Metadata{
		URL:          url,
		Valid:        true,
		Session:      now,
		Reservation:  0,
		LastNoted:    0,
		Fetched:      now,
		LastModified: lastModifiedFor(now, content),
		SHA256Digest: content.Digest(),
		ContentKey:   content.ContentKey,

		store:   store,
		content: content,
		loaded:  true,
	}
	return m
}

// updateForServerResponse mutates m in place to reflect a freshly fetched
// origin response, implementing the "preserve on match" resolution of the
// content_key double-assignment open question (SPEC_FULL §9, decision 1):
// content_key (and last_modified/sha256_digest) only move to the new content
// when the digest actually changed; on a digest match the existing content
// record stays authoritative and the caller is expected to delete the
// redundant one it just wrote.
func (m *Metadata) updateForServerResponse(now float64, content *Content) {
	m.Fetched = now
	m.LastNoted = m.Reservation
	m.Valid = true

	if !bytesEqual(m.SHA256Digest, content.Digest()) {
		m.LastModified = lastModifiedFor(now, content)
		m.SHA256Digest = content.Digest()
		m.ContentKey = content.ContentKey
	}

	m.content = content
	m.loaded = true
}

// contentEntry lazily loads this metadata's content record from the store,
// caching the result (including a miss) for the lifetime of this Metadata
// value. This is a one-shot cache, not a concurrency mechanism (SPEC_FULL
// §9): it exists purely to avoid a second KV round trip when the content was
// already known (e.g. just written by fromServerResponse).
func (m *Metadata) contentEntry() (*Content, error) {
	if m.loaded {
		return m.content, nil
	}
	c, err := loadContent(m.store, m.ContentKey)
	if err != nil {
		return nil, err
	}
	m.content = c
	m.loaded = true
	return c, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
