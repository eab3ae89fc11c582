package webcache

import (
	"crypto/sha256"

	"github.com/vmihailenco/msgpack/v5"
)

// Content is the in-memory view of a body_<url>_<session>-<reservation>
// record: the response an origin fetch produced, plus the key it lives at
// (not serialized) and a lazily computed digest.
type Content struct {
	URL     string            `msgpack:"url"`
	Status  string            `msgpack:"status"`
	Headers map[string]string `msgpack:"headers"`
	Content []byte            `msgpack:"content"`

	ContentKey string `msgpack:"-"`

	digest []byte
}

// Digest returns the SHA-256 digest of Content, computing it on first use.
func (c *Content) Digest() []byte {
	if c.digest == nil {
		sum := sha256.Sum256(c.Content)
		c.digest = sum[:]
	}
	return c.digest
}

// encodeContent serializes c's stored fields (url/status/headers/content;
// not the key) to bytes.
func encodeContent(c *Content) ([]byte, error) {
	return msgpack.Marshal(c)
}

// loadContent reads the content record at key from store, if present.
func loadContent(store Store, key string) (*Content, error) {
	raw, ok := store.Get(key)
	if !ok {
		return nil, nil
	}
	c := &Content{}
	if err := msgpack.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	c.ContentKey = key
	return c, nil
}

// storeContent writes c unconditionally to its ContentKey.
func storeContent(store Store, c *Content) error {
	raw, err := encodeContent(c)
	if err != nil {
		return err
	}
	return store.Set(c.ContentKey, raw)
}

// deleteContent removes the content record at key from the store.
func deleteContent(store Store, key string) error {
	return store.Delete(key)
}
