package webcache

// Purge deletes a URL's metadata record and, if present, its current
// content record, so the next request is treated as a fresh miss. This is
// the operational escape hatch SPEC_FULL §6's CLI exposes as `purge`; the
// core never calls it itself.
func (h *Handler) Purge(url string) error {
	m, err := loadMetadata(h.Store, url)
	if err != nil {
		return err
	}
	if m != nil && m.ContentKey != "" {
		if err := deleteContent(h.Store, m.ContentKey); err != nil {
			return err
		}
	}
	return h.Store.Delete(metadataKey(url))
}
