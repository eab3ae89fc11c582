package webcache

// updateCache tries to publish origin's response into the cache under the
// given reservation token, resolving races against any parallel winner.
// Mirrors update_cache.
func (h *Handler) updateCache(req Request, origin *OriginResponse, token ReservationToken) (*Metadata, error) {
	now := h.Clock.Now()

	content := &Content{
		URL:        req.URL,
		Status:     origin.Status,
		Headers:    origin.Headers,
		Content:    origin.Body,
		ContentKey: token.contentKeyFor(req.URL),
	}

	if h.Config.DropNotOKStatus && origin.StatusCode >= 400 {
		h.logger().WithFields(logFields{"url": req.URL, "status": origin.Status}).
			Debug("origin response not OK, giving up without caching")

		m := fromServerResponse(h.Store, req.URL, token.Session, content)
		// Signal waiters that this worker has given up, without ever
		// having written content for them to find.
		if err := deleteMetadata(h.Store, m); err != nil {
			return nil, err
		}
		return m, nil
	}

	if err := storeContent(h.Store, content); err != nil {
		return nil, &ConsistencyError{Op: "update_cache"}
	}

	for attempt := 0; attempt < h.Config.UpdateMaxAttempts; attempt++ {
		m, err := loadMetadata(h.Store, req.URL)
		if err != nil {
			return nil, err
		}

		if m != nil {
			if resp, err := h.checkForCacheResponse(req, m); err != nil {
				return nil, err
			} else if resp != nil {
				// A parallel winner already published a servable
				// entry; our write is now garbage.
				if err := deleteContent(h.Store, content.ContentKey); err != nil {
					return nil, err
				}
				return m, nil
			}
			m.updateForServerResponse(now, content)
			if m.ContentKey != content.ContentKey {
				// Digest matched the entry already on file: the
				// prior content_key was preserved (SPEC_FULL §9,
				// decision 1), so the duplicate we just wrote is
				// redundant.
				if err := deleteContent(h.Store, content.ContentKey); err != nil {
					return nil, err
				}
			}
		} else {
			m = fromServerResponse(h.Store, req.URL, now, content)
		}

		ok, err := storeMetadata(h.Store, m)
		if err != nil {
			return nil, err
		}
		if ok {
			return m, nil
		}
	}

	return nil, &ConsistencyError{Op: "update_cache"}
}
