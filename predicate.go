package webcache

// checkForCacheResponse decides whether the current cache state can satisfy
// req without contacting the origin. If metadata is non-nil it is used
// as-is (avoiding a second read when the caller already has one); otherwise
// it is loaded from the store. Mirrors check_for_cache_response.
//
// Returns a Response if one can be served (200 from cache, or a bare 304),
// or (nil, nil) if the request is not servable from cache.
func (h *Handler) checkForCacheResponse(req Request, metadata *Metadata) (*Response, error) {
	m := metadata
	if m == nil {
		var err error
		m, err = loadMetadata(h.Store, req.URL)
		if err != nil {
			return nil, err
		}
	}

	if m == nil {
		return nil, nil
	}
	if !m.Valid {
		return nil, nil
	}
	if req.Time > m.Fetched+h.Config.ExpireSecs {
		return nil, nil
	}

	if ims := req.Headers.Get("If-Modified-Since"); ims != "" {
		if clientDate, ok := parseHTTPDate(ims); ok {
			if cacheDate, ok := parseHTTPDate(m.LastModified); ok {
				if !clientDate.Before(cacheDate) {
					return &Response{Status: "304 Not Modified", StatusCode: 304}, nil
				}
			}
		}
		// malformed client date: fail open into the normal lookup below
	}

	content, err := m.contentEntry()
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	return buildResponse(m, content), nil
}
