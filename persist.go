package webcache

// storeMetadata commits m to the store, using the CAS token it was loaded
// with, or inserting via Add if it was never read from the store (or the
// CAS races against an eviction and comes back NotFound — see below).
// Returns whether the write happened.
func storeMetadata(store Store, m *Metadata) (bool, error) {
	raw, err := encodeMetadata(m)
	if err != nil {
		return false, err
	}

	if m.token != nil {
		ok, err := store.CAS(m.metadataKeyOf(), raw, m.token)
		if err == nil {
			return ok, nil
		}
		if err != ErrNotFound {
			return false, err
		}
		// Entry was evicted (or overwritten) between our read and this
		// write; fall through to Add in the same attempt rather than
		// waiting for the next outer-loop iteration (SPEC_FULL §9,
		// decision 2).
	}
	return store.Add(m.metadataKeyOf(), raw)
}

// deleteMetadata removes m's record, signaling any waiting workers that
// this worker has given up.
func deleteMetadata(store Store, m *Metadata) error {
	return store.Delete(m.metadataKeyOf())
}
