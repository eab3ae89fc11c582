package webcache

// ConsistencyError is raised when the reservation or update-cache loop
// exhausts UpdateMaxAttempts without making progress against the KV store,
// or when update-cache fails to write its content record. The orchestrator catches it at the outermost boundary and converts it to a
// 500 response; it never escapes Handle.
type ConsistencyError struct {
	// Op names which loop gave up (e.g. "update_reservation", "update_cache").
	Op string
}

func (e *ConsistencyError) Error() string {
	return "webcache: " + e.Op + ": could not make progress against the cache store"
}
