package webcache

// Config holds the tunables named in spec §6, all compile-time constants in
// the original implementation and exposed here as explicit, overridable
// fields (re-architected per SPEC_FULL §9: no module-level globals).
// REQUEST_TIMEOUT is not one of these fields: it bounds the origin fetch
// itself (a connect/read pair), so it lives on package origin's Config
// instead of here.
type Config struct {
	// SleepPollInterval is how frequently a losing worker polls the cache
	// for the winner's result while backing off.
	SleepPollInterval float64
	// SleepMultiplyInterval scales the backoff window by the number of
	// contending workers observed so far.
	SleepMultiplyInterval int
	// SleepMaxSeconds caps the backoff window.
	SleepMaxSeconds int
	// UpdateMaxAttempts bounds the reservation and update-cache retry
	// loops before a ConsistencyError is raised.
	UpdateMaxAttempts int
	// ExpireSecs is how long a fetched entry remains servable.
	ExpireSecs float64
	// DropNotOKStatus, when true, means non-OK origin responses are
	// returned to the client as-is but never cached.
	DropNotOKStatus bool
}

// DefaultConfig returns the documented defaults from spec §6.
func DefaultConfig() Config {
	return Config{
		SleepPollInterval:     0.5,
		SleepMultiplyInterval: 5,
		SleepMaxSeconds:       30,
		UpdateMaxAttempts:     20,
		ExpireSecs:            30,
		DropNotOKStatus:       true,
	}
}
