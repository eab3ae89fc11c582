package webcache

import (
	"fmt"
	"time"
)

// Clock abstracts wall-clock time so tests can advance it without sleeping,
// the same role the teacher's "timer" interface plays for freshness
// calculations, generalized here to also mint session nonces.
type Clock interface {
	// Now returns the current wall-clock time as seconds since the epoch,
	// with sub-second precision.
	Now() float64
}

// systemClock is the production Clock, backed by time.Now.
type systemClock struct{}

// NewSystemClock returns a Clock backed by the real wall clock.
func NewSystemClock() Clock { return systemClock{} }

func (systemClock) Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// formatSession renders a wall-clock reading as the fixed six-decimal-digit
// string used both as the metadata "session" field and embedded in content
// keys, so that encoding is byte-stable across workers (spec §6).
func formatSession(now float64) string {
	return fmt.Sprintf("%.6f", now)
}
