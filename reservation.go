package webcache

import (
	"context"
	"math/rand"
	"time"
)

// ReservationToken identifies a unique write attempt within a metadata's
// lifetime: the session it was created under, and the reservation count it
// claimed.
type ReservationToken struct {
	Session     float64
	Reservation int
}

// contentKeyFor derives the content key this token owns.
func (t ReservationToken) contentKeyFor(url string) string {
	return contentKey(url, t.Session, t.Reservation)
}

// updateReservation increments (or creates) the metadata for url, returning
// the stored metadata and whether this call won the reservation contest.
// Mirrors update_reservation in the original implementation.
func (h *Handler) updateReservation(url string) (*Metadata, bool, error) {
	now := h.Clock.Now()

	for attempt := 0; attempt < h.Config.UpdateMaxAttempts; attempt++ {
		m, err := loadMetadata(h.Store, url)
		if err != nil {
			return nil, false, err
		}

		if m != nil {
			m.Reservation++
		} else {
			m = newReservation(h.Store, url, now)
		}

		ok, err := storeMetadata(h.Store, m)
		if err != nil {
			return nil, false, err
		}
		if ok {
			won := m.Reservation == m.LastNoted+1
			return m, won, nil
		}
	}

	return nil, false, &ConsistencyError{Op: "update_reservation"}
}

// competeForCacheUpdate coordinates updates whenever a request cannot be
// served from cache. At most one caller across all workers wins per
// fingerprint; the rest back off with a contention-scaled sleep and poll
// for the winner's result, mirroring compete_for_cache_update.
func (h *Handler) competeForCacheUpdate(ctx context.Context, req Request) (bool, ReservationToken, error) {
	m, won, err := h.updateReservation(req.URL)
	if err != nil {
		return false, ReservationToken{}, err
	}
	token := ReservationToken{Session: m.Session, Reservation: m.Reservation}

	if won {
		h.logger().WithFields(logFields{"url": req.URL, "reservation": m.Reservation}).Debug("won cache update contest")
		return true, token, nil
	}

	backoffUnits := m.Reservation - m.LastNoted
	maxWindow := backoffUnits * h.Config.SleepMultiplyInterval
	if maxWindow > h.Config.SleepMaxSeconds {
		maxWindow = h.Config.SleepMaxSeconds
	}
	if maxWindow < 0 {
		maxWindow = 0
	}
	sleepSeconds := 0
	if maxWindow > 0 {
		sleepSeconds = rand.Intn(maxWindow + 1)
	}
	deadline := h.Clock.Now() + float64(sleepSeconds)

	h.logger().WithFields(logFields{"url": req.URL, "reservation": m.Reservation, "last_noted": m.LastNoted}).
		Debug("lost cache update contest, backing off")

	for {
		now := h.Clock.Now()
		remaining := deadline - now
		if remaining <= 0 {
			break
		}
		wait := h.Config.SleepPollInterval
		if remaining < wait {
			wait = remaining
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return false, token, err
		}

		cur, err := loadMetadata(h.Store, req.URL)
		if err != nil {
			return false, token, err
		}
		if cur == nil || cur.Valid {
			break
		}
	}

	return false, token, nil
}

// sleepCtx sleeps for seconds, honoring ctx cancellation.
func sleepCtx(ctx context.Context, seconds float64) error {
	if seconds <= 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
