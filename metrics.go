package webcache

import "github.com/prometheus/client_golang/prometheus"

// PromMetrics is a Metrics implementation backed by prometheus counters,
// grounded on the cache-mode counters in the nearest pack example of an
// HTTP cache fronting an upstream API (ghcache).
type PromMetrics struct {
	hits               prometheus.Counter
	misses             prometheus.Counter
	notModified        prometheus.Counter
	reservationsWon    prometheus.Counter
	reservationsLost   prometheus.Counter
	consistencyErrors  prometheus.Counter
}

// NewPromMetrics registers and returns a PromMetrics on reg.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	m := &PromMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webcache_requests_served_from_cache_total",
			Help: "Requests served directly from the cache (200).",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webcache_requests_origin_fetched_total",
			Help: "Requests that required an origin fetch.",
		}),
		notModified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webcache_requests_not_modified_total",
			Help: "Requests answered with a synthesized 304.",
		}),
		reservationsWon: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webcache_reservation_won_total",
			Help: "Reservation contests this worker won.",
		}),
		reservationsLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webcache_reservation_lost_total",
			Help: "Reservation contests this worker lost.",
		}),
		consistencyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webcache_consistency_errors_total",
			Help: "ConsistencyErrors surfaced as 500s.",
		}),
	}
	reg.MustRegister(m.hits, m.misses, m.notModified, m.reservationsWon, m.reservationsLost, m.consistencyErrors)
	return m
}

func (m *PromMetrics) ObserveCacheHit()         { m.hits.Inc() }
func (m *PromMetrics) ObserveCacheMiss()        { m.misses.Inc() }
func (m *PromMetrics) ObserveNotModified()      { m.notModified.Inc() }
func (m *PromMetrics) ObserveReservationWon()   { m.reservationsWon.Inc() }
func (m *PromMetrics) ObserveReservationLost()  { m.reservationsLost.Inc() }
func (m *PromMetrics) ObserveConsistencyError() { m.consistencyErrors.Inc() }
