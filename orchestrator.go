package webcache

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Request is the inbound request the orchestrator decides how to satisfy:
// a URL, the time it arrived, and any headers relevant to conditional GET.
// Transport bindings (see package transport) are responsible for producing
// one of these from whatever wire format they decode.
type Request struct {
	URL     string
	Time    float64
	Headers http.Header
}

// Response is the outbound response the orchestrator produces, ready for a
// transport binding to emit.
type Response struct {
	Status     string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OriginResponse is what an Origin fetcher returns for a request issued to
// the backing web server.
type OriginResponse struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
}

// Origin issues GET requests against the backing web server. It is an
// explicit dependency of Handler (SPEC_FULL §9) rather than a module-level
// function, so it can be swapped for a fake in tests. Package origin
// provides the production implementation.
type Origin interface {
	Fetch(ctx context.Context, req Request) (*OriginResponse, error)
}

// Metrics is the set of counters the orchestrator reports through.
// A nil Metrics is valid; every method is a no-op in that case.
type Metrics interface {
	ObserveCacheHit()
	ObserveCacheMiss()
	ObserveNotModified()
	ObserveReservationWon()
	ObserveReservationLost()
	ObserveConsistencyError()
}

// Handler is the top-level orchestrator (spec §4.6). It bundles the KV
// store, origin fetcher, clock, logger and tunables as explicit
// constructor-supplied dependencies, replacing the original implementation's
// module-level client factory and request function (SPEC_FULL §9).
type Handler struct {
	Store   Store
	Origin  Origin
	Clock   Clock
	Config  Config
	Logger  *logrus.Logger
	Metrics Metrics
}

type logFields = logrus.Fields

func (h *Handler) logger() *logrus.Entry {
	if h.Logger == nil {
		h.Logger = logrus.New()
		h.Logger.SetLevel(logrus.PanicLevel) // silent by default
	}
	return logrus.NewEntry(h.Logger)
}

func (h *Handler) metrics() Metrics {
	if h.Metrics == nil {
		return noopMetrics{}
	}
	return h.Metrics
}

// Handle converts a Request into a Response, implementing handle_request:
// serve-from-cache, then compete for the right to refresh the entry, then
// (if still necessary) fetch the origin and publish the result.
//
// A ConsistencyError anywhere in the pipeline is caught here and converted
// to a bare 500, matching handle_application's outermost boundary.
func (h *Handler) Handle(ctx context.Context, req Request) (resp *Response, err error) {
	resp, err = h.handle(ctx, req)
	if err != nil {
		if _, ok := err.(*ConsistencyError); ok {
			h.logger().WithError(err).Warn("couldn't update cache due to contention, bailing")
			h.metrics().ObserveConsistencyError()
			return &Response{Status: "500 Internal Server Error", StatusCode: 500}, nil
		}
		return nil, err
	}
	return resp, nil
}

func (h *Handler) handle(ctx context.Context, req Request) (*Response, error) {
	if resp, err := h.checkForCacheResponse(req, nil); err != nil {
		return nil, err
	} else if resp != nil {
		h.observeServed(resp)
		h.logger().WithField("url", req.URL).Debug("serving from cache")
		return resp, nil
	}

	won, token, err := h.competeForCacheUpdate(ctx, req)
	if err != nil {
		return nil, err
	}
	if won {
		h.metrics().ObserveReservationWon()
	} else {
		h.metrics().ObserveReservationLost()
		if resp, err := h.checkForCacheResponse(req, nil); err != nil {
			return nil, err
		} else if resp != nil {
			h.observeServed(resp)
			h.logger().WithField("url", req.URL).Debug("serving parallel-update from cache")
			return resp, nil
		}
	}

	h.logger().WithField("url", req.URL).Debug("issuing origin request")
	h.metrics().ObserveCacheMiss()
	origin, err := h.Origin.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	metadata, err := h.updateCache(req, origin, token)
	if err != nil {
		return nil, err
	}

	// Whether metadata came from the happy path (stored and valid) or
	// from the non-OK give-up path (built in memory and immediately
	// deleted from the store), it already carries the content to serve —
	// contentEntry's one-shot cache returns it without another KV round
	// trip.
	content, err := metadata.contentEntry()
	if err != nil {
		return nil, err
	}
	return buildResponse(metadata, content), nil
}

func (h *Handler) observeServed(resp *Response) {
	switch resp.StatusCode {
	case 304:
		h.metrics().ObserveNotModified()
	default:
		h.metrics().ObserveCacheHit()
	}
}

// statusCodeOf parses the leading integer out of an HTTP status line
// ("200 OK" -> 200, "500 UNAVAILABLE" -> 500).
func statusCodeOf(status string) int {
	fields := strings.SplitN(status, " ", 2)
	if len(fields) == 0 {
		return 0
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return code
}

type noopMetrics struct{}

func (noopMetrics) ObserveCacheHit()          {}
func (noopMetrics) ObserveCacheMiss()         {}
func (noopMetrics) ObserveNotModified()       {}
func (noopMetrics) ObserveReservationWon()    {}
func (noopMetrics) ObserveReservationLost()   {}
func (noopMetrics) ObserveConsistencyError()  {}
