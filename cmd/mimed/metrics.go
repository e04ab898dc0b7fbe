package main

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "mimed"

var (
	knownMethods = []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}

	// Codes the API can produce; pre-created so they export as zero.
	apiStatusCodes = []int{
		http.StatusOK,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusMethodNotAllowed,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}
)

// type Metrics {{{

// Metrics are the per-request HTTP metrics recorded by RootHandler.
type Metrics struct {
	PanicCount           prometheus.Counter
	RequestCountByMethod *prometheus.CounterVec
	ResponseCountByCode  *prometheus.CounterVec
	RequestSize          prometheus.Histogram
	ResponseDuration     prometheus.Histogram
}

func NewMetrics(subsystem string) *Metrics {
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}
	}
	histOpts := func(name, help string, buckets []float64) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		}
	}

	m := &Metrics{
		PanicCount: prometheus.NewCounter(prometheus.CounterOpts(
			opts("panics_total", "number of HTTP requests whose handler panicked"))),
		RequestCountByMethod: prometheus.NewCounterVec(prometheus.CounterOpts(
			opts("requests_total", "number of HTTP requests received, by method")),
			[]string{"method"}),
		ResponseCountByCode: prometheus.NewCounterVec(prometheus.CounterOpts(
			opts("responses_total", "number of HTTP responses sent, by status code")),
			[]string{"code"}),
		RequestSize: prometheus.NewHistogram(histOpts(
			"request_size_bytes", "bytes read from HTTP request bodies",
			prometheus.ExponentialBuckets(64, 4, 10))),
		ResponseDuration: prometheus.NewHistogram(histOpts(
			"response_duration_seconds", "time spent serving each HTTP request",
			prometheus.ExponentialBuckets(0.0001, 10, 7))),
	}

	for _, method := range knownMethods[:3] {
		m.RequestCountByMethod.WithLabelValues(method)
	}
	for _, code := range apiStatusCodes {
		m.ResponseCountByCode.WithLabelValues(simplifyHTTPStatusCode(code))
	}
	return m
}

func (m *Metrics) All() []prometheus.Collector {
	return []prometheus.Collector{
		m.PanicCount,
		m.RequestCountByMethod,
		m.ResponseCountByCode,
		m.RequestSize,
		m.ResponseDuration,
	}
}

func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.All()...)
}

// }}}

// simplifyHTTPMethod bounds the cardinality of the "method" label.
func simplifyHTTPMethod(method string) string {
	for _, known := range knownMethods {
		if method == known {
			return known
		}
	}
	return "OTHER"
}

func simplifyHTTPStatusCode(statusCode int) string {
	switch {
	case statusCode == 0:
		return "200"
	case statusCode >= 100 && statusCode < 600:
		return strconv.Itoa(statusCode)
	default:
		return "XXX"
	}
}
