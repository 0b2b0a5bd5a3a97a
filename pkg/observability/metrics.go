package observability

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expense"

var (
	// RequestsTotal tracks total number of RPC requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Total number of RPC requests",
		},
		[]string{"procedure", "code"},
	)

	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"procedure"},
	)

	// ActiveRequests tracks currently active requests
	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rpc_active_requests",
			Help:      "Number of active RPC requests",
		},
		[]string{"procedure"},
	)

	// ParsesTotal counts parsed sentences by whether they could be saved as is
	ParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parser_parses_total",
			Help:      "Total number of parsed expense sentences by outcome",
		},
		[]string{"outcome"},
	)

	// ParseConfidence tracks the distribution of overall parse confidence
	ParseConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parser_confidence",
			Help:      "Overall confidence of parsed expense sentences",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	// ParseWarningsTotal counts warnings by message
	ParseWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parser_warnings_total",
			Help:      "Total number of parser warnings by message",
		},
		[]string{"warning"},
	)
)

// Parse outcome labels.
const (
	OutcomeReady      = "ready"
	OutcomeIncomplete = "incomplete"
)

// RecordParse records one parsed sentence.
func RecordParse(ready bool, confidence float64, warnings []string) {
	outcome := OutcomeIncomplete
	if ready {
		outcome = OutcomeReady
	}
	ParsesTotal.WithLabelValues(outcome).Inc()
	ParseConfidence.Observe(confidence)
	for _, w := range warnings {
		ParseWarningsTotal.WithLabelValues(w).Inc()
	}
}

// NewMetricsInterceptor creates an interceptor that collects Prometheus metrics
func NewMetricsInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure

			ActiveRequests.WithLabelValues(procedure).Inc()
			defer ActiveRequests.WithLabelValues(procedure).Dec()

			start := time.Now()
			resp, err := next(ctx, req)
			RequestDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			RequestsTotal.WithLabelValues(procedure, codeLabel(err)).Inc()

			return resp, err
		}
	}
}

func codeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return connect.CodeOf(err).String()
}
