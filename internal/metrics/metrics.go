package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "api_requests_total",
		Help:      "Storefront API calls by operation and HTTP status (0 = transport failure).",
	}, []string{"op", "status"})

	apiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "api_request_duration_seconds",
		Help:      "Storefront API call latency by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	checkoutResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "checkout_results_total",
		Help:      "Checkout submissions by payment method and final state.",
	}, []string{"method", "state"})

	paymentOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "payment_verifications_total",
		Help:      "Payment verification results by outcome.",
	}, []string{"outcome"})
)

// ObserveAPICall records one outbound API call
func ObserveAPICall(op string, status int, started time.Time) {
	apiRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	apiDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// ObserveCheckout records the state a checkout submission ended in
func ObserveCheckout(method, state string) {
	checkoutResults.WithLabelValues(method, state).Inc()
}

// ObservePaymentOutcome records a payment verification result
func ObservePaymentOutcome(outcome string) {
	paymentOutcomes.WithLabelValues(outcome).Inc()
}
