package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Throughput metrics - Track submission volume
var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daodeploy_submissions_total",
			Help: "Total number of contract calls submitted, by function",
		},
		[]string{"function"},
	)

	UploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daodeploy_uploaded_bytes_total",
		Help: "Total bytecode bytes uploaded to the ledger",
	})
)

// Error metrics - Track failures
var (
	SubmissionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daodeploy_submission_failures_total",
			Help: "Total number of failed contract calls, by function",
		},
		[]string{"function"},
	)
)

// State metrics - Track deployment progress
var (
	StagesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daodeploy_stages_completed_total",
			Help: "Deployment stages completed, by stage",
		},
		[]string{"stage"},
	)
)

// Serve exposes the metrics endpoint. Blocking; run it in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
