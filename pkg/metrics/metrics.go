// Package metrics declares the Prometheus collectors of the gallery service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gallery"

var (
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Registration attempts by result.",
	}, []string{"result"})

	PhotosIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_ingested_total",
		Help:      "Uploaded files by result.",
	}, []string{"result"})

	PhotosProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_processed_total",
		Help:      "Photos handled by the matching engine by outcome.",
	}, []string{"outcome"})

	MatchesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_recorded_total",
		Help:      "Match rows written by batches and registrant backfills.",
	})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Wall time of matching batches.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	FaceAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "face_api_requests_total",
		Help:      "Requests to the face extraction service by status.",
	}, []string{"status"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
