package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestDuration measures request latency.
	// Labels: route (the matched gin route), method, status
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "curver",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	// motionChanges counts successful modifications of motions.
	// Labels: op (create, save, rename, duplicate, delete, fit)
	motionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "curver",
		Subsystem: "content",
		Name:      "changes_total",
		Help:      "Total modifications of stored motions",
	}, []string{"op"})

	// fitKnots records the number of knots of fitted curves.
	fitKnots = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "curver",
		Subsystem: "fit",
		Name:      "knots",
		Help:      "Number of knots of curves fitted to trajectories",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 7),
	})
)
