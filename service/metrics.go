package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elena",
		Name:      "affordability_evaluations_total",
		Help:      "Affordability evaluations by verdict status.",
	}, []string{"status"})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "elena",
		Name:      "affordability_evaluation_seconds",
		Help:      "End-to-end evaluation latency including profile lookup and persistence.",
		Buckets:   prometheus.DefBuckets,
	})

	collaboratorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elena",
		Name:      "collaborator_failures_total",
		Help:      "Failures of non-critical collaborators (profile, timeline, ai).",
	}, []string{"collaborator"})
)
