package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubecrier_videos_detected_total",
		Help: "The total number of new uploads detected",
	})

	PollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubecrier_poll_errors_total",
		Help: "The total number of failed poll iterations",
	})

	GenerationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubecrier_generation_attempts_total",
		Help: "LLM generation attempts by platform",
	}, []string{"platform"})

	GenerationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubecrier_generation_outcomes_total",
		Help: "Generation outcomes by platform and result (accepted, exhausted, fallback)",
	}, []string{"platform", "outcome"})

	ValidationViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubecrier_validation_violations_total",
		Help: "Guardrail violations accumulated across generation attempts",
	}, []string{"platform"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubecrier_generation_duration_seconds",
		Help:    "Wall time of a full generation run including retries",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"platform"})

	PostsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubecrier_posts_total",
		Help: "Posts delivered to platforms by status",
	}, []string{"platform", "status"})
)
