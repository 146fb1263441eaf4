// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

// Package metrics provides Prometheus instrumentation for API traffic,
// model builds, and recommendation serving.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Model Build Metrics
	ModelBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_build_duration_seconds",
			Help:    "Duration of recommendation model builds in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	ModelBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "model_build_errors_total",
			Help: "Total number of failed model builds",
		},
	)

	ModelLastBuild = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_last_build_timestamp",
			Help: "Unix timestamp of the last successful model build",
		},
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_users",
			Help: "Number of users in the current model snapshot",
		},
	)

	ModelBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_books",
			Help: "Number of books in the current model snapshot",
		},
	)

	ModelFeatures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_content_features",
			Help: "Number of content feature columns in the current model snapshot",
		},
	)

	// Recommendation Serving Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation responses by kind",
		},
		[]string{"kind"}, // "hybrid", "collaborative", "content", "genre"
	)

	RecommendationsEmpty = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_empty_total",
			Help: "Total number of recommendation responses with no results",
		},
		[]string{"kind"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordModelBuild records a model build outcome.
func RecordModelBuild(duration time.Duration, users, books, features int, err error) {
	ModelBuildDuration.Observe(duration.Seconds())
	if err != nil {
		ModelBuildErrors.Inc()
		return
	}
	ModelLastBuild.Set(float64(time.Now().Unix()))
	ModelUsers.Set(float64(users))
	ModelBooks.Set(float64(books))
	ModelFeatures.Set(float64(features))
}

// RecordRecommendation records a served recommendation list.
func RecordRecommendation(kind string, results int) {
	RecommendationsServed.WithLabelValues(kind).Inc()
	if results == 0 {
		RecommendationsEmpty.WithLabelValues(kind).Inc()
	}
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
