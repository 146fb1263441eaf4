// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdhalloran/audioshelf/internal/middleware"
)

// Router wires handlers and middleware into the HTTP tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(middleware.PrometheusMetrics)
			r.Use(middleware.Compression)

			r.Route("/recommendations", func(r chi.Router) {
				r.Get("/user/{userID}", router.handler.RecommendationsUser)
				r.Get("/similar/{bookID}", router.handler.RecommendationsSimilar)
				r.Get("/hybrid/{userID}", router.handler.RecommendationsHybrid)
				r.Get("/genre/{genre}", router.handler.RecommendationsGenre)
			})

			r.Get("/books/{bookID}", router.handler.Book)
		})

		r.Post("/admin/reload", router.handler.AdminReload)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// chiURLParam returns a URL path parameter.
func chiURLParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
