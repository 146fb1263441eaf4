// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/jdhalloran/audioshelf/internal/metrics"
	"github.com/jdhalloran/audioshelf/internal/recommend"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Health reports service status and model readiness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":      "ok",
		"model_ready": h.engine.Ready(),
	}
	if snapshot, err := h.engine.Snapshot(); err == nil {
		users, books, features := snapshot.Stats()
		status["model_built_at"] = snapshot.BuiltAt()
		status["users"] = users
		status["books"] = books
		status["features"] = features
	}
	respondSuccess(w, status, time.Now())
}

// RecommendationsUser serves collaborative predictions for a user.
func (h *Handler) RecommendationsUser(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, err := pathInt(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID must be an integer")
		return
	}

	req := listRequest{Limit: getIntParam(r, "limit", defaultLimit)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
		return
	}

	predictions, err := h.engine.PredictForUser(userID, req.Limit, true)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	metrics.RecordRecommendation("collaborative", len(predictions))
	respondSuccess(w, map[string]interface{}{
		"user_id":         userID,
		"recommendations": predictions,
	}, started)
}

// RecommendationsSimilar serves content-based similar books.
func (h *Handler) RecommendationsSimilar(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	bookID, err := pathInt(r, "bookID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "bookID must be an integer")
		return
	}

	req := listRequest{Limit: getIntParam(r, "limit", defaultLimit)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
		return
	}

	includeScores := r.URL.Query().Get("scores") == "true"

	similar, err := h.engine.SimilarBooks(bookID, req.Limit, includeScores)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	metrics.RecordRecommendation("content", len(similar))
	respondSuccess(w, map[string]interface{}{
		"book_id": bookID,
		"similar": similar,
	}, started)
}

// RecommendationsHybrid serves blended recommendations, with an
// optional per-request weight override via collaborative_weight and
// content_weight query parameters.
func (h *Handler) RecommendationsHybrid(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, err := pathInt(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID must be an integer")
		return
	}

	req := listRequest{Limit: getIntParam(r, "limit", defaultLimit)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
		return
	}

	weights, apiErr := weightOverride(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
		return
	}

	recommendations, err := h.engine.Recommend(userID, req.Limit, weights)
	if err != nil {
		var cfgErr *recommend.ConfigError
		if errors.As(err, &cfgErr) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", cfgErr.Error())
			return
		}
		h.respondEngineError(w, err)
		return
	}

	metrics.RecordRecommendation("hybrid", len(recommendations))
	respondSuccess(w, map[string]interface{}{
		"user_id":         userID,
		"recommendations": recommendations,
	}, started)
}

// weightOverride parses the optional weight query parameters. Both
// must be supplied together.
func weightOverride(r *http.Request) (*recommend.Weights, *validationAPIError) {
	collab, hasCollab := getFloatParam(r, "collaborative_weight")
	content, hasContent := getFloatParam(r, "content_weight")

	if !hasCollab && !hasContent {
		// Reject malformed values that parsed as absent.
		if r.URL.Query().Get("collaborative_weight") != "" || r.URL.Query().Get("content_weight") != "" {
			return nil, &validationAPIError{
				Code:    "VALIDATION_ERROR",
				Message: "weights must be numeric",
			}
		}
		return nil, nil
	}
	if !hasCollab || !hasContent {
		return nil, &validationAPIError{
			Code:    "VALIDATION_ERROR",
			Message: "collaborative_weight and content_weight must be supplied together",
		}
	}

	w := &recommend.Weights{Collaborative: collab, Content: content}
	if err := w.Validate(); err != nil {
		return nil, &validationAPIError{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		}
	}
	return w, nil
}

// validationAPIError is a lightweight code/message pair for request
// parsing failures.
type validationAPIError struct {
	Code    string
	Message string
}

// RecommendationsGenre serves the top-rated books of a genre.
func (h *Handler) RecommendationsGenre(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	genre := chiURLParam(r, "genre")
	if genre == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "genre is required")
		return
	}

	req := listRequest{Limit: getIntParam(r, "limit", defaultLimit)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
		return
	}

	books, err := h.engine.TopByGenre(genre, req.Limit)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	metrics.RecordRecommendation("genre", len(books))
	respondSuccess(w, map[string]interface{}{
		"genre": genre,
		"books": books,
	}, started)
}

// Book serves a single book's metadata.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	bookID, err := pathInt(r, "bookID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "bookID must be an integer")
		return
	}

	book, err := h.engine.Book(bookID)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	respondSuccess(w, book, started)
}

// AdminReload re-reads the data tables, rebuilds the model, and swaps
// it in. A failed rebuild leaves the previous snapshot serving.
func (h *Handler) AdminReload(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	books, err := h.data.Books()
	if err != nil {
		h.logger.Error().Err(err).Msg("reload: reading books failed")
		respondError(w, http.StatusInternalServerError, "RELOAD_FAILED", err.Error())
		return
	}

	interactions, err := h.data.Interactions()
	if err != nil {
		h.logger.Error().Err(err).Msg("reload: reading interactions failed")
		respondError(w, http.StatusInternalServerError, "RELOAD_FAILED", err.Error())
		return
	}

	if err := h.engine.Load(books, interactions); err != nil {
		metrics.RecordModelBuild(time.Since(started), 0, 0, 0, err)
		respondError(w, http.StatusInternalServerError, "RELOAD_FAILED", err.Error())
		return
	}

	snapshot, err := h.engine.Snapshot()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RELOAD_FAILED", err.Error())
		return
	}

	users, bookCount, features := snapshot.Stats()
	metrics.RecordModelBuild(time.Since(started), users, bookCount, features, nil)

	respondSuccess(w, map[string]interface{}{
		"reloaded": true,
		"users":    users,
		"books":    bookCount,
		"features": features,
	}, started)
}

// respondEngineError maps engine errors to HTTP status codes.
func (h *Handler) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrModelNotBuilt):
		respondError(w, http.StatusServiceUnavailable, "MODEL_NOT_READY", "model has not been built yet")
	case errors.Is(err, recommend.ErrUnknownUser):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "unknown user")
	case errors.Is(err, recommend.ErrUnknownBook):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "unknown book")
	default:
		h.logger.Error().Err(err).Msg("internal error")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}
