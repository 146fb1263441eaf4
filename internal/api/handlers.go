// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

// Package api provides the HTTP surface of the recommendation
// service: a Chi router, JSON handlers over the recommendation
// engine, and an admin reload endpoint.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jdhalloran/audioshelf/internal/logging"
	"github.com/jdhalloran/audioshelf/internal/models"
	"github.com/jdhalloran/audioshelf/internal/recommend"
	"github.com/jdhalloran/audioshelf/internal/validation"
)

// DataSource supplies the catalog and history tables for model
// builds. Implemented by store.Store.
type DataSource interface {
	Books() ([]recommend.Book, error)
	Interactions() ([]recommend.Interaction, error)
}

// Handler serves all API endpoints against the recommendation engine.
type Handler struct {
	engine *recommend.Engine
	data   DataSource
	logger zerolog.Logger
}

// NewHandler creates the handler.
func NewHandler(engine *recommend.Engine, data DataSource) *Handler {
	return &Handler{
		engine: engine,
		data:   data,
		logger: logging.With().Str("component", "api").Logger(),
	}
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in the success envelope.
func respondSuccess(w http.ResponseWriter, data interface{}, started time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Data:     nil,
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// validateRequest validates a struct, returning a models.APIError in
// the VALIDATION_ERROR format, or nil.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getFloatParam extracts a float query parameter; ok is false when the
// parameter is absent or malformed.
func getFloatParam(r *http.Request, key string) (val float64, ok bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// pathInt parses an integer path segment.
func pathInt(r *http.Request, key string) (int, error) {
	return strconv.Atoi(chiURLParam(r, key))
}
