// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Engine owns the current Model snapshot and serves requests against
// it. Requests between a Load and its swap keep reading the previous
// snapshot; a reload never races in-flight scoring.
type Engine struct {
	cfg    Config
	logger zerolog.Logger
	model  atomic.Pointer[Model]
}

// NewEngine creates an engine with a validated configuration. The
// engine is not servable until the first successful Load.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, logger zerolog.Logger) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Load builds a fresh Model from the given tables and atomically swaps
// it in. On build failure the previous snapshot stays live.
func (e *Engine) Load(books []Book, interactions []Interaction) error {
	start := time.Now()

	model, err := BuildModel(books, interactions, e.cfg)
	if err != nil {
		e.logger.Error().Err(err).Msg("model build failed")
		return err
	}

	e.model.Store(model)

	users, bookCount, features := model.Stats()
	e.logger.Info().
		Int("users", users).
		Int("books", bookCount).
		Int("features", features).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("model built")

	return nil
}

// Snapshot returns the current Model, or ErrModelNotBuilt before the
// first Load.
func (e *Engine) Snapshot() (*Model, error) {
	m := e.model.Load()
	if m == nil {
		return nil, ErrModelNotBuilt
	}
	return m, nil
}

// Ready reports whether a snapshot is servable.
func (e *Engine) Ready() bool {
	return e.model.Load() != nil
}

// Recommend produces hybrid recommendations for a user. A nil weights
// pointer uses the configured blend. An unknown user degrades to an
// empty list with a warning rather than an error.
func (e *Engine) Recommend(userID, topN int, weights *Weights) ([]Recommendation, error) {
	m, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	w := m.Weights()
	if weights != nil {
		w = *weights
	}

	if _, ok := m.interactions.users.index(userID); !ok {
		e.logger.Warn().
			Int("user_id", userID).
			Msg("user absent from interaction matrix, engines degrade to empty")
	}

	return m.RecommendWeighted(userID, topN, w)
}

// SimilarUsers proxies to the current snapshot.
func (e *Engine) SimilarUsers(userID, n int) ([]SimilarUser, error) {
	m, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return m.SimilarUsers(userID, n)
}

// PredictForUser proxies to the current snapshot.
func (e *Engine) PredictForUser(userID, topN int, excludeConsumed bool) ([]ScoredBook, error) {
	m, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return m.PredictForUser(userID, topN, excludeConsumed)
}

// SimilarBooks proxies to the current snapshot.
func (e *Engine) SimilarBooks(bookID, topN int, includeScores bool) ([]SimilarBook, error) {
	m, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return m.SimilarBooks(bookID, topN, includeScores)
}

// TopByGenre proxies to the current snapshot.
func (e *Engine) TopByGenre(genre string, n int) ([]Book, error) {
	m, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return m.TopByGenre(genre, n), nil
}

// Book looks up a metadata snapshot in the current model.
func (e *Engine) Book(bookID int) (Book, error) {
	m, err := e.Snapshot()
	if err != nil {
		return Book{}, err
	}
	b, ok := m.Book(bookID)
	if !ok {
		return Book{}, ErrUnknownBook
	}
	return b, nil
}
