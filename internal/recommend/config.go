// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import "math"

// weightTolerance is the allowed deviation of the weight sum from 1.0.
const weightTolerance = 1e-6

// Weights defines the relative contribution of the two engines.
// Both must be non-negative and sum to 1.0 within a 1e-6 tolerance.
type Weights struct {
	// Collaborative is the weight for the collaborative engine.
	Collaborative float64 `json:"collaborative" koanf:"collaborative"`

	// Content is the weight for the content engine.
	Content float64 `json:"content" koanf:"content"`
}

// DefaultWeights returns the production default blend.
func DefaultWeights() Weights {
	return Weights{Collaborative: 0.6, Content: 0.4}
}

// Validate checks range and sum constraints.
func (w Weights) Validate() error {
	if w.Collaborative < 0 || w.Collaborative > 1 {
		return &ConfigError{Field: "weights.collaborative", Reason: "must be in [0, 1]"}
	}
	if w.Content < 0 || w.Content > 1 {
		return &ConfigError{Field: "weights.content", Reason: "must be in [0, 1]"}
	}
	if math.Abs(w.Collaborative+w.Content-1.0) > weightTolerance {
		return &ConfigError{Field: "weights", Reason: "must sum to 1.0"}
	}
	return nil
}

// Config contains all tunables of the recommendation core.
type Config struct {
	// Weights defines the hybrid blend.
	Weights Weights `json:"weights" koanf:"weights"`

	// Neighbors is the number of similar users consulted per
	// collaborative prediction.
	Neighbors int `json:"neighbors" koanf:"neighbors"`

	// AnchorBooks is how many of the user's top consumed books seed
	// the content engine's candidates.
	AnchorBooks int `json:"anchor_books" koanf:"anchor_books"`

	// VocabularySize caps the TF-IDF vocabulary.
	VocabularySize int `json:"vocabulary_size" koanf:"vocabulary_size"`

	// OverFetch multiplies the requested top-N when querying each
	// engine, absorbing overlap and filtering losses.
	OverFetch int `json:"over_fetch" koanf:"over_fetch"`

	// NumWorkers is the number of goroutines used for pairwise
	// similarity matrix construction. Zero means 4.
	NumWorkers int `json:"num_workers" koanf:"num_workers"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Weights:        DefaultWeights(),
		Neighbors:      10,
		AnchorBooks:    3,
		VocabularySize: 1000,
		OverFetch:      2,
		NumWorkers:     4,
	}
}

// Validate checks the configuration, returning a ConfigError on the
// first violation.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.Neighbors < 1 {
		return &ConfigError{Field: "neighbors", Reason: "must be positive"}
	}
	if c.AnchorBooks < 1 {
		return &ConfigError{Field: "anchor_books", Reason: "must be positive"}
	}
	if c.VocabularySize < 1 {
		return &ConfigError{Field: "vocabulary_size", Reason: "must be positive"}
	}
	if c.OverFetch < 1 {
		return &ConfigError{Field: "over_fetch", Reason: "must be positive"}
	}
	if c.NumWorkers < 0 {
		return &ConfigError{Field: "num_workers", Reason: "must be non-negative"}
	}
	return nil
}

// withDefaults fills zero values with defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Weights == (Weights{}) {
		c.Weights = d.Weights
	}
	if c.Neighbors == 0 {
		c.Neighbors = d.Neighbors
	}
	if c.AnchorBooks == 0 {
		c.AnchorBooks = d.AnchorBooks
	}
	if c.VocabularySize == 0 {
		c.VocabularySize = d.VocabularySize
	}
	if c.OverFetch == 0 {
		c.OverFetch = d.OverFetch
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = d.NumWorkers
	}
	return c
}
