// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors for identifier resolution. Match with errors.Is.
var (
	// ErrUnknownUser indicates the user identifier has no row in the
	// interaction matrix.
	ErrUnknownUser = errors.New("unknown user")

	// ErrUnknownBook indicates the book identifier is absent from the
	// content feature index.
	ErrUnknownBook = errors.New("unknown book")

	// ErrModelNotBuilt indicates no model snapshot has been loaded yet.
	ErrModelNotBuilt = errors.New("model not built")
)

// ConfigError reports an invalid engine configuration at construction
// time. It is fatal: a Model is never built from a bad config.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// DataError reports a malformed input row during matrix construction.
// It is fatal to the build step; the caller must not serve requests
// against a half-built model.
type DataError struct {
	Row    int
	Field  string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid data: row %d: %s: %s", e.Row, e.Field, e.Reason)
}
