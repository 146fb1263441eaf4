// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

// Package recommend implements the hybrid audiobook recommendation core.
//
// Two scoring signals are blended: collaborative filtering (user-user
// cosine similarity over an interaction matrix) and content-based
// filtering (item-item cosine similarity over TF-IDF text features,
// genre one-hot encoding, and scaled duration).
//
// # Model Lifecycle
//
// All state lives in an immutable Model snapshot produced by BuildModel.
// The Engine holds the current snapshot behind an atomic pointer:
// reloading data builds a fresh Model and swaps it in without blocking
// in-flight reads. A Model is never mutated after construction, so
// concurrent requests may share it freely.
//
// # Scoring
//
// For a hybrid request, both engines are asked for 2x the requested
// number of candidates, each engine's scores are min-max normalized to
// [0, 1] independently, and the final score is a weighted sum. Items
// the user has already listened to are always excluded. A user unknown
// to one engine degrades that engine's contribution to empty rather
// than failing the request.
package recommend
