// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import "time"

// Book represents an audiobook with the metadata used for content-based
// scoring. Books are immutable during a scoring session.
type Book struct {
	// ID is the unique book identifier.
	ID int `json:"book_id"`

	// Title is the book title.
	Title string `json:"title"`

	// Author is the book author.
	Author string `json:"author"`

	// Genre is the single primary genre.
	Genre string `json:"genre"`

	// Description is the free-text blurb.
	Description string `json:"description,omitempty"`

	// Tags is the list of descriptive tags.
	Tags []string `json:"tags"`

	// DurationMinutes is the audiobook length in minutes.
	DurationMinutes float64 `json:"duration_minutes"`

	// Rating is the aggregate rating (0-5).
	Rating float64 `json:"rating,omitempty"`
}

// Interaction represents a single user-book listening record.
// At most one row per (user, book) pair is modeled; when duplicates
// occur in the input, the row with the latest timestamp wins.
type Interaction struct {
	// UserID is the user identifier.
	UserID int `json:"user_id"`

	// BookID is the book identifier.
	BookID int `json:"book_id"`

	// Progress is the listening completion percentage (0-100).
	Progress float64 `json:"progress"`

	// Rating is the optional explicit rating (1.0-5.0).
	// Zero means no rating was given.
	Rating float64 `json:"rating,omitempty"`

	// Timestamp is when the interaction was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// HasRating reports whether an explicit rating was given.
func (i Interaction) HasRating() bool {
	return i.Rating != 0
}

// Value returns the interaction matrix cell value for this row:
// rating * (progress/100) when a rating exists, progress/100 otherwise.
// Values always fall in [0, 5] for valid rows.
func (i Interaction) Value() float64 {
	w := i.Progress / 100.0
	if i.HasRating() {
		return i.Rating * w
	}
	return w
}

// SimilarUser is a neighbor in the collaborative model.
type SimilarUser struct {
	// UserID is the neighbor's identifier.
	UserID int `json:"user_id"`

	// Similarity is the cosine similarity to the target user.
	Similarity float64 `json:"similarity"`
}

// SimilarBook is a content-similarity neighbor with optional
// human-readable reasons.
type SimilarBook struct {
	// BookID is the similar book's identifier.
	BookID int `json:"book_id"`

	// Title is the book title.
	Title string `json:"title"`

	// Author is the book author.
	Author string `json:"author"`

	// Genre is the primary genre.
	Genre string `json:"genre"`

	// Similarity is the cosine similarity to the anchor book.
	// Populated only when scores were requested.
	Similarity float64 `json:"similarity,omitempty"`

	// Reasons lists best-effort similarity explanations
	// (shared genre, shared tags, comparable duration).
	Reasons []string `json:"reasons,omitempty"`
}

// ScoredBook pairs a book identifier with a raw engine score.
type ScoredBook struct {
	// BookID is the book identifier.
	BookID int `json:"book_id"`

	// Score is the engine's raw score for the book.
	Score float64 `json:"score"`
}

// Recommendation is a single ranked result with its metadata snapshot
// and score breakdown. Recommendations are ephemeral: constructed per
// request, never persisted.
type Recommendation struct {
	// BookID is the recommended book's identifier.
	BookID int `json:"book_id"`

	// Title is the book title.
	Title string `json:"title"`

	// Author is the book author.
	Author string `json:"author"`

	// Genre is the primary genre.
	Genre string `json:"genre"`

	// Tags is the book's tag list.
	Tags []string `json:"tags"`

	// HybridScore is the blended score in [0, 1].
	HybridScore float64 `json:"hybrid_score"`

	// CollaborativeScore is the normalized collaborative score in [0, 1].
	CollaborativeScore float64 `json:"collaborative_score"`

	// ContentScore is the normalized content score in [0, 1].
	ContentScore float64 `json:"content_score"`
}
