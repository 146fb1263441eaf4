// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import (
	"sort"
	"time"
)

// Model is an immutable scoring snapshot: the interaction matrix, the
// content feature matrix, and both precomputed similarity matrices.
// A Model is built once per data load and discarded on reload; it is
// never mutated afterwards and is safe for concurrent reads.
type Model struct {
	cfg Config

	interactions *interactionMatrix
	features     *featureMatrix

	// userSim is the dense user-user cosine matrix over interaction
	// rows. Indexed by interaction-matrix row.
	userSim [][]float64

	// bookSim is the dense book-book cosine matrix over content
	// feature rows. Indexed by feature-matrix row.
	bookSim [][]float64

	// byID resolves a book identifier to its metadata snapshot.
	byID map[int]Book

	builtAt time.Time
}

// BuildModel validates the configuration and input tables and builds a
// complete scoring snapshot. Construction errors (ConfigError,
// DataError) are fatal: no partially built Model is ever returned.
func BuildModel(books []Book, interactions []Interaction, cfg Config) (*Model, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	im, err := buildInteractionMatrix(interactions)
	if err != nil {
		return nil, err
	}

	// The feature matrix keys rows by book id, so a duplicated id
	// would leave the similarity matrix with more rows than the
	// index can resolve.
	byID := make(map[int]Book, len(books))
	for i, b := range books {
		if _, dup := byID[b.ID]; dup {
			return nil, &DataError{Row: i, Field: "id", Reason: "duplicate book id"}
		}
		byID[b.ID] = b
	}

	fm := buildContentFeatures(books, cfg.VocabularySize)

	return &Model{
		cfg:          cfg,
		interactions: im,
		features:     fm,
		userSim:      pairwiseCosine(im.matrix, cfg.NumWorkers),
		bookSim:      pairwiseCosine(fm.matrix, cfg.NumWorkers),
		byID:         byID,
		builtAt:      time.Now(),
	}, nil
}

// BuiltAt returns when the snapshot was constructed.
func (m *Model) BuiltAt() time.Time {
	return m.builtAt
}

// Weights returns the configured blend weights.
func (m *Model) Weights() Weights {
	return m.cfg.Weights
}

// Book returns the metadata snapshot for a book identifier.
func (m *Model) Book(bookID int) (Book, bool) {
	b, ok := m.byID[bookID]
	return b, ok
}

// Stats reports corpus sizes for observability.
func (m *Model) Stats() (users, books, features int) {
	return m.interactions.users.len(), len(m.byID), len(m.features.featureNames)
}

// FeatureNames returns the content feature column semantics.
func (m *Model) FeatureNames() []string {
	names := make([]string, len(m.features.featureNames))
	copy(names, m.features.featureNames)
	return names
}

// TopByGenre returns up to n books of the given genre ranked by
// aggregate rating descending, ties broken by book id ascending.
func (m *Model) TopByGenre(genre string, n int) []Book {
	matched := make([]Book, 0)
	for _, b := range m.byID {
		if b.Genre == genre {
			matched = append(matched, b)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Rating != matched[j].Rating {
			return matched[i].Rating > matched[j].Rating
		}
		return matched[i].ID < matched[j].ID
	})

	if len(matched) > n {
		matched = matched[:n]
	}
	return matched
}

// rankedIDs sorts a score map descending with book id ascending as the
// deterministic tie-break, returning up to n identifiers.
func rankedIDs(scores map[int]float64, n int) []int {
	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// normalizeScores min-max scales a score map to [0, 1] in place-free
// fashion. A single distinct score maps everything to 1.0 rather than
// dividing by zero. Empty input returns an empty map.
func normalizeScores(scores map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	var minScore, maxScore float64
	first := true
	for _, s := range scores {
		if first {
			minScore, maxScore = s, s
			first = false
			continue
		}
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}

	span := maxScore - minScore
	if span == 0 {
		for id := range scores {
			out[id] = 1.0
		}
		return out
	}

	for id, s := range scores {
		out[id] = (s - minScore) / span
	}
	return out
}
