// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import "errors"

// Recommend blends both engines into a ranked top-N list for a user
// using the model's configured weights.
func (m *Model) Recommend(userID, topN int) ([]Recommendation, error) {
	return m.RecommendWeighted(userID, topN, m.cfg.Weights)
}

// RecommendWeighted is Recommend with a per-request weight override.
//
// Each engine is asked for an over-fetched candidate set, scores are
// min-max normalized per engine, blended by weight (a book missing
// from one engine counts 0 in that engine's term), consumed books are
// filtered, and the result is sorted by hybrid score descending with
// book id ascending on ties.
//
// A user unknown to an engine degrades that engine's contribution to
// empty; only when both engines fail to resolve the user does the call
// return an empty list. Returning zero recommendations is a valid
// outcome, not an error.
func (m *Model) RecommendWeighted(userID, topN int, w Weights) ([]Recommendation, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if topN < 1 {
		return []Recommendation{}, nil
	}

	fetch := m.cfg.OverFetch * topN

	collabRaw, collabErr := m.collaborativeScores(userID, fetch, true)
	if collabErr != nil {
		if !errors.Is(collabErr, ErrUnknownUser) {
			return nil, collabErr
		}
		collabRaw = map[int]float64{}
	}

	contentRaw, contentErr := m.contentScoresForUser(userID, fetch)
	if contentErr != nil {
		if !errors.Is(contentErr, ErrUnknownUser) {
			return nil, contentErr
		}
		contentRaw = map[int]float64{}
	}

	if collabErr != nil && contentErr != nil {
		return []Recommendation{}, nil
	}

	collab := normalizeScores(collabRaw)
	content := normalizeScores(contentRaw)
	hybrid := blendScores(collab, content, w)

	// Consumed books never reappear, whichever engine produced them.
	if userIdx, ok := m.interactions.users.index(userID); ok {
		for id := range m.interactions.consumed(userIdx) {
			delete(hybrid, id)
		}
	}

	// Interactions may reference books missing from the catalog;
	// those ids have no metadata to recommend with.
	for id := range hybrid {
		if _, ok := m.byID[id]; !ok {
			delete(hybrid, id)
		}
	}

	out := make([]Recommendation, 0, topN)
	for _, id := range rankedIDs(hybrid, topN) {
		book := m.byID[id]
		out = append(out, Recommendation{
			BookID:             id,
			Title:              book.Title,
			Author:             book.Author,
			Genre:              book.Genre,
			Tags:               book.Tags,
			HybridScore:        hybrid[id],
			CollaborativeScore: collab[id],
			ContentScore:       content[id],
		})
	}
	return out, nil
}

// blendScores combines two normalized score maps into the weighted
// hybrid map. A book missing from one engine contributes 0 to that
// engine's term.
func blendScores(collab, content map[int]float64, w Weights) map[int]float64 {
	hybrid := make(map[int]float64, len(collab)+len(content))
	for id, s := range collab {
		hybrid[id] = w.Collaborative * s
	}
	for id, s := range content {
		hybrid[id] += w.Content * s
	}
	return hybrid
}
