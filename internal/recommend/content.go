// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// maxSimilarityReasons caps the explanation list per similar book.
const maxSimilarityReasons = 3

// comparableDurationMinutes is the duration delta considered "similar
// length" when explaining similarity.
const comparableDurationMinutes = 60.0

// SimilarBooks returns up to topN books most similar to the anchor by
// content features, ordered by similarity descending with book id
// ascending on ties. The anchor is excluded by identity, so another
// book tied at similarity 1.0 is still eligible. Similarity scores are
// attached only when includeScores is set; reasons are best-effort and
// never fail the call.
func (m *Model) SimilarBooks(bookID, topN int, includeScores bool) ([]SimilarBook, error) {
	scores, err := m.contentSimilarityScores(bookID)
	if err != nil {
		return nil, err
	}

	ranked := rankedIDs(scores, topN)
	anchor := m.byID[bookID]

	out := make([]SimilarBook, 0, len(ranked))
	for _, id := range ranked {
		book := m.byID[id]
		sb := SimilarBook{
			BookID:  id,
			Title:   book.Title,
			Author:  book.Author,
			Genre:   book.Genre,
			Reasons: similarityReasons(anchor, book),
		}
		if includeScores {
			sb.Similarity = scores[id]
		}
		out = append(out, sb)
	}
	return out, nil
}

// contentSimilarityScores returns the anchor's similarity to every
// other book in the feature index.
func (m *Model) contentSimilarityScores(bookID int) (map[int]float64, error) {
	bookIdx, ok := m.features.books.index(bookID)
	if !ok {
		return nil, fmt.Errorf("similar books for %d: %w", bookID, ErrUnknownBook)
	}

	sims := m.bookSim[bookIdx]
	scores := make(map[int]float64, len(sims)-1)
	for idx, s := range sims {
		if idx == bookIdx {
			continue
		}
		scores[m.features.books.id(idx)] = s
	}
	return scores, nil
}

// similarityReasons produces human-readable explanations for why two
// books are similar. It is a secondary annotation: missing metadata
// simply yields fewer reasons.
func similarityReasons(anchor, other Book) []string {
	reasons := make([]string, 0, maxSimilarityReasons)

	if anchor.Genre != "" && anchor.Genre == other.Genre {
		reasons = append(reasons, "Same genre: "+anchor.Genre)
	}

	if shared := sharedTags(anchor.Tags, other.Tags); len(shared) > 0 {
		if len(shared) > 2 {
			shared = shared[:2]
		}
		tags := shared[0]
		if len(shared) == 2 {
			tags += ", " + shared[1]
		}
		reasons = append(reasons, "Similar themes: "+tags)
	}

	if math.Abs(anchor.DurationMinutes-other.DurationMinutes) <= comparableDurationMinutes {
		reasons = append(reasons, "Similar length")
	}

	if len(reasons) > maxSimilarityReasons {
		reasons = reasons[:maxSimilarityReasons]
	}
	return reasons
}

// sharedTags returns the sorted intersection of two tag lists.
func sharedTags(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}

	var shared []string
	seen := make(map[string]struct{})
	for _, t := range b {
		if _, ok := set[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		shared = append(shared, t)
	}
	sort.Strings(shared)
	return shared
}

// contentScoresForUser derives content candidates from the user's top
// consumed books: each anchor contributes its similar books, and a
// book reached through several anchors gets the mean similarity across
// them. An unknown user yields ErrUnknownUser; anchors missing from
// the feature index are skipped.
func (m *Model) contentScoresForUser(userID, topN int) (map[int]float64, error) {
	userIdx, ok := m.interactions.users.index(userID)
	if !ok {
		return nil, fmt.Errorf("content scores for %d: %w", userID, ErrUnknownUser)
	}

	anchors := m.topConsumed(userIdx, m.cfg.AnchorBooks)

	collected := make(map[int][]float64)
	for _, anchor := range anchors {
		scores, err := m.contentSimilarityScores(anchor)
		if err != nil {
			continue
		}
		for _, id := range rankedIDs(scores, topN) {
			collected[id] = append(collected[id], scores[id])
		}
	}

	out := make(map[int]float64, len(collected))
	for id, sims := range collected {
		var sum float64
		for _, s := range sims {
			sum += s
		}
		out[id] = sum / float64(len(sims))
	}
	return out, nil
}
