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

// SimilarUsers returns up to n users most similar to the given user,
// ordered by similarity descending with user id ascending as the
// tie-break. The target user is excluded by identity, never by sort
// position, so another user legitimately tied at similarity 1.0 is
// still returned.
func (m *Model) SimilarUsers(userID, n int) ([]SimilarUser, error) {
	userIdx, ok := m.interactions.users.index(userID)
	if !ok {
		return nil, fmt.Errorf("similar users for %d: %w", userID, ErrUnknownUser)
	}

	sims := m.userSim[userIdx]
	neighbors := make([]SimilarUser, 0, len(sims)-1)
	for idx, s := range sims {
		if idx == userIdx {
			continue
		}
		neighbors = append(neighbors, SimilarUser{UserID: m.interactions.users.id(idx), Similarity: s})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})

	if len(neighbors) > n {
		neighbors = neighbors[:n]
	}
	return neighbors, nil
}

// PredictForUser scores books for a user via similarity-weighted
// averaging over the top configured neighbors, returning up to topN
// results ordered by predicted score descending, book id ascending on
// ties. When excludeConsumed is set, the user's consumed books are
// removed from the candidate set before ranking, so the result is
// exactly topN previously-unseen books or fewer when candidates run
// out.
func (m *Model) PredictForUser(userID, topN int, excludeConsumed bool) ([]ScoredBook, error) {
	scores, err := m.collaborativeScores(userID, topN, excludeConsumed)
	if err != nil {
		return nil, err
	}

	ranked := rankedIDs(scores, topN)
	out := make([]ScoredBook, 0, len(ranked))
	for _, id := range ranked {
		out = append(out, ScoredBook{BookID: id, Score: scores[id]})
	}
	return out, nil
}

// collaborativeScores computes raw predicted scores for all candidate
// columns, truncated to the topN best.
func (m *Model) collaborativeScores(userID, topN int, excludeConsumed bool) (map[int]float64, error) {
	userIdx, ok := m.interactions.users.index(userID)
	if !ok {
		return nil, fmt.Errorf("predict for %d: %w", userID, ErrUnknownUser)
	}

	neighbors, err := m.SimilarUsers(userID, m.cfg.Neighbors)
	if err != nil {
		return nil, err
	}

	// Total neighbor weight is shared by every candidate; a zero total
	// defaults all predictions to 0 rather than dividing by zero.
	var weightSum float64
	for _, nb := range neighbors {
		weightSum += math.Abs(nb.Similarity)
	}

	var consumedCols map[int]struct{}
	if excludeConsumed {
		cols, _ := m.interactions.matrix.Row(userIdx)
		consumedCols = make(map[int]struct{}, len(cols))
		for _, c := range cols {
			consumedCols[c] = struct{}{}
		}
	}

	weighted := make(map[int]float64)
	for _, nb := range neighbors {
		nbIdx, ok := m.interactions.users.index(nb.UserID)
		if !ok {
			continue
		}
		cols, vals := m.interactions.matrix.Row(nbIdx)
		for i, c := range cols {
			if _, skip := consumedCols[c]; skip {
				continue
			}
			weighted[c] += nb.Similarity * vals[i]
		}
	}

	scores := make(map[int]float64, len(weighted))
	for c, w := range weighted {
		var s float64
		if weightSum > 0 {
			s = w / weightSum
		}
		scores[c] = s
	}

	// Keep only the topN columns before mapping back to identifiers.
	cols := make([]int, 0, len(scores))
	for c := range scores {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool {
		if scores[cols[i]] != scores[cols[j]] {
			return scores[cols[i]] > scores[cols[j]]
		}
		return m.interactions.books.id(cols[i]) < m.interactions.books.id(cols[j])
	})
	if len(cols) > topN {
		cols = cols[:topN]
	}

	out := make(map[int]float64, len(cols))
	for _, c := range cols {
		out[m.interactions.books.id(c)] = scores[c]
	}
	return out, nil
}

// topConsumed returns up to n of the user's consumed books ranked by
// weighted interaction value descending, book id ascending on ties.
// These anchor the content engine's candidate generation.
func (m *Model) topConsumed(userIdx, n int) []int {
	cols, vals := m.interactions.matrix.Row(userIdx)

	order := make([]int, len(cols))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if vals[order[a]] != vals[order[b]] {
			return vals[order[a]] > vals[order[b]]
		}
		return m.interactions.books.id(cols[order[a]]) < m.interactions.books.id(cols[order[b]])
	})

	if len(order) > n {
		order = order[:n]
	}
	ids := make([]int, 0, len(order))
	for _, i := range order {
		ids = append(ids, m.interactions.books.id(cols[i]))
	}
	return ids
}
