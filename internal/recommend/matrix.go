// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

// idIndex is a stable bidirectional identifier<->index mapping.
// Indices are assigned in first-seen order and never mutated after the
// build; rebuilding from different input may of course reorder them.
type idIndex struct {
	toIdx map[int]int
	toID  []int
}

func newIDIndex() *idIndex {
	return &idIndex{toIdx: make(map[int]int)}
}

// add returns the index for id, assigning the next one on first sight.
func (x *idIndex) add(id int) int {
	if idx, ok := x.toIdx[id]; ok {
		return idx
	}
	idx := len(x.toID)
	x.toIdx[id] = idx
	x.toID = append(x.toID, id)
	return idx
}

// index returns the index for id, false when unknown.
func (x *idIndex) index(id int) (int, bool) {
	idx, ok := x.toIdx[id]
	return idx, ok
}

// id returns the identifier at idx.
func (x *idIndex) id(idx int) int {
	return x.toID[idx]
}

// len returns the number of mapped identifiers.
func (x *idIndex) len() int {
	return len(x.toID)
}

// interactionMatrix is the sparse user×book matrix with its id
// mappings. Cell values follow Interaction.Value and fall in [0, 5].
type interactionMatrix struct {
	matrix *csrMatrix
	users  *idIndex
	books  *idIndex
}

// buildInteractionMatrix validates interaction rows and assembles the
// sparse matrix. Row and column indices are assigned in first-seen
// order over the raw input; when several rows target the same
// (user, book) cell, the row with the latest timestamp wins, with
// later input position breaking timestamp ties.
func buildInteractionMatrix(interactions []Interaction) (*interactionMatrix, error) {
	users := newIDIndex()
	books := newIDIndex()

	// Winning row per cell, keyed by (userIdx, bookIdx).
	type cell struct{ u, b int }
	winner := make(map[cell]int, len(interactions))

	for i, in := range interactions {
		if in.Progress < 0 || in.Progress > 100 {
			return nil, &DataError{Row: i, Field: "progress", Reason: "must be in [0, 100]"}
		}
		if in.HasRating() && (in.Rating < 1 || in.Rating > 5) {
			return nil, &DataError{Row: i, Field: "rating", Reason: "must be in [1, 5]"}
		}

		u := users.add(in.UserID)
		b := books.add(in.BookID)

		c := cell{u, b}
		if prev, ok := winner[c]; ok {
			if interactions[i].Timestamp.Before(interactions[prev].Timestamp) {
				continue
			}
		}
		winner[c] = i
	}

	rows := make([]map[int]float64, users.len())
	for i := range rows {
		rows[i] = make(map[int]float64)
	}
	for c, i := range winner {
		rows[c.u][c.b] = interactions[i].Value()
	}

	return &interactionMatrix{
		matrix: newCSRFromRows(rows, books.len()),
		users:  users,
		books:  books,
	}, nil
}

// consumed returns the set of book identifiers with a stored
// interaction value for the user at row userIdx.
func (m *interactionMatrix) consumed(userIdx int) map[int]struct{} {
	cols, _ := m.matrix.Row(userIdx)
	set := make(map[int]struct{}, len(cols))
	for _, c := range cols {
		set[m.books.id(c)] = struct{}{}
	}
	return set
}
