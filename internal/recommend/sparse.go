// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import (
	"math"
	"sort"
	"sync"
)

// csrMatrix is a compressed sparse row matrix. Only nonzero entries are
// stored; an absent cell is an implicit zero. Column indices within a
// row are sorted ascending.
type csrMatrix struct {
	numRows int
	numCols int
	indptr  []int
	indices []int
	data    []float64
}

// newCSRFromRows builds a CSR matrix from per-row column->value maps.
// Zero values are dropped.
func newCSRFromRows(rows []map[int]float64, numCols int) *csrMatrix {
	m := &csrMatrix{
		numRows: len(rows),
		numCols: numCols,
		indptr:  make([]int, 1, len(rows)+1),
	}

	for _, row := range rows {
		cols := make([]int, 0, len(row))
		for c, v := range row {
			if v != 0 {
				cols = append(cols, c)
			}
		}
		sort.Ints(cols)

		for _, c := range cols {
			m.indices = append(m.indices, c)
			m.data = append(m.data, row[c])
		}
		m.indptr = append(m.indptr, len(m.indices))
	}

	return m
}

// Row returns the column indices and values of row i.
// The returned slices alias internal storage and must not be modified.
func (m *csrMatrix) Row(i int) (cols []int, vals []float64) {
	start, end := m.indptr[i], m.indptr[i+1]
	return m.indices[start:end], m.data[start:end]
}

// Get returns the value at (i, j), zero when not stored.
func (m *csrMatrix) Get(i, j int) float64 {
	cols, vals := m.Row(i)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return vals[k]
	}
	return 0
}

// dotRows computes the dot product of rows i and j by merging their
// sorted column lists.
func (m *csrMatrix) dotRows(i, j int) float64 {
	aCols, aVals := m.Row(i)
	bCols, bVals := m.Row(j)

	var dot float64
	for ai, bi := 0, 0; ai < len(aCols) && bi < len(bCols); {
		switch {
		case aCols[ai] == bCols[bi]:
			dot += aVals[ai] * bVals[bi]
			ai++
			bi++
		case aCols[ai] < bCols[bi]:
			ai++
		default:
			bi++
		}
	}
	return dot
}

// rowNorms returns the Euclidean norm of every row.
func (m *csrMatrix) rowNorms() []float64 {
	norms := make([]float64, m.numRows)
	for i := 0; i < m.numRows; i++ {
		_, vals := m.Row(i)
		var sum float64
		for _, v := range vals {
			sum += v * v
		}
		norms[i] = math.Sqrt(sum)
	}
	return norms
}

// pairwiseCosine computes the dense row-row cosine similarity matrix.
// The result is symmetric with diagonal 1.0. Rows are processed in
// parallel chunks.
func pairwiseCosine(m *csrMatrix, numWorkers int) [][]float64 {
	if numWorkers < 1 {
		numWorkers = 1
	}

	norms := m.rowNorms()
	sim := make([][]float64, m.numRows)
	for i := range sim {
		sim[i] = make([]float64, m.numRows)
	}

	var wg sync.WaitGroup
	chunkSize := (m.numRows + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > m.numRows {
			end = m.numRows
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			for i := start; i < end; i++ {
				sim[i][i] = 1.0
				for j := i + 1; j < m.numRows; j++ {
					var s float64
					if norms[i] > 0 && norms[j] > 0 {
						s = m.dotRows(i, j) / (norms[i] * norms[j])
					}
					sim[i][j] = s
					sim[j][i] = s
				}
			}
		}(start, end)
	}

	wg.Wait()
	return sim
}
