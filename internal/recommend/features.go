// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// featureMatrix is the sparse book×feature content matrix with its
// own book index. The book row order here is independent of the
// interaction matrix's column order; the two are reconciled by book
// identifier, never by position.
type featureMatrix struct {
	matrix *csrMatrix
	books  *idIndex

	// featureNames holds the column semantics: TF-IDF terms first,
	// then genre_<name> one-hot columns, then "duration".
	featureNames []string
}

// buildContentFeatures assembles the content feature matrix:
// TF-IDF over description+tags (unigrams and bigrams, stop-words
// dropped, vocabulary capped), one-hot genre, and min-max scaled
// duration, concatenated column-wise. The construction is a pure
// function of the book table, so vocabulary and column order are
// reproducible.
func buildContentFeatures(books []Book, vocabSize int) *featureMatrix {
	index := newIDIndex()
	docs := make([][]string, 0, len(books))
	for _, b := range books {
		index.add(b.ID)
		text := b.Description + " " + strings.Join(b.Tags, " ")
		docs = append(docs, tokenize(text))
	}

	vocab := buildVocabulary(docs, vocabSize)
	tfidfCols := len(vocab)

	genres := distinctGenres(books)
	genreCol := make(map[string]int, len(genres))
	for i, g := range genres {
		genreCol[g] = tfidfCols + i
	}

	durationCol := tfidfCols + len(genres)
	numCols := durationCol + 1

	minDur, maxDur := durationRange(books)

	// Document frequency for smoothed IDF.
	df := make([]int, tfidfCols)
	for _, doc := range docs {
		seen := make(map[int]struct{})
		for _, term := range doc {
			if col, ok := vocab[term]; ok {
				seen[col] = struct{}{}
			}
		}
		for col := range seen {
			df[col]++
		}
	}

	n := float64(len(docs))
	idf := make([]float64, tfidfCols)
	for col, d := range df {
		idf[col] = math.Log((1+n)/(1+float64(d))) + 1
	}

	rows := make([]map[int]float64, len(books))
	for i, doc := range docs {
		row := make(map[int]float64)

		// Term frequency weighted by IDF, then L2-normalized so
		// documents of different lengths are comparable.
		for _, term := range doc {
			if col, ok := vocab[term]; ok {
				row[col] += idf[col]
			}
		}
		var norm float64
		for _, v := range row {
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for col := range row {
				row[col] /= norm
			}
		}

		if col, ok := genreCol[books[i].Genre]; ok {
			row[col] = 1.0
		}

		if d := scaleDuration(books[i].DurationMinutes, minDur, maxDur); d != 0 {
			row[durationCol] = d
		}

		rows[i] = row
	}

	names := make([]string, 0, numCols)
	names = append(names, vocabTerms(vocab)...)
	for _, g := range genres {
		names = append(names, "genre_"+g)
	}
	names = append(names, "duration")

	return &featureMatrix{
		matrix:       newCSRFromRows(rows, numCols),
		books:        index,
		featureNames: names,
	}
}

// tokenize lowercases text, splits on non-alphanumeric runs, drops
// stop-words and single-character tokens, and appends adjacent
// term-pairs to the unigram stream.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if _, stop := englishStopWords[w]; stop {
			continue
		}
		terms = append(terms, w)
	}

	out := make([]string, 0, 2*len(terms))
	out = append(out, terms...)
	for i := 0; i+1 < len(terms); i++ {
		out = append(out, terms[i]+" "+terms[i+1])
	}
	return out
}

// buildVocabulary selects up to maxTerms terms by total corpus
// frequency, breaking count ties alphabetically for determinism, and
// assigns column indices in alphabetical term order.
func buildVocabulary(docs [][]string, maxTerms int) map[string]int {
	counts := make(map[string]int)
	for _, doc := range docs {
		for _, term := range doc {
			counts[term]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[term] = i
	}
	return vocab
}

// vocabTerms returns vocabulary terms ordered by column index.
func vocabTerms(vocab map[string]int) []string {
	terms := make([]string, len(vocab))
	for term, col := range vocab {
		terms[col] = term
	}
	return terms
}

// distinctGenres returns the sorted set of non-empty genres.
func distinctGenres(books []Book) []string {
	seen := make(map[string]struct{})
	for _, b := range books {
		if b.Genre != "" {
			seen[b.Genre] = struct{}{}
		}
	}
	genres := make([]string, 0, len(seen))
	for g := range seen {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

func durationRange(books []Book) (minDur, maxDur float64) {
	first := true
	for _, b := range books {
		if first {
			minDur, maxDur = b.DurationMinutes, b.DurationMinutes
			first = false
			continue
		}
		if b.DurationMinutes < minDur {
			minDur = b.DurationMinutes
		}
		if b.DurationMinutes > maxDur {
			maxDur = b.DurationMinutes
		}
	}
	return minDur, maxDur
}

// scaleDuration min-max scales a duration to [0, 1]. A zero-range
// corpus maps to 0 rather than dividing by zero.
func scaleDuration(d, minDur, maxDur float64) float64 {
	if maxDur == minDur {
		return 0
	}
	return (d - minDur) / (maxDur - minDur)
}
