// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

// Package store loads the audiobook catalog and listening history from
// CSV files.
//
// The books table has the header
//
//	id,title,author,genre,description,tags,duration_minutes,rating
//
// with tags separated by "|". The interactions table has the header
//
//	user_id,book_id,progress,rating,timestamp
//
// where rating may be empty (progress-only listen) and timestamp is
// RFC3339.
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jdhalloran/audioshelf/internal/recommend"
)

const (
	booksColumns        = 8
	interactionsColumns = 5
)

// LoadBooks reads the audiobook catalog from a CSV file.
func LoadBooks(path string) ([]recommend.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening books file: %w", err)
	}
	defer f.Close()

	books, err := ReadBooks(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return books, nil
}

// ReadBooks parses the audiobook catalog from a reader.
func ReadBooks(r io.Reader) ([]recommend.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = booksColumns

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != "id" {
		return nil, fmt.Errorf("unexpected header %q, want books table", header[0])
	}

	var books []recommend.Book
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: id %q: %w", line, rec[0], err)
		}
		duration, err := strconv.ParseFloat(rec[6], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: duration_minutes %q: %w", line, rec[6], err)
		}
		rating, err := parseOptionalFloat(rec[7])
		if err != nil {
			return nil, fmt.Errorf("line %d: rating %q: %w", line, rec[7], err)
		}

		books = append(books, recommend.Book{
			ID:              id,
			Title:           rec[1],
			Author:          rec[2],
			Genre:           rec[3],
			Description:     rec[4],
			Tags:            splitTags(rec[5]),
			DurationMinutes: duration,
			Rating:          rating,
		})
	}
	return books, nil
}

// LoadInteractions reads the listening history from a CSV file.
func LoadInteractions(path string) ([]recommend.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening interactions file: %w", err)
	}
	defer f.Close()

	interactions, err := ReadInteractions(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return interactions, nil
}

// ReadInteractions parses the listening history from a reader.
func ReadInteractions(r io.Reader) ([]recommend.Interaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = interactionsColumns

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != "user_id" {
		return nil, fmt.Errorf("unexpected header %q, want interactions table", header[0])
	}

	var interactions []recommend.Interaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		userID, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: user_id %q: %w", line, rec[0], err)
		}
		bookID, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: book_id %q: %w", line, rec[1], err)
		}
		progress, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: progress %q: %w", line, rec[2], err)
		}
		rating, err := parseOptionalFloat(rec[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: rating %q: %w", line, rec[3], err)
		}
		ts, err := time.Parse(time.RFC3339, rec[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: timestamp %q: %w", line, rec[4], err)
		}

		interactions = append(interactions, recommend.Interaction{
			UserID:    userID,
			BookID:    bookID,
			Progress:  progress,
			Rating:    rating,
			Timestamp: ts,
		})
	}
	return interactions, nil
}

// parseOptionalFloat treats an empty field as zero.
func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// splitTags splits a "|"-separated tag field, dropping empties.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
