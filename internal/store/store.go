// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package store

import "github.com/jdhalloran/audioshelf/internal/recommend"

// Store reads the catalog and history tables from their configured
// paths. Files are re-read on every call, so a reload picks up edits
// without restarting.
type Store struct {
	booksPath        string
	interactionsPath string
}

// New creates a Store over the given file paths.
func New(booksPath, interactionsPath string) *Store {
	return &Store{
		booksPath:        booksPath,
		interactionsPath: interactionsPath,
	}
}

// Books loads the audiobook catalog.
func (s *Store) Books() ([]recommend.Book, error) {
	return LoadBooks(s.booksPath)
}

// Interactions loads the listening history.
func (s *Store) Interactions() ([]recommend.Interaction, error) {
	return LoadInteractions(s.interactionsPath)
}
