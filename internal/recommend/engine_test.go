// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestNewEngine(t *testing.T) {
	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Weights = Weights{Collaborative: 0.3, Content: 0.3}
		_, err := NewEngine(cfg, zerolog.Nop())
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("NewEngine() error = %v, want ConfigError", err)
		}
	})

	t.Run("fills zero values with defaults", func(t *testing.T) {
		e, err := NewEngine(Config{}, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		if e.cfg.Neighbors != 10 || e.cfg.VocabularySize != 1000 {
			t.Errorf("defaults not applied: %+v", e.cfg)
		}
	})
}

func TestEngineLifecycle(t *testing.T) {
	e := newTestEngine(t)

	t.Run("not servable before first load", func(t *testing.T) {
		if e.Ready() {
			t.Error("Ready() = true before Load")
		}
		if _, err := e.Snapshot(); !errors.Is(err, ErrModelNotBuilt) {
			t.Errorf("Snapshot() error = %v, want ErrModelNotBuilt", err)
		}
		if _, err := e.Recommend(1, 10, nil); !errors.Is(err, ErrModelNotBuilt) {
			t.Errorf("Recommend() error = %v, want ErrModelNotBuilt", err)
		}
	})

	t.Run("load makes the engine servable", func(t *testing.T) {
		if err := e.Load(testBooks(), testInteractions()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !e.Ready() {
			t.Error("Ready() = false after Load")
		}
		got, err := e.Recommend(1, 10, nil)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(got) == 0 {
			t.Error("no recommendations after Load")
		}
	})

	t.Run("failed reload keeps the previous snapshot", func(t *testing.T) {
		before, err := e.Snapshot()
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}

		bad := []Interaction{{UserID: 1, BookID: 1, Progress: -5}}
		if err := e.Load(testBooks(), bad); err == nil {
			t.Fatal("Load() with malformed data succeeded")
		}

		after, err := e.Snapshot()
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if before != after {
			t.Error("failed Load replaced the live snapshot")
		}
	})

	t.Run("successful reload swaps the snapshot", func(t *testing.T) {
		before, _ := e.Snapshot()
		if err := e.Load(testBooks(), testInteractions()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		after, _ := e.Snapshot()
		if before == after {
			t.Error("Load did not swap in a new snapshot")
		}
	})
}

func TestEngineRecommendWeights(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Load(testBooks(), testInteractions()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	t.Run("override weights apply", func(t *testing.T) {
		w := Weights{Collaborative: 0, Content: 1}
		got, err := e.Recommend(1, 10, &w)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		for _, r := range got {
			if r.HybridScore != r.ContentScore {
				t.Errorf("book %d hybrid %f != content %f under pure content weights",
					r.BookID, r.HybridScore, r.ContentScore)
			}
		}
	})

	t.Run("invalid override rejected", func(t *testing.T) {
		w := Weights{Collaborative: 0.9, Content: 0.9}
		if _, err := e.Recommend(1, 10, &w); err == nil {
			t.Fatal("invalid weight override accepted")
		}
	})
}

func TestEngineProxies(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Load(testBooks(), testInteractions()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	t.Run("similar users", func(t *testing.T) {
		got, err := e.SimilarUsers(1, 5)
		if err != nil || len(got) == 0 {
			t.Errorf("SimilarUsers() = %v, %v", got, err)
		}
	})

	t.Run("predictions", func(t *testing.T) {
		got, err := e.PredictForUser(1, 5, true)
		if err != nil || len(got) == 0 {
			t.Errorf("PredictForUser() = %v, %v", got, err)
		}
	})

	t.Run("similar books", func(t *testing.T) {
		got, err := e.SimilarBooks(1, 5, true)
		if err != nil || len(got) == 0 {
			t.Errorf("SimilarBooks() = %v, %v", got, err)
		}
	})

	t.Run("genre browse", func(t *testing.T) {
		got, err := e.TopByGenre("Sci-Fi", 5)
		if err != nil || len(got) != 2 {
			t.Errorf("TopByGenre() = %v, %v", got, err)
		}
	})

	t.Run("book lookup", func(t *testing.T) {
		b, err := e.Book(1)
		if err != nil || b.Title != "Starfall" {
			t.Errorf("Book(1) = %+v, %v", b, err)
		}
		if _, err := e.Book(99); !errors.Is(err, ErrUnknownBook) {
			t.Errorf("Book(99) error = %v, want ErrUnknownBook", err)
		}
	})
}
