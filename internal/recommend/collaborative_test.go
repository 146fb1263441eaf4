// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package recommend

import (
	"errors"
	"testing"
	"time"
)

func TestSimilarUsers(t *testing.T) {
	m := buildTestModel(t)

	t.Run("excludes the target user by identity", func(t *testing.T) {
		got, err := m.SimilarUsers(1, 10)
		if err != nil {
			t.Fatalf("SimilarUsers() error = %v", err)
		}
		for _, nb := range got {
			if nb.UserID == 1 {
				t.Fatal("target user returned as its own neighbor")
			}
		}
		if len(got) != 2 {
			t.Errorf("neighbors = %d, want 2", len(got))
		}
	})

	t.Run("shared listening outranks no overlap", func(t *testing.T) {
		got, err := m.SimilarUsers(1, 10)
		if err != nil {
			t.Fatalf("SimilarUsers() error = %v", err)
		}
		if got[0].UserID != 2 {
			t.Errorf("nearest neighbor = %d, want 2", got[0].UserID)
		}
		if got[0].Similarity <= got[1].Similarity {
			t.Errorf("similarities not descending: %f then %f", got[0].Similarity, got[1].Similarity)
		}
	})

	t.Run("identical duplicate user is still returned", func(t *testing.T) {
		at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		twin, err := BuildModel(testBooks(), []Interaction{
			{UserID: 1, BookID: 1, Progress: 100, Rating: 5, Timestamp: at},
			{UserID: 2, BookID: 1, Progress: 100, Rating: 5, Timestamp: at},
		}, DefaultConfig())
		if err != nil {
			t.Fatalf("BuildModel() error = %v", err)
		}
		got, err := twin.SimilarUsers(1, 10)
		if err != nil {
			t.Fatalf("SimilarUsers() error = %v", err)
		}
		if len(got) != 1 || got[0].UserID != 2 {
			t.Fatalf("neighbors = %v, want the identical twin user 2", got)
		}
		if got[0].Similarity < 1.0-valueTolerance {
			t.Errorf("twin similarity = %f, want 1.0", got[0].Similarity)
		}
	})

	t.Run("truncates to n", func(t *testing.T) {
		got, err := m.SimilarUsers(1, 1)
		if err != nil {
			t.Fatalf("SimilarUsers() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("neighbors = %d, want 1", len(got))
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := m.SimilarUsers(99, 10)
		if !errors.Is(err, ErrUnknownUser) {
			t.Errorf("error = %v, want ErrUnknownUser", err)
		}
	})
}

func TestPredictForUser(t *testing.T) {
	m := buildTestModel(t)

	t.Run("recommends the neighbor's unseen book", func(t *testing.T) {
		got, err := m.PredictForUser(1, 10, true)
		if err != nil {
			t.Fatalf("PredictForUser() error = %v", err)
		}
		if len(got) == 0 {
			t.Fatal("no predictions")
		}
		if got[0].BookID != 2 {
			t.Errorf("top prediction = %d, want book 2", got[0].BookID)
		}
		if got[0].Score <= 0 {
			t.Errorf("top score = %f, want positive", got[0].Score)
		}
	})

	t.Run("consumed books are excluded", func(t *testing.T) {
		got, err := m.PredictForUser(1, 10, true)
		if err != nil {
			t.Fatalf("PredictForUser() error = %v", err)
		}
		for _, sb := range got {
			if sb.BookID == 1 || sb.BookID == 3 {
				t.Errorf("consumed book %d predicted", sb.BookID)
			}
		}
	})

	t.Run("scores sorted descending", func(t *testing.T) {
		got, err := m.PredictForUser(1, 10, true)
		if err != nil {
			t.Fatalf("PredictForUser() error = %v", err)
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].Score < got[i].Score {
				t.Fatalf("scores not descending at %d: %v", i, got)
			}
		}
	})

	t.Run("including consumed returns them", func(t *testing.T) {
		got, err := m.PredictForUser(1, 10, false)
		if err != nil {
			t.Fatalf("PredictForUser() error = %v", err)
		}
		found := false
		for _, sb := range got {
			if sb.BookID == 1 {
				found = true
			}
		}
		if !found {
			t.Error("consumed book 1 absent despite excludeConsumed=false")
		}
	})

	t.Run("isolated user gets zero scores", func(t *testing.T) {
		// User 3 shares no books with anyone, so every neighbor weight
		// is zero and predictions default to 0.
		got, err := m.PredictForUser(3, 10, true)
		if err != nil {
			t.Fatalf("PredictForUser() error = %v", err)
		}
		for _, sb := range got {
			if sb.Score != 0 {
				t.Errorf("book %d score = %f, want 0", sb.BookID, sb.Score)
			}
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := m.PredictForUser(99, 10, true)
		if !errors.Is(err, ErrUnknownUser) {
			t.Errorf("error = %v, want ErrUnknownUser", err)
		}
	})
}

func TestTopConsumed(t *testing.T) {
	m := buildTestModel(t)

	userIdx, ok := m.interactions.users.index(1)
	if !ok {
		t.Fatal("user 1 missing from index")
	}

	got := m.topConsumed(userIdx, 3)
	// Book 1 (value 5.0) outranks book 3 (value 0.5).
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("topConsumed = %v, want [1 3]", got)
	}

	if got := m.topConsumed(userIdx, 1); len(got) != 1 || got[0] != 1 {
		t.Errorf("topConsumed(n=1) = %v, want [1]", got)
	}
}
