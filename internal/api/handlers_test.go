// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jdhalloran/audioshelf/internal/models"
	"github.com/jdhalloran/audioshelf/internal/recommend"
)

func fixtureBooks() []recommend.Book {
	return []recommend.Book{
		{ID: 1, Title: "Starfall", Author: "K. Voss", Genre: "Sci-Fi",
			Description: "A generation ship drifts between dying stars",
			Tags:        []string{"space", "ai"}, DurationMinutes: 600, Rating: 4.5},
		{ID: 2, Title: "Iron Orbit", Author: "K. Voss", Genre: "Sci-Fi",
			Description: "A generation ship crew mutinies near dying stars",
			Tags:        []string{"space", "rebellion"}, DurationMinutes: 630, Rating: 4.0},
		{ID: 3, Title: "Hedge Witch", Author: "M. Reyes", Genre: "Fantasy",
			Description: "A village healer bargains with forest spirits",
			Tags:        []string{"magic"}, DurationMinutes: 420, Rating: 4.2},
	}
}

func fixtureInteractions() []recommend.Interaction {
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	return []recommend.Interaction{
		{UserID: 1, BookID: 1, Progress: 100, Rating: 5, Timestamp: at},
		{UserID: 2, BookID: 1, Progress: 90, Rating: 4, Timestamp: at},
		{UserID: 2, BookID: 2, Progress: 100, Rating: 5, Timestamp: at},
	}
}

// fakeSource is an in-memory DataSource with injectable failures.
type fakeSource struct {
	books        []recommend.Book
	interactions []recommend.Interaction
	err          error
}

func (f *fakeSource) Books() ([]recommend.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.books, nil
}

func (f *fakeSource) Interactions() ([]recommend.Interaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.interactions, nil
}

func newTestServer(t *testing.T, loaded bool) (http.Handler, *fakeSource) {
	t.Helper()

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	source := &fakeSource{books: fixtureBooks(), interactions: fixtureInteractions()}
	if loaded {
		if err := engine.Load(source.books, source.interactions); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}

	router := NewRouter(NewHandler(engine, source), NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		// Rate limiting off so tests never trip it.
		RateLimitRequests: 0,
	}))
	return router.Setup(), source
}

func doRequest(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, *models.APIResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response %q: %v", rec.Body.String(), err)
	}
	return rec, &resp
}

func TestHealth(t *testing.T) {
	t.Run("reports ready model", func(t *testing.T) {
		h, _ := newTestServer(t, true)
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/health")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		data := resp.Data.(map[string]interface{})
		if data["model_ready"] != true {
			t.Errorf("model_ready = %v, want true", data["model_ready"])
		}
	})

	t.Run("reports unready model", func(t *testing.T) {
		h, _ := newTestServer(t, false)
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/health")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		data := resp.Data.(map[string]interface{})
		if data["model_ready"] != false {
			t.Errorf("model_ready = %v, want false", data["model_ready"])
		}
	})
}

func TestRecommendationsUser(t *testing.T) {
	h, _ := newTestServer(t, true)

	t.Run("returns predictions", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/user/1")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		data := resp.Data.(map[string]interface{})
		if data["user_id"] != float64(1) {
			t.Errorf("user_id = %v, want 1", data["user_id"])
		}
		if _, ok := data["recommendations"]; !ok {
			t.Error("recommendations missing from response")
		}
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/user/999")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
			t.Errorf("error = %+v, want NOT_FOUND", resp.Error)
		}
	})

	t.Run("non-integer user is 400", func(t *testing.T) {
		rec, _ := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/user/abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("limit out of range is 400", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/user/1?limit=500")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
		}
	})
}

func TestRecommendationsSimilar(t *testing.T) {
	h, _ := newTestServer(t, true)

	t.Run("returns similar books", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/similar/1?scores=true")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		data := resp.Data.(map[string]interface{})
		similar := data["similar"].([]interface{})
		if len(similar) == 0 {
			t.Fatal("no similar books")
		}
		top := similar[0].(map[string]interface{})
		if top["book_id"] != float64(2) {
			t.Errorf("top similar = %v, want book 2", top["book_id"])
		}
	})

	t.Run("unknown book is 404", func(t *testing.T) {
		rec, _ := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/similar/999")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestRecommendationsHybrid(t *testing.T) {
	h, _ := newTestServer(t, true)

	t.Run("returns blended recommendations", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/hybrid/1")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		data := resp.Data.(map[string]interface{})
		recs := data["recommendations"].([]interface{})
		for _, raw := range recs {
			item := raw.(map[string]interface{})
			if item["book_id"] == float64(1) {
				t.Error("consumed book recommended")
			}
		}
	})

	t.Run("unknown user degrades to empty list", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/hybrid/999")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		data := resp.Data.(map[string]interface{})
		recs := data["recommendations"].([]interface{})
		if len(recs) != 0 {
			t.Errorf("recommendations = %d, want 0", len(recs))
		}
	})

	t.Run("valid weight override accepted", func(t *testing.T) {
		rec, _ := doRequest(t, h, http.MethodGet,
			"/api/v1/recommendations/hybrid/1?collaborative_weight=0.3&content_weight=0.7")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid weight override is 400", func(t *testing.T) {
		tests := []string{
			"?collaborative_weight=0.9&content_weight=0.9",
			"?collaborative_weight=0.5",
			"?collaborative_weight=abc&content_weight=0.5",
			"?collaborative_weight=-0.2&content_weight=1.2",
		}
		for _, q := range tests {
			rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/hybrid/1"+q)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("query %q: status = %d, want 400", q, rec.Code)
				continue
			}
			if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("query %q: error = %+v, want VALIDATION_ERROR", q, resp.Error)
			}
		}
	})
}

func TestRecommendationsGenre(t *testing.T) {
	h, _ := newTestServer(t, true)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/genre/Sci-Fi")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	books := data["books"].([]interface{})
	if len(books) != 2 {
		t.Fatalf("books = %d, want 2", len(books))
	}
	first := books[0].(map[string]interface{})
	if first["book_id"] != float64(1) {
		t.Errorf("top genre book = %v, want highest rated (1)", first["id"])
	}
}

func TestBookLookup(t *testing.T) {
	h, _ := newTestServer(t, true)

	t.Run("found", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/books/1")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		data := resp.Data.(map[string]interface{})
		if data["title"] != "Starfall" {
			t.Errorf("title = %v, want Starfall", data["title"])
		}
	})

	t.Run("missing", func(t *testing.T) {
		rec, _ := doRequest(t, h, http.MethodGet, "/api/v1/books/999")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestModelNotReady(t *testing.T) {
	h, _ := newTestServer(t, false)

	paths := []string{
		"/api/v1/recommendations/user/1",
		"/api/v1/recommendations/similar/1",
		"/api/v1/recommendations/hybrid/1",
		"/api/v1/recommendations/genre/Sci-Fi",
		"/api/v1/books/1",
	}
	for _, path := range paths {
		rec, resp := doRequest(t, h, http.MethodGet, path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, rec.Code)
			continue
		}
		if resp.Error == nil || resp.Error.Code != "MODEL_NOT_READY" {
			t.Errorf("%s: error = %+v, want MODEL_NOT_READY", path, resp.Error)
		}
	}
}

func TestAdminReload(t *testing.T) {
	t.Run("loads a fresh model", func(t *testing.T) {
		h, _ := newTestServer(t, false)

		rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/admin/reload")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		data := resp.Data.(map[string]interface{})
		if data["reloaded"] != true {
			t.Errorf("reloaded = %v, want true", data["reloaded"])
		}

		// The model now serves.
		rec, _ = doRequest(t, h, http.MethodGet, "/api/v1/recommendations/user/1")
		if rec.Code != http.StatusOK {
			t.Errorf("post-reload status = %d, want 200", rec.Code)
		}
	})

	t.Run("source failure keeps serving old model", func(t *testing.T) {
		h, source := newTestServer(t, true)
		source.err = errors.New("disk gone")

		rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/admin/reload")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if resp.Error == nil || resp.Error.Code != "RELOAD_FAILED" {
			t.Errorf("error = %+v, want RELOAD_FAILED", resp.Error)
		}

		// Previous snapshot still serves.
		rec, _ = doRequest(t, h, http.MethodGet, "/api/v1/recommendations/user/1")
		if rec.Code != http.StatusOK {
			t.Errorf("post-failure status = %d, want 200", rec.Code)
		}
	})

	t.Run("bad data keeps serving old model", func(t *testing.T) {
		h, source := newTestServer(t, true)
		source.interactions = []recommend.Interaction{{UserID: 1, BookID: 1, Progress: 200}}

		rec, _ := doRequest(t, h, http.MethodPost, "/api/v1/admin/reload")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}

		rec, _ = doRequest(t, h, http.MethodGet, "/api/v1/recommendations/user/1")
		if rec.Code != http.StatusOK {
			t.Errorf("post-failure status = %d, want 200", rec.Code)
		}
	})
}

func TestRequestIDHeader(t *testing.T) {
	h, _ := newTestServer(t, true)
	rec, _ := doRequest(t, h, http.MethodGet, "/api/v1/health")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
