package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/localhive/localhive/internal/config"
)

const searchBody = `{
	"results": [
		{
			"fsq_place_id": "place-1",
			"categories": [
				{"fsq_category_id": "cat-coffee", "name": "Coffee Shop", "plural_name": "Coffee Shops"},
				{"fsq_category_id": "cat-cafe", "name": "Café"}
			]
		},
		{
			"fsq_place_id": "place-2",
			"categories": [
				{"fsq_category_id": "cat-coffee", "name": "Coffee Shop"},
				{"fsq_category_id": "cat-bakery", "name": "Bakery"}
			]
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.PlacesConfig{
		APIBase:    srv.URL,
		APIVersion: "2025-06-17",
		ServiceKey: "sk-test",
	})
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "coffee" || q.Get("ll") != "18.5941,73.7345" || q.Get("radius") != "2000" {
			t.Errorf("unexpected query params: %v", q)
		}
		if r.Header.Get("X-Places-Api-Version") != "2025-06-17" {
			t.Errorf("missing api version header")
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing auth header")
		}
		w.Write([]byte(searchBody))
	})

	result, err := c.Search(context.Background(), SearchParams{
		Query: "coffee", LL: "18.5941,73.7345", Radius: 2000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 2 {
		t.Errorf("expected 2 places, got %d", len(result.Results))
	}
	if len(result.Raw) == 0 {
		t.Error("expected raw payload to be preserved")
	}
}

func TestQuickFind_UniqueCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody))
	})

	result, err := c.QuickFind(context.Background(), SearchParams{Query: "coffee"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCategoriesFound != 3 {
		t.Fatalf("expected 3 unique categories, got %d", result.TotalCategoriesFound)
	}

	// First-seen place wins for a duplicated category.
	first := result.UniqueCategories[0]
	if first.FsqCategoryID != "cat-coffee" || first.FsqPlaceID != "place-1" {
		t.Errorf("expected cat-coffee from place-1 first, got %+v", first)
	}
	if first.PluralName != "Coffee Shops" {
		t.Errorf("expected first-seen category data kept, got %+v", first)
	}
}

func TestSearch_ErrorClasses(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := c.Search(context.Background(), SearchParams{Query: "x"})
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestPlacePhotos_RequiresID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := c.PlacePhotos(context.Background(), "", 5); err == nil {
		t.Fatal("expected error for missing fsq_place_id")
	}
}

func TestPlacePhotos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/place-1/photos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("expected default limit 5, got %q", r.URL.Query().Get("limit"))
		}
		w.Write([]byte(`[{"id":"photo-1"}]`))
	})

	raw, err := c.PlacePhotos(context.Background(), "place-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) == 0 {
		t.Error("expected photo payload")
	}
}
