package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const unsplashPhotoList = `[
  {
    "id": "aZ1",
    "description": "Mountain lake at dawn",
    "alt_description": "a lake surrounded by mountains",
    "urls": {"raw": "https://img/raw1", "full": "https://img/full1",
             "regular": "https://img/reg1", "thumb": "https://img/thumb1"},
    "links": {"html": "https://unsplash.com/photos/aZ1"},
    "user": {"name": "Ana", "links": {"html": "https://unsplash.com/@ana"}}
  },
  {
    "id": "bY2",
    "description": "",
    "alt_description": "a cat on a windowsill",
    "urls": {"raw": "https://img/raw2", "full": "",
             "regular": "https://img/reg2", "thumb": "https://img/thumb2"},
    "links": {"html": "https://unsplash.com/photos/bY2"},
    "user": {"name": "Ben", "links": {"html": "https://unsplash.com/@ben"}}
  }
]`

func TestImagesSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/photos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Client-ID test-key" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "10" {
			t.Errorf("expected per_page=10, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": ` + unsplashPhotoList + `}`))
	}))
	defer srv.Close()

	client := NewImagesClient(srv.URL, "test-key")
	results, err := client.Search(context.Background(), "landscape")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(results))
	}

	// Description prefers the curated text, download prefers the full size
	first := results[0]
	if first.Description != "Mountain lake at dawn" {
		t.Errorf("unexpected description: %q", first.Description)
	}
	if first.Download != "https://img/full1" {
		t.Errorf("unexpected download url: %q", first.Download)
	}

	// Empty fields fall through to the alternatives
	second := results[1]
	if second.Description != "a cat on a windowsill" {
		t.Errorf("expected alt description, got %q", second.Description)
	}
	if second.Download != "https://img/raw2" {
		t.Errorf("expected raw fallback, got %q", second.Download)
	}
	if second.User.Name != "Ben" {
		t.Errorf("unexpected user: %q", second.User.Name)
	}
}

func TestImagesPopular(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("order_by"); got != "popular" {
			t.Errorf("expected order_by=popular, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(unsplashPhotoList))
	}))
	defer srv.Close()

	client := NewImagesClient(srv.URL, "test-key")
	results, err := client.Popular(context.Background())
	if err != nil {
		t.Fatalf("Popular failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(results))
	}
	if results[0].ID != "aZ1" || results[1].ID != "bY2" {
		t.Errorf("unexpected ids: %q, %q", results[0].ID, results[1].ID)
	}
}
