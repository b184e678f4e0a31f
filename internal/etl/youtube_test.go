package etl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BartekS5/ytetl/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*YouTubeClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewYouTubeClient("test-key")
	client.BaseURL = server.URL
	return client, server
}

func searchPageJSON(t *testing.T, nextToken string, ids ...string) []byte {
	t.Helper()
	var page models.SearchResponse
	page.NextPageToken = nextToken
	for _, id := range ids {
		var item models.SearchItem
		item.ID.Kind = "youtube#video"
		item.ID.VideoID = id
		item.Snippet.Title = "title " + id
		item.Snippet.ChannelTitle = "channel " + id
		item.Snippet.PublishedAt = "2024-03-01T12:00:00Z"
		page.Items = append(page.Items, item)
	}
	data, err := json.Marshal(page)
	if err != nil {
		t.Fatalf("marshal page: %v", err)
	}
	return data
}

func TestSearchSinglePage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "lofi" {
			t.Errorf("q = %q, want lofi", got)
		}
		w.Write(searchPageJSON(t, "", "A1", "A2"))
	})

	records, err := client.Search(context.Background(), "lofi", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].VideoID != "A1" || records[1].VideoID != "A2" {
		t.Errorf("unexpected ids: %s, %s", records[0].VideoID, records[1].VideoID)
	}
	if records[0].QueryTag != "lofi" {
		t.Errorf("QueryTag = %q, want lofi", records[0].QueryTag)
	}
}

func TestSearchPaginatesAndCapsAtMax(t *testing.T) {
	var requests int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("pageToken") == "" {
			w.Write(searchPageJSON(t, "page-2", "A1", "A2"))
			return
		}
		w.Write(searchPageJSON(t, "page-3", "A3", "A4"))
	})

	records, err := client.Search(context.Background(), "music", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want exactly max (3)", len(records))
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2", requests)
	}
}

func TestSearchStopsOnEmptyPage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "" {
			w.Write(searchPageJSON(t, "page-2", "A1"))
			return
		}
		w.Write(searchPageJSON(t, ""))
	})

	records, err := client.Search(context.Background(), "music", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

func TestSearchQuotaExceeded(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded","errors":[{"reason":"quotaExceeded"}]}}`))
	})

	_, err := client.Search(context.Background(), "music", 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if apiErr.Reason != "quotaExceeded" {
		t.Errorf("Reason = %q, want message from error envelope", apiErr.Reason)
	}
}

func TestSearchMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	})

	_, err := client.Search(context.Background(), "music", 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError for malformed body, got %T: %v", err, err)
	}
}

func TestSearchMissingAPIKey(t *testing.T) {
	client := NewYouTubeClient("")
	_, err := client.Search(context.Background(), "music", 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
}
