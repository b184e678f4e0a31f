package etl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BartekS5/ytetl/pkg/models"
)

const (
	searchEndpoint = "https://www.googleapis.com/youtube/v3/search"

	// The API caps a single search.list page at 50 items.
	maxPageSize = 50
)

// YouTubeClient talks to the YouTube Data API v3 search endpoint. It does
// no retrying of its own: a failed call fails the stage and the
// orchestrator decides whether to re-run it.
type YouTubeClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewYouTubeClient(apiKey string) *YouTubeClient {
	return &YouTubeClient{
		APIKey:  apiKey,
		BaseURL: searchEndpoint,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Search pages through search.list results for keyword until max records
// are collected or the API runs out of pages. The returned slice never
// exceeds max.
func (c *YouTubeClient) Search(ctx context.Context, keyword string, max int) ([]models.SearchResultRecord, error) {
	if c.APIKey == "" {
		return nil, &APIError{Reason: "API key is missing"}
	}

	var collected []models.SearchResultRecord
	pageToken := ""

	for len(collected) < max {
		page, err := c.searchPage(ctx, keyword, min(maxPageSize, max-len(collected)), pageToken)
		if err != nil {
			return nil, err
		}

		if len(page.Items) == 0 {
			slog.Warn("no more items before reaching bound",
				slog.String("keyword", keyword), slog.Int("collected", len(collected)), slog.Int("max", max))
			break
		}

		for _, item := range page.Items {
			if item.ID.VideoID == "" {
				continue
			}
			collected = append(collected, models.SearchResultRecord{
				VideoID:      item.ID.VideoID,
				Title:        item.Snippet.Title,
				ChannelTitle: item.Snippet.ChannelTitle,
				PublishedAt:  item.Snippet.PublishedAt,
				Description:  item.Snippet.Description,
				QueryTag:     keyword,
			})
		}
		slog.Info("fetched search page",
			slog.String("keyword", keyword), slog.Int("collected", len(collected)), slog.Int("max", max))

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if len(collected) > max {
		collected = collected[:max]
	}
	return collected, nil
}

func (c *YouTubeClient) searchPage(ctx context.Context, keyword string, size int, pageToken string) (*models.SearchResponse, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("order", "date")
	q.Set("q", keyword)
	q.Set("maxResults", strconv.Itoa(size))
	q.Set("key", c.APIKey)
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &APIError{Reason: "building request", Err: err}
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, &APIError{Reason: "request failed", Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &APIError{StatusCode: res.StatusCode, Reason: "reading response body", Err: err}
	}

	if res.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: res.StatusCode, Reason: apiReason(res.StatusCode, body)}
	}

	var page models.SearchResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &APIError{StatusCode: res.StatusCode, Reason: "malformed response body", Err: err}
	}
	return &page, nil
}

// apiReason prefers the message from the API's error envelope and falls
// back to a description of the status code.
func apiReason(status int, body []byte) string {
	var envelope models.APIErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	switch status {
	case http.StatusBadRequest:
		return "bad request: check query parameters"
	case http.StatusUnauthorized:
		return "invalid API key"
	case http.StatusForbidden:
		return "quota exceeded or key lacks permissions"
	default:
		return "unexpected status"
	}
}
