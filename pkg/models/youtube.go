package models

import "time"

// SearchResponse is one page of the YouTube Data API v3 search.list call.
type SearchResponse struct {
	NextPageToken string `json:"nextPageToken,omitempty"`
	PageInfo      struct {
		TotalResults   int `json:"totalResults"`
		ResultsPerPage int `json:"resultsPerPage"`
	} `json:"pageInfo"`
	Items []SearchItem `json:"items"`
}

// SearchItem is a single search hit as returned by the API.
type SearchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet Snippet `json:"snippet"`
}

type Snippet struct {
	PublishedAt  string `json:"publishedAt"`
	ChannelID    string `json:"channelId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
}

// APIErrorBody is the error envelope the API returns on non-2xx statuses.
type APIErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// SearchResultRecord is one collected search hit as persisted in the raw
// JSON artifact. QueryTag carries the keyword the record was fetched for.
type SearchResultRecord struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	PublishedAt  string `json:"published_at"`
	Description  string `json:"description,omitempty"`
	QueryTag     string `json:"query_tag"`
}

// TransformedRow is the tabular projection of a SearchResultRecord, typed
// for the target table.
type TransformedRow struct {
	VideoID      string
	Title        string
	ChannelTitle string
	PublishedAt  time.Time
	Description  string
	QueryTag     string
}

// CSVColumns is the header contract between the transform and load stages
// and the column order used for upserts.
var CSVColumns = []string{"video_id", "title", "channel_title", "published_at", "description", "query_tag"}

// CSVRecord renders the row in CSVColumns order. Timestamps are fixed to
// RFC 3339 UTC so identical inputs produce identical artifacts.
func (r TransformedRow) CSVRecord() []string {
	return []string{
		r.VideoID,
		r.Title,
		r.ChannelTitle,
		r.PublishedAt.UTC().Format(time.RFC3339),
		r.Description,
		r.QueryTag,
	}
}
