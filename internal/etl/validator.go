package etl

import (
	"errors"

	"github.com/BartekS5/ytetl/pkg/models"
)

// ValidateRecord checks the fields the target table cannot accept as NULL.
// Description may be empty.
func ValidateRecord(rec models.SearchResultRecord) error {
	if rec.VideoID == "" {
		return errors.New("missing video_id")
	}
	if rec.Title == "" {
		return errors.New("missing title")
	}
	if rec.ChannelTitle == "" {
		return errors.New("missing channel_title")
	}
	if rec.PublishedAt == "" {
		return errors.New("missing published_at")
	}
	return nil
}
