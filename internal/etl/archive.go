package etl

import (
	"context"
	"log/slog"
	"time"

	"github.com/BartekS5/ytetl/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const archiveCollection = "raw_search_results"

// MongoArchiver keeps a durable copy of raw search records beyond the
// artifact lifecycle, keyed by video id so repeated runs overwrite rather
// than accumulate.
type MongoArchiver struct {
	Client     *mongo.Client
	Database   string
	Collection string
}

func NewMongoArchiver(client *mongo.Client, dbName string) *MongoArchiver {
	return &MongoArchiver{
		Client:     client,
		Database:   dbName,
		Collection: archiveCollection,
	}
}

func (m *MongoArchiver) Archive(ctx context.Context, runID string, records []models.SearchResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	coll := m.Client.Database(m.Database).Collection(m.Collection)
	archivedAt := time.Now().UTC()

	writes := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		// _id comes from the filter on insert; it must not appear in $set.
		doc := bson.M{
			"title":         rec.Title,
			"channel_title": rec.ChannelTitle,
			"published_at":  rec.PublishedAt,
			"description":   rec.Description,
			"query_tag":     rec.QueryTag,
			"run_id":        runID,
			"archived_at":   archivedAt,
		}
		model := mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": rec.VideoID}).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true)
		writes = append(writes, model)
	}

	writeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := coll.BulkWrite(writeCtx, writes)
	if err != nil {
		return err
	}
	slog.Info("archived raw records",
		slog.String("run_id", runID),
		slog.Int64("matched", res.MatchedCount),
		slog.Int64("upserted", res.UpsertedCount))
	return nil
}
