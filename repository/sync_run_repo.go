package repository

import (
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tieubaoca/rag-be/types"
)

type SyncRunRepo interface {
	SaveRun(ctx context.Context, stats *types.SyncStats) error
	LatestRun(ctx context.Context) (*types.SyncStats, error)
	ListRuns(ctx context.Context, limit int) ([]types.SyncStats, error)
}

type syncRunRepo struct {
	collection *mongo.Collection
}

func NewSyncRunRepo(db *mongo.Database) SyncRunRepo {
	collection := db.Collection("sync_runs")
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "start_time", Value: -1},
			},
		},
	}
	if _, err := collection.Indexes().CreateMany(context.Background(), indexes); err != nil {
		log.Printf("Error creating sync_runs indexes: %v", err)
	}

	return &syncRunRepo{
		collection: collection,
	}
}

func (r *syncRunRepo) SaveRun(ctx context.Context, stats *types.SyncStats) error {
	_, err := r.collection.InsertOne(ctx, stats)
	return err
}

// LatestRun returns the most recent run, or nil when none has been recorded.
func (r *syncRunRepo) LatestRun(ctx context.Context) (*types.SyncStats, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "start_time", Value: -1}})

	var run types.SyncStats
	err := r.collection.FindOne(ctx, bson.D{}, opts).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *syncRunRepo) ListRuns(ctx context.Context, limit int) ([]types.SyncStats, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []types.SyncStats
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
