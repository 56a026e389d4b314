package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

const (
	activityCollection = "activity_events"
	maxRecent          = 200
)

// ActivityRepository persists the admin activity trail.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activityCollection)}
}

// EnsureIndexes creates the index backing Recent.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "occurred_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create activity index: %w", err)
	}
	return nil
}

// Insert appends event to the trail.
func (r *ActivityRepository) Insert(ctx context.Context, event domain.ActivityEvent) error {
	event.OccurredAt = event.OccurredAt.UTC()
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]domain.ActivityEvent, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w: %w", domain.ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	events := []domain.ActivityEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode activity: %w: %w", domain.ErrUnavailable, err)
	}
	return events, nil
}
