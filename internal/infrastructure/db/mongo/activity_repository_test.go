package mongo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

func TestActivityRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewActivityRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Insert(context.Background(), domain.ActivityEvent{
			ID:         "evt-1",
			Actor:      "admin@example.com",
			Action:     domain.ActionCreate,
			Kind:       "products",
			EntityID:   3,
			OccurredAt: at,
		})
		if err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		repo := NewActivityRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		if err := repo.Insert(context.Background(), domain.ActivityEvent{ID: "evt-1"}); err == nil {
			t.Fatalf("expected an error")
		}
	})

	mt.Run("recent", func(mt *mtest.T) {
		repo := NewActivityRepository(mt.DB)
		ns := mt.DB.Name() + "." + activityCollection
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: "evt-2"},
					{Key: "actor", Value: "admin@example.com"},
					{Key: "action", Value: "delete"},
					{Key: "kind", Value: "news"},
					{Key: "entity_id", Value: int64(9)},
					{Key: "occurred_at", Value: at.Add(time.Minute)},
				},
				bson.D{
					{Key: "_id", Value: "evt-1"},
					{Key: "actor", Value: "admin@example.com"},
					{Key: "action", Value: "login"},
					{Key: "occurred_at", Value: at},
				},
			),
		)

		events, err := repo.Recent(context.Background(), 10)
		if err != nil {
			t.Fatalf("Recent error: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].ID != "evt-2" || events[0].Action != domain.ActionDelete || events[0].EntityID != 9 {
			t.Fatalf("unexpected first event: %+v", events[0])
		}
		if !events[1].OccurredAt.Equal(at) {
			t.Fatalf("unexpected timestamp: %v", events[1].OccurredAt)
		}
	})

	mt.Run("recent failure", func(mt *mtest.T) {
		repo := NewActivityRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		if _, err := repo.Recent(context.Background(), 10); err == nil {
			t.Fatalf("expected an error")
		}
	})
}
