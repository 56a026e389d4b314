package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

type memoryActivityRepo struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
	err    error
}

func (r *memoryActivityRepo) Insert(_ context.Context, e domain.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *memoryActivityRepo) Recent(context.Context, int) ([]domain.ActivityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ActivityEvent(nil), r.events...), nil
}

func (r *memoryActivityRepo) snapshot() []domain.ActivityEvent {
	events, _ := r.Recent(context.Background(), 0)
	return events
}

func TestDispatcher_DeliversAndFillsDefaults(t *testing.T) {
	repo := &memoryActivityRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.ActivityEvent{Actor: "admin@example.com", Action: domain.ActionLogin})
	d.Record(domain.ActivityEvent{Actor: "admin@example.com", Action: domain.ActionCreate, Kind: "products", EntityID: 1})

	cancel()
	d.Wait()

	events := repo.snapshot()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.ID == "" || e.OccurredAt.IsZero() {
			t.Fatalf("expected id and timestamp to be filled: %+v", e)
		}
	}
}

func TestDispatcher_PreservesPerRecordOrder(t *testing.T) {
	repo := &memoryActivityRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	actions := []domain.ActivityAction{domain.ActionCreate, domain.ActionUpdate, domain.ActionUpdate, domain.ActionDelete}
	for _, a := range actions {
		d.Record(domain.ActivityEvent{Action: a, Kind: "news", EntityID: 42})
	}

	cancel()
	d.Wait()

	events := repo.snapshot()
	if len(events) != len(actions) {
		t.Fatalf("expected %d events, got %d", len(actions), len(events))
	}
	for i, e := range events {
		if e.Action != actions[i] {
			t.Fatalf("event %d: expected %s, got %s", i, actions[i], e.Action)
		}
	}
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	repo := &memoryActivityRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	// Not started: nothing drains the queue.
	for i := 0; i < channelBuffer+10; i++ {
		done := make(chan struct{})
		go func() {
			d.Record(domain.ActivityEvent{Action: domain.ActionUpdate, Kind: "products", EntityID: 1})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("Record blocked on a full queue")
		}
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected queue to hold %d events, got %d", channelBuffer, got)
	}
}

func TestDispatcher_WriteErrorsDoNotStopWorker(t *testing.T) {
	repo := &memoryActivityRepo{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.ActivityEvent{Action: domain.ActionLogin, Actor: "a"})

	repo.mu.Lock()
	repo.err = nil
	repo.mu.Unlock()

	d.Record(domain.ActivityEvent{Action: domain.ActionLogout, Actor: "a"})

	cancel()
	d.Wait()

	for _, e := range repo.snapshot() {
		if e.Action == domain.ActionLogout {
			return
		}
	}
	t.Fatalf("expected the second event to be written after a failed write")
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &memoryActivityRepo{}, zerolog.Nop())
	e := domain.ActivityEvent{Kind: "products", EntityID: 7}

	first := d.shardIndex(e)
	for i := 0; i < 10; i++ {
		if got := d.shardIndex(e); got != first {
			t.Fatalf("shard changed: %d vs %d", first, got)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard out of range: %d", first)
	}
}
