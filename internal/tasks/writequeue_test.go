package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/google/uuid"
)

func TestQueueSetEvictsIdleQueues(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	set := newQueueSet(store)
	set.idleAfter = 20 * time.Millisecond

	ctx := context.Background()
	id := uuid.New()
	task := &models.Task{ID: id, Name: "Write report", Status: models.StatusPending}

	if _, err := set.forTask(id).submit(ctx, task); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if set.size() != 1 {
		t.Fatalf("queues = %d after submit, want 1", set.size())
	}

	// The queue retires on its own once traffic stops
	deadline := time.Now().Add(2 * time.Second)
	for set.size() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("idle queue was never evicted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A later write transparently recreates the queue
	if _, err := set.forTask(id).submit(ctx, task); err != nil {
		t.Fatalf("submit after eviction: %v", err)
	}
	if store.count() != 2 {
		t.Errorf("writes = %d, want 2", store.count())
	}

	set.closeAll()
}

func TestQueueSetHoldBlocksEviction(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	set := newQueueSet(store)
	set.idleAfter = 10 * time.Millisecond

	ctx := context.Background()
	id := uuid.New()
	task := &models.Task{ID: id, Name: "Write report", Status: models.StatusPending}

	// Take the hold, then let several idle periods pass before submitting.
	// The hold must keep the queue draining so the write still lands.
	q := set.forTask(id)
	time.Sleep(60 * time.Millisecond)

	if set.size() != 1 {
		t.Fatalf("queues = %d while a caller holds the queue, want 1", set.size())
	}
	if _, err := q.submit(ctx, task); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if store.count() != 1 {
		t.Errorf("writes = %d, want 1", store.count())
	}

	set.closeAll()
}
