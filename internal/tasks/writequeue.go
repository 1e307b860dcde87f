package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/google/uuid"
)

// queueIdleTimeout is how long a task's write queue may sit with no traffic
// before its goroutine retires. A later write recreates the queue.
const queueIdleTimeout = 5 * time.Minute

// writeQueue serializes persistence calls for one task so the Nth write to
// the store always reflects the Nth local transition. Without it a fast
// write issued after a slow one could land last and overwrite newer state.
type writeQueue struct {
	jobs      chan writeJob
	done      chan struct{}
	idleAfter time.Duration
	retire    func(*writeQueue) bool
	pending   atomic.Int64 // callers holding this queue; guards retirement
}

type writeJob struct {
	ctx    context.Context
	task   *models.Task
	result chan writeResult
}

type writeResult struct {
	task *models.Task
	err  error
}

func newWriteQueue(store Store, idleAfter time.Duration, retire func(*writeQueue) bool) *writeQueue {
	q := &writeQueue{
		jobs:      make(chan writeJob, 16),
		done:      make(chan struct{}),
		idleAfter: idleAfter,
		retire:    retire,
	}
	go q.drain(store)
	return q
}

func (q *writeQueue) drain(store Store) {
	idle := time.NewTimer(q.idleAfter)
	defer idle.Stop()
	for {
		select {
		case <-q.done:
			return
		case job := <-q.jobs:
			saved, err := store.Save(job.ctx, job.task)
			job.result <- writeResult{task: saved, err: err}
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(q.idleAfter)
		case <-idle.C:
			if q.retire == nil || q.retire(q) {
				return
			}
			// A caller still holds the queue; keep draining
			idle.Reset(q.idleAfter)
		}
	}
}

// submit enqueues a write and waits for its result. The caller must have
// obtained the queue through queueSet.forTask, which takes the pending hold
// released here.
func (q *writeQueue) submit(ctx context.Context, task *models.Task) (*models.Task, error) {
	defer q.pending.Add(-1)

	result := make(chan writeResult, 1)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case q.jobs <- writeJob{ctx: ctx, task: task, result: result}:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-result:
		return res.task, res.err
	}
}

func (q *writeQueue) close() {
	close(q.done)
}

// queueSet lazily creates one write queue per task id and evicts queues that
// go idle, so a long-lived server does not hold a goroutine per task ever
// touched.
type queueSet struct {
	mu        sync.Mutex
	store     Store
	idleAfter time.Duration
	queues    map[uuid.UUID]*writeQueue
}

func newQueueSet(store Store) *queueSet {
	return &queueSet{
		store:     store,
		idleAfter: queueIdleTimeout,
		queues:    make(map[uuid.UUID]*writeQueue),
	}
}

// forTask returns the task's write queue with a pending hold taken; the hold
// keeps the queue from retiring until the paired submit returns.
func (s *queueSet) forTask(id uuid.UUID) *writeQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[id]
	if !ok {
		q = newWriteQueue(s.store, s.idleAfter, func(q *writeQueue) bool {
			return s.evict(id, q)
		})
		s.queues[id] = q
	}
	q.pending.Add(1)
	return q
}

// evict removes an idle queue from the set. It refuses while any caller
// still holds the queue: holds are only taken under the set mutex, so a
// zero pending count here means no submit can still be in flight.
func (s *queueSet) evict(id uuid.UUID, q *writeQueue) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.pending.Load() > 0 {
		return false
	}
	if s.queues[id] == q {
		delete(s.queues, id)
	}
	return true
}

func (s *queueSet) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, q := range s.queues {
		q.close()
		delete(s.queues, id)
	}
}

// size reports the number of live queues.
func (s *queueSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues)
}
