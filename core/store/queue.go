package store

import (
	"context"
	"sync"
	"time"
)

// WriteResult reports the outcome of one enqueued persist.
type WriteResult struct {
	UserID string
	Err    error
}

// WriteQueue serializes tree persists to the configured repositories.
// Failure handling is a deliberate policy supplied by the onResult callback
// (log, surface, ...) instead of an implicit fire-and-forget side effect.
// Writes for the same user coalesce naturally: last dispatched wins.
type WriteQueue struct {
	reqs     chan writeReq
	repos    []TreeRepository
	onResult func(WriteResult)
	timeout  time.Duration

	once sync.Once
	done chan struct{}
}

type writeReq struct {
	userID string
	tree   EntityTree
}

const queueDepth = 64

func NewWriteQueue(onResult func(WriteResult), timeout time.Duration, repos ...TreeRepository) *WriteQueue {
	if onResult == nil {
		onResult = func(WriteResult) {}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	q := &WriteQueue{
		reqs:     make(chan writeReq, queueDepth),
		repos:    repos,
		onResult: onResult,
		timeout:  timeout,
		done:     make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue never blocks dispatch: when the queue is saturated the oldest
// pending write is dropped (a newer tree for that flow supersedes it anyway).
func (q *WriteQueue) Enqueue(userID string, tree EntityTree) {
	req := writeReq{userID: userID, tree: tree}
	for {
		select {
		case q.reqs <- req:
			return
		default:
			select {
			case <-q.reqs: // shed the oldest
			default:
			}
		}
	}
}

func (q *WriteQueue) run() {
	defer close(q.done)
	for req := range q.reqs {
		q.persist(req)
	}
}

func (q *WriteQueue) persist(req writeReq) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	var firstErr error
	for _, repo := range q.repos {
		if err := repo.SaveTree(ctx, req.userID, req.tree); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	q.onResult(WriteResult{UserID: req.userID, Err: firstErr})
}

// Close drains pending writes and stops the worker.
func (q *WriteQueue) Close() {
	q.once.Do(func() { close(q.reqs) })
	<-q.done
}
