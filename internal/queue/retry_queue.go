// Package queue implements the durable retry queue for leads whose
// dispatch failed on every channel. The queue is fully mirrored to a
// single JSON file after every mutating operation and is re-driven by
// a background sweeper with exponential backoff per item.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/grassigrosso/lead-relay/internal/channel"
	"github.com/grassigrosso/lead-relay/internal/config"
	"github.com/grassigrosso/lead-relay/internal/logger"
	"github.com/grassigrosso/lead-relay/internal/models"
)

// Deliverer dispatches one lead across all channels. Satisfied by
// *channel.Dispatcher; narrowed to an interface so tests can substitute
// scripted outcomes.
type Deliverer interface {
	Deliver(ctx context.Context, lead models.Lead) channel.Result
}

// RetryQueue is the disk-backed store of leads awaiting redelivery.
// It is exclusively owned by the relay service instance; the background
// sweeper borrows a reference.
type RetryQueue struct {
	mu         sync.Mutex
	items      []*models.QueueItem
	filePath   string
	baseDelay  time.Duration
	maxDelay   time.Duration
	dispatcher Deliverer
	sweeping   atomic.Bool
}

// New creates a RetryQueue. Call Load before use to establish the
// durable file and recover any persisted items.
func New(cfg config.QueueConfig, dispatcher Deliverer) *RetryQueue {
	return &RetryQueue{
		filePath:   cfg.FilePath,
		baseDelay:  cfg.BaseRetryDelay,
		maxDelay:   cfg.MaxRetryDelay,
		dispatcher: dispatcher,
	}
}

// Load reads the durable store. A missing file initializes an empty
// queue and persists it. An unparseable file is copied aside with a
// timestamped name (best effort) and the queue restarts empty.
func (q *RetryQueue) Load(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := os.ReadFile(q.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read queue file: %w", err)
		}
		q.items = nil
		return q.persistLocked()
	}

	var items []*models.QueueItem
	if err := json.Unmarshal(data, &items); err != nil {
		backupPath := fmt.Sprintf("%s.corrupted.%d.json", q.filePath, time.Now().UnixMilli())
		logger.Warn(ctx, "Queue file is corrupt, quarantining and starting empty",
			"file", q.filePath,
			"backup", backupPath,
			"error", err.Error())
		if backupErr := os.WriteFile(backupPath, data, 0644); backupErr != nil {
			logger.Warn(ctx, "Failed to back up corrupt queue file", "error", backupErr.Error())
		}
		q.items = nil
		return q.persistLocked()
	}

	q.items = items
	return nil
}

// Enqueue creates a QueueItem for a lead whose first dispatch failed on
// all channels and persists the queue. The item is eligible on the next
// sweep.
func (q *RetryQueue) Enqueue(ctx context.Context, lead models.Lead, initialErrors map[string]string) (*models.QueueItem, error) {
	now := time.Now()
	item := &models.QueueItem{
		ID:            uuid.New().String(),
		Lead:          lead,
		Attempts:      0,
		CreatedAt:     now,
		NextAttemptAt: now,
		LastErrors:    initialErrors,
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, item)
	if err := q.persistLocked(); err != nil {
		return nil, fmt.Errorf("failed to persist queue after enqueue: %w", err)
	}

	logger.Info(ctx, "Lead queued for retry",
		"queue_item_id", item.ID,
		"queue_size", len(q.items))

	return item, nil
}

// Process runs one sweep over all due items. Sweeps never overlap: if
// one is already in flight the call is a no-op. Items are re-dispatched
// sequentially in snapshot order; the queue is persisted once per sweep
// when anything changed. Persistence failures are logged and do not
// undo in-memory mutations.
//
// Item mutations happen under the queue mutex. Only the dispatch itself
// runs unlocked, on a copy of the lead, so a concurrent Enqueue can
// marshal the queue without observing a half-written item.
func (q *RetryQueue) Process(ctx context.Context) {
	if !q.sweeping.CompareAndSwap(false, true) {
		return
	}
	defer q.sweeping.Store(false)

	now := time.Now()

	q.mu.Lock()
	snapshot := make([]*models.QueueItem, len(q.items))
	copy(snapshot, q.items)
	q.mu.Unlock()

	changed := false
	for _, item := range snapshot {
		q.mu.Lock()
		if !item.Due(now) {
			q.mu.Unlock()
			continue
		}
		item.MarkAttempt(time.Now())
		id := item.ID
		attempts := item.Attempts
		lead := item.Lead
		q.mu.Unlock()
		changed = true

		itemCtx := context.WithValue(ctx, logger.QueueItemIDKey, id)
		result := q.dispatcher.Deliver(itemCtx, lead)
		if result.OK {
			q.remove(id)
			logger.Info(itemCtx, "Queued lead delivered",
				"channel", result.Channel,
				"attempts", attempts)
			continue
		}

		delay := q.Backoff(attempts)
		q.mu.Lock()
		item.LastErrors = result.Errors
		item.NextAttemptAt = time.Now().Add(delay)
		q.mu.Unlock()
		logger.Warn(itemCtx, "Queued lead delivery failed",
			"attempts", attempts,
			"next_attempt_in", delay.String(),
			"errors", result.Errors)
	}

	if !changed {
		return
	}

	q.mu.Lock()
	err := q.persistLocked()
	q.mu.Unlock()
	if err != nil {
		// In-memory state stays authoritative; the next successful
		// persist reconciles the durable copy.
		logger.LogError(ctx, "Failed to persist queue after sweep", err)
	}
}

// Backoff returns the delay before attempt n+1 after n failed attempts:
// baseDelay doubled per attempt, capped at maxDelay.
func (q *RetryQueue) Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}

	delay := q.baseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= q.maxDelay || delay < 0 {
			return q.maxDelay
		}
	}
	if delay > q.maxDelay {
		return q.maxDelay
	}
	return delay
}

// Size returns the number of queued items
func (q *RetryQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a snapshot copy of the queued items
func (q *RetryQueue) Items() []models.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.QueueItem, 0, len(q.items))
	for _, item := range q.items {
		out = append(out, *item)
	}
	return out
}

// remove deletes an item by id, preserving order of the rest
func (q *RetryQueue) remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	for _, item := range q.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	q.items = kept
}

// persistLocked mirrors the queue to disk atomically: write a temporary
// file, then rename it over the canonical path so a crash mid-write
// never corrupts the durable copy. Caller holds the mutex.
func (q *RetryQueue) persistLocked() error {
	dir := filepath.Dir(q.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create queue directory: %w", err)
	}

	items := q.items
	if items == nil {
		items = []*models.QueueItem{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	tmpPath := q.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary queue file: %w", err)
	}
	if err := os.Rename(tmpPath, q.filePath); err != nil {
		return fmt.Errorf("failed to rename queue file: %w", err)
	}
	return nil
}
