// ==============================================================================
// AUDIT RECORDER - internal/audit/recorder.go
// ==============================================================================
// Fire-and-forget audit trail. Record hands the event to a buffered channel
// and returns immediately; a background worker persists entries. A full
// buffer drops the event with a log line and a counter bump rather than
// blocking the business flow.
// ==============================================================================

package audit

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"onboard/internal/domain"
	"onboard/pkg/logger"
)

// Repository persists audit entries.
type Repository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// Recorder is the audit collaborator handed to the business services.
type Recorder struct {
	repo   Repository
	logger logger.Logger

	queue   chan *domain.AuditLog
	dropped atomic.Int64

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewRecorder builds a recorder with the given queue capacity. Call Start to
// launch the worker and Close on shutdown to drain the queue.
func NewRecorder(repo Repository, queueSize int, log logger.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Recorder{
		repo:   repo,
		logger: log,
		queue:  make(chan *domain.AuditLog, queueSize),
		stop:   make(chan struct{}),
	}
}

// Start launches the background worker.
func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.worker()
}

// Record enqueues an audit event. It never blocks and never returns an error;
// at-least-once delivery past the queue is the worker's responsibility.
func (r *Recorder) Record(action, entityType, entityID, actor string, eventData map[string]interface{}) {
	var payload json.RawMessage
	if eventData != nil {
		b, err := json.Marshal(eventData)
		if err != nil {
			r.logger.Warn("Audit event data not serializable", map[string]interface{}{
				"action": action,
				"error":  err.Error(),
			})
		} else {
			payload = b
		}
	}

	entry := &domain.AuditLog{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		EventData:  payload,
		CreatedAt:  time.Now().UTC(),
	}

	select {
	case r.queue <- entry:
	default:
		dropped := r.dropped.Add(1)
		r.logger.Error("Audit queue full, event dropped", map[string]interface{}{
			"action":        action,
			"entity_type":   entityType,
			"entity_id":     entityID,
			"total_dropped": dropped,
		})
	}
}

// Dropped reports how many events have been discarded since start.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the worker after draining whatever is already queued.
func (r *Recorder) Close() {
	close(r.stop)
	r.wg.Wait()
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for {
		select {
		case entry := <-r.queue:
			r.persist(entry)
		case <-r.stop:
			for {
				select {
				case entry := <-r.queue:
					r.persist(entry)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) persist(entry *domain.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Error("Failed to persist audit entry", map[string]interface{}{
			"action":    entry.Action,
			"entity_id": entry.EntityID,
			"error":     err.Error(),
		})
	}
}
