// Package tracker buffers decision events for the lifetime of one tracking
// session and hands them to a sink in ordered batches.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ludilens/internal/models"
)

// Sink receives one flushed batch in order. Delivery is at most once: if the
// sink fails, the batch is dropped, not re-buffered. Retries belong in a
// decorator around the sink, never in the tracker.
type Sink func(ctx context.Context, events []models.DecisionEvent) error

// Config controls one tracker instance.
type Config struct {
	BufferSize    int           // flush threshold, default 100
	FlushInterval time.Duration // timer flush period, default 5s
	Endpoint      string        // informational, recorded for the sink's use
	Sink          Sink
}

const (
	DefaultBufferSize    = 100
	DefaultFlushInterval = 5 * time.Second
)

// Decision carries the caller-supplied fields of one decision. The tracker
// assigns the id, timestamp and session id.
type Decision struct {
	UserID           string            `json:"userId"`
	GameID           string            `json:"gameId"`
	Position         string            `json:"position"`
	AvailableActions []string          `json:"availableActions"`
	ChosenAction     string            `json:"chosenAction"`
	RuleType         string            `json:"ruleType"`
	AgentType        string            `json:"agentType"`
	ModalOperator    string            `json:"modalOperator"`
	ThinkingTimeMs   int64             `json:"thinkingTimeMs"`
	Metadata         map[string]string `json:"metadata"`
}

// Tracker accumulates events for a single session. The buffer is the only
// state shared between TrackDecision and the timer flush path; flushing swaps
// it out under the mutex and sends the detached batch outside the lock, so
// appends never wait on sink I/O.
type Tracker struct {
	cfg       Config
	log       *zap.Logger
	sessionID string

	mu     sync.Mutex
	buffer []models.DecisionEvent

	done chan struct{}
	wg   sync.WaitGroup
}

// New validates the configuration and returns a tracker for the session.
// Invalid buffer sizes or intervals are construction failures.
func New(sessionID string, cfg Config, log *zap.Logger) (*Tracker, error) {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.BufferSize < 0 {
		return nil, fmt.Errorf("tracker: buffer size must be positive, got %d", cfg.BufferSize)
	}
	if cfg.FlushInterval < 0 {
		return nil, fmt.Errorf("tracker: flush interval must be positive, got %s", cfg.FlushInterval)
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("tracker: sink is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Tracker{
		cfg:       cfg,
		log:       log,
		sessionID: sessionID,
		buffer:    make([]models.DecisionEvent, 0, cfg.BufferSize),
		done:      make(chan struct{}),
	}, nil
}

// SessionID returns the session this tracker was created for.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// TrackDecision constructs the event, appends it to the buffer and returns
// it. When the append fills the buffer to capacity, the full batch is flushed
// synchronously before returning.
func (t *Tracker) TrackDecision(ctx context.Context, d Decision) models.DecisionEvent {
	event := models.DecisionEvent{
		ID:               uuid.NewString(),
		Timestamp:        time.Now().UnixMilli(),
		UserID:           d.UserID,
		SessionID:        t.sessionID,
		GameID:           d.GameID,
		Position:         d.Position,
		AvailableActions: d.AvailableActions,
		ChosenAction:     d.ChosenAction,
		RuleType:         d.RuleType,
		AgentType:        d.AgentType,
		ModalOperator:    d.ModalOperator,
		ThinkingTimeMs:   d.ThinkingTimeMs,
		Metadata:         d.Metadata,
	}

	var batch []models.DecisionEvent
	t.mu.Lock()
	t.buffer = append(t.buffer, event)
	if len(t.buffer) >= t.cfg.BufferSize {
		batch = t.swapLocked()
	}
	t.mu.Unlock()

	if batch != nil {
		t.send(ctx, batch)
	}
	return event
}

// Start launches the recurring timer flush. Not idempotent: calling Start
// twice without an intervening Stop creates two timers.
func (t *Tracker) Start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.cfg.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.Flush(context.Background())
			case <-t.done:
				return
			}
		}
	}()
}

// Stop cancels the timer and performs one final flush so a normally ended
// session loses nothing. A timer tick racing Stop at most causes an extra
// flush of an empty buffer, which is a no-op.
func (t *Tracker) Stop() {
	close(t.done)
	t.wg.Wait()
	t.Flush(context.Background())
}

// Flush sends the current buffer to the sink. An empty buffer is a no-op.
// The buffer is swapped for a fresh one under the lock, so decisions tracked
// while the batch is in flight land in the new buffer, never in the old one.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	batch := t.swapLocked()
	t.mu.Unlock()

	if batch == nil {
		return nil
	}
	return t.send(ctx, batch)
}

// BufferLen reports the number of events currently buffered.
func (t *Tracker) BufferLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffer)
}

func (t *Tracker) swapLocked() []models.DecisionEvent {
	if len(t.buffer) == 0 {
		return nil
	}
	batch := t.buffer
	t.buffer = make([]models.DecisionEvent, 0, t.cfg.BufferSize)
	return batch
}

func (t *Tracker) send(ctx context.Context, batch []models.DecisionEvent) error {
	if err := t.cfg.Sink(ctx, batch); err != nil {
		// At-most-once delivery: the batch is dropped, not re-buffered.
		t.log.Error("Flush failed, dropping batch",
			zap.String("session_id", t.sessionID),
			zap.Int("events", len(batch)),
			zap.Error(err),
		)
		return err
	}
	t.log.Debug("Flushed batch",
		zap.String("session_id", t.sessionID),
		zap.Int("events", len(batch)),
	)
	return nil
}
