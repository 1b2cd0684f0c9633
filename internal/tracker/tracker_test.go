package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ludilens/internal/models"
)

type captureSink struct {
	mu      sync.Mutex
	batches [][]models.DecisionEvent
	fail    bool
}

func (s *captureSink) sink(ctx context.Context, events []models.DecisionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.batches = append(s.batches, events)
	return nil
}

func (s *captureSink) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *captureSink) eventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func newTestTracker(t *testing.T, cfg Config) (*Tracker, *captureSink) {
	t.Helper()
	sink := &captureSink{}
	if cfg.Sink == nil {
		cfg.Sink = sink.sink
	}
	tr, err := New("session-1", cfg, zap.NewNop())
	require.NoError(t, err)
	return tr, sink
}

func decision(userID string) Decision {
	return Decision{
		UserID:           userID,
		GameID:           "chess",
		Position:         "fen:start",
		AvailableActions: []string{"e4", "d4"},
		ChosenAction:     "e4",
		RuleType:         "opening",
		AgentType:        "deliberate",
		ThinkingTimeMs:   150,
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	sink := &captureSink{}
	_, err := New("s", Config{BufferSize: -1, Sink: sink.sink}, zap.NewNop())
	require.Error(t, err)

	_, err = New("s", Config{FlushInterval: -time.Second, Sink: sink.sink}, zap.NewNop())
	require.Error(t, err)

	_, err = New("s", Config{}, zap.NewNop())
	require.Error(t, err, "missing sink must be rejected")
}

func TestTrackDecision_NoFlushBelowThreshold(t *testing.T) {
	tr, sink := newTestTracker(t, Config{BufferSize: 5})

	for i := 0; i < 4; i++ {
		tr.TrackDecision(context.Background(), decision("u1"))
	}

	require.Equal(t, 0, sink.batchCount(), "no flush until the buffer fills")
	require.Equal(t, 4, tr.BufferLen())
}

func TestTrackDecision_FlushesAtCapacity(t *testing.T) {
	tr, sink := newTestTracker(t, Config{BufferSize: 5})

	for i := 0; i < 5; i++ {
		tr.TrackDecision(context.Background(), decision("u1"))
	}

	require.Equal(t, 1, sink.batchCount())
	require.Equal(t, 5, sink.eventCount())
	require.Equal(t, 0, tr.BufferLen())
}

func TestTrackDecision_AssignsIdentity(t *testing.T) {
	tr, _ := newTestTracker(t, Config{BufferSize: 10})

	before := time.Now().UnixMilli()
	event := tr.TrackDecision(context.Background(), decision("u1"))

	require.NotEmpty(t, event.ID)
	require.Equal(t, "session-1", event.SessionID)
	require.GreaterOrEqual(t, event.Timestamp, before)

	other := tr.TrackDecision(context.Background(), decision("u1"))
	require.NotEqual(t, event.ID, other.ID)
}

func TestFlush_EmptyBufferIsNoop(t *testing.T) {
	tr, sink := newTestTracker(t, Config{BufferSize: 5})

	require.NoError(t, tr.Flush(context.Background()))
	require.Equal(t, 0, sink.batchCount())
}

func TestFlush_SinkFailureDropsBatch(t *testing.T) {
	tr, sink := newTestTracker(t, Config{BufferSize: 10})
	sink.fail = true

	tr.TrackDecision(context.Background(), decision("u1"))
	require.Error(t, tr.Flush(context.Background()))

	// At-most-once: the failed batch is gone, not re-buffered.
	require.Equal(t, 0, tr.BufferLen())
	sink.fail = false
	require.NoError(t, tr.Flush(context.Background()))
	require.Equal(t, 0, sink.batchCount())
}

// Events appended while a flush is in flight must land in the next batch:
// nothing lost, nothing duplicated.
func TestFlush_ConcurrentAppendsGoToNextBatch(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	capture := &captureSink{}
	first := true

	blockingSink := func(ctx context.Context, events []models.DecisionEvent) error {
		if first {
			first = false
			entered <- struct{}{}
			<-release
		}
		return capture.sink(ctx, events)
	}

	tr, err := New("session-1", Config{BufferSize: 3, Sink: blockingSink}, zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// The third append fills the buffer and blocks inside the sink.
		for i := 0; i < 3; i++ {
			tr.TrackDecision(context.Background(), decision("u1"))
		}
	}()

	<-entered // sink now holds the swapped-out batch of 3

	// These must append to the fresh buffer without blocking.
	tr.TrackDecision(context.Background(), decision("u2"))
	tr.TrackDecision(context.Background(), decision("u2"))
	require.Equal(t, 2, tr.BufferLen())

	close(release)
	wg.Wait()
	require.NoError(t, tr.Flush(context.Background()))

	require.Equal(t, 2, capture.batchCount())
	require.Len(t, capture.batches[0], 3)
	require.Len(t, capture.batches[1], 2)

	seen := make(map[string]bool)
	for _, batch := range capture.batches {
		for _, e := range batch {
			require.False(t, seen[e.ID], "event %s delivered twice", e.ID)
			seen[e.ID] = true
		}
	}
	require.Len(t, seen, 5)
}

func TestTimerFlush(t *testing.T) {
	tr, sink := newTestTracker(t, Config{BufferSize: 100, FlushInterval: 20 * time.Millisecond})

	tr.Start()
	tr.TrackDecision(context.Background(), decision("u1"))

	deadline := time.After(2 * time.Second)
	for sink.eventCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("timer flush never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}

	tr.Stop()
	require.Equal(t, 1, sink.eventCount())
}

func TestStop_FlushesRemainingAndIsQuiescent(t *testing.T) {
	tr, sink := newTestTracker(t, Config{BufferSize: 100, FlushInterval: time.Hour})
	tr.Start()

	tr.TrackDecision(context.Background(), decision("u1"))
	tr.TrackDecision(context.Background(), decision("u1"))
	tr.Stop()

	require.Equal(t, 1, sink.batchCount())
	require.Equal(t, 2, sink.eventCount())

	// Further flushes with no new events are no-ops.
	require.NoError(t, tr.Flush(context.Background()))
	require.NoError(t, tr.Flush(context.Background()))
	require.Equal(t, 1, sink.batchCount())
}

func TestWithRetry(t *testing.T) {
	attempts := 0
	flaky := func(ctx context.Context, events []models.DecisionEvent) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}

	sink := WithRetry(flaky, 3, time.Millisecond)
	err := sink(context.Background(), []models.DecisionEvent{{ID: "e1"}})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}
