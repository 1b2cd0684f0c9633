package store

import (
	"context"
	"sort"
	"sync"

	"ludilens/internal/models"
)

// Memory is an in-process EventStore. It backs tests and store-less
// deployments where durability is not needed.
type Memory struct {
	mu     sync.RWMutex
	events []models.DecisionEvent
}

// NewMemory returns an empty in-memory event store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(ctx context.Context, events []models.DecisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

// Query copies the matching events so callers can scan without holding the
// lock against concurrent appends.
func (m *Memory) Query(ctx context.Context, f Filter) ([]models.DecisionEvent, error) {
	m.mu.RLock()
	matched := make([]models.DecisionEvent, 0)
	for i := range m.events {
		if f.Matches(&m.events[i]) {
			matched = append(matched, m.events[i])
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp < matched[j].Timestamp
	})
	return matched, nil
}

// Len reports the number of stored events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
