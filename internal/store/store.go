// Package store defines the durable event log contract the tracker flushes
// into and the analyzer and query engine read from.
package store

import (
	"context"

	"ludilens/internal/models"
)

// Filter selects events. Fields combine with logical AND; a zero field means
// no constraint on that dimension. From/To are millisecond timestamps with 0
// meaning unbounded.
type Filter struct {
	UserID     string
	GameID     string
	SessionID  string
	From       int64
	To         int64
	RuleTypes  []string
	AgentTypes []string
}

// Matches reports whether the event satisfies every set constraint.
func (f Filter) Matches(e *models.DecisionEvent) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.GameID != "" && e.GameID != f.GameID {
		return false
	}
	if f.SessionID != "" && e.SessionID != f.SessionID {
		return false
	}
	if f.From != 0 && e.Timestamp < f.From {
		return false
	}
	if f.To != 0 && e.Timestamp > f.To {
		return false
	}
	if len(f.RuleTypes) > 0 && !contains(f.RuleTypes, e.RuleType) {
		return false
	}
	if len(f.AgentTypes) > 0 && !contains(f.AgentTypes, e.AgentType) {
		return false
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// EventStore is an append-only log of flushed decision events. Readers get
// snapshot-at-scan-start consistency or better: events appended while a
// query runs may or may not be visible, but nothing is ever lost or
// reordered within a result.
type EventStore interface {
	// Append persists a flushed batch in order.
	Append(ctx context.Context, events []models.DecisionEvent) error

	// Query returns matching events in timestamp order.
	Query(ctx context.Context, f Filter) ([]models.DecisionEvent, error)
}
