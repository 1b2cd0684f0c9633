package tracker

import (
	"time"

	"ludilens/internal/models"
)

// SessionSummary aggregates the events currently buffered for the given user
// and game. It looks only at the live buffer, not at anything already
// flushed. With no matching events the summary is zeroed: no decisions, an
// average thinking time of 0, start time defaulting to now and no end time.
func (t *Tracker) SessionSummary(userID, gameID string) models.SessionSummary {
	summary := models.SessionSummary{
		UserID:                userID,
		GameID:                gameID,
		RuleTypeDistribution:  make(map[string]int),
		AgentTypeDistribution: make(map[string]int),
		StartTime:             time.Now().UnixMilli(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var thinkSum int64
	for i := range t.buffer {
		e := &t.buffer[i]
		if e.UserID != userID || e.GameID != gameID {
			continue
		}
		if summary.TotalDecisions == 0 || e.Timestamp < summary.StartTime {
			summary.StartTime = e.Timestamp
		}
		if e.Timestamp > summary.EndTime {
			summary.EndTime = e.Timestamp
		}
		summary.TotalDecisions++
		summary.RuleTypeDistribution[e.RuleType]++
		summary.AgentTypeDistribution[e.AgentType]++
		thinkSum += e.ThinkingTimeMs
		if outcome, ok := e.Metadata[models.MetaOutcome]; ok {
			summary.Outcome = outcome
		}
	}

	if summary.TotalDecisions > 0 {
		summary.AverageThinkingTime = float64(thinkSum) / float64(summary.TotalDecisions)
	}
	return summary
}
