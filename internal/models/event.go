package models

import (
	"time"

	"github.com/lib/pq"
)

// DecisionEvent is a single decision reported from a game session. Events are
// immutable once constructed by the tracker; the buffer owns them until they
// are flushed, after which the store does.
//
// ChosenAction is expected to be one of AvailableActions. This is a caller
// contract and is not validated at ingestion; analysis results are undefined
// when it is violated.
type DecisionEvent struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Timestamp int64  `gorm:"index" json:"timestamp"` // milliseconds since epoch
	UserID    string `gorm:"index" json:"userId"`
	SessionID string `gorm:"index" json:"sessionId"`
	GameID    string `gorm:"index" json:"gameId"`

	// Position is the game-specific state encoding. Opaque to this service.
	Position         string         `json:"position"`
	AvailableActions pq.StringArray `gorm:"type:text[]" json:"availableActions"`
	ChosenAction     string         `json:"chosenAction"`

	RuleType      string `json:"ruleType"`
	AgentType     string `json:"agentType"`
	ModalOperator string `json:"modalOperator"`

	ThinkingTimeMs int64             `json:"thinkingTimeMs"`
	Metadata       map[string]string `gorm:"serializer:json" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"-"`
}

// Metadata keys with meaning to the analyzer. Everything else is free-form.
const (
	MetaCorrect = "correct" // "true"/"false" ground truth for the decision
	MetaOutcome = "outcome" // "win"/"loss"/"draw" session outcome tag
)

// SessionSummary aggregates the buffered events of one (user, game) pair
// within a tracking session. It is computed on demand and never persisted
// here; storing it is the caller's concern.
type SessionSummary struct {
	UserID                string         `json:"userId"`
	GameID                string         `json:"gameId"`
	TotalDecisions        int            `json:"totalDecisions"`
	RuleTypeDistribution  map[string]int `json:"ruleTypeDistribution"`
	AgentTypeDistribution map[string]int `json:"agentTypeDistribution"`
	StartTime             int64          `json:"startTime"`
	EndTime               int64          `json:"endTime,omitempty"`
	AverageThinkingTime   float64        `json:"averageThinkingTime"`
	Outcome               string         `json:"outcome,omitempty"`
}
