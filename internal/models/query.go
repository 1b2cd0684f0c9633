package models

import "time"

// Dimensions accepted in AnalyticsQuery.GroupBy.
const (
	GroupByUser      = "userId"
	GroupByGame      = "gameId"
	GroupByRuleType  = "ruleType"
	GroupByAgentType = "agentType"
	GroupByDay       = "day" // UTC calendar day of the event timestamp
)

// AnalyticsQuery is an ad-hoc reporting request. Filter fields combine with
// logical AND; a zero field means no constraint on that dimension. From/To
// are millisecond timestamps, 0 meaning unbounded.
type AnalyticsQuery struct {
	UserID     string   `json:"userId,omitempty"`
	GameID     string   `json:"gameId,omitempty"`
	SessionID  string   `json:"sessionId,omitempty"`
	RuleTypes  []string `json:"ruleTypes,omitempty"`
	AgentTypes []string `json:"agentTypes,omitempty"`
	From       int64    `json:"from,omitempty"`
	To         int64    `json:"to,omitempty"`
	GroupBy    []string `json:"groupBy,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}

// AnalyticsRow is one non-empty partition of the filtered result set.
type AnalyticsRow struct {
	Key                 map[string]string `json:"key"`
	Count               int               `json:"count"`
	AverageThinkingTime float64           `json:"averageThinkingTime"`
}

// AnalyticsResult echoes the query it answers. Total counts result rows
// before pagination; Data is the paginated slice.
type AnalyticsResult struct {
	Query      AnalyticsQuery `json:"query"`
	Total      int            `json:"total"`
	Data       []AnalyticsRow `json:"data"`
	ExecutedAt time.Time      `json:"executedAt"`
}
