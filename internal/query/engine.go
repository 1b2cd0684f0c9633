// Package query answers ad-hoc analytics queries against the event store:
// AND-combined filters, multi-dimension grouping and post-aggregation
// pagination.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"ludilens/internal/models"
	"ludilens/internal/store"
)

// Engine runs AnalyticsQuery requests. It is read-only over the store and
// safe for concurrent use.
type Engine struct {
	store store.EventStore
	log   *zap.Logger
}

// New returns an engine over the given store.
func New(s store.EventStore, log *zap.Logger) *Engine {
	return &Engine{store: s, log: log}
}

// Run executes the query. The full filtered set is aggregated before the
// limit/offset slice is taken, so Total always reflects the complete result.
func (e *Engine) Run(ctx context.Context, q models.AnalyticsQuery) (*models.AnalyticsResult, error) {
	for _, dim := range q.GroupBy {
		if !validDimension(dim) {
			return nil, fmt.Errorf("query: unknown groupBy dimension %q", dim)
		}
	}

	events, err := e.store.Query(ctx, store.Filter{
		UserID:     q.UserID,
		GameID:     q.GameID,
		SessionID:  q.SessionID,
		From:       q.From,
		To:         q.To,
		RuleTypes:  q.RuleTypes,
		AgentTypes: q.AgentTypes,
	})
	if err != nil {
		return nil, err
	}

	rows := aggregate(events, q.GroupBy)
	total := len(rows)
	rows = paginate(rows, q.Limit, q.Offset)

	e.log.Debug("Analytics query executed",
		zap.Int("events", len(events)),
		zap.Int("rows", total),
		zap.Strings("group_by", q.GroupBy),
	)

	return &models.AnalyticsResult{
		Query:      q,
		Total:      total,
		Data:       rows,
		ExecutedAt: time.Now(),
	}, nil
}

func validDimension(dim string) bool {
	switch dim {
	case models.GroupByUser, models.GroupByGame, models.GroupByRuleType,
		models.GroupByAgentType, models.GroupByDay:
		return true
	}
	return false
}

func dimensionValue(e *models.DecisionEvent, dim string) string {
	switch dim {
	case models.GroupByUser:
		return e.UserID
	case models.GroupByGame:
		return e.GameID
	case models.GroupByRuleType:
		return e.RuleType
	case models.GroupByAgentType:
		return e.AgentType
	case models.GroupByDay:
		return time.UnixMilli(e.Timestamp).UTC().Format("2006-01-02")
	}
	return ""
}

// aggregate partitions the events along the requested dimensions. Only
// non-empty partitions produce rows; with no dimensions everything collapses
// into a single row. Rows come back in deterministic composite-key order.
func aggregate(events []models.DecisionEvent, groupBy []string) []models.AnalyticsRow {
	if len(events) == 0 {
		return []models.AnalyticsRow{}
	}

	type bucket struct {
		key      map[string]string
		count    int
		thinkSum int64
	}
	buckets := make(map[string]*bucket)
	for i := range events {
		e := &events[i]
		parts := make([]string, len(groupBy))
		key := make(map[string]string, len(groupBy))
		for j, dim := range groupBy {
			v := dimensionValue(e, dim)
			parts[j] = v
			key[dim] = v
		}
		composite := strings.Join(parts, "\x00")

		b, ok := buckets[composite]
		if !ok {
			b = &bucket{key: key}
			buckets[composite] = b
		}
		b.count++
		b.thinkSum += e.ThinkingTimeMs
	}

	composites := make([]string, 0, len(buckets))
	for c := range buckets {
		composites = append(composites, c)
	}
	sort.Strings(composites)

	rows := make([]models.AnalyticsRow, 0, len(buckets))
	for _, c := range composites {
		b := buckets[c]
		rows = append(rows, models.AnalyticsRow{
			Key:                 b.key,
			Count:               b.count,
			AverageThinkingTime: float64(b.thinkSum) / float64(b.count),
		})
	}
	return rows
}

// paginate slices after aggregation. A non-positive limit means no limit.
func paginate(rows []models.AnalyticsRow, limit, offset int) []models.AnalyticsRow {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []models.AnalyticsRow{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
