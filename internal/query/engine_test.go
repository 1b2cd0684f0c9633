package query

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"ludilens/internal/models"
	"ludilens/internal/store"
)

func seedEngine(t *testing.T) *Engine {
	t.Helper()
	m := store.NewMemory()
	err := m.Append(context.Background(), []models.DecisionEvent{
		{ID: "e1", Timestamp: 1_700_000_000_000, UserID: "u1", SessionID: "s1", GameID: "chess", RuleType: "opening", AgentType: "deliberate", ThinkingTimeMs: 100},
		{ID: "e2", Timestamp: 1_700_000_100_000, UserID: "u1", SessionID: "s1", GameID: "chess", RuleType: "midgame", AgentType: "intuitive", ThinkingTimeMs: 300},
		{ID: "e3", Timestamp: 1_700_000_200_000, UserID: "u2", SessionID: "s2", GameID: "go", RuleType: "opening", AgentType: "deliberate", ThinkingTimeMs: 200},
	})
	if err != nil {
		t.Fatal(err)
	}
	return New(m, zap.NewNop())
}

func TestRun_GroupByGame(t *testing.T) {
	e := seedEngine(t)

	res, err := e.Run(context.Background(), models.AnalyticsQuery{
		GroupBy: []string{models.GroupByGame},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 {
		t.Fatalf("Total = %d, want 2", res.Total)
	}
	// Composite keys sort lexically, so chess precedes go.
	if res.Data[0].Key["gameId"] != "chess" || res.Data[0].Count != 2 {
		t.Errorf("row 0 = %+v, want chess with count 2", res.Data[0])
	}
	if res.Data[1].Key["gameId"] != "go" || res.Data[1].Count != 1 {
		t.Errorf("row 1 = %+v, want go with count 1", res.Data[1])
	}
	if res.Data[0].AverageThinkingTime != 200 {
		t.Errorf("chess AverageThinkingTime = %f, want 200", res.Data[0].AverageThinkingTime)
	}
}

func TestRun_NoGroupByCollapsesToOneRow(t *testing.T) {
	e := seedEngine(t)

	res, err := e.Run(context.Background(), models.AnalyticsQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.Data[0].Count != 3 {
		t.Errorf("got total %d count %d, want one row over all 3 events", res.Total, res.Data[0].Count)
	}
	if res.Data[0].AverageThinkingTime != 200 {
		t.Errorf("AverageThinkingTime = %f, want 200", res.Data[0].AverageThinkingTime)
	}
}

func TestRun_FiltersCombineWithAnd(t *testing.T) {
	e := seedEngine(t)

	res, err := e.Run(context.Background(), models.AnalyticsQuery{
		UserID:    "u1",
		GameID:    "chess",
		RuleTypes: []string{"opening"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data[0].Count != 1 {
		t.Errorf("Count = %d, want 1 event matching every filter", res.Data[0].Count)
	}
}

func TestRun_PaginationAfterAggregation(t *testing.T) {
	e := seedEngine(t)

	res, err := e.Run(context.Background(), models.AnalyticsQuery{
		GroupBy: []string{models.GroupByRuleType},
		Limit:   1,
		Offset:  1,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Total counts groups, not the page.
	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}
	if len(res.Data) != 1 || res.Data[0].Key["ruleType"] != "opening" {
		t.Errorf("page = %+v, want the second group (opening)", res.Data)
	}
}

func TestRun_OffsetPastEnd(t *testing.T) {
	e := seedEngine(t)

	res, err := e.Run(context.Background(), models.AnalyticsQuery{
		GroupBy: []string{models.GroupByGame},
		Offset:  10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Data) != 0 {
		t.Errorf("Data = %v, want empty page", res.Data)
	}
	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}
}

func TestRun_UnknownDimension(t *testing.T) {
	e := seedEngine(t)

	if _, err := e.Run(context.Background(), models.AnalyticsQuery{
		GroupBy: []string{"favoriteColor"},
	}); err == nil {
		t.Fatal("expected an error for an unknown dimension")
	}
}

func TestRun_GroupByDayUsesUTC(t *testing.T) {
	e := seedEngine(t)

	res, err := e.Run(context.Background(), models.AnalyticsQuery{
		GroupBy: []string{models.GroupByDay},
	})
	if err != nil {
		t.Fatal(err)
	}
	// All three timestamps fall on 2023-11-14 UTC.
	if res.Total != 1 || res.Data[0].Key["day"] != "2023-11-14" {
		t.Errorf("got %+v, want a single 2023-11-14 bucket", res.Data)
	}
}
