package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"ludilens/internal/analyzer"
	"ludilens/internal/models"
	"ludilens/internal/store"
)

// ReportsHandler renders chart option payloads for the research tooling.
// The charts are returned as ECharts JSON, not HTML; rendering is the
// consumer's concern.
type ReportsHandler struct {
	log   *zap.Logger
	store store.EventStore
}

func NewReportsHandler(log *zap.Logger, s store.EventStore) *ReportsHandler {
	return &ReportsHandler{log: log, store: s}
}

// MasteryTimeline plots per-day average thinking time for a user in a game,
// optionally restricted to one rule type.
func (h *ReportsHandler) MasteryTimeline(c *gin.Context) {
	userID := c.Query("user")
	gameID := c.Query("game")
	if userID == "" || gameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user and game are required"})
		return
	}

	f := store.Filter{UserID: userID, GameID: gameID}
	if rt := c.Query("ruleType"); rt != "" {
		f.RuleTypes = []string{rt}
	}
	events, err := h.store.Query(c.Request.Context(), f)
	if err != nil {
		h.log.Error("Failed to load timeline events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load timeline data"})
		return
	}

	chart := generateThinkingTimeChart(events)
	c.JSON(http.StatusOK, chart.JSON())
}

// TransferScatter plots the paired per-user mastery scores between two games.
func (h *ReportsHandler) TransferScatter(c *gin.Context) {
	gameA := c.Query("gameA")
	gameB := c.Query("gameB")
	if gameA == "" || gameB == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameA and gameB are required"})
		return
	}

	eventsA, err := h.store.Query(c.Request.Context(), store.Filter{GameID: gameA})
	if err == nil {
		var eventsB []models.DecisionEvent
		eventsB, err = h.store.Query(c.Request.Context(), store.Filter{GameID: gameB})
		if err == nil {
			xs, ys, _ := analyzer.ScorePairs(eventsA, eventsB)
			chart := generateTransferChart(gameA, gameB, xs, ys)
			c.JSON(http.StatusOK, chart.JSON())
			return
		}
	}

	h.log.Error("Failed to load transfer events", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transfer data"})
}

func generateThinkingTimeChart(events []models.DecisionEvent) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Thinking Time Over Time",
			Subtitle: "Daily average, ms",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	type dayAgg struct {
		sum int64
		n   int
	}
	byDay := make(map[string]*dayAgg)
	for _, e := range events {
		day := time.UnixMilli(e.Timestamp).UTC().Format("2006-01-02")
		agg, ok := byDay[day]
		if !ok {
			agg = &dayAgg{}
			byDay[day] = agg
		}
		agg.sum += e.ThinkingTimeMs
		agg.n++
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	items := make([]opts.LineData, 0, len(days))
	for _, d := range days {
		agg := byDay[d]
		items = append(items, opts.LineData{Value: []interface{}{d, float64(agg.sum) / float64(agg.n)}})
	}

	line.AddSeries("Avg Thinking Time", items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func generateTransferChart(gameA, gameB string, xs, ys []float64) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Cross-Game Mastery Correlation",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: gameA,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: gameB,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.ScatterData, 0, len(xs))
	for i := range xs {
		items = append(items, opts.ScatterData{Value: []interface{}{xs[i], ys[i]}})
	}

	scatter.AddSeries("Mastery Pairs", items)
	return scatter
}
