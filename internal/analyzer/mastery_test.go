package analyzer

import (
	"testing"
	"time"

	"ludilens/internal/models"
)

func masteryEvent(user, ruleType, correct string, thinkMs int64) models.DecisionEvent {
	e := models.DecisionEvent{
		UserID:         user,
		SessionID:      "s-" + user,
		GameID:         "chess",
		RuleType:       ruleType,
		AgentType:      "deliberate",
		ThinkingTimeMs: thinkMs,
	}
	if correct != "" {
		e.Metadata = map[string]string{models.MetaCorrect: correct}
	}
	return e
}

func TestRuleTypeMastery_ConfidenceCeilingOnSparseData(t *testing.T) {
	opts := DefaultOptions()
	now := time.Now()

	// For every sample size below the minimum, confidence must stay at or
	// under the ceiling.
	for n := 1; n < opts.MinMasterySamples; n++ {
		var events []models.DecisionEvent
		for i := 0; i < n; i++ {
			events = append(events, masteryEvent("u1", "A", "true", 100))
		}

		mastery := RuleTypeMastery(events, populationMeans(events), now, opts)
		ml := mastery["A"]
		if ml.SampleSize != n {
			t.Fatalf("SampleSize = %d, want %d", ml.SampleSize, n)
		}
		if ml.Confidence > opts.ConfidenceCeiling {
			t.Errorf("n=%d: Confidence = %f exceeds ceiling %f", n, ml.Confidence, opts.ConfidenceCeiling)
		}
	}
}

func TestRuleTypeMastery_ConfidenceGrowsWithSamples(t *testing.T) {
	opts := DefaultOptions()
	now := time.Now()

	build := func(n int) []models.DecisionEvent {
		var events []models.DecisionEvent
		for i := 0; i < n; i++ {
			events = append(events, masteryEvent("u1", "A", "true", 100))
		}
		return events
	}

	small := RuleTypeMastery(build(5), nil, now, opts)["A"]
	large := RuleTypeMastery(build(50), nil, now, opts)["A"]
	if small.Confidence >= large.Confidence {
		t.Errorf("confidence should grow with sample size: %f vs %f", small.Confidence, large.Confidence)
	}
}

func TestRuleTypeMastery_AccuracyDrivesLevel(t *testing.T) {
	opts := DefaultOptions()
	now := time.Now()

	var events []models.DecisionEvent
	// u1 is always right, u2 always wrong; equal thinking times pin
	// efficiency at 0.5 for both.
	for i := 0; i < 20; i++ {
		events = append(events, masteryEvent("u1", "A", "true", 100))
		events = append(events, masteryEvent("u2", "A", "false", 100))
	}
	population := populationMeans(events)

	var u1Events, u2Events []models.DecisionEvent
	for _, e := range events {
		if e.UserID == "u1" {
			u1Events = append(u1Events, e)
		} else {
			u2Events = append(u2Events, e)
		}
	}

	strong := RuleTypeMastery(u1Events, population, now, opts)["A"]
	weak := RuleTypeMastery(u2Events, population, now, opts)["A"]

	if strong.Level.Rank() <= weak.Level.Rank() {
		t.Errorf("always-correct user ranked %s, always-wrong user %s", strong.Level, weak.Level)
	}
	if weak.Level != models.MasteryNovice {
		t.Errorf("always-wrong level = %s, want novice", weak.Level)
	}
}

func TestRuleTypeMastery_EfficiencyOnly(t *testing.T) {
	opts := DefaultOptions()
	now := time.Now()

	// No ground truth anywhere: the score is thinking-time efficiency.
	fast := []models.DecisionEvent{masteryEvent("u1", "A", "", 50)}
	slow := []models.DecisionEvent{masteryEvent("u2", "A", "", 400)}
	population := populationMeans(append(fast, slow...))

	fastMastery := RuleTypeMastery(fast, population, now, opts)["A"]
	slowMastery := RuleTypeMastery(slow, population, now, opts)["A"]
	if fastMastery.Level.Rank() <= slowMastery.Level.Rank() {
		t.Errorf("faster-than-population user ranked %s, slower %s", fastMastery.Level, slowMastery.Level)
	}
}

func TestMasteryRankOrdering(t *testing.T) {
	order := []models.Mastery{
		models.MasteryNovice,
		models.MasteryBeginner,
		models.MasteryIntermediate,
		models.MasteryAdvanced,
		models.MasteryExpert,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("%s should rank below %s", order[i-1], order[i])
		}
	}
}
