package analyzer

import (
	"testing"
	"time"

	"ludilens/internal/models"
)

func profEvent(session, game, ruleType, agentType, correct string, ts int64) models.DecisionEvent {
	e := models.DecisionEvent{
		Timestamp:      ts,
		UserID:         "u1",
		SessionID:      session,
		GameID:         game,
		RuleType:       ruleType,
		AgentType:      agentType,
		ThinkingTimeMs: 100,
	}
	if correct != "" {
		e.Metadata = map[string]string{models.MetaCorrect: correct}
	}
	return e
}

func corpusFor(events []models.DecisionEvent) map[string][]models.DecisionEvent {
	corpus := make(map[string][]models.DecisionEvent)
	for _, e := range events {
		corpus[e.GameID] = append(corpus[e.GameID], e)
	}
	return corpus
}

func TestBuildProfile_StrongAndWeakRuleTypes(t *testing.T) {
	var events []models.DecisionEvent
	// Perfect on A, hopeless on B. Equal thinking times keep efficiency
	// flat so accuracy decides the split.
	for i := 0; i < 20; i++ {
		events = append(events, profEvent("s1", "chess", "A", "deliberate", "true", int64(i)))
		events = append(events, profEvent("s1", "chess", "B", "deliberate", "false", int64(100+i)))
	}

	profile := BuildProfile("u1", events, corpusFor(events), time.Now(), DefaultOptions())

	if len(profile.StrongRuleTypes) != 1 || profile.StrongRuleTypes[0] != "A" {
		t.Errorf("StrongRuleTypes = %v, want [A]", profile.StrongRuleTypes)
	}
	if len(profile.WeakRuleTypes) != 1 || profile.WeakRuleTypes[0] != "B" {
		t.Errorf("WeakRuleTypes = %v, want [B]", profile.WeakRuleTypes)
	}
}

func TestBuildProfile_AgentTypePreferenceAndFlexibility(t *testing.T) {
	var single, mixed []models.DecisionEvent
	for i := 0; i < 10; i++ {
		single = append(single, profEvent("s1", "chess", "A", "deliberate", "", int64(i)))
		at := "deliberate"
		if i%2 == 0 {
			at = "intuitive"
		}
		mixed = append(mixed, profEvent("s1", "chess", "A", at, "", int64(i)))
	}
	opts := DefaultOptions()

	p1 := BuildProfile("u1", single, corpusFor(single), time.Now(), opts)
	if p1.PreferredAgentType != "deliberate" {
		t.Errorf("PreferredAgentType = %q, want deliberate", p1.PreferredAgentType)
	}
	if p1.Flexibility != 0 {
		t.Errorf("single-mode Flexibility = %f, want 0", p1.Flexibility)
	}

	p2 := BuildProfile("u1", mixed, corpusFor(mixed), time.Now(), opts)
	if p2.Flexibility <= 0.99 {
		t.Errorf("uniform two-way split Flexibility = %f, want ~1", p2.Flexibility)
	}
}

func TestBuildProfile_WinRateAndSessions(t *testing.T) {
	events := []models.DecisionEvent{
		profEvent("s1", "chess", "A", "deliberate", "", 1),
		profEvent("s1", "chess", "A", "deliberate", "", 2),
		profEvent("s2", "chess", "A", "deliberate", "", 3),
	}
	events[1].Metadata = map[string]string{models.MetaOutcome: "win"}
	events[2].Metadata = map[string]string{models.MetaOutcome: "loss"}

	profile := BuildProfile("u1", events, corpusFor(events), time.Now(), DefaultOptions())
	gp := profile.Games["chess"]
	if gp == nil {
		t.Fatal("missing chess game profile")
	}
	if gp.SessionsPlayed != 2 {
		t.Errorf("SessionsPlayed = %d, want 2", gp.SessionsPlayed)
	}
	if gp.WinRate != 0.5 {
		t.Errorf("WinRate = %f, want 0.5", gp.WinRate)
	}
}

func TestBuildProfile_ImprovingTrend(t *testing.T) {
	var events []models.DecisionEvent
	// Early decisions are wrong, late ones right; the earliest and latest
	// thirds of the history diverge well past the trend band.
	for i := 0; i < 12; i++ {
		correct := "false"
		if i >= 6 {
			correct = "true"
		}
		events = append(events, profEvent("s1", "chess", "A", "deliberate", correct, int64(i)))
	}

	profile := BuildProfile("u1", events, corpusFor(events), time.Now(), DefaultOptions())
	if got := profile.Games["chess"].SkillTrend; got != models.TrendImproving {
		t.Errorf("SkillTrend = %s, want improving", got)
	}
}

func TestBuildProfile_SparseHistoryTrendsStable(t *testing.T) {
	events := []models.DecisionEvent{
		profEvent("s1", "chess", "A", "deliberate", "false", 1),
		profEvent("s1", "chess", "A", "deliberate", "true", 2),
	}

	profile := BuildProfile("u1", events, corpusFor(events), time.Now(), DefaultOptions())
	if got := profile.Games["chess"].SkillTrend; got != models.TrendStable {
		t.Errorf("SkillTrend = %s, want stable for sparse history", got)
	}
}

func TestBuildProfile_GeneralizationAcrossGames(t *testing.T) {
	var events []models.DecisionEvent
	// Identical performance on the same rule types in two games.
	for i := 0; i < 10; i++ {
		events = append(events, profEvent("s1", "chess", "A", "deliberate", "true", int64(i)))
		events = append(events, profEvent("s2", "go", "A", "deliberate", "true", int64(i)))
	}

	profile := BuildProfile("u1", events, corpusFor(events), time.Now(), DefaultOptions())
	if profile.RuleTypeGeneralization != 1 {
		t.Errorf("RuleTypeGeneralization = %f, want 1 for identical cross-game scores", profile.RuleTypeGeneralization)
	}
}

func TestBuildProfile_EmptyHistory(t *testing.T) {
	profile := BuildProfile("u1", nil, nil, time.Now(), DefaultOptions())
	if len(profile.Games) != 0 {
		t.Errorf("Games = %d, want 0", len(profile.Games))
	}
	if profile.PreferredAgentType != "" {
		t.Errorf("PreferredAgentType = %q, want empty", profile.PreferredAgentType)
	}
}
