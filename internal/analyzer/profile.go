package analyzer

import (
	"context"
	"math"
	"sort"
	"time"

	"ludilens/internal/models"
	"ludilens/internal/store"
)

// CognitiveProfile recomputes the full per-user rollup from the corpus. The
// profile is a pure function of the events: running it twice over the same
// corpus yields the same profile.
func (a *Analyzer) CognitiveProfile(ctx context.Context, userID string) (*models.CognitiveProfile, error) {
	userEvents, err := a.store.Query(ctx, store.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}

	// The population baseline needs every game the user has touched.
	corpus := make(map[string][]models.DecisionEvent)
	for _, e := range userEvents {
		if _, ok := corpus[e.GameID]; ok {
			continue
		}
		gameEvents, err := a.store.Query(ctx, store.Filter{GameID: e.GameID})
		if err != nil {
			return nil, err
		}
		corpus[e.GameID] = gameEvents
	}

	return BuildProfile(userID, userEvents, corpus, time.Now(), a.opts), nil
}

// GameProfile answers the incremental single user/game query without
// assembling the whole cognitive profile.
func (a *Analyzer) GameProfile(ctx context.Context, userID, gameID string) (*models.GameProfile, error) {
	gameEvents, err := a.store.Query(ctx, store.Filter{GameID: gameID})
	if err != nil {
		return nil, err
	}
	var userEvents []models.DecisionEvent
	for _, e := range gameEvents {
		if e.UserID == userID {
			userEvents = append(userEvents, e)
		}
	}
	return buildGameProfile(gameID, userEvents, gameEvents, time.Now(), a.opts), nil
}

// BuildProfile assembles a cognitive profile from an in-memory corpus.
// corpus maps each game the user played to all events of that game (all
// users), providing the population baselines.
func BuildProfile(userID string, userEvents []models.DecisionEvent, corpus map[string][]models.DecisionEvent, now time.Time, opts Options) *models.CognitiveProfile {
	profile := &models.CognitiveProfile{
		UserID:          userID,
		StrongRuleTypes: []string{},
		WeakRuleTypes:   []string{},
		Games:           make(map[string]*models.GameProfile),
		GeneratedAt:     now,
	}

	byGame := make(map[string][]models.DecisionEvent)
	for _, e := range userEvents {
		byGame[e.GameID] = append(byGame[e.GameID], e)
	}

	// Per-game rollups and per-game score vectors.
	gameScores := make(map[string]map[string]float64, len(byGame))
	for gameID, events := range byGame {
		profile.Games[gameID] = buildGameProfile(gameID, events, corpus[gameID], now, opts)
		gameScores[gameID] = ruleTypeScores(events, populationMeans(corpus[gameID]))
	}

	// Strong/weak rule types from the cross-game average score.
	scoreSums := make(map[string]float64)
	scoreCounts := make(map[string]int)
	for _, scores := range gameScores {
		for rt, s := range scores {
			scoreSums[rt] += s
			scoreCounts[rt]++
		}
	}
	for rt := range scoreSums {
		avg := scoreSums[rt] / float64(scoreCounts[rt])
		switch {
		case avg >= opts.StrongThreshold:
			profile.StrongRuleTypes = append(profile.StrongRuleTypes, rt)
		case avg <= opts.WeakThreshold:
			profile.WeakRuleTypes = append(profile.WeakRuleTypes, rt)
		}
	}
	sort.Strings(profile.StrongRuleTypes)
	sort.Strings(profile.WeakRuleTypes)

	profile.PreferredAgentType, profile.Flexibility = agentTypeProfile(userEvents)
	profile.CrossGameTransfer = crossGameTransfer(gameScores)
	profile.RuleTypeGeneralization = ruleTypeGeneralization(gameScores)
	return profile
}

func buildGameProfile(gameID string, userEvents, gameEvents []models.DecisionEvent, now time.Time, opts Options) *models.GameProfile {
	gp := &models.GameProfile{
		GameID:      gameID,
		SkillTrend:  models.TrendStable,
		LastUpdated: now,
	}

	population := populationMeans(gameEvents)
	gp.RuleTypeMastery = RuleTypeMastery(userEvents, population, now, opts)

	sessions := groupBySession(userEvents)
	gp.SessionsPlayed = len(sessions)

	var wins, labeled int
	for _, sess := range sessions {
		for i := len(sess) - 1; i >= 0; i-- {
			if outcome, ok := sess[i].Metadata[models.MetaOutcome]; ok {
				labeled++
				if outcome == "win" {
					wins++
				}
				break
			}
		}
	}
	if labeled > 0 {
		gp.WinRate = float64(wins) / float64(labeled)
	}

	gp.SkillTrend = skillTrend(userEvents, population)
	return gp
}

// skillTrend compares mastery over the earliest third of the user's history
// for the game against the latest third.
func skillTrend(events []models.DecisionEvent, population map[string]float64) models.SkillTrend {
	if len(events) < 6 {
		return models.TrendStable
	}
	ordered := make([]models.DecisionEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	third := len(ordered) / 3
	early := overallScore(ordered[:third], population)
	late := overallScore(ordered[len(ordered)-third:], population)

	switch {
	case late-early > 0.1:
		return models.TrendImproving
	case early-late > 0.1:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// agentTypeProfile returns the modal agent type and a flexibility score: the
// normalized entropy of the agent-type distribution, 0 for a single mode and
// 1 for a uniform spread.
func agentTypeProfile(events []models.DecisionEvent) (string, float64) {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.AgentType]++
	}
	if len(counts) == 0 {
		return "", 0
	}

	var preferred string
	best := -1
	for at, n := range counts {
		if n > best || (n == best && at < preferred) {
			preferred, best = at, n
		}
	}
	if len(counts) == 1 {
		return preferred, 0
	}

	total := float64(len(events))
	var entropy float64
	for _, n := range counts {
		p := float64(n) / total
		entropy -= p * math.Log2(p)
	}
	return preferred, clamp01(entropy / math.Log2(float64(len(counts))))
}

// crossGameTransfer averages the per-pair correlation of the user's own
// score vectors across the games they play.
func crossGameTransfer(gameScores map[string]map[string]float64) float64 {
	games := make([]string, 0, len(gameScores))
	for g := range gameScores {
		games = append(games, g)
	}
	sort.Strings(games)
	if len(games) < 2 {
		return 0
	}

	var sum float64
	var pairs int
	for i, ga := range games {
		for _, gb := range games[i+1:] {
			var xs, ys []float64
			for rt, sa := range gameScores[ga] {
				if sb, ok := gameScores[gb][rt]; ok {
					xs = append(xs, sa)
					ys = append(ys, sb)
				}
			}
			if len(xs) < 2 {
				continue
			}
			if r, ok := pearson(xs, ys); ok {
				sum += clamp01(r)
				pairs++
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

// ruleTypeGeneralization measures how consistent per-rule-type scores are
// across games: 1 minus the average score spread over rule types seen in at
// least two games.
func ruleTypeGeneralization(gameScores map[string]map[string]float64) float64 {
	minByType := make(map[string]float64)
	maxByType := make(map[string]float64)
	seen := make(map[string]int)
	for _, scores := range gameScores {
		for rt, s := range scores {
			if n, ok := seen[rt]; !ok || n == 0 {
				minByType[rt], maxByType[rt] = s, s
			} else {
				if s < minByType[rt] {
					minByType[rt] = s
				}
				if s > maxByType[rt] {
					maxByType[rt] = s
				}
			}
			seen[rt]++
		}
	}

	var spreadSum float64
	var shared int
	for rt, n := range seen {
		if n < 2 {
			continue
		}
		spreadSum += maxByType[rt] - minByType[rt]
		shared++
	}
	if shared == 0 {
		return 0
	}
	return clamp01(1 - spreadSum/float64(shared))
}
