package analyzer

import (
	"context"
	"math"
	"sort"

	"ludilens/internal/models"
	"ludilens/internal/store"
)

// Transfer measures how predictive rule-type mastery in gameA is of mastery
// in gameB across the stored corpus.
func (a *Analyzer) Transfer(ctx context.Context, gameA, gameB string) (models.TransferScore, error) {
	eventsA, err := a.store.Query(ctx, store.Filter{GameID: gameA})
	if err != nil {
		return models.TransferScore{}, err
	}
	eventsB, err := a.store.Query(ctx, store.Filter{GameID: gameB})
	if err != nil {
		return models.TransferScore{}, err
	}
	return TransferBetween(gameA, gameB, eventsA, eventsB), nil
}

// TransferBetween correlates per-user mastery score vectors between two
// games, restricted to rule types occurring in both. Insufficient paired
// data yields Score 0 with the observed SampleSize; a caller can only tell a
// measured zero correlation from missing data through SampleSize.
func TransferBetween(gameA, gameB string, eventsA, eventsB []models.DecisionEvent) models.TransferScore {
	result := models.TransferScore{GameA: gameA, GameB: gameB}

	xs, ys, shared := ScorePairs(eventsA, eventsB)

	result.SampleSize = len(xs)
	result.SharedRuleTypes = shared
	if len(xs) < 2 {
		return result
	}

	r, ok := pearson(xs, ys)
	if !ok {
		return result
	}
	// Negative correlation means mastery in one game predicts weakness in
	// the other; for transfer purposes that is no transfer at all.
	result.Score = clamp01(r)
	return result
}

// TransferMatrix computes scores for every ordered pair of the given games.
func (a *Analyzer) TransferMatrix(ctx context.Context, gameIDs []string) ([]models.TransferScore, error) {
	byGame := make(map[string][]models.DecisionEvent, len(gameIDs))
	for _, id := range gameIDs {
		events, err := a.store.Query(ctx, store.Filter{GameID: id})
		if err != nil {
			return nil, err
		}
		byGame[id] = events
	}

	var scores []models.TransferScore
	for i, ga := range gameIDs {
		for _, gb := range gameIDs[i+1:] {
			scores = append(scores, TransferBetween(ga, gb, byGame[ga], byGame[gb]))
		}
	}
	return scores, nil
}

// ScorePairs collects the paired mastery score samples between two event
// corpora: one (x, y) pair per user per rule type occurring in both. The
// third return value lists the shared rule types.
func ScorePairs(eventsA, eventsB []models.DecisionEvent) (xs, ys []float64, shared []string) {
	popA := populationMeans(eventsA)
	popB := populationMeans(eventsB)
	usersA := groupByUser(eventsA)
	usersB := groupByUser(eventsB)

	sharedSet := make(map[string]struct{})
	for user, ua := range usersA {
		ub, ok := usersB[user]
		if !ok {
			continue
		}
		scoresA := ruleTypeScores(ua, popA)
		scoresB := ruleTypeScores(ub, popB)
		for rt, sa := range scoresA {
			sb, ok := scoresB[rt]
			if !ok {
				continue
			}
			sharedSet[rt] = struct{}{}
			xs = append(xs, sa)
			ys = append(ys, sb)
		}
	}
	return xs, ys, sortedKeys(sharedSet)
}

func groupByUser(events []models.DecisionEvent) map[string][]models.DecisionEvent {
	users := make(map[string][]models.DecisionEvent)
	for _, e := range events {
		users[e.UserID] = append(users[e.UserID], e)
	}
	return users
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// pearson returns the correlation coefficient of the paired samples, or
// ok=false when either side has zero variance.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}
