package analyzer

import (
	"time"

	"ludilens/internal/models"
)

// populationMeans returns the mean thinking time per rule type across the
// given events. It is the baseline user efficiency is measured against.
func populationMeans(events []models.DecisionEvent) map[string]float64 {
	sums := make(map[string]int64)
	counts := make(map[string]int)
	for _, e := range events {
		sums[e.RuleType] += e.ThinkingTimeMs
		counts[e.RuleType]++
	}
	means := make(map[string]float64, len(sums))
	for rt, sum := range sums {
		means[rt] = float64(sum) / float64(counts[rt])
	}
	return means
}

// ruleTypeScores computes the raw 0..1 mastery score per rule type for one
// user's events: a weighted combination of decision accuracy, when ground
// truth labels exist, and thinking-time efficiency relative to the population
// mean for the same rule type.
func ruleTypeScores(events []models.DecisionEvent, population map[string]float64) map[string]float64 {
	type acc struct {
		thinkSum int64
		n        int
		labeled  int
		correct  int
	}
	byType := make(map[string]*acc)
	for _, e := range events {
		a, ok := byType[e.RuleType]
		if !ok {
			a = &acc{}
			byType[e.RuleType] = a
		}
		a.thinkSum += e.ThinkingTimeMs
		a.n++
		if v, ok := e.Metadata[models.MetaCorrect]; ok {
			a.labeled++
			if v == "true" {
				a.correct++
			}
		}
	}

	scores := make(map[string]float64, len(byType))
	for rt, a := range byType {
		efficiency := 0.5
		userMean := float64(a.thinkSum) / float64(a.n)
		if popMean, ok := population[rt]; ok && popMean > 0 && userMean > 0 {
			// Matching the population mean scores 0.5; twice as fast
			// saturates at 1.
			efficiency = clamp01(popMean / (2 * userMean))
		}

		if a.labeled > 0 {
			accuracy := float64(a.correct) / float64(a.labeled)
			scores[rt] = clamp01(0.6*accuracy + 0.4*efficiency)
		} else {
			scores[rt] = efficiency
		}
	}
	return scores
}

func levelForScore(score float64) models.Mastery {
	switch {
	case score >= 0.85:
		return models.MasteryExpert
	case score >= 0.7:
		return models.MasteryAdvanced
	case score >= 0.5:
		return models.MasteryIntermediate
	case score >= 0.3:
		return models.MasteryBeginner
	default:
		return models.MasteryNovice
	}
}

// RuleTypeMastery derives a mastery level per rule type present in the user's
// events, scored against the population baseline. Confidence grows with the
// sample size and is clamped to the ceiling while the sample is below the
// minimum, so sparse data never reports near-certainty.
func RuleTypeMastery(userEvents []models.DecisionEvent, population map[string]float64, now time.Time, opts Options) map[string]models.MasteryLevel {
	counts := make(map[string]int)
	for _, e := range userEvents {
		counts[e.RuleType]++
	}

	scores := ruleTypeScores(userEvents, population)
	mastery := make(map[string]models.MasteryLevel, len(scores))
	for rt, score := range scores {
		n := counts[rt]
		confidence := float64(n) / float64(n+opts.MinMasterySamples)
		if n < opts.MinMasterySamples && confidence > opts.ConfidenceCeiling {
			confidence = opts.ConfidenceCeiling
		}
		mastery[rt] = models.MasteryLevel{
			Level:        levelForScore(score),
			Confidence:   confidence,
			SampleSize:   n,
			LastAssessed: now,
		}
	}
	return mastery
}

// overallScore is the count-weighted mean mastery score across rule types,
// used for skill-trend comparison between history slices.
func overallScore(events []models.DecisionEvent, population map[string]float64) float64 {
	scores := ruleTypeScores(events, population)
	if len(scores) == 0 {
		return 0
	}
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.RuleType]++
	}
	var weighted float64
	var total int
	for rt, s := range scores {
		weighted += s * float64(counts[rt])
		total += counts[rt]
	}
	return weighted / float64(total)
}
