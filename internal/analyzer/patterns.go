package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"ludilens/internal/models"
)

type patternStats struct {
	sequence   []string
	count      int
	gameCounts map[string]int
	contexts   map[string]struct{}
	thinkSum   int64
	thinkN     int
	labeled    int
	errors     int
}

// ExtractPatterns scans the corpus for repeated rule-type subsequences of
// window length MinWindow..MaxWindow within single sessions and keeps the
// signatures whose occurrence count reaches MinOccurrences. Per-game
// prevalence is the occurrence count normalized by the sessions observed for
// that game.
func ExtractPatterns(events []models.DecisionEvent, opts Options) []models.DecisionPattern {
	sessions := groupBySession(events)

	sessionsPerGame := make(map[string]int)
	for _, sess := range sessions {
		sessionsPerGame[sess[0].GameID]++
	}

	stats := make(map[string]*patternStats)
	for _, sess := range sessions {
		gameID := sess[0].GameID
		for w := opts.MinWindow; w <= opts.MaxWindow; w++ {
			for i := 0; i+w <= len(sess); i++ {
				window := sess[i : i+w]
				sig := signature(window)

				st, ok := stats[sig]
				if !ok {
					seq := make([]string, w)
					for j, e := range window {
						seq[j] = e.RuleType
					}
					st = &patternStats{
						sequence:   seq,
						gameCounts: make(map[string]int),
						contexts:   make(map[string]struct{}),
					}
					stats[sig] = st
				}

				st.count++
				st.gameCounts[gameID]++
				for _, e := range window {
					st.contexts[e.AgentType] = struct{}{}
					st.thinkSum += e.ThinkingTimeMs
					st.thinkN++
					if correct, ok := e.Metadata[models.MetaCorrect]; ok {
						st.labeled++
						if correct == "false" {
							st.errors++
						}
					}
				}
			}
		}
	}

	totalGames := len(sessionsPerGame)
	patterns := make([]models.DecisionPattern, 0)
	for sig, st := range stats {
		if st.count < opts.MinOccurrences {
			continue
		}

		prevalence := make(map[string]float64, len(st.gameCounts))
		for game, n := range st.gameCounts {
			prevalence[game] = float64(n) / float64(sessionsPerGame[game])
		}

		contexts := make([]string, 0, len(st.contexts))
		for c := range st.contexts {
			contexts = append(contexts, c)
		}
		sort.Strings(contexts)

		p := models.DecisionPattern{
			Name:             sig,
			RuleTypeSequence: st.sequence,
			Description: fmt.Sprintf("Rule sequence %s observed %d times across %d of %d games",
				strings.Join(st.sequence, " then "), st.count, len(st.gameCounts), totalGames),
			AgentTypeContexts:   contexts,
			Occurrences:         st.count,
			GamePrevalence:      prevalence,
			AverageThinkingTime: float64(st.thinkSum) / float64(st.thinkN),
			TransferPotential:   clamp01(float64(len(st.gameCounts)) / float64(totalGames)),
		}
		if st.labeled > 0 {
			p.ErrorRate = float64(st.errors) / float64(st.labeled)
		}
		patterns = append(patterns, p)
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Occurrences != patterns[j].Occurrences {
			return patterns[i].Occurrences > patterns[j].Occurrences
		}
		return patterns[i].Name < patterns[j].Name
	})
	return patterns
}

// groupBySession partitions events by session id, each partition ordered by
// timestamp.
func groupBySession(events []models.DecisionEvent) map[string][]models.DecisionEvent {
	sessions := make(map[string][]models.DecisionEvent)
	for _, e := range events {
		sessions[e.SessionID] = append(sessions[e.SessionID], e)
	}
	for id := range sessions {
		sess := sessions[id]
		sort.SliceStable(sess, func(i, j int) bool {
			return sess[i].Timestamp < sess[j].Timestamp
		})
		sessions[id] = sess
	}
	return sessions
}

func signature(window []models.DecisionEvent) string {
	parts := make([]string, len(window))
	for i, e := range window {
		parts[i] = e.RuleType
	}
	return strings.Join(parts, ">")
}
