package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/google/uuid"

	"ludilens/internal/models"
	"ludilens/internal/store"
)

// Export assembles a research export bundle from the stored corpus according
// to the given options.
func (a *Analyzer) Export(ctx context.Context, opts models.ExportOptions) (*models.ResearchExport, error) {
	events, err := a.store.Query(ctx, store.Filter{
		UserID: opts.UserID,
		GameID: opts.GameID,
		From:   opts.From,
		To:     opts.To,
	})
	if err != nil {
		return nil, err
	}

	export := &models.ResearchExport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Options:     opts,
	}

	if opts.IncludePatterns {
		export.Patterns = ExtractPatterns(events, a.opts)
	}

	if opts.IncludeProfiles {
		corpus := make(map[string][]models.DecisionEvent)
		for _, e := range events {
			corpus[e.GameID] = append(corpus[e.GameID], e)
		}
		now := time.Now()
		for _, userID := range distinctUsers(events) {
			var userEvents []models.DecisionEvent
			for _, e := range events {
				if e.UserID == userID {
					userEvents = append(userEvents, e)
				}
			}
			export.Profiles = append(export.Profiles, *BuildProfile(userID, userEvents, corpus, now, a.opts))
		}
	}

	if opts.IncludeEvents {
		export.Events = events
	}

	if opts.Anonymize {
		anonymizeExport(export)
	}
	return export, nil
}

func distinctUsers(events []models.DecisionEvent) []string {
	set := make(map[string]struct{})
	for _, e := range events {
		set[e.UserID] = struct{}{}
	}
	users := make([]string, 0, len(set))
	for u := range set {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// anonymizeUserID maps a user id to a stable one-way digest so exported
// records stay joinable without exposing identities.
func anonymizeUserID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:6])
}

func anonymizeExport(export *models.ResearchExport) {
	for i := range export.Events {
		export.Events[i].UserID = anonymizeUserID(export.Events[i].UserID)
		export.Events[i].Metadata = nil
	}
	for i := range export.Profiles {
		export.Profiles[i].UserID = anonymizeUserID(export.Profiles[i].UserID)
	}
}
