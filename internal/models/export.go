package models

import "time"

// ExportOptions selects what goes into a research export.
type ExportOptions struct {
	UserID    string `json:"userId,omitempty"`
	GameID    string `json:"gameId,omitempty"`
	From      int64  `json:"from,omitempty"`
	To        int64  `json:"to,omitempty"`
	Anonymize bool   `json:"anonymize"`

	IncludeEvents   bool `json:"includeEvents"`
	IncludePatterns bool `json:"includePatterns"`
	IncludeProfiles bool `json:"includeProfiles"`
}

// ResearchExport is a self-contained bundle for offline analysis. When
// Anonymize is set, user ids are replaced by stable one-way digests.
type ResearchExport struct {
	ID          string             `json:"id"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Options     ExportOptions      `json:"options"`
	Events      []DecisionEvent    `json:"events,omitempty"`
	Patterns    []DecisionPattern  `json:"patterns,omitempty"`
	Profiles    []CognitiveProfile `json:"profiles,omitempty"`
}
