package models

import "time"

// Mastery is the ordinal skill estimate for one rule type.
type Mastery string

const (
	MasteryNovice       Mastery = "novice"
	MasteryBeginner     Mastery = "beginner"
	MasteryIntermediate Mastery = "intermediate"
	MasteryAdvanced     Mastery = "advanced"
	MasteryExpert       Mastery = "expert"
)

var masteryRank = map[Mastery]int{
	MasteryNovice:       0,
	MasteryBeginner:     1,
	MasteryIntermediate: 2,
	MasteryAdvanced:     3,
	MasteryExpert:       4,
}

// Rank returns the ordinal position of the level, novice being lowest.
func (m Mastery) Rank() int {
	return masteryRank[m]
}

// MasteryLevel couples a mastery estimate with its confidence and the number
// of events backing it. Confidence never exceeds the analyzer's ceiling when
// the sample size is below its minimum, so sparse data cannot look certain.
type MasteryLevel struct {
	Level        Mastery   `json:"level"`
	Confidence   float64   `json:"confidence"` // 0..1
	SampleSize   int       `json:"sampleSize"`
	LastAssessed time.Time `json:"lastAssessed"`
}

// SkillTrend tags the direction a user's skill is moving within one game.
type SkillTrend string

const (
	TrendImproving SkillTrend = "improving"
	TrendStable    SkillTrend = "stable"
	TrendDeclining SkillTrend = "declining"
)

// GameProfile is the per-user, per-game rollup.
type GameProfile struct {
	GameID          string                  `json:"gameId"`
	SessionsPlayed  int                     `json:"sessionsPlayed"`
	WinRate         float64                 `json:"winRate"` // 0..1 over labeled sessions
	RuleTypeMastery map[string]MasteryLevel `json:"ruleTypeMastery"`
	SkillTrend      SkillTrend              `json:"skillTrend"`
	LastUpdated     time.Time               `json:"lastUpdated"`
}

// CognitiveProfile is the per-user rollup across all games. Profiles are pure
// functions of the event corpus: they are produced by full recomputation,
// never patched in place.
type CognitiveProfile struct {
	UserID                 string                  `json:"userId"`
	StrongRuleTypes        []string                `json:"strongRuleTypes"`
	WeakRuleTypes          []string                `json:"weakRuleTypes"`
	PreferredAgentType     string                  `json:"preferredAgentType"`
	Flexibility            float64                 `json:"flexibility"` // 0..1
	Games                  map[string]*GameProfile `json:"games"`
	CrossGameTransfer      float64                 `json:"crossGameTransfer"`      // 0..1
	RuleTypeGeneralization float64                 `json:"ruleTypeGeneralization"` // 0..1
	GeneratedAt            time.Time               `json:"generatedAt"`
}

// TransferScore measures how predictive mastery in GameA is of mastery in
// GameB. A zero score with SampleSize 0 means there was no paired data; a
// zero score with a positive SampleSize is a measured absence of correlation.
// The two are distinguished only by SampleSize, never by the score itself.
type TransferScore struct {
	GameA           string   `json:"gameA"`
	GameB           string   `json:"gameB"`
	Score           float64  `json:"score"` // 0..1
	SampleSize      int      `json:"sampleSize"`
	SharedRuleTypes []string `json:"sharedRuleTypes"`
}
