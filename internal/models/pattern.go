package models

// DecisionPattern is a recurring rule-type sequence detected across the event
// corpus. Identity is stable across re-runs only for an unchanged corpus and
// unchanged detection parameters.
type DecisionPattern struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	RuleTypeSequence  []string `json:"ruleTypeSequence"`
	AgentTypeContexts []string `json:"agentTypeContexts"`
	Occurrences       int      `json:"occurrences"`

	// GamePrevalence is occurrence count normalized by the number of
	// sessions observed for each game.
	GamePrevalence map[string]float64 `json:"gamePrevalence"`

	AverageThinkingTime float64 `json:"averageThinkingTime"`
	ErrorRate           float64 `json:"errorRate"`
	TransferPotential   float64 `json:"transferPotential"` // 0..1
}
