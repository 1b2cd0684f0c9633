package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ExperimentStatus progresses strictly forward:
// draft -> active -> completed -> archived.
type ExperimentStatus string

const (
	ExperimentDraft     ExperimentStatus = "draft"
	ExperimentActive    ExperimentStatus = "active"
	ExperimentCompleted ExperimentStatus = "completed"
	ExperimentArchived  ExperimentStatus = "archived"
)

var experimentOrder = map[ExperimentStatus]int{
	ExperimentDraft:     0,
	ExperimentActive:    1,
	ExperimentCompleted: 2,
	ExperimentArchived:  3,
}

// ExperimentConfig describes a research experiment grouping a set of games.
type ExperimentConfig struct {
	ID          string           `gorm:"primaryKey" json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	GameIDs     pq.StringArray   `gorm:"type:text[]" json:"gameIds"`
	Status      ExperimentStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Transition moves the experiment to the given status, rejecting anything
// that is not a forward step.
func (e *ExperimentConfig) Transition(next ExperimentStatus) error {
	cur, ok := experimentOrder[e.Status]
	if !ok {
		return fmt.Errorf("unknown experiment status %q", e.Status)
	}
	n, ok := experimentOrder[next]
	if !ok {
		return fmt.Errorf("unknown experiment status %q", next)
	}
	if n <= cur {
		return fmt.Errorf("cannot move experiment from %s to %s", e.Status, next)
	}
	e.Status = next
	return nil
}
