package store

import (
	"context"

	"gorm.io/gorm"

	"ludilens/internal/models"
)

// Postgres is the GORM-backed EventStore used in production.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres wraps an open GORM connection. Migrations are owned by the
// database package, not the store.
func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Append(ctx context.Context, events []models.DecisionEvent) error {
	if len(events) == 0 {
		return nil
	}
	return p.db.WithContext(ctx).Create(&events).Error
}

func (p *Postgres) Query(ctx context.Context, f Filter) ([]models.DecisionEvent, error) {
	q := p.db.WithContext(ctx).Model(&models.DecisionEvent{})

	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.GameID != "" {
		q = q.Where("game_id = ?", f.GameID)
	}
	if f.SessionID != "" {
		q = q.Where("session_id = ?", f.SessionID)
	}
	if f.From != 0 {
		q = q.Where("timestamp >= ?", f.From)
	}
	if f.To != 0 {
		q = q.Where("timestamp <= ?", f.To)
	}
	if len(f.RuleTypes) > 0 {
		q = q.Where("rule_type IN ?", f.RuleTypes)
	}
	if len(f.AgentTypes) > 0 {
		q = q.Where("agent_type IN ?", f.AgentTypes)
	}

	var events []models.DecisionEvent
	err := q.Order("timestamp ASC").Find(&events).Error
	return events, err
}
