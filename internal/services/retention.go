package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ludilens/internal/models"
)

// Retention prunes raw decision events older than the configured window so
// the events table does not grow without bound on long-running deployments.
type Retention struct {
	log      *zap.Logger
	db       *gorm.DB
	maxAge   time.Duration
	interval time.Duration

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewRetention returns a pruner keeping events for retentionDays. The caller
// must not start it with a non-positive retention window.
func NewRetention(db *gorm.DB, retentionDays int, log *zap.Logger) *Retention {
	return &Retention{
		log:      log,
		db:       db,
		maxAge:   time.Duration(retentionDays) * 24 * time.Hour,
		interval: time.Hour,
		done:     make(chan struct{}),
	}
}

// Start runs the pruner in a goroutine.
func (r *Retention) Start() {
	r.log.Info("Starting event retention pruner",
		zap.Duration("max_age", r.maxAge),
		zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.prune()
			case <-r.done:
				return
			}
		}
	}()
}

// Stop halts the pruner and waits for an in-flight prune to finish.
func (r *Retention) Stop() {
	r.once.Do(func() { close(r.done) })
	r.wg.Wait()
}

func (r *Retention) prune() {
	cutoff := time.Now().Add(-r.maxAge).UnixMilli()

	result := r.db.Where("timestamp < ?", cutoff).Delete(&models.DecisionEvent{})
	if result.Error != nil {
		r.log.Error("Failed to prune expired events", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		r.log.Info("Pruned expired events",
			zap.Int64("deleted", result.RowsAffected),
			zap.Int64("cutoff_ms", cutoff))
	}
}
