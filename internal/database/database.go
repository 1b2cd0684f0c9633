package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ludilens/internal/config"
	logging "ludilens/internal/logging"
	"ludilens/internal/models"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create custom indexes, so we handle that separately.
	err := DB.AutoMigrate(
		&models.DecisionEvent{},
		&models.ExperimentConfig{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	// Covers the analyzer's per-user-per-game scans and the query engine's
	// time-ordered reads.
	eventsIndex := `CREATE INDEX IF NOT EXISTS idx_events_query ON decision_events (user_id, game_id, timestamp);`
	if err := DB.Exec(eventsIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on events table", zap.Error(err))
	}
	sessionIndex := `CREATE INDEX IF NOT EXISTS idx_events_session ON decision_events (session_id, timestamp);`
	if err := DB.Exec(sessionIndex).Error; err != nil {
		log.Fatal("Failed to create session index on events table", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
