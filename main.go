package main

import (
	"time"

	"go.uber.org/zap"

	"ludilens/internal/analyzer"
	"ludilens/internal/config"
	"ludilens/internal/database"
	logger "ludilens/internal/logging"
	"ludilens/internal/query"
	"ludilens/internal/router"
	"ludilens/internal/services"
	"ludilens/internal/store"
	"ludilens/internal/tracker"
)

func main() {
	// Initialize Logger
	log, err := logger.Init("logs", logger.DefaultRotation())
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Load configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Database
	database.Init(log)

	eventStore := store.NewPostgres(database.DB)

	trackerCfg := tracker.Config{
		BufferSize:    config.Conf.Tracker.BufferSize,
		FlushInterval: time.Duration(config.Conf.Tracker.FlushIntervalMs) * time.Millisecond,
		Endpoint:      config.Conf.Tracker.Endpoint,
		Sink:          tracker.StoreSink(eventStore),
	}
	registry := tracker.NewRegistry(trackerCfg, log)
	defer registry.StopAll()

	if days := config.Conf.Database.RetentionDays; days > 0 {
		retention := services.NewRetention(database.DB, days, log)
		retention.Start()
		defer retention.Stop()
	}

	a := analyzer.New(eventStore, analyzer.DefaultOptions(), log)
	engine := query.New(eventStore, log)

	// Setup router, passing the logger to it
	r := router.Setup(log, router.Deps{
		Registry: registry,
		Store:    eventStore,
		Analyzer: a,
		Engine:   engine,
	})

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
