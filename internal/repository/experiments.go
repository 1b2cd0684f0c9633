package repository

import (
	"context"

	"github.com/google/uuid"

	"ludilens/internal/database"
	"ludilens/internal/models"
)

// CreateExperiment persists a new experiment in draft status.
func CreateExperiment(ctx context.Context, name, description string, gameIDs []string) (*models.ExperimentConfig, error) {
	exp := &models.ExperimentConfig{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		GameIDs:     gameIDs,
		Status:      models.ExperimentDraft,
	}
	result := database.DB.WithContext(ctx).Create(exp)
	return exp, result.Error
}

func GetExperiment(ctx context.Context, id string) (*models.ExperimentConfig, error) {
	var exp models.ExperimentConfig
	result := database.DB.WithContext(ctx).First(&exp, "id = ?", id)
	return &exp, result.Error
}

func ListExperiments(ctx context.Context) ([]models.ExperimentConfig, error) {
	var exps []models.ExperimentConfig
	result := database.DB.WithContext(ctx).Order("created_at DESC").Find(&exps)
	return exps, result.Error
}

// UpdateExperimentStatus applies a forward-only status transition.
func UpdateExperimentStatus(ctx context.Context, id string, next models.ExperimentStatus) (*models.ExperimentConfig, error) {
	exp, err := GetExperiment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := exp.Transition(next); err != nil {
		return nil, err
	}
	if err := database.DB.WithContext(ctx).Model(exp).Update("status", exp.Status).Error; err != nil {
		return nil, err
	}
	return exp, nil
}
