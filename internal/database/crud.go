package database

import (
	"context"
	"fmt"
	"time"

	"titanic-backend/internal/core"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavePrediction records one served prediction.
func SavePrediction(ctx context.Context, db *gorm.DB, input core.PassengerInput, outcome core.Outcome) error {
	record := Prediction{
		Id:                  uuid.New(),
		CreationTime:        time.Now().UTC(),
		Pclass:              input.Pclass,
		Sex:                 input.Sex,
		Age:                 input.Age,
		Fare:                input.Fare,
		Embarked:            input.Embarked,
		Outcome:             outcome.Prediction,
		Survived:            outcome.Survived,
		ProbabilitySurvived: outcome.ProbabilitySurvived,
	}

	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save prediction record: %w", err)
	}
	return nil
}

// ListPredictions returns the most recent prediction records, newest first.
func ListPredictions(ctx context.Context, db *gorm.DB, limit int) ([]Prediction, error) {
	var records []Prediction
	if err := db.WithContext(ctx).
		Order("creation_time DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("could not query prediction records: %w", err)
	}
	return records, nil
}
