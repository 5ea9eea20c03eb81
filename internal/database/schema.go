package database

import (
	"time"

	"github.com/google/uuid"
)

// Prediction is one served prediction, recorded for auditing.
type Prediction struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreationTime time.Time `gorm:"not null;index"`

	Pclass   int     `gorm:"not null"`
	Sex      int     `gorm:"not null"`
	Age      float64 `gorm:"not null"`
	Fare     float64 `gorm:"not null"`
	Embarked int     `gorm:"not null"`

	Outcome             int `gorm:"not null"`
	Survived            bool
	ProbabilitySurvived float64
}
