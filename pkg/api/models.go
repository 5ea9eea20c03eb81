package api

import (
	"time"

	"github.com/google/uuid"
)

// PredictRequest carries the five passenger fields, accepted either as a
// JSON body or as form/query values.
type PredictRequest struct {
	Pclass   int     `json:"pclass" schema:"pclass,required"`
	Sex      int     `json:"sex" schema:"sex,required"`
	Age      float64 `json:"age" schema:"age,required"`
	Fare     float64 `json:"fare" schema:"fare,required"`
	Embarked int     `json:"embarked" schema:"embarked,required"`
}

type PredictResponse struct {
	Prediction             int     `json:"prediction"`
	Survived               bool    `json:"survived"`
	ProbabilityNotSurvived float64 `json:"probability_not_survived"`
	ProbabilitySurvived    float64 `json:"probability_survived"`
	Message                string  `json:"message"`
}

type MetricsResponse struct {
	Status               string `json:"status"`
	Accuracy             any    `json:"accuracy"`
	Precision            any    `json:"precision"`
	Recall               any    `json:"recall"`
	F1Score              any    `json:"f1_score"`
	ConfusionMatrix      any    `json:"confusion_matrix"`
	ClassificationReport any    `json:"classification_report"`
}

type PredictionRecord struct {
	Id                  uuid.UUID `json:"id"`
	CreationTime        time.Time `json:"creation_time"`
	Pclass              int       `json:"pclass"`
	Sex                 int       `json:"sex"`
	Age                 float64   `json:"age"`
	Fare                float64   `json:"fare"`
	Embarked            int       `json:"embarked"`
	Prediction          int       `json:"prediction"`
	Survived            bool      `json:"survived"`
	ProbabilitySurvived float64   `json:"probability_survived"`
}
