package api

import (
	"log/slog"
	"net/http"
	"strings"

	"titanic-backend/internal/core"
	"titanic-backend/internal/database"
	"titanic-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gorm.io/gorm"
)

const defaultHistoryLimit = 50

type BackendService struct {
	service *core.Service
	db      *gorm.DB
	printer *message.Printer
}

func NewBackendService(service *core.Service, db *gorm.DB) *BackendService {
	return &BackendService{
		service: service,
		db:      db,
		printer: message.NewPrinter(language.English),
	}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Post("/predict", RestHandler(s.Predict))
	r.Get("/api/metrics", RestHandler(s.GetMetrics))
	r.Get("/predictions", RestHandler(s.ListPredictions))
}

func (s *BackendService) Predict(r *http.Request) (any, error) {
	req, err := parsePredictRequest(r)
	if err != nil {
		return nil, err
	}

	input := core.PassengerInput{
		Pclass:   req.Pclass,
		Sex:      req.Sex,
		Age:      req.Age,
		Fare:     req.Fare,
		Embarked: req.Embarked,
	}

	if errs := s.service.Validate(input); len(errs) > 0 {
		slog.Warn("prediction request failed validation", "errors", errs)
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "%s", strings.Join(errs, ", "))
	}

	result, err := s.service.Predict(input)
	if err != nil {
		slog.Error("inference service unavailable", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "prediction service unavailable")
	}
	if !result.Ok() {
		slog.Error("model inference failed", "errors", result.Errors)
		return nil, CodedErrorf(http.StatusInternalServerError, "an error occurred while making the prediction")
	}

	outcome := *result.Outcome

	if err := database.SavePrediction(r.Context(), s.db, input, outcome); err != nil {
		// History is best-effort, the prediction is still returned.
		slog.Error("error recording prediction", "error", err)
	}

	slog.Info("prediction made", "prediction", outcome.Prediction, "probability_survived", outcome.ProbabilitySurvived)

	return api.PredictResponse{
		Prediction:             outcome.Prediction,
		Survived:               outcome.Survived,
		ProbabilityNotSurvived: outcome.ProbabilityNotSurvived,
		ProbabilitySurvived:    outcome.ProbabilitySurvived,
		Message:                s.formatOutcome(outcome),
	}, nil
}

// parsePredictRequest accepts either a JSON body or form-encoded fields.
// Parse failures are reported as 400s, before domain validation runs.
func parsePredictRequest(r *http.Request) (api.PredictRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ParseRequest[api.PredictRequest](r)
	}
	return ParseRequestFormParams[api.PredictRequest](r)
}

func (s *BackendService) formatOutcome(outcome core.Outcome) string {
	confidence := outcome.ProbabilitySurvived
	verdict := "Survived"
	if !outcome.Survived {
		confidence = outcome.ProbabilityNotSurvived
		verdict = "Did not survive"
	}
	return s.printer.Sprintf("%s (%v confidence)", verdict, number.Percent(confidence, number.MaxFractionDigits(1)))
}

func (s *BackendService) GetMetrics(r *http.Request) (any, error) {
	metadata, err := s.service.GetMetadata()
	if err != nil {
		slog.Error("error getting model metadata", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "prediction service unavailable")
	}

	if len(metadata) == 0 {
		return nil, CodedErrorf(http.StatusNotFound, "model metadata not found")
	}

	return api.MetricsResponse{
		Status:               "success",
		Accuracy:             metadata.Value("accuracy"),
		Precision:            metadata.Value("precision"),
		Recall:               metadata.Value("recall"),
		F1Score:              metadata.Value("f1_score"),
		ConfusionMatrix:      metadata.Value("confusion_matrix"),
		ClassificationReport: metadata.Value("classification_report"),
	}, nil
}

func (s *BackendService) ListPredictions(r *http.Request) (any, error) {
	limit, err := QueryParamInt(r, "limit", defaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, CodedErrorf(http.StatusBadRequest, "limit must be positive, got %d", limit)
	}

	records, err := database.ListPredictions(r.Context(), s.db, limit)
	if err != nil {
		slog.Error("error listing predictions", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving prediction records")
	}

	response := make([]api.PredictionRecord, len(records))
	for i, record := range records {
		response[i] = api.PredictionRecord{
			Id:                  record.Id,
			CreationTime:        record.CreationTime,
			Pclass:              record.Pclass,
			Sex:                 record.Sex,
			Age:                 record.Age,
			Fare:                record.Fare,
			Embarked:            record.Embarked,
			Prediction:          record.Outcome,
			Survived:            record.Survived,
			ProbabilitySurvived: record.ProbabilitySurvived,
		}
	}
	return response, nil
}
