package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// ErrNotReady is returned when a prediction is requested before the model
// artifacts have been loaded.
var ErrNotReady = errors.New("inference service not loaded")

// LoadError indicates that the model artifacts could not be deserialized.
// It is fatal: the service cannot serve predictions without a model.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading model artifacts from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Service owns the deserialized model artifacts and metadata for the process
// lifetime. It validates prediction requests against the domains the model
// was trained on before running inference. Once loaded, the artifacts are
// read-only and predictions can run concurrently.
type Service struct {
	mu    sync.Mutex
	ready atomic.Bool

	classifier Classifier
	scaler     Scaler
	metadata   Metadata
}

// NewService creates a ready service from already-loaded artifacts.
func NewService(classifier Classifier, scaler Scaler, metadata Metadata) *Service {
	s := &Service{classifier: classifier, scaler: scaler, metadata: metadata}
	if s.metadata == nil {
		s.metadata = Metadata{}
	}
	s.ready.Store(true)
	return s
}

// loadArtifacts deserializes the classifier and scaler from modelDir
// (model.onnx and scaler.json) and the evaluation metadata from
// metadataPath. A missing metadata file is not an error, the metadata
// defaults to an empty mapping.
var loadArtifacts = func(modelDir, metadataPath, onnxLibPath string) (Classifier, Scaler, Metadata, error) {
	modelPath := filepath.Join(modelDir, "model.onnx")
	classifier, err := LoadOnnxClassifier(modelPath, onnxLibPath)
	if err != nil {
		return nil, nil, nil, &LoadError{Path: modelPath, Err: err}
	}

	scalerPath := filepath.Join(modelDir, "scaler.json")
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		classifier.Release()
		return nil, nil, nil, &LoadError{Path: scalerPath, Err: err}
	}

	metadata, err := LoadMetadata(metadataPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("model metadata not found, metrics will be unavailable", "path", metadataPath)
		metadata = Metadata{}
	} else if err != nil {
		classifier.Release()
		return nil, nil, nil, &LoadError{Path: metadataPath, Err: err}
	}

	return classifier, scaler, metadata, nil
}

// Load deserializes the model artifacts. It runs at most once; concurrent
// callers are serialized and later calls are no-ops.
func (s *Service) Load(modelDir, metadataPath, onnxLibPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready.Load() {
		return nil
	}

	classifier, scaler, metadata, err := loadArtifacts(modelDir, metadataPath, onnxLibPath)
	if err != nil {
		return err
	}

	s.classifier = classifier
	s.scaler = scaler
	s.metadata = metadata
	s.ready.Store(true)

	slog.Info("model artifacts loaded", "model_dir", modelDir, "accuracy", metadata.Value("accuracy"))
	return nil
}

// ValidateRequest checks the five fields against the domains seen at
// training time. All checks run, one message per failing field, in the fixed
// order pclass, sex, age, fare, embarked. An empty slice means valid.
func ValidateRequest(p PassengerInput) []string {
	var errs []string

	if p.Pclass < 1 || p.Pclass > 3 {
		errs = append(errs, fmt.Sprintf("Pclass must be 1, 2, or 3. Got: %d", p.Pclass))
	}
	if p.Sex != 0 && p.Sex != 1 {
		errs = append(errs, fmt.Sprintf("Sex must be 0 (male) or 1 (female). Got: %d", p.Sex))
	}
	// NaN compares false against every bound, so it must be ruled out
	// explicitly or it would reach the model.
	if math.IsNaN(p.Age) || p.Age < 0 || p.Age > 120 {
		errs = append(errs, fmt.Sprintf("Age must be between 0 and 120. Got: %v", p.Age))
	}
	if math.IsNaN(p.Fare) || math.IsInf(p.Fare, 0) || p.Fare < 0 {
		errs = append(errs, fmt.Sprintf("Fare must be non-negative. Got: %v", p.Fare))
	}
	if p.Embarked < 0 || p.Embarked > 2 {
		errs = append(errs, fmt.Sprintf("Embarked must be 0 (S), 1 (C), or 2 (Q). Got: %d", p.Embarked))
	}

	return errs
}

func (s *Service) Validate(p PassengerInput) []string {
	return ValidateRequest(p)
}

// Predict validates the input and runs inference. Validation and inference
// failures are returned inside the Result, not as an error; the only error
// condition is calling Predict before Load.
func (s *Service) Predict(p PassengerInput) (Result, error) {
	if !s.ready.Load() {
		return Result{}, ErrNotReady
	}

	if errs := ValidateRequest(p); len(errs) > 0 {
		return Result{Errors: errs}, nil
	}

	scaled, err := s.scaler.Transform(p.Features())
	if err != nil {
		return Result{Errors: []string{err.Error()}}, nil
	}

	label, probs, err := s.classifier.Predict(scaled)
	if err != nil {
		return Result{Errors: []string{err.Error()}}, nil
	}
	if len(probs) != 2 {
		return Result{Errors: []string{fmt.Sprintf("model returned %d class probabilities, expected 2", len(probs))}}, nil
	}

	return Result{Outcome: &Outcome{
		Prediction:             int(label),
		Survived:               label == 1,
		ProbabilityNotSurvived: float64(probs[0]),
		ProbabilitySurvived:    float64(probs[1]),
	}}, nil
}

// GetMetadata returns the cached evaluation metadata. The mapping is empty
// when no metadata file was present at load time.
func (s *Service) GetMetadata() (Metadata, error) {
	if !s.ready.Load() {
		return nil, ErrNotReady
	}
	return s.metadata, nil
}
