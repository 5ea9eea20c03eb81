package core_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"titanic-backend/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	label int64
	probs []float32
	err   error
	calls int
}

func (f *fakeClassifier) Predict(features []float32) (int64, []float32, error) {
	f.calls++
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.label, f.probs, nil
}

type fakeScaler struct {
	err error
}

func (f *fakeScaler) Transform(features []float64) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	scaled := make([]float32, len(features))
	for i, v := range features {
		scaled[i] = float32(v)
	}
	return scaled, nil
}

func validInput() core.PassengerInput {
	return core.PassengerInput{Pclass: 1, Sex: 1, Age: 25, Fare: 200, Embarked: 0}
}

func newTestService(classifier core.Classifier) *core.Service {
	return core.NewService(classifier, &fakeScaler{}, nil)
}

func TestValidateRequestAllValid(t *testing.T) {
	assert.Empty(t, core.ValidateRequest(validInput()))
}

func TestValidateRequestSingleField(t *testing.T) {
	tests := []struct {
		name    string
		input   core.PassengerInput
		message string
	}{
		{
			name:    "pclass out of range",
			input:   core.PassengerInput{Pclass: 4, Sex: 1, Age: 25, Fare: 100, Embarked: 0},
			message: "Pclass must be 1, 2, or 3. Got: 4",
		},
		{
			name:    "sex out of range",
			input:   core.PassengerInput{Pclass: 1, Sex: 5, Age: 25, Fare: 100, Embarked: 0},
			message: "Sex must be 0 (male) or 1 (female). Got: 5",
		},
		{
			name:    "age too large",
			input:   core.PassengerInput{Pclass: 1, Sex: 1, Age: 150, Fare: 100, Embarked: 0},
			message: "Age must be between 0 and 120. Got: 150",
		},
		{
			name:    "negative fare",
			input:   core.PassengerInput{Pclass: 1, Sex: 1, Age: 25, Fare: -50, Embarked: 0},
			message: "Fare must be non-negative. Got: -50",
		},
		{
			name:    "embarked out of range",
			input:   core.PassengerInput{Pclass: 1, Sex: 1, Age: 25, Fare: 100, Embarked: 3},
			message: "Embarked must be 0 (S), 1 (C), or 2 (Q). Got: 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := core.ValidateRequest(tt.input)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.message, errs[0])
		})
	}
}

func TestValidateRequestBoundaries(t *testing.T) {
	input := validInput()

	input.Age = 0
	assert.Empty(t, core.ValidateRequest(input))
	input.Age = 120
	assert.Empty(t, core.ValidateRequest(input))
	input.Age = 120.01
	assert.Len(t, core.ValidateRequest(input), 1)

	input = validInput()
	input.Fare = 0
	assert.Empty(t, core.ValidateRequest(input))

	input = validInput()
	input.Embarked = 2
	assert.Empty(t, core.ValidateRequest(input))
}

func TestValidateRequestNonFinite(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*core.PassengerInput)
		message string
	}{
		{
			name:    "NaN age",
			mutate:  func(p *core.PassengerInput) { p.Age = math.NaN() },
			message: "Age must be between 0 and 120. Got: NaN",
		},
		{
			name:    "positive infinite age",
			mutate:  func(p *core.PassengerInput) { p.Age = math.Inf(1) },
			message: "Age must be between 0 and 120. Got: +Inf",
		},
		{
			name:    "negative infinite age",
			mutate:  func(p *core.PassengerInput) { p.Age = math.Inf(-1) },
			message: "Age must be between 0 and 120. Got: -Inf",
		},
		{
			name:    "NaN fare",
			mutate:  func(p *core.PassengerInput) { p.Fare = math.NaN() },
			message: "Fare must be non-negative. Got: NaN",
		},
		{
			name:    "positive infinite fare",
			mutate:  func(p *core.PassengerInput) { p.Fare = math.Inf(1) },
			message: "Fare must be non-negative. Got: +Inf",
		},
		{
			name:    "negative infinite fare",
			mutate:  func(p *core.PassengerInput) { p.Fare = math.Inf(-1) },
			message: "Fare must be non-negative. Got: -Inf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			errs := core.ValidateRequest(input)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.message, errs[0])
		})
	}
}

func TestPredictNaNAgeSkipsModel(t *testing.T) {
	classifier := &fakeClassifier{label: 1, probs: []float32{0.5, 0.5}}
	service := newTestService(classifier)

	input := validInput()
	input.Age = math.NaN()

	result, err := service.Predict(input)
	require.NoError(t, err)
	assert.False(t, result.Ok())
	assert.Zero(t, classifier.calls, "model must not be invoked for non-finite input")
}

func TestValidateRequestAllInvalid(t *testing.T) {
	input := core.PassengerInput{Pclass: 0, Sex: 2, Age: -1, Fare: -1, Embarked: 9}

	errs := core.ValidateRequest(input)
	require.Len(t, errs, 5)

	// Message order follows the field order pclass, sex, age, fare, embarked.
	assert.Equal(t, []string{
		"Pclass must be 1, 2, or 3. Got: 0",
		"Sex must be 0 (male) or 1 (female). Got: 2",
		"Age must be between 0 and 120. Got: -1",
		"Fare must be non-negative. Got: -1",
		"Embarked must be 0 (S), 1 (C), or 2 (Q). Got: 9",
	}, errs)
}

func TestPredictSuccess(t *testing.T) {
	classifier := &fakeClassifier{label: 1, probs: []float32{0.3, 0.7}}
	service := newTestService(classifier)

	result, err := service.Predict(validInput())
	require.NoError(t, err)
	require.True(t, result.Ok())
	assert.Empty(t, result.Errors)

	outcome := result.Outcome
	assert.Equal(t, 1, outcome.Prediction)
	assert.True(t, outcome.Survived)
	assert.InDelta(t, 0.3, outcome.ProbabilityNotSurvived, 1e-6)
	assert.InDelta(t, 0.7, outcome.ProbabilitySurvived, 1e-6)
	assert.InDelta(t, 1.0, outcome.ProbabilityNotSurvived+outcome.ProbabilitySurvived, 1e-6)
}

func TestPredictNotSurvived(t *testing.T) {
	classifier := &fakeClassifier{label: 0, probs: []float32{0.8, 0.2}}
	service := newTestService(classifier)

	result, err := service.Predict(validInput())
	require.NoError(t, err)
	require.True(t, result.Ok())

	assert.Equal(t, 0, result.Outcome.Prediction)
	assert.False(t, result.Outcome.Survived)
	assert.InDelta(t, 1.0, result.Outcome.ProbabilityNotSurvived+result.Outcome.ProbabilitySurvived, 1e-6)
}

func TestPredictInvalidInputSkipsModel(t *testing.T) {
	classifier := &fakeClassifier{label: 1, probs: []float32{0.5, 0.5}}
	service := newTestService(classifier)

	input := validInput()
	input.Pclass = 4
	input.Fare = 100

	result, err := service.Predict(input)
	require.NoError(t, err)
	assert.False(t, result.Ok())
	assert.Equal(t, []string{"Pclass must be 1, 2, or 3. Got: 4"}, result.Errors)
	assert.Zero(t, classifier.calls, "model must not be invoked for invalid input")
}

func TestPredictDeterministic(t *testing.T) {
	service := newTestService(&fakeClassifier{label: 1, probs: []float32{0.25, 0.75}})

	first, err := service.Predict(validInput())
	require.NoError(t, err)
	second, err := service.Predict(validInput())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPredictInferenceError(t *testing.T) {
	service := newTestService(&fakeClassifier{err: fmt.Errorf("tensor shape mismatch")})

	result, err := service.Predict(validInput())
	require.NoError(t, err, "inference failures are returned as data, not errors")
	assert.False(t, result.Ok())
	assert.Equal(t, []string{"tensor shape mismatch"}, result.Errors)
}

func TestPredictScalerError(t *testing.T) {
	service := core.NewService(&fakeClassifier{label: 1, probs: []float32{0.5, 0.5}}, &fakeScaler{err: fmt.Errorf("scaler expects 5 features, got 4")}, nil)

	result, err := service.Predict(validInput())
	require.NoError(t, err)
	assert.False(t, result.Ok())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "scaler expects")
}

func TestPredictBadProbabilityShape(t *testing.T) {
	service := newTestService(&fakeClassifier{label: 1, probs: []float32{1}})

	result, err := service.Predict(validInput())
	require.NoError(t, err)
	assert.False(t, result.Ok())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected 2")
}

func TestPredictBeforeLoad(t *testing.T) {
	service := &core.Service{}

	_, err := service.Predict(validInput())
	assert.ErrorIs(t, err, core.ErrNotReady)

	_, err = service.GetMetadata()
	assert.ErrorIs(t, err, core.ErrNotReady)

	// Validation does not need the model and works before load.
	assert.Empty(t, service.Validate(validInput()))
}

func TestGetMetadata(t *testing.T) {
	service := core.NewService(&fakeClassifier{}, &fakeScaler{}, core.Metadata{"accuracy": 0.81})

	metadata, err := service.GetMetadata()
	require.NoError(t, err)
	assert.Equal(t, 0.81, metadata["accuracy"])
	assert.Equal(t, "N/A", metadata.Value("precision"))
}

func TestGetMetadataAbsent(t *testing.T) {
	service := newTestService(&fakeClassifier{})

	metadata, err := service.GetMetadata()
	require.NoError(t, err)
	assert.Empty(t, metadata)
}

func TestLoadMissingModel(t *testing.T) {
	service := &core.Service{}

	err := service.Load(t.TempDir(), "missing_metadata.json", "")
	require.Error(t, err)

	var loadErr *core.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Path, "model.onnx")
}
