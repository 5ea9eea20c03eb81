package core

// Classifier is a trained binary survival model. Predict returns the
// predicted label (0 or 1) and the class probability pair [p_not_survived,
// p_survived] for a single scaled feature vector.
type Classifier interface {
	Predict(features []float32) (int64, []float32, error)
}

// Scaler normalizes a raw feature vector into the numeric range the
// classifier was trained on.
type Scaler interface {
	Transform(features []float64) ([]float32, error)
}

// PassengerInput holds the five raw fields of a prediction request.
type PassengerInput struct {
	Pclass   int
	Sex      int
	Age      float64
	Fare     float64
	Embarked int
}

// Features returns the input as the ordered feature vector the model
// consumes: [pclass, sex, age, fare, embarked].
func (p PassengerInput) Features() []float64 {
	return []float64{float64(p.Pclass), float64(p.Sex), p.Age, p.Fare, float64(p.Embarked)}
}

// Outcome is a successful prediction. The two probabilities sum to 1.
type Outcome struct {
	Prediction             int     `json:"prediction"`
	Survived               bool    `json:"survived"`
	ProbabilityNotSurvived float64 `json:"probability_not_survived"`
	ProbabilitySurvived    float64 `json:"probability_survived"`
}

// Result is either a successful outcome or a list of error messages, never
// both. Ok reports which variant it is.
type Result struct {
	Outcome *Outcome
	Errors  []string
}

func (r Result) Ok() bool {
	return r.Outcome != nil
}
