package ml

import "fmt"

// LinearRegression is intercept + coef·x.
type LinearRegression struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
}

func (lr *LinearRegression) validate() error {
	if len(lr.Coef) == 0 {
		return fmt.Errorf("%w: linear model has no coefficients", ErrEmptyArtifact)
	}
	if len(lr.Coef) != NumFeatures {
		return fmt.Errorf("%w: linear model has %d coefficients, want %d", ErrShapeMismatch, len(lr.Coef), NumFeatures)
	}
	return checkFeatureNames(lr.FeatureNames)
}

func (lr *LinearRegression) Predict(features []float64) ([]float64, error) {
	if err := checkShape(features, len(lr.Coef)); err != nil {
		return nil, err
	}
	result := lr.Intercept
	for i, value := range features {
		result += lr.Coef[i] * value
	}
	return []float64{result}, nil
}
