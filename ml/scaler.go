package ml

import "fmt"

// StandardScaler applies (x - mean) / scale per column.
type StandardScaler struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 || len(s.Scale) == 0 {
		return fmt.Errorf("%w: standard scaler needs mean and scale", ErrEmptyArtifact)
	}
	if len(s.Mean) != NumFeatures || len(s.Scale) != NumFeatures {
		return fmt.Errorf("%w: standard scaler has %d means and %d scales, want %d",
			ErrShapeMismatch, len(s.Mean), len(s.Scale), NumFeatures)
	}
	return checkFeatureNames(s.FeatureNames)
}

func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if err := checkShape(features, len(s.Mean)); err != nil {
		return nil, err
	}
	result := make([]float64, len(features))
	for i, value := range features {
		scale := s.Scale[i]
		// a constant column is fitted with scale 0 and left centred only
		if scale == 0 {
			scale = 1
		}
		result[i] = (value - s.Mean[i]) / scale
	}
	return result, nil
}

// MinMaxScaler maps each column onto [0, 1] using the fitted bounds.
type MinMaxScaler struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Min          []float64 `json:"min"`
	Max          []float64 `json:"max"`
}

func (s *MinMaxScaler) validate() error {
	if len(s.Min) == 0 || len(s.Max) == 0 {
		return fmt.Errorf("%w: minmax scaler needs min and max", ErrEmptyArtifact)
	}
	if len(s.Min) != NumFeatures || len(s.Max) != NumFeatures {
		return fmt.Errorf("%w: minmax scaler has %d mins and %d maxs, want %d",
			ErrShapeMismatch, len(s.Min), len(s.Max), NumFeatures)
	}
	return checkFeatureNames(s.FeatureNames)
}

func (s *MinMaxScaler) Transform(features []float64) ([]float64, error) {
	if err := checkShape(features, len(s.Min)); err != nil {
		return nil, err
	}
	return NormalizeVector(features, s.Min, s.Max)
}

func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}

func NormalizeVector(values []float64, mins []float64, maxs []float64) ([]float64, error) {
	if len(values) != len(mins) || len(values) != len(maxs) {
		return nil, fmt.Errorf("%w: values/mins/maxs length mismatch", ErrShapeMismatch)
	}
	result := make([]float64, len(values))
	for i := range values {
		result[i] = NormalizeFeature(values[i], mins[i], maxs[i])
	}
	return result, nil
}
