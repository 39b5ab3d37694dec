package ml

import (
	"errors"
	"fmt"
)

var (
	ErrShapeMismatch   = errors.New("feature vector shape mismatch")
	ErrUnsupportedType = errors.New("unsupported artifact type")
	ErrFeatureOrder    = errors.New("artifact feature order does not match")
	ErrEmptyArtifact   = errors.New("artifact is empty")
)

// Scaler standardizes a raw feature vector column by column.
type Scaler interface {
	Transform(features []float64) ([]float64, error)
}

// Regressor maps a scaled feature vector to a one-element prediction.
type Regressor interface {
	Predict(features []float64) ([]float64, error)
}

func checkShape(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("%w: got %d values, want %d", ErrShapeMismatch, len(features), want)
	}
	return nil
}
