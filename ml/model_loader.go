package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"

	ModelLinear           = "linear"
	ModelDecisionTree     = "decision_tree"
	ModelRandomForest     = "random_forest"
	ModelGradientBoosting = "gradient_boosting"
)

type validator interface {
	validate() error
}

type decisionTreeArtifact struct {
	FeatureNames []string `json:"feature_names,omitempty"`
	RegressionTree
}

func (a *decisionTreeArtifact) validate() error {
	if err := a.RegressionTree.validate(); err != nil {
		return err
	}
	return checkFeatureNames(a.FeatureNames)
}

func LoadScaler(scalerType, path string) (Scaler, error) {
	switch scalerType {
	case ScalerStandard:
		scaler := &StandardScaler{}
		if err := loadArtifact(path, scaler); err != nil {
			return nil, err
		}
		return scaler, nil
	case ScalerMinMax:
		scaler := &MinMaxScaler{}
		if err := loadArtifact(path, scaler); err != nil {
			return nil, err
		}
		return scaler, nil
	default:
		return nil, fmt.Errorf("%w: scaler %q", ErrUnsupportedType, scalerType)
	}
}

func LoadModel(modelType, path string) (Regressor, error) {
	switch modelType {
	case ModelLinear:
		model := &LinearRegression{}
		if err := loadArtifact(path, model); err != nil {
			return nil, err
		}
		return model, nil
	case ModelDecisionTree:
		artifact := &decisionTreeArtifact{}
		if err := loadArtifact(path, artifact); err != nil {
			return nil, err
		}
		return &artifact.RegressionTree, nil
	case ModelRandomForest:
		model := &RandomForest{}
		if err := loadArtifact(path, model); err != nil {
			return nil, err
		}
		return model, nil
	case ModelGradientBoosting:
		model := &GradientBoosting{}
		if err := loadArtifact(path, model); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("%w: model %q", ErrUnsupportedType, modelType)
	}
}

func loadArtifact(path string, target validator) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	if err := decodeArtifact(file, target); err != nil {
		return fmt.Errorf("load artifact %s: %w", path, err)
	}
	return nil
}

// decodeArtifact reads one JSON artifact. Exporters on Windows tend to
// prepend a UTF-8 BOM, which encoding/json rejects, so it is dropped here.
func decodeArtifact(r io.Reader, target validator) error {
	reader := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyArtifact
		}
		return err
	}
	return target.validate()
}
