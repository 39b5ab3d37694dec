package ml

import (
	"errors"
	"fmt"
)

// RegressionTree is a fitted CART regressor stored as a flat node list.
// Node 0 is the root; children are referenced by index.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func (dt *RegressionTree) validate() error {
	if len(dt.Nodes) == 0 {
		return fmt.Errorf("%w: tree has no nodes", ErrEmptyArtifact)
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= NumFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		// children always come after their parent, which also rules out cycles
		if node.LeftChild <= i || node.LeftChild >= len(dt.Nodes) ||
			node.RightChild <= i || node.RightChild >= len(dt.Nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, node.LeftChild, node.RightChild)
		}
	}
	return nil
}

func (dt *RegressionTree) Predict(features []float64) ([]float64, error) {
	if err := checkShape(features, NumFeatures); err != nil {
		return nil, err
	}
	value, err := dt.evaluate(features)
	if err != nil {
		return nil, err
	}
	return []float64{value}, nil
}

func (dt *RegressionTree) evaluate(features []float64) (float64, error) {
	if len(dt.Nodes) == 0 {
		return 0, errors.New("model not trained")
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

// RandomForest averages the predictions of its trees.
type RandomForest struct {
	FeatureNames []string         `json:"feature_names,omitempty"`
	Trees        []RegressionTree `json:"trees"`
}

func (rf *RandomForest) validate() error {
	if len(rf.Trees) == 0 {
		return fmt.Errorf("%w: forest has no trees", ErrEmptyArtifact)
	}
	for i := range rf.Trees {
		if err := rf.Trees[i].validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return checkFeatureNames(rf.FeatureNames)
}

func (rf *RandomForest) Predict(features []float64) ([]float64, error) {
	if err := checkShape(features, NumFeatures); err != nil {
		return nil, err
	}
	if len(rf.Trees) == 0 {
		return nil, errors.New("model not trained")
	}
	sum := 0.0
	for i := range rf.Trees {
		value, err := rf.Trees[i].evaluate(features)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += value
	}
	return []float64{sum / float64(len(rf.Trees))}, nil
}

// GradientBoosting adds the shrunk tree outputs to the initial estimate.
type GradientBoosting struct {
	FeatureNames []string         `json:"feature_names,omitempty"`
	Init         float64          `json:"init"`
	LearningRate float64          `json:"learning_rate"`
	Trees        []RegressionTree `json:"trees"`
}

func (gb *GradientBoosting) validate() error {
	if len(gb.Trees) == 0 {
		return fmt.Errorf("%w: boosting model has no trees", ErrEmptyArtifact)
	}
	if gb.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %v", gb.LearningRate)
	}
	for i := range gb.Trees {
		if err := gb.Trees[i].validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return checkFeatureNames(gb.FeatureNames)
}

func (gb *GradientBoosting) Predict(features []float64) ([]float64, error) {
	if err := checkShape(features, NumFeatures); err != nil {
		return nil, err
	}
	result := gb.Init
	for i := range gb.Trees {
		value, err := gb.Trees[i].evaluate(features)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		result += gb.LearningRate * value
	}
	return []float64{result}, nil
}
