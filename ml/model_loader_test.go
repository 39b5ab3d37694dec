package ml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linearArtifact = `{
  "feature_names": ["gender", "age", "height_cm", "workout_heart_rate", "body_temp_c", "bmi",
                    "steps", "sleep_hours", "water_liters", "body_fat_pct", "resting_heart_rate", "active_minutes"],
  "coef": [1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2],
  "intercept": 100
}`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadModelLinear(t *testing.T) {
	path := writeArtifact(t, "model.json", linearArtifact)

	model, err := LoadModel(ModelLinear, path)
	require.NoError(t, err)

	features := make([]float64, NumFeatures)
	features[0] = 1
	features[11] = 60
	out, err := model.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, []float64{221}, out)
}

func TestLoadModelStripsBOM(t *testing.T) {
	path := writeArtifact(t, "model.json", "\ufeff"+linearArtifact)

	_, err := LoadModel(ModelLinear, path)
	assert.NoError(t, err)
}

func TestLoadModelRejectsReorderedColumns(t *testing.T) {
	reordered := strings.Replace(linearArtifact, `"body_temp_c", "bmi"`, `"bmi", "body_temp_c"`, 1)
	path := writeArtifact(t, "model.json", reordered)

	_, err := LoadModel(ModelLinear, path)
	assert.ErrorIs(t, err, ErrFeatureOrder)
}

func TestLoadModelDecisionTree(t *testing.T) {
	path := writeArtifact(t, "tree.json", `{"nodes": [
		{"feature_idx": 1, "threshold": 30, "left_child": 1, "right_child": 2},
		{"is_leaf": true, "value": 400, "left_child": -1, "right_child": -1},
		{"is_leaf": true, "value": 250, "left_child": -1, "right_child": -1}
	]}`)

	model, err := LoadModel(ModelDecisionTree, path)
	require.NoError(t, err)

	out, err := model.Predict(vectorWithAge(50))
	require.NoError(t, err)
	assert.Equal(t, []float64{250}, out)
}

func TestLoadModelErrors(t *testing.T) {
	_, err := LoadModel("svm", "unused.json")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = LoadModel(ModelLinear, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadModel(ModelLinear, writeArtifact(t, "empty.json", ""))
	assert.ErrorIs(t, err, ErrEmptyArtifact)

	_, err = LoadModel(ModelLinear, writeArtifact(t, "short.json", `{"coef": [1, 2], "intercept": 0}`))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = LoadModel(ModelRandomForest, writeArtifact(t, "forest.json", `{"trees": []}`))
	assert.ErrorIs(t, err, ErrEmptyArtifact)

	_, err = LoadModel(ModelLinear, writeArtifact(t, "corrupt.json", `{"coef": [1,`))
	assert.Error(t, err)
}

func TestLoadScaler(t *testing.T) {
	path := writeArtifact(t, "scaler.json", `{
		"mean":  [0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0],
		"scale": [1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1]
	}`)

	scaler, err := LoadScaler(ScalerStandard, path)
	require.NoError(t, err)

	out, err := scaler.Transform(constant(3))
	require.NoError(t, err)
	assert.Equal(t, constant(3), out)

	_, err = LoadScaler(ScalerMinMax, path)
	assert.ErrorIs(t, err, ErrEmptyArtifact, "a standard scaler file has no min/max")

	_, err = LoadScaler("robust", path)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestShippedArtifactsLoad(t *testing.T) {
	scaler, err := LoadScaler(ScalerStandard, filepath.Join("..", "artifacts", "scaler.json"))
	require.NoError(t, err)
	model, err := LoadModel(ModelLinear, filepath.Join("..", "artifacts", "calories_model.json"))
	require.NoError(t, err)

	defaults := []float64{0, 25, 170, 90, 37.0, 22.0, 8000, 7.0, 2.5, 20.0, 70, 60}
	scaled, err := scaler.Transform(defaults)
	require.NoError(t, err)
	out, err := model.Predict(scaled)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Greater(t, out[0], 0.0)
}
