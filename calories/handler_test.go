package calories

import (
	"context"
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"calorieburn/ml"
	"calorieburn/monitoring"
)

type identityScaler struct {
	calls int
	err   error
}

func (s *identityScaler) Transform(features []float64) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]float64(nil), features...), nil
}

type constantModel struct {
	out  []float64
	err  error
	seen [][]float64
}

func (m *constantModel) Predict(features []float64) ([]float64, error) {
	m.seen = append(m.seen, features)
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

type recordingSink struct {
	shown []string
}

func (s *recordingSink) Show(result string) {
	s.shown = append(s.shown, result)
}

func newTestHandler(t *testing.T, scaler ml.Scaler, model ml.Regressor, memo int) *Handler {
	t.Helper()
	h, err := NewHandler(scaler, model, Options{
		MemoSize: memo,
		Metrics:  monitoring.NewMetrics(prometheus.NewRegistry()),
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestSubmitDefaultsEndToEnd(t *testing.T) {
	model := &constantModel{out: []float64{500.0}}
	h := newTestHandler(t, &identityScaler{}, model, 0)
	sink := &recordingSink{}

	result, err := h.Submit(context.Background(), FormValues(nil), sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"500.00 kcal burned"}, sink.shown)
	assert.Equal(t, 500.0, result.Calories)
	assert.Equal(t, DefaultInputs(), result.Inputs)
	require.Len(t, model.seen, 1)
	assert.Equal(t, []float64{0, 25, 170, 90, 37.0, 22.0, 8000, 7.0, 2.5, 20.0, 70, 60}, model.seen[0])
}

func TestSubmitModelFailureIsNotShown(t *testing.T) {
	boom := errors.New("boom")
	h := newTestHandler(t, &identityScaler{}, &constantModel{err: boom}, 0)
	sink := &recordingSink{}

	_, err := h.Submit(context.Background(), FormValues(nil), sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var inferr *InferenceError
	require.ErrorAs(t, err, &inferr)
	assert.Equal(t, StagePredict, inferr.Stage)
	assert.Empty(t, sink.shown)
}

func TestSubmitScalerFailureSkipsModel(t *testing.T) {
	model := &constantModel{out: []float64{1}}
	h := newTestHandler(t, &identityScaler{err: ml.ErrShapeMismatch}, model, 0)
	sink := &recordingSink{}

	_, err := h.Submit(context.Background(), FormValues(nil), sink)

	var inferr *InferenceError
	require.ErrorAs(t, err, &inferr)
	assert.Equal(t, StageTransform, inferr.Stage)
	assert.ErrorIs(t, err, ml.ErrShapeMismatch)
	assert.Empty(t, model.seen)
	assert.Empty(t, sink.shown)
}

func TestPredictRejectsUnusableOutput(t *testing.T) {
	for name, out := range map[string][]float64{
		"empty": {},
		"nan":   {math.NaN()},
		"inf":   {math.Inf(1)},
	} {
		t.Run(name, func(t *testing.T) {
			h := newTestHandler(t, &identityScaler{}, &constantModel{out: out}, 0)
			_, err := h.Predict(context.Background(), Encode(DefaultInputs()))
			var inferr *InferenceError
			require.ErrorAs(t, err, &inferr)
			assert.Equal(t, StagePredict, inferr.Stage)
		})
	}
}

func TestPredictUsesFirstOutput(t *testing.T) {
	h := newTestHandler(t, &identityScaler{}, &constantModel{out: []float64{321.456, 1}}, 0)
	value, err := h.Predict(context.Background(), Encode(DefaultInputs()))
	require.NoError(t, err)
	assert.Equal(t, 321.456, value)
}

func TestPredictMemo(t *testing.T) {
	scaler := &identityScaler{}
	h := newTestHandler(t, scaler, &constantModel{out: []float64{410}}, 4)

	vec := Encode(DefaultInputs())
	for i := 0; i < 3; i++ {
		value, err := h.Predict(context.Background(), vec)
		require.NoError(t, err)
		assert.Equal(t, 410.0, value)
	}
	assert.Equal(t, 1, scaler.calls)

	other := Encode(ReadInputs(FormValues(url.Values{"age": {"60"}})))
	_, err := h.Predict(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, scaler.calls)
}

func TestPredictFailuresAreNotMemoized(t *testing.T) {
	scaler := &identityScaler{}
	model := &constantModel{err: errors.New("transient")}
	h := newTestHandler(t, scaler, model, 4)

	vec := Encode(DefaultInputs())
	_, err := h.Predict(context.Background(), vec)
	require.Error(t, err)

	model.err = nil
	model.out = []float64{250}
	value, err := h.Predict(context.Background(), vec)
	require.NoError(t, err)
	assert.Equal(t, 250.0, value)
}

func TestPredictCancelledContext(t *testing.T) {
	scaler := &identityScaler{}
	h := newTestHandler(t, scaler, &constantModel{out: []float64{1}}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Predict(ctx, Encode(DefaultInputs()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, scaler.calls)
}

func TestNewHandlerRequiresArtifacts(t *testing.T) {
	_, err := NewHandler(nil, &constantModel{}, Options{})
	assert.Error(t, err)
	_, err = NewHandler(&identityScaler{}, nil, Options{})
	assert.Error(t, err)
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "500.00 kcal burned", FormatResult(500))
	assert.Equal(t, "1234.57 kcal burned", FormatResult(1234.567))
	assert.Equal(t, "-3.10 kcal burned", FormatResult(-3.1))
}

func TestSubmitWithRealArtifacts(t *testing.T) {
	scaler := &ml.StandardScaler{
		Mean:  []float64{0, 25, 170, 90, 37, 22, 8000, 7, 2.5, 20, 70, 60},
		Scale: []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	}
	model := &ml.LinearRegression{
		Coef:      []float64{0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 1},
		Intercept: 300,
	}
	h := newTestHandler(t, scaler, model, 0)

	var shown string
	_, err := h.Submit(context.Background(), FormValues(url.Values{
		"workout_heart_rate": {"100"},
		"active_minutes":     {"70"},
	}), ResultSinkFunc(func(s string) { shown = s }))
	require.NoError(t, err)
	assert.Equal(t, "330.00 kcal burned", shown)
}
