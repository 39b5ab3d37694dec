// Package calories turns the form inputs into one calorie prediction.
package calories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"calorieburn/ml"
	"calorieburn/monitoring"
)

const (
	StageTransform = "transform"
	StagePredict   = "predict"
)

var ErrNonFinite = errors.New("model returned a non-finite value")

// InferenceError is a failed scaler or model call for one submission.
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// ResultSink displays one formatted result.
type ResultSink interface {
	Show(result string)
}

// ResultSinkFunc adapts a function to ResultSink.
type ResultSinkFunc func(result string)

func (f ResultSinkFunc) Show(result string) {
	f(result)
}

// FormatResult renders a prediction the way the result box shows it.
func FormatResult(value float64) string {
	return fmt.Sprintf("%.2f kcal burned", value)
}

// Result is one completed submission.
type Result struct {
	Inputs   Inputs        `json:"inputs"`
	Features FeatureVector `json:"features"`
	Calories float64       `json:"calories"`
	Text     string        `json:"result"`
}

type Options struct {
	// MemoSize bounds the prediction memo; zero disables it.
	MemoSize int
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger
}

// Handler owns the loaded scaler and model. Both are read-only after
// construction, so one Handler serves any number of submissions.
type Handler struct {
	scaler  ml.Scaler
	model   ml.Regressor
	memo    *lru.Cache[FeatureVector, float64]
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewHandler(scaler ml.Scaler, model ml.Regressor, opts Options) (*Handler, error) {
	if scaler == nil {
		return nil, errors.New("scaler is required")
	}
	if model == nil {
		return nil, errors.New("model is required")
	}
	h := &Handler{
		scaler:  scaler,
		model:   model,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if opts.MemoSize > 0 {
		memo, err := lru.New[FeatureVector, float64](opts.MemoSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction memo: %w", err)
		}
		h.memo = memo
	}
	return h, nil
}

// Predict scales vec and runs the model, returning its single output.
func (h *Handler) Predict(ctx context.Context, vec FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if h.memo != nil {
		if value, ok := h.memo.Get(vec); ok {
			h.metrics.MemoHit()
			return value, nil
		}
		h.metrics.MemoMiss()
	}

	start := time.Now()
	value, err := h.infer(vec)
	elapsed := time.Since(start)
	if err != nil {
		var inferr *InferenceError
		stage := ""
		if errors.As(err, &inferr) {
			stage = inferr.Stage
		}
		h.metrics.ObserveFailure(stage, elapsed)
		return 0, err
	}
	h.metrics.ObservePrediction(value, elapsed)

	if h.memo != nil {
		h.memo.Add(vec, value)
	}
	return value, nil
}

func (h *Handler) infer(vec FeatureVector) (float64, error) {
	scaled, err := h.scaler.Transform(vec[:])
	if err != nil {
		return 0, &InferenceError{Stage: StageTransform, Err: err}
	}
	out, err := h.model.Predict(scaled)
	if err != nil {
		return 0, &InferenceError{Stage: StagePredict, Err: err}
	}
	if len(out) == 0 {
		return 0, &InferenceError{Stage: StagePredict, Err: fmt.Errorf("%w: empty prediction", ml.ErrShapeMismatch)}
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return 0, &InferenceError{Stage: StagePredict, Err: ErrNonFinite}
	}
	return out[0], nil
}

// Submit reads the form from src, predicts, and shows the result on sink.
// On failure sink is left untouched and the error is returned.
func (h *Handler) Submit(ctx context.Context, src InputSource, sink ResultSink) (Result, error) {
	inputs := ReadInputs(src)
	features := Encode(inputs)

	value, err := h.Predict(ctx, features)
	if err != nil {
		h.logger.Error("prediction failed", zap.Error(err), zap.Float64s("features", features[:]))
		return Result{}, err
	}

	result := Result{
		Inputs:   inputs,
		Features: features,
		Calories: value,
		Text:     FormatResult(value),
	}
	h.logger.Debug("prediction", zap.Float64("calories", value))
	if sink != nil {
		sink.Show(result.Text)
	}
	return result, nil
}
