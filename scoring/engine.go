package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/curious-broccoli/ufo-hackathon/dataset"
)

// epsilon clips normalized probabilities away from 0 and 1 before the log,
// matching the Keras CategoricalCrossentropy convention.
const epsilon = 1e-7

// ErrorKind classifies why a scoring run could not be computed.
type ErrorKind string

const (
	ErrKindNoPairs           ErrorKind = "no_matched_pairs"
	ErrKindBadShape          ErrorKind = "bad_prediction_shape"
	ErrKindBadValue          ErrorKind = "bad_prediction_value"
	ErrKindMissingPrediction ErrorKind = "missing_prediction"
)

// ComputationError reports that the submitted predictions could not be
// scored. The gateway intentionally does not expose its message to callers.
type ComputationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("scoring failed (%s): %s", e.Kind, e.Message)
}

// Result is the outcome of scoring one submission against the full
// evaluation set: RightPredictions + WrongPredictions always equals the
// number of ground-truth labels.
type Result struct {
	RightPredictions int
	WrongPredictions int
	CCE              float64
}

// Engine scores prediction submissions against an immutable dataset. It
// keeps no state between calls and is safe for concurrent use.
type Engine struct {
	ds              *dataset.Dataset
	requireComplete bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRequireComplete makes the engine fail a submission that lacks a
// prediction for any evaluation file, instead of silently counting the gap
// as a wrong prediction.
func WithRequireComplete(require bool) Option {
	return func(e *Engine) {
		e.requireComplete = require
	}
}

func NewEngine(ds *dataset.Dataset, opts ...Option) *Engine {
	e := &Engine{ds: ds}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score matches the submitted prediction vectors against the evaluation set
// and returns the correctness counts and the averaged categorical
// cross-entropy over the matched pairs.
//
// The keys of predictions are normalized to filename stems, so submitters
// may keep the image extension ("123.jpg") or drop it ("123"). Every file of
// the evaluation set without a (non-empty) prediction is excluded from the
// loss and counted as wrong, unless the engine requires complete
// submissions.
func (e *Engine) Score(predictions map[string][]float64) (Result, error) {
	byStem := make(map[string][]float64, len(predictions))
	for key, vector := range predictions {
		byStem[dataset.Stem(key)] = vector
	}

	// Fixed iteration order keeps the result bit-identical across calls.
	fileNames := make([]string, 0, len(e.ds.Labels))
	for fileName := range e.ds.Labels {
		fileNames = append(fileNames, fileName)
	}
	sort.Strings(fileNames)

	depth := e.ds.CategoryCount()
	right := 0
	var yTrue, yPred [][]float64

	for _, fileName := range fileNames {
		labelIndex := e.ds.Labels[fileName]
		predicted, ok := byStem[fileName]
		if !ok || len(predicted) == 0 {
			if e.requireComplete {
				return Result{}, &ComputationError{
					Kind:    ErrKindMissingPrediction,
					Message: fmt.Sprintf("no prediction for file %q", fileName),
				}
			}
			continue
		}
		if len(predicted) != depth {
			return Result{}, &ComputationError{
				Kind:    ErrKindBadShape,
				Message: fmt.Sprintf("prediction for file %q has %d values, want %d", fileName, len(predicted), depth),
			}
		}

		yPred = append(yPred, predicted)
		yTrue = append(yTrue, e.ds.OneHot[labelIndex])

		if argmax(predicted) == labelIndex {
			right++
		}
	}

	if len(yPred) == 0 {
		return Result{}, &ComputationError{
			Kind:    ErrKindNoPairs,
			Message: "no submitted prediction matches the evaluation set",
		}
	}

	cce, err := categoricalCrossentropy(yTrue, yPred)
	if err != nil {
		return Result{}, err
	}

	return Result{
		RightPredictions: right,
		WrongPredictions: e.ds.LabelCount() - right,
		CCE:              cce,
	}, nil
}

// argmax returns the index of the largest value, ties broken by the lowest
// index.
func argmax(vector []float64) int {
	best := 0
	for i := 1; i < len(vector); i++ {
		if vector[i] > vector[best] {
			best = i
		}
	}
	return best
}

// categoricalCrossentropy averages -sum(t*ln(p)) over all pairs. Each
// predicted vector is normalized to a probability distribution and clipped
// to [epsilon, 1-epsilon] first.
func categoricalCrossentropy(yTrue, yPred [][]float64) (float64, error) {
	var total float64
	for i, predicted := range yPred {
		sum := 0.0
		for _, v := range predicted {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return 0, &ComputationError{
					Kind:    ErrKindBadValue,
					Message: fmt.Sprintf("prediction %d holds a negative or non-finite value", i),
				}
			}
			sum += v
		}
		if sum <= 0 {
			return 0, &ComputationError{
				Kind:    ErrKindBadValue,
				Message: fmt.Sprintf("prediction %d sums to zero", i),
			}
		}

		var loss float64
		for c, t := range yTrue[i] {
			if t == 0 {
				continue
			}
			p := clip(predicted[c]/sum, epsilon, 1-epsilon)
			loss -= t * math.Log(p)
		}
		total += loss
	}
	return total / float64(len(yPred)), nil
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
