package srs

import (
	"errors"
	"fmt"
	"time"
)

// WeightCount is the number of FSRS v6 model weights.
const WeightCount = 21

// Defaults applied when a ParamsConfig field is left at its zero value.
const (
	DefaultDesiredRetention = 0.9
	DefaultMaximumInterval  = 36500
)

// ErrInvalidParams is returned when scheduler parameters are out of range.
var ErrInvalidParams = errors.New("invalid scheduler parameters")

// DefaultWeights are the published FSRS v6 default weights.
var DefaultWeights = [WeightCount]float64{
	0.212, 1.2931, 2.3065, 8.2956, // w0..w3   seed stability per rating
	6.4133, 0.8334, 3.0194, 0.001, // w4..w7   difficulty seed, delta, mean reversion
	1.8722, 0.1666, 0.796, 1.4835, // w8..w11  recall stability, forget base
	0.0614, 0.2629, 1.6483, 0.6014, // w12..w15 forget stability, hard penalty
	1.8729, 0.5425, 0.0912, 0.0658, // w16..w19 easy bonus, short-term stability
	0.1542, // w20 forgetting-curve decay
}

var (
	weightLowerBounds = [WeightCount]float64{
		0.001, 0.001, 0.001, 0.001,
		1.0, 0.001, 0.001, 0.001,
		0.0, 0.0, 0.001, 0.001,
		0.001, 0.001, 0.0, 0.0,
		1.0, 0.0, 0.0, 0.0,
		0.1,
	}
	weightUpperBounds = [WeightCount]float64{
		100.0, 100.0, 100.0, 100.0,
		10.0, 4.0, 4.0, 0.75,
		4.5, 0.8, 3.5, 5.0,
		0.25, 0.9, 4.0, 1.0,
		6.0, 2.0, 2.0, 0.8,
		0.8,
	}
)

// DefaultLearningSteps and DefaultRelearningSteps are the intra-day delays
// used before a card (re)enters the Review state.
var (
	DefaultLearningSteps   = []time.Duration{time.Minute, 10 * time.Minute}
	DefaultRelearningSteps = []time.Duration{10 * time.Minute}
)

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Model weights
	Weights [WeightCount]float64

	// Target probability of recall at the due date
	DesiredRetention float64

	// Upper bound on a Review interval, in days
	MaximumInterval int

	// Intra-day delays for new and lapsed cards
	LearningSteps   []time.Duration
	RelearningSteps []time.Duration
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	Weights          []float64
	DesiredRetention float64
	MaximumInterval  int
	LearningSteps    []time.Duration
	RelearningSteps  []time.Duration
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Weights:          DefaultWeights,
		DesiredRetention: DefaultDesiredRetention,
		MaximumInterval:  DefaultMaximumInterval,
		LearningSteps:    append([]time.Duration(nil), DefaultLearningSteps...),
		RelearningSteps:  append([]time.Duration(nil), DefaultRelearningSteps...),
	}
}

// NewParams creates a new Params instance with custom configuration and
// validates the result.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if len(config.Weights) > 0 {
		if len(config.Weights) != WeightCount {
			return nil, fmt.Errorf("%w: expected %d weights, got %d",
				ErrInvalidParams, WeightCount, len(config.Weights))
		}
		copy(params.Weights[:], config.Weights)
	}
	if config.DesiredRetention != 0 {
		params.DesiredRetention = config.DesiredRetention
	}
	if config.MaximumInterval != 0 {
		params.MaximumInterval = config.MaximumInterval
	}
	if len(config.LearningSteps) > 0 {
		params.LearningSteps = append([]time.Duration(nil), config.LearningSteps...)
	}
	if len(config.RelearningSteps) > 0 {
		params.RelearningSteps = append([]time.Duration(nil), config.RelearningSteps...)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks every weight against its bounds and the remaining
// settings for usable values.
func (p *Params) Validate() error {
	for i, w := range p.Weights {
		if w < weightLowerBounds[i] || w > weightUpperBounds[i] {
			return fmt.Errorf("%w: w%d = %v outside [%v, %v]",
				ErrInvalidParams, i, w, weightLowerBounds[i], weightUpperBounds[i])
		}
	}

	if p.DesiredRetention <= 0 || p.DesiredRetention >= 1 {
		return fmt.Errorf("%w: desired retention %v must be in (0, 1)", ErrInvalidParams, p.DesiredRetention)
	}

	if p.MaximumInterval < 1 {
		return fmt.Errorf("%w: maximum interval %d must be at least 1 day", ErrInvalidParams, p.MaximumInterval)
	}

	if err := validateSteps("learning", p.LearningSteps); err != nil {
		return err
	}
	return validateSteps("relearning", p.RelearningSteps)
}

func validateSteps(kind string, steps []time.Duration) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: at least one %s step is required", ErrInvalidParams, kind)
	}
	for i, step := range steps {
		if step <= 0 {
			return fmt.Errorf("%w: %s step %d must be positive", ErrInvalidParams, kind, i)
		}
	}
	return nil
}
