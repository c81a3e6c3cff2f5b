package retry

import (
	"math"
	"time"
)

// BackoffPolicy selects how the retry delay grows with the attempt number.
type BackoffPolicy string

const (
	// PolicyFixed repeats the initial delay for every attempt.
	PolicyFixed BackoffPolicy = "fixed"

	// PolicyExponential grows the delay as initial * factor^attempt.
	PolicyExponential BackoffPolicy = "exponential"

	// PolicyLinear grows the delay as initial + step*attempt.
	PolicyLinear BackoffPolicy = "linear"
)

// Backoff computes retry delays. The zero value behaves like a fixed
// policy.
type Backoff struct {
	// Policy selects the growth curve.
	Policy BackoffPolicy `yaml:"policy"`

	// Factor is the exponential growth multiplier. Ignored by other
	// policies.
	Factor float64 `yaml:"factor,omitempty"`

	// Step is the linear growth increment per attempt. Ignored by other
	// policies.
	Step time.Duration `yaml:"step,omitempty"`
}

// FixedBackoff repeats the initial delay.
func FixedBackoff() Backoff {
	return Backoff{Policy: PolicyFixed}
}

// ExponentialBackoff multiplies the initial delay by factor^attempt.
func ExponentialBackoff(factor float64) Backoff {
	return Backoff{Policy: PolicyExponential, Factor: factor}
}

// LinearBackoff adds step to the initial delay for every prior attempt.
func LinearBackoff(step time.Duration) Backoff {
	return Backoff{Policy: PolicyLinear, Step: step}
}

// Delay returns the wait before retry number attempt (0-based), clamped to
// maxDelay when maxDelay is positive. Attempt 0 always waits the initial
// delay.
func (b Backoff) Delay(initial, maxDelay time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	var d time.Duration
	switch b.Policy {
	case PolicyExponential:
		factor := b.Factor
		if factor <= 0 {
			factor = 1
		}
		scaled := float64(initial) * math.Pow(factor, float64(attempt))
		if scaled > float64(math.MaxInt64) {
			d = time.Duration(math.MaxInt64)
		} else {
			d = time.Duration(scaled)
		}
	case PolicyLinear:
		d = initial + time.Duration(attempt)*b.Step
	default:
		d = initial
	}

	if maxDelay > 0 && d > maxDelay {
		d = maxDelay
	}
	if d < 0 {
		d = 0
	}
	return d
}
