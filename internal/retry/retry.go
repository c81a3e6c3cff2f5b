package retry

import "time"

// Defaults applied by DefaultConfig. The HTTP category retries server
// errors, rate limiting, request timeouts, and transport failures with
// exponential backoff; parse and storage categories retry their own error
// kinds with a fixed delay.
const (
	// DefaultMaxRetries is the retry budget per category per request.
	DefaultMaxRetries = 3

	// DefaultInitialDelay is the wait before the first retry.
	DefaultInitialDelay = 1 * time.Second

	// DefaultMaxDelay caps the computed backoff delay.
	DefaultMaxDelay = 60 * time.Second

	// DefaultBackoffFactor doubles the delay on each attempt.
	DefaultBackoffFactor = 2.0
)

// CategoryConfig is the retry policy for one failure category.
type CategoryConfig struct {
	// MaxRetries is how many retries the category grants per request.
	// An attempt number at or beyond this budget is given up.
	MaxRetries int

	// InitialDelay is the base delay fed to the backoff curve.
	InitialDelay time.Duration

	// MaxDelay caps the computed delay. Zero means uncapped.
	MaxDelay time.Duration

	// Backoff selects the delay growth curve.
	Backoff Backoff

	// Conditions qualify failures for retry. A failure matching none of
	// them is given up immediately, whatever the remaining budget.
	Conditions []Condition
}

// Decision is the outcome of consulting the retry policy.
type Decision struct {
	// Retry reports whether the operation should be attempted again.
	Retry bool

	// Delay is how long to wait before the next attempt. Zero when
	// giving up.
	Delay time.Duration
}

// GiveUp is the terminal decision.
var GiveUp = Decision{}

// Config maps failure categories to their retry policies. Categories
// absent from the map never retry.
type Config struct {
	Categories map[Category]CategoryConfig
}

// DefaultConfig returns the stock retry policy: HTTP failures (5xx, 408,
// 429, connection and timeout errors) back off exponentially; parse and
// storage failures get a fixed one-second delay.
func DefaultConfig() Config {
	return Config{
		Categories: map[Category]CategoryConfig{
			CategoryHTTPError: {
				MaxRetries:   DefaultMaxRetries,
				InitialDelay: DefaultInitialDelay,
				MaxDelay:     DefaultMaxDelay,
				Backoff:      ExponentialBackoff(DefaultBackoffFactor),
				Conditions: []Condition{
					OnStatusClass(5),
					OnStatusCode(408),
					OnStatusCode(429),
					OnErrorKind(KindConnection),
					OnErrorKind(KindTimeout),
				},
			},
			CategoryParseError: {
				MaxRetries:   DefaultMaxRetries,
				InitialDelay: DefaultInitialDelay,
				MaxDelay:     DefaultMaxDelay,
				Backoff:      FixedBackoff(),
				Conditions: []Condition{
					OnErrorKind(KindParse),
				},
			},
			CategoryStorageError: {
				MaxRetries:   DefaultMaxRetries,
				InitialDelay: DefaultInitialDelay,
				MaxDelay:     DefaultMaxDelay,
				Backoff:      FixedBackoff(),
				Conditions: []Condition{
					OnErrorKind(KindStorage),
				},
			},
		},
	}
}

// Decide returns the retry decision for a failure in the given category at
// the given 0-based attempt number. The decision gives up when the
// category is unknown, no condition matches, or the budget is spent.
func (c Config) Decide(category Category, failure Failure, attempt int) Decision {
	cfg, ok := c.Categories[category]
	if !ok {
		return GiveUp
	}
	return cfg.Decide(failure, attempt)
}

// Decide returns the retry decision for a failure at the given 0-based
// attempt number.
func (c CategoryConfig) Decide(failure Failure, attempt int) Decision {
	if !c.matches(failure) {
		return GiveUp
	}
	if attempt >= c.MaxRetries {
		return GiveUp
	}
	return Decision{
		Retry: true,
		Delay: c.Backoff.Delay(c.InitialDelay, c.MaxDelay, attempt),
	}
}

func (c CategoryConfig) matches(failure Failure) bool {
	for _, cond := range c.Conditions {
		if cond(failure) {
			return true
		}
	}
	return false
}

// State tracks per-request attempt counters, one per category. Counters
// are fully independent: spending the HTTP budget leaves the parse budget
// untouched. The zero value is ready to use via its methods' map checks,
// but NewState is the usual constructor.
type State struct {
	attempts map[Category]int
}

// NewState returns an empty attempt ledger.
func NewState() *State {
	return &State{attempts: make(map[Category]int)}
}

// Attempts returns how many retries have been recorded for the category.
func (s *State) Attempts(category Category) int {
	if s.attempts == nil {
		return 0
	}
	return s.attempts[category]
}

// Record counts one retry against the category and returns the new total.
func (s *State) Record(category Category) int {
	if s.attempts == nil {
		s.attempts = make(map[Category]int)
	}
	s.attempts[category]++
	return s.attempts[category]
}

// Total returns the retry count summed across categories.
func (s *State) Total() int {
	var total int
	for _, n := range s.attempts {
		total += n
	}
	return total
}

// History returns a copy of the per-category counters keyed by category
// name, suitable for attaching to a response.
func (s *State) History() map[string]int {
	if len(s.attempts) == 0 {
		return nil
	}
	history := make(map[string]int, len(s.attempts))
	for cat, n := range s.attempts {
		history[cat.String()] = n
	}
	return history
}
