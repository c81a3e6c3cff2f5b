package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/nao1215/arachne/internal/retry"
)

// RetryFile is the YAML shape of the retry section. Categories not named
// in the file keep their defaults; named categories are replaced wholly.
type RetryFile struct {
	Categories map[string]RetryCategoryFile `yaml:"categories"`
}

// RetryCategoryFile configures one retry category.
type RetryCategoryFile struct {
	MaxRetries      *int     `yaml:"max_retries,omitempty"`
	InitialDelay    string   `yaml:"initial_delay,omitempty"`
	MaxDelay        string   `yaml:"max_delay,omitempty"`
	Backoff         string   `yaml:"backoff,omitempty"`
	Factor          float64  `yaml:"factor,omitempty"`
	Step            string   `yaml:"step,omitempty"`
	StatusCodes     []int    `yaml:"status_codes,omitempty"`
	StatusClasses   []int    `yaml:"status_classes,omitempty"`
	ErrorKinds      []string `yaml:"error_kinds,omitempty"`
	ContentContains []string `yaml:"content_contains,omitempty"`
	ContentPatterns []string `yaml:"content_patterns,omitempty"`
}

// Build converts the file section into a retry.Config, starting from the
// defaults and replacing each named category.
func (f *RetryFile) Build() (retry.Config, error) {
	cfg := retry.DefaultConfig()
	for name, catFile := range f.Categories {
		cat, err := catFile.build(name)
		if err != nil {
			return retry.Config{}, err
		}
		cfg.Categories[categoryByName(name)] = cat
	}
	return cfg, nil
}

// categoryByName maps a file category name onto the built-in categories,
// treating anything else as custom.
func categoryByName(name string) retry.Category {
	switch name {
	case retry.CategoryHTTPError.String():
		return retry.CategoryHTTPError
	case retry.CategoryParseError.String():
		return retry.CategoryParseError
	case retry.CategoryStorageError.String():
		return retry.CategoryStorageError
	default:
		return retry.CustomCategory(name)
	}
}

func (c RetryCategoryFile) build(name string) (retry.CategoryConfig, error) {
	cat := retry.CategoryConfig{
		MaxRetries:   retry.DefaultMaxRetries,
		InitialDelay: retry.DefaultInitialDelay,
		MaxDelay:     retry.DefaultMaxDelay,
		Backoff:      retry.FixedBackoff(),
	}

	if c.MaxRetries != nil {
		if *c.MaxRetries < 0 {
			return cat, fmt.Errorf("retry category %s: max_retries must be non-negative", name)
		}
		cat.MaxRetries = *c.MaxRetries
	}
	if c.InitialDelay != "" {
		d, err := time.ParseDuration(c.InitialDelay)
		if err != nil {
			return cat, fmt.Errorf("retry category %s: invalid initial_delay: %w", name, err)
		}
		cat.InitialDelay = d
	}
	if c.MaxDelay != "" {
		d, err := time.ParseDuration(c.MaxDelay)
		if err != nil {
			return cat, fmt.Errorf("retry category %s: invalid max_delay: %w", name, err)
		}
		cat.MaxDelay = d
	}

	switch c.Backoff {
	case "", string(retry.PolicyFixed):
		cat.Backoff = retry.FixedBackoff()
	case string(retry.PolicyExponential):
		factor := c.Factor
		if factor <= 0 {
			factor = retry.DefaultBackoffFactor
		}
		cat.Backoff = retry.ExponentialBackoff(factor)
	case string(retry.PolicyLinear):
		step := cat.InitialDelay
		if c.Step != "" {
			d, err := time.ParseDuration(c.Step)
			if err != nil {
				return cat, fmt.Errorf("retry category %s: invalid step: %w", name, err)
			}
			step = d
		}
		cat.Backoff = retry.LinearBackoff(step)
	default:
		return cat, fmt.Errorf("retry category %s: unknown backoff %q", name, c.Backoff)
	}

	for _, code := range c.StatusCodes {
		cat.Conditions = append(cat.Conditions, retry.OnStatusCode(code))
	}
	for _, class := range c.StatusClasses {
		cat.Conditions = append(cat.Conditions, retry.OnStatusClass(class))
	}
	for _, kind := range c.ErrorKinds {
		cat.Conditions = append(cat.Conditions, retry.OnErrorKind(retry.ErrorKind(kind)))
	}
	for _, substr := range c.ContentContains {
		cat.Conditions = append(cat.Conditions, retry.OnContentContains(substr))
	}
	for _, pattern := range c.ContentPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return cat, fmt.Errorf("retry category %s: invalid content pattern %q: %w", name, pattern, err)
		}
		cat.Conditions = append(cat.Conditions, retry.OnContentMatches(re))
	}
	return cat, nil
}
