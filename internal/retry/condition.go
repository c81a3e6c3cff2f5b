package retry

import (
	"regexp"
	"strings"
)

// Condition reports whether a failure qualifies for a retry. A category
// retries only when at least one of its conditions matches.
type Condition func(Failure) bool

// OnStatusCode matches an exact HTTP status code.
func OnStatusCode(code int) Condition {
	return func(f Failure) bool {
		return f.StatusCode == code
	}
}

// OnStatusClass matches a whole HTTP status class: 4 matches 400-499,
// 5 matches 500-599.
func OnStatusClass(class int) Condition {
	return func(f Failure) bool {
		return f.StatusCode/100 == class
	}
}

// OnErrorKind matches the mechanical cause of the failure.
func OnErrorKind(kind ErrorKind) Condition {
	return func(f Failure) bool {
		return f.Kind == kind
	}
}

// OnContentContains matches failures whose content includes the substring.
func OnContentContains(substr string) Condition {
	return func(f Failure) bool {
		return substr != "" && strings.Contains(f.Content, substr)
	}
}

// OnContentMatches matches failures whose content matches the pattern.
func OnContentMatches(re *regexp.Regexp) Condition {
	return func(f Failure) bool {
		return re.MatchString(f.Content)
	}
}

// Any combines conditions so that one match suffices.
func Any(conditions ...Condition) Condition {
	return func(f Failure) bool {
		for _, cond := range conditions {
			if cond(f) {
				return true
			}
		}
		return false
	}
}
