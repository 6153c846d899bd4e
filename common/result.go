package common

import "fmt"

// CheckResult is the outcome of one consistency check run over a file.
type CheckResult struct {
	Passed  bool
	Skipped bool
	Message string
	Count   int // Number of items examined or at fault
}

// NewPassed creates a result for a check that found nothing wrong
func NewPassed(message string, count int) *CheckResult {
	return &CheckResult{
		Passed:  true,
		Message: message,
		Count:   count,
	}
}

// NewFailed creates a result for a check that found problems
func NewFailed(message string, count int) *CheckResult {
	return &CheckResult{
		Passed:  false,
		Message: message,
		Count:   count,
	}
}

// NewSkipped creates a result for a check that could not run
func NewSkipped(reason string) *CheckResult {
	return &CheckResult{
		Skipped: true,
		Message: reason,
	}
}

// String returns a human-readable representation
func (r *CheckResult) String() string {
	switch {
	case r.Skipped:
		return fmt.Sprintf("SKIPPED (%s)", r.Message)
	case r.Passed:
		if r.Count > 0 {
			return fmt.Sprintf("OK (%s, %d items)", r.Message, r.Count)
		}
		return fmt.Sprintf("OK (%s)", r.Message)
	default:
		if r.Count > 0 {
			return fmt.Sprintf("FAILED (%s, %d items)", r.Message, r.Count)
		}
		return fmt.Sprintf("FAILED (%s)", r.Message)
	}
}
