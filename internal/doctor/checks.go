// Package doctor diagnoses why a profile can't run remote work: config,
// SSH settings, the stored kinit password, and the tools on the edge node.
package doctor

import (
	"context"
	"fmt"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Check categories, in display order.
const (
	CategoryConfig      = "CONFIG"
	CategorySSH         = "SSH"
	CategoryCredentials = "CREDENTIALS"
	CategoryRemote      = "REMOTE"
)

// Categories lists every category in the order reports show them.
var Categories = []string{CategoryConfig, CategorySSH, CategoryCredentials, CategoryRemote}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check is a single diagnostic.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category, e.g. CategorySSH.
	Category() string

	// Run executes the check. Only remote checks use ctx.
	Run(ctx context.Context) CheckResult
}

// RunAll executes checks in order.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		r := check.Run(ctx)
		r.Name = check.Name()
		r.Category = check.Category()
		results[i] = r
	}
	return results
}

// GroupByCategory organizes results by category.
func GroupByCategory(results []CheckResult) map[string][]CheckResult {
	grouped := make(map[string][]CheckResult)
	for _, r := range results {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	return grouped
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	if total == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func pass(msg string) CheckResult {
	return CheckResult{Status: StatusPass, Message: msg}
}

func warn(msg, suggestion string) CheckResult {
	return CheckResult{Status: StatusWarn, Message: msg, Suggestion: suggestion}
}

func fail(msg, suggestion string) CheckResult {
	return CheckResult{Status: StatusFail, Message: msg, Suggestion: suggestion}
}
