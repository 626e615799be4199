package domain

import (
	"fmt"
	"sort"
)

// Severity ranks a violation's importance.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

func severityRank(s Severity) int {
	if s == SeverityError {
		return 0
	}
	return 1
}

// Violation is one rule finding against one module. Locator optionally
// narrows the finding to "member:line" inside the module.
type Violation struct {
	RuleID     string   `json:"ruleId"`
	Severity   Severity `json:"severity"`
	ModulePath string   `json:"modulePath"`
	Locator    string   `json:"locator,omitempty"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
}

// Locator formats a member/line position for a violation.
func Locator(member string, line int) string {
	switch {
	case member != "" && line > 0:
		return fmt.Sprintf("%s:%d", member, line)
	case member != "":
		return member
	case line > 0:
		return fmt.Sprintf(":%d", line)
	default:
		return ""
	}
}

// DiagKind labels a non-fatal problem encountered during a run.
type DiagKind string

const (
	DiagParseFailure DiagKind = "parse_failure"
	DiagRuleFault    DiagKind = "rule_fault"
	DiagTruncated    DiagKind = "truncated"
)

// Diagnostic records a non-fatal problem. Diagnostics are always surfaced
// in the report, never silently dropped.
type Diagnostic struct {
	Kind    DiagKind `json:"kind"`
	Path    string   `json:"path,omitempty"`
	Message string   `json:"message"`
}

// Report is the final outcome of one validation run.
type Report struct {
	Passed       bool         `json:"passed"`
	ErrorCount   int          `json:"errorCount"`
	WarningCount int          `json:"warningCount"`
	Violations   []Violation  `json:"violations"`
	Diagnostics  []Diagnostic `json:"diagnostics,omitempty"`
	CommitHash   string       `json:"commitHash,omitempty"`
}

// NewReport assembles a report from raw rule output: exact duplicates are
// collapsed, the rest sorted into the canonical order, and counts derived.
// Passed is false iff any error-severity violation remains; failure
// thresholds only affect process exit codes, never this field.
func NewReport(violations []Violation, diagnostics []Diagnostic) Report {
	vs := dedupeViolations(violations)
	SortViolations(vs)

	r := Report{
		Violations:  vs,
		Diagnostics: diagnostics,
	}
	for _, v := range vs {
		switch v.Severity {
		case SeverityError:
			r.ErrorCount++
		case SeverityWarning:
			r.WarningCount++
		}
	}
	r.Passed = r.ErrorCount == 0
	return r
}

// Fails reports whether the given threshold turns this report into a
// process failure.
func (r Report) Fails(threshold FailOn) bool {
	switch threshold {
	case FailOnNone:
		return false
	case FailOnWarning:
		return r.ErrorCount > 0 || r.WarningCount > 0
	default:
		return r.ErrorCount > 0
	}
}

// SortViolations orders violations by severity (errors first), then module
// path, locator and rule id. The order is total, so concurrent rule
// evaluation never changes the report.
func SortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if ra, rb := severityRank(a.Severity), severityRank(b.Severity); ra != rb {
			return ra < rb
		}
		if a.ModulePath != b.ModulePath {
			return a.ModulePath < b.ModulePath
		}
		if a.Locator != b.Locator {
			return a.Locator < b.Locator
		}
		return a.RuleID < b.RuleID
	})
}

func dedupeViolations(vs []Violation) []Violation {
	type key struct {
		rule, path, locator, message string
	}
	seen := make(map[key]bool, len(vs))
	out := make([]Violation, 0, len(vs))
	for _, v := range vs {
		k := key{v.RuleID, v.ModulePath, v.Locator, v.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
