package issue

import "strings"

// Category classifies the kind of problem the auditor detected.
type Category string

const (
	CategorySyntax  Category = "SYNTAX"
	CategoryStyle   Category = "STYLE"
	CategoryDesign  Category = "DESIGN"
	CategoryDoc     Category = "DOC"
	CategoryBug     Category = "BUG"
	CategoryUnknown Category = "UNKNOWN"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySyntax, CategoryStyle, CategoryDesign, CategoryDoc, CategoryBug, CategoryUnknown:
		return true
	}
	return false
}

// ParseCategory maps raw worker output to a Category. Unrecognized or empty
// values map to UNKNOWN; the category set is open on the producer side.
func ParseCategory(raw string) Category {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if c.Valid() {
		return c
	}
	return CategoryUnknown
}

// Severity indicates how important an issue is.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// order returns a sort key (lower = higher priority).
func (s Severity) order() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// ParseSeverity maps raw worker output to a Severity. Missing or unrecognized
// values default to LOW rather than failing.
func ParseSeverity(raw string) Severity {
	s := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	if s.Valid() {
		return s
	}
	return SeverityLow
}

// FixStatus records the per-file result of the fix phase.
type FixStatus string

const (
	FixStatusFixed       FixStatus = "FIXED"
	FixStatusViaFallback FixStatus = "FIXED_VIA_FALLBACK"
	FixStatusNoChange    FixStatus = "NO_CHANGE"
	FixStatusError       FixStatus = "ERROR"
)

func (f FixStatus) Valid() bool {
	switch f {
	case FixStatusFixed, FixStatusViaFallback, FixStatusNoChange, FixStatusError:
		return true
	}
	return false
}

// JudgeStatus classifies the judge phase outcome.
type JudgeStatus string

const (
	JudgePass          JudgeStatus = "PASS"
	JudgeFailFixable   JudgeStatus = "FAIL_FIXABLE"
	JudgeFailUncertain JudgeStatus = "FAIL_UNCERTAIN"
	JudgeError         JudgeStatus = "ERROR"
)

func (j JudgeStatus) Valid() bool {
	switch j {
	case JudgePass, JudgeFailFixable, JudgeFailUncertain, JudgeError:
		return true
	}
	return false
}

// Action is the judge's recommended next transition.
type Action string

const (
	ActionStop          Action = "STOP"
	ActionReturnToAudit Action = "RETURN_TO_AUDIT"
	ActionRequireHuman  Action = "REQUIRE_HUMAN"
)

func (a Action) Valid() bool {
	switch a {
	case ActionStop, ActionReturnToAudit, ActionRequireHuman:
		return true
	}
	return false
}

// ParseAction maps raw judge output to an Action. Models sometimes emit
// RETURN_TO_FIXER or CONTINUE; the loop has no fixer-only re-entry, so both
// map to RETURN_TO_AUDIT. Unrecognized values map to STOP so a confused judge
// cannot keep the loop alive.
func ParseAction(raw string) Action {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "RETURN_TO_AUDIT", "RETURN_TO_FIXER", "CONTINUE":
		return ActionReturnToAudit
	case "REQUIRE_HUMAN":
		return ActionRequireHuman
	default:
		return ActionStop
	}
}
