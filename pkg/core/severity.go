package core

import "strings"

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a validation issue.
type Severity int

// Severity levels for issues.
const (
	// SeverityError indicates the document does not conform.
	SeverityError Severity = iota
	// SeverityWarning indicates an advisory issue that should be reviewed.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning", "warn":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// =============================================================================
// Status
// =============================================================================

// Status is the outcome of one check category.
type Status string

// Check statuses, from best to worst.
const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Worse returns whichever of s and other is the worse status.
func (s Status) Worse(other Status) Status {
	if s.rank() >= other.rank() {
		return s
	}
	return other
}

func (s Status) rank() int {
	switch s {
	case StatusFail:
		return 2
	case StatusWarn:
		return 1
	default:
		return 0
	}
}

// =============================================================================
// CheckInfo
// =============================================================================

// CheckInfo describes a validation check for listings and documentation.
type CheckInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Blocking    bool   `json:"blocking"`
}
