// Package rules provides the core finding model and detector system for
// the Python analyzer.
package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents the severity level of an issue.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type Severity int

// Severity levels in ascending order. The integer ordering is the ranking:
// a higher value is more severe.
const (
	// SeverityInfo indicates a suggestion or minor style observation.
	SeverityInfo Severity = iota
	// SeverityLow indicates an issue worth fixing but unlikely to cause harm.
	SeverityLow
	// SeverityMedium indicates a significant maintainability problem.
	SeverityMedium
	// SeverityHigh indicates a serious structural problem.
	SeverityHigh
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
// Pointer receiver required by json.Unmarshaler interface.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity string into a Severity value.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "info":
		return SeverityInfo, nil
	case "low":
		return SeverityLow, nil
	case "medium", "med":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity: %q", s)
	}
}

// Severities lists all severity levels in ascending order.
func Severities() []Severity {
	return []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh}
}

// IsAtLeast returns true if s is at least as severe as threshold.
func (s Severity) IsAtLeast(threshold Severity) bool {
	return s >= threshold
}
