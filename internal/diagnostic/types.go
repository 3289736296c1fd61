package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"entity-sync/internal/common"
)

// Diagnostics holds all diagnostic information from a validation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this kind of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// TypeName identifies the mapped type this relates to (if any).
	TypeName string
	// Property identifies the property this relates to (if any).
	Property string
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typeName, property string) {
	d.Errors = append(d.Errors, newDiagnostic(SeverityError, code, message, typeName, property))
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typeName, property string) {
	d.Warnings = append(d.Warnings, newDiagnostic(SeverityWarning, code, message, typeName, property))
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typeName, property string) {
	d.Infos = append(d.Infos, newDiagnostic(SeverityInfo, code, message, typeName, property))
}

func newDiagnostic(sev Severity, code, message, typeName, property string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  message,
		TypeName: typeName,
		Property: property,
	}
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// All returns every diagnostic ordered by severity, errors first.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	subject := d.TypeName
	if d.Property != "" {
		if subject != "" {
			subject += "."
		}

		subject += d.Property
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if subject != "" {
		return subject + ": " + msg
	}

	return msg
}
