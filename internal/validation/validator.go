// =============================================================================
// NGR XML to CSV Converter - Validation Module
// =============================================================================
//
// This module provides the preflight checks behind the 'validate' command.
// Findings are collected, not thrown: each carries a severity, and only
// severity "error" (a file that cannot be parsed at all) fails validation.
// Records missing their natural identifier are reported as warnings because
// extraction tolerates them by design, producing null-keyed rows.
//
// The size gate mirrors the advisory limit of the original intake form: a
// file above the limit is flagged but never rejected.
//
// =============================================================================

package validation

import (
	"fmt"
	"os"

	"github.com/grainbridge/ngr-conversion/internal/normalizer"
	"github.com/grainbridge/ngr-conversion/internal/types"
	"github.com/grainbridge/ngr-conversion/internal/xmlparser"
)

// Severity levels for validation findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a single preflight finding.
type ValidationError struct {
	// Severity is "error" (validation fails) or "warning" (informational).
	Severity string

	// File is the input file the finding refers to.
	File string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.File, e.Message)
}

// IsFatal reports whether the finding fails validation.
func (e *ValidationError) IsFatal() bool {
	return e.Severity == SeverityError
}

// =============================================================================
// PREFLIGHT CHECKS
// =============================================================================

// CheckFile runs all preflight checks on one input file: the advisory size
// gate, XML well-formedness, and identifier coverage of the extracted rows.
// maxSizeMB of 0 disables the size gate.
func CheckFile(path string, maxSizeMB int) []*ValidationError {
	var findings []*ValidationError

	if maxSizeMB > 0 {
		if info, err := os.Stat(path); err == nil {
			limit := int64(maxSizeMB) * 1024 * 1024
			if info.Size() > limit {
				findings = append(findings, &ValidationError{
					Severity: SeverityWarning,
					File:     path,
					Message: fmt.Sprintf("file is %d MB, above the advisory %d MB limit; processing will hold all records in memory",
						info.Size()/(1024*1024), maxSizeMB),
				})
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		findings = append(findings, &ValidationError{
			Severity: SeverityError,
			File:     path,
			Message:  fmt.Sprintf("cannot open file: %v", err),
		})
		return findings
	}
	defer f.Close()

	ex, err := xmlparser.Parse(f)
	if err != nil {
		findings = append(findings, &ValidationError{
			Severity: SeverityError,
			File:     path,
			Message:  err.Error(),
		})
		return findings
	}

	findings = append(findings, CheckExtraction(path, ex)...)
	return findings
}

// CheckExtraction reports identifier coverage warnings for an extraction.
func CheckExtraction(path string, ex *xmlparser.Extraction) []*ValidationError {
	var findings []*ValidationError

	checks := []struct {
		rows   []*types.Row
		key    string
		entity string
	}{
		{ex.GRNRows, normalizer.KeyGRN, "partnership"},
		{ex.PayeeRows, normalizer.KeyPayee, "payee"},
		{ex.UserRows, normalizer.KeyUser, "user"},
	}

	for _, check := range checks {
		missing := 0
		for _, r := range check.rows {
			if r.Value(check.key) == nil {
				missing++
			}
		}
		if missing > 0 {
			findings = append(findings, &ValidationError{
				Severity: SeverityWarning,
				File:     path,
				Message: fmt.Sprintf("%d of %d %s records have no %s; they will form a null-keyed group",
					missing, len(check.rows), check.entity, check.key),
			})
		}
	}

	return findings
}

// HasFatal reports whether any finding fails validation.
func HasFatal(findings []*ValidationError) bool {
	for _, f := range findings {
		if f.IsFatal() {
			return true
		}
	}
	return false
}
