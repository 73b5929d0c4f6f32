// Package severity defines the severity levels attached to issues reported by
// the normalizer, the parameter codec, and the request enforcer.
//
// Only two levels decide the outcome of a pass: an Error rejects the document
// or request, a Warning never does. Info is used for diagnostic notices.
package severity

// Severity indicates how serious a reported issue is.
type Severity int

const (
	// SeverityError marks a problem that makes the document or request invalid.
	SeverityError Severity = iota

	// SeverityWarning marks a stylistic or deprecation notice. Warnings never
	// block production of a normalized value.
	SeverityWarning

	// SeverityInfo marks an informational notice.
	SeverityInfo
)

// String returns the lowercase name of the severity level.
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

// Symbol returns the single-character marker used in text output.
func (s Severity) Symbol() string {
	switch s {
	case SeverityError:
		return "✗"
	case SeverityWarning:
		return "⚠"
	case SeverityInfo:
		return "ℹ"
	default:
		return "?"
	}
}

// Blocking reports whether issues of this severity reject the input.
func (s Severity) Blocking() bool {
	return s == SeverityError
}
