// Package oaserrors provides the structured error types returned by
// openapi-enforcer.
//
// Import path: github.com/robhayesmba/openapi-enforcer/oaserrors
//
// Problems with the shape of a document or a request are never returned as Go
// errors; they are accumulated in error trees. The types in this package cover
// the remaining cases: fatal conditions that prevent normalization from
// starting, I/O and decoding failures, and the conversion of a non-empty
// error tree into an error value for callers that want one.
//
// # Error Types
//
//   - [ParseError]: YAML/JSON loading failures
//   - [VersionError]: missing or unparsable "swagger"/"openapi" version
//   - [ValidationError]: a document or request that produced errors
//   - [TemplateError]: a path template that cannot be compiled
//   - [DecodeError]: a parameter value that cannot be decoded
//   - [ResourceLimitError]: exceeded nesting depth
//   - [ConfigError]: invalid options
//
// # Sentinel Errors
//
// Each type matches a sentinel through its Is method:
//
//	_, err := enforcer.New(doc)
//	if errors.Is(err, oaserrors.ErrVersion) {
//	    // the document does not declare a usable version
//	}
//
//	var verr *oaserrors.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Println(verr.Count, "problems")
//	}
package oaserrors
