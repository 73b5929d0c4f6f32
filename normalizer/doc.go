// Package normalizer implements the recursive document normalizer.
//
// A [Validator] tree describes the expected shape of a document. [Normalize]
// walks a value against it and produces a normalized copy plus two error
// trees, one for errors and one for warnings. Nothing is returned as a Go
// error for data-shape problems: every failure is recorded at its location
// and the walk always completes.
//
// For each (validator, value) pair the walk:
//
//  1. checks the value against the validator's effective type;
//  2. checks enum membership;
//  3. descends into arrays, maps, and objects, or deserializes a scalar;
//  4. runs the validator's Errors hook against the normalized value.
//
// Objects with declared Properties are reconciled in three phases: allowed /
// required / default resolution per declared property, per-key validation of
// the present keys (extension keys matching "x-" are copied verbatim), then a
// single combined message for missing and for disallowed properties, each
// sorted alphabetically.
//
// Validator fields are [Field] values, either constant or computed from the
// [Context], which carries the specification version and the enclosing
// positions.
//
// # Example
//
//	v := &normalizer.Validator{
//	    Properties: map[string]*normalizer.Validator{
//	        "name": {Type: normalizer.Const("string"), Required: normalizer.Const(true)},
//	        "tags": {Items: &normalizer.Validator{Type: normalizer.Const("string")}},
//	    },
//	}
//	res, _ := normalizer.Normalize(v, map[string]any{"tags": []any{"a"}})
//	fmt.Println(res.Errors)
//	// One or more errors exist in the definition
//	//   Missing required property: name
package normalizer
