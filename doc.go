// Package enforcer validates OpenAPI 2.0 and 3.0 documents and uses them to
// decode HTTP request parameters and to synthesize example values.
//
// # Overview
//
// The module is built from small packages that can also be used on their
// own:
//
//   - loader: read YAML, JSON or JSON-with-comments from files, URLs or memory
//   - normalizer: walk a value against a validator tree, fill in defaults,
//     collect errors and warnings in path-addressable trees
//   - definition: the validator tree for OpenAPI documents
//   - pathtemplate: compile and match path templates such as /pets/{petId}
//   - paramcodec: decode and encode parameter text by style and collection format
//   - random: generate values that satisfy a schema
//
// This package ties them together.
//
// # Validating a document
//
//	res, err := loader.Load(ctx, "openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := enforcer.Validate(res.Data)
//	if err != nil {
//		log.Fatal(err) // no usable swagger/openapi version
//	}
//	if !result.Valid() {
//		fmt.Println(result.Errors)
//	}
//
// Errors are rendered as a tree that mirrors the document:
//
//	One or more errors exist in the OpenAPI definition
//	  at: paths
//	    at: /pets/{petId}
//	      at: get
//	        Missing required property: responses
//
// # Decoding requests
//
// New rejects a document that has errors. The returned Enforcer matches a
// request to an operation, strips the basePath (version 2) or server path
// (version 3) prefix, and decodes every declared parameter:
//
//	e, err := enforcer.New(res.Data, enforcer.WithStrictMode(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//	out := e.Request(enforcer.FromHTTPRequest(r))
//	if !out.Valid() {
//		http.Error(w, out.Errors.String(), http.StatusBadRequest)
//		return
//	}
//	petID := out.Path["petId"].(int64)
//
// Path-level parameters apply to every operation of the path unless the
// operation declares one with the same name and location. Local references
// ("#/...") to parameters and schemas are followed; external references are
// not.
//
// # Random values
//
// Random and RandomFor produce values for a schema. Use WithRandomSeed for
// reproducible output.
package enforcer
