package definition

import (
	"regexp"
	"slices"
	"strings"

	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/normalizer"
	"github.com/robhayesmba/openapi-enforcer/pathtemplate"
	"github.com/robhayesmba/openapi-enforcer/value"
)

// Methods lists the operation keys of a path item in the order they are
// reported.
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

var (
	rxPlaceholder  = regexp.MustCompile(`\{[^}]*\}`)
	rxResponseCode = regexp.MustCompile(`^(?:default|[1-5](?:\d\d|XX))$`)
)

func newPaths(pathItem *normalizer.Validator) *normalizer.Validator {
	p := mapOf(pathItem)
	p.Errors = checkPaths
	return p
}

func newPathItem(operation, parameter *normalizer.Validator) *normalizer.Validator {
	props := map[string]*normalizer.Validator{
		"$ref":        str(),
		"summary":     v3(str()),
		"description": v3(str()),
		"servers":     v3(list(newServer())),
		"parameters":  list(parameter),
	}
	for _, m := range Methods {
		props[m] = operation
	}
	props["trace"] = v3(operation)

	item := object(props)
	item.Errors = func(c *normalizer.Context) {
		if m := c.Object(); m != nil {
			checkParameterList(c, m["parameters"], c.Errors.At("parameters"))
		}
	}
	return item
}

func newOperation(parameter, response, schema *normalizer.Validator) *normalizer.Validator {
	responses := mapOf(response)
	responses.Errors = checkResponses

	requestBody := object(map[string]*normalizer.Validator{
		"description": str(),
		"content":     requiredWhen(mapOf(newMediaType(schema)), requiredUnlessRef),
		"required":    boolean(),
	})
	withRef(requestBody)

	op := object(map[string]*normalizer.Validator{
		"tags":         list(str()),
		"summary":      str(),
		"description":  str(),
		"externalDocs": externalDocs(),
		"operationId":  str(),
		"consumes":     v2(list(str())),
		"produces":     v2(list(str())),
		"parameters":   list(parameter),
		"requestBody":  v3(requestBody),
		"responses":    required(responses),
		"callbacks":    v3(freeForm()),
		"schemes":      v2(list(oneOf("http", "https", "ws", "wss"))),
		"deprecated":   boolean(),
		"security":     list(mapOf(list(str()))),
		"servers":      v3(list(newServer())),
	})
	op.Errors = func(c *normalizer.Context) {
		if m := c.Object(); m != nil {
			checkParameterList(c, m["parameters"], c.Errors.At("parameters"))
		}
	}
	return op
}

func newResponse(schema *normalizer.Validator) *normalizer.Validator {
	r := object(map[string]*normalizer.Validator{
		"description": requiredWhen(str(), requiredUnlessRef),
		"schema":      v2(schema),
		"headers":     mapOf(freeForm()),
		"examples":    v2(freeForm()),
		"content":     v3(mapOf(newMediaType(schema))),
		"links":       v3(freeForm()),
	})
	withRef(r)
	return r
}

func checkResponses(c *normalizer.Context) {
	m := c.Object()
	codes := 0
	for _, key := range value.SortedKeys(m) {
		if normalizer.IsExtension(key) {
			continue
		}
		codes++
		if !rxResponseCode.MatchString(key) {
			c.Errors.At(key).Push("Invalid response code")
		}
	}
	if codes == 0 {
		c.Errors.Push("At least one response must be defined")
	}
}

// checkParameterList reports parameters declared twice in one list and, for
// version 2, conflicting body parameters.
func checkParameterList(c *normalizer.Context, raw any, errs *errtree.Tree) {
	list, _ := raw.([]any)
	seen := map[string]bool{}
	bodies, forms := 0, 0
	for i, item := range list {
		p, _ := item.(map[string]any)
		name, _ := p["name"].(string)
		in, _ := p["in"].(string)
		if name == "" || in == "" {
			continue
		}
		key := in + ":" + name
		if seen[key] {
			errs.Index(i).Pushf("Duplicate parameter %q in %s", name, in)
		}
		seen[key] = true
		switch in {
		case "body":
			bodies++
		case "formData":
			forms++
		}
	}
	if isV2(c) {
		if bodies > 1 {
			errs.Push("Only one body parameter is allowed")
		}
		if bodies > 0 && forms > 0 {
			errs.Push("Body and formData parameters cannot be used together")
		}
	}
}

// checkPaths compiles every path template, rejects equivalent templates, and
// compares each operation's path parameters with the template placeholders.
func checkPaths(c *normalizer.Context) {
	m := c.Object()
	shapes := map[string]string{}
	for _, key := range value.SortedKeys(m) {
		if normalizer.IsExtension(key) {
			continue
		}
		errs := c.Errors.At(key)
		if !strings.HasPrefix(key, "/") {
			errs.Push("Path must begin with a forward slash")
		}
		tpl, err := pathtemplate.Compile(key)
		if err != nil {
			errs.Push(err.Error())
			continue
		}
		shape := rxPlaceholder.ReplaceAllString(key, "{}")
		if other, dup := shapes[shape]; dup {
			errs.Pushf("Path is equivalent to %s", other)
		}
		shapes[shape] = key

		item, _ := m[key].(map[string]any)
		checkPathParameters(c, key, tpl, item)
	}
}

func checkPathParameters(c *normalizer.Context, path string, tpl *pathtemplate.Template, item map[string]any) {
	shared, sharedRef := pathParameters(item["parameters"])
	for _, method := range Methods {
		op, ok := item[method].(map[string]any)
		if !ok {
			continue
		}
		own, ownRef := pathParameters(op["parameters"])
		if sharedRef || ownRef {
			// a referenced parameter may be the missing one
			continue
		}
		declared := map[string]bool{}
		for _, name := range append(shared, own...) {
			declared[name] = true
		}
		names := tpl.Names()
		for _, name := range names {
			if !declared[name] {
				c.Warnings.At(path).At(method).Pushf("Path parameter %q is not defined", name)
			}
		}
		for _, name := range value.SortedKeys(declared) {
			if !slices.Contains(names, name) {
				c.Errors.At(path).At(method).Pushf("Path parameter %q does not appear in the path template", name)
			}
		}
	}
}

// pathParameters returns the names of the "in: path" parameters in a list and
// whether the list holds a reference.
func pathParameters(raw any) ([]string, bool) {
	list, _ := raw.([]any)
	var names []string
	ref := false
	for _, item := range list {
		p, _ := item.(map[string]any)
		if _, ok := p["$ref"]; ok {
			ref = true
			continue
		}
		if p["in"] == "path" {
			if name, ok := p["name"].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names, ref
}
