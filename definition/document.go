package definition

import (
	"regexp"
	"strings"

	"github.com/robhayesmba/openapi-enforcer/normalizer"
	"github.com/robhayesmba/openapi-enforcer/value"
)

var (
	rxComponentName  = regexp.MustCompile(`^[a-zA-Z0-9.\-_]+$`)
	rxServerVariable = regexp.MustCompile(`\{([^}]+)\}`)
)

func newDocument(t *table) *normalizer.Validator {
	swagger := oneOf("2.0")
	swagger.Required = normalizer.Computed(isV2)
	swagger.Allowed = normalizer.Computed(isV2)

	openapi := str()
	openapi.Required = normalizer.Computed(isV3)
	openapi.Allowed = normalizer.Computed(isV3)

	basePath := str()
	basePath.Deserialize = func(c *normalizer.Context) any {
		s, _ := c.Value.(string)
		if len(s) > 1 {
			s = strings.TrimRight(s, "/")
		}
		return s
	}
	basePath.Errors = func(c *normalizer.Context) {
		if s, _ := c.Value.(string); !strings.HasPrefix(s, "/") {
			c.Errors.Push("Value must begin with a forward slash")
		}
	}

	host := str()
	host.Errors = func(c *normalizer.Context) {
		if s, _ := c.Value.(string); strings.Contains(s, "/") {
			c.Errors.Push("Value must not include a scheme or a path")
		}
	}

	doc := object(map[string]*normalizer.Validator{
		"swagger":      swagger,
		"openapi":      openapi,
		"info":         required(t.info),
		"host":         v2(host),
		"basePath":     v2(basePath),
		"schemes":      v2(list(oneOf("http", "https", "ws", "wss"))),
		"consumes":     v2(list(str())),
		"produces":     v2(list(str())),
		"paths":        required(t.paths),
		"definitions":  v2(components(t.schema)),
		"parameters":   v2(components(t.parameter)),
		"responses":    v2(components(t.response)),
		"servers":      v3(list(t.server)),
		"components":   v3(newComponents(t)),
		"security":     list(mapOf(list(str()))),
		"tags":         newTags(),
		"externalDocs": externalDocs(),

		"securityDefinitions": v2(components(newSecurityScheme())),
	})
	doc.Errors = checkDocument
	return doc
}

func newInfo() *normalizer.Validator {
	return object(map[string]*normalizer.Validator{
		"title":          required(str()),
		"description":    str(),
		"termsOfService": str(),
		"contact": object(map[string]*normalizer.Validator{
			"name":  str(),
			"url":   str(),
			"email": str(),
		}),
		"license": object(map[string]*normalizer.Validator{
			"name": required(str()),
			"url":  str(),
		}),
		"version": required(str()),
	})
}

func newServer() *normalizer.Validator {
	variable := object(map[string]*normalizer.Validator{
		"enum":        list(str()),
		"default":     required(str()),
		"description": str(),
	})
	variable.Errors = func(c *normalizer.Context) {
		m := c.Object()
		enum, ok := m["enum"].([]any)
		if ok && m["default"] != nil && !containsValue(enum, m["default"]) {
			c.Errors.At("default").Pushf("Default value must be one of: %s. Received: %s",
				value.JoinLiterals(enum), value.Render(m["default"]))
		}
	}

	server := object(map[string]*normalizer.Validator{
		"url":         required(str()),
		"description": str(),
		"variables":   mapOf(variable),
	})
	server.Errors = func(c *normalizer.Context) {
		m := c.Object()
		url, _ := m["url"].(string)
		vars, _ := m["variables"].(map[string]any)
		for _, match := range rxServerVariable.FindAllStringSubmatch(url, -1) {
			if _, ok := vars[match[1]]; !ok {
				c.Errors.At("url").Pushf("Server variable %q is not defined", match[1])
			}
		}
	}
	return server
}

func newTags() *normalizer.Validator {
	tag := object(map[string]*normalizer.Validator{
		"name":         required(str()),
		"description":  str(),
		"externalDocs": externalDocs(),
	})
	tags := list(tag)
	tags.Errors = func(c *normalizer.Context) {
		list, _ := c.Value.([]any)
		seen := map[string]bool{}
		for i, item := range list {
			tag, _ := item.(map[string]any)
			name, _ := tag["name"].(string)
			if name != "" && seen[name] {
				c.Errors.Index(i).Pushf("Duplicate tag name %q", name)
			}
			seen[name] = true
		}
	}
	return tags
}

// components is a named map whose keys must be usable in a reference.
func components(v *normalizer.Validator) *normalizer.Validator {
	m := mapOf(v)
	m.Errors = func(c *normalizer.Context) {
		for _, key := range value.SortedKeys(c.Object()) {
			if !normalizer.IsExtension(key) && !rxComponentName.MatchString(key) {
				c.Errors.At(key).Push("Invalid component name")
			}
		}
	}
	return m
}

func newComponents(t *table) *normalizer.Validator {
	requestBody := t.operation.Properties["requestBody"]
	return object(map[string]*normalizer.Validator{
		"schemas":         components(t.schema),
		"responses":       components(t.response),
		"parameters":      components(t.parameter),
		"requestBodies":   components(requestBody),
		"headers":         components(freeForm()),
		"securitySchemes": components(newSecurityScheme()),
		"examples":        components(freeForm()),
		"links":           components(freeForm()),
		"callbacks":       components(freeForm()),
	})
}

func newSecurityScheme() *normalizer.Validator {
	schemeType := str()
	schemeType.Enum = normalizer.Computed(func(c *normalizer.Context) []any {
		if isV2(c) {
			return []any{"apiKey", "basic", "oauth2"}
		}
		return []any{"apiKey", "http", "oauth2", "openIdConnect"}
	})
	and := func(a, b func(*normalizer.Context) bool) func(*normalizer.Context) bool {
		return func(c *normalizer.Context) bool { return a(c) && b(c) }
	}

	in := str()
	in.Enum = normalizer.Computed(func(c *normalizer.Context) []any {
		if isV2(c) {
			return []any{"header", "query"}
		}
		return []any{"cookie", "header", "query"}
	})

	s := object(map[string]*normalizer.Validator{
		"type":        requiredWhen(schemeType, requiredUnlessRef),
		"description": str(),
		"name":        requiredWhen(str(), siblingIs("type", "apiKey")),
		"in":          requiredWhen(in, siblingIs("type", "apiKey")),

		"scheme":           v3(requiredWhen(str(), siblingIs("type", "http"))),
		"bearerFormat":     v3(str()),
		"flows":            v3(requiredWhen(freeForm(), siblingIs("type", "oauth2"))),
		"openIdConnectUrl": v3(requiredWhen(str(), siblingIs("type", "openIdConnect"))),

		"flow":             v2(requiredWhen(oneOf("implicit", "password", "application", "accessCode"), siblingIs("type", "oauth2"))),
		"authorizationUrl": v2(requiredWhen(str(), and(siblingIs("type", "oauth2"), siblingIs("flow", "implicit", "accessCode")))),
		"tokenUrl":         v2(requiredWhen(str(), and(siblingIs("type", "oauth2"), siblingIs("flow", "password", "application", "accessCode")))),
		"scopes":           v2(requiredWhen(mapOf(str()), siblingIs("type", "oauth2"))),
	})
	withRef(s)
	return s
}

// checkDocument reports an unsupported major version and operation IDs used
// more than once.
func checkDocument(c *normalizer.Context) {
	if major := c.Version.Major; major != 2 && major != 3 {
		c.Errors.Push("Unsupported specification version: " + c.Version.String())
		return
	}
	paths, _ := c.Object()["paths"].(map[string]any)
	type site struct{ path, method string }
	seen := map[string]site{}
	for _, path := range value.SortedKeys(paths) {
		item, _ := paths[path].(map[string]any)
		for _, method := range Methods {
			op, _ := item[method].(map[string]any)
			id, _ := op["operationId"].(string)
			if id == "" {
				continue
			}
			if prev, dup := seen[id]; dup {
				c.Errors.At("paths").At(path).At(method).At("operationId").
					Pushf("Duplicate operationId %q, also used by %s %s", id, strings.ToUpper(prev.method), prev.path)
				continue
			}
			seen[id] = site{path, method}
		}
	}
}
