package enforcer

import (
	"regexp"
	"strings"
)

// maxServerPaths caps the variable combinations expanded for one server URL.
const maxServerPaths = 64

var rxServerVariable = regexp.MustCompile(`\{([^}]+)\}`)

// serverPaths returns the path part of a server URL for every combination of
// its variables' allowed values (the default when there is no enum). The
// results carry a leading slash and no trailing slash.
func serverPaths(url string, vars map[string]any) []string {
	urls := []string{url}
	for _, match := range rxServerVariable.FindAllStringSubmatch(url, -1) {
		placeholder, name := match[0], match[1]
		values := variableValues(vars[name])
		var next []string
		for _, u := range urls {
			for _, v := range values {
				if len(next) == maxServerPaths {
					break
				}
				next = append(next, strings.Replace(u, placeholder, v, 1))
			}
		}
		urls = next
	}

	out := make([]string, 0, len(urls))
	for _, u := range urls {
		out = append(out, urlPath(u))
	}
	return out
}

func variableValues(raw any) []string {
	v, _ := raw.(map[string]any)
	var values []string
	if def, ok := v["default"].(string); ok {
		values = append(values, def)
	}
	enum, _ := v["enum"].([]any)
	for _, item := range enum {
		if s, ok := item.(string); ok && (len(values) == 0 || s != values[0]) {
			values = append(values, s)
		}
	}
	if len(values) == 0 {
		values = []string{""}
	}
	return values
}

// urlPath drops the scheme and authority of an absolute URL. Relative URLs
// are taken as paths.
func urlPath(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		rest := u[i+3:]
		j := strings.IndexByte(rest, '/')
		if j < 0 {
			return ""
		}
		u = rest[j:]
	} else if strings.HasPrefix(u, "//") {
		rest := u[2:]
		j := strings.IndexByte(rest, '/')
		if j < 0 {
			return ""
		}
		u = rest[j:]
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	if u != "" && !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return u
}

// stripPrefix removes the longest base path that p starts with.
func (e *Enforcer) stripPrefix(p string) string {
	for _, prefix := range e.prefixes {
		if p == prefix {
			return "/"
		}
		if strings.HasPrefix(p, prefix+"/") {
			return p[len(prefix):]
		}
	}
	return p
}
