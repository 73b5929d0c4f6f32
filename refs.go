package enforcer

import (
	"strconv"
	"strings"
)

// refResolver follows local references ("#/..." JSON pointers) inside one
// document. External references are not fetched.
type refResolver struct {
	root map[string]any
}

// resolve follows node while it is a reference object. It returns the target,
// the last reference seen, and false when a reference cannot be followed.
func (r *refResolver) resolve(node any) (any, string, bool) {
	seen := map[string]bool{}
	for {
		ref, ok := refOf(node)
		if !ok {
			return node, "", true
		}
		if seen[ref] {
			return nil, ref, false
		}
		seen[ref] = true
		target, ok := r.lookup(ref)
		if !ok {
			return nil, ref, false
		}
		node = target
	}
}

// deref returns a copy of node in which every local reference is replaced by
// its target. A reference back into a target that is still being expanded is
// left as is, so circular schemas stay finite.
func (r *refResolver) deref(node any) any {
	return r.expand(node, map[string]bool{})
}

func (r *refResolver) expand(node any, active map[string]bool) any {
	switch t := node.(type) {
	case map[string]any:
		if ref, ok := refOf(t); ok {
			target, found := r.lookup(ref)
			if !found || active[ref] {
				return t
			}
			active[ref] = true
			out := r.expand(target, active)
			delete(active, ref)
			return out
		}
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = r.expand(v, active)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = r.expand(v, active)
		}
		return out
	default:
		return node
	}
}

// lookup evaluates a local JSON pointer against the root.
func (r *refResolver) lookup(ref string) (any, bool) {
	pointer, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return nil, false
	}
	var node any = r.root
	if pointer == "" {
		return node, true
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, false
	}
	for _, token := range strings.Split(pointer[1:], "/") {
		// RFC 6901: ~1 is "/" and ~0 is "~"
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		switch t := node.(type) {
		case map[string]any:
			if node, ok = t[token]; !ok {
				return nil, false
			}
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			node = t[i]
		default:
			return nil, false
		}
	}
	return node, true
}

func refOf(node any) (string, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return "", false
	}
	ref, ok := m["$ref"].(string)
	return ref, ok
}
