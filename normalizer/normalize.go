package normalizer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/oaserrors"
	"github.com/robhayesmba/openapi-enforcer/value"
)

var rxExtension = regexp.MustCompile(`^x-.+`)

// IsExtension reports whether key names an extension property.
func IsExtension(key string) bool {
	return rxExtension.MatchString(key)
}

// Result is the outcome of a normalization pass.
type Result struct {
	// Value is the normalized value. It is nil when Defined is false.
	Value any
	// Defined is false when the root value was rejected outright.
	Defined bool
	// Version is the version context functions were evaluated with.
	Version Version
	// Errors holds structural and semantic failures.
	Errors *errtree.Tree
	// Warnings holds non-blocking notices.
	Warnings *errtree.Tree
}

// Valid reports whether the pass produced no errors. Warnings are ignored.
func (r *Result) Valid() bool {
	return !r.Errors.HasMessages()
}

// Err returns nil for a valid result and a *oaserrors.ValidationError
// otherwise.
func (r *Result) Err() error {
	return r.Errors.Err()
}

// Normalize walks value against v and returns the normalized copy together
// with the error and warning trees. The input value and the validator are
// never modified. The returned error is only non-nil for invalid options.
func Normalize(v *Validator, val any, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	return run(cfg, v, val), nil
}

// NormalizeDocument detects the document's version from its "swagger" or
// "openapi" property and normalizes it against root. A missing or
// unparsable version is returned as a *oaserrors.VersionError and no
// normalization is attempted.
func NormalizeDocument(doc any, root *Validator, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(append([]Option{WithHeaders(
		"One or more errors exist in the OpenAPI definition",
		"One or more warnings exist in the OpenAPI definition",
	)}, opts...)...)
	if err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, &oaserrors.VersionError{}
	}
	version, err := DetectVersion(m)
	if err != nil {
		cfg.logger.Debug("version detection failed", "error", err)
		return nil, err
	}
	cfg.version = version
	return run(cfg, root, doc), nil
}

func run(cfg *config, v *Validator, val any) *Result {
	ctx := &Context{
		Version:   cfg.version,
		Validator: v,
		Value:     val,
		Errors:    errtree.New(cfg.errorHeader),
		Warnings:  errtree.New(cfg.warningHeader),
		cfg:       cfg,
	}
	out, ok := normalize(ctx)
	res := &Result{
		Value:    out,
		Defined:  ok,
		Version:  cfg.version,
		Errors:   ctx.Errors,
		Warnings: ctx.Warnings,
	}
	cfg.logger.Debug("normalization complete",
		"version", cfg.version.String(),
		"errors", res.Errors.Count(),
		"warnings", res.Warnings.Count())
	return res
}

// normalize returns the normalized value for ctx and whether one was
// produced. A false result means the parent must omit this position.
func normalize(ctx *Context) (any, bool) {
	v := ctx.Validator
	if v == nil {
		return value.Copy(ctx.Value), true
	}
	if ctx.depth > ctx.cfg.maxDepth {
		ctx.Errors.Push((&oaserrors.ResourceLimitError{
			ResourceType: "nesting depth",
			Limit:        int64(ctx.cfg.maxDepth),
			Actual:       int64(ctx.depth),
		}).Error())
		ctx.cfg.logger.Debug("maximum nesting depth exceeded", "limit", ctx.cfg.maxDepth)
		return nil, false
	}

	typ := v.EffectiveType(ctx)
	if typ != "" && !value.Is(typ, ctx.Value) {
		ctx.Errors.Push("Value must be " + article(typ) + ". Received: " + value.Render(ctx.Value))
		return nil, false
	}

	if allowed := v.Enum.ResolveOr(ctx, nil); allowed != nil {
		if !contains(allowed, ctx.Value) {
			if len(allowed) == 1 {
				ctx.Errors.Push("Value must equal: " + value.Literal(allowed[0]) + ". Received: " + value.Render(ctx.Value))
			} else {
				ctx.Errors.Push("Value must be one of: " + value.JoinLiterals(allowed) + ". Received: " + value.Render(ctx.Value))
			}
			return nil, false
		}
	}

	var result any
	switch {
	case typ == "array":
		result = normalizeArray(ctx)
	case typ == "object" && v.AdditionalProperties != nil:
		result = normalizeMap(ctx)
	case typ == "object" && v.Properties == nil:
		result = value.Copy(ctx.Value)
	case typ == "object":
		result = normalizeObject(ctx)
	default:
		result = normalizeScalar(ctx)
	}

	if v.Errors != nil {
		hook := *ctx
		hook.Value = result
		v.Errors(&hook)
	}
	return result, true
}

// article returns the type name with its indefinite article, as used in
// type-mismatch messages.
func article(typ string) string {
	switch typ {
	case "array", "integer":
		return "an " + typ
	case "object":
		return "a plain object"
	default:
		return "a " + typ
	}
}

func contains(list []any, v any) bool {
	for _, item := range list {
		if value.Equal(item, v) {
			return true
		}
	}
	return false
}

func normalizeArray(ctx *Context) []any {
	in := ctx.Value.([]any)
	out := make([]any, len(in))
	for i, item := range in {
		// rejected elements stay as nil so indices keep matching the error tree
		out[i], _ = normalize(ctx.element(i, ctx.Validator.Items, item))
	}
	return out
}

func normalizeMap(ctx *Context) map[string]any {
	in := ctx.Value.(map[string]any)
	out := make(map[string]any, len(in))
	for _, key := range value.SortedKeys(in) {
		if IsExtension(key) {
			out[key] = value.Copy(in[key])
			continue
		}
		if r, ok := normalize(ctx.property(key, ctx.Validator.AdditionalProperties, in[key])); ok {
			out[key] = r
		}
	}
	return out
}

func normalizeObject(ctx *Context) map[string]any {
	props := ctx.Validator.Properties
	working := ctx.Object()
	copied := false

	declared := make([]string, 0, len(props))
	for key := range props {
		declared = append(declared, key)
	}
	sort.Strings(declared)

	// Per-property contexts see the working object, defaults included.
	self := *ctx
	self.Value = working

	allowed := make(map[string]bool, len(props))
	var missing []string
	for _, key := range declared {
		child := props[key]
		_, present := working[key]
		pctx := self.property(key, child, working[key])
		ok := child == nil || child.Allowed.ResolveOr(pctx, true)
		allowed[key] = ok
		if present || !ok || child == nil {
			continue
		}
		if child.Required.ResolveOr(pctx, false) {
			missing = append(missing, key)
		} else if child.Default.IsSet() {
			def := child.Default.Resolve(pctx)
			if def == nil {
				continue
			}
			if !copied {
				working = shallowCopy(working)
				self.Value = working
				copied = true
			}
			working[key] = value.Copy(def)
		}
	}

	out := make(map[string]any, len(working))
	var notAllowed []string
	for _, key := range value.SortedKeys(working) {
		switch {
		case IsExtension(key):
			out[key] = value.Copy(working[key])
		case !allowed[key]:
			notAllowed = append(notAllowed, key)
		default:
			child := props[key]
			pctx := self.property(key, child, working[key])
			if child != nil && child.Ignore.ResolveOr(pctx, false) {
				continue
			}
			if r, ok := normalize(pctx); ok {
				out[key] = r
			}
		}
	}

	if len(missing) == 1 {
		ctx.Errors.Push("Missing required property: " + missing[0])
	} else if len(missing) > 1 {
		ctx.Errors.Push("Missing required properties: " + strings.Join(missing, ", "))
	}
	if len(notAllowed) == 1 {
		ctx.Errors.Push("Property not allowed: " + notAllowed[0])
	} else if len(notAllowed) > 1 {
		ctx.Errors.Push("Properties not allowed: " + strings.Join(notAllowed, ", "))
	}
	return out
}

func shallowCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func normalizeScalar(ctx *Context) any {
	if ctx.Validator.Deserialize == nil {
		return value.Copy(ctx.Value)
	}
	switch value.KindOf(ctx.Value) {
	case value.String, value.Integer, value.Number, value.Boolean:
		return ctx.Validator.Deserialize(ctx)
	default:
		return value.Copy(ctx.Value)
	}
}
