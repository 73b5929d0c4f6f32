package enforcer

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/robhayesmba/openapi-enforcer/definition"
	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/logging"
	"github.com/robhayesmba/openapi-enforcer/normalizer"
	"github.com/robhayesmba/openapi-enforcer/oaserrors"
	"github.com/robhayesmba/openapi-enforcer/paramcodec"
	"github.com/robhayesmba/openapi-enforcer/pathtemplate"
	"github.com/robhayesmba/openapi-enforcer/random"
	"github.com/robhayesmba/openapi-enforcer/schema"
	"github.com/robhayesmba/openapi-enforcer/value"
)

// Enforcer serves requests against one validated document. Request may be
// called from several goroutines; Random serializes its callers.
type Enforcer struct {
	doc      map[string]any
	version  normalizer.Version
	warnings *errtree.Tree

	codec    *paramcodec.Codec
	paths    *pathtemplate.Set
	ops      map[string]map[string]*operation
	prefixes []string
	strict   bool
	logger   logging.Logger

	mu  sync.Mutex
	rnd *random.Generator
}

// operation is one method of one path with its merged parameters.
type operation struct {
	template string
	method   string
	params   []*paramcodec.Parameter
}

// Validate normalizes doc against the built-in OpenAPI definition. Problems
// with the document are reported in the result's Errors tree; the returned
// error is reserved for invalid options, values outside the canonical set,
// and a missing or unparsable version (*oaserrors.VersionError).
func Validate(doc any, opts ...Option) (*normalizer.Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	return validate(cfg, doc)
}

func validate(cfg *config, doc any) (*normalizer.Result, error) {
	canonical, err := value.Canonical(doc)
	if err != nil {
		return nil, &oaserrors.ParseError{Message: "unsupported value", Cause: err}
	}
	nopts := []normalizer.Option{normalizer.WithLogger(cfg.logger)}
	if cfg.maxDepth > 0 {
		nopts = append(nopts, normalizer.WithMaxDepth(cfg.maxDepth))
	}
	return normalizer.NormalizeDocument(canonical, definition.Document(), nopts...)
}

// New validates doc and prepares it for request decoding. A document with
// errors is rejected with a *oaserrors.ValidationError; warnings are kept
// and available from Warnings.
func New(doc any, opts ...Option) (*Enforcer, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	res, err := validate(cfg, doc)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	ropts := []random.Option{random.WithLogger(cfg.logger)}
	if cfg.seed != nil {
		ropts = append(ropts, random.WithSeed(*cfg.seed))
	}
	rnd, err := random.New(ropts...)
	if err != nil {
		return nil, err
	}

	e := &Enforcer{
		doc:      res.Value.(map[string]any),
		version:  res.Version,
		warnings: res.Warnings,
		codec:    paramcodec.NewCodec(res.Version.Major, paramcodec.WithLogger(cfg.logger)),
		ops:      map[string]map[string]*operation{},
		strict:   cfg.strict,
		logger:   cfg.logger,
		rnd:      rnd,
	}
	if err := e.buildOperations(); err != nil {
		return nil, err
	}
	e.prefixes = e.basePaths()
	e.logger.Debug("enforcer ready",
		"version", e.version.String(),
		"paths", len(e.ops),
		"prefixes", len(e.prefixes))
	return e, nil
}

// buildOperations compiles the path templates and merges path-level with
// operation-level parameters.
func (e *Enforcer) buildOperations() error {
	paths, _ := e.doc["paths"].(map[string]any)
	refs := &refResolver{root: e.doc}

	var templates []string
	for _, tmpl := range value.SortedKeys(paths) {
		if normalizer.IsExtension(tmpl) {
			continue
		}
		item, _ := paths[tmpl].(map[string]any)
		if _, ok := item["$ref"]; ok {
			e.warnings.At("paths").At(tmpl).Push("Path item references are not followed")
			continue
		}
		templates = append(templates, tmpl)

		shared, err := e.parameters(refs, item["parameters"], e.warnings.At("paths").At(tmpl).At("parameters"))
		if err != nil {
			return fmt.Errorf("enforcer: %s: %w", tmpl, err)
		}
		methods := map[string]*operation{}
		for _, method := range definition.Methods {
			op, ok := item[method].(map[string]any)
			if !ok {
				continue
			}
			own, err := e.parameters(refs, op["parameters"], e.warnings.At("paths").At(tmpl).At(method).At("parameters"))
			if err != nil {
				return fmt.Errorf("enforcer: %s %s: %w", strings.ToUpper(method), tmpl, err)
			}
			methods[method] = &operation{
				template: tmpl,
				method:   method,
				params:   mergeParameters(shared, own),
			}
		}
		e.ops[tmpl] = methods
	}

	set, err := pathtemplate.NewSet(templates...)
	if err != nil {
		return fmt.Errorf("enforcer: %w", err)
	}
	e.paths = set
	return nil
}

// parameters decodes a parameter list, following local references. Body and
// form parameters describe the payload and are left out.
func (e *Enforcer) parameters(refs *refResolver, raw any, warn *errtree.Tree) ([]*paramcodec.Parameter, error) {
	list, _ := raw.([]any)
	out := make([]*paramcodec.Parameter, 0, len(list))
	for i, item := range list {
		node, ref, ok := refs.resolve(item)
		if !ok {
			warn.Index(i).Pushf("Reference could not be resolved: %s", ref)
			continue
		}
		p, err := paramcodec.DecodeParameter(refs.deref(node))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		if p.In == "body" || p.In == "formData" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// mergeParameters lets operation parameters replace path-level parameters
// with the same location and name. The result is ordered by location, then
// name.
func mergeParameters(shared, own []*paramcodec.Parameter) []*paramcodec.Parameter {
	byKey := make(map[string]*paramcodec.Parameter, len(shared)+len(own))
	for _, p := range shared {
		byKey[p.Key()] = p
	}
	for _, p := range own {
		byKey[p.Key()] = p
	}
	out := make([]*paramcodec.Parameter, 0, len(byKey))
	for _, key := range value.SortedKeys(byKey) {
		out = append(out, byKey[key])
	}
	return out
}

// basePaths returns the path prefixes requests may carry: the version 2
// basePath, or the path part of every version 3 server URL. Longer prefixes
// come first.
func (e *Enforcer) basePaths() []string {
	var prefixes []string
	if e.version.Major < 3 {
		if bp, _ := e.doc["basePath"].(string); bp != "" && bp != "/" {
			prefixes = append(prefixes, bp)
		}
	} else {
		servers, _ := e.doc["servers"].([]any)
		for _, item := range servers {
			server, _ := item.(map[string]any)
			url, _ := server["url"].(string)
			vars, _ := server["variables"].(map[string]any)
			for _, p := range serverPaths(url, vars) {
				if p != "" && p != "/" && !slices.Contains(prefixes, p) {
					prefixes = append(prefixes, p)
				}
			}
		}
	}
	sort.SliceStable(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	return prefixes
}

// Version returns the document's specification version.
func (e *Enforcer) Version() normalizer.Version {
	return e.version
}

// Document returns the normalized document. It must not be modified.
func (e *Enforcer) Document() map[string]any {
	return e.doc
}

// Warnings returns the warnings found while validating and preparing the
// document.
func (e *Enforcer) Warnings() *errtree.Tree {
	return e.warnings
}

// Paths returns the path templates in the order requests are matched.
func (e *Enforcer) Paths() []string {
	return e.paths.Templates()
}

// Random produces a value that satisfies s.
func (e *Enforcer) Random(s *schema.Schema) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Value(s)
}

// RandomFor decodes a schema object (as found in the document) and produces a
// value for it. Local references are followed; a top-level reference that
// cannot be resolved is an error.
func (e *Enforcer) RandomFor(node any) (any, error) {
	refs := &refResolver{root: e.doc}
	if _, ref, ok := refs.resolve(node); !ok {
		return nil, fmt.Errorf("enforcer: reference could not be resolved: %s", ref)
	}
	s, err := schema.Decode(refs.deref(node))
	if err != nil {
		return nil, err
	}
	return e.Random(s), nil
}
