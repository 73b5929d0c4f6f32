// Package paramcodec decodes raw parameter text into structured values, and
// encodes values back into parameter text, following the serialization rules
// of the two supported specification major versions.
//
// Version 2 arrays use a collection format per nesting level:
//
//	| Format | Separator                       |
//	|--------|---------------------------------|
//	| csv    | ,  (default)                    |
//	| ssv    | space                           |
//	| tsv    | tab                             |
//	| pipes  | |                               |
//	| multi  | one repeated query key per item |
//
// Version 3 parameters use a style and an explode flag. Defaults per
// location:
//
//	| Location | Styles                                          | Default |
//	|----------|-------------------------------------------------|---------|
//	| path     | simple, label, matrix                           | simple  |
//	| query    | form, spaceDelimited, pipeDelimited, deepObject | form    |
//	| header   | simple                                          | simple  |
//	| cookie   | form                                            | form    |
//
// explode defaults to true for form and false for every other style.
//
// After structural decoding every scalar is coerced using the schema's type
// and format. Failures are recorded in an error tree, one message per
// offending value, and the value is left out of the result.
package paramcodec

import (
	"strings"

	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/logging"
	"github.com/robhayesmba/openapi-enforcer/oaserrors"
	"github.com/robhayesmba/openapi-enforcer/schema"
)

// Codec decodes and encodes parameters for one specification major version.
// A Codec holds no per-call state and may be shared between goroutines.
type Codec struct {
	major  int
	logger logging.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for debug output.
func WithLogger(l logging.Logger) Option {
	return func(c *Codec) {
		c.logger = logging.OrNop(l)
	}
}

// NewCodec returns a codec for major version 2 or 3.
func NewCodec(major int, opts ...Option) *Codec {
	c := &Codec{major: major, logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Major returns the specification major version the codec follows.
func (c *Codec) Major() int {
	return c.major
}

// Decode decodes raw input for p. Problems are pushed to errs, which should
// be the error node for this parameter. The boolean reports whether a value
// was produced.
func (c *Codec) Decode(p *Parameter, raw Raw, errs *errtree.Tree) (any, bool) {
	d := &decoder{Codec: c, p: p, raw: raw, errs: errs}
	var (
		v  any
		ok bool
	)
	if c.major >= 3 {
		v, ok = d.decodeV3()
	} else {
		v, ok = d.decodeV2()
	}
	if errs.HasMessages() {
		c.logger.Debug("parameter decode failed", "parameter", p.Name, "in", p.In, "errors", errs.Count())
	}
	return v, ok
}

// decoder holds the state of one Decode call.
type decoder struct {
	*Codec
	p    *Parameter
	raw  Raw
	errs *errtree.Tree
}

// text unescapes one part of the input. Parts are unescaped only after the
// structural split so that encoded delimiters stay inside their value.
func (d *decoder) text(part string) (string, bool) {
	text, err := d.raw.unescape(part)
	if err != nil {
		d.errs.Pushf("Invalid percent-encoding. Received: %q", part)
		return "", false
	}
	return text, true
}

// split cuts text at sep. Escaped input may carry a whitespace separator
// percent-encoded, or as "+" in a query string.
func (d *decoder) split(text, sep string) []string {
	if d.raw.escaping != unescaped {
		switch sep {
		case " ":
			text = strings.ReplaceAll(text, "%20", " ")
			if d.raw.escaping == queryEscaped {
				text = strings.ReplaceAll(text, "+", " ")
			}
		case "\t":
			text = strings.ReplaceAll(text, "%09", "\t")
		}
	}
	return strings.Split(text, sep)
}

func (d *decoder) splitNonEmpty(text, sep string) []string {
	if text == "" {
		return nil
	}
	parts := d.split(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// coerce unescapes and converts a scalar, recording a failure on errs.
func (d *decoder) coerce(part string, s *schema.Schema) (any, bool) {
	text, ok := d.text(part)
	if !ok {
		return nil, false
	}
	v, err := Coerce(text, s)
	if err != nil {
		if de, ok := err.(*oaserrors.DecodeError); ok {
			d.errs.Push(de.Message)
		} else {
			d.errs.Push(err.Error())
		}
		return nil, false
	}
	return v, true
}

// coerceAll coerces each part, leaving out the ones that fail.
func (d *decoder) coerceAll(parts []string, items *schema.Schema) []any {
	out := make([]any, 0, len(parts))
	for _, part := range parts {
		if v, ok := d.coerce(part, items); ok {
			out = append(out, v)
		}
	}
	return out
}

func unsupported(errs *errtree.Tree, what string) {
	errs.Push(what + " is not supported")
}
