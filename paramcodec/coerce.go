package paramcodec

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"time"

	"github.com/robhayesmba/openapi-enforcer/oaserrors"
	"github.com/robhayesmba/openapi-enforcer/schema"
)

var (
	rxNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
	rxBits   = regexp.MustCompile(`^(?:[01]{8})*$`)
)

// Coerce converts one raw scalar into the type described by s. A nil schema
// or a schema without a type keeps the raw string. Failures are returned as
// *oaserrors.DecodeError.
func Coerce(text string, s *schema.Schema) (any, error) {
	switch s.EffectiveType() {
	case "integer":
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, coerceError(text, "Expected an integer", err)
		}
		return i, nil
	case "number":
		if !rxNumber.MatchString(text) {
			return nil, coerceError(text, "Expected a number", nil)
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, coerceError(text, "Expected a number", err)
		}
		return f, nil
	case "boolean":
		switch text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, coerceError(text, "Expected true or false", nil)
	case "array", "object":
		return nil, coerceError(text, "Expected a primitive schema", nil)
	case "string":
		return coerceString(text, s.Format)
	default:
		return text, nil
	}
}

func coerceString(text, format string) (any, error) {
	switch format {
	case "date":
		d, err := time.ParseInLocation("2006-01-02", text, time.UTC)
		if err != nil {
			return nil, coerceError(text, "Expected a date (YYYY-MM-DD)", err)
		}
		return d, nil
	case "date-time":
		d, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return nil, coerceError(text, "Expected a date-time (RFC 3339)", err)
		}
		return d.UTC(), nil
	case "binary":
		b, ok := decodeBits(text)
		if !ok {
			return nil, coerceError(text, "Expected a binary octet string", nil)
		}
		return b, nil
	case "byte":
		b, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, coerceError(text, "Expected a base64 encoded string", err)
		}
		return b, nil
	default:
		return text, nil
	}
}

// decodeBits turns "0000001000000011" into []byte{2, 3}.
func decodeBits(text string) ([]byte, bool) {
	if !rxBits.MatchString(text) {
		return nil, false
	}
	out := make([]byte, len(text)/8)
	for i := range out {
		n, err := strconv.ParseUint(text[i*8:i*8+8], 2, 8)
		if err != nil {
			return nil, false
		}
		out[i] = byte(n)
	}
	return out, true
}

// encodeBits is the inverse of decodeBits.
func encodeBits(b []byte) string {
	buf := make([]byte, 0, len(b)*8)
	for _, c := range b {
		for bit := 7; bit >= 0; bit-- {
			buf = append(buf, '0'+(c>>uint(bit))&1)
		}
	}
	return string(buf)
}

func coerceError(text, msg string, cause error) error {
	return &oaserrors.DecodeError{Value: text, Message: msg + ". Received: " + strconv.Quote(text), Cause: cause}
}
