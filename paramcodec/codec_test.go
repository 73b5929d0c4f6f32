package paramcodec

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/internal/testutil"
	"github.com/robhayesmba/openapi-enforcer/schema"
)

func decode(t *testing.T, major int, p *Parameter, raw Raw) (any, bool, *errtree.Tree) {
	t.Helper()
	errs := errtree.New("")
	v, ok := NewCodec(major).Decode(p, raw, errs)
	return v, ok, errs
}

func numberSchema() *schema.Schema { return &schema.Schema{Type: "number"} }

func objectAB() *schema.Schema {
	return &schema.Schema{Type: "object", Properties: map[string]*schema.Schema{
		"a": numberSchema(),
		"b": numberSchema(),
	}}
}

func TestDecodeV2Primitives(t *testing.T) {
	tests := []struct {
		name string
		p    Parameter
		raw  string
		want any
	}{
		{"array of integers", Parameter{Type: "array", Items: &schema.Schema{Type: "integer"}}, "1,2,3", []any{int64(1), int64(2), int64(3)}},
		{"number", Parameter{Type: "number"}, "123", 123.0},
		{"boolean", Parameter{Type: "boolean"}, "false", false},
		{"date", Parameter{Type: "string", Format: "date"}, "2000-01-01", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"date-time", Parameter{Type: "string", Format: "date-time"}, "2000-01-01T01:02:03.456Z",
			time.Date(2000, 1, 1, 1, 2, 3, 456000000, time.UTC)},
		{"binary", Parameter{Type: "string", Format: "binary"}, "00000010", []byte{2}},
		{"byte", Parameter{Type: "string", Format: "byte"}, "aGVsbG8=", []byte("hello")},
		{"plain string", Parameter{Type: "string"}, "bob", "bob"},
		{"ssv", Parameter{Type: "array", CollectionFormat: "ssv", Items: &schema.Schema{Type: "string"}}, "a b", []any{"a", "b"}},
		{"tsv", Parameter{Type: "array", CollectionFormat: "tsv", Items: &schema.Schema{Type: "string"}}, "a\tb", []any{"a", "b"}},
		{"pipes", Parameter{Type: "array", CollectionFormat: "pipes", Items: &schema.Schema{Type: "string"}}, "a|b", []any{"a", "b"}},
		{"empty array", Parameter{Type: "array", Items: &schema.Schema{Type: "integer"}}, "", []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.p.Name, tt.p.In = "value", "path"
			v, ok, errs := decode(t, 2, &tt.p, Single(tt.raw))
			require.False(t, errs.HasMessages(), errs.String())
			assert.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestDecodeV2NestedArrays(t *testing.T) {
	p := &Parameter{
		Name:             "array",
		In:               "path",
		Type:             "array",
		CollectionFormat: "pipes",
		Items: &schema.Schema{
			Type: "array",
			Items: &schema.Schema{
				Type:             "array",
				CollectionFormat: "ssv",
				Items:            numberSchema(),
			},
		},
	}
	v, ok, errs := decode(t, 2, p, Single("1 2 3,4 5|6,7 8"))
	require.False(t, errs.HasMessages(), errs.String())
	assert.True(t, ok)
	assert.Equal(t, []any{
		[]any{[]any{1.0, 2.0, 3.0}, []any{4.0, 5.0}},
		[]any{[]any{6.0}, []any{7.0, 8.0}},
	}, v)
}

func TestDecodeV2Multi(t *testing.T) {
	p := &Parameter{Name: "item", In: "query", Type: "array", CollectionFormat: "multi", Items: numberSchema()}
	q, err := ParseQuery("item=1&item=2&item=3")
	require.NoError(t, err)

	v, ok, errs := decode(t, 2, p, FromQuery(q, "item"))
	require.False(t, errs.HasMessages())
	assert.True(t, ok)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, v)

	_, ok, errs = decode(t, 2, &Parameter{Name: "h", In: "header", Type: "array", CollectionFormat: "multi"}, Single("a"))
	assert.False(t, ok)
	assert.Equal(t, []string{`Collection format "multi" in header parameters is not supported`}, errs.Messages())
}

func TestDecodeV2RepeatedKeyUsesLast(t *testing.T) {
	p := &Parameter{Name: "n", In: "query", Type: "integer"}
	v, ok, _ := decode(t, 2, p, Multi([]string{"1", "2"}))
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)
}

func TestDecodeV2Unsupported(t *testing.T) {
	_, ok, errs := decode(t, 2, &Parameter{Name: "b", In: "body"}, Single("{}"))
	assert.False(t, ok)
	assert.Equal(t, []string{"Decoding body parameters is not supported"}, errs.Messages())

	_, ok, errs = decode(t, 2, &Parameter{Name: "o", In: "query", Type: "object"}, Single("a"))
	assert.False(t, ok)
	assert.Equal(t, []string{"Object values in version 2 parameters is not supported"}, errs.Messages())
}

func TestCoerceErrors(t *testing.T) {
	tests := []struct {
		name string
		p    Parameter
		raw  string
		want string
	}{
		{"integer", Parameter{Type: "integer"}, "1.5", `Expected an integer. Received: "1.5"`},
		{"number", Parameter{Type: "number"}, "abc", `Expected a number. Received: "abc"`},
		{"number rejects NaN", Parameter{Type: "number"}, "NaN", `Expected a number. Received: "NaN"`},
		{"boolean", Parameter{Type: "boolean"}, "TRUE", `Expected true or false. Received: "TRUE"`},
		{"date", Parameter{Type: "string", Format: "date"}, "2000-13-01", `Expected a date (YYYY-MM-DD). Received: "2000-13-01"`},
		{"date-time", Parameter{Type: "string", Format: "date-time"}, "2000-01-01", `Expected a date-time (RFC 3339). Received: "2000-01-01"`},
		{"binary", Parameter{Type: "string", Format: "binary"}, "0102", `Expected a binary octet string. Received: "0102"`},
		{"byte", Parameter{Type: "string", Format: "byte"}, "@@", `Expected a base64 encoded string. Received: "@@"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.p.Name, tt.p.In = "v", "query"
			v, ok, errs := decode(t, 2, &tt.p, Single(tt.raw))
			assert.False(t, ok)
			assert.Nil(t, v)
			assert.Equal(t, []string{tt.want}, errs.Messages())
		})
	}
}

func TestCoerceErrorOmitsOnlyBadItems(t *testing.T) {
	p := &Parameter{Name: "ids", In: "query", Type: "array", Items: &schema.Schema{Type: "integer"}}
	v, ok, errs := decode(t, 2, p, Single("1,x,3,y"))
	assert.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(3)}, v)
	assert.Equal(t, 2, errs.Count())
}

func TestDecodeV3Path(t *testing.T) {
	arrayOfNumbers := &schema.Schema{Type: "array", Items: numberSchema()}
	tests := []struct {
		name    string
		style   string
		explode bool
		s       *schema.Schema
		raw     string
		want    any
	}{
		{"simple primitive", "simple", false, numberSchema(), "5", 5.0},
		{"simple primitive explode", "simple", true, numberSchema(), "5", 5.0},
		{"simple array", "simple", false, arrayOfNumbers, "3,4,5", []any{3.0, 4.0, 5.0}},
		{"simple array explode", "simple", true, arrayOfNumbers, "3,4,5", []any{3.0, 4.0, 5.0}},
		{"simple object", "simple", false, objectAB(), "a,1,b,2", map[string]any{"a": 1.0, "b": 2.0}},
		{"simple object explode", "simple", true, objectAB(), "a=1,b=2", map[string]any{"a": 1.0, "b": 2.0}},
		{"label primitive", "label", false, numberSchema(), ".5", 5.0},
		{"label primitive explode", "label", true, numberSchema(), ".5", 5.0},
		{"label array", "label", false, arrayOfNumbers, ".3,4,5", []any{3.0, 4.0, 5.0}},
		{"label array explode", "label", true, arrayOfNumbers, ".3.4.5", []any{3.0, 4.0, 5.0}},
		{"label object", "label", false, objectAB(), ".a,1,b,2", map[string]any{"a": 1.0, "b": 2.0}},
		{"label object explode", "label", true, objectAB(), ".a=1.b=2", map[string]any{"a": 1.0, "b": 2.0}},
		{"matrix primitive", "matrix", false, numberSchema(), ";value=5", 5.0},
		{"matrix array", "matrix", false, arrayOfNumbers, ";value=3,4,5", []any{3.0, 4.0, 5.0}},
		{"matrix array explode", "matrix", true, arrayOfNumbers, ";value=3;value=4;value=5", []any{3.0, 4.0, 5.0}},
		{"matrix object", "matrix", false, objectAB(), ";value=a,1,b,2", map[string]any{"a": 1.0, "b": 2.0}},
		{"matrix object explode", "matrix", true, objectAB(), ";a=1;b=2", map[string]any{"a": 1.0, "b": 2.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parameter{Name: "value", In: "path", Required: true, Schema: tt.s, Style: tt.style, Explode: testutil.Ptr(tt.explode)}
			v, ok, errs := decode(t, 3, p, Single(tt.raw))
			require.False(t, errs.HasMessages(), errs.String())
			assert.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestDecodeV3PrefixErrors(t *testing.T) {
	p := &Parameter{Name: "value", In: "path", Schema: numberSchema(), Style: "label"}
	_, ok, errs := decode(t, 3, p, Single("5"))
	assert.False(t, ok)
	assert.Equal(t, []string{`Expected value to begin with ".". Received: "5"`}, errs.Messages())

	p = &Parameter{Name: "value", In: "path", Schema: numberSchema(), Style: "matrix"}
	_, ok, errs = decode(t, 3, p, Single(";other=5"))
	assert.False(t, ok)
	assert.Equal(t, []string{`Expected ";value=...". Received: ";other=5"`}, errs.Messages())
}

func TestDecodeV3Query(t *testing.T) {
	query := func(s string) url.Values {
		q, err := ParseQuery(s)
		require.NoError(t, err)
		return q
	}
	arrayOfIntegers := &schema.Schema{Type: "array", Items: &schema.Schema{Type: "integer"}}
	idObject := &schema.Schema{Type: "object", Properties: map[string]*schema.Schema{
		"role":      {Type: "string"},
		"firstName": {Type: "string"},
	}}

	tests := []struct {
		name    string
		style   string
		explode *bool
		s       *schema.Schema
		query   string
		want    any
	}{
		{"form primitive", "", nil, &schema.Schema{Type: "integer"}, "id=5", int64(5)},
		{"form array exploded by default", "", nil, arrayOfIntegers, "id=3&id=4&id=5", []any{int64(3), int64(4), int64(5)}},
		{"form array", "form", testutil.Ptr(false), arrayOfIntegers, "id=3,4,5", []any{int64(3), int64(4), int64(5)}},
		{"form object", "form", testutil.Ptr(false), idObject, "id=role,admin,firstName,Alex", map[string]any{"role": "admin", "firstName": "Alex"}},
		{"form object explode", "form", testutil.Ptr(true), idObject, "role=admin&firstName=Alex&other=1", map[string]any{"role": "admin", "firstName": "Alex"}},
		{"spaceDelimited array", "spaceDelimited", testutil.Ptr(false), arrayOfIntegers, "id=3%204%205", []any{int64(3), int64(4), int64(5)}},
		{"pipeDelimited array", "pipeDelimited", testutil.Ptr(false), arrayOfIntegers, "id=3|4|5", []any{int64(3), int64(4), int64(5)}},
		{"pipeDelimited array explode", "pipeDelimited", testutil.Ptr(true), arrayOfIntegers, "id=3&id=4", []any{int64(3), int64(4)}},
		{"deepObject", "deepObject", testutil.Ptr(true), idObject, "id[role]=admin&id[firstName]=Alex&x=1", map[string]any{"role": "admin", "firstName": "Alex"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parameter{Name: "id", In: "query", Schema: tt.s, Style: tt.style, Explode: tt.explode}
			v, ok, errs := decode(t, 3, p, FromQuery(query(tt.query), "id"))
			require.False(t, errs.HasMessages(), errs.String())
			assert.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestDecodeV3HeaderAndCookie(t *testing.T) {
	p := &Parameter{Name: "X-Ids", In: "header", Schema: &schema.Schema{Type: "array", Items: &schema.Schema{Type: "integer"}}}
	v, ok, errs := decode(t, 3, p, Single("1,2"))
	require.False(t, errs.HasMessages())
	assert.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2)}, v)

	p = &Parameter{Name: "session", In: "cookie", Schema: &schema.Schema{Type: "boolean"}}
	v, ok, _ = decode(t, 3, p, Single("true"))
	assert.True(t, ok)
	assert.Equal(t, true, v)
}

func TestDecodeV3Unsupported(t *testing.T) {
	tests := []struct {
		name string
		p    Parameter
		raw  Raw
		want string
	}{
		{"style not allowed for location", Parameter{In: "header", Style: "label", Schema: numberSchema()}, Single(".5"),
			`Style "label" for header parameters is not supported`},
		{"delimited primitive", Parameter{In: "query", Style: "spaceDelimited", Schema: numberSchema()}, Multi([]string{"5"}),
			`Style "spaceDelimited" with explode false for primitive values is not supported`},
		{"deepObject array", Parameter{In: "query", Style: "deepObject", Schema: &schema.Schema{Type: "array"}}, FromQuery(url.Values{}, "v"),
			`Style "deepObject" with explode false for array values is not supported`},
		{"exploded object outside a query", Parameter{In: "cookie", Schema: objectAB(), Explode: testutil.Ptr(true)}, Single("a=1"),
			`Style "form" with explode true for object values is not supported`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.p.Name = "v"
			_, ok, errs := decode(t, 3, &tt.p, tt.raw)
			assert.False(t, ok)
			assert.Equal(t, []string{tt.want}, errs.Messages())
		})
	}
}

func TestDecodeEscapedDelimiters(t *testing.T) {
	stringArray := &schema.Schema{Type: "array", Items: &schema.Schema{Type: "string"}}
	tests := []struct {
		name    string
		in      string
		style   string
		explode bool
		s       *schema.Schema
		raw     string
		want    any
	}{
		{"simple array", "path", "simple", false, stringArray, "a%2Cb,c", []any{"a,b", "c"}},
		{"simple object", "path", "simple", true, objectOfStrings(), "a=x%3Dy,b=1%2C2", map[string]any{"a": "x=y", "b": "1,2"}},
		{"label array explode", "path", "label", true, stringArray, ".a%2Eb.c", []any{"a.b", "c"}},
		{"matrix array", "path", "matrix", false, stringArray, ";v=a%2Cb,c%3Bd", []any{"a,b", "c;d"}},
		{"path keeps plus", "path", "simple", false, stringArray, "a+b,c", []any{"a+b", "c"}},
		{"form array", "query", "form", false, stringArray, "v=a%2Cb,c", []any{"a,b", "c"}},
		{"form array explode", "query", "form", true, stringArray, "v=a%2Cb&v=c", []any{"a,b", "c"}},
		{"pipeDelimited array", "query", "pipeDelimited", false, stringArray, "v=a%7Cb|c", []any{"a|b", "c"}},
		{"spaceDelimited array", "query", "spaceDelimited", false, stringArray, "v=a+b%20c", []any{"a", "b", "c"}},
		{"deepObject", "query", "deepObject", true, objectOfStrings(), "v%5Ba%5D=x%26y", map[string]any{"a": "x&y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parameter{Name: "v", In: tt.in, Schema: tt.s, Style: tt.style, Explode: testutil.Ptr(tt.explode)}
			raw := PathCapture(tt.raw)
			if tt.in == "query" {
				q, err := ParseQuery(tt.raw)
				require.NoError(t, err)
				raw = FromQuery(q, "v")
			}
			v, ok, errs := decode(t, 3, p, raw)
			require.False(t, errs.HasMessages(), errs.String())
			assert.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}

	t.Run("version 2 collection formats", func(t *testing.T) {
		p := &Parameter{Name: "v", In: "query", Type: "array", CollectionFormat: "pipes",
			Items: &schema.Schema{Type: "array", CollectionFormat: "ssv", Items: &schema.Schema{Type: "string"}}}
		q, err := ParseQuery("v=a%7Cb%20c|d")
		require.NoError(t, err)
		v, ok, errs := decode(t, 2, p, FromQuery(q, "v"))
		require.False(t, errs.HasMessages(), errs.String())
		assert.True(t, ok)
		assert.Equal(t, []any{[]any{"a|b", "c"}, []any{"d"}}, v)
	})

	t.Run("malformed escape in one item", func(t *testing.T) {
		p := &Parameter{Name: "v", In: "path", Schema: stringArray}
		v, ok, errs := decode(t, 3, p, PathCapture("a,%zz,c"))
		assert.True(t, ok)
		assert.Equal(t, []any{"a", "c"}, v)
		assert.Equal(t, []string{`Invalid percent-encoding. Received: "%zz"`}, errs.Messages())
	})

	t.Run("headers are not unescaped", func(t *testing.T) {
		p := &Parameter{Name: "X-V", In: "header", Schema: stringArray}
		v, _, errs := decode(t, 3, p, Single("a%2Cb,c"))
		require.False(t, errs.HasMessages())
		assert.Equal(t, []any{"a%2Cb", "c"}, v)
	})
}

func objectOfStrings() *schema.Schema {
	return &schema.Schema{Type: "object", AdditionalProperties: &schema.Schema{Type: "string"}}
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("a=1%2C2&a=3&b%5Bc%5D=x+y&&flag&e=")
	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"a":    {"1%2C2", "3"},
		"b[c]": {"x+y"},
		"flag": {""},
		"e":    {""},
	}, q)

	q, err = ParseQuery("ok=1&bad=%zz&k;x=2&next=2")
	assert.Error(t, err)
	assert.Equal(t, url.Values{"ok": {"1"}, "next": {"2"}}, q)

	q, err = ParseQuery("")
	require.NoError(t, err)
	assert.Empty(t, q)
}

func TestDecodeV3OddObject(t *testing.T) {
	p := &Parameter{Name: "v", In: "path", Schema: objectAB()}
	_, ok, errs := decode(t, 3, p, Single("a,1,b"))
	assert.False(t, ok)
	assert.Equal(t, []string{"Expected an even number of keys and values. Received: 3"}, errs.Messages())
}

func TestDecodeEmptyRaw(t *testing.T) {
	_, ok, errs := decode(t, 3, &Parameter{Name: "v", In: "query", Schema: numberSchema()}, Multi(nil))
	assert.False(t, ok)
	assert.False(t, errs.HasMessages())
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "simple", (&Parameter{In: "path"}).EffectiveStyle())
	assert.Equal(t, "simple", (&Parameter{In: "header"}).EffectiveStyle())
	assert.Equal(t, "form", (&Parameter{In: "query"}).EffectiveStyle())
	assert.Equal(t, "form", (&Parameter{In: "cookie"}).EffectiveStyle())
	assert.True(t, (&Parameter{In: "query"}).EffectiveExplode())
	assert.False(t, (&Parameter{In: "path"}).EffectiveExplode())
	assert.False(t, (&Parameter{In: "query", Explode: testutil.Ptr(false)}).EffectiveExplode())
	assert.Equal(t, "query:id", (&Parameter{In: "query", Name: "id"}).Key())
}

func TestDecodeParameter(t *testing.T) {
	p, err := DecodeParameter(map[string]any{
		"name":     "id",
		"in":       "path",
		"required": true,
		"schema":   map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
		"style":    "label",
		"explode":  true,
		"x-extra":  "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "id", p.Name)
	assert.True(t, p.Required)
	assert.Equal(t, "integer", p.Schema.Items.Type)
	require.NotNil(t, p.Explode)
	assert.True(t, *p.Explode)

	_, err = DecodeParameter(map[string]any{"required": "yes"})
	assert.Error(t, err)
}
