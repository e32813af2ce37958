package emitter

import (
	"encoding/json"
	"testing"

	"github.com/Alia5/tsdecl/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(t *testing.T, s string) *catalog.TypeRef {
	t.Helper()
	r, err := catalog.ParseTypeRef(s)
	require.NoError(t, err)
	return r
}

func TestTypeExprMapping(t *testing.T) {
	e := New(Config{
		Renames:    map[string]string{"KeyValuePair": "Map"},
		Converters: map[string]string{"Time": "string | number"},
	})
	tests := map[string]string{
		"string":                                "string",
		"int?":                                  "number",
		"DateTimeOffset":                        "Date",
		"object":                                "any",
		"Nullable<long>":                        "number",
		"List<string>":                          "string[]",
		"IEnumerable<Hit<T>>":                   "Hit<T>[]",
		"Dictionary<string, object>":            "Record<string, any>",
		"IDictionary<string, int[]>":            "Record<string, number[]>",
		"KeyValuePair<string, double>":          "Map<string, number>",
		"Time":                                  "string | number",
		"List<Time>":                            "(string | number)[]",
		"int[][]":                               "number[][]",
		"T":                                     "T",
		"System.Collections.Generic.List<bool>": "boolean[]",
	}
	for in, want := range tests {
		assert.Equal(t, want, e.TypeExpr(ref(t, in), ""), in)
	}
	assert.Equal(t, "any", e.TypeExpr(nil, ""))
}

func TestTypeExprQualifiesAcrossModules(t *testing.T) {
	field := &catalog.TypeNode{Name: "Field", Namespace: "Nest", Module: "Nest"}
	r := &catalog.TypeRef{Name: "Field", Def: field}

	flat := New(Config{})
	assert.Equal(t, "Field", flat.TypeExpr(r, "Elasticsearch.Net"))

	ns := New(Config{Namespaces: true})
	assert.Equal(t, "Field", ns.TypeExpr(r, "Nest"))
	assert.Equal(t, "Nest.Field", ns.TypeExpr(r, "Elasticsearch.Net"))
	assert.Equal(t, "Nest.Field[]", ns.TypeExpr(&catalog.TypeRef{Name: "Field", Def: field, Rank: 1}, "Other"))
}

func TestNaming(t *testing.T) {
	e := New(Config{Renames: map[string]string{"KeyValuePair": "Map"}, Converters: map[string]string{"Time": "string"}})

	kv := &catalog.TypeNode{Name: "KeyValuePair", Generic: []string{"TKey", "TValue"}}
	assert.True(t, e.IsRenamed("KeyValuePair"))
	assert.False(t, e.IsRenamed("Map"))
	assert.Equal(t, "Map", e.OutputName(kv))
	assert.Equal(t, "Map<TKey, TValue>", e.TypeName(kv))

	assert.True(t, e.IsConverterRegistered(&catalog.TypeNode{Name: "Time"}))
	assert.False(t, e.IsConverterRegistered(kv))

	assert.Equal(t, "size", e.MemberName(&catalog.MemberNode{Name: "Size", JSONName: "size"}))
	assert.Equal(t, "Size", e.MemberName(&catalog.MemberNode{Name: "Size"}))

	assert.False(t, e.Visible(kv))
	assert.True(t, New(Config{Export: true}).Visible(kv))
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{"a\"b", `"a\"b"`},
		{true, "true"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint64(9), "9"},
		{float64(3), "3"},
		{1.5, "1.5"},
		{json.Number("18446744073709551615"), "18446744073709551615"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Literal(tt.in))
	}
}

func TestBeginModule(t *testing.T) {
	m := &catalog.Module{Name: "Nest"}

	b := NewBuilder("  ")
	end := New(Config{Namespaces: true}).BeginModule(b, m)
	b.AppendLineIndented("interface A {}")
	end()
	assert.Equal(t, "declare namespace Nest {\n  interface A {}\n}\n", b.String())

	b = NewBuilder("  ")
	end = New(Config{}).BeginModule(b, m)
	b.AppendLineIndented("interface A {}")
	end()
	assert.Equal(t, "interface A {}\n", b.String())
}
