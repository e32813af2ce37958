package policy

import (
	"testing"

	"github.com/Alia5/tsdecl/internal/catalog"
	"github.com/Alia5/tsdecl/internal/codegen/emitter"

	"github.com/stretchr/testify/assert"
)

var jsonConverter = []catalog.Attribute{{Name: "JsonConverter", Value: "QueryConverter"}}

func advisoryDocument() *catalog.Document {
	return &catalog.Document{
		Types: []catalog.TypeDoc{
			{Name: "IQuery", Namespace: "Nest", Kind: "interface",
				Properties: []catalog.MemberDoc{{Name: "Field", Type: "string", Attributes: jsonConverter}}},
			{Name: "Query", Namespace: "Nest", Interfaces: []string{"IQuery"},
				Properties: []catalog.MemberDoc{{Name: "Field", Type: "string"}, {Name: "Boost", Type: "double"}}},
			{Name: "IGeoShape", Namespace: "Nest", Kind: "interface", Attributes: jsonConverter},
			{Name: "GeoShape", Namespace: "Nest", Interfaces: []string{"IGeoShape"}},
			{Name: "GeoPoint", Namespace: "Nest", Attributes: jsonConverter},
			{Name: "SearchRequest", Namespace: "Nest", Properties: []catalog.MemberDoc{
				{Name: "Routing", Type: "string", Attributes: jsonConverter},
				{Name: "Size", Type: "int"},
				{Name: "Query", Type: "Query"},
			}},
			{Name: "SearchDescriptor", Namespace: "Nest", Properties: []catalog.MemberDoc{{Name: "Routing", Type: "string"}}},
		},
		RequestParameters: map[string][]string{
			"SearchRequest":    {"Routing", "Size"},
			"SearchDescriptor": {"Routing"},
		},
	}
}

func TestAnnotations(t *testing.T) {
	p := newTestPolicy(t, advisoryDocument(), emitter.Config{})

	query := lookup(t, p, "Query", 0)
	assert.Equal(t, AnnotationCustomConverter, p.Annotation(query, "Field"), "public contract member")
	assert.Equal(t, AnnotationNone, p.Annotation(query, "Boost"))
	assert.Equal(t, AnnotationNone, p.Annotation(query, ""))

	assert.Equal(t, AnnotationCustomConverter, p.Annotation(lookup(t, p, "GeoShape", 0), ""), "public contract type")
	assert.Equal(t, AnnotationCustomConverter, p.Annotation(lookup(t, p, "GeoPoint", 0), ""))

	search := lookup(t, p, "SearchRequest", 0)
	routing := p.Annotation(search, "Routing")
	assert.True(t, routing.Has(AnnotationProxiesQueryString))
	assert.True(t, routing.Has(AnnotationCustomConverter))
	assert.Equal(t, AnnotationProxiesQueryString, p.Annotation(search, "Size"))
	assert.Equal(t, AnnotationNone, p.Annotation(search, "Query"))

	assert.Equal(t, AnnotationNone, p.Annotation(lookup(t, p, "SearchDescriptor", 0), "Routing"), "name lacks the request marker")
	assert.False(t, AnnotationNone.Has(AnnotationNone))
}

func TestAnnotationsSurviveRemap(t *testing.T) {
	doc := requestDocument()
	doc.Types[4].Name = "FooRequest"
	doc.RequestParameters = map[string][]string{"FooRequest": {"Bar"}}
	p := newTestPolicy(t, doc, emitter.Config{})

	foo := lookup(t, p, "FooRequest", 0)
	remapped := p.Remap(foo)
	assert.NotSame(t, foo, remapped)
	assert.Equal(t, AnnotationProxiesQueryString, p.Annotation(remapped, "Bar"))

	r := p.NewRun()
	r.EmitInterface(remapped, emitter.OutputProperties)
	assert.Equal(t, "interface FooRequest extends Request {\n  /** "+proxiesQueryComment+" */\n  Bar: string;\n}\n", r.String())
}

func TestEmitAdvisories(t *testing.T) {
	p := newTestPolicy(t, advisoryDocument(), emitter.Config{})

	r := p.NewRun()
	r.EmitInterface(lookup(t, p, "GeoPoint", 0), emitter.OutputAll)
	r.EmitInterface(lookup(t, p, "SearchRequest", 0), emitter.OutputAll)
	r.EmitInterface(lookup(t, p, "Query", 0), emitter.OutputAll)

	want := "/** type has a custom json converter defined */\n" +
		"interface GeoPoint {\n}\n" +
		"interface SearchRequest {\n" +
		"  /** mapped on body but might only proxy to request querystring */\n" +
		"  /** type has a custom json converter defined */\n" +
		"  Routing: string;\n" +
		"  /** mapped on body but might only proxy to request querystring */\n" +
		"  Size: number;\n" +
		"  Query: Query;\n" +
		"}\n" +
		"interface Query extends IQuery {\n" +
		"  /** type has a custom json converter defined */\n" +
		"  Field: string;\n" +
		"  Boost: number;\n" +
		"}\n"
	assert.Equal(t, want, r.String())
}
