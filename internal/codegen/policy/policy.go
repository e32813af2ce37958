// Package policy decides which catalog types become TypeScript declarations
// and in what shape. It filters types, collapses the generic request and
// response base hierarchies onto two marker declarations, attaches advisory
// comments and performs the structural emission of interfaces, enums and
// constant holders on top of the emitter package.
package policy

import (
	"log/slog"
	"strings"

	"github.com/Alia5/tsdecl/internal/catalog"
	"github.com/Alia5/tsdecl/internal/codegen/emitter"
)

// Config holds the names the policy matches against.
type Config struct {
	// RootNamespaces are the namespaces whose types are part of the public
	// model. Types outside them leak in through generics or base classes and
	// are not emitted.
	RootNamespaces []string
	// RequestMarker and ResponseMarker name the placeholder declarations the
	// request and response base hierarchies collapse onto.
	RequestMarker  string
	ResponseMarker string
	// ConverterAttribute marks types and members with custom serialization.
	ConverterAttribute string
	// AliasAttribute carries the serialized name of an enum value.
	AliasAttribute string
}

// DefaultConfig returns the settings for the Elasticsearch client model.
func DefaultConfig() Config {
	return Config{
		RootNamespaces:     []string{"Nest", "Elasticsearch.Net"},
		RequestMarker:      "Request",
		ResponseMarker:     "Response",
		ConverterAttribute: "JsonConverter",
		AliasAttribute:     "EnumMember",
	}
}

// Policy is built once per catalog and is read-only afterwards. Mutable
// per-generation state lives in Run.
type Policy struct {
	cfg    Config
	cat    *catalog.Catalog
	em     *emitter.Emitter
	logger *slog.Logger

	requestMarker  *catalog.TypeNode
	responseMarker *catalog.TypeNode

	annotations map[annotationKey]Annotation
}

func New(logger *slog.Logger, cat *catalog.Catalog, em *emitter.Emitter, cfg Config) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Policy{
		cfg:    cfg,
		cat:    cat,
		em:     em,
		logger: logger,
	}
	p.requestMarker = p.newMarker(cfg.RequestMarker, catalog.ShapeRequestMarker, catalog.ShapeRequestBase)
	p.responseMarker = p.newMarker(cfg.ResponseMarker, catalog.ShapeResponseMarker, catalog.ShapeResponseBase)
	p.annotations = p.buildAnnotations()
	return p
}

// newMarker creates a member-less placeholder that lives where the base type
// it replaces lives, or in the first root namespace when the catalog has none.
func (p *Policy) newMarker(name string, shape, replaces catalog.Shape) *catalog.TypeNode {
	m := &catalog.TypeNode{Name: name, Kind: catalog.KindClass, Shape: shape}
	if len(p.cfg.RootNamespaces) > 0 {
		m.Namespace = p.cfg.RootNamespaces[0]
		m.Module = m.Namespace
	}
	for _, t := range p.cat.Types {
		if t.Shape == replaces {
			m.Namespace = t.Namespace
			m.Module = t.Module
			break
		}
	}
	return m
}

// RequestMarker returns the placeholder request declaration.
func (p *Policy) RequestMarker() *catalog.TypeNode { return p.requestMarker }

// ResponseMarker returns the placeholder response declaration.
func (p *Policy) ResponseMarker() *catalog.TypeNode { return p.responseMarker }

// ShouldEmit decides whether a class or interface kind type is declared.
// Renamed types always are; parameter bags and types from foreign
// namespaces never are.
func (p *Policy) ShouldEmit(t *catalog.TypeNode) bool {
	if p.em.IsRenamed(t.Name) {
		return true
	}
	if t.IsParameterBag {
		return false
	}
	return !p.isForeign(t)
}

// ShouldEmitEnum decides whether an enum is declared. Only the namespace
// check applies.
func (p *Policy) ShouldEmitEnum(t *catalog.TypeNode) bool {
	return !p.isForeign(t)
}

func (p *Policy) isForeign(t *catalog.TypeNode) bool {
	name := t.FullName()
	if name == "" {
		return false
	}
	for _, root := range p.cfg.RootNamespaces {
		if strings.HasPrefix(name, root+".") {
			return false
		}
	}
	return true
}

// Remap collapses the request and response base hierarchies. The first
// matching rule wins:
//  1. the open generic base request becomes the request marker,
//  2. the base response becomes the response marker,
//  3. a type whose base is a request gets the request marker as base,
//  4. a type whose base is the base response gets the response marker as base.
//
// The catalog is never modified; rules 3 and 4 return a shallow copy.
func (p *Policy) Remap(t *catalog.TypeNode) *catalog.TypeNode {
	switch t.Shape {
	case catalog.ShapeRequestBase:
		return p.requestMarker
	case catalog.ShapeResponseBase:
		return p.responseMarker
	case catalog.ShapeRequestMarker, catalog.ShapeResponseMarker:
		return t
	}
	if t.Base == nil || t.Base.Def == nil {
		return t
	}
	switch {
	case t.Base.Def.IsRequest:
		return withBase(t, p.requestMarker)
	case t.Base.Def.Shape == catalog.ShapeResponseBase:
		return withBase(t, p.responseMarker)
	}
	return t
}

func withBase(t, base *catalog.TypeNode) *catalog.TypeNode {
	c := *t
	c.Base = &catalog.TypeRef{Name: base.Name, Def: base}
	return &c
}

// declared reports whether a reference target will have a declaration of
// its own in the output.
func (p *Policy) declared(def *catalog.TypeNode) bool {
	if def == nil {
		return false
	}
	switch def.Shape {
	case catalog.ShapeRequestMarker, catalog.ShapeResponseMarker:
		return true
	}
	if def.Ignore || p.em.IsConverterRegistered(def) {
		return false
	}
	if def.Kind == catalog.KindEnum {
		return p.ShouldEmitEnum(def)
	}
	return p.ShouldEmit(def)
}

// baseRef is the base type reference written in the extends clause, or nil.
func (p *Policy) baseRef(t *catalog.TypeNode) *catalog.TypeRef {
	if t.Base == nil || !p.declared(t.Base.Def) {
		return nil
	}
	return t.Base
}

// interfaceRefs lists the implemented interfaces written in the extends clause.
func (p *Policy) interfaceRefs(t *catalog.TypeNode) []*catalog.TypeRef {
	var refs []*catalog.TypeRef
	for _, i := range t.Interfaces {
		if p.declared(i.Def) {
			refs = append(refs, i)
		}
	}
	return refs
}
