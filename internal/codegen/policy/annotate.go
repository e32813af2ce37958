package policy

import (
	"strings"

	"github.com/Alia5/tsdecl/internal/catalog"
	"github.com/Alia5/tsdecl/internal/codegen/emitter"
)

const (
	customConverterComment = "type has a custom json converter defined"
	proxiesQueryComment    = "mapped on body but might only proxy to request querystring"
)

// Annotation is the set of advisory comments attached to a type or member.
// Advisories are documentation only and never change the declared shape.
type Annotation uint8

const (
	AnnotationNone Annotation = 0
	// AnnotationCustomConverter: the wire format may differ from the declared shape.
	AnnotationCustomConverter Annotation = 1 << (iota - 1)
	// AnnotationProxiesQueryString: the member is declared on the body but
	// may only be sent as a query string value.
	AnnotationProxiesQueryString
)

func (a Annotation) Has(f Annotation) bool { return a&f == f && f != 0 }

type annotationKey struct {
	typeID string
	member string
}

// Annotation returns the precomputed advisories for a type (member == "")
// or one of its properties or fields.
func (p *Policy) Annotation(t *catalog.TypeNode, member string) Annotation {
	return p.annotations[annotationKey{typeID: t.ID(), member: member}]
}

func (p *Policy) buildAnnotations() map[annotationKey]Annotation {
	out := make(map[annotationKey]Annotation)
	for _, t := range p.cat.Types {
		if t.Kind == catalog.KindEnum {
			continue
		}
		if a := p.typeAnnotation(t); a != AnnotationNone {
			out[annotationKey{typeID: t.ID()}] = a
		}
		for _, members := range [][]*catalog.MemberNode{t.Properties, t.Fields} {
			for _, m := range members {
				if a := p.memberAnnotation(m); a != AnnotationNone {
					out[annotationKey{typeID: t.ID(), member: m.Name}] = a
				}
			}
		}
	}
	return out
}

func (p *Policy) typeAnnotation(t *catalog.TypeNode) Annotation {
	if c := publicContract(t); c != nil && c.HasAttribute(p.cfg.ConverterAttribute) {
		return AnnotationCustomConverter
	}
	if t.HasAttribute(p.cfg.ConverterAttribute) {
		return AnnotationCustomConverter
	}
	return AnnotationNone
}

func (p *Policy) memberAnnotation(m *catalog.MemberNode) Annotation {
	decl := m.DeclaringType
	a := AnnotationNone
	if strings.Contains(decl.Name, "Request") && p.cat.HasQueryParameter(decl.Name, m.Name) {
		a |= AnnotationProxiesQueryString
	}
	if c := publicContract(decl); c != nil {
		if im := c.Property(m.Name); im != nil && im.HasAttribute(p.cfg.ConverterAttribute) {
			return a | AnnotationCustomConverter
		}
	}
	if m.HasAttribute(p.cfg.ConverterAttribute) {
		a |= AnnotationCustomConverter
	}
	return a
}

// publicContract finds the interface named "I" + the type's name with the
// same generic arity among everything t implements.
func publicContract(t *catalog.TypeNode) *catalog.TypeNode {
	want := "I" + t.Name
	var found *catalog.TypeNode
	seen := map[*catalog.TypeNode]bool{}
	var walk func(n *catalog.TypeNode)
	walk = func(n *catalog.TypeNode) {
		if n == nil || seen[n] || found != nil {
			return
		}
		seen[n] = true
		for _, i := range n.Interfaces {
			if i.Def != nil && i.Def.Name == want && len(i.Def.Generic) == len(t.Generic) {
				found = i.Def
				return
			}
		}
		for _, i := range n.Interfaces {
			walk(i.Def)
		}
		if n.Base != nil {
			walk(n.Base.Def)
		}
	}
	walk(t)
	return found
}

func (p *Policy) writeTypeAdvisories(b *emitter.Builder, t *catalog.TypeNode) {
	if p.Annotation(t, "").Has(AnnotationCustomConverter) {
		emitter.WriteComment(b, customConverterComment)
	}
}

func (p *Policy) writeMemberAdvisories(b *emitter.Builder, owner *catalog.TypeNode, m *catalog.MemberNode) {
	a := p.Annotation(owner, m.Name)
	if a.Has(AnnotationProxiesQueryString) {
		emitter.WriteComment(b, proxiesQueryComment)
	}
	if a.Has(AnnotationCustomConverter) {
		emitter.WriteComment(b, customConverterComment)
	}
}
