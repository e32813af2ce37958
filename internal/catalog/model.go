// Package catalog holds the backend type model that declarations are generated from.
//
// A catalog is decoded from a JSON, YAML or TOML document and then resolved
// into a graph: type references are bound to their definitions, modules are
// grouped and every type is tagged with the special shape it has (if any).
// After Resolve returns, the graph is read-only.
package catalog

import (
	"fmt"
	"strings"
)

// Kind is the declaration category of a type.
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps the catalog spelling of a kind. An empty string means class.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "class", "struct":
		return KindClass, nil
	case "interface":
		return KindInterface, nil
	case "enum":
		return KindEnum, nil
	default:
		return 0, fmt.Errorf("unknown type kind %q", s)
	}
}

// Shape tags the handful of base types that get special treatment when
// declarations are remapped.
type Shape int

const (
	ShapeOther Shape = iota
	// ShapeRequestBase is the open generic base request type.
	ShapeRequestBase
	// ShapeResponseBase is the shared base response type.
	ShapeResponseBase
	ShapeRequestMarker
	ShapeResponseMarker
)

func (s Shape) String() string {
	switch s {
	case ShapeOther:
		return "other"
	case ShapeRequestBase:
		return "request-base"
	case ShapeResponseBase:
		return "response-base"
	case ShapeRequestMarker:
		return "request-marker"
	case ShapeResponseMarker:
		return "response-marker"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Attribute is a piece of source metadata attached to a type, member or enum value.
type Attribute struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty" toml:"value"`
}

// TypeNode describes one backend type.
type TypeNode struct {
	Name       string
	Namespace  string
	Kind       Kind
	Generic    []string
	Base       *TypeRef
	Interfaces []*TypeRef
	Properties []*MemberNode
	Fields     []*MemberNode
	Constants  []*MemberNode
	Values     []*EnumValueNode
	Attributes []Attribute
	Doc        string
	Ignore     bool

	// Module is the name of the module the type originates from.
	Module string

	Shape          Shape
	IsRequest      bool
	IsParameterBag bool
}

// FullName is the namespace-qualified name, or the bare name for types
// without a namespace.
func (t *TypeNode) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// ID identifies a type definition uniquely: generic definitions of the same
// name but different arity are different types.
func (t *TypeNode) ID() string {
	return typeID(t.FullName(), len(t.Generic))
}

func (t *TypeNode) String() string { return t.ID() }

// HasAttribute reports whether the type carries an attribute with the given name.
func (t *TypeNode) HasAttribute(name string) bool {
	return hasAttribute(t.Attributes, name)
}

// Property returns the property or field with the given name.
func (t *TypeNode) Property(name string) *MemberNode {
	for _, m := range t.Properties {
		if m.Name == name {
			return m
		}
	}
	for _, m := range t.Fields {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Implements reports whether t is, or transitively implements or inherits
// from, a type named name. Only the simple name is compared, so any
// instantiation of a generic definition matches.
func (t *TypeNode) Implements(name string) bool {
	return t.implements(func(n string, arity int) bool { return n == name }, map[*TypeNode]bool{})
}

// ImplementsGeneric is like Implements but only matches generic definitions
// or instantiations of name.
func (t *TypeNode) ImplementsGeneric(name string) bool {
	return t.implements(func(n string, arity int) bool { return n == name && arity > 0 }, map[*TypeNode]bool{})
}

func (t *TypeNode) implements(match func(name string, arity int) bool, seen map[*TypeNode]bool) bool {
	if t == nil || seen[t] {
		return false
	}
	seen[t] = true
	if match(t.Name, len(t.Generic)) {
		return true
	}
	refs := t.Interfaces
	if t.Base != nil {
		refs = append([]*TypeRef{t.Base}, refs...)
	}
	for _, r := range refs {
		if r.Def == nil {
			if match(r.SimpleName(), len(r.Args)) {
				return true
			}
			continue
		}
		if r.Def.implements(match, seen) {
			return true
		}
	}
	return false
}

// MemberNode is a property, field or constant of a type.
type MemberNode struct {
	Name       string
	JSONName   string
	Type       *TypeRef
	Attributes []Attribute
	Doc        string
	Ignore     bool
	// Value is the literal value of a constant.
	Value any

	DeclaringType *TypeNode
}

// HasAttribute reports whether the member carries an attribute with the given name.
func (m *MemberNode) HasAttribute(name string) bool {
	return hasAttribute(m.Attributes, name)
}

// EnumValueNode is one member of an enum.
type EnumValueNode struct {
	Name       string
	Value      any
	Attributes []Attribute
	Doc        string
	Ordinal    int
}

// Attribute returns the value of the named attribute and whether it was present.
func (v *EnumValueNode) Attribute(name string) (string, bool) {
	for _, a := range v.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Module is a namespace-like group of types emitted together.
type Module struct {
	Name  string
	Types []*TypeNode
}

// Enums returns the enum-kind types of the module in order.
func (m *Module) Enums() []*TypeNode {
	var out []*TypeNode
	for _, t := range m.Types {
		if t.Kind == KindEnum {
			out = append(out, t)
		}
	}
	return out
}

// Classes returns the class and interface kind types of the module in order.
func (m *Module) Classes() []*TypeNode {
	var out []*TypeNode
	for _, t := range m.Types {
		if t.Kind != KindEnum {
			out = append(out, t)
		}
	}
	return out
}

// Catalog is a resolved type graph.
type Catalog struct {
	Types   []*TypeNode
	Modules []*Module
	// RequestParameters maps non-generic request type names to the names of
	// the query-parameter methods of their parameter type.
	RequestParameters map[string][]string

	byID   map[string]*TypeNode
	byName map[string][]*TypeNode
}

// Lookup finds a type by qualified or simple name and generic arity.
func (c *Catalog) Lookup(name string, arity int) (*TypeNode, error) {
	if t, ok := c.byID[typeID(name, arity)]; ok {
		return t, nil
	}
	candidates := c.byName[typeID(name, arity)]
	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, t := range candidates {
			names[i] = t.FullName()
		}
		return nil, fmt.Errorf("ambiguous type reference %q: matches %s", name, strings.Join(names, ", "))
	}
}

// HasQueryParameter reports whether the request parameters recorded for the
// request type name expose a method with the given name.
func (c *Catalog) HasQueryParameter(requestType, method string) bool {
	for _, m := range c.RequestParameters[requestType] {
		if m == method {
			return true
		}
	}
	return false
}

func typeID(name string, arity int) string {
	if arity == 0 {
		return name
	}
	return fmt.Sprintf("%s`%d", name, arity)
}

func hasAttribute(attrs []Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}
