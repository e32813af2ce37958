package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBaseCycle is returned when a type inherits from itself.
var ErrBaseCycle = errors.New("base type cycle")

// Options names the types that get special treatment during resolution.
type Options struct {
	// RequestBase is the open generic base request type, e.g. "RequestBase".
	RequestBase string
	// ResponseBase is the shared base response type, e.g. "ResponseBase".
	ResponseBase string
	// RequestInterface is the generic is-a-request capability, e.g. "IRequest".
	RequestInterface string
	// ParameterBagInterface marks query-parameter types, e.g. "IRequestParameters".
	ParameterBagInterface string
}

// DefaultOptions returns the names used by the Elasticsearch client model.
func DefaultOptions() Options {
	return Options{
		RequestBase:           "RequestBase",
		ResponseBase:          "ResponseBase",
		RequestInterface:      "IRequest",
		ParameterBagInterface: "IRequestParameters",
	}
}

// Resolve builds the type graph described by doc.
func Resolve(doc *Document, opts Options) (*Catalog, error) {
	c := &Catalog{
		byID:              make(map[string]*TypeNode),
		byName:            make(map[string][]*TypeNode),
		RequestParameters: make(map[string][]string),
	}
	for k, v := range doc.RequestParameters {
		c.RequestParameters[k] = v
	}

	for i := range doc.Types {
		td := &doc.Types[i]
		if td.Name == "" {
			return nil, fmt.Errorf("type #%d has no name", i)
		}
		kind, err := ParseKind(td.Kind)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", td.Name, err)
		}
		t := &TypeNode{
			Name:       td.Name,
			Namespace:  td.Namespace,
			Kind:       kind,
			Generic:    td.Generic,
			Attributes: td.Attributes,
			Doc:        td.Doc,
			Ignore:     td.Ignore,
			Module:     td.Namespace,
		}
		if _, dup := c.byID[t.ID()]; dup {
			return nil, fmt.Errorf("duplicate type definition %s", t.ID())
		}
		c.byID[t.ID()] = t
		simple := typeID(t.Name, len(t.Generic))
		c.byName[simple] = append(c.byName[simple], t)
		c.Types = append(c.Types, t)
	}

	for i, t := range c.Types {
		if err := c.bindType(t, &doc.Types[i]); err != nil {
			return nil, fmt.Errorf("type %s: %w", t.FullName(), err)
		}
	}

	for _, t := range c.Types {
		if err := checkBaseChain(t); err != nil {
			return nil, err
		}
	}

	for _, t := range c.Types {
		switch {
		case t.Name == opts.RequestBase && len(t.Generic) > 0:
			t.Shape = ShapeRequestBase
		case t.Name == opts.ResponseBase:
			t.Shape = ShapeResponseBase
		}
		if opts.RequestInterface != "" {
			t.IsRequest = t.ImplementsGeneric(opts.RequestInterface)
		}
		if opts.ParameterBagInterface != "" {
			t.IsParameterBag = t.Implements(opts.ParameterBagInterface)
		}
	}

	if err := c.groupModules(doc.Modules); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) bindType(t *TypeNode, td *TypeDoc) error {
	scope := make(map[string]bool, len(t.Generic))
	for _, g := range t.Generic {
		scope[g] = true
	}

	if td.Base != "" {
		if t.Kind != KindClass {
			return fmt.Errorf("%s type cannot have base %s; list it under interfaces", t.Kind, td.Base)
		}
		ref, err := c.bindRef(td.Base, scope)
		if err != nil {
			return fmt.Errorf("base: %w", err)
		}
		t.Base = ref
	}
	for _, s := range td.Interfaces {
		ref, err := c.bindRef(s, scope)
		if err != nil {
			return fmt.Errorf("interface: %w", err)
		}
		t.Interfaces = append(t.Interfaces, ref)
	}

	var err error
	if t.Properties, err = c.bindMembers(t, td.Properties, scope); err != nil {
		return err
	}
	if t.Fields, err = c.bindMembers(t, td.Fields, scope); err != nil {
		return err
	}
	if t.Constants, err = c.bindMembers(t, td.Constants, scope); err != nil {
		return err
	}

	for i, vd := range td.Values {
		t.Values = append(t.Values, &EnumValueNode{
			Name:       vd.Name,
			Value:      vd.Value,
			Attributes: vd.Attributes,
			Doc:        vd.Doc,
			Ordinal:    i,
		})
	}
	return nil
}

func (c *Catalog) bindMembers(owner *TypeNode, docs []MemberDoc, scope map[string]bool) ([]*MemberNode, error) {
	members := make([]*MemberNode, 0, len(docs))
	for _, md := range docs {
		ref, err := c.bindRef(md.Type, scope)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", md.Name, err)
		}
		m := &MemberNode{
			Name:          md.Name,
			JSONName:      md.JSONName,
			Type:          ref,
			Attributes:    md.Attributes,
			Doc:           md.Doc,
			Ignore:        md.Ignore,
			Value:         md.Value,
			DeclaringType: owner,
		}
		if md.DeclaringType != "" {
			decl, err := c.lookupKey(md.DeclaringType)
			if err != nil {
				return nil, fmt.Errorf("member %s: declaring type: %w", md.Name, err)
			}
			if decl == nil {
				return nil, fmt.Errorf("member %s: unknown declaring type %q", md.Name, md.DeclaringType)
			}
			m.DeclaringType = decl
		}
		members = append(members, m)
	}
	return members, nil
}

func (c *Catalog) bindRef(s string, scope map[string]bool) (*TypeRef, error) {
	ref, err := ParseTypeRef(s)
	if err != nil {
		return nil, err
	}
	if err := c.bind(ref, scope); err != nil {
		return nil, err
	}
	return ref, nil
}

func (c *Catalog) bind(ref *TypeRef, scope map[string]bool) error {
	for _, a := range ref.Args {
		if err := c.bind(a, scope); err != nil {
			return err
		}
	}
	if len(ref.Args) == 0 && scope[ref.Name] {
		return nil
	}
	def, err := c.Lookup(ref.Name, len(ref.Args))
	if err != nil {
		return err
	}
	ref.Def = def
	return nil
}

// lookupKey resolves "Name", "Ns.Name", "Name`1" or "Name<T>".
func (c *Catalog) lookupKey(key string) (*TypeNode, error) {
	if name, arity, ok := strings.Cut(key, "`"); ok {
		n, err := strconv.Atoi(arity)
		if err != nil {
			return nil, fmt.Errorf("malformed type key %q", key)
		}
		return c.Lookup(name, n)
	}
	ref, err := ParseTypeRef(key)
	if err != nil {
		return nil, err
	}
	return c.Lookup(ref.Name, len(ref.Args))
}

func checkBaseChain(t *TypeNode) error {
	seen := map[*TypeNode]bool{t: true}
	path := []string{t.FullName()}
	for cur := t; cur.Base != nil && cur.Base.Def != nil; cur = cur.Base.Def {
		next := cur.Base.Def
		path = append(path, next.FullName())
		if seen[next] {
			return fmt.Errorf("%w: %s", ErrBaseCycle, strings.Join(path, " -> "))
		}
		seen[next] = true
	}
	return nil
}

func (c *Catalog) groupModules(docs []ModuleDoc) error {
	if len(docs) == 0 {
		index := map[string]*Module{}
		for _, t := range c.Types {
			m, ok := index[t.Namespace]
			if !ok {
				m = &Module{Name: t.Namespace}
				index[t.Namespace] = m
				c.Modules = append(c.Modules, m)
			}
			m.Types = append(m.Types, t)
		}
		return nil
	}

	assigned := map[*TypeNode]bool{}
	for _, md := range docs {
		m := &Module{Name: md.Name}
		for _, key := range md.Types {
			t, err := c.lookupKey(key)
			if err != nil {
				return fmt.Errorf("module %s: %w", md.Name, err)
			}
			if t == nil {
				return fmt.Errorf("module %s: unknown type %q", md.Name, key)
			}
			if !assigned[t] {
				t.Module = md.Name
				assigned[t] = true
			}
			m.Types = append(m.Types, t)
		}
		c.Modules = append(c.Modules, m)
	}
	return nil
}
