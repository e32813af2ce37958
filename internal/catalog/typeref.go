package catalog

import (
	"fmt"
	"strings"
	"unicode"
)

// TypeRef is a reference to a type as written in a member, base or
// interface position, e.g. "Dictionary<string, List<Hit<T>>>[]".
type TypeRef struct {
	Name     string
	Args     []*TypeRef
	Rank     int
	Nullable bool

	// Def is the referenced definition. It stays nil for primitives,
	// generic parameters and types outside the catalog.
	Def *TypeNode
}

// String renders the reference back into catalog syntax.
func (r *TypeRef) String() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(r.Name)
	if len(r.Args) > 0 {
		sb.WriteByte('<')
		for i, a := range r.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte('>')
	}
	if r.Nullable {
		sb.WriteByte('?')
	}
	for i := 0; i < r.Rank; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

// SimpleName returns the name without its namespace qualifier.
func (r *TypeRef) SimpleName() string {
	if i := strings.LastIndexByte(r.Name, '.'); i >= 0 {
		return r.Name[i+1:]
	}
	return r.Name
}

// ParseTypeRef parses a type expression:
//
//	ref  := name [ "<" ref { "," ref } ">" ] [ "?" ] { "[]" }
//	name := ident { "." ident }
func ParseTypeRef(s string) (*TypeRef, error) {
	p := &refParser{src: s}
	ref, err := p.parseRef()
	if err != nil {
		return nil, fmt.Errorf("parse type %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("parse type %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return ref, nil
}

type refParser struct {
	src string
	pos int
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *refParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *refParser) parseRef() (*TypeRef, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c == '.' || c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			p.pos++
			continue
		}
		break
	}
	name := p.src[start:p.pos]
	if name == "" {
		return nil, fmt.Errorf("expected type name at offset %d", start)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.Contains(name, "..") {
		return nil, fmt.Errorf("malformed qualified name %q", name)
	}
	ref := &TypeRef{Name: name}

	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		for {
			arg, err := p.parseRef()
			if err != nil {
				return nil, err
			}
			ref.Args = append(ref.Args, arg)
			p.skipSpace()
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case '>':
				p.pos++
			default:
				return nil, fmt.Errorf("expected ',' or '>' at offset %d", p.pos)
			}
			break
		}
		p.skipSpace()
	}
	if p.peek() == '?' {
		ref.Nullable = true
		p.pos++
		p.skipSpace()
	}
	for strings.HasPrefix(p.src[p.pos:], "[]") {
		ref.Rank++
		p.pos += 2
		p.skipSpace()
	}
	return ref, nil
}
