package policy

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/Alia5/tsdecl/internal/catalog"
	"github.com/Alia5/tsdecl/internal/codegen/emitter"
)

// Declaration is one unit of output planned for a module. The set of
// implementations is closed: InterfaceDecl, EnumDecl and ConstantHolderDecl.
type Declaration interface {
	declaration()
}

// InterfaceDecl declares a class or interface kind type, after remapping.
type InterfaceDecl struct{ Type *catalog.TypeNode }

// EnumDecl declares an enum.
type EnumDecl struct{ Type *catalog.TypeNode }

// ConstantHolderDecl declares a namespace holding a type's constants.
type ConstantHolderDecl struct{ Type *catalog.TypeNode }

func (InterfaceDecl) declaration()      {}
func (EnumDecl) declaration()           {}
func (ConstantHolderDecl) declaration() {}

// Run is the state of one generation: the output buffer and the set of
// output type names already declared. It is not safe for concurrent use.
type Run struct {
	p       *Policy
	b       *emitter.Builder
	emitted map[string]bool
}

// NewRun starts a generation with an empty output and emitted set.
func (p *Policy) NewRun() *Run {
	return &Run{
		p:       p,
		b:       p.em.NewBuilder(),
		emitted: make(map[string]bool),
	}
}

// Emitted reports whether an interface with the output name was declared in this run.
func (r *Run) Emitted(name string) bool { return r.emitted[name] }

// String returns everything written so far.
func (r *Run) String() string { return r.b.String() }

func (r *Run) emit(d Declaration, out emitter.Output) {
	switch d := d.(type) {
	case InterfaceDecl:
		if r.Emitted(r.p.em.OutputName(d.Type)) {
			r.p.logger.Debug("Skipping already declared type", "type", d.Type.FullName())
			return
		}
		r.EmitInterface(d.Type, out)
	case EnumDecl:
		r.EmitEnum(d.Type)
	case ConstantHolderDecl:
		r.EmitConstantHolder(d.Type)
	default:
		panic(fmt.Sprintf("policy: unhandled declaration %T", d))
	}
}

// EmitInterface writes an interface declaration for t and records its
// output name in the emitted set. Members are taken from properties and/or
// fields according to out, in declaration order.
func (r *Run) EmitInterface(t *catalog.TypeNode, out emitter.Output) {
	em, b := r.p.em, r.b
	name := em.TypeName(t)
	visibility := ""
	if em.Visible(t) {
		visibility = "export "
	}

	r.p.writeTypeAdvisories(b, t)
	em.Docs.TypeDoc(b, t, name)

	b.AppendIndentedf("%sinterface %s", visibility, name)
	base := r.p.baseRef(t)
	if base != nil {
		b.Appendf(" extends %s", em.TypeExpr(base, t.Module))
	}
	if ifaces := r.p.interfaceRefs(t); len(ifaces) > 0 {
		impls := make([]string, len(ifaces))
		for i, ref := range ifaces {
			impls[i] = em.TypeExpr(ref, t.Module)
		}
		// A base type already occupies the extends position of a class.
		prefix := " extends %s"
		if t.Kind != catalog.KindInterface && base != nil {
			prefix = " , %s"
		}
		b.Appendf(prefix, strings.Join(impls, " ,"))
	}
	b.AppendLine(" {")

	var members []*catalog.MemberNode
	if out.Has(emitter.OutputProperties) {
		members = append(members, t.Properties...)
	}
	if out.Has(emitter.OutputFields) {
		members = append(members, t.Fields...)
	}

	restore := b.Indent()
	for _, m := range members {
		if m.Ignore {
			continue
		}
		memberName := em.MemberName(m)
		memberType := em.TypeExpr(m.Type, t.Module)
		r.p.writeMemberAdvisories(b, t, m)
		em.Docs.MemberDoc(b, m, memberName, memberType)
		b.AppendLineIndented(fmt.Sprintf("%s: %s;", memberName, memberType))
	}
	restore()
	b.AppendLineIndented("}")

	r.emitted[em.OutputName(t)] = true
}

// EmitEnum writes an enum declaration. Values keep their declared order; a
// value's alias attribute replaces its symbolic name.
func (r *Run) EmitEnum(t *catalog.TypeNode) {
	em, b := r.p.em, r.b
	name := em.TypeName(t)
	em.Docs.EnumDoc(b, t, name)

	constSpecifier := ""
	if em.ConstEnums() {
		constSpecifier = "const "
	}
	b.AppendLineIndented(fmt.Sprintf("%senum %s {", constSpecifier, name))

	restore := b.Indent()
	next := new(big.Int)
	for i, v := range t.Values {
		em.Docs.EnumValueDoc(b, v)
		valueName := v.Name
		if alias, ok := v.Attribute(r.p.cfg.AliasAttribute); ok && alias != "" {
			valueName = alias
		}
		if !isIdentifier(valueName) {
			valueName = strconv.Quote(valueName)
		}

		var value string
		if v.Value == nil {
			value = next.String()
			next.Add(next, one)
		} else {
			value = emitter.Literal(v.Value)
			if n, ok := intValue(v.Value); ok {
				next = n.Add(n, one)
			}
		}

		sep := ","
		if i == len(t.Values)-1 {
			sep = ""
		}
		b.AppendLineIndented(fmt.Sprintf("%s = %s%s", valueName, value, sep))
	}
	restore()
	b.AppendLineIndented("}")
}

// EmitConstantHolder writes a namespace with one const per constant of t.
// Types without constants produce nothing.
func (r *Run) EmitConstantHolder(t *catalog.TypeNode) {
	if len(t.Constants) == 0 {
		return
	}
	em, b := r.p.em, r.b
	b.AppendLineIndented(fmt.Sprintf("export namespace %s {", em.OutputName(t)))
	restore := b.Indent()
	for _, c := range t.Constants {
		if c.Ignore {
			continue
		}
		b.AppendLineIndented(fmt.Sprintf("export const %s: %s = %s;", c.Name, em.TypeExpr(c.Type, t.Module), emitter.Literal(c.Value)))
	}
	restore()
	b.AppendLineIndented("}")
}

var one = big.NewInt(1)

// intValue returns a fresh copy of an integral enum value. Values wider than
// int64 (ulong flags) are kept exact.
func intValue(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case json.Number:
		return new(big.Int).SetString(n.String(), 10)
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			i, _ := big.NewFloat(n).Int(nil)
			return i, true
		}
	}
	return nil, false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '_' || c == '$' || unicode.IsLetter(c) || (i > 0 && unicode.IsDigit(c)) {
			continue
		}
		return false
	}
	return true
}
