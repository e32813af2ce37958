// Package emitter owns the mechanics of writing TypeScript declarations:
// naming, type-expression formatting, doc blocks, indentation and module
// blocks. What gets written, and in which shape, is decided by the policy
// package on top of it.
package emitter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Alia5/tsdecl/internal/catalog"
)

// TypeMapping maps backend primitive type names to TypeScript types.
var TypeMapping = map[string]string{
	"string":         "string",
	"String":         "string",
	"char":           "string",
	"Char":           "string",
	"Guid":           "string",
	"Uri":            "string",
	"TimeSpan":       "string",
	"bool":           "boolean",
	"Boolean":        "boolean",
	"byte":           "number",
	"sbyte":          "number",
	"short":          "number",
	"ushort":         "number",
	"int":            "number",
	"uint":           "number",
	"long":           "number",
	"ulong":          "number",
	"float":          "number",
	"double":         "number",
	"decimal":        "number",
	"Byte":           "number",
	"SByte":          "number",
	"Int16":          "number",
	"UInt16":         "number",
	"Int32":          "number",
	"UInt32":         "number",
	"Int64":          "number",
	"UInt64":         "number",
	"Single":         "number",
	"Double":         "number",
	"Decimal":        "number",
	"DateTime":       "Date",
	"DateTimeOffset": "Date",
	"object":         "any",
	"Object":         "any",
	"dynamic":        "any",
	"void":           "void",
}

// collectionTypes map onto T[] when they carry a single type argument.
var collectionTypes = map[string]bool{
	"IEnumerable":         true,
	"ICollection":         true,
	"IReadOnlyCollection": true,
	"IList":               true,
	"IReadOnlyList":       true,
	"List":                true,
	"HashSet":             true,
	"ISet":                true,
}

// dictionaryTypes map onto Record<K, V> when they carry two type arguments.
var dictionaryTypes = map[string]bool{
	"Dictionary":          true,
	"IDictionary":         true,
	"IReadOnlyDictionary": true,
}

// Config controls naming and layout.
type Config struct {
	// Renames maps source type names to output type names.
	Renames map[string]string
	// Converters maps source type names to a fixed TypeScript expression.
	// Registered types are never declared themselves.
	Converters map[string]string
	// Export prefixes interface declarations with "export".
	Export bool
	// Namespaces wraps each module in a "declare namespace" block and
	// qualifies references across modules.
	Namespaces bool
	// ConstEnums emits "const enum" declarations.
	ConstEnums bool
	Indent     string
	Docs       DocAppender
}

// Emitter provides the naming and formatting primitives declarations are built from.
type Emitter struct {
	cfg  Config
	Docs DocAppender
}

func New(cfg Config) *Emitter {
	docs := cfg.Docs
	if docs == nil {
		docs = NopDocAppender{}
	}
	return &Emitter{cfg: cfg, Docs: docs}
}

func (e *Emitter) ConstEnums() bool { return e.cfg.ConstEnums }

// NewBuilder returns a builder using the configured indentation.
func (e *Emitter) NewBuilder() *Builder { return NewBuilder(e.cfg.Indent) }

// IsRenamed reports whether name is a key of the rename table.
func (e *Emitter) IsRenamed(name string) bool {
	_, ok := e.cfg.Renames[name]
	return ok
}

// IsConverterRegistered reports whether t is rendered by a registered converter.
func (e *Emitter) IsConverterRegistered(t *catalog.TypeNode) bool {
	_, ok := e.cfg.Converters[t.Name]
	return ok
}

// OutputName is the declared name of t after renames, without generic parameters.
func (e *Emitter) OutputName(t *catalog.TypeNode) string {
	if n, ok := e.cfg.Renames[t.Name]; ok {
		return n
	}
	return t.Name
}

// TypeName is the declaration name of t including its generic parameter list.
func (e *Emitter) TypeName(t *catalog.TypeNode) string {
	name := e.OutputName(t)
	if len(t.Generic) == 0 {
		return name
	}
	return name + "<" + strings.Join(t.Generic, ", ") + ">"
}

// Visible reports whether the declaration of t gets an export keyword.
func (e *Emitter) Visible(*catalog.TypeNode) bool { return e.cfg.Export }

// MemberName is the emitted name of a member: its JSON name when known.
func (e *Emitter) MemberName(m *catalog.MemberNode) string {
	if m.JSONName != "" {
		return m.JSONName
	}
	return m.Name
}

// TypeExpr formats a type reference as seen from inside module.
func (e *Emitter) TypeExpr(ref *catalog.TypeRef, module string) string {
	if ref == nil {
		return "any"
	}
	s := e.baseExpr(ref, module)
	for i := 0; i < ref.Rank; i++ {
		s += "[]"
	}
	return s
}

func (e *Emitter) baseExpr(ref *catalog.TypeRef, module string) string {
	name := ref.SimpleName()
	if expr, ok := e.cfg.Converters[name]; ok {
		return expr
	}
	if ref.Def == nil {
		if ts, ok := TypeMapping[name]; ok && len(ref.Args) == 0 {
			return ts
		}
		switch {
		case name == "Nullable" && len(ref.Args) == 1:
			return e.TypeExpr(ref.Args[0], module)
		case collectionTypes[name] && len(ref.Args) == 1:
			return arrayOf(e.TypeExpr(ref.Args[0], module))
		case dictionaryTypes[name] && len(ref.Args) == 2:
			return fmt.Sprintf("Record<%s, %s>", e.TypeExpr(ref.Args[0], module), e.TypeExpr(ref.Args[1], module))
		}
	}

	out := name
	if n, ok := e.cfg.Renames[name]; ok {
		out = n
	}
	if e.cfg.Namespaces && ref.Def != nil && ref.Def.Module != "" && ref.Def.Module != module {
		out = ref.Def.Module + "." + out
	}
	if len(ref.Args) > 0 {
		args := make([]string, len(ref.Args))
		for i, a := range ref.Args {
			args[i] = e.TypeExpr(a, module)
		}
		out += "<" + strings.Join(args, ", ") + ">"
	}
	return out
}

func arrayOf(elem string) string {
	if strings.ContainsAny(elem, "|&") {
		return "(" + elem + ")[]"
	}
	return elem + "[]"
}

// BeginModule opens the block for a module when namespace wrapping is on.
// The returned func closes it.
func (e *Emitter) BeginModule(b *Builder, m *catalog.Module) (end func()) {
	if !e.cfg.Namespaces || m.Name == "" {
		return func() {}
	}
	b.AppendLineIndented(fmt.Sprintf("declare namespace %s {", m.Name))
	restore := b.Indent()
	return func() {
		restore()
		b.AppendLineIndented("}")
	}
}

// Literal formats a constant or enum value as a TypeScript literal.
func Literal(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case json.Number:
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
