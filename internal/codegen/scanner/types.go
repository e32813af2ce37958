package scanner

import (
	"fmt"
	"go/ast"
	"go/token"
	"reflect"
	"strconv"
	"strings"

	"github.com/Alia5/tsdecl/internal/catalog"
)

// goTypes maps Go basic types onto the catalog primitive names the
// emitter knows how to translate.
var goTypes = map[string]string{
	"bool":       "bool",
	"string":     "string",
	"int":        "long",
	"int8":       "sbyte",
	"int16":      "short",
	"int32":      "int",
	"int64":      "long",
	"uint":       "ulong",
	"uint8":      "byte",
	"uint16":     "ushort",
	"uint32":     "uint",
	"uint64":     "ulong",
	"uintptr":    "ulong",
	"byte":       "byte",
	"rune":       "int",
	"float32":    "float",
	"float64":    "double",
	"complex64":  "",
	"complex128": "",
	"any":        "object",
	"error":      "string",
}

// qualifiedTypes maps well-known library types by their encoding/json form.
var qualifiedTypes = map[string]string{
	"time.Time":             "DateTime",
	"time.Duration":         "long",
	"json.RawMessage":       "object",
	"json.Number":           "double",
	"big.Int":               "double",
	"url.URL":               "Uri",
	"netip.Addr":            "string",
	"uuid.UUID":             "Guid",
	"decimal.Decimal":       "decimal",
	"sql.NullString":        "string?",
	"sql.NullInt64":         "long?",
	"sql.NullBool":          "bool?",
	"sql.NullTime":          "DateTime?",
	"sql.NullFloat64":       "double?",
	"template.HTML":         "string",
	"http.Header":           "Dictionary<string, string[]>",
	"url.Values":            "Dictionary<string, string[]>",
	"yaml.Node":             "object",
	"structpb.Struct":       "object",
	"timestamppb.Timestamp": "DateTime",
}

// typeExpr renders a Go type expression in catalog type syntax. Types that
// encoding/json cannot marshal yield "".
func (s *pkgScan) typeExpr(expr ast.Expr, scope []string) string {
	switch t := expr.(type) {
	case *ast.Ident:
		for _, p := range scope {
			if p == t.Name {
				return p
			}
		}
		if ts := s.basics[t.Name]; ts != nil && len(s.enums[t.Name]) == 0 {
			return s.typeExpr(ts.Type, nil)
		}
		if ts := s.aliases[t.Name]; ts != nil && !s.expanding[t.Name] {
			// Named maps and slices marshal as their underlying type.
			s.expanding[t.Name] = true
			defer delete(s.expanding, t.Name)
			return s.typeExpr(ts.Type, nil)
		}
		if mapped, ok := goTypes[t.Name]; ok {
			return mapped
		}
		return t.Name
	case *ast.StarExpr:
		inner := s.typeExpr(t.X, scope)
		if inner == "" || strings.HasSuffix(inner, "]") || strings.HasSuffix(inner, "?") {
			return inner
		}
		return inner + "?"
	case *ast.ArrayType:
		if id, ok := t.Elt.(*ast.Ident); ok && (id.Name == "byte" || id.Name == "uint8") {
			return "string"
		}
		elem := s.typeExpr(t.Elt, scope)
		if elem == "" {
			return ""
		}
		return elem + "[]"
	case *ast.MapType:
		k, v := s.typeExpr(t.Key, scope), s.typeExpr(t.Value, scope)
		if k == "" || v == "" {
			return ""
		}
		return fmt.Sprintf("Dictionary<%s, %s>", k, v)
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			if mapped, ok := qualifiedTypes[x.Name+"."+t.Sel.Name]; ok {
				return mapped
			}
		}
		return t.Sel.Name
	case *ast.IndexExpr:
		return s.generic(t.X, []ast.Expr{t.Index}, scope)
	case *ast.IndexListExpr:
		return s.generic(t.X, t.Indices, scope)
	case *ast.InterfaceType, *ast.StructType:
		return "object"
	}
	return ""
}

func (s *pkgScan) generic(x ast.Expr, indices []ast.Expr, scope []string) string {
	name := s.typeExpr(x, scope)
	args := make([]string, 0, len(indices))
	for _, idx := range indices {
		a := s.typeExpr(idx, scope)
		if a == "" {
			return ""
		}
		args = append(args, a)
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

func inferType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case float64:
		return "double"
	default:
		return "long"
	}
}

// eval computes the value of a constant expression. References to other
// constants of the package are looked up by name; anything else yields nil.
func (s *pkgScan) eval(expr ast.Expr, iota int) any {
	switch e := expr.(type) {
	case *ast.BasicLit:
		switch e.Kind {
		case token.INT:
			if val, err := strconv.ParseInt(strings.ReplaceAll(e.Value, "_", ""), 0, 64); err == nil {
				return val
			}
		case token.FLOAT:
			if val, err := strconv.ParseFloat(strings.ReplaceAll(e.Value, "_", ""), 64); err == nil {
				return val
			}
		case token.STRING, token.CHAR:
			if val, err := strconv.Unquote(e.Value); err == nil {
				return val
			}
		}
	case *ast.Ident:
		switch e.Name {
		case "iota":
			return int64(iota)
		case "true":
			return true
		case "false":
			return false
		}
		return s.values[e.Name]
	case *ast.ParenExpr:
		return s.eval(e.X, iota)
	case *ast.CallExpr:
		// Conversions such as Refresh("wait_for") or uint8(1 << iota).
		if len(e.Args) == 1 {
			return s.eval(e.Args[0], iota)
		}
	case *ast.UnaryExpr:
		v := s.eval(e.X, iota)
		switch n := v.(type) {
		case int64:
			switch e.Op {
			case token.SUB:
				return -n
			case token.XOR:
				return ^n
			case token.ADD:
				return n
			}
		case float64:
			if e.Op == token.SUB {
				return -n
			}
		case bool:
			if e.Op == token.NOT {
				return !n
			}
		}
	case *ast.BinaryExpr:
		return binary(e.Op, s.eval(e.X, iota), s.eval(e.Y, iota))
	}
	return nil
}

func binary(op token.Token, x, y any) any {
	switch l := x.(type) {
	case int64:
		r, ok := y.(int64)
		if !ok {
			return nil
		}
		switch op {
		case token.ADD:
			return l + r
		case token.SUB:
			return l - r
		case token.MUL:
			return l * r
		case token.QUO:
			if r != 0 {
				return l / r
			}
		case token.REM:
			if r != 0 {
				return l % r
			}
		case token.SHL:
			if r >= 0 && r < 63 {
				return l << r
			}
		case token.SHR:
			if r >= 0 && r < 64 {
				return l >> r
			}
		case token.OR:
			return l | r
		case token.AND:
			return l & r
		case token.XOR:
			return l ^ r
		case token.AND_NOT:
			return l &^ r
		}
	case float64:
		r, ok := y.(float64)
		if !ok {
			if ri, isInt := y.(int64); isInt {
				r, ok = float64(ri), true
			}
		}
		if !ok {
			return nil
		}
		switch op {
		case token.ADD:
			return l + r
		case token.SUB:
			return l - r
		case token.MUL:
			return l * r
		case token.QUO:
			if r != 0 {
				return l / r
			}
		}
	case string:
		if r, ok := y.(string); ok && op == token.ADD {
			return l + r
		}
	}
	return nil
}

func structTag(f *ast.Field) reflect.StructTag {
	if f.Tag == nil {
		return ""
	}
	tag, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		return ""
	}
	return reflect.StructTag(tag)
}

// jsonField interprets the json struct tag: the serialized name (empty
// when unset), whether omitempty is set and whether the field is skipped.
func jsonField(tag reflect.StructTag) (name string, omitEmpty, skip bool) {
	v, ok := tag.Lookup("json")
	if !ok {
		return "", false, false
	}
	if v == "-" {
		return "", false, true
	}
	parts := strings.Split(v, ",")
	for _, p := range parts[1:] {
		if p == "omitempty" || p == "omitzero" {
			omitEmpty = true
		}
	}
	return parts[0], omitEmpty, false
}

// tagAttributes turns every key of a struct tag into an attribute.
func tagAttributes(tag reflect.StructTag) []catalog.Attribute {
	var attrs []catalog.Attribute
	rest := string(tag)
	for {
		rest = strings.TrimLeft(rest, " ")
		key, after, ok := strings.Cut(rest, ":")
		if !ok || key == "" || strings.ContainsAny(key, " \"") || !strings.HasPrefix(after, "\"") {
			return attrs
		}
		end := 1
		for end < len(after) && after[end] != '"' {
			if after[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(after) {
			return attrs
		}
		value, err := strconv.Unquote(after[:end+1])
		if err != nil {
			return attrs
		}
		attrs = append(attrs, catalog.Attribute{Name: key, Value: value})
		rest = after[end+1:]
	}
}
