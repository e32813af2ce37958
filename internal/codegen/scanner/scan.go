// Package scanner builds catalog documents from Go source.
//
// Exported struct types become classes whose members follow encoding/json
// naming, embedded structs become base types, interfaces become interface
// kinds and named basic types with a typed constant group become enums.
// Untyped constants are collected on a single constant holder type.
package scanner

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/Alia5/tsdecl/internal/catalog"
)

// Options control how a package is mapped onto catalog types.
type Options struct {
	// Namespace is assigned to every scanned type. The Go package name is
	// used when empty.
	Namespace string
	// ConverterAttribute is attached to types that implement their own JSON
	// marshaling, and to members of such types.
	ConverterAttribute string
	// ConstantHolder names the type collecting untyped constants. Defaults
	// to the package name with an upper-case first letter.
	ConstantHolder string
}

// pkgScan is the state of scanning one package directory.
type pkgScan struct {
	opts  Options
	files []*ast.File

	order      []string
	structs    map[string]*ast.TypeSpec
	interfaces map[string]*ast.TypeSpec
	basics     map[string]*ast.TypeSpec
	aliases    map[string]*ast.TypeSpec
	expanding  map[string]bool
	docs       map[string]string
	converters map[string]bool

	enums     map[string][]catalog.ValueDoc
	constants []catalog.MemberDoc
	values    map[string]any
}

// ScanPackage parses the non-test Go files of dir and describes its exported
// types as a catalog document.
func ScanPackage(dir string, opts Options) (*catalog.Document, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return nil, fmt.Errorf("glob package files: %w", err)
	}
	sort.Strings(matches)

	s := &pkgScan{
		opts:       opts,
		structs:    map[string]*ast.TypeSpec{},
		interfaces: map[string]*ast.TypeSpec{},
		basics:     map[string]*ast.TypeSpec{},
		aliases:    map[string]*ast.TypeSpec{},
		expanding:  map[string]bool{},
		docs:       map[string]string{},
		converters: map[string]bool{},
		enums:      map[string][]catalog.ValueDoc{},
		values:     map[string]any{},
	}
	fset := token.NewFileSet()
	pkgName := ""
	for _, file := range matches {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		if pkgName == "" {
			pkgName = f.Name.Name
		} else if f.Name.Name != pkgName {
			return nil, fmt.Errorf("%s: package %s, expected %s", file, f.Name.Name, pkgName)
		}
		s.files = append(s.files, f)
	}
	if len(s.files) == 0 {
		return nil, fmt.Errorf("no Go files in %s", dir)
	}
	if s.opts.Namespace == "" {
		s.opts.Namespace = pkgName
	}
	if s.opts.ConstantHolder == "" {
		s.opts.ConstantHolder = exportName(pkgName)
	}

	s.collectTypes()
	s.collectMethods()
	s.collectConstants()
	return s.document(), nil
}

func (s *pkgScan) collectTypes() {
	for _, f := range s.files {
		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				if !ts.Name.IsExported() || ts.Assign.IsValid() {
					continue
				}
				name := ts.Name.Name
				switch t := ts.Type.(type) {
				case *ast.StructType:
					s.structs[name] = ts
				case *ast.InterfaceType:
					s.interfaces[name] = ts
				case *ast.Ident:
					if _, ok := goTypes[t.Name]; ok {
						s.basics[name] = ts
					}
				case *ast.MapType, *ast.ArrayType, *ast.StarExpr:
					s.aliases[name] = ts
				}
				if !s.known(name) {
					continue
				}
				s.order = append(s.order, name)
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				s.docs[name] = docText(doc)
			}
		}
	}
}

func (s *pkgScan) known(name string) bool {
	return s.structs[name] != nil || s.interfaces[name] != nil || s.basics[name] != nil
}

// collectMethods records types with custom JSON or text marshaling.
func (s *pkgScan) collectMethods() {
	for _, f := range s.files {
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			switch fn.Name.Name {
			case "MarshalJSON", "UnmarshalJSON", "MarshalText", "UnmarshalText":
			default:
				continue
			}
			if name := receiverName(fn.Recv.List[0].Type); name != "" {
				s.converters[name] = true
			}
		}
	}
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}

// collectConstants walks const blocks with iota semantics: a spec without
// values repeats the type and expressions of the previous spec.
func (s *pkgScan) collectConstants() {
	for _, f := range s.files {
		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.CONST {
				continue
			}
			var typ ast.Expr
			var exprs []ast.Expr
			for index, spec := range gen.Specs {
				vs := spec.(*ast.ValueSpec)
				if len(vs.Values) > 0 {
					typ, exprs = vs.Type, vs.Values
				}
				for i, name := range vs.Names {
					if i >= len(exprs) {
						break
					}
					v := s.eval(exprs[i], index)
					s.values[name.Name] = v
					if !name.IsExported() {
						continue
					}
					s.addConstant(name.Name, typ, v, docText(vs.Doc))
				}
			}
		}
	}
}

func (s *pkgScan) addConstant(name string, typ ast.Expr, v any, doc string) {
	if id, ok := typ.(*ast.Ident); ok && s.basics[id.Name] != nil {
		s.enums[id.Name] = append(s.enums[id.Name], catalog.ValueDoc{Name: name, Value: v, Doc: doc})
		return
	}
	if v == nil {
		return
	}
	t := ""
	if typ != nil {
		t = s.typeExpr(typ, nil)
	}
	if t == "" {
		t = inferType(v)
	}
	s.constants = append(s.constants, catalog.MemberDoc{Name: name, Type: t, Value: v, Doc: doc})
}

func (s *pkgScan) document() *catalog.Document {
	doc := &catalog.Document{}
	for _, name := range s.order {
		td := catalog.TypeDoc{Name: name, Namespace: s.opts.Namespace, Doc: s.docs[name]}
		if s.converters[name] && s.opts.ConverterAttribute != "" {
			td.Attributes = []catalog.Attribute{{Name: s.opts.ConverterAttribute}}
		}
		switch {
		case s.structs[name] != nil:
			s.fillStruct(&td, s.structs[name])
		case s.interfaces[name] != nil:
			s.fillInterface(&td, s.interfaces[name])
		default:
			values, ok := s.enums[name]
			if !ok {
				// A named basic type without constants is written as its underlying type.
				continue
			}
			td.Kind = "enum"
			td.Values = values
		}
		doc.Types = append(doc.Types, td)
	}
	if len(s.constants) > 0 {
		doc.Types = append(doc.Types, catalog.TypeDoc{
			Name:      s.opts.ConstantHolder,
			Namespace: s.opts.Namespace,
			Constants: s.constants,
		})
	}
	return doc
}

func (s *pkgScan) fillStruct(td *catalog.TypeDoc, ts *ast.TypeSpec) {
	scope := typeParams(ts)
	td.Generic = scope
	st := ts.Type.(*ast.StructType)
	for _, field := range st.Fields.List {
		tag := structTag(field)
		jsonName, _, skip := jsonField(tag)

		if len(field.Names) == 0 && jsonName == "" {
			embedded := s.typeExpr(embeddedType(field.Type), scope)
			if embedded == "" || skip {
				continue
			}
			if td.Base == "" && s.structs[baseName(field.Type)] != nil {
				td.Base = embedded
			} else {
				td.Interfaces = append(td.Interfaces, embedded)
			}
			continue
		}

		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{ast.NewIdent(baseName(field.Type))}
		}
		typ := s.typeExpr(field.Type, scope)
		if typ == "" {
			continue
		}
		for _, n := range names {
			if !n.IsExported() {
				continue
			}
			m := catalog.MemberDoc{
				Name:       n.Name,
				Type:       typ,
				Doc:        fieldDoc(field),
				Ignore:     skip,
				Attributes: tagAttributes(tag),
			}
			if jsonName != "" && jsonName != n.Name {
				m.JSONName = jsonName
			}
			if s.converters[baseName(field.Type)] && s.opts.ConverterAttribute != "" {
				m.Attributes = append(m.Attributes, catalog.Attribute{Name: s.opts.ConverterAttribute})
			}
			td.Properties = append(td.Properties, m)
		}
	}
}

func (s *pkgScan) fillInterface(td *catalog.TypeDoc, ts *ast.TypeSpec) {
	td.Kind = "interface"
	td.Generic = typeParams(ts)
	it := ts.Type.(*ast.InterfaceType)
	for _, m := range it.Methods.List {
		if len(m.Names) > 0 {
			continue
		}
		if e := s.typeExpr(m.Type, td.Generic); e != "" && s.interfaces[baseName(m.Type)] != nil {
			td.Interfaces = append(td.Interfaces, e)
		}
	}
}

func typeParams(ts *ast.TypeSpec) []string {
	if ts.TypeParams == nil {
		return nil
	}
	var out []string
	for _, f := range ts.TypeParams.List {
		for _, n := range f.Names {
			out = append(out, n.Name)
		}
	}
	return out
}

func embeddedType(expr ast.Expr) ast.Expr {
	if star, ok := expr.(*ast.StarExpr); ok {
		return star.X
	}
	return expr
}

// baseName is the declared name of the type at the root of expr.
func baseName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return baseName(t.X)
	case *ast.IndexExpr:
		return baseName(t.X)
	case *ast.IndexListExpr:
		return baseName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.Ident:
		return t.Name
	}
	return ""
}

func docText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return strings.TrimSpace(cg.Text())
}

func fieldDoc(f *ast.Field) string {
	if d := docText(f.Doc); d != "" {
		return d
	}
	return docText(f.Comment)
}

func exportName(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
