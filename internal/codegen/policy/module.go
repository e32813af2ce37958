package policy

import (
	"sort"

	"github.com/Alia5/tsdecl/internal/catalog"
	"github.com/Alia5/tsdecl/internal/codegen/emitter"
)

// Plan lists the declarations a module contributes, in emission order:
// enums, then interfaces, then constant holders. Types handled by a
// registered converter or flagged ignored are dropped up front; a module
// left without anything of a requested kind yields no declarations.
func (p *Policy) Plan(m *catalog.Module, out emitter.Output) []Declaration {
	var enums, classes []*catalog.TypeNode
	for _, t := range m.Types {
		if t.Ignore || p.em.IsConverterRegistered(t) {
			continue
		}
		if t.Kind == catalog.KindEnum {
			enums = append(enums, t)
		} else {
			classes = append(classes, t)
		}
	}

	wantEnums := out.Has(emitter.OutputEnums)
	wantClasses := out.Any(emitter.OutputProperties | emitter.OutputFields | emitter.OutputConstants)
	if (!wantEnums || len(enums) == 0) && (!wantClasses || len(classes) == 0) {
		return nil
	}

	var decls []Declaration
	if wantEnums {
		for _, e := range enums {
			if !p.ShouldEmitEnum(e) {
				p.logger.Debug("Skipping enum outside root namespaces", "type", e.FullName())
				continue
			}
			decls = append(decls, EnumDecl{Type: e})
		}
	}
	if out.Any(emitter.OutputProperties | emitter.OutputFields) {
		for _, c := range classes {
			rc := p.Remap(c)
			if !p.ShouldEmit(rc) {
				p.logger.Debug("Skipping type", "type", c.FullName(), "parameterBag", rc.IsParameterBag)
				continue
			}
			decls = append(decls, InterfaceDecl{Type: rc})
		}
	}
	if out.Has(emitter.OutputConstants) {
		for _, c := range classes {
			if len(c.Constants) > 0 {
				decls = append(decls, ConstantHolderDecl{Type: c})
			}
		}
	}
	return decls
}

// EmitModule writes the declarations of one module. Interfaces already
// declared by an earlier module of the run are skipped, and nothing at all
// is written for a module left empty.
func (r *Run) EmitModule(m *catalog.Module, out emitter.Output) {
	var decls []Declaration
	for _, d := range r.p.Plan(m, out) {
		if i, ok := d.(InterfaceDecl); ok && r.Emitted(r.p.em.OutputName(i.Type)) {
			continue
		}
		decls = append(decls, d)
	}
	if len(decls) == 0 {
		return
	}

	end := r.p.em.BeginModule(r.b, m)
	for _, d := range decls {
		r.emit(d, out)
	}
	end()
}

// Generate emits every module of the catalog in order and returns the text.
func (p *Policy) Generate(out emitter.Output) string {
	p.warnOutsideRoots()
	r := p.NewRun()
	for _, m := range p.cat.Modules {
		r.EmitModule(m, out)
	}
	return r.String()
}

// warnOutsideRoots logs when the root namespaces exclude every type of a
// non-empty catalog, which usually means --root-namespace does not match it.
func (p *Policy) warnOutsideRoots() {
	if len(p.cat.Types) == 0 {
		return
	}
	seen := map[string]bool{}
	var namespaces []string
	for _, t := range p.cat.Types {
		if p.em.IsRenamed(t.Name) || !p.isForeign(t) {
			return
		}
		if !seen[t.Namespace] {
			seen[t.Namespace] = true
			namespaces = append(namespaces, t.Namespace)
		}
	}
	sort.Strings(namespaces)
	p.logger.Warn("No catalog type is inside the root namespaces; nothing will be declared",
		"rootNamespaces", p.cfg.RootNamespaces, "catalogNamespaces", namespaces)
}
