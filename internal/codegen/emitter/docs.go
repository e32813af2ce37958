package emitter

import (
	"strings"

	"github.com/Alia5/tsdecl/internal/catalog"
)

// DocAppender writes documentation blocks ahead of declarations.
type DocAppender interface {
	TypeDoc(b *Builder, t *catalog.TypeNode, name string)
	MemberDoc(b *Builder, m *catalog.MemberNode, name, typ string)
	EnumDoc(b *Builder, t *catalog.TypeNode, name string)
	EnumValueDoc(b *Builder, v *catalog.EnumValueNode)
}

// NopDocAppender writes nothing.
type NopDocAppender struct{}

func (NopDocAppender) TypeDoc(*Builder, *catalog.TypeNode, string)             {}
func (NopDocAppender) MemberDoc(*Builder, *catalog.MemberNode, string, string) {}
func (NopDocAppender) EnumDoc(*Builder, *catalog.TypeNode, string)             {}
func (NopDocAppender) EnumValueDoc(*Builder, *catalog.EnumValueNode)           {}

// JSDocAppender renders catalog doc strings as /** */ blocks.
type JSDocAppender struct{}

func (JSDocAppender) TypeDoc(b *Builder, t *catalog.TypeNode, _ string) { writeDoc(b, t.Doc) }

func (JSDocAppender) MemberDoc(b *Builder, m *catalog.MemberNode, _, _ string) { writeDoc(b, m.Doc) }

func (JSDocAppender) EnumDoc(b *Builder, t *catalog.TypeNode, _ string) { writeDoc(b, t.Doc) }

func (JSDocAppender) EnumValueDoc(b *Builder, v *catalog.EnumValueNode) { writeDoc(b, v.Doc) }

// WriteComment writes a single-line /** */ comment at the current indentation.
func WriteComment(b *Builder, text string) {
	b.AppendLineIndented("/** " + text + " */")
}

func writeDoc(b *Builder, doc string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return
	}
	doc = strings.ReplaceAll(doc, "*/", "*\\/")
	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		WriteComment(b, lines[0])
		return
	}
	b.AppendLineIndented("/**")
	for _, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			b.AppendLineIndented(" *")
			continue
		}
		b.AppendLineIndented(" * " + l)
	}
	b.AppendLineIndented(" */")
}
