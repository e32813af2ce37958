package emitter

import (
	"fmt"
	"strings"
)

// Builder accumulates generated source with indentation tracking.
type Builder struct {
	sb     strings.Builder
	indent string
	level  int
}

// NewBuilder returns a Builder indenting with the given unit, or a tab when empty.
func NewBuilder(indent string) *Builder {
	if indent == "" {
		indent = "\t"
	}
	return &Builder{indent: indent}
}

// Indent increases the indentation level until the returned func is called.
func (b *Builder) Indent() (restore func()) {
	b.level++
	return func() { b.level-- }
}

func (b *Builder) writeIndent() {
	for i := 0; i < b.level; i++ {
		b.sb.WriteString(b.indent)
	}
}

// Appendf writes formatted text without indentation or newline.
func (b *Builder) Appendf(format string, args ...any) {
	fmt.Fprintf(&b.sb, format, args...)
}

// AppendIndentedf writes the current indentation followed by formatted text.
func (b *Builder) AppendIndentedf(format string, args ...any) {
	b.writeIndent()
	fmt.Fprintf(&b.sb, format, args...)
}

// AppendLine writes s and a newline.
func (b *Builder) AppendLine(s string) {
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
}

// AppendLineIndented writes the current indentation, s and a newline.
func (b *Builder) AppendLineIndented(s string) {
	b.writeIndent()
	b.AppendLine(s)
}

func (b *Builder) Len() int { return b.sb.Len() }

func (b *Builder) String() string { return b.sb.String() }
