package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderIndentation(t *testing.T) {
	b := NewBuilder("")
	b.AppendIndentedf("interface %s", "A")
	b.AppendLine(" {")
	restore := b.Indent()
	b.AppendLineIndented("a: string;")
	inner := b.Indent()
	b.AppendLineIndented("nested")
	inner()
	restore()
	b.AppendLineIndented("}")

	assert.Equal(t, "interface A {\n\ta: string;\n\t\tnested\n}\n", b.String())
	assert.Equal(t, len(b.String()), b.Len())
}

func TestOutput(t *testing.T) {
	o, err := ParseOutput([]string{"enums", " Fields "})
	assert.NoError(t, err)
	assert.True(t, o.Has(OutputEnums))
	assert.True(t, o.Has(OutputFields))
	assert.False(t, o.Has(OutputProperties))
	assert.True(t, o.Any(OutputProperties|OutputFields))
	assert.Equal(t, "enums,fields", o.String())

	all, err := ParseOutput([]string{"all"})
	assert.NoError(t, err)
	assert.Equal(t, OutputAll, all)
	assert.Equal(t, "enums,properties,fields,constants", all.String())

	assert.Equal(t, "none", Output(0).String())

	_, err = ParseOutput([]string{"methods"})
	assert.ErrorContains(t, err, `unknown output kind "methods"`)
}
